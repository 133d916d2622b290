package storage

import (
	"bufio"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/hamiltonian"
)

// SaveHamiltonian writes m into dir as fixed-width text (dense) or a
// gzip-compressed CSR container, following the matrix format.
func SaveHamiltonian(dir string, m hamiltonian.Matrix) error {
	if m.Format() == config.FormatCSR {
		c, ok := m.(*hamiltonian.CSR)
		if !ok {
			return fmt.Errorf("storage: csr format reported by %T", m)
		}
		return writeCSR(filepath.Join(dir, CSRFile), c)
	}
	return writeDense(filepath.Join(dir, DenseFile), m)
}

// LoadHamiltonian reads whichever Hamiltonian file dir holds. A missing
// file is a hard error.
func LoadHamiltonian(dir string) (hamiltonian.Matrix, error) {
	dense := filepath.Join(dir, DenseFile)
	if _, err := os.Stat(dense); err == nil {
		return readDense(dense)
	}
	sparse := filepath.Join(dir, CSRFile)
	if _, err := os.Stat(sparse); err == nil {
		return readCSR(sparse)
	}
	return nil, fmt.Errorf("%w: no %s or %s in %s", ErrMissing, DenseFile, CSRFile, dir)
}

func writeDense(path string, m hamiltonian.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n := m.Dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%24.16e", m.At(i, j))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func readDense(path string) (*hamiltonian.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(err, path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var data []float64
	n := -1
	rows := 0
	for {
		line, err := r.ReadString('\n')
		if fields := strings.Fields(line); len(fields) > 0 {
			if n < 0 {
				n = len(fields)
				data = make([]float64, 0, n*n)
			}
			if len(fields) != n {
				return nil, fmt.Errorf("%w: %s row %d has %d values, expected %d", ErrMalformed, path, rows, len(fields), n)
			}
			for _, s := range fields {
				v, perr := strconv.ParseFloat(s, 64)
				if perr != nil {
					return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformed, path, rows, perr)
				}
				data = append(data, v)
			}
			rows++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if n <= 0 || rows != n {
		return nil, fmt.Errorf("%w: %s has %d rows of %d values", ErrMalformed, path, rows, n)
	}
	return hamiltonian.NewDense(n, data), nil
}

func writeCSR(path string, c *hamiltonian.CSR) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(c); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func readCSR(path string) (*hamiltonian.CSR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(err, path)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	defer zr.Close()

	var c hamiltonian.CSR
	if err := gob.NewDecoder(zr).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if len(c.RowPtr) != c.N+1 || len(c.ColInd) != len(c.Val) || c.RowPtr[c.N] != len(c.Val) {
		return nil, fmt.Errorf("%w: %s: inconsistent csr layout", ErrMalformed, path)
	}
	return &c, nil
}
