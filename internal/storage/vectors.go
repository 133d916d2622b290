package storage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/eigen"
)

// SaveVectors writes one line per basis function: bin, node, global
// index, l, m and the coefficients of every kept eigenvector.
func SaveVectors(path string, bmap *basis.Map, res *eigen.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	_, k := res.Vectors.Dims()
	for _, fn := range bmap.Functions() {
		fmt.Fprintf(w, "%5d %5d %6d %4d %4d", fn.Bin, fn.Node, fn.Index, fn.L, fn.M)
		for c := 0; c < k; c++ {
			fmt.Fprintf(w, " %16.8e", res.Vectors.At(fn.Index, c))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// SaveEnergies writes "<index> <energy>" per line in ascending order.
func SaveEnergies(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, v := range values {
		fmt.Fprintf(w, "%6d %24.16e\n", i, v)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func LoadEnergies(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(err, path)
	}
	defer f.Close()

	var out []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %s: %q", ErrMalformed, path, sc.Text())
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// VectorRow is one parsed line of a vectors file.
type VectorRow struct {
	Bin, Node, Index, L, M int
	Coeffs                 []float64
}

func LoadVectors(path string) ([]VectorRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(err, path)
	}
	defer f.Close()

	var rows []VectorRow
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: %s: short line", ErrMalformed, path)
		}
		var ints [5]int
		for i := range ints {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
			}
			ints[i] = v
		}
		row := VectorRow{Bin: ints[0], Node: ints[1], Index: ints[2], L: ints[3], M: ints[4]}
		for _, s := range fields[5:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
			}
			row.Coeffs = append(row.Coeffs, v)
		}
		rows = append(rows, row)
	}
	return rows, sc.Err()
}
