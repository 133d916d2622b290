package quadsel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Level is the scheme chosen for one radial point. Index counts radial
// points in traversal order.
type Level struct {
	Bin    int
	Node   int
	Index  int
	Scheme string
}

// WriteLevels stores one "<bin> <node> <index> <scheme>" line per level.
// The file is replaced atomically.
func WriteLevels(path string, levels []Level) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".levels-*")
	if err != nil {
		return err
	}
	if err := EncodeLevels(tmp, levels); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func EncodeLevels(w io.Writer, levels []Level) error {
	bw := bufio.NewWriter(w)
	for _, l := range levels {
		if _, err := fmt.Fprintf(bw, "%4d %4d %4d %s\n", l.Bin, l.Node, l.Index, l.Scheme); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadLevels loads a levels file. A missing file is ErrMissing.
func ReadLevels(path string) ([]Level, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, err
	}
	defer f.Close()
	return DecodeLevels(f)
}

func DecodeLevels(r io.Reader) ([]Level, error) {
	var levels []Level
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: expected 4 fields, got %d", ErrMalformed, line, len(fields))
		}
		var nums [3]int
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			nums[i] = v
		}
		lv := Level{Bin: nums[0], Node: nums[1], Index: nums[2], Scheme: fields[3]}
		if n := len(levels); n > 0 && lv.Index <= levels[n-1].Index {
			return nil, fmt.Errorf("%w: line %d: index %d not increasing", ErrMalformed, line, lv.Index)
		}
		levels = append(levels, lv)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}
