package quadsel

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/san-kum/femdvr/internal/config"
)

// Source tells where a Result came from.
type Source int

const (
	Generated Source = iota
	Loaded
	Assigned
)

func (s Source) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Assigned:
		return "fixed"
	default:
		return "generated"
	}
}

// Cache resolves levels according to the quadrature mode. Concurrent
// resolutions of the same file share one load or one generation, never
// both.
type Cache struct {
	group singleflight.Group
}

type resolved struct {
	res    *Result
	source Source
}

// Resolve returns the levels for sel, reading or writing path as the mode
// requires. Cached mode fails with ErrMissing when the file is absent.
func (c *Cache) Resolve(ctx context.Context, sel *Selector, mode config.QuadratureMode, scheme, path string) (*Result, Source, error) {
	if mode == config.QuadFixed {
		res, err := sel.Fixed(scheme)
		return res, Assigned, err
	}

	v, err, _ := c.group.Do(path, func() (interface{}, error) {
		switch mode {
		case config.QuadCached:
			res, err := load(sel, path)
			if err != nil {
				return nil, err
			}
			return resolved{res, Loaded}, nil

		case config.QuadAuto:
			if _, err := os.Stat(path); err == nil {
				res, err := load(sel, path)
				if err != nil {
					return nil, err
				}
				return resolved{res, Loaded}, nil
			}
		}

		res, err := sel.Select(ctx)
		if err != nil {
			return nil, err
		}
		if err := WriteLevels(path, res.Levels); err != nil {
			return nil, fmt.Errorf("quadsel: write %s: %w", path, err)
		}
		return resolved{res, Generated}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	r := v.(resolved)
	return r.res, r.source, nil
}

func load(sel *Selector, path string) (*Result, error) {
	levels, err := ReadLevels(path)
	if err != nil {
		return nil, err
	}
	if err := sel.Check(levels); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reports := make([]Report, len(levels))
	for i, l := range levels {
		reports[i] = Report{Level: l, R: sel.grid.Point(i).R, Status: Cached}
	}
	return &Result{Levels: levels, Reports: reports}, nil
}

// IsMissing reports whether err means the levels file did not exist.
func IsMissing(err error) bool {
	return errors.Is(err, ErrMissing)
}
