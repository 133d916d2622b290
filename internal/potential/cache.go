package potential

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/femdvr/internal/logging"
	"github.com/san-kum/femdvr/internal/sphquad"
)

// SampleCache stores samples of an inner sampler as text files, one value
// per line, keyed by sampler name, a digest of the sampler key, scheme
// and radius.
type SampleCache struct {
	inner  Sampler
	dir    string
	digest string
	log    logrus.FieldLogger
}

func NewSampleCache(inner Sampler, dir string, log logrus.FieldLogger) (*SampleCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("potential: create cache dir: %w", err)
	}
	sum := sha256.Sum256([]byte(inner.Key()))
	return &SampleCache{
		inner:  inner,
		dir:    dir,
		digest: hex.EncodeToString(sum[:8]),
		log:    logging.OrDiscard(log),
	}, nil
}

func (c *SampleCache) Name() string { return c.inner.Name() }
func (c *SampleCache) Key() string  { return c.inner.Key() }

// Path returns the sample file for (r, s).
func (c *SampleCache) Path(r float64, s *sphquad.Scheme) string {
	name := fmt.Sprintf("esp_%s_%s_%s_r%.17e.dat", c.inner.Name(), c.digest, s.ID(), r)
	return filepath.Join(c.dir, name)
}

func (c *SampleCache) Sample(r float64, s *sphquad.Scheme) ([]float64, error) {
	path := c.Path(r, s)
	info, err := os.Stat(path)
	if err == nil && info.Size() > 0 {
		vals, err := readSamples(path, s.Len())
		if err != nil {
			return nil, err
		}
		return vals, nil
	}
	if err == nil {
		c.log.WithField("file", path).Debug("empty sample file, regenerating")
	}

	vals, err := c.inner.Sample(r, s)
	if err != nil {
		return nil, err
	}
	if err := writeSamples(path, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func readSamples(path string, n int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vals := make([]float64, 0, n)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("%w: %s has %d values, scheme has %d nodes", ErrMalformed, path, len(vals), n)
	}
	return vals, nil
}

func writeSamples(path string, vals []float64) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".esp-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	for _, v := range vals {
		fmt.Fprintf(w, "%.17e\n", v)
	}
	if err := w.Flush(); err != nil {
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
