package potential

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/femdvr/internal/config"
)

type Registry struct {
	fields map[string]func(p config.PotentialParams) Field
}

func NewRegistry() *Registry {
	r := &Registry{fields: make(map[string]func(config.PotentialParams) Field)}

	r.fields["coulomb"] = func(p config.PotentialParams) Field {
		z := p.Charge
		if z == 0 {
			z = 1
		}
		return NewCoulomb(z)
	}
	r.fields["hydrogen"] = r.fields["coulomb"]
	r.fields["zero"] = func(config.PotentialParams) Field { return Zero{} }
	r.fields["charges"] = func(p config.PotentialParams) Field {
		return NewPointCharges(p.Centers, p.Softening)
	}

	return r
}

// Register adds or replaces a field constructor.
func (r *Registry) Register(kind string, fn func(config.PotentialParams) Field) {
	r.fields[kind] = fn
}

func (r *Registry) Field(p config.PotentialParams) (Field, error) {
	fn, ok := r.fields[p.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
	return fn(p), nil
}

func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sampler builds the configured sampler. Interpolation knots span
// [rmin, rmax]; a non-empty cache dir wraps the sampler in a SampleCache.
func (r *Registry) Sampler(p config.PotentialParams, rmin, rmax float64, log logrus.FieldLogger) (Sampler, error) {
	field, err := r.Field(p)
	if err != nil {
		return nil, err
	}

	var s Sampler
	switch p.Mode {
	case config.PotentialInterpolated:
		s, err = NewInterpolated(field, rmin, rmax, p.Knots)
		if err != nil {
			return nil, fmt.Errorf("%w: [%g, %g] with %d knots", err, rmin, rmax, p.Knots)
		}
	default:
		s = NewExact(field)
	}

	if p.CacheDir != "" {
		return NewSampleCache(s, p.CacheDir, log)
	}
	return s, nil
}
