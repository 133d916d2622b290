package sphquad

import (
	"fmt"

	"github.com/san-kum/femdvr/internal/config"
)

// Family is an ordered list of schemes of increasing degree.
type Family struct {
	name    string
	schemes []*Scheme
}

func NewFamily(name string, schemes []*Scheme) (*Family, error) {
	if len(schemes) == 0 {
		return nil, ErrEmptyFamily
	}
	return &Family{name: name, schemes: append([]*Scheme(nil), schemes...)}, nil
}

// ForKind returns the default family of the configured kind.
func ForKind(kind config.Family) *Family {
	if kind == config.FamilyProduct {
		return ProductFamily(DefaultProductMax)
	}
	return LebedevFamily()
}

func (f *Family) Name() string     { return f.name }
func (f *Family) Len() int         { return len(f.schemes) }
func (f *Family) At(i int) *Scheme { return f.schemes[i] }
func (f *Family) Last() *Scheme    { return f.schemes[len(f.schemes)-1] }

// Index returns the position of id in the family, or -1.
func (f *Family) Index(id string) int {
	for i, s := range f.schemes {
		if s.id == id {
			return i
		}
	}
	return -1
}

// Minimal returns the fixed scheme used beyond the cutoff radius: the
// first scheme integrating Y_lmax products, clamped to the family.
func (f *Family) Minimal(lmax int) *Scheme {
	i := lmax + 1
	if i >= len(f.schemes) {
		i = len(f.schemes) - 1
	}
	return f.schemes[i]
}

// Start returns the index where a search begins after skipping the
// coarsest schemes.
func (f *Family) Start(skip int) int {
	if skip >= len(f.schemes) {
		return len(f.schemes) - 1
	}
	if skip < 0 {
		return 0
	}
	return skip
}

func (f *Family) String() string {
	return fmt.Sprintf("%s[%s..%s]", f.name, f.schemes[0].id, f.Last().id)
}
