package potential

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/femdvr/internal/config"
)

// Field is a potential in atomic units. Name is a short label; Key lists
// every parameter that changes At, so equal keys mean equal fields.
type Field interface {
	Name() string
	Key() string
	At(x, y, z float64) float64
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Coulomb is the attractive potential of a point nucleus.
type Coulomb struct {
	Z float64
}

func NewCoulomb(z float64) *Coulomb { return &Coulomb{Z: z} }

func (c *Coulomb) Name() string { return fmt.Sprintf("coulomb_z%g", c.Z) }

func (c *Coulomb) Key() string { return "coulomb z=" + fmtFloat(c.Z) }

func (c *Coulomb) At(x, y, z float64) float64 {
	return -c.Z / math.Sqrt(x*x+y*y+z*z)
}

type Zero struct{}

func (Zero) Name() string               { return "zero" }
func (Zero) Key() string                { return "zero" }
func (Zero) At(_, _, _ float64) float64 { return 0 }

// PointCharges models a molecular cation as attractive point charges with
// a softened core.
type PointCharges struct {
	centers   []config.Center
	softening float64
}

func NewPointCharges(centers []config.Center, softening float64) *PointCharges {
	return &PointCharges{
		centers:   append([]config.Center(nil), centers...),
		softening: softening,
	}
}

func (p *PointCharges) Name() string {
	return fmt.Sprintf("charges_n%d_s%g", len(p.centers), p.softening)
}

func (p *PointCharges) Key() string {
	var b strings.Builder
	b.WriteString("charges s=" + fmtFloat(p.softening))
	for _, c := range p.centers {
		fmt.Fprintf(&b, ";%s,%s,%s,%s", fmtFloat(c.X), fmtFloat(c.Y), fmtFloat(c.Z), fmtFloat(c.Charge))
	}
	return b.String()
}

func (p *PointCharges) At(x, y, z float64) float64 {
	s2 := p.softening * p.softening
	var v float64
	for _, c := range p.centers {
		dx, dy, dz := x-c.X, y-c.Y, z-c.Z
		v -= c.Charge / math.Sqrt(dx*dx+dy*dy+dz*dz+s2)
	}
	return v
}
