// Package sphharm evaluates real spherical harmonics.
//
// Associated Legendre functions carry the Condon-Shortley phase and are
// built by upward recurrence in l from the closed-form diagonal P_m^m.
// Real harmonics use the cosine form for m > 0 and the sine form of |m|
// for m < 0, both with a factor sqrt(2).
package sphharm

import (
	"errors"
	"fmt"
	"math"
)

// MaxFactorial is the largest n with n! representable as float64.
const MaxFactorial = 170

var ErrRange = errors.New("sphharm: argument outside factorial table")

var factorials = func() [MaxFactorial + 1]float64 {
	var f [MaxFactorial + 1]float64
	f[0] = 1
	for i := 1; i <= MaxFactorial; i++ {
		f[i] = f[i-1] * float64(i)
	}
	return f
}()

func Factorial(n int) (float64, error) {
	if n < 0 || n > MaxFactorial {
		return 0, fmt.Errorf("%w: %d", ErrRange, n)
	}
	return factorials[n], nil
}

// Legendre returns P_l^m(x) for 0 <= m <= l.
func Legendre(l, m int, x float64) float64 {
	if m < 0 || m > l {
		return 0
	}
	pmm := 1.0
	if m > 0 {
		s := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * s
			fact += 2
		}
	}
	if l == m {
		return pmm
	}
	pm1 := x * float64(2*m+1) * pmm
	if l == m+1 {
		return pm1
	}
	var pll float64
	for ll := m + 2; ll <= l; ll++ {
		pll = (x*float64(2*ll-1)*pm1 - float64(ll+m-1)*pmm) / float64(ll-m)
		pmm, pm1 = pm1, pll
	}
	return pll
}

// Table holds normalization constants for all channels up to lmax.
type Table struct {
	lmax int
	norm [][]float64
}

func NewTable(lmax int) (*Table, error) {
	if lmax < 0 || 2*lmax > MaxFactorial {
		return nil, fmt.Errorf("%w: lmax %d", ErrRange, lmax)
	}
	t := &Table{lmax: lmax, norm: make([][]float64, lmax+1)}
	for l := 0; l <= lmax; l++ {
		t.norm[l] = make([]float64, l+1)
		for m := 0; m <= l; m++ {
			num, err := Factorial(l - m)
			if err != nil {
				return nil, err
			}
			den, err := Factorial(l + m)
			if err != nil {
				return nil, err
			}
			t.norm[l][m] = math.Sqrt(float64(2*l+1) * num / (4 * math.Pi * den))
		}
	}
	return t, nil
}

func (t *Table) Lmax() int { return t.lmax }

// Size is the number of (l,m) channels.
func (t *Table) Size() int { return (t.lmax + 1) * (t.lmax + 1) }

// Y evaluates the real harmonic Y_lm at polar angle theta and azimuth phi.
func (t *Table) Y(l, m int, theta, phi float64) float64 {
	am := m
	if am < 0 {
		am = -am
	}
	p := t.norm[l][am] * Legendre(l, am, math.Cos(theta))
	switch {
	case m > 0:
		return math.Sqrt2 * p * math.Cos(float64(m)*phi)
	case m < 0:
		return math.Sqrt2 * p * math.Sin(float64(am)*phi)
	default:
		return p
	}
}

// Eval writes every channel into out, indexed by l*l+l+m, running the
// Legendre recurrence once per m.
func (t *Table) Eval(theta, phi float64, out []float64) {
	x := math.Cos(theta)
	s := math.Sin(theta)
	pmm := 1.0
	for m := 0; m <= t.lmax; m++ {
		if m > 0 {
			pmm *= -float64(2*m-1) * s
		}
		c, sn := 1.0, 0.0
		if m > 0 {
			sn, c = math.Sincos(float64(m) * phi)
		}

		prev, cur := 0.0, pmm
		for l := m; l <= t.lmax; l++ {
			if l == m+1 {
				prev, cur = cur, x*float64(2*m+1)*cur
			} else if l > m+1 {
				next := (x*float64(2*l-1)*cur - float64(l+m-1)*prev) / float64(l-m)
				prev, cur = cur, next
			}
			p := t.norm[l][m] * cur
			base := l*l + l
			if m == 0 {
				out[base] = p
				continue
			}
			out[base+m] = math.Sqrt2 * p * c
			out[base-m] = math.Sqrt2 * p * sn
		}
	}
}
