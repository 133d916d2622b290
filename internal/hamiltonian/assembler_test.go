package hamiltonian_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
	"github.com/san-kum/femdvr/internal/hamiltonian"
	"github.com/san-kum/femdvr/internal/kinetic"
	"github.com/san-kum/femdvr/internal/potential"
	"github.com/san-kum/femdvr/internal/potmat"
	"github.com/san-kum/femdvr/internal/sphquad"
)

type stack struct {
	bmap    *basis.Map
	kin     *kinetic.Operator
	pot     *potmat.Operator
	schemes []*sphquad.Scheme
}

func newStack(nodes, bins int, width float64, lmax int, field potential.Field, strategy config.Strategy) stack {
	g, err := dvr.NewGrid(nodes, bins, width, 0)
	Expect(err).NotTo(HaveOccurred())
	m, err := basis.NewMap(g, lmax, config.MapRadialMajor)
	Expect(err).NotTo(HaveOccurred())
	pot, err := potmat.New(m, potential.NewExact(field), strategy, 2)
	Expect(err).NotTo(HaveOccurred())

	schemes := make([]*sphquad.Scheme, g.Len())
	for i := range schemes {
		schemes[i] = sphquad.LebedevFamily().At(5)
	}
	return stack{bmap: m, kin: kinetic.New(m, strategy, 2), pot: pot, schemes: schemes}
}

func (s stack) assemble(format config.StorageFormat, threshold float64) hamiltonian.Matrix {
	params := config.AssemblyParams{Format: format, Threshold: threshold, Atol: 1e-8, Rtol: 1e-8}
	m, err := hamiltonian.NewAssembler(s.bmap, s.kin, s.pot, params, nil).Assemble(context.Background(), s.schemes)
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("Assembler", func() {
	Context("with a zero potential", func() {
		It("reproduces the kinetic operator", func() {
			s := newStack(5, 4, 2.0, 2, potential.Zero{}, config.StrategyLoop)
			h := s.assemble(config.FormatDense, 0)
			k, err := s.kin.Matrix(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(h.Dim()).To(Equal((4*4 - 1) * 9))
			for i := 0; i < h.Dim(); i++ {
				for j := 0; j < h.Dim(); j++ {
					Expect(h.At(i, j)).To(Equal(k.At(i, j)))
				}
			}
		})
	})

	Context("with a molecular potential", func() {
		var s stack

		BeforeEach(func() {
			field := potential.NewPointCharges([]config.Center{
				{Z: 0.7, Charge: 0.5},
				{X: 0.4, Z: -0.7, Charge: 0.5},
			}, 0.1)
			s = newStack(6, 3, 2.5, 2, field, config.StrategyVectorized)
		})

		It("stores the same values densely and as CSR", func() {
			dense := s.assemble(config.FormatDense, 1e-12)
			csr := s.assemble(config.FormatCSR, 1e-12)
			Expect(hamiltonian.Equal(dense, csr)).To(BeTrue())
			Expect(csr.NNZ()).To(BeNumerically("<", dense.Dim()*dense.Dim()))
		})

		It("is symmetric", func() {
			h := s.assemble(config.FormatCSR, 0)
			Expect(hamiltonian.CheckSymmetric(h, 0, 0)).To(Succeed())
		})

		It("is reproducible", func() {
			Expect(hamiltonian.Equal(s.assemble(config.FormatDense, 0), s.assemble(config.FormatDense, 0))).To(BeTrue())
		})

		It("couples channels only through the potential", func() {
			h := s.assemble(config.FormatDense, 0)
			p := 2
			a := s.bmap.Global(p, basis.AngularIndex(0, 0))
			b := s.bmap.Global(p, basis.AngularIndex(1, 1))
			Expect(h.At(a, b)).NotTo(BeZero())
			Expect(s.kin.Element(a, b)).To(BeZero())
		})
	})
})
