// Package hamiltonian assembles kinetic and potential contributions into
// a symmetric matrix, stored dense or as CSR, and checks its symmetry
// before it is handed to the eigensolver.
package hamiltonian

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/kinetic"
	"github.com/san-kum/femdvr/internal/logging"
	"github.com/san-kum/femdvr/internal/potmat"
	"github.com/san-kum/femdvr/internal/sphquad"
)

type Assembler struct {
	bmap   *basis.Map
	kin    *kinetic.Operator
	pot    *potmat.Operator
	params config.AssemblyParams
	log    logrus.FieldLogger
}

func NewAssembler(bmap *basis.Map, kin *kinetic.Operator, pot *potmat.Operator, params config.AssemblyParams, log logrus.FieldLogger) *Assembler {
	return &Assembler{bmap: bmap, kin: kin, pot: pot, params: params, log: logging.OrDiscard(log)}
}

// Assemble builds H = T + V with V integrated on schemes[p] at radial
// point p. An asymmetric result is a hard error.
func (a *Assembler) Assemble(ctx context.Context, schemes []*sphquad.Scheme) (Matrix, error) {
	start := time.Now()
	kin, err := a.kin.Elements(ctx)
	if err != nil {
		return nil, fmt.Errorf("hamiltonian: kinetic: %w", err)
	}
	a.log.WithFields(logrus.Fields{"elements": len(kin), "elapsed": time.Since(start)}).Debug("kinetic elements done")

	start = time.Now()
	pot, err := a.pot.Elements(ctx, schemes)
	if err != nil {
		return nil, fmt.Errorf("hamiltonian: potential: %w", err)
	}
	a.log.WithFields(logrus.Fields{"elements": len(pot), "elapsed": time.Since(start)}).Debug("potential elements done")

	m, st, err := Build(a.bmap.Len(), a.params.Format, a.params.Threshold, kin, pot)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"dim":     m.Dim(),
		"format":  m.Format(),
		"entries": st.Entries,
		"dropped": st.Dropped,
	}).Info("hamiltonian assembled")

	if err := CheckSymmetric(m, a.params.Atol, a.params.Rtol); err != nil {
		return nil, err
	}
	return m, nil
}
