package hamiltonian

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
)

// Stats summarizes one build.
type Stats struct {
	Contributions int
	Entries       int
	Dropped       int
}

// Build sums upper-triangle contributions, mirrors them into a full
// symmetric matrix and drops entries with |v| < threshold. The threshold
// applies to summed values only, so both formats hold the same numbers.
func Build(n int, format config.StorageFormat, threshold float64, parts ...[]basis.Element) (Matrix, Stats, error) {
	var st Stats
	sums := make(map[uint64]float64)
	order := make([]uint64, 0)
	for _, part := range parts {
		for _, e := range part {
			if e.I < 0 || e.J >= n {
				return nil, st, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrIndex, e.I, e.J, n, n)
			}
			if e.I > e.J {
				return nil, st, fmt.Errorf("%w: (%d,%d)", ErrLowerTriangle, e.I, e.J)
			}
			key := uint64(e.I)<<32 | uint64(e.J)
			if _, ok := sums[key]; !ok {
				order = append(order, key)
			}
			sums[key] += e.Value
			st.Contributions++
		}
	}

	keep := func(v float64) bool {
		return threshold <= 0 || math.Abs(v) >= threshold
	}

	if format == config.FormatDense {
		d := NewDense(n, nil)
		for _, key := range order {
			i, j := int(key>>32), int(key&0xffffffff)
			v := sums[key]
			if !keep(v) {
				st.Dropped++
				continue
			}
			d.m.Set(i, j, v)
			d.m.Set(j, i, v)
			st.Entries++
		}
		return d, st, nil
	}

	rows := make([]*roaring.Bitmap, n)
	for i := range rows {
		rows[i] = roaring.New()
	}
	for _, key := range order {
		i, j := int(key>>32), int(key&0xffffffff)
		if !keep(sums[key]) {
			st.Dropped++
			continue
		}
		rows[i].Add(uint32(j))
		rows[j].Add(uint32(i))
		st.Entries++
	}

	c := &CSR{N: n, RowPtr: make([]int, n+1)}
	for i, row := range rows {
		c.RowPtr[i+1] = c.RowPtr[i] + int(row.GetCardinality())
	}
	c.ColInd = make([]int, 0, c.RowPtr[n])
	c.Val = make([]float64, 0, c.RowPtr[n])
	for i, row := range rows {
		it := row.Iterator()
		for it.HasNext() {
			j := int(it.Next())
			a, b := i, j
			if a > b {
				a, b = b, a
			}
			c.ColInd = append(c.ColInd, j)
			c.Val = append(c.Val, sums[uint64(a)<<32|uint64(b)])
		}
	}
	return c, st, nil
}
