package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// principalProject projects x onto its top-k variance-maximizing directions
// and reports the fraction of total variance those directions retain.
//
// x is expected to be standardized already; k is clamped to the number of
// components the batch can support. The decomposition is SVD-based and
// deterministic, so repeated runs on identical input produce identical
// projections.
func principalProject(x *mat.Dense, k int) (*mat.Dense, float64, error) {
	rows, cols := x.Dims()
	if k > cols {
		k = cols
	}
	if k > rows {
		k = rows
	}
	if k < 1 {
		return nil, 0, fmt.Errorf("%w: cannot project onto %d components", ErrClustering, k)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, 0, fmt.Errorf("%w: principal component decomposition did not converge", ErrClustering)
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	vars := pc.VarsTo(nil)

	var total, retained float64
	for i, v := range vars {
		total += v
		if i < k {
			retained += v
		}
	}
	fraction := 0.0
	if total > 0 {
		fraction = retained / total
	}

	projected := mat.NewDense(rows, k, nil)
	projected.Mul(x, vectors.Slice(0, cols, 0, k))
	return projected, fraction, nil
}
