package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// scaler standardizes feature columns to zero mean and unit variance. The
// fitted parameters live only for the duration of one discover call.
type scaler struct {
	means []float64
	stds  []float64
}

// fitTransform fits column statistics on the batch and returns the
// standardized copy. Zero-variance columns are centered but not scaled.
func (s *scaler) fitTransform(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	s.means = make([]float64, cols)
	s.stds = make([]float64, cols)

	col := make([]float64, rows)
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		if rows < 2 || std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.means[j] = mean
		s.stds[j] = std
		for i := 0; i < rows; i++ {
			out.Set(i, j, (x.At(i, j)-mean)/std)
		}
	}
	return out
}
