package satisfaction

import (
	"errors"
	"math"
)

var errSingularSystem = errors.New("normal equations are singular")

// FitOLS fits ordinary least-squares linear regression with an intercept by
// solving the normal equations directly. Exact and deterministic, which the
// small fixed feature count makes cheap.
func FitOLS(X [][]float64, y []float64) (*TrainedModel, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, errors.New("feature matrix and target length mismatch")
	}
	p := len(X[0])
	m := p + 1 // intercept column first

	// A = Zᵀ Z, b = Zᵀ y where Z is X with a leading ones column.
	A := make([][]float64, m)
	for i := range A {
		A[i] = make([]float64, m)
	}
	b := make([]float64, m)

	for i, row := range X {
		z := make([]float64, m)
		z[0] = 1
		copy(z[1:], row)
		for j := 0; j < m; j++ {
			b[j] += z[j] * y[i]
			for k := 0; k < m; k++ {
				A[j][k] += z[j] * z[k]
			}
		}
	}

	sol, err := solveLinear(A, b)
	if err != nil {
		return nil, err
	}

	return &TrainedModel{
		Intercept:    sol[0],
		Coefficients: sol[1:],
	}, nil
}

// solveLinear solves Ax = b via Gaussian elimination with partial pivoting.
// A and b are modified in place.
func solveLinear(A [][]float64, b []float64) ([]float64, error) {
	n := len(A)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(A[r][col]) > math.Abs(A[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(A[pivot][col]) < 1e-12 {
			return nil, errSingularSystem
		}
		A[col], A[pivot] = A[pivot], A[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := A[r][col] / A[col][col]
			for k := col; k < n; k++ {
				A[r][k] -= f * A[col][k]
			}
			b[r] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= A[i][k] * x[k]
		}
		x[i] = sum / A[i][i]
	}
	return x, nil
}

// PredictAll scores every row of an already-standardized matrix.
func (m *TrainedModel) PredictAll(X [][]float64) []float64 {
	pred := make([]float64, len(X))
	for i, row := range X {
		pred[i] = m.Predict(row)
	}
	return pred
}
