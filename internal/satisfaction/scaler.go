package satisfaction

import "math"

// FitScaler fits a per-feature standardizer (mean and population standard
// deviation) on the full feature matrix. Zero-variance columns get std 1 so
// transformed values come out as 0.
func FitScaler(X [][]float64) *FeatureScaler {
	if len(X) == 0 {
		return &FeatureScaler{}
	}
	r, c := len(X), len(X[0])
	s := &FeatureScaler{
		Mean: make([]float64, c),
		Std:  make([]float64, c),
	}
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= float64(r)
		v := 0.0
		for i := 0; i < r; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		v /= float64(r)
		s.Std[j] = math.Sqrt(v)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s
}

// Transform standardizes a feature matrix without mutating the input.
func (s *FeatureScaler) Transform(X [][]float64) [][]float64 {
	Y := make([][]float64, len(X))
	for i, row := range X {
		Y[i] = s.TransformRow(row)
	}
	return Y
}

// TransformRow standardizes a single feature row.
func (s *FeatureScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}
