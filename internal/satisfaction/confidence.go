package satisfaction

import (
	"math"

	"github.com/goodcabs/tripsense/internal/types"
)

// Confidence weights. Fixed, must sum to 1.0.
const (
	weightReliability = 0.30
	weightCohortSize  = 0.30
	weightVariance    = 0.20
	weightDistance    = 0.20

	// cohortSaturation is the comparable-trip count at which the cohort-size
	// term stops growing.
	cohortSaturation = 50.0
)

// ConfidenceFactors are the raw inputs of one confidence computation.
// Computed per prediction call, never persisted.
type ConfidenceFactors struct {
	ModelReliability       float64 `json:"model_reliability"`
	CohortSize             int     `json:"cohort_size"`
	CohortVariance         float64 `json:"cohort_variance"`
	DistanceFromCohortMean float64 `json:"distance_from_cohort_mean"`
}

// CohortFactors derives confidence factors from the raw model output (rating
// units), the comparison cohort, and the model reliability proxy. Cohort rows
// carrying a NULL rating surface as NaN and are skipped; a cohort with no
// usable ratings behaves like an empty one.
func CohortFactors(rawPrediction float64, cohort []types.TripRecord, modelReliability float64) ConfidenceFactors {
	f := ConfidenceFactors{
		ModelReliability: modelReliability,
	}

	ratings := make([]float64, 0, len(cohort))
	for _, t := range cohort {
		r := (t.PassengerRating + t.DriverRating) / 2
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		ratings = append(ratings, r)
	}
	f.CohortSize = len(ratings)
	if len(ratings) == 0 {
		return f
	}

	f.CohortVariance = stddev(ratings)
	f.DistanceFromCohortMean = math.Abs(rawPrediction - mean(ratings))
	return f
}

// Score combines the four factors into one 0-100 confidence value. An empty
// cohort zeroes the variance and distance terms, capping confidence at 30;
// that is a conservative floor, not an error.
func (f ConfidenceFactors) Score() float64 {
	total := f.ModelReliability * weightReliability
	total += math.Min(float64(f.CohortSize)/cohortSaturation, 1.0) * weightCohortSize
	if f.CohortSize > 0 {
		total += (1 - math.Min(f.CohortVariance/2, 1.0)) * weightVariance
		total += (1 - math.Min(f.DistanceFromCohortMean/2, 1.0)) * weightDistance
	}
	return clamp(total*100, 0, 100)
}
