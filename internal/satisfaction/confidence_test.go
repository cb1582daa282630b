package satisfaction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goodcabs/tripsense/internal/types"
)

func cohortOf(n int, pr, dr float64) []types.TripRecord {
	cohort := make([]types.TripRecord, n)
	for i := range cohort {
		cohort[i] = trip(10, 150, pr, dr)
	}
	return cohort
}

func TestConfidenceWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, weightReliability+weightCohortSize+weightVariance+weightDistance, 1e-12)
}

func TestScoreEmptyCohortCappedAt30(t *testing.T) {
	f := CohortFactors(4.5, nil, 1.0)

	assert.Equal(t, 0, f.CohortSize)
	assert.InDelta(t, 30.0, f.Score(), 1e-9, "perfect reliability with no cohort caps at 30")

	f = CohortFactors(4.5, nil, 0)
	assert.InDelta(t, 0.0, f.Score(), 1e-9)
}

func TestScoreCohortSizeSaturatesAt50(t *testing.T) {
	at50 := CohortFactors(4.5, cohortOf(50, 4.5, 4.5), 0.8).Score()
	at500 := CohortFactors(4.5, cohortOf(500, 4.5, 4.5), 0.8).Score()

	assert.InDelta(t, at50, at500, 1e-9, "cohort-size term saturates at 50 trips")
}

func TestScoreMonotonicInCohortSize(t *testing.T) {
	small := CohortFactors(4.5, cohortOf(5, 4.5, 4.5), 0.8).Score()
	large := CohortFactors(4.5, cohortOf(40, 4.5, 4.5), 0.8).Score()

	assert.Greater(t, large, small)
}

func TestScorePerfectAgreement(t *testing.T) {
	// Prediction equals the identical cohort ratings: variance 0, distance 0,
	// saturated cohort, perfect reliability.
	f := CohortFactors(4.5, cohortOf(50, 4.5, 4.5), 1.0)

	assert.InDelta(t, 100.0, f.Score(), 1e-9)
}

func TestScoreDistancePenalty(t *testing.T) {
	near := CohortFactors(4.5, cohortOf(50, 4.5, 4.5), 0.8).Score()
	far := CohortFactors(2.0, cohortOf(50, 4.5, 4.5), 0.8).Score()

	assert.Greater(t, near, far, "prediction far from cohort mean loses the distance term")
}

func TestScoreClampedToValidRange(t *testing.T) {
	scores := []float64{
		CohortFactors(4.5, nil, -5).Score(),
		CohortFactors(4.5, cohortOf(50, 4.5, 4.5), 5).Score(),
	}
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}

func TestCohortFactorsSkipsUnratedTrips(t *testing.T) {
	nan := math.NaN()
	cohort := append(cohortOf(10, 4.5, 4.5),
		trip(10, 150, nan, 4.5),
		trip(10, 150, 4.5, nan),
		trip(10, 150, nan, nan),
	)

	f := CohortFactors(4.5, cohort, 0.9)

	assert.Equal(t, 10, f.CohortSize, "unrated trips do not count toward the cohort")
	assert.False(t, math.IsNaN(f.CohortVariance))
	assert.False(t, math.IsNaN(f.DistanceFromCohortMean))

	score := f.Score()
	assert.False(t, math.IsNaN(score))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	clean := CohortFactors(4.5, cohortOf(10, 4.5, 4.5), 0.9)
	assert.InDelta(t, clean.Score(), score, 1e-9, "unrated trips contribute nothing")
}

func TestCohortFactorsAllUnratedBehavesEmpty(t *testing.T) {
	nan := math.NaN()
	cohort := []types.TripRecord{
		trip(10, 150, nan, 4.5),
		trip(11, 160, nan, nan),
	}

	f := CohortFactors(4.5, cohort, 1.0)

	assert.Equal(t, 0, f.CohortSize)
	assert.InDelta(t, 30.0, f.Score(), 1e-9, "reliability term only, as with no cohort")
}

func TestCohortFactorsVariance(t *testing.T) {
	cohort := []types.TripRecord{
		trip(10, 150, 3, 3), // mean rating 3
		trip(10, 150, 5, 5), // mean rating 5
	}

	f := CohortFactors(4.0, cohort, 0.9)

	assert.Equal(t, 2, f.CohortSize)
	assert.InDelta(t, 1.0, f.CohortVariance, 1e-12)
	assert.InDelta(t, 0.0, f.DistanceFromCohortMean, 1e-12)
}
