package satisfaction

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodcabs/tripsense/internal/errors"
	"github.com/goodcabs/tripsense/internal/types"
)

func predictionRequest(distance, fare, pr, dr float64) types.PredictionRequest {
	return types.PredictionRequest{
		DistanceTravelledKM: &distance,
		FareAmount:          &fare,
		PassengerRating:     &pr,
		DriverRating:        &dr,
	}
}

func newTestPredictor(trips []types.TripRecord, store *memStore) *Predictor {
	source := &sliceTripSource{trips: trips}
	trainer := NewTrainer(source, store, DefaultTrainerConfig())
	return NewPredictor(source, store, trainer, DefaultPredictorConfig())
}

func TestPredictColdStartTrainsOnce(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	result, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, store.saves, "cold start triggers one training run")

	_, err = p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves, "warm predictions reuse the persisted model")
}

func TestPredictScoreFollowsRatings(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	// The training target is the mean of both ratings, and that relation is
	// exactly linear in the features, so the fitted model reproduces it.
	result, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.6, 4.8))
	require.NoError(t, err)

	assert.InDelta(t, 47.0, result.Prediction.SatisfactionScore, 1e-6)
	assert.Equal(t, StatusCritical, result.Prediction.Status)
	assert.Equal(t, 47, result.Prediction.IndustryPercentile)
}

func TestPredictDeterministic(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	a, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)
	b, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPredictScoreRangeInvariants(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	requests := []types.PredictionRequest{
		predictionRequest(0, 0, 0, 0),
		predictionRequest(5, 90, 3.0, 3.2),
		predictionRequest(23, 250, 10, 10),
		predictionRequest(100, 2000, 5, 5),
	}

	for _, req := range requests {
		result, err := p.Predict(context.Background(), req)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, result.Prediction.SatisfactionScore, 0.0)
		assert.LessOrEqual(t, result.Prediction.SatisfactionScore, 100.0)
		assert.GreaterOrEqual(t, result.Prediction.ReliabilityScore, 0.0)
		assert.LessOrEqual(t, result.Prediction.ReliabilityScore, 100.0)
		assert.LessOrEqual(t, result.Prediction.IndustryPercentile, 100)
	}
}

func TestPredictEmptyCohortCapsConfidence(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	// No stored trip is within ±2km of 400km
	result, err := p.Predict(context.Background(), predictionRequest(400, 150, 4.2, 4.4))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Analysis.SimilarTripsCount)
	assert.LessOrEqual(t, result.Prediction.ReliabilityScore, 30.0)
}

func TestPredictUnratedTripInCohort(t *testing.T) {
	// An imported row can carry NULL ratings (surfaced as NaN) while its
	// distance and fare still fall inside the cohort window.
	trips := append(syntheticTrips(40), trip(10, 150, math.NaN(), math.NaN()))
	store := &memStore{}
	p := newTestPredictor(trips, store)

	result, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)

	confidence := result.Prediction.ReliabilityScore
	assert.False(t, math.IsNaN(confidence))
	assert.GreaterOrEqual(t, confidence, 0.0)
	assert.LessOrEqual(t, confidence, 100.0)

	_, err = json.Marshal(result)
	require.NoError(t, err, "response must serialize")
}

func TestPredictCohortCounted(t *testing.T) {
	trips := syntheticTrips(40)
	store := &memStore{}
	p := newTestPredictor(trips, store)

	result, err := p.Predict(context.Background(), predictionRequest(11, 130, 4.2, 4.4))
	require.NoError(t, err)

	source := &sliceTripSource{trips: trips}
	cohort, err := source.Cohort(context.Background(), 11, 130, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, len(cohort), result.Analysis.SimilarTripsCount)
	assert.NotEmpty(t, cohort)
}

func TestPredictValidation(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	tests := []struct {
		name string
		req  types.PredictionRequest
	}{
		{
			name: "missing field",
			req: types.PredictionRequest{
				DistanceTravelledKM: ptr(10.0),
				FareAmount:          ptr(150.0),
				PassengerRating:     ptr(4.5),
			},
		},
		{name: "negative distance", req: predictionRequest(-1, 150, 4.5, 4.5)},
		{name: "negative fare", req: predictionRequest(10, -150, 4.5, 4.5)},
		{name: "passenger rating above scale", req: predictionRequest(10, 150, 10.5, 4.5)},
		{name: "driver rating below scale", req: predictionRequest(10, 150, 4.5, -0.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Predict(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
			assert.Equal(t, 0, store.saves, "validation rejects before any training")
		})
	}
}

func TestPredictSelfHealsBrokenArtifact(t *testing.T) {
	store := &memStore{
		loadErr:   errors.NewModelLoadError("persisted model/scaler pair is incomplete", nil),
		failLoads: 1,
	}
	p := newTestPredictor(syntheticTrips(40), store)

	result, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, store.saves, "broken artifact healed by one retrain")
}

func TestPredictBrokenArtifactSecondFailurePropagates(t *testing.T) {
	store := &memStore{
		loadErr:   errors.NewModelLoadError("failed to read persisted model", nil),
		failLoads: -1,
	}
	p := newTestPredictor(syntheticTrips(40), store)

	_, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestPredictColdStartWithTooFewRowsFails(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(10), store)

	_, err := p.Predict(context.Background(), predictionRequest(10, 150, 4.2, 4.4))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTraining))
}

func TestPredictMarketPositionAndTrend(t *testing.T) {
	store := &memStore{}
	p := newTestPredictor(syntheticTrips(40), store)

	// Both ratings at 9: score 90, positive trend
	high, err := p.Predict(context.Background(), predictionRequest(10, 150, 9, 9))
	require.NoError(t, err)
	assert.Equal(t, "Above Average", high.Analysis.MarketPosition)
	assert.Equal(t, "Positive", high.Analysis.Trend)

	low, err := p.Predict(context.Background(), predictionRequest(10, 150, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, "Below Average", low.Analysis.MarketPosition)
	assert.Equal(t, "Needs Improvement", low.Analysis.Trend)
}

func ptr(v float64) *float64 { return &v }
