package satisfaction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/goodcabs/tripsense/internal/errors"
	"github.com/goodcabs/tripsense/internal/types"
)

// PredictorConfig holds the cohort window constants. The windows are absolute
// (they do not scale with trip magnitude), preserving the original behavior.
type PredictorConfig struct {
	DistanceWindowKM float64
	FareWindow       float64
}

// DefaultPredictorConfig returns the documented cohort windows.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		DistanceWindowKM: 2,
		FareWindow:       50,
	}
}

// Predictor scores prediction requests against the persisted model. It reads
// the artifact pair, never writes it directly; a missing pair triggers one
// synchronous training run, serialized so concurrent cold starts train once.
type Predictor struct {
	trips   TripSource
	store   ModelStore
	trainer *Trainer
	cfg     PredictorConfig

	mu sync.Mutex // serializes cold-start training
}

// NewPredictor creates a predictor over the given collaborators.
func NewPredictor(trips TripSource, store ModelStore, trainer *Trainer, cfg PredictorConfig) *Predictor {
	if cfg.DistanceWindowKM <= 0 || cfg.FareWindow <= 0 {
		cfg = DefaultPredictorConfig()
	}
	return &Predictor{trips: trips, store: store, trainer: trainer, cfg: cfg}
}

// Predict validates the request, scores it, and composes the full result.
// The satisfaction score is deterministic for a fixed model/scaler/input
// triple; the confidence score additionally depends on the dataset snapshot.
func (p *Predictor) Predict(ctx context.Context, req types.PredictionRequest) (*PredictionResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	distance := *req.DistanceTravelledKM
	fare := *req.FareAmount
	passengerRating := *req.PassengerRating
	driverRating := *req.DriverRating

	model, scaler, err := p.ensureModel(ctx)
	if err != nil {
		return nil, err
	}

	input := []float64{distance, fare, passengerRating, driverRating}
	raw := model.Predict(scaler.TransformRow(input))
	score := clamp(raw*10, 0, 100)

	cohort, err := p.trips.Cohort(ctx, distance, fare, p.cfg.DistanceWindowKM, p.cfg.FareWindow)
	if err != nil {
		return nil, errors.NewInternalError("failed to query comparison cohort", err)
	}

	reliability, err := p.approximateReliability(ctx, model, scaler)
	if err != nil {
		return nil, err
	}

	factors := CohortFactors(raw, cohort, reliability)
	confidence := factors.Score()

	status, level := Classify(score, confidence)
	insights := GenerateInsights(distance, fare, passengerRating, driverRating, score)

	marketPosition := "Below Average"
	if score > 80 {
		marketPosition = "Above Average"
	}
	trend := "Needs Improvement"
	if driverRating >= 4.5 && passengerRating >= 4.5 {
		trend = "Positive"
	}

	return &PredictionResult{
		Prediction: Prediction{
			SatisfactionScore:  score,
			Status:             status,
			ConfidenceLevel:    level,
			IndustryPercentile: int(math.Min(math.Round(score), 100)),
			ReliabilityScore:   round2(confidence),
		},
		Analysis: CohortAnalysis{
			SimilarTripsCount: len(cohort),
			MarketPosition:    marketPosition,
			Trend:             trend,
		},
		Insights:        insights,
		Recommendations: PartitionInsights(insights),
	}, nil
}

// ensureModel loads the persisted pair, training first on a cold start. A
// structurally broken artifact is healed by retraining exactly once; a
// second failure propagates.
func (p *Predictor) ensureModel(ctx context.Context) (*TrainedModel, *FeatureScaler, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	model, scaler, err := p.store.Load()
	if err == nil && model == nil {
		slog.Info("No persisted satisfaction model found, training")
		if _, trainErr := p.trainer.Train(ctx); trainErr != nil {
			return nil, nil, trainErr
		}
		model, scaler, err = p.store.Load()
		if err == nil && model == nil {
			return nil, nil, errors.NewModelLoadError("model store is empty after training", nil)
		}
	} else if err != nil && errors.IsCategory(err, errors.CategoryModelLoad) {
		slog.Warn("Persisted satisfaction model unusable, retraining", "cause", err)
		if _, trainErr := p.trainer.Train(ctx); trainErr != nil {
			return nil, nil, trainErr
		}
		model, scaler, err = p.store.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	return model, scaler, nil
}

// approximateReliability re-scores the model against the full historical
// dataset's passenger-rating column. This conflates training data with the
// reliability measurement; kept for compatibility and isolated here so a
// hold-out-based measure is a one-line swap.
func (p *Predictor) approximateReliability(ctx context.Context, model *TrainedModel, scaler *FeatureScaler) (float64, error) {
	records, err := p.trips.AllTrips(ctx)
	if err != nil {
		return 0, errors.NewInternalError("failed to load historical trips for reliability", err)
	}

	var X [][]float64
	var ratings []float64
	for _, r := range records {
		if !r.HasFeatures() {
			continue
		}
		X = append(X, []float64{r.DistanceKM, r.FareAmount, r.PassengerRating, r.DriverRating})
		ratings = append(ratings, r.PassengerRating)
	}
	if len(X) == 0 {
		return 0, nil
	}

	return R2(ratings, model.PredictAll(scaler.Transform(X))), nil
}

func validateRequest(req types.PredictionRequest) error {
	fields := map[string]*float64{
		"distance_travelled_km": req.DistanceTravelledKM,
		"fare_amount":           req.FareAmount,
		"passenger_rating":      req.PassengerRating,
		"driver_rating":         req.DriverRating,
	}
	for name, v := range fields {
		if v == nil {
			return errors.NewValidationError(fmt.Sprintf("missing required field %q", name))
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return errors.NewValidationError(fmt.Sprintf("field %q must be a finite number", name))
		}
	}
	if *req.DistanceTravelledKM < 0 {
		return errors.NewValidationError("distance_travelled_km must be non-negative")
	}
	if *req.FareAmount < 0 {
		return errors.NewValidationError("fare_amount must be non-negative")
	}
	for name, v := range map[string]float64{
		"passenger_rating": *req.PassengerRating,
		"driver_rating":    *req.DriverRating,
	} {
		if v < 0 || v > 10 {
			return errors.NewValidationError(fmt.Sprintf("field %q must be within [0, 10]", name))
		}
	}
	return nil
}
