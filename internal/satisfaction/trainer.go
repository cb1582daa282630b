package satisfaction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/goodcabs/tripsense/internal/errors"
)

// TrainerConfig controls dataset splitting and the training floor.
type TrainerConfig struct {
	// MinRows is the hard floor of usable rows below which training fails.
	// OLS is defined for much smaller N but statistically meaningless there.
	MinRows int
	// TestRatio is the hold-out fraction of the seeded 80/20 split.
	TestRatio float64
	// Folds is the cross-validation fold count.
	Folds int
	// Seed fixes the split and fold permutations for reproducibility.
	Seed int64
}

// DefaultTrainerConfig returns the documented training defaults.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinRows:   20,
		TestRatio: 0.2,
		Folds:     5,
		Seed:      42,
	}
}

// Trainer fits the satisfaction regression and persists the resulting
// (model, scaler) pair. It is the only writer of the persisted artifact.
type Trainer struct {
	trips TripSource
	store ModelStore
	cfg   TrainerConfig
}

// NewTrainer creates a trainer over the given trip source and model store.
func NewTrainer(trips TripSource, store ModelStore, cfg TrainerConfig) *Trainer {
	if cfg.MinRows <= 0 {
		cfg = DefaultTrainerConfig()
	}
	return &Trainer{trips: trips, store: store, cfg: cfg}
}

// Train runs a full training pass: clean, standardize, split, fit, evaluate,
// persist. The previous artifact is left untouched on any failure.
func (t *Trainer) Train(ctx context.Context) (*EvaluationReport, error) {
	records, err := t.trips.AllTrips(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to load historical trips", err)
	}

	X, y, err := BuildFeatures(records)
	if err != nil {
		return nil, err
	}
	if len(X) < t.cfg.MinRows {
		return nil, errors.NewTrainingError(
			fmt.Sprintf("training requires at least %d usable rows, got %d", t.cfg.MinRows, len(X)), nil)
	}

	scaler := FitScaler(X)
	XScaled := scaler.Transform(X)

	XTrain, XTest, yTrain, yTest := TrainTestSplit(XScaled, y, t.cfg.TestRatio, t.cfg.Seed)

	model, err := FitOLS(XTrain, yTrain)
	if err != nil {
		return nil, errors.NewTrainingError("failed to fit linear regression", err)
	}

	cvScores, err := CrossValidateR2(XScaled, y, t.cfg.Folds, t.cfg.Seed)
	if err != nil {
		return nil, errors.NewTrainingError("cross-validation failed", err)
	}

	yPred := model.PredictAll(XTest)
	r2 := R2(yTest, yPred)

	report := &EvaluationReport{
		ModelPerformance: ModelPerformance{
			RMSE:             RMSE(yTest, yPred),
			MAE:              MAE(yTest, yPred),
			R2:               r2,
			CVMean:           mean(cvScores),
			CVStd:            stddev(cvScores),
			ModelReliability: r2,
		},
		FeatureImportance: rankFeatures(model),
		Metadata: TrainingMetadata{
			TotalSamples:         len(X),
			TrainingSamples:      len(XTrain),
			TestSamples:          len(XTest),
			ModelType:            "Linear Regression",
			FeaturesUsed:         append([]string(nil), FeatureNames...),
			CrossValidationFolds: t.cfg.Folds,
		},
	}

	if err := t.store.Save(model, scaler); err != nil {
		return nil, errors.NewInternalError("failed to persist model artifacts", err)
	}

	slog.Info("Satisfaction model trained",
		"samples", len(X),
		"r2", report.ModelPerformance.R2,
		"rmse", report.ModelPerformance.RMSE,
		"cv_mean", report.ModelPerformance.CVMean,
	)

	return report, nil
}

// rankFeatures orders features by absolute coefficient magnitude. Features
// above the mean absolute coefficient are tagged High impact.
func rankFeatures(model *TrainedModel) []FeatureImportance {
	abs := make([]float64, len(model.Coefficients))
	for i, c := range model.Coefficients {
		abs[i] = math.Abs(c)
	}
	threshold := mean(abs)

	ranked := make([]FeatureImportance, len(abs))
	for i, a := range abs {
		impact := "Medium"
		if a > threshold {
			impact = "High"
		}
		ranked[i] = FeatureImportance{
			Feature:     FeatureNames[i],
			Importance:  a,
			ImpactLevel: impact,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}
