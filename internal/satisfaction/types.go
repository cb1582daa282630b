package satisfaction

import (
	"context"

	"github.com/goodcabs/tripsense/internal/types"
)

// FeatureCount is the fixed number of predictor columns.
const FeatureCount = 4

// FeatureNames is the fixed feature column order used by the scaler and the
// model. The coefficient at index i always belongs to FeatureNames[i].
var FeatureNames = []string{
	"distance_travelled_km",
	"fare_amount",
	"passenger_rating",
	"driver_rating",
}

// TrainedModel holds the fitted linear regression. Coefficients follow
// FeatureNames order. Created by a training run and never mutated in place.
type TrainedModel struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Predict returns the raw model output (rating units, 0-10 scale) for one
// already-standardized feature row.
func (m *TrainedModel) Predict(row []float64) float64 {
	sum := m.Intercept
	for j, v := range row {
		sum += m.Coefficients[j] * v
	}
	return sum
}

// FeatureScaler holds per-feature standardization parameters. It is only
// valid together with the model produced by the same training run.
type FeatureScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// ModelStore persists the (model, scaler) pair as a matched unit. Load
// returns (nil, nil, nil) when no artifact exists yet; a partial or
// mismatched artifact is a model-load error. Save must be atomic from a
// concurrent reader's point of view.
type ModelStore interface {
	Load() (*TrainedModel, *FeatureScaler, error)
	Save(model *TrainedModel, scaler *FeatureScaler) error
}

// TripSource provides read access to the historical trips dataset.
type TripSource interface {
	AllTrips(ctx context.Context) ([]types.TripRecord, error)
	Cohort(ctx context.Context, distanceKM, fareAmount, distanceWindow, fareWindow float64) ([]types.TripRecord, error)
}

// ModelPerformance carries the hold-out and cross-validation metrics of one
// training run.
type ModelPerformance struct {
	RMSE             float64 `json:"rmse"`
	MAE              float64 `json:"mae"`
	R2               float64 `json:"r2_score"`
	CVMean           float64 `json:"cv_mean_score"`
	CVStd            float64 `json:"cv_std_score"`
	ModelReliability float64 `json:"model_reliability"`
}

// FeatureImportance ranks one feature by absolute coefficient magnitude.
type FeatureImportance struct {
	Feature     string  `json:"feature"`
	Importance  float64 `json:"importance"`
	ImpactLevel string  `json:"impact_level"`
}

// TrainingMetadata describes the dataset split of a training run.
type TrainingMetadata struct {
	TotalSamples         int      `json:"total_samples"`
	TrainingSamples      int      `json:"training_samples"`
	TestSamples          int      `json:"test_samples"`
	ModelType            string   `json:"model_type"`
	FeaturesUsed         []string `json:"features_used"`
	CrossValidationFolds int      `json:"cross_validation_folds"`
}

// EvaluationReport is returned to the caller of a training run. It is never
// persisted.
type EvaluationReport struct {
	ModelPerformance  ModelPerformance    `json:"model_performance"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	Metadata          TrainingMetadata    `json:"training_metadata"`
}

// Priority levels for actionable insights.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Impact levels for actionable insights.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
)

// Insight is one prioritized, human-readable recommendation.
type Insight struct {
	Text     string   `json:"insight"`
	Priority Priority `json:"priority"`
	Impact   Impact   `json:"impact"`
}

// Status is the tiered satisfaction classification.
type Status string

const (
	StatusExceptional    Status = "Exceptional"
	StatusExcellent      Status = "Excellent"
	StatusVeryGood       Status = "Very Good"
	StatusGood           Status = "Good"
	StatusSatisfactory   Status = "Satisfactory"
	StatusNeedsAttention Status = "Needs Attention"
	StatusAtRisk         Status = "At Risk"
	StatusCritical       Status = "Critical"
)

// Prediction is the score section of a prediction result.
type Prediction struct {
	SatisfactionScore  float64 `json:"satisfaction_score"`
	Status             Status  `json:"status"`
	ConfidenceLevel    string  `json:"confidence_level"`
	IndustryPercentile int     `json:"industry_percentile"`
	ReliabilityScore   float64 `json:"reliability_score"`
}

// CohortAnalysis is the qualitative market context of a prediction.
type CohortAnalysis struct {
	SimilarTripsCount int    `json:"similar_trips_count"`
	MarketPosition    string `json:"market_position"`
	Trend             string `json:"trend"`
}

// Recommendations partitions insights by urgency.
type Recommendations struct {
	ImmediateActions     []Insight `json:"immediate_actions"`
	LongTermImprovements []Insight `json:"long_term_improvements"`
}

// PredictionResult is the full composed response of one prediction call.
// Transient, returned per call.
type PredictionResult struct {
	Prediction      Prediction      `json:"prediction"`
	Analysis        CohortAnalysis  `json:"analysis"`
	Insights        []Insight       `json:"insights"`
	Recommendations Recommendations `json:"recommendations"`
}
