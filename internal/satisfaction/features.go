package satisfaction

import (
	"github.com/goodcabs/tripsense/internal/errors"
	"github.com/goodcabs/tripsense/internal/types"
)

// BuildFeatures extracts the feature matrix (FeatureNames column order) and
// the derived satisfaction target (mean of passenger and driver rating) from
// raw trip records. Rows with a missing or non-numeric value in any used
// column are dropped, with their target entries dropped in lock-step.
func BuildFeatures(records []types.TripRecord) ([][]float64, []float64, error) {
	X := make([][]float64, 0, len(records))
	y := make([]float64, 0, len(records))

	for _, r := range records {
		if !r.HasFeatures() {
			continue
		}
		X = append(X, []float64{r.DistanceKM, r.FareAmount, r.PassengerRating, r.DriverRating})
		y = append(y, (r.PassengerRating+r.DriverRating)/2)
	}

	if len(X) == 0 {
		return nil, nil, errors.NewDataError("historical trip dataset has no usable rows after cleaning")
	}

	return X, y, nil
}
