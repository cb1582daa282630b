package types

import "math"

// TripRecord is one row of the historical trips dataset. Missing numeric
// values are represented as NaN and dropped by the feature pipeline.
type TripRecord struct {
	TripID          string  `db:"trip_id" json:"trip_id"`
	City            string  `db:"city" json:"city"`
	TripDate        string  `db:"trip_date" json:"trip_date"`
	PassengerType   string  `db:"passenger_type" json:"passenger_type"`
	DistanceKM      float64 `db:"distance_km" json:"distance_km"`
	FareAmount      float64 `db:"fare_amount" json:"fare_amount"`
	PassengerRating float64 `db:"passenger_rating" json:"passenger_rating"`
	DriverRating    float64 `db:"driver_rating" json:"driver_rating"`
}

// HasFeatures reports whether all four predictor fields are usable numbers.
func (t TripRecord) HasFeatures() bool {
	for _, v := range []float64{t.DistanceKM, t.FareAmount, t.PassengerRating, t.DriverRating} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PredictionRequest is the caller-supplied input for a satisfaction
// prediction. Fields are pointers so that zero values bind while missing
// fields fail validation at the boundary.
type PredictionRequest struct {
	DistanceTravelledKM *float64 `json:"distance_travelled_km" binding:"required"`
	FareAmount          *float64 `json:"fare_amount" binding:"required"`
	PassengerRating     *float64 `json:"passenger_rating" binding:"required"`
	DriverRating        *float64 `json:"driver_rating" binding:"required"`
}
