package reports

import (
	"context"
	"fmt"
)

// CityRatingMetrics summarizes rating behavior for one city.
type CityRatingMetrics struct {
	City               string  `db:"city" json:"city"`
	TripCount          int     `db:"trip_count" json:"trip_count"`
	AvgPassengerRating float64 `db:"avg_passenger_rating" json:"avg_passenger_rating"`
	AvgDriverRating    float64 `db:"avg_driver_rating" json:"avg_driver_rating"`
}

// RatingReport is the city ratings analysis payload.
type RatingReport struct {
	Cities     []CityRatingMetrics `json:"city_ratings"`
	TopCity    string              `json:"top_rated_city"`
	BottomCity string              `json:"bottom_rated_city"`
}

// CityRatings computes per-city passenger and driver rating averages and the
// top/bottom cities by passenger rating.
func (s *Service) CityRatings(ctx context.Context) (*RatingReport, error) {
	var cities []CityRatingMetrics
	err := s.db.SelectContext(ctx, &cities, `
		SELECT city,
		       COUNT(*) AS trip_count,
		       AVG(passenger_rating) AS avg_passenger_rating,
		       AVG(driver_rating) AS avg_driver_rating
		FROM fact_trips
		WHERE passenger_rating IS NOT NULL AND driver_rating IS NOT NULL
		GROUP BY city
		ORDER BY avg_passenger_rating DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate city ratings: %w", err)
	}

	report := &RatingReport{Cities: cities}
	if len(cities) > 0 {
		report.TopCity = cities[0].City
		report.BottomCity = cities[len(cities)-1].City
	}
	return report, nil
}
