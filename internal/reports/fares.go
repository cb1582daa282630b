package reports

import (
	"context"
	"fmt"
	"sort"
)

// CityFareMetrics summarizes fare and distance behavior for one city.
type CityFareMetrics struct {
	City        string  `db:"city" json:"city"`
	TripCount   int     `db:"trip_count" json:"trip_count"`
	AvgFare     float64 `db:"avg_fare" json:"avg_fare"`
	AvgDistance float64 `db:"avg_distance" json:"avg_distance_km"`
	FarePerKM   float64 `db:"fare_per_km" json:"fare_per_km"`
}

// FareReport is the city fares analysis payload.
type FareReport struct {
	Cities         []CityFareMetrics `json:"city_metrics"`
	FareEfficiency []CityFareMetrics `json:"fare_efficiency"`
	OverallAvgFare float64           `json:"overall_avg_fare"`
}

// CityFares computes per-city fare/distance metrics and ranks cities by fare
// per kilometer.
func (s *Service) CityFares(ctx context.Context) (*FareReport, error) {
	var cities []CityFareMetrics
	err := s.db.SelectContext(ctx, &cities, `
		SELECT city,
		       COUNT(*) AS trip_count,
		       AVG(fare_amount) AS avg_fare,
		       AVG(distance_km) AS avg_distance,
		       SUM(fare_amount) / SUM(distance_km) AS fare_per_km
		FROM fact_trips
		WHERE fare_amount IS NOT NULL AND distance_km IS NOT NULL AND distance_km > 0
		GROUP BY city
		ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate city fares: %w", err)
	}

	var overall float64
	err = s.db.GetContext(ctx, &overall, `
		SELECT COALESCE(AVG(fare_amount), 0) FROM fact_trips WHERE fare_amount IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overall fare: %w", err)
	}

	efficiency := append([]CityFareMetrics(nil), cities...)
	sort.SliceStable(efficiency, func(i, j int) bool {
		return efficiency[i].FarePerKM > efficiency[j].FarePerKM
	})

	return &FareReport{
		Cities:         cities,
		FareEfficiency: efficiency,
		OverallAvgFare: overall,
	}, nil
}
