package reports

import (
	"context"
	"fmt"
)

// MonthlyDemand is the trip volume of one city in one month.
type MonthlyDemand struct {
	City      string `db:"city" json:"city"`
	Month     string `db:"month" json:"month"`
	TripCount int    `db:"trip_count" json:"trip_count"`
}

// DemandReport is the demand analysis payload.
type DemandReport struct {
	Monthly   []MonthlyDemand `json:"monthly_demand"`
	PeakMonth string          `json:"peak_month"`
	LowMonth  string          `json:"low_month"`
}

// Demand computes per-city monthly trip volume plus the overall peak and low
// months. Dates are stored as ISO strings, so the month is their YYYY-MM
// prefix.
func (s *Service) Demand(ctx context.Context) (*DemandReport, error) {
	var monthly []MonthlyDemand
	err := s.db.SelectContext(ctx, &monthly, `
		SELECT city,
		       SUBSTR(trip_date, 1, 7) AS month,
		       COUNT(*) AS trip_count
		FROM fact_trips
		WHERE trip_date != ''
		GROUP BY city, month
		ORDER BY city, month`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly demand: %w", err)
	}

	totals := make(map[string]int)
	for _, m := range monthly {
		totals[m.Month] += m.TripCount
	}

	report := &DemandReport{Monthly: monthly}
	peakCount, lowCount := -1, -1
	for month, count := range totals {
		if peakCount == -1 || count > peakCount || (count == peakCount && month < report.PeakMonth) {
			report.PeakMonth, peakCount = month, count
		}
		if lowCount == -1 || count < lowCount || (count == lowCount && month < report.LowMonth) {
			report.LowMonth, lowCount = month, count
		}
	}
	return report, nil
}
