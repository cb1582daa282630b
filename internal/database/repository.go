package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/goodcabs/tripsense/internal/types"
)

// TripRepository provides read/write access to the fact_trips table. It is
// the TripSource the satisfaction core consumes.
type TripRepository struct {
	db *DB
}

// NewTripRepository creates a repository over db.
func NewTripRepository(db *DB) *TripRepository {
	return &TripRepository{db: db}
}

// tripRow mirrors fact_trips with nullable numeric columns; NULLs become NaN
// in the returned records so the feature pipeline can drop them.
type tripRow struct {
	TripID          string          `db:"trip_id"`
	City            string          `db:"city"`
	TripDate        string          `db:"trip_date"`
	PassengerType   string          `db:"passenger_type"`
	DistanceKM      sql.NullFloat64 `db:"distance_km"`
	FareAmount      sql.NullFloat64 `db:"fare_amount"`
	PassengerRating sql.NullFloat64 `db:"passenger_rating"`
	DriverRating    sql.NullFloat64 `db:"driver_rating"`
}

func (r tripRow) record() types.TripRecord {
	return types.TripRecord{
		TripID:          r.TripID,
		City:            r.City,
		TripDate:        r.TripDate,
		PassengerType:   r.PassengerType,
		DistanceKM:      nullToNaN(r.DistanceKM),
		FareAmount:      nullToNaN(r.FareAmount),
		PassengerRating: nullToNaN(r.PassengerRating),
		DriverRating:    nullToNaN(r.DriverRating),
	}
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

const tripColumns = `trip_id, city, trip_date, passenger_type, distance_km, fare_amount, passenger_rating, driver_rating`

// AllTrips returns the full historical dataset.
func (r *TripRepository) AllTrips(ctx context.Context) ([]types.TripRecord, error) {
	var rows []tripRow
	query := fmt.Sprintf(`SELECT %s FROM fact_trips ORDER BY trip_id`, tripColumns)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to select trips: %w", err)
	}
	return toRecords(rows), nil
}

// Cohort returns all trips whose distance and fare both fall within the
// given absolute windows around the input.
func (r *TripRepository) Cohort(ctx context.Context, distanceKM, fareAmount, distanceWindow, fareWindow float64) ([]types.TripRecord, error) {
	var rows []tripRow
	query := fmt.Sprintf(`SELECT %s FROM fact_trips
		WHERE distance_km BETWEEN ? AND ?
		  AND fare_amount BETWEEN ? AND ?`, tripColumns)
	err := r.db.SelectContext(ctx, &rows, query,
		distanceKM-distanceWindow, distanceKM+distanceWindow,
		fareAmount-fareWindow, fareAmount+fareWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to select cohort: %w", err)
	}
	return toRecords(rows), nil
}

// Count returns the number of stored trips.
func (r *TripRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM fact_trips`); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return n, nil
}

// InsertTrips upserts a batch of trips in one transaction. NaN values are
// stored as NULL.
func (r *TripRepository) InsertTrips(ctx context.Context, trips []types.TripRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fact_trips
		(trip_id, city, trip_date, passenger_type, distance_km, fare_amount, passenger_rating, driver_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
			city = excluded.city,
			trip_date = excluded.trip_date,
			passenger_type = excluded.passenger_type,
			distance_km = excluded.distance_km,
			fare_amount = excluded.fare_amount,
			passenger_rating = excluded.passenger_rating,
			driver_rating = excluded.driver_rating`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trips {
		_, err := stmt.ExecContext(ctx, t.TripID, t.City, t.TripDate, t.PassengerType,
			naNToNull(t.DistanceKM), naNToNull(t.FareAmount),
			naNToNull(t.PassengerRating), naNToNull(t.DriverRating))
		if err != nil {
			return fmt.Errorf("failed to insert trip %s: %w", t.TripID, err)
		}
	}

	return tx.Commit()
}

func naNToNull(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func toRecords(rows []tripRow) []types.TripRecord {
	records := make([]types.TripRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records
}
