package database

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goodcabs/tripsense/internal/types"
)

// column aliases accepted in trip CSV headers. The original extract names
// the distance column "distance_travelled(km)".
var columnAliases = map[string]string{
	"trip_id":                "trip_id",
	"city":                   "city",
	"city_name":              "city",
	"date":                   "trip_date",
	"trip_date":              "trip_date",
	"passenger_type":         "passenger_type",
	"distance_travelled(km)": "distance_km",
	"distance_travelled_km":  "distance_km",
	"distance_km":            "distance_km",
	"fare_amount":            "fare_amount",
	"passenger_rating":       "passenger_rating",
	"driver_rating":          "driver_rating",
}

// ImportCSV loads a trips CSV extract into the repository. Rows missing a
// numeric value keep the row with the value stored as NULL; the feature
// pipeline decides what to drop. Returns the number of rows imported.
func ImportCSV(ctx context.Context, repo *TripRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open trips CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := columnAliases[key]; ok {
			cols[canonical] = i
		}
	}
	for _, required := range []string{"distance_km", "fare_amount", "passenger_rating", "driver_rating"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("trips CSV is missing required column %q", required)
		}
	}

	const batchSize = 500
	batch := make([]types.TripRecord, 0, batchSize)
	imported := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := repo.InsertTrips(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("failed to read CSV row: %w", err)
		}

		batch = append(batch, types.TripRecord{
			TripID:          stringField(row, cols, "trip_id", uuid.NewString()),
			City:            stringField(row, cols, "city", ""),
			TripDate:        stringField(row, cols, "trip_date", ""),
			PassengerType:   stringField(row, cols, "passenger_type", ""),
			DistanceKM:      floatField(row, cols, "distance_km"),
			FareAmount:      floatField(row, cols, "fare_amount"),
			PassengerRating: floatField(row, cols, "passenger_rating"),
			DriverRating:    floatField(row, cols, "driver_rating"),
		})

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return imported, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, err
	}

	slog.Info("Trips CSV imported", "path", path, "rows", imported)
	return imported, nil
}

func stringField(row []string, cols map[string]int, name, fallback string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return fallback
	}
	return strings.TrimSpace(row[idx])
}

func floatField(row []string, cols map[string]int, name string) float64 {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
