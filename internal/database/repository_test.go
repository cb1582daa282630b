package database

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodcabs/tripsense/internal/types"
)

func newTestRepo(t *testing.T) *TripRepository {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTripRepository(db)
}

func TestInsertAndAllTrips(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	trips := []types.TripRecord{
		{TripID: "T-002", City: "Jaipur", TripDate: "2024-05-02", PassengerType: "new", DistanceKM: 12, FareAmount: 180, PassengerRating: 4.5, DriverRating: 4.8},
		{TripID: "T-001", City: "Lucknow", TripDate: "2024-05-01", PassengerType: "repeated", DistanceKM: 8, FareAmount: 120, PassengerRating: 3.9, DriverRating: 4.1},
	}
	require.NoError(t, repo.InsertTrips(ctx, trips))

	got, err := repo.AllTrips(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "T-001", got[0].TripID, "trips come back ordered by trip_id")
	assert.Equal(t, "Lucknow", got[0].City)
	assert.Equal(t, 8.0, got[0].DistanceKM)
	assert.Equal(t, "T-002", got[1].TripID)
}

func TestInsertTripsUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := types.TripRecord{TripID: "T-001", City: "Jaipur", DistanceKM: 10, FareAmount: 150, PassengerRating: 4, DriverRating: 4}
	require.NoError(t, repo.InsertTrips(ctx, []types.TripRecord{first}))

	first.FareAmount = 200
	require.NoError(t, repo.InsertTrips(ctx, []types.TripRecord{first}))

	got, err := repo.AllTrips(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 200.0, got[0].FareAmount)
}

func TestMissingValuesRoundTripAsNaN(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertTrips(ctx, []types.TripRecord{
		{TripID: "T-001", City: "Jaipur", DistanceKM: 10, FareAmount: math.NaN(), PassengerRating: 4, DriverRating: math.Inf(1)},
	}))

	got, err := repo.AllTrips(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, math.IsNaN(got[0].FareAmount), "NULL fare comes back as NaN")
	assert.True(t, math.IsNaN(got[0].DriverRating), "Inf is stored as NULL and comes back as NaN")
	assert.Equal(t, 10.0, got[0].DistanceKM)
	assert.False(t, got[0].HasFeatures())
}

func TestCohortWindows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertTrips(ctx, []types.TripRecord{
		{TripID: "T-001", DistanceKM: 10, FareAmount: 150, PassengerRating: 4, DriverRating: 4},
		{TripID: "T-002", DistanceKM: 12, FareAmount: 200, PassengerRating: 4, DriverRating: 4},   // both bounds inclusive
		{TripID: "T-003", DistanceKM: 12.1, FareAmount: 150, PassengerRating: 4, DriverRating: 4}, // distance outside
		{TripID: "T-004", DistanceKM: 10, FareAmount: 201, PassengerRating: 4, DriverRating: 4},   // fare outside
		{TripID: "T-005", DistanceKM: math.NaN(), FareAmount: 150, PassengerRating: 4, DriverRating: 4},
	}))

	cohort, err := repo.Cohort(ctx, 10, 150, 2, 50)
	require.NoError(t, err)

	ids := make([]string, len(cohort))
	for i, c := range cohort {
		ids[i] = c.TripID
	}
	assert.ElementsMatch(t, []string{"T-001", "T-002"}, ids)
}

func TestCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, repo.InsertTrips(ctx, []types.TripRecord{
		{TripID: "T-001", DistanceKM: 10, FareAmount: 150, PassengerRating: 4, DriverRating: 4},
		{TripID: "T-002", DistanceKM: 11, FareAmount: 160, PassengerRating: 4, DriverRating: 4},
	}))

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
