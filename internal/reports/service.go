package reports

import (
	"github.com/goodcabs/tripsense/internal/database"
)

// Service computes descriptive city-level reports over the trips dataset.
// All queries are read-only aggregates; rows with NULL metrics are excluded
// per aggregate by SQL semantics.
type Service struct {
	db *database.DB
}

// NewService creates a reports service over db.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}
