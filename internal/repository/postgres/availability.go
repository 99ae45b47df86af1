package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/lib/pq"
)

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Snapshot(ctx context.Context, equipmentID int32, from, to calendar.Date) (*domain.AvailabilitySnapshot, error) {
	return loadSnapshot(ctx, r.db, equipmentID, from, to.AddDays(1), false)
}

// loadSnapshot reads the equipment, the blocking requests overlapping [from, until) and the overrides
// in that window. With lock set the equipment row is held FOR UPDATE until q's transaction ends.
func loadSnapshot(ctx context.Context, q querier, equipmentID int32, from, until calendar.Date, lock bool) (*domain.AvailabilitySnapshot, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	logger.DatabaseCall("SELECT", "equipment", "id", equipmentID, "lock", lock)
	eq, err := scanEquipment(q.QueryRowContext(ctx, query, equipmentID))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("equipment %d", equipmentID))
	}

	blocking, err := listBlocking(ctx, q, equipmentID, from, until)
	if err != nil {
		return nil, err
	}
	overrides, err := listOverrides(ctx, q, equipmentID, from, until)
	if err != nil {
		return nil, err
	}
	return &domain.AvailabilitySnapshot{Equipment: eq, Blocking: blocking, Overrides: overrides}, nil
}

func listBlocking(ctx context.Context, q querier, equipmentID int32, from, until calendar.Date) ([]domain.RentalRequest, error) {
	statuses := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		statuses[i] = string(s)
	}
	query := `SELECT ` + rentalColumns + ` FROM rental_requests
	          WHERE equipment_id = $1 AND status = ANY($2) AND start_date < $4 AND end_date > $3 ORDER BY start_date`
	rows, err := q.QueryContext(ctx, query, equipmentID, pq.Array(statuses), from, until)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}
