package postgres

import (
	"context"
	"database/sql"
	"time"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
)

type overrideRepository struct {
	db *sql.DB
}

func NewOverrideRepository(db *sql.DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) Upsert(ctx context.Context, o *domain.AvailabilityOverride) error {
	query := `INSERT INTO availability_overrides (equipment_id, date, is_available, reason, created_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (equipment_id, date) DO UPDATE
	          SET is_available = EXCLUDED.is_available, reason = EXCLUDED.reason, created_by = EXCLUDED.created_by, created_on = EXCLUDED.created_on
	          RETURNING id`
	now := time.Now()
	logger.DatabaseCall("UPSERT", "availability_overrides", "equipment_id", o.EquipmentID, "date", o.Date)
	if err := r.db.QueryRowContext(ctx, query, o.EquipmentID, o.Date, o.IsAvailable, nullString(o.Reason), o.CreatedBy, now).Scan(&o.ID); err != nil {
		return translate(err, "override")
	}
	o.CreatedOn = now
	return nil
}

func (r *overrideRepository) ListByEquipment(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error) {
	return listOverrides(ctx, r.db, equipmentID, from, to.AddDays(1))
}

// listOverrides returns overrides for dates in [from, until).
func listOverrides(ctx context.Context, q querier, equipmentID int32, from, until calendar.Date) ([]domain.AvailabilityOverride, error) {
	query := `SELECT id, equipment_id, date, is_available, COALESCE(reason, ''), created_by, created_on
	          FROM availability_overrides WHERE equipment_id = $1 AND date >= $2 AND date < $3 ORDER BY date, created_on, id`
	rows, err := q.QueryContext(ctx, query, equipmentID, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AvailabilityOverride
	for rows.Next() {
		var o domain.AvailabilityOverride
		if err := rows.Scan(&o.ID, &o.EquipmentID, &o.Date, &o.IsAvailable, &o.Reason, &o.CreatedBy, &o.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
