package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
)

const equipmentColumns = `id, name, category, COALESCE(description, ''), daily_rate_cents, weekly_rate_cents, monthly_rate_cents, delivery_fee_cents, security_deposit_cents, current_status, is_available, created_on, updated_on`

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func scanEquipment(row interface{ Scan(...any) error }) (*domain.Equipment, error) {
	eq := &domain.Equipment{}
	var monthly sql.NullInt64
	err := row.Scan(&eq.ID, &eq.Name, &eq.Category, &eq.Description, &eq.DailyRateCents, &eq.WeeklyRateCents, &monthly,
		&eq.DeliveryFeeCents, &eq.SecurityDepositCents, &eq.CurrentStatus, &eq.IsAvailable, &eq.CreatedOn, &eq.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if monthly.Valid {
		eq.MonthlyRateCents = &monthly.Int64
	}
	return eq, nil
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	query := `INSERT INTO equipment (name, category, description, daily_rate_cents, weekly_rate_cents, monthly_rate_cents, delivery_fee_cents, security_deposit_cents, current_status, is_available, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	now := time.Now()
	logger.DatabaseCall("INSERT", "equipment", "name", eq.Name)
	err := r.db.QueryRowContext(ctx, query, eq.Name, eq.Category, nullString(eq.Description), eq.DailyRateCents, eq.WeeklyRateCents,
		eq.MonthlyRateCents, eq.DeliveryFeeCents, eq.SecurityDepositCents, eq.CurrentStatus, eq.IsAvailable, now).Scan(&eq.ID)
	if err != nil {
		return err
	}
	eq.CreatedOn, eq.UpdatedOn = now, now
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	eq, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("equipment %d", id))
	}
	return eq, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	query := `UPDATE equipment SET name=$1, category=$2, description=$3, daily_rate_cents=$4, weekly_rate_cents=$5, monthly_rate_cents=$6,
	          delivery_fee_cents=$7, security_deposit_cents=$8, current_status=$9, is_available=$10, updated_on=$11 WHERE id=$12`
	now := time.Now()
	logger.DatabaseCall("UPDATE", "equipment", "id", eq.ID)
	res, err := r.db.ExecContext(ctx, query, eq.Name, eq.Category, nullString(eq.Description), eq.DailyRateCents, eq.WeeklyRateCents,
		eq.MonthlyRateCents, eq.DeliveryFeeCents, eq.SecurityDepositCents, eq.CurrentStatus, eq.IsAvailable, now, eq.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("equipment %d: %w", eq.ID, domain.ErrNotFound)
	}
	eq.UpdatedOn = now
	return nil
}

func (r *equipmentRepository) List(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	offset := (page - 1) * pageSize
	sql := `SELECT ` + equipmentColumns + ` FROM equipment`

	var args []interface{}
	argIdx := 1
	if category != "" {
		sql += " WHERE category = $1"
		args = append(args, category)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *eq)
	}
	return items, count, rows.Err()
}
