package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
)

const rentalColumns = `id, equipment_id, farmer_id, start_date, end_date, rental_duration_days, machine_fee_cents, delivery_fee_cents,
	security_deposit_cents, total_amount_cents, receiver_name, receiver_phone, delivery_address, latitude, longitude,
	COALESCE(notes, ''), status, COALESCE(admin_notes, ''), COALESCE(rejection_reason, ''), approved_by, approved_at,
	pickup_confirmed_at, return_confirmed_at, COALESCE(pickup_credential_digest, ''), COALESCE(return_credential_digest, ''),
	COALESCE(pickup_nonce, ''), COALESCE(return_nonce, ''), COALESCE(idempotency_key, ''), created_at, updated_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row interface{ Scan(...any) error }, rt *domain.RentalRequest) error {
	var (
		lat, lng   sql.NullFloat64
		approvedBy sql.NullInt32
		approvedAt, pickupAt, returnAt sql.NullTime
	)
	err := row.Scan(&rt.ID, &rt.EquipmentID, &rt.FarmerID, &rt.StartDate, &rt.EndDate, &rt.RentalDurationDays,
		&rt.MachineFeeCents, &rt.DeliveryFeeCents, &rt.SecurityDepositCents, &rt.TotalAmountCents,
		&rt.ReceiverName, &rt.ReceiverPhone, &rt.DeliveryAddress, &lat, &lng, &rt.Notes, &rt.Status,
		&rt.AdminNotes, &rt.RejectionReason, &approvedBy, &approvedAt, &pickupAt, &returnAt,
		&rt.PickupCredentialDigest, &rt.ReturnCredentialDigest, &rt.PickupNonce, &rt.ReturnNonce,
		&rt.IdempotencyKey, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return err
	}
	rt.Location = nil
	if lat.Valid && lng.Valid {
		rt.Location = &domain.GeoLocation{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	rt.ApprovedBy = nil
	if approvedBy.Valid {
		rt.ApprovedBy = &approvedBy.Int32
	}
	rt.ApprovedAt = nullTimePtr(approvedAt)
	rt.PickupConfirmedAt = nullTimePtr(pickupAt)
	rt.ReturnConfirmedAt = nullTimePtr(returnAt)
	return nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func collectRentals(rows *sql.Rows) ([]domain.RentalRequest, error) {
	defer rows.Close()
	var out []domain.RentalRequest
	for rows.Next() {
		var rt domain.RentalRequest
		if err := scanRental(rows, &rt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *rentalRepository) CreateIfAvailable(ctx context.Context, rt *domain.RentalRequest, verify repository.VerifyFunc) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if rt.IdempotencyKey != "" {
		found, err := getByIdempotencyKey(ctx, tx, rt.FarmerID, rt.IdempotencyKey, rt)
		if err != nil {
			return false, err
		}
		if found {
			logger.Info("Replayed rental submission", "rentalID", rt.ID, "farmerID", rt.FarmerID)
			return true, nil
		}
	}

	snap, err := loadSnapshot(ctx, tx, rt.EquipmentID, rt.StartDate, rt.EndDate, true)
	if err != nil {
		return false, err
	}
	if err := verify(snap); err != nil {
		return false, err
	}

	query := `INSERT INTO rental_requests (equipment_id, farmer_id, start_date, end_date, rental_duration_days, machine_fee_cents,
	          delivery_fee_cents, security_deposit_cents, total_amount_cents, receiver_name, receiver_phone, delivery_address,
	          latitude, longitude, notes, status, idempotency_key, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18) RETURNING id`
	var lat, lng sql.NullFloat64
	if rt.Location != nil {
		lat = sql.NullFloat64{Float64: rt.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: rt.Location.Longitude, Valid: true}
	}
	now := time.Now()
	logger.DatabaseCall("INSERT", "rental_requests", "equipmentID", rt.EquipmentID, "farmerID", rt.FarmerID)
	err = tx.QueryRowContext(ctx, query, rt.EquipmentID, rt.FarmerID, rt.StartDate, rt.EndDate, rt.RentalDurationDays,
		rt.MachineFeeCents, rt.DeliveryFeeCents, rt.SecurityDepositCents, rt.TotalAmountCents, rt.ReceiverName,
		rt.ReceiverPhone, rt.DeliveryAddress, lat, lng, nullString(rt.Notes), rt.Status, nullString(rt.IdempotencyKey), now).Scan(&rt.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation && rt.IdempotencyKey != "" {
			// A concurrent retry with the same key won; hand back its request.
			tx.Rollback()
			found, lookupErr := getByIdempotencyKey(ctx, r.db, rt.FarmerID, rt.IdempotencyKey, rt)
			if lookupErr == nil && found {
				return true, nil
			}
		}
		return false, translate(err, "rental request")
	}
	if err := tx.Commit(); err != nil {
		return false, translate(err, "rental request")
	}
	rt.CreatedAt, rt.UpdatedAt = now, now
	return false, nil
}

func getByIdempotencyKey(ctx context.Context, q querier, farmerID int32, key string, into *domain.RentalRequest) (bool, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE farmer_id = $1 AND idempotency_key = $2`
	err := scanRental(q.QueryRowContext(ctx, query, farmerID, key), into)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	rt := &domain.RentalRequest{}
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1`
	if err := scanRental(r.db.QueryRowContext(ctx, query, id), rt); err != nil {
		return nil, translate(err, fmt.Sprintf("rental request %d", id))
	}
	return rt, nil
}

func (r *rentalRepository) Transition(ctx context.Context, rt *domain.RentalRequest, from domain.RentalStatus) error {
	query := `UPDATE rental_requests SET status=$1, admin_notes=$2, rejection_reason=$3, approved_by=$4, approved_at=$5,
	          pickup_confirmed_at=$6, return_confirmed_at=$7, pickup_credential_digest=$8, return_credential_digest=$9,
	          pickup_nonce=$10, return_nonce=$11, updated_at=$12
	          WHERE id=$13 AND status=$14`
	now := time.Now()
	logger.DatabaseCall("UPDATE", "rental_requests", "id", rt.ID, "from", from, "to", rt.Status)
	res, err := r.db.ExecContext(ctx, query, rt.Status, nullString(rt.AdminNotes), nullString(rt.RejectionReason), rt.ApprovedBy,
		rt.ApprovedAt, rt.PickupConfirmedAt, rt.ReturnConfirmedAt, nullString(rt.PickupCredentialDigest),
		nullString(rt.ReturnCredentialDigest), nullString(rt.PickupNonce), nullString(rt.ReturnNonce), now, rt.ID, from)
	if err != nil {
		return translate(err, "rental request")
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: rental request %d is no longer %s", domain.ErrInvalidStateTransition, rt.ID, from)
	}
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) ListByFarmer(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.paginate(ctx, domain.RentalFilter{Status: status}, &farmerID, page, pageSize)
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.paginate(ctx, filter, nil, page, pageSize)
}

func (r *rentalRepository) paginate(ctx context.Context, filter domain.RentalFilter, farmerID *int32, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	offset := (page - 1) * pageSize
	sql := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE 1=1`

	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		sql += fmt.Sprintf(" AND "+clause, len(args))
	}
	if farmerID != nil {
		add("farmer_id = $%d", *farmerID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.EquipmentID != 0 {
		add("equipment_id = $%d", filter.EquipmentID)
	}
	if !filter.From.IsZero() {
		add("start_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("start_date <= $%d", filter.To)
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *rentalRepository) ListByStatusAndStart(ctx context.Context, status domain.RentalStatus, start calendar.Date) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE status = $1 AND start_date = $2 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, status, start)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}

func (r *rentalRepository) ListByStatusAndEnd(ctx context.Context, status domain.RentalStatus, end calendar.Date) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE status = $1 AND end_date = $2 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, status, end)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, today calendar.Date) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE status = $1 AND end_date <= $2 ORDER BY end_date, id`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive, today)
	if err != nil {
		return nil, err
	}
	return collectRentals(rows)
}
