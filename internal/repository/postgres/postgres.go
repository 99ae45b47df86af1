package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
	repository.EquipmentRepository
	repository.OverrideRepository
	repository.AvailabilityRepository
	repository.RentalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		EquipmentRepository:    NewEquipmentRepository(db),
		OverrideRepository:     NewOverrideRepository(db),
		AvailabilityRepository: NewAvailabilityRepository(db),
		RentalRepository:       NewRentalRepository(db),
	}
}

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("EXEC", "schema")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
	pqCheckViolation     = "23514"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	switch pqCode(err) {
	case pqExclusionViolation:
		return fmt.Errorf("%w: window overlaps an existing booking", domain.ErrDateUnavailable)
	case pqCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrDateRangeInvalid, err.Error())
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
