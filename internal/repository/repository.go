package repository

import (
	"context"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
)

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) error
	List(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error)
}

type OverrideRepository interface {
	// Upsert replaces any override already stored for (EquipmentID, Date).
	Upsert(ctx context.Context, o *domain.AvailabilityOverride) error
	ListByEquipment(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error)
}

type AvailabilityRepository interface {
	// Snapshot loads everything the resolver needs for [from, to] without locking.
	Snapshot(ctx context.Context, equipmentID int32, from, to calendar.Date) (*domain.AvailabilitySnapshot, error)
}

// VerifyFunc inspects a locked snapshot of the requested window and returns an error to abort the insert.
type VerifyFunc func(snap *domain.AvailabilitySnapshot) error

type RentalRepository interface {
	// CreateIfAvailable locks the equipment row, loads the snapshot of [rt.StartDate, rt.EndDate),
	// runs verify and inserts rt, all in one transaction. When rt carries an idempotency key
	// that the farmer already used, rt is filled with the stored request and replayed is true.
	CreateIfAvailable(ctx context.Context, rt *domain.RentalRequest, verify VerifyFunc) (replayed bool, err error)
	GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// Transition persists rt only if its stored status is still from.
	Transition(ctx context.Context, rt *domain.RentalRequest, from domain.RentalStatus) error
	ListByFarmer(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	List(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListByStatusAndStart(ctx context.Context, status domain.RentalStatus, start calendar.Date) ([]domain.RentalRequest, error)
	ListByStatusAndEnd(ctx context.Context, status domain.RentalStatus, end calendar.Date) ([]domain.RentalRequest, error)
	// ListOverdue returns active requests whose window ended on or before today.
	ListOverdue(ctx context.Context, today calendar.Date) ([]domain.RentalRequest, error)
}
