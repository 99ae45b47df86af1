package service

import (
	"context"
	"time"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/selection"
	"agrirent-backend/internal/utils"
)

// Clock returns the current time in the booking timezone.
type Clock func() time.Time

// EventPublisher receives lifecycle events; *notification.Dispatcher implements it.
type EventPublisher interface {
	Dispatch(ev notification.Event)
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID int32
	Admin  bool
}

type SelectionAction string

const (
	SelectionSelect   SelectionAction = "select"
	SelectionDeselect SelectionAction = "deselect"
)

type AvailabilityService interface {
	GetAvailability(ctx context.Context, equipmentID int32, from, to calendar.Date) (*availability.Calendar, error)
	// ApplySelection runs one select or deselect step against live availability and prices the result.
	ApplySelection(ctx context.Context, equipmentID int32, current []calendar.Date, action SelectionAction, date calendar.Date) (selection.Selection, utils.FeeQuote, error)
	Quote(ctx context.Context, equipmentID int32, days int) (utils.FeeQuote, error)
}

type EquipmentService interface {
	CreateEquipment(ctx context.Context, eq *domain.Equipment) error
	GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error)
	UpdateEquipment(ctx context.Context, eq *domain.Equipment) error
	ListEquipment(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error)
	SetOverride(ctx context.Context, adminID int32, o *domain.AvailabilityOverride) error
	ListOverrides(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error)
}

// SubmitRentalInput is a farmer's booking after boundary mapping.
type SubmitRentalInput struct {
	EquipmentID     int32
	StartDate       calendar.Date
	EndDate         calendar.Date
	SelectedDates   []calendar.Date
	ReceiverName    string
	ReceiverPhone   string
	DeliveryAddress string
	Location        *domain.GeoLocation
	Notes           string
	IdempotencyKey  string
}

// Credentials holds the printable tokens for an approved or active request.
type Credentials struct {
	Pickup string `json:"pickup,omitempty"`
	Return string `json:"return,omitempty"`
}

type RentalService interface {
	// SubmitRentalRequest returns replayed=true when the idempotency key matched an earlier submission.
	SubmitRentalRequest(ctx context.Context, farmerID int32, in SubmitRentalInput) (rt *domain.RentalRequest, replayed bool, err error)
	GetRentalRequest(ctx context.Context, actor Actor, id int32) (*domain.RentalRequest, error)
	ApproveRentalRequest(ctx context.Context, adminID, id int32, adminNotes string) (*domain.RentalRequest, error)
	RejectRentalRequest(ctx context.Context, adminID, id int32, reason, adminNotes string) (*domain.RentalRequest, error)
	CancelRentalRequest(ctx context.Context, farmerID, id int32) (*domain.RentalRequest, error)
	ConfirmPickup(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error)
	ConfirmReturn(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error)
	IssueCredentials(ctx context.Context, id int32) (*Credentials, error)
	ListMyRentalRequests(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListRentalRequests(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	// ExportRentalRequests returns every request matching filter, for reporting.
	ExportRentalRequests(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalRequest, error)
}

// ReminderService backs the scheduled jobs. Each method returns how many requests it handled.
type ReminderService interface {
	SendPickupReminders(ctx context.Context) (int, error)
	SendReturnReminders(ctx context.Context) (int, error)
	FlagOverdueRentals(ctx context.Context) (int, error)
}
