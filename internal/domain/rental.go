package domain

import (
	"time"

	"agrirent-backend/internal/calendar"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusReturned  RentalStatus = "returned"
)

// BlockingStatuses claim their [StartDate, EndDate) window on the equipment calendar.
var BlockingStatuses = []RentalStatus{RentalStatusPending, RentalStatusApproved, RentalStatusActive}

func (s RentalStatus) Blocks() bool {
	return s == RentalStatusPending || s == RentalStatusApproved || s == RentalStatusActive
}

func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusRejected, RentalStatusCancelled, RentalStatusReturned, RentalStatusCompleted:
		return true
	}
	return false
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled,
		RentalStatusActive, RentalStatusCompleted, RentalStatusReturned:
		return true
	}
	return false
}

type RentalEvent string

const (
	RentalEventApprove       RentalEvent = "approve"
	RentalEventReject        RentalEvent = "reject"
	RentalEventCancel        RentalEvent = "cancel"
	RentalEventConfirmPickup RentalEvent = "confirm_pickup"
	RentalEventConfirmReturn RentalEvent = "confirm_return"
)

var rentalTransitions = map[RentalStatus]map[RentalEvent]RentalStatus{
	RentalStatusPending: {
		RentalEventApprove: RentalStatusApproved,
		RentalEventReject:  RentalStatusRejected,
		RentalEventCancel:  RentalStatusCancelled,
	},
	RentalStatusApproved: {
		RentalEventConfirmPickup: RentalStatusActive,
	},
	RentalStatusActive: {
		RentalEventConfirmReturn: RentalStatusReturned,
	},
}

// NextStatus applies event to from, or returns a *TransitionError when the table has no edge.
func NextStatus(from RentalStatus, event RentalEvent) (RentalStatus, error) {
	if to, ok := rentalTransitions[from][event]; ok {
		return to, nil
	}
	return "", &TransitionError{From: from, Event: event}
}

type CredentialPurpose string

const (
	CredentialPurposePickup CredentialPurpose = "pickup"
	CredentialPurposeReturn CredentialPurpose = "return"
)

type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RentalRequest occupies the half-open window [StartDate, EndDate). The billed day count is
// RentalDurationDays and is derived from the farmer's selected days, not from the window.
type RentalRequest struct {
	ID          int32 `json:"id"`
	EquipmentID int32 `json:"equipment_id"`
	FarmerID    int32 `json:"farmer_id"`

	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`

	RentalDurationDays   int32 `json:"rental_duration_days"`
	MachineFeeCents      int64 `json:"machine_fee_cents"`
	DeliveryFeeCents     int64 `json:"delivery_fee_cents"`
	SecurityDepositCents int64 `json:"security_deposit_cents"`
	TotalAmountCents     int64 `json:"total_amount_cents"`

	ReceiverName    string       `json:"receiver_name"`
	ReceiverPhone   string       `json:"receiver_phone"`
	DeliveryAddress string       `json:"delivery_address"`
	Location        *GeoLocation `json:"location,omitempty"`
	Notes           string       `json:"notes,omitempty"`

	Status            RentalStatus `json:"status"`
	AdminNotes        string       `json:"admin_notes,omitempty"`
	RejectionReason   string       `json:"rejection_reason,omitempty"`
	ApprovedBy        *int32       `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time   `json:"approved_at,omitempty"`
	PickupConfirmedAt *time.Time   `json:"pickup_confirmed_at,omitempty"`
	ReturnConfirmedAt *time.Time   `json:"return_confirmed_at,omitempty"`

	// Only digests of the pickup/return tokens are kept; the tokens themselves are re-derivable
	// by the issuer and never stored.
	PickupCredentialDigest string `json:"-"`
	ReturnCredentialDigest string `json:"-"`
	PickupNonce            string `json:"-"`
	ReturnNonce            string `json:"-"`

	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HeldDates returns the days the request occupies on the calendar.
func (r *RentalRequest) HeldDates() []calendar.Date {
	return calendar.HalfOpen(r.StartDate, r.EndDate)
}

// Overlaps reports whether the request holds any day of [start, end).
func (r *RentalRequest) Overlaps(start, end calendar.Date) bool {
	return r.StartDate.Before(end) && start.Before(r.EndDate)
}

// Holds reports whether d lies in [StartDate, EndDate).
func (r *RentalRequest) Holds(d calendar.Date) bool {
	return !d.Before(r.StartDate) && d.Before(r.EndDate)
}

func (r *RentalRequest) CredentialDigest(p CredentialPurpose) string {
	if p == CredentialPurposePickup {
		return r.PickupCredentialDigest
	}
	return r.ReturnCredentialDigest
}

func (r *RentalRequest) CredentialNonce(p CredentialPurpose) string {
	if p == CredentialPurposePickup {
		return r.PickupNonce
	}
	return r.ReturnNonce
}

// CredentialConsumed reports whether the confirmation gated by purpose already happened.
func (r *RentalRequest) CredentialConsumed(p CredentialPurpose) bool {
	if p == CredentialPurposePickup {
		return r.PickupConfirmedAt != nil
	}
	return r.ReturnConfirmedAt != nil
}

type RentalFilter struct {
	Status      RentalStatus
	EquipmentID int32
	// From/To bound StartDate inclusively when set.
	From calendar.Date
	To   calendar.Date
}
