package domain

import "time"

type EquipmentStatus string

const (
	EquipmentStatusAvailable    EquipmentStatus = "available"
	EquipmentStatusRented       EquipmentStatus = "rented"
	EquipmentStatusMaintenance  EquipmentStatus = "maintenance"
	EquipmentStatusOutOfService EquipmentStatus = "out_of_service"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentStatusAvailable, EquipmentStatusRented, EquipmentStatusMaintenance, EquipmentStatusOutOfService:
		return true
	}
	return false
}

// Equipment is a single physical machine. All money fields are minor units (cents).
type Equipment struct {
	ID                   int32           `json:"id"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	Description          string          `json:"description"`
	DailyRateCents       int64           `json:"daily_rate_cents"`
	WeeklyRateCents      int64           `json:"weekly_rate_cents"`
	MonthlyRateCents     *int64          `json:"monthly_rate_cents,omitempty"`
	DeliveryFeeCents     int64           `json:"delivery_fee_cents"`
	SecurityDepositCents int64           `json:"security_deposit_cents"`
	CurrentStatus        EquipmentStatus `json:"current_status"`
	// IsAvailable is the master switch; false makes every date unbookable.
	IsAvailable bool      `json:"is_available"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

func (e *Equipment) Validate() error {
	if e.Name == "" {
		return NewValidationError("name is required")
	}
	if e.DailyRateCents < 0 || e.WeeklyRateCents < 0 || e.DeliveryFeeCents < 0 || e.SecurityDepositCents < 0 {
		return NewValidationError("rates and fees must not be negative")
	}
	if e.MonthlyRateCents != nil && *e.MonthlyRateCents < 0 {
		return NewValidationError("monthly rate must not be negative")
	}
	if e.CurrentStatus == "" {
		e.CurrentStatus = EquipmentStatusAvailable
	}
	if !e.CurrentStatus.Valid() {
		return NewValidationError("unknown equipment status %q", e.CurrentStatus)
	}
	return nil
}
