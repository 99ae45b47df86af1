package domain

import (
	"time"

	"agrirent-backend/internal/calendar"
)

// AvailabilityOverride is an operator exception for one equipment on one date.
// A later override for the same date supersedes an earlier one.
type AvailabilityOverride struct {
	ID          int32         `json:"id"`
	EquipmentID int32         `json:"equipment_id"`
	Date        calendar.Date `json:"date"`
	IsAvailable bool          `json:"is_available"`
	Reason      string        `json:"reason,omitempty"`
	CreatedBy   int32         `json:"created_by"`
	CreatedOn   time.Time     `json:"created_on"`
}

// AvailabilitySnapshot is everything the resolver needs for one equipment over a window.
type AvailabilitySnapshot struct {
	Equipment *Equipment
	// Blocking holds requests in a blocking status that overlap the window.
	Blocking  []RentalRequest
	Overrides []AvailabilityOverride
}
