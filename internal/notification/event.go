package notification

import (
	"fmt"
	"time"

	"agrirent-backend/internal/domain"
)

type EventType string

const (
	EventSubmitted      EventType = "rental.submitted"
	EventApproved       EventType = "rental.approved"
	EventRejected       EventType = "rental.rejected"
	EventCancelled      EventType = "rental.cancelled"
	EventPickedUp       EventType = "rental.picked_up"
	EventReturned       EventType = "rental.returned"
	EventPickupReminder EventType = "rental.pickup_reminder"
	EventReturnReminder EventType = "rental.return_reminder"
	EventOverdue        EventType = "rental.overdue"
)

// FarmerFacing reports whether the farmer, rather than the operator, should hear about the event.
func (t EventType) FarmerFacing() bool {
	switch t {
	case EventSubmitted, EventCancelled, EventOverdue:
		return false
	}
	return true
}

// EventForStatus maps the status a request just entered to the event announcing it.
func EventForStatus(s domain.RentalStatus) (EventType, bool) {
	switch s {
	case domain.RentalStatusPending:
		return EventSubmitted, true
	case domain.RentalStatusApproved:
		return EventApproved, true
	case domain.RentalStatusRejected:
		return EventRejected, true
	case domain.RentalStatusCancelled:
		return EventCancelled, true
	case domain.RentalStatusActive:
		return EventPickedUp, true
	case domain.RentalStatusReturned, domain.RentalStatusCompleted:
		return EventReturned, true
	}
	return "", false
}

type Event struct {
	Type       EventType
	Request    domain.RentalRequest
	Equipment  *domain.Equipment
	OccurredAt time.Time
}

func NewEvent(t EventType, rt *domain.RentalRequest, eq *domain.Equipment) Event {
	return Event{Type: t, Request: *rt, Equipment: eq, OccurredAt: time.Now().UTC()}
}

func (e Event) equipmentName() string {
	if e.Equipment != nil && e.Equipment.Name != "" {
		return e.Equipment.Name
	}
	return fmt.Sprintf("equipment #%d", e.Request.EquipmentID)
}

// Message renders a short subject and body shared by every channel.
func (e Event) Message() (subject, body string) {
	rt := e.Request
	name := e.equipmentName()
	window := fmt.Sprintf("%s to %s", rt.StartDate, rt.EndDate.AddDays(-1))

	switch e.Type {
	case EventSubmitted:
		return fmt.Sprintf("New rental request #%d", rt.ID),
			fmt.Sprintf("Farmer %d requested %s for %s (%d billed days).", rt.FarmerID, name, window, rt.RentalDurationDays)
	case EventApproved:
		return fmt.Sprintf("Rental #%d approved", rt.ID),
			fmt.Sprintf("Your booking of %s for %s is approved. Show the pickup QR code on delivery.", name, window)
	case EventRejected:
		body := fmt.Sprintf("Your booking of %s for %s was rejected.", name, window)
		if rt.RejectionReason != "" {
			body += " Reason: " + rt.RejectionReason
		}
		return fmt.Sprintf("Rental #%d rejected", rt.ID), body
	case EventCancelled:
		return fmt.Sprintf("Rental #%d cancelled", rt.ID),
			fmt.Sprintf("Farmer %d cancelled the request for %s (%s).", rt.FarmerID, name, window)
	case EventPickedUp:
		return fmt.Sprintf("Rental #%d picked up", rt.ID),
			fmt.Sprintf("%s has been handed over to %s.", name, rt.ReceiverName)
	case EventReturned:
		return fmt.Sprintf("Rental #%d returned", rt.ID),
			fmt.Sprintf("%s has been returned. Thank you.", name)
	case EventPickupReminder:
		return fmt.Sprintf("Rental #%d starts tomorrow", rt.ID),
			fmt.Sprintf("%s will be delivered to %s on %s.", name, rt.DeliveryAddress, rt.StartDate)
	case EventReturnReminder:
		return fmt.Sprintf("Rental #%d ends today", rt.ID),
			fmt.Sprintf("Please have %s ready for return today.", name)
	case EventOverdue:
		return fmt.Sprintf("Rental #%d is overdue", rt.ID),
			fmt.Sprintf("%s was due back on %s and has not been returned.", name, rt.EndDate)
	}
	return string(e.Type), fmt.Sprintf("Rental #%d: %s", rt.ID, e.Type)
}
