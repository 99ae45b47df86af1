package http

import (
	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/service"
	"agrirent-backend/internal/utils"
)

type submitRentalRequest struct {
	EquipmentID     int32           `json:"equipment_id"`
	StartDate       calendar.Date   `json:"start_date"`
	EndDate         calendar.Date   `json:"end_date"`
	SelectedDates   []calendar.Date `json:"selected_dates,omitempty"`
	ReceiverName    string          `json:"receiver_name"`
	ReceiverPhone   string          `json:"receiver_phone"`
	DeliveryAddress string          `json:"delivery_address"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

func (req submitRentalRequest) toInput(idempotencyKey string) service.SubmitRentalInput {
	in := service.SubmitRentalInput{
		EquipmentID:     req.EquipmentID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		SelectedDates:   req.SelectedDates,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		IdempotencyKey:  idempotencyKey,
	}
	if req.Latitude != nil && req.Longitude != nil {
		in.Location = &domain.GeoLocation{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	return in
}

const (
	actionApprove = "approve"
	actionReject  = "reject"
	actionCancel  = "cancel"
)

type patchRentalRequest struct {
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
	AdminNotes string `json:"admin_notes,omitempty"`
}

type confirmRequest struct {
	Credential string `json:"credential"`
}

type selectionRequest struct {
	Selected []calendar.Date         `json:"selected"`
	Action   service.SelectionAction `json:"action"`
	Date     calendar.Date           `json:"date"`
}

type selectionResponse struct {
	Selected []calendar.Date `json:"selected"`
	Quote    utils.FeeQuote  `json:"quote"`
}

type overrideRequest struct {
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason,omitempty"`
}

type availabilityResponse struct {
	EquipmentID int32                                   `json:"equipment_id"`
	From        calendar.Date                           `json:"from"`
	To          calendar.Date                           `json:"to"`
	Days        map[string]availability.DayAvailability `json:"days"`
}

type listResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}
