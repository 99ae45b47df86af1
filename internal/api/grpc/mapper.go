package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/service"
	"agrirent-backend/internal/utils"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type idRequest struct {
	ID int32 `json:"id"`
}

type availabilityRequest struct {
	EquipmentID int32         `json:"equipment_id"`
	From        calendar.Date `json:"from"`
	To          calendar.Date `json:"to"`
}

type selectionRequest struct {
	EquipmentID int32                   `json:"equipment_id"`
	Selected    []calendar.Date         `json:"selected"`
	Action      service.SelectionAction `json:"action"`
	Date        calendar.Date           `json:"date"`
}

type selectionResponse struct {
	Selected []calendar.Date `json:"selected"`
	Quote    utils.FeeQuote  `json:"quote"`
}

type submitRequest struct {
	EquipmentID     int32               `json:"equipment_id"`
	StartDate       calendar.Date       `json:"start_date"`
	EndDate         calendar.Date       `json:"end_date"`
	SelectedDates   []calendar.Date     `json:"selected_dates"`
	ReceiverName    string              `json:"receiver_name"`
	ReceiverPhone   string              `json:"receiver_phone"`
	DeliveryAddress string              `json:"delivery_address"`
	Location        *domain.GeoLocation `json:"location"`
	Notes           string              `json:"notes"`
	IdempotencyKey  string              `json:"idempotency_key"`
}

func (r submitRequest) toInput() service.SubmitRentalInput {
	return service.SubmitRentalInput{
		EquipmentID:     r.EquipmentID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		SelectedDates:   r.SelectedDates,
		ReceiverName:    r.ReceiverName,
		ReceiverPhone:   r.ReceiverPhone,
		DeliveryAddress: r.DeliveryAddress,
		Location:        r.Location,
		Notes:           r.Notes,
		IdempotencyKey:  r.IdempotencyKey,
	}
}

type rentalResponse struct {
	RentalRequest *domain.RentalRequest `json:"rental_request"`
	Replayed      bool                  `json:"replayed,omitempty"`
}

type decisionRequest struct {
	ID         int32  `json:"id"`
	Reason     string `json:"reason"`
	AdminNotes string `json:"admin_notes"`
}

type confirmRequest struct {
	ID         int32  `json:"id"`
	Credential string `json:"credential"`
}

type listRequest struct {
	Status      domain.RentalStatus `json:"status"`
	EquipmentID int32               `json:"equipment_id"`
	From        calendar.Date       `json:"from"`
	To          calendar.Date       `json:"to"`
	Page        int32               `json:"page"`
	PageSize    int32               `json:"page_size"`
}

func (r listRequest) paging() (int32, int32) {
	page, pageSize := r.Page, r.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, min(pageSize, 100)
}

type listResponse struct {
	Items    []domain.RentalRequest `json:"items"`
	Total    int32                  `json:"total"`
	Page     int32                  `json:"page"`
	PageSize int32                  `json:"page_size"`
}

// decodeStruct maps an incoming Struct onto a typed request using its JSON tags.
// Unknown fields are rejected.
func decodeStruct(in *structpb.Struct, v any) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return domain.NewValidationError("invalid request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("invalid request: %v", err)
	}
	return nil
}

// encodeStruct renders a typed response as a Struct. int64 cent amounts stay exact below 2^53.
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}
