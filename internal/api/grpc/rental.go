package grpc

import (
	"context"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/service"

	"google.golang.org/protobuf/types/known/structpb"
)

type RentalHandler struct {
	availabilitySvc service.AvailabilityService
	rentalSvc       service.RentalService
}

func NewRentalHandler(availabilitySvc service.AvailabilityService, rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{availabilitySvc: availabilitySvc, rentalSvc: rentalSvc}
}

var _ RentalServiceServer = (*RentalHandler)(nil)

func (h *RentalHandler) GetAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req availabilityRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	cal, err := h.availabilitySvc.GetAvailability(ctx, req.EquipmentID, req.From, req.To)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(map[string]any{
		"equipment_id": req.EquipmentID,
		"from":         cal.From,
		"to":           cal.To,
		"days":         cal.Map(),
	})
}

func (h *RentalHandler) ApplySelection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req selectionRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	sel, quote, err := h.availabilitySvc.ApplySelection(ctx, req.EquipmentID, req.Selected, req.Action, req.Date)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(selectionResponse{Selected: sel.Dates(), Quote: quote})
}

func (h *RentalHandler) SubmitRentalRequest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req submitRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	rt, replayed, err := h.rentalSvc.SubmitRentalRequest(ctx, userID, req.toInput())
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(rentalResponse{RentalRequest: rt, Replayed: replayed})
}

func (h *RentalHandler) GetRentalRequest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return h.respond(h.rentalSvc.GetRentalRequest(ctx, actor, req.ID))
}

func (h *RentalHandler) CancelRentalRequest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return h.respond(h.rentalSvc.CancelRentalRequest(ctx, userID, req.ID))
}

func (h *RentalHandler) ListMyRentalRequests(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req listRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	page, pageSize := req.paging()
	items, total, err := h.rentalSvc.ListMyRentalRequests(ctx, userID, req.Status, page, pageSize)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(listResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *RentalHandler) ApproveRentalRequest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req decisionRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return h.respond(h.rentalSvc.ApproveRentalRequest(ctx, userID, req.ID, req.AdminNotes))
}

func (h *RentalHandler) RejectRentalRequest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req decisionRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return h.respond(h.rentalSvc.RejectRentalRequest(ctx, userID, req.ID, req.Reason, req.AdminNotes))
}

func (h *RentalHandler) ConfirmPickup(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return h.confirm(ctx, in, domain.CredentialPurposePickup)
}

func (h *RentalHandler) ConfirmReturn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return h.confirm(ctx, in, domain.CredentialPurposeReturn)
}

func (h *RentalHandler) confirm(ctx context.Context, in *structpb.Struct, purpose domain.CredentialPurpose) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req confirmRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if req.Credential == "" {
		return nil, toStatus(domain.NewValidationError("credential is required"))
	}
	if purpose == domain.CredentialPurposePickup {
		return h.respond(h.rentalSvc.ConfirmPickup(ctx, userID, req.ID, req.Credential))
	}
	return h.respond(h.rentalSvc.ConfirmReturn(ctx, userID, req.ID, req.Credential))
}

func (h *RentalHandler) ListRentalRequests(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	page, pageSize := req.paging()
	filter := domain.RentalFilter{Status: req.Status, EquipmentID: req.EquipmentID, From: req.From, To: req.To}
	items, total, err := h.rentalSvc.ListRentalRequests(ctx, filter, page, pageSize)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(listResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *RentalHandler) respond(rt *domain.RentalRequest, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(rentalResponse{RentalRequest: rt})
}
