package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"agrirent-backend/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) SubmitRentalRequest(w http.ResponseWriter, r *http.Request) {
	var req submitRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rt, replayed, err := h.rentals.SubmitRentalRequest(r.Context(), actor(r).UserID, req.toInput(r.Header.Get("Idempotency-Key")))
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, rt)
}

func (h *Handler) GetRentalRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rt, err := h.rentals.GetRentalRequest(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *Handler) PatchRentalRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req patchRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	caller := actor(r)
	var rt *domain.RentalRequest
	switch req.Action {
	case actionApprove, actionReject:
		if !caller.Admin {
			writeError(w, domain.ErrForbidden)
			return
		}
		if req.Action == actionApprove {
			rt, err = h.rentals.ApproveRentalRequest(r.Context(), caller.UserID, id, req.AdminNotes)
		} else {
			rt, err = h.rentals.RejectRentalRequest(r.Context(), caller.UserID, id, req.Reason, req.AdminNotes)
		}
	case actionCancel:
		rt, err = h.rentals.CancelRentalRequest(r.Context(), caller.UserID, id)
	default:
		err = domain.NewValidationError("unknown action %q", req.Action)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *Handler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, domain.CredentialPurposePickup)
}

func (h *Handler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, domain.CredentialPurposeReturn)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, purpose domain.CredentialPurpose) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Credential == "" {
		writeError(w, domain.NewValidationError("credential is required"))
		return
	}

	var rt *domain.RentalRequest
	if purpose == domain.CredentialPurposePickup {
		rt, err = h.rentals.ConfirmPickup(r.Context(), actor(r).UserID, id, req.Credential)
	} else {
		rt, err = h.rentals.ConfirmReturn(r.Context(), actor(r).UserID, id, req.Credential)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *Handler) IssueCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	creds, err := h.rentals.IssueCredentials(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (h *Handler) ListMyRentalRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	items, total, err := h.rentals.ListMyRentalRequests(r.Context(), actor(r).UserID, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RentalRequest]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) ListRentalRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := h.rentals.ListRentalRequests(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RentalRequest]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) ExportRentalRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rentals, err := h.rentals.ExportRentalRequests(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, rentals); err != nil {
		writeError(w, fmt.Errorf("failed to render export: %w", err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="rental-requests.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func rentalFilter(r *http.Request) (domain.RentalFilter, error) {
	q := r.URL.Query()
	filter := domain.RentalFilter{Status: domain.RentalStatus(q.Get("status"))}
	if v := q.Get("equipment_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return filter, domain.NewValidationError("invalid equipment_id")
		}
		filter.EquipmentID = int32(id)
	}
	var err error
	if filter.From, err = dateParam(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = dateParam(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}
