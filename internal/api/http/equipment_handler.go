package http

import (
	"net/http"
	"strconv"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"

	"github.com/gorilla/mux"
)

func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	items, total, err := h.equipment.ListEquipment(r.Context(), r.URL.Query().Get("category"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Equipment]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var eq domain.Equipment
	if err := decodeJSON(r, &eq); err != nil {
		writeError(w, err)
		return
	}
	eq.ID = 0
	if err := h.equipment.CreateEquipment(r.Context(), &eq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	eq, err := h.equipment.GetEquipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var eq domain.Equipment
	if err := decodeJSON(r, &eq); err != nil {
		writeError(w, err)
		return
	}
	eq.ID = id
	if err := h.equipment.UpdateEquipment(r.Context(), &eq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := dateParam(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}

	cal, err := h.availability.GetAvailability(r.Context(), id, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{EquipmentID: id, From: cal.From, To: cal.To, Days: cal.Map()})
}

func (h *Handler) ApplySelection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sel, quote, err := h.availability.ApplySelection(r.Context(), id, req.Selected, req.Action, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Selected: sel.Dates(), Quote: quote})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 0 {
		writeError(w, domain.NewValidationError("days must be a non-negative integer"))
		return
	}
	quote, err := h.availability.Quote(r.Context(), id, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := calendar.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, domain.InvalidRange("date: %v", err))
		return
	}
	var req overrideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o := &domain.AvailabilityOverride{EquipmentID: id, Date: date, IsAvailable: req.IsAvailable, Reason: req.Reason}
	if err := h.equipment.SetOverride(r.Context(), actor(r).UserID, o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := dateParam(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	if from.IsZero() || to.IsZero() {
		writeError(w, domain.InvalidRange("from and to are required"))
		return
	}

	overrides, err := h.equipment.ListOverrides(r.Context(), id, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}
