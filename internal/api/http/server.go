package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/report"
	"agrirent-backend/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the JSON API over the rental services.
type Handler struct {
	availability service.AvailabilityService
	equipment    service.EquipmentService
	rentals      service.RentalService
	exporter     *report.RentalExporter
}

func NewHandler(
	availabilitySvc service.AvailabilityService,
	equipmentSvc service.EquipmentService,
	rentalSvc service.RentalService,
	exporter *report.RentalExporter,
) *Handler {
	return &Handler{
		availability: availabilitySvc,
		equipment:    equipmentSvc,
		rentals:      rentalSvc,
		exporter:     exporter,
	}
}

// RegisterRoutes registers the /api/v1 endpoints on router. Every route requires a valid access token.
func RegisterRoutes(router *mux.Router, h *Handler, auth *AuthMiddleware, limiter *RateLimiter) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Authenticate)

	admin := func(f http.HandlerFunc) http.Handler { return auth.RequireAdmin(f) }
	confirm := func(f http.HandlerFunc) http.Handler { return auth.RequireAdmin(limiter.Middleware(f)) }

	// Equipment and calendar
	api.HandleFunc("/equipment", h.ListEquipment).Methods("GET")
	api.Handle("/equipment", admin(h.CreateEquipment)).Methods("POST")
	api.HandleFunc("/equipment/{id:[0-9]+}", h.GetEquipment).Methods("GET")
	api.Handle("/equipment/{id:[0-9]+}", admin(h.UpdateEquipment)).Methods("PUT")
	api.HandleFunc("/equipment/{id:[0-9]+}/availability", h.GetAvailability).Methods("GET")
	api.HandleFunc("/equipment/{id:[0-9]+}/selection", h.ApplySelection).Methods("POST")
	api.HandleFunc("/equipment/{id:[0-9]+}/quote", h.Quote).Methods("GET")
	api.Handle("/equipment/{id:[0-9]+}/overrides", admin(h.ListOverrides)).Methods("GET")
	api.Handle("/equipment/{id:[0-9]+}/overrides/{date}", admin(h.SetOverride)).Methods("PUT")

	// Rental requests
	api.HandleFunc("/rental-requests", h.SubmitRentalRequest).Methods("POST")
	api.Handle("/rental-requests", admin(h.ListRentalRequests)).Methods("GET")
	api.HandleFunc("/rental-requests/mine", h.ListMyRentalRequests).Methods("GET")
	api.HandleFunc("/rental-requests/{id:[0-9]+}", h.GetRentalRequest).Methods("GET")
	api.HandleFunc("/rental-requests/{id:[0-9]+}", h.PatchRentalRequest).Methods("PATCH")
	api.Handle("/rental-requests/{id:[0-9]+}/confirm-pickup", confirm(h.ConfirmPickup)).Methods("POST")
	api.Handle("/rental-requests/{id:[0-9]+}/confirm-return", confirm(h.ConfirmReturn)).Methods("POST")
	api.Handle("/rental-requests/{id:[0-9]+}/credentials", admin(h.IssueCredentials)).Methods("GET")
	api.Handle("/admin/rental-requests/export", admin(h.ExportRentalRequests)).Methods("GET")
}

// NewRouter builds the complete HTTP handler: health, metrics, the API and the middleware chain.
func NewRouter(h *Handler, auth *AuthMiddleware, limiter *RateLimiter, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(Metrics)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	RegisterRoutes(router, h, auth, limiter)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	var chain http.Handler = router
	chain = handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Idempotency-Key"}),
	)(chain)
	chain = handlers.CustomLoggingHandler(io.Discard, chain, accessLog)
	chain = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}), handlers.PrintRecoveryStack(true))(chain)
	return chain
}

func accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	logger.Info("HTTP request",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"size", p.Size,
		"remote", p.Request.RemoteAddr,
	)
}

type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	logger.Error("Recovered from panic in HTTP handler", "panic", args)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid id")
	}
	return int32(id), nil
}

func pageParams(r *http.Request) (int32, int32) {
	page, pageSize := int32(1), int32(defaultPageSize)
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = int32(min(v, maxPageSize))
	}
	return page, pageSize
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (calendar.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.ParseDate(v)
	if err != nil {
		return calendar.Date{}, domain.InvalidRange("%s: %v", name, err)
	}
	return d, nil
}

func actor(r *http.Request) service.Actor {
	claims, _ := ClaimsFromContext(r.Context())
	return service.Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
}
