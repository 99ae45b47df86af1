package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/report"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type apiFixture struct {
	availability *MockAvailabilityService
	equipment    *MockEquipmentService
	rentals      *MockRentalService
	router       http.Handler
	farmerToken  string
	adminToken   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	tm := security.NewTokenManager(testSecret, time.Hour)
	farmer, err := tm.GenerateAccessToken(11, "farmer@example.com", []security.Role{security.RoleFarmer})
	require.NoError(t, err)
	admin, err := tm.GenerateAccessToken(1, "ops@example.com", []security.Role{security.RoleAdmin})
	require.NoError(t, err)

	f := &apiFixture{
		availability: new(MockAvailabilityService),
		equipment:    new(MockEquipmentService),
		rentals:      new(MockRentalService),
		farmerToken:  farmer,
		adminToken:   admin,
	}
	h := NewHandler(f.availability, f.equipment, f.rentals, report.NewRentalExporter())
	f.router = NewRouter(h, NewAuthMiddleware(tm), NewRateLimiter(0.001, 2), nil)
	return f
}

func (f *apiFixture) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) HTTPError {
	t.Helper()
	var body HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func submitBody() map[string]any {
	return map[string]any{
		"equipment_id":     7,
		"start_date":       "2025-05-10",
		"end_date":         "2025-05-13",
		"receiver_name":    "Ana",
		"receiver_phone":   "+15550100",
		"delivery_address": "North field gate",
	}
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do("GET", "/api/v1/equipment", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated", decodeError(t, rec).Code)

	rec = f.do("GET", "/api/v1/equipment", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do("GET", "/api/v1/rental-requests", f.farmerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", decodeError(t, rec).Code)
	f.rentals.AssertNotCalled(t, "ListRentalRequests", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRentalRequest(t *testing.T) {
	t.Run("created then replayed", func(t *testing.T) {
		f := newAPIFixture(t)
		rt := &domain.RentalRequest{ID: 42, EquipmentID: 7, FarmerID: 11, Status: domain.RentalStatusPending, TotalAmountCents: 8200}
		withKey := mock.MatchedBy(func(in service.SubmitRentalInput) bool {
			return in.IdempotencyKey == "abc" && in.StartDate == calendar.MustParse("2025-05-10") && in.Location == nil
		})
		f.rentals.On("SubmitRentalRequest", mock.Anything, int32(11), withKey).Return(rt, false, nil).Once()
		f.rentals.On("SubmitRentalRequest", mock.Anything, int32(11), withKey).Return(rt, true, nil).Once()

		rec := f.do("POST", "/api/v1/rental-requests", f.farmerToken, submitBody(), "Idempotency-Key", "abc")
		require.Equal(t, http.StatusCreated, rec.Code)
		var got domain.RentalRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int32(42), got.ID)
		assert.Equal(t, int64(8200), got.TotalAmountCents)

		rec = f.do("POST", "/api/v1/rental-requests", f.farmerToken, submitBody(), "Idempotency-Key", "abc")
		assert.Equal(t, http.StatusOK, rec.Code)
		f.rentals.AssertExpectations(t)
	})

	t.Run("unavailable dates", func(t *testing.T) {
		f := newAPIFixture(t)
		d := calendar.MustParse("2025-05-11")
		conflict := &domain.UnavailableDatesError{
			Dates:   []calendar.Date{d},
			Reasons: map[calendar.Date]string{d: availability.ReasonBooked},
		}
		f.rentals.On("SubmitRentalRequest", mock.Anything, int32(11), mock.Anything).Return(nil, false, conflict)

		rec := f.do("POST", "/api/v1/rental-requests", f.farmerToken, submitBody())
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "DateUnavailable", body.Code)
		assert.Equal(t, []string{"2025-05-11"}, body.Dates)
		assert.Equal(t, availability.ReasonBooked, body.Reasons["2025-05-11"])
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newAPIFixture(t)
		body := submitBody()
		body["price"] = 1
		rec := f.do("POST", "/api/v1/rental-requests", f.farmerToken, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ValidationError", decodeError(t, rec).Code)
	})

	t.Run("internal errors are masked", func(t *testing.T) {
		f := newAPIFixture(t)
		f.rentals.On("SubmitRentalRequest", mock.Anything, int32(11), mock.Anything).Return(nil, false, assert.AnError)

		rec := f.do("POST", "/api/v1/rental-requests", f.farmerToken, submitBody())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", decodeError(t, rec).Message)
	})
}

func TestPatchRentalRequest(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do("PATCH", "/api/v1/rental-requests/42", f.farmerToken, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	approved := &domain.RentalRequest{ID: 42, Status: domain.RentalStatusApproved}
	f.rentals.On("ApproveRentalRequest", mock.Anything, int32(1), int32(42), "ok").Return(approved, nil)
	rec = f.do("PATCH", "/api/v1/rental-requests/42", f.adminToken, map[string]string{"action": "approve", "admin_notes": "ok"})
	assert.Equal(t, http.StatusOK, rec.Code)

	f.rentals.On("CancelRentalRequest", mock.Anything, int32(11), int32(42)).
		Return(nil, &domain.TransitionError{From: domain.RentalStatusActive, Event: domain.RentalEventCancel})
	rec = f.do("PATCH", "/api/v1/rental-requests/42", f.farmerToken, map[string]string{"action": "cancel"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "InvalidStateTransition", decodeError(t, rec).Code)

	rec = f.do("PATCH", "/api/v1/rental-requests/42", f.farmerToken, map[string]string{"action": "extend"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.rentals.AssertExpectations(t)
}

func TestConfirmPickup(t *testing.T) {
	f := newAPIFixture(t)
	path := "/api/v1/rental-requests/42/confirm-pickup"

	rec := f.do("POST", path, f.farmerToken, map[string]string{"credential": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.rentals.On("ConfirmPickup", mock.Anything, int32(1), int32(42), "good").
		Return(&domain.RentalRequest{ID: 42, Status: domain.RentalStatusActive}, nil)
	rec = f.do("POST", path, f.adminToken, map[string]string{"credential": "good"})
	assert.Equal(t, http.StatusOK, rec.Code)

	f.rentals.On("ConfirmPickup", mock.Anything, int32(1), int32(42), "forged").Return(nil, domain.ErrCredentialInvalid)
	rec = f.do("POST", path, f.adminToken, map[string]string{"credential": "forged"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CredentialInvalid", decodeError(t, rec).Code)

	// burst of two is spent
	rec = f.do("POST", path, f.adminToken, map[string]string{"credential": "good"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RateLimited", decodeError(t, rec).Code)
}

func TestGetAvailability(t *testing.T) {
	f := newAPIFixture(t)
	from, to := calendar.MustParse("2025-05-10"), calendar.MustParse("2025-05-11")
	cal := availability.FromDays(7, from, to, []availability.DayAvailability{
		{Date: from, Available: true},
		{Date: to, Available: false, Reason: availability.ReasonBooked},
	})
	f.availability.On("GetAvailability", mock.Anything, int32(7), from, to).Return(cal, nil)

	rec := f.do("GET", "/api/v1/equipment/7/availability?from=2025-05-10&to=2025-05-11", f.farmerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Days["2025-05-10"].Available)
	assert.Equal(t, availability.ReasonBooked, body.Days["2025-05-11"].Reason)

	rec = f.do("GET", "/api/v1/equipment/7/availability?from=05/10/2025", f.farmerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DateRangeInvalid", decodeError(t, rec).Code)
}

func TestExportRentalRequests(t *testing.T) {
	f := newAPIFixture(t)
	filter := domain.RentalFilter{Status: domain.RentalStatusApproved}
	f.rentals.On("ExportRentalRequests", mock.Anything, filter).Return([]domain.RentalRequest{
		{ID: 1, Status: domain.RentalStatusApproved, TotalAmountCents: 9000},
	}, nil)

	rec := f.do("GET", "/api/v1/admin/rental-requests/export?status=approved", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())

	rec = f.do("GET", "/api/v1/admin/rental-requests/export", f.farmerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
