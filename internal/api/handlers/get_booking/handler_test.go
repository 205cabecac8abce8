package get_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/STY-ReservationService/internal/api/middleware"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
)

type fakeBookingService struct {
	booking *models.BookingResponse
	err     error

	gotBookingID int64
	gotUserID    int64
}

func (f *fakeBookingService) GetByID(_ context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	f.gotBookingID = id
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.booking, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBookingResponse() *models.BookingResponse {
	return &models.BookingResponse{
		ID:       1,
		GuestID:  100,
		HostID:   200,
		CheckIn:  "2026-06-20",
		CheckOut: "2026-06-25",
		Status:   "pending",
	}
}

func doRequest(service BookingService, path, userID string) *httptest.ResponseRecorder {
	h := NewHandler(service, nopLogger{})

	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/bookings/{bookingId}", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_GuestFetch(t *testing.T) {
	service := &fakeBookingService{booking: testBookingResponse()}

	rec := doRequest(service, "/api/v1/bookings/1", "100")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(1), service.gotBookingID)
	assert.Equal(t, int64(100), service.gotUserID)

	var got models.BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "pending", got.Status)
}

func TestHandle_HostFetch(t *testing.T) {
	service := &fakeBookingService{booking: testBookingResponse()}

	rec := doRequest(service, "/api/v1/bookings/1", "200")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(200), service.gotUserID)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"access denied", bookings.ErrAccessDenied, http.StatusForbidden},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeBookingService{err: tt.serviceErr}

			rec := doRequest(service, "/api/v1/bookings/1", "100")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_MissingUserID(t *testing.T) {
	service := &fakeBookingService{booking: testBookingResponse()}

	rec := doRequest(service, "/api/v1/bookings/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_InvalidBookingID(t *testing.T) {
	service := &fakeBookingService{booking: testBookingResponse()}

	rec := doRequest(service, "/api/v1/bookings/abc", "100")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
