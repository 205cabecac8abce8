package get_listing_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/STY-ReservationService/internal/api/handlers"
	"github.com/m04kA/STY-ReservationService/internal/api/middleware"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings"
)

const (
	msgInvalidListingID = "некорректный ID листинга"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgListingNotFound  = "листинг не найден"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/listings/{listingId}/bookings
// Query params: status, from, to, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем listingId из URL
	vars := mux.Vars(r)
	listingIDStr := vars["listingId"]

	listingID, err := strconv.ParseInt(listingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /listings/{id}/bookings - Invalid listing ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidListingID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /listings/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Получаем опциональные query параметры
	statusStr := r.URL.Query().Get("status")
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	includeInactiveStr := r.URL.Query().Get("includeInactive")

	// Формируем запрос к сервису
	serviceReq, err := ToServiceRequest(listingID, userID, statusStr, fromStr, toStr, includeInactiveStr)
	if err != nil {
		h.logger.Warn("GET /listings/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Получаем бронирования листинга (сервис сам проверит права хоста)
	result, err := h.service.GetListingBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrListingNotFound):
			h.logger.Warn("GET /listings/{id}/bookings - Listing not found: listing_id=%d", listingID)
			handlers.RespondNotFound(w, msgListingNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /listings/{id}/bookings - Access denied: listing_id=%d, user_id=%d",
				listingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /listings/{id}/bookings - Invalid filter: listing_id=%d, error=%v", listingID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /listings/{id}/bookings - Failed to get bookings: listing_id=%d, error=%v",
				listingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /listings/{id}/bookings - Bookings retrieved successfully: listing_id=%d, count=%d",
		listingID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
