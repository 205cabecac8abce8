package create_booking

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/STY-ReservationService/internal/api/handlers"
	"github.com/m04kA/STY-ReservationService/internal/api/middleware"
	createBooking "github.com/m04kA/STY-ReservationService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgListingNotFound    = "листинг не найден"
	msgSlotUnavailable    = "выбранные даты недоступны"
	msgInvalidDateRange   = "дата выезда должна быть позже даты заезда"
	msgCheckInPast        = "дата заезда уже прошла"
	msgStayTooLong        = "слишком длительное проживание"
	msgOwnListing         = "нельзя забронировать собственный листинг"
	msgInvalidInput       = "некорректные данные бронирования"

	idempotencyKeyHeader = "Idempotency-Key"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Ключ идемпотентности позволяет безопасно повторять запрос
	var idempotencyKey *string
	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		idempotencyKey = &key
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом дат)
	useCaseReq, err := req.ToUseCaseRequest(userID, idempotencyKey)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, createBooking.ErrSlotUnavailable):
			var conflict *createBooking.SlotUnavailableError
			msg := msgSlotUnavailable
			if errors.As(err, &conflict) {
				msg = fmt.Sprintf("%s: конфликт с бронированием id=%d", msgSlotUnavailable, conflict.ConflictingBookingID)
			}
			h.logger.Warn("POST /bookings - Dates unavailable: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondConflict(w, msg)

		case errors.Is(err, createBooking.ErrListingNotFound):
			h.logger.Warn("POST /bookings - Listing not found: listing_id=%d", req.ListingID)
			handlers.RespondNotFound(w, msgListingNotFound)

		case errors.Is(err, createBooking.ErrInvalidDateRange):
			h.logger.Warn("POST /bookings - Invalid date range: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, createBooking.ErrCheckInPast):
			h.logger.Warn("POST /bookings - Check-in in the past: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondBadRequest(w, msgCheckInPast)

		case errors.Is(err, createBooking.ErrStayTooLong):
			h.logger.Warn("POST /bookings - Stay too long: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondBadRequest(w, msgStayTooLong)

		case errors.Is(err, createBooking.ErrOwnListing):
			h.logger.Warn("POST /bookings - Own listing: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondBadRequest(w, msgOwnListing)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, listing_id=%d, error=%v", userID, req.ListingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, listing_id=%d, error=%v",
				userID, req.ListingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, listing_id=%d",
		result.ID, userID, req.ListingID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
