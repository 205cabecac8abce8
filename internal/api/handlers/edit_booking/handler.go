package edit_booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/STY-ReservationService/internal/api/handlers"
	"github.com/m04kA/STY-ReservationService/internal/api/middleware"
	"github.com/m04kA/STY-ReservationService/internal/domain"
	editBooking "github.com/m04kA/STY-ReservationService/internal/usecase/edit_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotEdit         = "бронирование в текущем статусе редактировать нельзя"
	msgSlotUnavailable    = "выбранные даты недоступны"
	msgInvalidDateRange   = "дата выезда должна быть позже даты заезда"
	msgCheckInPast        = "дата заезда уже прошла"
	msgStayTooLong        = "слишком длительное проживание"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase EditBookingUseCase
	logger  Logger
}

func NewHandler(useCase EditBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req EditBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом дат)
	useCaseReq, err := req.ToUseCaseRequest(bookingID, userID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, editBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, editBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id} - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id} - Cannot edit: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotEdit)

		case errors.Is(err, editBooking.ErrSlotUnavailable):
			var conflict *editBooking.SlotUnavailableError
			msg := msgSlotUnavailable
			if errors.As(err, &conflict) {
				msg = fmt.Sprintf("%s: конфликт с бронированием id=%d", msgSlotUnavailable, conflict.ConflictingBookingID)
			}
			h.logger.Warn("PATCH /bookings/{id} - Dates unavailable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msg)

		case errors.Is(err, editBooking.ErrInvalidDateRange):
			h.logger.Warn("PATCH /bookings/{id} - Invalid date range: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, editBooking.ErrCheckInPast):
			h.logger.Warn("PATCH /bookings/{id} - Check-in in the past: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgCheckInPast)

		case errors.Is(err, editBooking.ErrStayTooLong):
			h.logger.Warn("PATCH /bookings/{id} - Stay too long: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgStayTooLong)

		case errors.Is(err, editBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id} - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /bookings/{id} - Failed to edit booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id} - Booking edited successfully: booking_id=%d, user_id=%d, status=%s",
		bookingID, userID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
