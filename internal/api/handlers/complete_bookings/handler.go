package complete_bookings

import (
	"net/http"

	"github.com/m04kA/STY-ReservationService/internal/api/handlers"
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

// CompleteExpiredResponse результат прогона триггера завершения
type CompleteExpiredResponse struct {
	Completed int `json:"completed"`
}

// Handle POST /internal/v1/bookings/complete-expired
// Внутренний эндпоинт для планировщика: завершает подтвержденные бронирования
// с прошедшей датой выезда
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	completed, err := h.service.CompleteExpired(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/bookings/complete-expired - Failed: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/bookings/complete-expired - Completed %d bookings", completed)
	handlers.RespondJSON(w, http.StatusOK, CompleteExpiredResponse{Completed: completed})
}
