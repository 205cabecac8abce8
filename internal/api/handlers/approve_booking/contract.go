package approve_booking

import (
	"context"

	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
)

type BookingService interface {
	Approve(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
