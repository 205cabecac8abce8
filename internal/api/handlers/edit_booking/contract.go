package edit_booking

import (
	"context"

	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
	editBooking "github.com/m04kA/STY-ReservationService/internal/usecase/edit_booking"
)

type EditBookingUseCase interface {
	Execute(ctx context.Context, req *editBooking.Request) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
