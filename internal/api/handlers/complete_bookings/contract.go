package complete_bookings

import "context"

type BookingService interface {
	CompleteExpired(ctx context.Context) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
