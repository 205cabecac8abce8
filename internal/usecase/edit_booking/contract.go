package edit_booking

import (
	"context"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStay(ctx context.Context, id int64, stay domain.StayRange, guests domain.GuestCounts, price domain.PriceBreakdown, status domain.BookingStatus, specialRequests *string) error
}

// AvailabilityRepository интерфейс индекса доступности
type AvailabilityRepository interface {
	UpdateRange(ctx context.Context, listingID, bookingID int64, stay domain.StayRange) error
}

// ListingServiceClient интерфейс клиента для ListingService
type ListingServiceClient interface {
	GetListing(ctx context.Context, listingID int64) (*domain.Listing, error)
}

// EventPublisher интерфейс публикации событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
