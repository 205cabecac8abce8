package bookings

import (
	"context"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByGuestID(ctx context.Context, guestID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByListingWithFilter(ctx context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error)
	ListExpiredApproved(ctx context.Context, before time.Time) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, cancelledBy domain.CancelledBy, reason string, refundAmount int64, refundExplanation string, paymentStatus domain.PaymentStatus) error
	MarkReviewed(ctx context.Context, id int64) error
}

// AvailabilityRepository интерфейс индекса доступности
type AvailabilityRepository interface {
	Release(ctx context.Context, bookingID int64) error
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
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
