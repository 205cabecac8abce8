package domain

import (
	"time"

	"github.com/m04kA/STY-ReservationService/pkg/money"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusDeclined  BookingStatus = "declined"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// PaymentStatus represents the payment state of a booking
// Actual money movement happens in an external payment service; the engine
// only records the expected state
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// CancelledBy identifies which side cancelled a booking
type CancelledBy string

const (
	CancelledByGuest CancelledBy = "guest"
	CancelledByHost  CancelledBy = "host"
)

// GuestCounts describes the guest composition of a stay
type GuestCounts struct {
	Adults   int
	Children int
	Infants  int
	Pets     int
}

// Total returns the number of people occupying the listing (infants excluded)
func (g GuestCounts) Total() int {
	return g.Adults + g.Children
}

// Booking represents a stay reservation in the system
type Booking struct {
	ID              int64
	ListingID       int64
	GuestID         int64
	HostID          int64
	PaymentMethodID *int64

	Stay   StayRange
	Guests GuestCounts

	Price PriceBreakdown

	Status        BookingStatus
	PaymentStatus PaymentStatus

	// Contact data supplied by the guest
	ContactEmail    string
	ContactPhone    string
	SpecialRequests *string

	// Cancellation metadata, present only once cancelled
	CancelledBy        *CancelledBy
	CancelledAt        *time.Time
	CancellationReason *string
	RefundAmount       *money.Money
	RefundExplanation  *string

	// Set externally once a post-stay review is submitted
	ReviewSubmitted bool

	// Client-supplied key deduplicating retried create requests
	IdempotencyKey *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if no lifecycle operation may change the status anymore
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusDeclined || b.Status == StatusCancelled || b.Status == StatusCompleted
}

// OccupiesRange returns true if the booking holds its date range in the
// availability index. Declined and cancelled bookings free their range.
func (b *Booking) OccupiesRange() bool {
	return b.Status == StatusPending || b.Status == StatusApproved || b.Status == StatusCompleted
}

// CanBeApproved returns true if the host may approve the booking
func (b *Booking) CanBeApproved() bool {
	return b.Status == StatusPending
}

// CanBeDeclined returns true if the host may decline the booking
func (b *Booking) CanBeDeclined() bool {
	return b.Status == StatusPending
}

// CanBeEdited returns true if the stay parameters may still be changed
func (b *Booking) CanBeEdited() bool {
	return b.Status == StatusPending || b.Status == StatusApproved
}

// CanBeCancelled returns true if the booking may still be cancelled.
// Completed stays are immutable: cancelling one is a data-integrity error.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusApproved
}

// CanBeCompleted returns true if the stay may be marked completed at the given time
func (b *Booking) CanBeCompleted(now time.Time) bool {
	return b.Status == StatusApproved && now.After(b.Stay.CheckOut)
}

// ListingBookingsFilter фильтр для получения бронирований листинга
type ListingBookingsFilter struct {
	ListingID       int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отклонённые и отменённые бронирования
}
