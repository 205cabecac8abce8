package create_booking

import (
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	createBooking "github.com/m04kA/STY-ReservationService/internal/usecase/create_booking"
)

// GuestCounts состав гостей в HTTP запросе
type GuestCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ListingID       int64       `json:"listingId"`
	CheckIn         string      `json:"checkIn"`  // "2026-03-01"
	CheckOut        string      `json:"checkOut"` // "2026-03-05"
	Guests          GuestCounts `json:"guests"`
	ContactEmail    string      `json:"contactEmail"`
	ContactPhone    string      `json:"contactPhone"`
	SpecialRequests *string     `json:"specialRequests,omitempty"`
	PaymentMethodID *int64      `json:"paymentMethodId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(guestID int64, idempotencyKey *string) (*createBooking.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckIn)
	if err != nil {
		return nil, err
	}

	checkOut, err := time.Parse(domain.DateFormat, r.CheckOut)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		GuestID:   guestID,
		ListingID: r.ListingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests: domain.GuestCounts{
			Adults:   r.Guests.Adults,
			Children: r.Guests.Children,
			Infants:  r.Guests.Infants,
			Pets:     r.Guests.Pets,
		},
		ContactEmail:    r.ContactEmail,
		ContactPhone:    r.ContactPhone,
		SpecialRequests: r.SpecialRequests,
		PaymentMethodID: r.PaymentMethodID,
		IdempotencyKey:  idempotencyKey,
	}, nil
}
