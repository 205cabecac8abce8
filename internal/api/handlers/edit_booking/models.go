package edit_booking

import (
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	editBooking "github.com/m04kA/STY-ReservationService/internal/usecase/edit_booking"
)

// GuestCounts состав гостей в HTTP запросе
type GuestCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`
}

// EditBookingRequest HTTP request model
type EditBookingRequest struct {
	CheckIn         string      `json:"checkIn"`  // "2026-03-01"
	CheckOut        string      `json:"checkOut"` // "2026-03-05"
	Guests          GuestCounts `json:"guests"`
	SpecialRequests *string     `json:"specialRequests,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *EditBookingRequest) ToUseCaseRequest(bookingID, userID int64) (*editBooking.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckIn)
	if err != nil {
		return nil, err
	}

	checkOut, err := time.Parse(domain.DateFormat, r.CheckOut)
	if err != nil {
		return nil, err
	}

	return &editBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests: domain.GuestCounts{
			Adults:   r.Guests.Adults,
			Children: r.Guests.Children,
			Infants:  r.Guests.Infants,
			Pets:     r.Guests.Pets,
		},
		SpecialRequests: r.SpecialRequests,
	}, nil
}
