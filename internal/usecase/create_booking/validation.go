package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.GuestID <= 0 {
		return fmt.Errorf("%w: guestID must be positive", ErrInvalidInput)
	}

	if req.ListingID <= 0 {
		return fmt.Errorf("%w: listingID must be positive", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() {
		return fmt.Errorf("%w: checkIn is required", ErrInvalidInput)
	}

	if req.CheckOut.IsZero() {
		return fmt.Errorf("%w: checkOut is required", ErrInvalidInput)
	}

	if err := validateContact(req.ContactEmail, req.ContactPhone); err != nil {
		return err
	}

	return nil
}

// validateContact проверяет контактные данные гостя
func validateContact(email, phone string) error {
	if email == "" {
		return fmt.Errorf("%w: contactEmail is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: contactEmail is malformed", ErrInvalidInput)
	}
	if phone == "" {
		return fmt.Errorf("%w: contactPhone is required", ErrInvalidInput)
	}
	return nil
}

// validateStay проверяет диапазон дат проживания
// Диапазон полуинтервальный [checkIn, checkOut): выезд строго позже заезда,
// заезд не раньше сегодняшнего дня, длительность в пределах лимита
func validateStay(stay domain.StayRange, now time.Time) error {
	if !stay.IsValid() {
		return ErrInvalidDateRange
	}

	if stay.CheckIn.Before(domain.DateOnly(now)) {
		return ErrCheckInPast
	}

	if stay.Nights() > domain.MaxNights {
		return fmt.Errorf("%w: %d nights exceeds limit of %d", ErrStayTooLong, stay.Nights(), domain.MaxNights)
	}

	return nil
}
