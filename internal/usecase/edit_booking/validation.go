package edit_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() {
		return fmt.Errorf("%w: checkIn is required", ErrInvalidInput)
	}

	if req.CheckOut.IsZero() {
		return fmt.Errorf("%w: checkOut is required", ErrInvalidInput)
	}

	return nil
}

// validateStay проверяет новый диапазон дат проживания
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
