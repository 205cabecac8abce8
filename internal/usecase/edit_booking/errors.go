package edit_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("edit_booking: booking not found")

	// ErrListingNotFound возвращается, когда листинг бронирования не найден
	ErrListingNotFound = errors.New("edit_booking: listing not found")

	// ErrAccessDenied возвращается, когда редактировать пытается не участник бронирования
	ErrAccessDenied = errors.New("edit_booking: access denied")

	// ErrInvalidDateRange возвращается при некорректном диапазоне дат
	ErrInvalidDateRange = errors.New("edit_booking: check-out must be after check-in")

	// ErrCheckInPast возвращается, когда новая дата заезда уже прошла
	ErrCheckInPast = errors.New("edit_booking: check-in date is in the past")

	// ErrStayTooLong возвращается, когда длительность проживания превышает лимит
	ErrStayTooLong = errors.New("edit_booking: stay is too long")

	// ErrSlotUnavailable возвращается, когда новые даты уже заняты
	ErrSlotUnavailable = errors.New("edit_booking: requested dates are unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("edit_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("edit_booking: internal error")
)

// SlotUnavailableError конфликт дат с указанием конфликтующего бронирования
type SlotUnavailableError struct {
	ConflictingBookingID int64
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("edit_booking: requested dates are unavailable, conflicts with booking id=%d", e.ConflictingBookingID)
}

func (e *SlotUnavailableError) Unwrap() error {
	return ErrSlotUnavailable
}
