package create_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrListingNotFound возвращается, когда листинг не найден
	ErrListingNotFound = errors.New("create_booking: listing not found")

	// ErrInvalidDateRange возвращается при некорректном диапазоне дат
	ErrInvalidDateRange = errors.New("create_booking: check-out must be after check-in")

	// ErrCheckInPast возвращается, когда дата заезда уже прошла
	ErrCheckInPast = errors.New("create_booking: check-in date is in the past")

	// ErrStayTooLong возвращается, когда длительность проживания превышает лимит
	ErrStayTooLong = errors.New("create_booking: stay is too long")

	// ErrOwnListing возвращается при попытке забронировать собственный листинг
	ErrOwnListing = errors.New("create_booking: cannot book own listing")

	// ErrSlotUnavailable возвращается, когда запрошенные даты уже заняты
	ErrSlotUnavailable = errors.New("create_booking: requested dates are unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// SlotUnavailableError конфликт дат с указанием конфликтующего бронирования
type SlotUnavailableError struct {
	ConflictingBookingID int64
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("create_booking: requested dates are unavailable, conflicts with booking id=%d", e.ConflictingBookingID)
}

func (e *SlotUnavailableError) Unwrap() error {
	return ErrSlotUnavailable
}
