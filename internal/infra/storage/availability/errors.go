package availability

import (
	"errors"
	"fmt"
)

var (
	// ErrRangeConflict возвращается, когда запрошенный диапазон дат пересекается
	// с существующим резервированием листинга
	ErrRangeConflict = errors.New("availability.repository: date range conflict")

	// ErrReservationNotFound возвращается, когда резервирование не найдено
	ErrReservationNotFound = errors.New("availability.repository: reservation not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)

// ConflictError несет ID бронирования, с которым конфликтует запрошенный диапазон
// Разворачивается в ErrRangeConflict для проверки через errors.Is
type ConflictError struct {
	ConflictingBookingID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("availability.repository: date range conflicts with booking id=%d", e.ConflictingBookingID)
}

func (e *ConflictError) Unwrap() error {
	return ErrRangeConflict
}
