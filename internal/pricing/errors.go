package pricing

import "errors"

var (
	// ErrInvalidNights возвращается, когда количество ночей меньше минимального
	ErrInvalidNights = errors.New("pricing: nights must be at least 1")

	// ErrNoAdults возвращается, когда в составе гостей нет ни одного взрослого
	ErrNoAdults = errors.New("pricing: at least one adult is required")

	// ErrNegativeGuestCount возвращается при отрицательном количестве гостей
	ErrNegativeGuestCount = errors.New("pricing: guest counts must be non-negative")

	// ErrGuestLimitExceeded возвращается, когда состав гостей превышает лимиты листинга
	ErrGuestLimitExceeded = errors.New("pricing: guest counts exceed listing limits")

	// ErrCurrencyMismatch возвращается, когда ставка и сборы заданы в разных валютах
	ErrCurrencyMismatch = errors.New("pricing: rate and fees must share one currency")

	// ErrNegativeRate возвращается при отрицательной ставке или сборах
	ErrNegativeRate = errors.New("pricing: rate and fees must be non-negative")
)
