package domain

// Business validation constants
const (
	MinAdults                   = 1
	MinNights                   = 1
	MaxNights                   = 365
	MaxSpecialRequestsLength    = 1000
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// RangeHoldingStatuses список статусов, в которых бронирование занимает
// свой диапазон дат в индексе доступности
var RangeHoldingStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusCompleted,
}

// InactiveStatuses список статусов, в которых бронирование освободило диапазон
// Используется для фильтрации при выборках
var InactiveStatuses = []BookingStatus{
	StatusDeclined,
	StatusCancelled,
}

// ValidStatuses все допустимые статусы бронирования
var ValidStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusDeclined,
	StatusCancelled,
	StatusCompleted,
}
