package models

import (
	"errors"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetGuestBookingsRequest запрос на получение бронирований гостя
type GetGuestBookingsRequest struct {
	UserID  int64   `json:"userId"`
	GuestID int64   `json:"guestId"`
	Status  *string `json:"status,omitempty"`
}

// GetListingBookingsRequest запрос на получение бронирований листинга
type GetListingBookingsRequest struct {
	UserID          int64      `json:"userId"`
	ListingID       int64      `json:"listingId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отклонённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetListingBookingsRequest) ToDomainFilter() (domain.ListingBookingsFilter, error) {
	filter := domain.ListingBookingsFilter{
		ListingID:       r.ListingID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// MoneyResponse денежная сумма в минорных единицах валюты
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PriceResponse детализация стоимости проживания
type PriceResponse struct {
	NightlyRate MoneyResponse `json:"nightlyRate"`
	Nights      int           `json:"nights"`
	CleaningFee MoneyResponse `json:"cleaningFee"`
	ServiceFee  MoneyResponse `json:"serviceFee"`
	Taxes       MoneyResponse `json:"taxes"`
	Total       MoneyResponse `json:"total"`
}

// GuestsResponse состав гостей
type GuestsResponse struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`
}

// CancellationResponse метаданные отмены, присутствуют только после отмены
type CancellationResponse struct {
	CancelledBy       string         `json:"cancelledBy"`
	CancelledAt       string         `json:"cancelledAt"` // ISO 8601 format
	Reason            *string        `json:"reason,omitempty"`
	RefundAmount      *MoneyResponse `json:"refundAmount,omitempty"`
	RefundExplanation *string        `json:"refundExplanation,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	ListingID       int64  `json:"listingId"`
	GuestID         int64  `json:"guestId"`
	HostID          int64  `json:"hostId"`
	PaymentMethodID *int64 `json:"paymentMethodId,omitempty"`

	CheckIn  string `json:"checkIn"`  // "2026-03-01"
	CheckOut string `json:"checkOut"` // "2026-03-05"

	Guests GuestsResponse `json:"guests"`
	Price  PriceResponse  `json:"price"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	ContactEmail    string  `json:"contactEmail"`
	ContactPhone    string  `json:"contactPhone"`
	SpecialRequests *string `json:"specialRequests,omitempty"`

	Cancellation *CancellationResponse `json:"cancellation,omitempty"`

	ReviewSubmitted bool `json:"reviewSubmitted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		HostID:          b.HostID,
		PaymentMethodID: b.PaymentMethodID,
		CheckIn:         b.Stay.CheckIn.Format(domain.DateFormat),
		CheckOut:        b.Stay.CheckOut.Format(domain.DateFormat),
		Guests: GuestsResponse{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Infants:  b.Guests.Infants,
			Pets:     b.Guests.Pets,
		},
		Price: PriceResponse{
			NightlyRate: MoneyResponse{Amount: b.Price.NightlyRate.Amount, Currency: b.Price.NightlyRate.Currency},
			Nights:      b.Price.Nights,
			CleaningFee: MoneyResponse{Amount: b.Price.CleaningFee.Amount, Currency: b.Price.CleaningFee.Currency},
			ServiceFee:  MoneyResponse{Amount: b.Price.ServiceFee.Amount, Currency: b.Price.ServiceFee.Currency},
			Taxes:       MoneyResponse{Amount: b.Price.Taxes.Amount, Currency: b.Price.Taxes.Currency},
			Total:       MoneyResponse{Amount: b.Price.Total.Amount, Currency: b.Price.Total.Currency},
		},
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		ContactEmail:    b.ContactEmail,
		ContactPhone:    b.ContactPhone,
		SpecialRequests: b.SpecialRequests,
		ReviewSubmitted: b.ReviewSubmitted,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	// Блок отмены появляется только после фактической отмены
	if b.CancelledBy != nil && b.CancelledAt != nil {
		cancellation := &CancellationResponse{
			CancelledBy:       string(*b.CancelledBy),
			CancelledAt:       b.CancelledAt.Format(time.RFC3339),
			Reason:            b.CancellationReason,
			RefundExplanation: b.RefundExplanation,
		}
		if b.RefundAmount != nil {
			cancellation.RefundAmount = &MoneyResponse{
				Amount:   b.RefundAmount.Amount,
				Currency: b.RefundAmount.Currency,
			}
		}
		resp.Cancellation = cancellation
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	for _, valid := range domain.ValidStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
