package create_booking

import (
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	GuestID         int64              // ID гостя, создающего бронирование
	ListingID       int64              // ID листинга
	CheckIn         time.Time          // Дата заезда (без времени)
	CheckOut        time.Time          // Дата выезда (без времени)
	Guests          domain.GuestCounts // Состав гостей
	ContactEmail    string             // Контактный email
	ContactPhone    string             // Контактный телефон
	SpecialRequests *string            // Пожелания гостя (опционально)
	PaymentMethodID *int64             // Способ оплаты (опционально)
	IdempotencyKey  *string            // Ключ идемпотентности (опционально)
}
