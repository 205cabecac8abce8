package edit_booking

import (
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
)

// Request модель запроса на редактирование бронирования
// Даты, состав гостей и пожелания заменяются целиком; цена пересчитывается
// по актуальному снапшоту листинга
type Request struct {
	BookingID       int64              // ID редактируемого бронирования
	UserID          int64              // ID пользователя, выполняющего редактирование
	CheckIn         time.Time          // Новая дата заезда
	CheckOut        time.Time          // Новая дата выезда
	Guests          domain.GuestCounts // Новый состав гостей
	SpecialRequests *string            // Пожелания гостя (опционально)
}
