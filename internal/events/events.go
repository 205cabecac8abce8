package events

import (
	"time"
)

// Event событие жизненного цикла бронирования
// Публикуется для внешних потребителей (уведомления, сообщения, платежи);
// доставка best-effort и не входит в транзакционную гарантию операции
type Event interface {
	EventName() string
	BookingID() int64
	OccurredAt() time.Time
}

// MoneyPayload денежная сумма в payload события
type MoneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// BookingCreated бронирование создано гостем и ожидает подтверждения хоста
type BookingCreated struct {
	ID        int64        `json:"id"`
	ListingID int64        `json:"listing_id"`
	GuestID   int64        `json:"guest_id"`
	HostID    int64        `json:"host_id"`
	CheckIn   time.Time    `json:"check_in"`
	CheckOut  time.Time    `json:"check_out"`
	Total     MoneyPayload `json:"total"`
	At        time.Time    `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) BookingID() int64      { return e.ID }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

// BookingApproved хост подтвердил бронирование
type BookingApproved struct {
	ID     int64     `json:"id"`
	HostID int64     `json:"host_id"`
	At     time.Time `json:"at"`
}

func (e BookingApproved) EventName() string     { return "booking.approved" }
func (e BookingApproved) BookingID() int64      { return e.ID }
func (e BookingApproved) OccurredAt() time.Time { return e.At }

// BookingDeclined хост отклонил бронирование, диапазон дат освобожден
type BookingDeclined struct {
	ID     int64     `json:"id"`
	HostID int64     `json:"host_id"`
	At     time.Time `json:"at"`
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) BookingID() int64      { return e.ID }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

// BookingEdited параметры проживания изменены; подтвержденное бронирование
// вернулось в ожидание повторного подтверждения хостом
type BookingEdited struct {
	ID               int64        `json:"id"`
	CheckIn          time.Time    `json:"check_in"`
	CheckOut         time.Time    `json:"check_out"`
	Total            MoneyPayload `json:"total"`
	RequiresApproval bool         `json:"requires_approval"`
	At               time.Time    `json:"at"`
}

func (e BookingEdited) EventName() string     { return "booking.edited" }
func (e BookingEdited) BookingID() int64      { return e.ID }
func (e BookingEdited) OccurredAt() time.Time { return e.At }

// BookingCancelled бронирование отменено гостем или хостом
// Refund - сумма к возврату, рассчитанная политикой отмены; фактическое
// исполнение возврата за внешним платежным сервисом
type BookingCancelled struct {
	ID            int64        `json:"id"`
	CancelledBy   string       `json:"cancelled_by"`
	Reason        string       `json:"reason"`
	Refund        MoneyPayload `json:"refund"`
	RefundPercent int          `json:"refund_percent"`
	At            time.Time    `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) BookingID() int64      { return e.ID }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

// BookingCompleted проживание завершено (выезд прошел)
type BookingCompleted struct {
	ID int64     `json:"id"`
	At time.Time `json:"at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) BookingID() int64      { return e.ID }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
