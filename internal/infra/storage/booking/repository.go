package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/STY-ReservationService/pkg/money"
	"github.com/m04kA/STY-ReservationService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"listing_id",
	"guest_id",
	"host_id",
	"payment_method_id",
	"check_in",
	"check_out",
	"nights",
	"adults",
	"children",
	"infants",
	"pets",
	"nightly_rate",
	"cleaning_fee",
	"service_fee",
	"taxes",
	"total",
	"currency",
	"status",
	"payment_status",
	"contact_email",
	"contact_phone",
	"special_requests",
	"cancelled_by",
	"cancelled_at",
	"cancellation_reason",
	"refund_amount",
	"refund_explanation",
	"review_submitted",
	"idempotency_key",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Создание всегда должно выполняться в одной транзакции с резервированием
// диапазона дат (см. availability.Repository), иначе возможна гонка между
// проверкой доступности и вставкой.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"listing_id",
			"guest_id",
			"host_id",
			"payment_method_id",
			"check_in",
			"check_out",
			"nights",
			"adults",
			"children",
			"infants",
			"pets",
			"nightly_rate",
			"cleaning_fee",
			"service_fee",
			"taxes",
			"total",
			"currency",
			"status",
			"payment_status",
			"contact_email",
			"contact_phone",
			"special_requests",
			"idempotency_key",
		).
		Values(
			booking.ListingID,
			booking.GuestID,
			booking.HostID,
			booking.PaymentMethodID,
			booking.Stay.CheckIn,
			booking.Stay.CheckOut,
			booking.Price.Nights,
			booking.Guests.Adults,
			booking.Guests.Children,
			booking.Guests.Infants,
			booking.Guests.Pets,
			booking.Price.NightlyRate.Amount,
			booking.Price.CleaningFee.Amount,
			booking.Price.ServiceFee.Amount,
			booking.Price.Taxes.Amount,
			booking.Price.Total.Amount,
			booking.Price.Total.Currency,
			booking.Status,
			booking.PaymentStatus,
			booking.ContactEmail,
			booking.ContactPhone,
			booking.SpecialRequests,
			booking.IdempotencyKey,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "bookings_idempotency_key_key") {
			return nil, ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByIdempotencyKey получает бронирование по idempotency key
// Используется для возврата исходного результата при повторном create-запросе
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"idempotency_key": key}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByGuestID получает список бронирований гостя
// Опционально фильтрует по статусу
func (r *Repository) GetByGuestID(ctx context.Context, guestID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"guest_id": guestID}).
		OrderBy("check_in DESC, id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGuestID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGuestID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByListingWithFilter получает бронирования листинга с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению неактивных
// (отклонённых и отменённых) бронирований
func (r *Repository) GetByListingWithFilter(ctx context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"listing_id": filter.ListingID})

	// Фильтрация по периоду: бронирования, пересекающие [StartDate, EndDate)
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"check_out": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"check_in": *filter.EndDate})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("check_in ASC, id ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListExpiredApproved получает подтвержденные бронирования, у которых дата
// выезда уже прошла. Используется триггером завершения (см. §complete-expired)
func (r *Repository) ListExpiredApproved(ctx context.Context, before time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusApproved}).
		Where(squirrel.Lt{"check_out": before}).
		OrderBy("check_out ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredApproved - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredApproved - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateStatus")
}

// UpdateStay обновляет параметры проживания после редактирования:
// даты, состав гостей, пересчитанную цену и новый статус
// Пожелания гостя меняются только если переданы (nil оставляет прежние)
func (r *Repository) UpdateStay(ctx context.Context, id int64, stay domain.StayRange, guests domain.GuestCounts, price domain.PriceBreakdown, status domain.BookingStatus, specialRequests *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("check_in", stay.CheckIn).
		Set("check_out", stay.CheckOut).
		Set("nights", price.Nights).
		Set("adults", guests.Adults).
		Set("children", guests.Children).
		Set("infants", guests.Infants).
		Set("pets", guests.Pets).
		Set("nightly_rate", price.NightlyRate.Amount).
		Set("cleaning_fee", price.CleaningFee.Amount).
		Set("service_fee", price.ServiceFee.Amount).
		Set("taxes", price.Taxes.Amount).
		Set("total", price.Total.Amount).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if specialRequests != nil {
		updateBuilder = updateBuilder.Set("special_requests", *specialRequests)
	}

	query, args, err := updateBuilder.ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStay - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStay - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateStay")
}

// Cancel отменяет бронирование, записывая метаданные отмены и сумму возврата
func (r *Repository) Cancel(ctx context.Context, id int64, cancelledBy domain.CancelledBy, reason string, refundAmount int64, refundExplanation string, paymentStatus domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("payment_status", paymentStatus).
		Set("cancelled_by", cancelledBy).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancellation_reason", reason).
		Set("refund_amount", refundAmount).
		Set("refund_explanation", refundExplanation).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "Cancel")
}

// MarkReviewed выставляет флаг наличия отзыва
// Вызывается внешней системой отзывов после завершения проживания
func (r *Repository) MarkReviewed(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("review_submitted", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReviewed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkReviewed - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "MarkReviewed")
}

// scanBooking сканирует одну строку в доменную модель
func (r *Repository) scanBooking(row *sql.Row) (*domain.Booking, error) {
	var (
		b                  domain.Booking
		checkIn, checkOut  time.Time
		nights             int
		nightlyRate        int64
		cleaningFee        int64
		serviceFee         int64
		taxes              int64
		total              int64
		currency           string
		cancelledBy        sql.NullString
		cancelledAt        sql.NullTime
		cancellationReason sql.NullString
		refundAmount       sql.NullInt64
		refundExplanation  sql.NullString
		specialRequests    sql.NullString
		idempotencyKey     sql.NullString
		createdAt          sql.NullTime
		updatedAt          sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.GuestID,
		&b.HostID,
		&b.PaymentMethodID,
		&checkIn,
		&checkOut,
		&nights,
		&b.Guests.Adults,
		&b.Guests.Children,
		&b.Guests.Infants,
		&b.Guests.Pets,
		&nightlyRate,
		&cleaningFee,
		&serviceFee,
		&taxes,
		&total,
		&currency,
		&b.Status,
		&b.PaymentStatus,
		&b.ContactEmail,
		&b.ContactPhone,
		&specialRequests,
		&cancelledBy,
		&cancelledAt,
		&cancellationReason,
		&refundAmount,
		&refundExplanation,
		&b.ReviewSubmitted,
		&idempotencyKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	fillBooking(&b, checkIn, checkOut, nights, nightlyRate, cleaningFee, serviceFee, taxes, total, currency,
		specialRequests, cancelledBy, cancelledAt, cancellationReason, refundAmount, refundExplanation, idempotencyKey, createdAt, updatedAt)

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var (
			b                  domain.Booking
			checkIn, checkOut  time.Time
			nights             int
			nightlyRate        int64
			cleaningFee        int64
			serviceFee         int64
			taxes              int64
			total              int64
			currency           string
			cancelledBy        sql.NullString
			cancelledAt        sql.NullTime
			cancellationReason sql.NullString
			refundAmount       sql.NullInt64
			refundExplanation  sql.NullString
			specialRequests    sql.NullString
			idempotencyKey     sql.NullString
			createdAt          sql.NullTime
			updatedAt          sql.NullTime
		)

		err := rows.Scan(
			&b.ID,
			&b.ListingID,
			&b.GuestID,
			&b.HostID,
			&b.PaymentMethodID,
			&checkIn,
			&checkOut,
			&nights,
			&b.Guests.Adults,
			&b.Guests.Children,
			&b.Guests.Infants,
			&b.Guests.Pets,
			&nightlyRate,
			&cleaningFee,
			&serviceFee,
			&taxes,
			&total,
			&currency,
			&b.Status,
			&b.PaymentStatus,
			&b.ContactEmail,
			&b.ContactPhone,
			&specialRequests,
			&cancelledBy,
			&cancelledAt,
			&cancellationReason,
			&refundAmount,
			&refundExplanation,
			&b.ReviewSubmitted,
			&idempotencyKey,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		fillBooking(&b, checkIn, checkOut, nights, nightlyRate, cleaningFee, serviceFee, taxes, total, currency,
			specialRequests, cancelledBy, cancelledAt, cancellationReason, refundAmount, refundExplanation, idempotencyKey, createdAt, updatedAt)

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// fillBooking собирает доменную модель из отсканированных колонок
func fillBooking(
	b *domain.Booking,
	checkIn, checkOut time.Time,
	nights int,
	nightlyRate, cleaningFee, serviceFee, taxes, total int64,
	currency string,
	specialRequests, cancelledBy sql.NullString,
	cancelledAt sql.NullTime,
	cancellationReason sql.NullString,
	refundAmount sql.NullInt64,
	refundExplanation sql.NullString,
	idempotencyKey sql.NullString,
	createdAt, updatedAt sql.NullTime,
) {
	b.Stay = domain.NewStayRange(checkIn, checkOut)
	b.Price = domain.PriceBreakdown{
		NightlyRate: money.Money{Amount: nightlyRate, Currency: currency},
		Nights:      nights,
		CleaningFee: money.Money{Amount: cleaningFee, Currency: currency},
		ServiceFee:  money.Money{Amount: serviceFee, Currency: currency},
		Taxes:       money.Money{Amount: taxes, Currency: currency},
		Total:       money.Money{Amount: total, Currency: currency},
	}

	if specialRequests.Valid {
		b.SpecialRequests = &specialRequests.String
	}
	if cancelledBy.Valid {
		by := domain.CancelledBy(cancelledBy.String)
		b.CancelledBy = &by
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		b.CancellationReason = &cancellationReason.String
	}
	if refundAmount.Valid {
		amount := money.Money{Amount: refundAmount.Int64, Currency: currency}
		b.RefundAmount = &amount
	}
	if refundExplanation.Valid {
		b.RefundExplanation = &refundExplanation.String
	}
	if idempotencyKey.Valid {
		b.IdempotencyKey = &idempotencyKey.String
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
}

// checkAffected возвращает ErrBookingNotFound, если обновление никого не задело
func checkAffected(result sql.Result, method string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// isUniqueViolation проверяет ошибку на нарушение конкретного уникального индекса
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
