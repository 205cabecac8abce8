package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/STY-ReservationService/pkg/psqlbuilder"
)

// Repository индекс доступности: по одному резервированию диапазона
// [check_in, check_out) на каждое бронирование листинга в активном статусе.
//
// Инвариант: резервирования одного листинга попарно не пересекаются
// (совпадение границ - выезд одного равен заезду другого - допустимо).
// Инвариант обеспечивается двумя слоями:
//  1. проверка пересечения с FOR UPDATE внутри SERIALIZABLE транзакции
//     (Reserve/UpdateRange должны вызываться только внутри транзакции);
//  2. exclusion constraint по daterange в схеме таблицы как страховка.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр индекса доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Reserve резервирует диапазон дат листинга за бронированием
// Выполняет проверку пересечения и вставку одной операцией с точки зрения
// вызывающего; при конфликте возвращает ConflictError с ID конфликтующего
// бронирования. Должен вызываться внутри транзакции.
func (r *Repository) Reserve(ctx context.Context, listingID, bookingID int64, stay domain.StayRange) error {
	if conflictID, err := r.findConflict(ctx, listingID, stay, nil); err != nil {
		return err
	} else if conflictID != nil {
		return &ConflictError{ConflictingBookingID: *conflictID}
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("listing_reservations").
		Columns("listing_id", "booking_id", "check_in", "check_out").
		Values(listingID, bookingID, stay.CheckIn, stay.CheckOut).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reserve - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if isExclusionViolation(err) {
			// Конкурентная вставка успела раньше; ID конкурента constraint не сообщает
			return ErrRangeConflict
		}
		return fmt.Errorf("%w: Reserve - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateRange меняет диапазон существующего резервирования (редактирование дат)
// Пересечение проверяется с исключением собственного резервирования
// бронирования. Должен вызываться внутри транзакции.
func (r *Repository) UpdateRange(ctx context.Context, listingID, bookingID int64, stay domain.StayRange) error {
	if conflictID, err := r.findConflict(ctx, listingID, stay, &bookingID); err != nil {
		return err
	} else if conflictID != nil {
		return &ConflictError{ConflictingBookingID: *conflictID}
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("listing_reservations").
		Set("check_in", stay.CheckIn).
		Set("check_out", stay.CheckOut).
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateRange - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isExclusionViolation(err) {
			return ErrRangeConflict
		}
		return fmt.Errorf("%w: UpdateRange - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateRange - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// Release освобождает резервирование бронирования
// Вызывается при отклонении и отмене бронирования в той же транзакции,
// что и смена статуса (никаких осиротевших резервирований)
func (r *Repository) Release(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("listing_reservations").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// findConflict ищет резервирование листинга, пересекающееся с диапазоном
// Пересечение полуинтервалов: [a,b) и [c,d) конфликтуют при a < d && c < b.
// Внутри транзакции блокирует найденные строки через FOR UPDATE
func (r *Repository) findConflict(ctx context.Context, listingID int64, stay domain.StayRange, excludeBookingID *int64) (*int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("booking_id").
		From("listing_reservations").
		Where(squirrel.Eq{"listing_id": listingID}).
		Where(squirrel.Lt{"check_in": stay.CheckOut}).
		Where(squirrel.Gt{"check_out": stay.CheckIn}).
		OrderBy("check_in ASC").
		Limit(1)

	if excludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"booking_id": *excludeBookingID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: findConflict - build select query: %v", ErrBuildQuery, err)
	}

	var conflictingBookingID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&conflictingBookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: findConflict - scan booking_id: %v", ErrScanRow, err)
	}

	return &conflictingBookingID, nil
}

// isExclusionViolation проверяет ошибку на нарушение exclusion/unique constraint
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23P01 - exclusion_violation, 23505 - unique_violation
		return pqErr.Code == "23P01" || pqErr.Code == "23505"
	}
	return false
}
