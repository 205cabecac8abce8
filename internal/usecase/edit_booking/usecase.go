package edit_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
	availabilityRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/booking"
	listingClient "github.com/m04kA/STY-ReservationService/internal/integrations/listingservice"
	"github.com/m04kA/STY-ReservationService/internal/pricing"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
)

// UseCase use case для редактирования бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	listingClient    ListingServiceClient
	txManager        TransactionManager
	publisher        EventPublisher
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	listingClient ListingServiceClient,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		listingClient:    listingClient,
		txManager:        txManager,
		publisher:        publisher,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case редактирования бронирования
// Разрешено гостю и хосту бронирования и только в статусах pending и approved.
// Подтвержденное бронирование после изменения дат возвращается в pending
// и ждет повторного подтверждения хоста. Цена пересчитывается по актуальному
// снапшоту листинга; смена диапазона и перерасчет выполняются в одной
// сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	uc.logger.Info("EditBooking: booking=%d, user=%d, check_in=%s, check_out=%s",
		req.BookingID, req.UserID, req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("EditBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Валидация нового диапазона дат
	stay := domain.NewStayRange(req.CheckIn, req.CheckOut)
	if err := validateStay(stay, now); err != nil {
		uc.logger.Warn("EditBooking: stay validation failed: %v", err)
		return nil, err
	}

	// 3. Читаем бронирование вне транзакции, чтобы не держать её на время
	// HTTP-похода за снапшотом листинга
	booking, err := uc.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	listing, err := uc.listingClient.GetListing(ctx, booking.ListingID)
	if err != nil {
		if errors.Is(err, listingClient.ErrListingNotFound) {
			uc.logger.Warn("EditBooking: listing id=%d not found", booking.ListingID)
			return nil, ErrListingNotFound
		}
		uc.logger.Error("EditBooking: failed to get listing id=%d: %v", booking.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
	}

	var (
		result      *domain.Booking
		wasApproved bool
	)

	// 4. Перепроверка и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем внутри транзакции: статус мог поменяться
		booking, err := uc.getBooking(txCtx, req.BookingID)
		if err != nil {
			return err
		}

		if booking.GuestID != req.UserID && booking.HostID != req.UserID {
			uc.logger.Warn("EditBooking: access denied for user=%d to booking id=%d", req.UserID, req.BookingID)
			return ErrAccessDenied
		}

		if err := booking.EnsureCan(domain.OpEdit, now); err != nil {
			uc.logger.Warn("EditBooking: booking id=%d cannot be edited, status=%s", req.BookingID, booking.Status)
			return err
		}

		// Пересчитываем цену: новый состав гостей проверяется против лимитов
		price, err := pricing.Quote(listing.NightlyRate, stay.Nights(), listing.Fees, req.Guests, listing.Limits)
		if err != nil {
			uc.logger.Warn("EditBooking: pricing failed for booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		// Перемещаем резервирование на новый диапазон; собственное
		// резервирование бронирования конфликтом не считается
		if err := uc.availabilityRepo.UpdateRange(txCtx, booking.ListingID, booking.ID, stay); err != nil {
			var conflict *availabilityRepo.ConflictError
			if errors.As(err, &conflict) {
				uc.logger.Warn("EditBooking: dates unavailable for booking id=%d, conflicts with booking id=%d",
					req.BookingID, conflict.ConflictingBookingID)
				return &SlotUnavailableError{ConflictingBookingID: conflict.ConflictingBookingID}
			}
			if errors.Is(err, availabilityRepo.ErrRangeConflict) {
				uc.logger.Warn("EditBooking: dates unavailable for booking id=%d (concurrent reservation)", req.BookingID)
				return ErrSlotUnavailable
			}
			uc.logger.Error("EditBooking: failed to move reservation for booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to move reservation: %v", ErrInternal, err)
		}

		// Подтвержденное бронирование после правки требует нового
		// подтверждения хоста
		wasApproved = booking.Status == domain.StatusApproved
		newStatus := domain.StatusPending

		if err := uc.bookingRepo.UpdateStay(txCtx, booking.ID, stay, req.Guests, price, newStatus, req.SpecialRequests); err != nil {
			uc.logger.Error("EditBooking: failed to update booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		booking.Stay = stay
		booking.Guests = req.Guests
		booking.Price = price
		booking.Status = newStatus
		if req.SpecialRequests != nil {
			booking.SpecialRequests = req.SpecialRequests
		}
		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("EditBooking: successfully edited booking id=%d, total=%d %s, status=%s",
		result.ID, result.Price.Total.Amount, result.Price.Total.Currency, result.Status)

	uc.publishEvent(ctx, events.BookingEdited{
		ID:               result.ID,
		CheckIn:          result.Stay.CheckIn,
		CheckOut:         result.Stay.CheckOut,
		Total:            events.MoneyPayload{Amount: result.Price.Total.Amount, Currency: result.Price.Total.Currency},
		RequiresApproval: wasApproved,
		At:               now,
	})

	return models.FromDomainBooking(result), nil
}

// publishEvent публикует событие жизненного цикла
// Доставка best-effort: ошибка публикации логируется и не откатывает операцию
func (uc *UseCase) publishEvent(ctx context.Context, event events.Event) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("EditBooking: failed to publish %s for booking id=%d: %v",
			event.EventName(), event.BookingID(), err)
	}
}

// getBooking получает бронирование, транслируя ошибки репозитория
func (uc *UseCase) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("EditBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("EditBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return booking, nil
}
