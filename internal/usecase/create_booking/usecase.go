package create_booking

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

// UseCase use case для создания бронирования
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

// Execute выполняет use case создания бронирования
// Резервирование диапазона дат и вставка бронирования выполняются в одной
// сериализуемой транзакции: два конкурирующих запроса на пересекающиеся даты
// не могут оба получить подтверждение
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	uc.logger.Info("CreateBooking: guest=%d, listing=%d, check_in=%s, check_out=%s",
		req.GuestID, req.ListingID, req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Валидация диапазона дат
	stay := domain.NewStayRange(req.CheckIn, req.CheckOut)
	if err := validateStay(stay, now); err != nil {
		uc.logger.Warn("CreateBooking: stay validation failed: %v", err)
		return nil, err
	}

	// 3. Повтор запроса с тем же ключом идемпотентности возвращает исходное
	// бронирование без каких-либо побочных эффектов
	if req.IdempotencyKey != nil {
		existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err == nil {
			uc.logger.Info("CreateBooking: idempotent replay, returning booking id=%d for key=%s",
				existing.ID, *req.IdempotencyKey)
			return models.FromDomainBooking(existing), nil
		}
		if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: failed to check idempotency key: %v", err)
			return nil, fmt.Errorf("%w: failed to check idempotency key: %v", ErrInternal, err)
		}
	}

	// 4. Получаем снапшот листинга: ставка, сборы, лимиты гостей
	listing, err := uc.listingClient.GetListing(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, listingClient.ErrListingNotFound) {
			uc.logger.Warn("CreateBooking: listing id=%d not found", req.ListingID)
			return nil, ErrListingNotFound
		}
		uc.logger.Error("CreateBooking: failed to get listing id=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
	}

	if listing.HostID == req.GuestID {
		uc.logger.Warn("CreateBooking: guest=%d attempted to book own listing=%d", req.GuestID, req.ListingID)
		return nil, ErrOwnListing
	}

	// 5. Считаем цену: состав гостей проверяется против лимитов листинга
	price, err := pricing.Quote(listing.NightlyRate, stay.Nights(), listing.Fees, req.Guests, listing.Limits)
	if err != nil {
		uc.logger.Warn("CreateBooking: pricing failed for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result *domain.Booking

	// 6. Вставка бронирования и резервирование дат в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking := &domain.Booking{
			ListingID:       req.ListingID,
			GuestID:         req.GuestID,
			HostID:          listing.HostID,
			PaymentMethodID: req.PaymentMethodID,
			Stay:            stay,
			Guests:          req.Guests,
			Price:           price,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentPending,
			ContactEmail:    req.ContactEmail,
			ContactPhone:    req.ContactPhone,
			SpecialRequests: req.SpecialRequests,
			IdempotencyKey:  req.IdempotencyKey,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
				// Конкурентный повтор с тем же ключом успел раньше
				return err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if err := uc.availabilityRepo.Reserve(txCtx, req.ListingID, created.ID, stay); err != nil {
			var conflict *availabilityRepo.ConflictError
			if errors.As(err, &conflict) {
				uc.logger.Warn("CreateBooking: dates unavailable for listing=%d, conflicts with booking id=%d",
					req.ListingID, conflict.ConflictingBookingID)
				return &SlotUnavailableError{ConflictingBookingID: conflict.ConflictingBookingID}
			}
			if errors.Is(err, availabilityRepo.ErrRangeConflict) {
				uc.logger.Warn("CreateBooking: dates unavailable for listing=%d (concurrent reservation)", req.ListingID)
				return ErrSlotUnavailable
			}
			uc.logger.Error("CreateBooking: failed to reserve dates: %v", err)
			return fmt.Errorf("%w: failed to reserve dates: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Гонка двух запросов с одним ключом идемпотентности: возвращаем
		// бронирование, созданное победителем
		if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			existing, getErr := uc.bookingRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
			if getErr != nil {
				uc.logger.Error("CreateBooking: failed to fetch booking after duplicate key: %v", getErr)
				return nil, fmt.Errorf("%w: failed to fetch booking after duplicate key: %v", ErrInternal, getErr)
			}
			uc.logger.Info("CreateBooking: idempotent replay after race, returning booking id=%d", existing.ID)
			return models.FromDomainBooking(existing), nil
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, total=%d %s",
		result.ID, result.Price.Total.Amount, result.Price.Total.Currency)

	uc.publishEvent(ctx, events.BookingCreated{
		ID:        result.ID,
		ListingID: result.ListingID,
		GuestID:   result.GuestID,
		HostID:    result.HostID,
		CheckIn:   result.Stay.CheckIn,
		CheckOut:  result.Stay.CheckOut,
		Total:     events.MoneyPayload{Amount: result.Price.Total.Amount, Currency: result.Price.Total.Currency},
		At:        now,
	})

	return models.FromDomainBooking(result), nil
}

// publishEvent публикует событие жизненного цикла
// Доставка best-effort: ошибка публикации логируется и не откатывает операцию
func (uc *UseCase) publishEvent(ctx context.Context, event events.Event) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish %s for booking id=%d: %v",
			event.EventName(), event.BookingID(), err)
	}
}
