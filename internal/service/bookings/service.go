package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
	bookingRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/booking"
	listingClient "github.com/m04kA/STY-ReservationService/internal/integrations/listingservice"
	"github.com/m04kA/STY-ReservationService/internal/refund"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
// Все смены статуса проходят через доменную машину состояний (Booking.EnsureCan);
// освобождение диапазона дат выполняется в одной транзакции со сменой статуса
type Service struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	listingClient    ListingServiceClient
	txManager        TransactionManager
	publisher        EventPublisher
	logger           Logger
	now              func() time.Time
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	listingClient ListingServiceClient,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		listingClient:    listingClient,
		txManager:        txManager,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - бронирование видят только его гость и хост листинга
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	// Проверяем права доступа
	if booking.GuestID != userID && booking.HostID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetGuestBookings получает историю бронирований гостя
// Опционально фильтрует по статусу. Гость видит только собственную историю
func (s *Service) GetGuestBookings(ctx context.Context, req *models.GetGuestBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetGuestBookings: fetching bookings for guest=%d, status=%v", req.GuestID, req.Status)

	if req.UserID != req.GuestID {
		s.logger.Warn("GetGuestBookings: access denied for user=%d to guest=%d history", req.UserID, req.GuestID)
		return nil, ErrAccessDenied
	}

	// Конвертируем статус из строки в domain.BookingStatus
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetGuestBookings: invalid status=%s for guest=%d", *req.Status, req.GuestID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByGuestID(ctx, req.GuestID, domainStatus)
	if err != nil {
		s.logger.Error("GetGuestBookings: repository error for guest=%d: %v", req.GuestID, err)
		return nil, fmt.Errorf("%w: GetGuestBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetGuestBookings: successfully fetched %d bookings for guest=%d", len(bookings), req.GuestID)
	return models.FromDomainBookingList(bookings), nil
}

// GetListingBookings получает бронирования листинга с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению неактивных бронирований
// Доступно только хосту листинга
//
// Примеры использования:
// - Все активные бронирования: GetListingBookings(ctx, &GetListingBookingsRequest{ListingID: 123, UserID: 456})
// - Бронирования за период: указать StartDate и EndDate
// - Только ожидающие подтверждения: указать Status = "pending"
// - Включая отклонённые и отменённые: IncludeInactive = true
func (s *Service) GetListingBookings(ctx context.Context, req *models.GetListingBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetListingBookings: fetching bookings for listing=%d, user=%d", req.ListingID, req.UserID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	// Проверяем права доступа хоста
	if err := s.checkHostAccess(ctx, req.ListingID, req.UserID); err != nil {
		return nil, err
	}

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetListingBookings: invalid filter for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByListingWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetListingBookings: repository error for listing=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: GetListingBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetListingBookings: successfully fetched %d bookings for listing=%d", len(bookings), req.ListingID)
	return models.FromDomainBookingList(bookings), nil
}

// Approve подтверждает ожидающее бронирование
// Доступно только хосту листинга; разрешено только из статуса pending
func (s *Service) Approve(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Approve: approving booking id=%d by user=%d", bookingID, userID)

	var approved *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID, "Approve")
		if err != nil {
			return err
		}

		if booking.HostID != userID {
			s.logger.Warn("Approve: access denied for user=%d to booking id=%d", userID, bookingID)
			return ErrAccessDenied
		}

		if err := booking.EnsureCan(domain.OpApprove, s.now()); err != nil {
			s.logger.Warn("Approve: booking id=%d cannot be approved, status=%s", bookingID, booking.Status)
			return err
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusApproved); err != nil {
			s.logger.Error("Approve: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Approve - repository error: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusApproved
		approved = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingApproved{
		ID:     approved.ID,
		HostID: approved.HostID,
		At:     s.now(),
	})

	s.logger.Info("Approve: successfully approved booking id=%d", bookingID)
	return models.FromDomainBooking(approved), nil
}

// Decline отклоняет ожидающее бронирование
// Доступно только хосту листинга; диапазон дат освобождается в той же транзакции
func (s *Service) Decline(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Decline: declining booking id=%d by user=%d", bookingID, userID)

	var declined *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID, "Decline")
		if err != nil {
			return err
		}

		if booking.HostID != userID {
			s.logger.Warn("Decline: access denied for user=%d to booking id=%d", userID, bookingID)
			return ErrAccessDenied
		}

		if err := booking.EnsureCan(domain.OpDecline, s.now()); err != nil {
			s.logger.Warn("Decline: booking id=%d cannot be declined, status=%s", bookingID, booking.Status)
			return err
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusDeclined); err != nil {
			s.logger.Error("Decline: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Decline - repository error: %v", ErrInternal, err)
		}

		if err := s.availabilityRepo.Release(ctx, bookingID); err != nil {
			s.logger.Error("Decline: failed to release reservation for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Decline - release reservation: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusDeclined
		declined = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingDeclined{
		ID:     declined.ID,
		HostID: declined.HostID,
		At:     s.now(),
	})

	s.logger.Info("Decline: successfully declined booking id=%d", bookingID)
	return models.FromDomainBooking(declined), nil
}

// Cancel отменяет бронирование
// Гость и хост могут отменять; сумма возврата считается политикой отмены
// листинга на момент отмены, диапазон дат освобождается в той же транзакции.
// Завершенное проживание отменить нельзя
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	// Читаем бронирование вне транзакции, чтобы не держать её на время
	// HTTP-похода за политикой отмены листинга
	booking, err := s.getBooking(ctx, bookingID, "Cancel")
	if err != nil {
		return nil, err
	}

	policy := s.cancellationPolicy(ctx, booking.ListingID)

	var result refund.Result
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		// Перечитываем внутри транзакции: статус мог поменяться
		booking, err = s.getBooking(ctx, bookingID, "Cancel")
		if err != nil {
			return err
		}

		var cancelledBy domain.CancelledBy
		switch req.UserID {
		case booking.GuestID:
			cancelledBy = domain.CancelledByGuest
		case booking.HostID:
			cancelledBy = domain.CancelledByHost
		default:
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
			return ErrAccessDenied
		}

		now := s.now()
		if err := booking.EnsureCan(domain.OpCancel, now); err != nil {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return err
		}

		result = refund.ComputeRefund(booking, now, policy)
		paymentStatus := cancelPaymentStatus(booking, result)

		if err := s.bookingRepo.Cancel(ctx, bookingID, cancelledBy, req.CancellationReason, result.Amount.Amount, result.Explanation, paymentStatus); err != nil {
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if err := s.availabilityRepo.Release(ctx, bookingID); err != nil {
			s.logger.Error("Cancel: failed to release reservation for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - release reservation: %v", ErrInternal, err)
		}

		s.logger.Info("Cancel: booking id=%d cancelled by %s, refund=%d %s (%d%%)",
			bookingID, cancelledBy, result.Amount.Amount, result.Amount.Currency, result.Percent)

		booking.Status = domain.StatusCancelled
		booking.PaymentStatus = paymentStatus
		booking.CancelledBy = &cancelledBy
		booking.CancelledAt = &now
		booking.CancellationReason = &req.CancellationReason
		booking.RefundAmount = &result.Amount
		booking.RefundExplanation = &result.Explanation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCancelled{
		ID:            booking.ID,
		CancelledBy:   string(*booking.CancelledBy),
		Reason:        req.CancellationReason,
		Refund:        events.MoneyPayload{Amount: result.Amount.Amount, Currency: result.Amount.Currency},
		RefundPercent: result.Percent,
		At:            *booking.CancelledAt,
	})

	return models.FromDomainBooking(booking), nil
}

// Complete завершает подтвержденное бронирование, у которого прошла дата выезда
// Системная операция, запускается триггером завершения; резервирование диапазона
// сохраняется - завершенное проживание продолжает занимать свои даты в истории
func (s *Service) Complete(ctx context.Context, bookingID int64) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID, "Complete")
		if err != nil {
			return err
		}

		if err := booking.EnsureCan(domain.OpComplete, s.now()); err != nil {
			s.logger.Warn("Complete: booking id=%d cannot be completed, status=%s, check_out=%s",
				bookingID, booking.Status, booking.Stay.CheckOut.Format(domain.DateFormat))
			return err
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusCompleted); err != nil {
			s.logger.Error("Complete: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.BookingCompleted{
		ID: bookingID,
		At: s.now(),
	})

	s.logger.Info("Complete: successfully completed booking id=%d", bookingID)
	return nil
}

// CompleteExpired завершает все подтвержденные бронирования с прошедшей датой
// выезда. Возвращает число успешно завершенных; ошибка по одному бронированию
// не прерывает обработку остальных
func (s *Service) CompleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	s.logger.Info("CompleteExpired: looking for approved bookings with check_out before %s", now.Format(time.RFC3339))

	expired, err := s.bookingRepo.ListExpiredApproved(ctx, now)
	if err != nil {
		s.logger.Error("CompleteExpired: repository error: %v", err)
		return 0, fmt.Errorf("%w: CompleteExpired - repository error: %v", ErrInternal, err)
	}

	completed := 0
	for _, booking := range expired {
		if err := s.Complete(ctx, booking.ID); err != nil {
			s.logger.Error("CompleteExpired: failed to complete booking id=%d: %v", booking.ID, err)
			continue
		}
		completed++
	}

	s.logger.Info("CompleteExpired: completed %d of %d expired bookings", completed, len(expired))
	return completed, nil
}

// MarkReviewed выставляет флаг наличия отзыва о проживании
// Вызывается после отправки отзыва гостем; только гость завершенного
// проживания может оставить отзыв
func (s *Service) MarkReviewed(ctx context.Context, bookingID int64, userID int64) error {
	s.logger.Info("MarkReviewed: marking booking id=%d as reviewed by user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, bookingID, "MarkReviewed")
	if err != nil {
		return err
	}

	if booking.GuestID != userID {
		s.logger.Warn("MarkReviewed: access denied for user=%d to booking id=%d", userID, bookingID)
		return ErrAccessDenied
	}

	if booking.Status != domain.StatusCompleted {
		s.logger.Warn("MarkReviewed: booking id=%d is not completed, status=%s", bookingID, booking.Status)
		return fmt.Errorf("%w: booking status is %s", ErrNotCompleted, booking.Status)
	}

	if err := s.bookingRepo.MarkReviewed(ctx, bookingID); err != nil {
		s.logger.Error("MarkReviewed: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: MarkReviewed - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("MarkReviewed: successfully marked booking id=%d as reviewed", bookingID)
	return nil
}

// Вспомогательные методы

// getBooking получает бронирование, транслируя ошибки репозитория в сервисные
func (s *Service) getBooking(ctx context.Context, id int64, method string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}

// checkHostAccess проверяет, что пользователь является хостом листинга
func (s *Service) checkHostAccess(ctx context.Context, listingID int64, userID int64) error {
	listing, err := s.listingClient.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingClient.ErrListingNotFound) {
			s.logger.Warn("checkHostAccess: listing id=%d not found", listingID)
			return ErrListingNotFound
		}
		s.logger.Error("checkHostAccess: failed to get listing id=%d: %v", listingID, err)
		return fmt.Errorf("%w: checkHostAccess - failed to get listing: %v", ErrInternal, err)
	}

	if listing.HostID != userID {
		s.logger.Warn("checkHostAccess: user=%d is not the host of listing=%d", userID, listingID)
		return ErrAccessDenied
	}

	return nil
}

// cancellationPolicy возвращает политику отмены листинга
// Если листинг недоступен (удален или сервис листингов не отвечает),
// применяется платформенная политика по умолчанию
func (s *Service) cancellationPolicy(ctx context.Context, listingID int64) refund.Policy {
	listing, err := s.listingClient.GetListing(ctx, listingID)
	if err != nil {
		s.logger.Warn("cancellationPolicy: falling back to default policy for listing=%d: %v", listingID, err)
		return refund.Default()
	}
	return refund.ForTier(listing.CancellationPolicy)
}

// publishEvent публикует событие жизненного цикла
// Доставка best-effort: ошибка публикации логируется и не откатывает операцию
func (s *Service) publishEvent(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publishEvent: failed to publish %s for booking id=%d: %v",
			event.EventName(), event.BookingID(), err)
	}
}

// cancelPaymentStatus определяет платежный статус после отмены
// Полный возврат - refunded, частичный - partially_refunded, нулевой
// возврат оставляет платежный статус без изменений
func cancelPaymentStatus(booking *domain.Booking, result refund.Result) domain.PaymentStatus {
	switch {
	case result.Amount.IsZero():
		return booking.PaymentStatus
	case result.Amount.Equal(booking.Price.Total):
		return domain.PaymentRefunded
	default:
		return domain.PaymentPartiallyRefunded
	}
}
