package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
	bookingRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/booking"
	"github.com/m04kA/STY-ReservationService/internal/refund"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
	"github.com/m04kA/STY-ReservationService/pkg/money"
	"github.com/m04kA/STY-ReservationService/pkg/ptr"
)

const (
	guestID    = int64(100)
	hostID     = int64(200)
	strangerID = int64(999)
	listingID  = int64(10)
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// Фейки зависимостей

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
	expired  []*domain.Booking

	updateStatusErr map[int64]error
	statusUpdates   []domain.BookingStatus
	cancelCalls     int
	lastCancel      struct {
		cancelledBy   domain.CancelledBy
		reason        string
		refundAmount  int64
		explanation   string
		paymentStatus domain.PaymentStatus
	}
	reviewedIDs []int64
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByGuestID(_ context.Context, guestID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.GuestID != guestID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) GetByListingWithFilter(_ context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.ListingID == filter.ListingID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListExpiredApproved(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.expired, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	if err := f.updateStatusErr[id]; err != nil {
		return err
	}
	f.statusUpdates = append(f.statusUpdates, status)
	if b, ok := f.bookings[id]; ok {
		b.Status = status
	}
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, cancelledBy domain.CancelledBy, reason string, refundAmount int64, refundExplanation string, paymentStatus domain.PaymentStatus) error {
	f.cancelCalls++
	f.lastCancel.cancelledBy = cancelledBy
	f.lastCancel.reason = reason
	f.lastCancel.refundAmount = refundAmount
	f.lastCancel.explanation = refundExplanation
	f.lastCancel.paymentStatus = paymentStatus
	return nil
}

func (f *fakeBookingRepo) MarkReviewed(_ context.Context, id int64) error {
	f.reviewedIDs = append(f.reviewedIDs, id)
	return nil
}

type fakeAvailabilityRepo struct {
	released []int64
}

func (f *fakeAvailabilityRepo) Release(_ context.Context, bookingID int64) error {
	f.released = append(f.released, bookingID)
	return nil
}

type fakeListingClient struct {
	listing *domain.Listing
	err     error
}

func (f *fakeListingClient) GetListing(_ context.Context, _ int64) (*domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Фикстуры

func testBooking(id int64, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		ListingID: listingID,
		GuestID:   guestID,
		HostID:    hostID,
		Stay: domain.StayRange{
			CheckIn:  time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC),
		},
		Guests: domain.GuestCounts{Adults: 2},
		Price: domain.PriceBreakdown{
			NightlyRate: money.Must(10000, "USD"),
			Nights:      5,
			Total:       money.Must(100000, "USD"),
		},
		Status:        status,
		PaymentStatus: domain.PaymentPaid,
		ContactEmail:  "guest@example.com",
		ContactPhone:  "+15550100",
	}
}

func testListing(policy domain.PolicyTier) *domain.Listing {
	return &domain.Listing{
		ID:                 listingID,
		HostID:             hostID,
		NightlyRate:        money.Must(10000, "USD"),
		CancellationPolicy: policy,
	}
}

type testEnv struct {
	svc          *Service
	repo         *fakeBookingRepo
	availability *fakeAvailabilityRepo
	client       *fakeListingClient
	publisher    *fakePublisher
}

func newTestEnv(bookings ...*domain.Booking) *testEnv {
	repo := &fakeBookingRepo{
		bookings:        make(map[int64]*domain.Booking),
		updateStatusErr: make(map[int64]error),
	}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}

	availability := &fakeAvailabilityRepo{}
	client := &fakeListingClient{listing: testListing(domain.PolicyModerate)}
	publisher := &fakePublisher{}

	svc := NewService(repo, availability, client, fakeTxManager{}, publisher, nopLogger{})
	svc.now = func() time.Time { return testNow }

	return &testEnv{svc: svc, repo: repo, availability: availability, client: client, publisher: publisher}
}

// Тесты

func TestGetByID_Access(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	got, err := env.svc.GetByID(context.Background(), 1, guestID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = env.svc.GetByID(context.Background(), 1, hostID)
	assert.NoError(t, err)

	_, err = env.svc.GetByID(context.Background(), 1, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.GetByID(context.Background(), 42, guestID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestApprove(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	got, err := env.svc.Approve(context.Background(), 1, hostID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), got.Status)

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, "booking.approved", env.publisher.published[0].EventName())
	assert.Equal(t, int64(1), env.publisher.published[0].BookingID())
}

func TestApprove_OnlyHost(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	_, err := env.svc.Approve(context.Background(), 1, guestID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Approve(context.Background(), 1, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Empty(t, env.publisher.published)
	assert.Empty(t, env.repo.statusUpdates)
}

func TestApprove_OnlyPending(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusApproved, domain.StatusDeclined, domain.StatusCancelled, domain.StatusCompleted,
	} {
		env := newTestEnv(testBooking(1, status))

		_, err := env.svc.Approve(context.Background(), 1, hostID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
		assert.Empty(t, env.publisher.published)
	}
}

func TestDecline_ReleasesReservation(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	got, err := env.svc.Decline(context.Background(), 1, hostID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeclined), got.Status)
	assert.Equal(t, []int64{1}, env.availability.released)

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, "booking.declined", env.publisher.published[0].EventName())
}

func TestCancel_GuestFullRefund(t *testing.T) {
	// До заезда 19 дней: moderate политика дает полный возврат
	env := newTestEnv(testBooking(1, domain.StatusApproved))

	got, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             guestID,
		CancellationReason: "change of plans",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, string(domain.PaymentRefunded), got.PaymentStatus)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, "guest", got.Cancellation.CancelledBy)
	require.NotNil(t, got.Cancellation.RefundAmount)
	assert.Equal(t, int64(100000), got.Cancellation.RefundAmount.Amount)
	require.NotNil(t, got.Cancellation.RefundExplanation)
	assert.Contains(t, *got.Cancellation.RefundExplanation, "100%")

	assert.Equal(t, 1, env.repo.cancelCalls)
	assert.Equal(t, domain.CancelledByGuest, env.repo.lastCancel.cancelledBy)
	assert.Equal(t, domain.PaymentRefunded, env.repo.lastCancel.paymentStatus)
	assert.Equal(t, []int64{1}, env.availability.released)

	require.Len(t, env.publisher.published, 1)
	cancelled, ok := env.publisher.published[0].(events.BookingCancelled)
	require.True(t, ok)
	assert.Equal(t, int64(100000), cancelled.Refund.Amount)
	assert.Equal(t, 100, cancelled.RefundPercent)
}

func TestCancel_HostPartialRefund(t *testing.T) {
	// До заезда 10 дней: moderate политика дает 50%
	booking := testBooking(1, domain.StatusApproved)
	booking.Stay = domain.StayRange{
		CheckIn:  testNow.AddDate(0, 0, 10),
		CheckOut: testNow.AddDate(0, 0, 15),
	}
	env := newTestEnv(booking)

	got, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             hostID,
		CancellationReason: "maintenance",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PaymentPartiallyRefunded), got.PaymentStatus)
	assert.Equal(t, "host", got.Cancellation.CancelledBy)
	assert.Equal(t, int64(50000), got.Cancellation.RefundAmount.Amount)
	assert.Equal(t, domain.CancelledByHost, env.repo.lastCancel.cancelledBy)
}

func TestCancel_CompletedFails(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusCompleted))

	_, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: guestID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Zero(t, env.repo.cancelCalls)
	assert.Empty(t, env.availability.released)
	assert.Empty(t, env.publisher.published)
}

func TestCancel_StrangerDenied(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusApproved))

	_, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: strangerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, env.repo.cancelCalls)
}

func TestCancel_ListingUnavailableFallsBackToDefaultPolicy(t *testing.T) {
	// Flexible политика дала бы 100% за 10 дней; при недоступном листинге
	// применяется платформенная moderate с 50%
	booking := testBooking(1, domain.StatusApproved)
	booking.Stay = domain.StayRange{
		CheckIn:  testNow.AddDate(0, 0, 10),
		CheckOut: testNow.AddDate(0, 0, 15),
	}
	env := newTestEnv(booking)
	env.client.err = errors.New("listing service is down")

	got, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: guestID})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.Cancellation.RefundAmount.Amount)
}

func TestCancel_FlexiblePolicyFromListing(t *testing.T) {
	booking := testBooking(1, domain.StatusApproved)
	booking.Stay = domain.StayRange{
		CheckIn:  testNow.AddDate(0, 0, 10),
		CheckOut: testNow.AddDate(0, 0, 15),
	}
	env := newTestEnv(booking)
	env.client.listing = testListing(domain.PolicyFlexible)

	got, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: guestID})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got.Cancellation.RefundAmount.Amount)
}

func TestComplete(t *testing.T) {
	booking := testBooking(1, domain.StatusApproved)
	booking.Stay = domain.StayRange{
		CheckIn:  testNow.AddDate(0, 0, -10),
		CheckOut: testNow.AddDate(0, 0, -5),
	}
	env := newTestEnv(booking)

	require.NoError(t, env.svc.Complete(context.Background(), 1))
	assert.Equal(t, []domain.BookingStatus{domain.StatusCompleted}, env.repo.statusUpdates)

	// Резервирование не освобождается: завершенное проживание остается в истории дат
	assert.Empty(t, env.availability.released)

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, "booking.completed", env.publisher.published[0].EventName())
}

func TestComplete_BeforeCheckOutFails(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusApproved))

	err := env.svc.Complete(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCompleteExpired_ContinuesOnFailure(t *testing.T) {
	past := domain.StayRange{
		CheckIn:  testNow.AddDate(0, 0, -10),
		CheckOut: testNow.AddDate(0, 0, -5),
	}

	var bookings []*domain.Booking
	for id := int64(1); id <= 3; id++ {
		b := testBooking(id, domain.StatusApproved)
		b.Stay = past
		bookings = append(bookings, b)
	}

	env := newTestEnv(bookings...)
	env.repo.expired = bookings
	env.repo.updateStatusErr[2] = errors.New("deadlock")

	completed, err := env.svc.CompleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, completed)
	assert.Len(t, env.publisher.published, 2)
}

func TestMarkReviewed(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusCompleted))

	require.NoError(t, env.svc.MarkReviewed(context.Background(), 1, guestID))
	assert.Equal(t, []int64{1}, env.repo.reviewedIDs)
}

func TestMarkReviewed_GuestOnly(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusCompleted))

	err := env.svc.MarkReviewed(context.Background(), 1, hostID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, env.repo.reviewedIDs)
}

func TestMarkReviewed_RequiresCompleted(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusApproved))

	err := env.svc.MarkReviewed(context.Background(), 1, guestID)
	assert.ErrorIs(t, err, ErrNotCompleted)
	assert.Empty(t, env.repo.reviewedIDs)
}

func TestGetGuestBookings_OwnHistoryOnly(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	_, err := env.svc.GetGuestBookings(context.Background(), &models.GetGuestBookingsRequest{
		UserID:  strangerID,
		GuestID: guestID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := env.svc.GetGuestBookings(context.Background(), &models.GetGuestBookingsRequest{
		UserID:  guestID,
		GuestID: guestID,
	})
	require.NoError(t, err)
	assert.Len(t, got.Bookings, 1)
}

func TestGetGuestBookings_InvalidStatus(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	_, err := env.svc.GetGuestBookings(context.Background(), &models.GetGuestBookingsRequest{
		UserID:  guestID,
		GuestID: guestID,
		Status:  ptr.Ptr("confirmed"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetListingBookings_HostOnly(t *testing.T) {
	env := newTestEnv(testBooking(1, domain.StatusPending))

	_, err := env.svc.GetListingBookings(context.Background(), &models.GetListingBookingsRequest{
		UserID:    guestID,
		ListingID: listingID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := env.svc.GetListingBookings(context.Background(), &models.GetListingBookingsRequest{
		UserID:    hostID,
		ListingID: listingID,
		Status:    ptr.Ptr(string(domain.StatusPending)),
	})
	require.NoError(t, err)
	assert.Len(t, got.Bookings, 1)
}

func TestCancelPaymentStatus(t *testing.T) {
	booking := testBooking(1, domain.StatusApproved)

	full := refund.Result{Amount: money.Must(100000, "USD"), Percent: 100}
	assert.Equal(t, domain.PaymentRefunded, cancelPaymentStatus(booking, full))

	partial := refund.Result{Amount: money.Must(50000, "USD"), Percent: 50}
	assert.Equal(t, domain.PaymentPartiallyRefunded, cancelPaymentStatus(booking, partial))

	// Нулевой возврат не трогает платежный статус
	zero := refund.Result{Amount: money.Zero("USD"), Percent: 0}
	assert.Equal(t, domain.PaymentPaid, cancelPaymentStatus(booking, zero))
}
