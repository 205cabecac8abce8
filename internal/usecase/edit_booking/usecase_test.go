package edit_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/events"
	availabilityRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/booking"
	"github.com/m04kA/STY-ReservationService/pkg/money"
	"github.com/m04kA/STY-ReservationService/pkg/ptr"
)

const (
	guestID   = int64(100)
	hostID    = int64(200)
	listingID = int64(10)
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// Фейки зависимостей

type fakeBookingRepo struct {
	booking *domain.Booking

	updatedStay    *domain.StayRange
	updatedStatus  domain.BookingStatus
	updatedGuests  domain.GuestCounts
	updatedPrice   domain.PriceBreakdown
	updatedSpecial *string
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) UpdateStay(_ context.Context, _ int64, stay domain.StayRange, guests domain.GuestCounts, price domain.PriceBreakdown, status domain.BookingStatus, specialRequests *string) error {
	f.updatedStay = &stay
	f.updatedGuests = guests
	f.updatedPrice = price
	f.updatedStatus = status
	f.updatedSpecial = specialRequests
	return nil
}

type fakeAvailabilityRepo struct {
	updateErr error
	moved     []domain.StayRange
}

func (f *fakeAvailabilityRepo) UpdateRange(_ context.Context, _, _ int64, stay domain.StayRange) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.moved = append(f.moved, stay)
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

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	publishErr error
	published  []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

type fixedTime struct{}

func (fixedTime) Now() time.Time { return testNow }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Фикстуры

func testBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:        1,
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
			Total:       money.Must(58000, "USD"),
		},
		Status:        status,
		PaymentStatus: domain.PaymentPending,
	}
}

func testListing() *domain.Listing {
	return &domain.Listing{
		ID:          listingID,
		HostID:      hostID,
		NightlyRate: money.Must(10000, "USD"),
		Fees: domain.FeeSchedule{
			CleaningFee: money.Must(5000, "USD"),
			ServiceFee:  money.Must(3000, "USD"),
		},
		Limits: domain.GuestLimits{MaxAdults: 4, MaxChildren: 2, MaxInfants: 2, MaxPets: 1},
	}
}

func testRequest() *Request {
	return &Request{
		BookingID: 1,
		UserID:    guestID,
		CheckIn:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Guests:    domain.GuestCounts{Adults: 3},
	}
}

type testEnv struct {
	uc           *UseCase
	repo         *fakeBookingRepo
	availability *fakeAvailabilityRepo
	publisher    *fakePublisher
}

func newTestEnv(booking *domain.Booking) *testEnv {
	repo := &fakeBookingRepo{booking: booking}
	availability := &fakeAvailabilityRepo{}
	client := &fakeListingClient{listing: testListing()}
	publisher := &fakePublisher{}

	uc := NewUseCase(repo, availability, client, fakeTxManager{}, publisher, nopLogger{})
	uc.timeProvider = fixedTime{}

	return &testEnv{uc: uc, repo: repo, availability: availability, publisher: publisher}
}

// Тесты

func TestExecute_PendingStaysPending(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	got, err := env.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), got.Status)
	assert.Equal(t, "2026-07-01", got.CheckIn)
	assert.Equal(t, "2026-07-04", got.CheckOut)
	// 10000*3 + 5000 + 3000 = 38000
	assert.Equal(t, int64(38000), got.Price.Total.Amount)
	assert.Equal(t, 3, got.Guests.Adults)

	require.Len(t, env.availability.moved, 1)
	assert.Equal(t, domain.StatusPending, env.repo.updatedStatus)

	require.Len(t, env.publisher.published, 1)
	edited, ok := env.publisher.published[0].(events.BookingEdited)
	require.True(t, ok)
	assert.False(t, edited.RequiresApproval)
}

func TestExecute_ApprovedDowngradesToPending(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusApproved))

	got, err := env.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	// Правка подтвержденного бронирования требует нового подтверждения хоста
	assert.Equal(t, string(domain.StatusPending), got.Status)
	assert.Equal(t, domain.StatusPending, env.repo.updatedStatus)

	require.Len(t, env.publisher.published, 1)
	edited := env.publisher.published[0].(events.BookingEdited)
	assert.True(t, edited.RequiresApproval)
}

func TestExecute_PublishFailureDoesNotFailEdit(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))
	env.publisher.publishErr = errors.New("broker is down")

	got, err := env.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	// Запись уже зафиксирована, ошибка публикации операцию не откатывает
	assert.Equal(t, string(domain.StatusPending), got.Status)
	require.NotNil(t, env.repo.updatedStay)
	assert.Empty(t, env.publisher.published)
}

func TestExecute_TerminalStatusesRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusDeclined, domain.StatusCancelled, domain.StatusCompleted,
	} {
		env := newTestEnv(testBooking(status))

		_, err := env.uc.Execute(context.Background(), testRequest())
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
		assert.Empty(t, env.availability.moved)
		assert.Empty(t, env.publisher.published)
	}
}

func TestExecute_HostCanEdit(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusApproved))

	req := testRequest()
	req.UserID = hostID

	got, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Правка хоста тоже возвращает бронирование в pending
	assert.Equal(t, string(domain.StatusPending), got.Status)
	require.Len(t, env.availability.moved, 1)
}

func TestExecute_StrangerDenied(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	req := testRequest()
	req.UserID = int64(999)

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, env.availability.moved)
}

func TestExecute_NotFound(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	req := testRequest()
	req.BookingID = 42

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_SlotConflict(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))
	env.availability.updateErr = &availabilityRepo.ConflictError{ConflictingBookingID: 55}

	_, err := env.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	var slotErr *SlotUnavailableError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, int64(55), slotErr.ConflictingBookingID)
}

func TestExecute_StayValidation(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	req := testRequest()
	req.CheckIn, req.CheckOut = req.CheckOut, req.CheckIn
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	req = testRequest()
	req.CheckIn = testNow.AddDate(0, 0, -2)
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCheckInPast)
}

func TestExecute_SpecialRequestsPersisted(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	req := testRequest()
	req.SpecialRequests = ptr.Ptr("late check-in, please")

	got, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, env.repo.updatedSpecial)
	assert.Equal(t, "late check-in, please", *env.repo.updatedSpecial)
	require.NotNil(t, got.SpecialRequests)
	assert.Equal(t, "late check-in, please", *got.SpecialRequests)
}

func TestExecute_GuestLimitViolation(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending))

	req := testRequest()
	req.Guests = domain.GuestCounts{Adults: 10}

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, env.availability.moved)
}
