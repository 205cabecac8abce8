package create_booking

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
	listingSvc "github.com/m04kA/STY-ReservationService/internal/integrations/listingservice"
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
	createErr error
	created   *domain.Booking
	nextID    int64

	byKey map[string]*domain.Booking
	// raceWinner возвращается по ключу только со второго запроса, имитируя
	// конкурента, успевшего вставить между проверкой ключа и вставкой
	raceWinner *domain.Booking
	keyLookups int
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *booking
	created.ID = f.nextID
	created.CreatedAt = testNow
	created.UpdatedAt = testNow
	f.created = &created
	return &created, nil
}

func (f *fakeBookingRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Booking, error) {
	f.keyLookups++
	if b, ok := f.byKey[key]; ok {
		return b, nil
	}
	if f.raceWinner != nil && f.keyLookups > 1 {
		return f.raceWinner, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

type fakeAvailabilityRepo struct {
	reserveErr error
	reserved   []domain.StayRange
}

func (f *fakeAvailabilityRepo) Reserve(_ context.Context, _, _ int64, stay domain.StayRange) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved = append(f.reserved, stay)
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
	published []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
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

func testListing() *domain.Listing {
	return &domain.Listing{
		ID:          listingID,
		HostID:      hostID,
		NightlyRate: money.Must(10000, "USD"),
		Fees: domain.FeeSchedule{
			CleaningFee: money.Must(5000, "USD"),
			ServiceFee:  money.Must(3000, "USD"),
		},
		Limits:             domain.GuestLimits{MaxAdults: 4, MaxChildren: 2, MaxInfants: 2, MaxPets: 1},
		CancellationPolicy: domain.PolicyModerate,
	}
}

func testRequest() *Request {
	return &Request{
		GuestID:      guestID,
		ListingID:    listingID,
		CheckIn:      time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC),
		Guests:       domain.GuestCounts{Adults: 2},
		ContactEmail: "guest@example.com",
		ContactPhone: "+15550100",
	}
}

type testEnv struct {
	uc           *UseCase
	repo         *fakeBookingRepo
	availability *fakeAvailabilityRepo
	client       *fakeListingClient
	publisher    *fakePublisher
}

func newTestEnv() *testEnv {
	repo := &fakeBookingRepo{nextID: 1, byKey: make(map[string]*domain.Booking)}
	availability := &fakeAvailabilityRepo{}
	client := &fakeListingClient{listing: testListing()}
	publisher := &fakePublisher{}

	uc := NewUseCase(repo, availability, client, fakeTxManager{}, publisher, nopLogger{})
	uc.timeProvider = fixedTime{}

	return &testEnv{uc: uc, repo: repo, availability: availability, client: client, publisher: publisher}
}

// Тесты

func TestExecute_Success(t *testing.T) {
	env := newTestEnv()

	got, err := env.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, string(domain.StatusPending), got.Status)
	assert.Equal(t, string(domain.PaymentPending), got.PaymentStatus)
	assert.Equal(t, "2026-06-20", got.CheckIn)
	assert.Equal(t, "2026-06-25", got.CheckOut)
	// 10000*5 + 5000 + 3000 = 58000, налог нулевой
	assert.Equal(t, int64(58000), got.Price.Total.Amount)
	assert.Equal(t, hostID, got.HostID)

	// Способ оплаты не обязателен: создание без него сохраняет NULL
	assert.Nil(t, env.repo.created.PaymentMethodID)
	assert.Nil(t, got.PaymentMethodID)

	require.Len(t, env.availability.reserved, 1)
	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, "booking.created", env.publisher.published[0].EventName())
}

func TestExecute_Validation(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"zero guest id", func(r *Request) { r.GuestID = 0 }, ErrInvalidInput},
		{"zero listing id", func(r *Request) { r.ListingID = 0 }, ErrInvalidInput},
		{"missing email", func(r *Request) { r.ContactEmail = "" }, ErrInvalidInput},
		{"malformed email", func(r *Request) { r.ContactEmail = "not-an-email" }, ErrInvalidInput},
		{"missing phone", func(r *Request) { r.ContactPhone = "" }, ErrInvalidInput},
		{"check-out before check-in", func(r *Request) {
			r.CheckIn, r.CheckOut = r.CheckOut, r.CheckIn
		}, ErrInvalidDateRange},
		{"zero-night stay", func(r *Request) { r.CheckOut = r.CheckIn }, ErrInvalidDateRange},
		{"check-in in the past", func(r *Request) {
			r.CheckIn = testNow.AddDate(0, 0, -1)
		}, ErrCheckInPast},
		{"stay too long", func(r *Request) {
			r.CheckOut = r.CheckIn.AddDate(0, 0, domain.MaxNights+1)
		}, ErrStayTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(req)

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, env.availability.reserved)
	assert.Empty(t, env.publisher.published)
}

func TestExecute_CheckInTodayAllowed(t *testing.T) {
	env := newTestEnv()

	req := testRequest()
	req.CheckIn = domain.DateOnly(testNow)
	req.CheckOut = req.CheckIn.AddDate(0, 0, 3)

	_, err := env.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_ListingNotFound(t *testing.T) {
	env := newTestEnv()
	env.client.listing = nil
	env.client.err = listingSvc.ErrListingNotFound

	_, err := env.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestExecute_OwnListing(t *testing.T) {
	env := newTestEnv()

	req := testRequest()
	req.GuestID = hostID

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOwnListing)
	assert.Empty(t, env.availability.reserved)
}

func TestExecute_GuestLimitViolation(t *testing.T) {
	env := newTestEnv()

	req := testRequest()
	req.Guests = domain.GuestCounts{Adults: 10}

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_SlotConflict(t *testing.T) {
	env := newTestEnv()
	env.availability.reserveErr = &availabilityRepo.ConflictError{ConflictingBookingID: 77}

	_, err := env.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	var slotErr *SlotUnavailableError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, int64(77), slotErr.ConflictingBookingID)

	assert.Empty(t, env.publisher.published)
}

func TestExecute_ConcurrentConflictWithoutID(t *testing.T) {
	env := newTestEnv()
	env.availability.reserveErr = availabilityRepo.ErrRangeConflict

	_, err := env.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_IdempotentReplay(t *testing.T) {
	env := newTestEnv()

	existing := &domain.Booking{
		ID:        42,
		ListingID: listingID,
		GuestID:   guestID,
		HostID:    hostID,
		Stay: domain.StayRange{
			CheckIn:  time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC),
		},
		Status: domain.StatusPending,
	}
	env.repo.byKey["key-1"] = existing

	req := testRequest()
	req.IdempotencyKey = ptr.Ptr("key-1")

	got, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)

	// Повтор не создает записей, не резервирует даты и не публикует событий
	assert.Nil(t, env.repo.created)
	assert.Empty(t, env.availability.reserved)
	assert.Empty(t, env.publisher.published)
}

func TestExecute_IdempotencyRace(t *testing.T) {
	// Конкурент с тем же ключом вставил бронирование между проверкой ключа
	// и нашей вставкой: уникальный индекс сработал, возвращаем бронирование
	// победителя без повторных побочных эффектов
	env := newTestEnv()
	env.repo.createErr = bookingRepo.ErrDuplicateIdempotencyKey
	env.repo.raceWinner = &domain.Booking{ID: 7, GuestID: guestID, Status: domain.StatusPending}

	req := testRequest()
	req.IdempotencyKey = ptr.Ptr("key-race")

	got, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, 2, env.repo.keyLookups)
	assert.Empty(t, env.publisher.published)
}
