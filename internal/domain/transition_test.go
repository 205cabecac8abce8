package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking(status BookingStatus) *Booking {
	return &Booking{
		ID:     1,
		Status: status,
		Stay: StayRange{
			CheckIn:  date(2026, 6, 10),
			CheckOut: date(2026, 6, 15),
		},
	}
}

func TestEnsureCan_AllStatuses(t *testing.T) {
	now := date(2026, 6, 1)

	tests := []struct {
		status  BookingStatus
		op      Operation
		allowed bool
	}{
		{StatusPending, OpApprove, true},
		{StatusPending, OpDecline, true},
		{StatusPending, OpEdit, true},
		{StatusPending, OpCancel, true},
		{StatusPending, OpComplete, false},

		{StatusApproved, OpApprove, false},
		{StatusApproved, OpDecline, false},
		{StatusApproved, OpEdit, true},
		{StatusApproved, OpCancel, true},

		{StatusDeclined, OpApprove, false},
		{StatusDeclined, OpEdit, false},
		{StatusDeclined, OpCancel, false},

		{StatusCancelled, OpApprove, false},
		{StatusCancelled, OpEdit, false},
		{StatusCancelled, OpCancel, false},

		{StatusCompleted, OpApprove, false},
		{StatusCompleted, OpEdit, false},
		{StatusCompleted, OpCancel, false},
		{StatusCompleted, OpComplete, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.op), func(t *testing.T) {
			err := testBooking(tt.status).EnsureCan(tt.op, now)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestEnsureCan_CompleteRequiresPastCheckOut(t *testing.T) {
	b := testBooking(StatusApproved)

	// До выезда завершать нельзя
	err := b.EnsureCan(OpComplete, date(2026, 6, 12))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// В день выезда еще нельзя
	err = b.EnsureCan(OpComplete, date(2026, 6, 15))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// После выезда можно
	err = b.EnsureCan(OpComplete, date(2026, 6, 15).Add(time.Hour))
	assert.NoError(t, err)
}

func TestInvalidTransitionError_CarriesContext(t *testing.T) {
	err := testBooking(StatusCompleted).EnsureCan(OpCancel, date(2026, 7, 1))
	require.Error(t, err)

	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusCompleted, transitionErr.Current)
	assert.Equal(t, OpCancel, transitionErr.Operation)
	assert.Contains(t, transitionErr.Error(), "completed")
	assert.Contains(t, transitionErr.Error(), "cancel")
}

func TestBookingPredicates(t *testing.T) {
	assert.False(t, testBooking(StatusPending).IsTerminal())
	assert.False(t, testBooking(StatusApproved).IsTerminal())
	assert.True(t, testBooking(StatusDeclined).IsTerminal())
	assert.True(t, testBooking(StatusCancelled).IsTerminal())
	assert.True(t, testBooking(StatusCompleted).IsTerminal())

	// Завершенное проживание продолжает занимать свои даты в истории
	assert.True(t, testBooking(StatusPending).OccupiesRange())
	assert.True(t, testBooking(StatusApproved).OccupiesRange())
	assert.True(t, testBooking(StatusCompleted).OccupiesRange())
	assert.False(t, testBooking(StatusDeclined).OccupiesRange())
	assert.False(t, testBooking(StatusCancelled).OccupiesRange())
}

func TestGuestCounts_Total(t *testing.T) {
	g := GuestCounts{Adults: 2, Children: 1, Infants: 1, Pets: 1}
	// Младенцы не учитываются в occupancy
	assert.Equal(t, 3, g.Total())
}
