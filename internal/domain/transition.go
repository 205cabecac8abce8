package domain

import (
	"errors"
	"fmt"
	"time"
)

// Operation is a lifecycle operation name used in transition errors
type Operation string

const (
	OpApprove  Operation = "approve"
	OpDecline  Operation = "decline"
	OpEdit     Operation = "edit"
	OpCancel   Operation = "cancel"
	OpComplete Operation = "complete"
)

// ErrInvalidTransition is returned when an operation is not permitted in the
// booking's current status. Never swallowed: the caller always learns which
// state blocked which operation.
var ErrInvalidTransition = errors.New("invalid booking state transition")

// InvalidTransitionError carries the offending state and operation
type InvalidTransitionError struct {
	Current   BookingStatus
	Operation Operation
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking state transition: cannot %s booking in status %q", e.Operation, e.Current)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// EnsureCan checks that the operation is permitted in the booking's current
// status. This is the single authority on the state machine; callers never
// re-derive permission logic from the status string.
func (b *Booking) EnsureCan(op Operation, now time.Time) error {
	allowed := false

	switch op {
	case OpApprove:
		allowed = b.CanBeApproved()
	case OpDecline:
		allowed = b.CanBeDeclined()
	case OpEdit:
		allowed = b.CanBeEdited()
	case OpCancel:
		allowed = b.CanBeCancelled()
	case OpComplete:
		allowed = b.CanBeCompleted(now)
	}

	if !allowed {
		return &InvalidTransitionError{Current: b.Status, Operation: op}
	}
	return nil
}
