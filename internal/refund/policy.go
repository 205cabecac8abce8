package refund

import (
	"fmt"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/pkg/money"
)

// Tier maps a minimum number of days before check-in to a refund percentage.
// A cancellation fired daysUntilCheckIn days before check-in matches the
// first tier whose MinDaysBefore it still satisfies.
type Tier struct {
	MinDaysBefore int
	Percent       int
}

// Policy is a refund step function: a descending tier table plus a floor
// percentage for cancellations inside the last tier (or past check-in).
// The shape is invariant across listings: percentages never increase as
// check-in approaches; only the boundaries and values differ per tier name.
type Policy struct {
	Name         domain.PolicyTier
	Tiers        []Tier
	FloorPercent int
}

// Result is the outcome of a refund computation.
// Explanation names the tier that actually fired and is persisted for audit.
type Result struct {
	Amount      money.Money
	Percent     int
	Explanation string
}

// Default returns the platform default policy: 100% refund two weeks out,
// 50% one week out, 10% at least a day out, nothing after that
func Default() Policy {
	return Policy{
		Name: domain.PolicyModerate,
		Tiers: []Tier{
			{MinDaysBefore: 14, Percent: 100},
			{MinDaysBefore: 7, Percent: 50},
			{MinDaysBefore: 1, Percent: 10},
		},
		FloorPercent: 0,
	}
}

// ForTier returns the policy for a listing's named cancellation tier.
// The listing tier overrides the default table's boundaries and percentages;
// an unknown or empty tier falls back to the default.
func ForTier(tier domain.PolicyTier) Policy {
	switch tier {
	case domain.PolicyFlexible:
		return Policy{
			Name: domain.PolicyFlexible,
			Tiers: []Tier{
				{MinDaysBefore: 7, Percent: 100},
				{MinDaysBefore: 1, Percent: 50},
			},
			FloorPercent: 0,
		}
	case domain.PolicyStrict:
		return Policy{
			Name: domain.PolicyStrict,
			Tiers: []Tier{
				{MinDaysBefore: 30, Percent: 50},
				{MinDaysBefore: 14, Percent: 25},
			},
			FloorPercent: 0,
		}
	case domain.PolicyModerate:
		return Default()
	default:
		return Default()
	}
}

// Validate checks the policy shape: boundaries strictly descending,
// percentages non-increasing, everything within [0, 100]
func (p Policy) Validate() error {
	prevDays := int(^uint(0) >> 1)
	prevPercent := 101
	for _, t := range p.Tiers {
		if t.MinDaysBefore >= prevDays {
			return fmt.Errorf("refund: tier boundaries must strictly descend, got %d after %d", t.MinDaysBefore, prevDays)
		}
		if t.Percent > prevPercent {
			return fmt.Errorf("refund: tier percentages must not increase, got %d%% after %d%%", t.Percent, prevPercent)
		}
		if t.Percent < 0 || t.Percent > 100 {
			return fmt.Errorf("refund: tier percent out of range: %d", t.Percent)
		}
		prevDays = t.MinDaysBefore
		prevPercent = t.Percent
	}
	if p.FloorPercent < 0 || p.FloorPercent > prevPercent {
		return fmt.Errorf("refund: floor percent out of range: %d", p.FloorPercent)
	}
	return nil
}

// ComputeRefund computes the refund for cancelling a booking at the given
// moment under the given policy. Pure: the caller persists the result.
//
// daysUntilCheckIn = ceil((checkIn - now) / 24h); the first tier the value
// still satisfies wins. A cancellation past check-in always lands on the
// policy floor.
func ComputeRefund(booking *domain.Booking, now time.Time, policy Policy) Result {
	days := DaysUntilCheckIn(booking.Stay.CheckIn, now)

	total := booking.Price.Total

	for _, tier := range policy.Tiers {
		if days >= tier.MinDaysBefore {
			return Result{
				Amount:  total.PercentOf(tier.Percent),
				Percent: tier.Percent,
				Explanation: fmt.Sprintf(
					"cancelled %d day(s) before check-in: %d%% refund (%s policy, %d+ days tier)",
					days, tier.Percent, policy.Name, tier.MinDaysBefore,
				),
			}
		}
	}

	explanation := fmt.Sprintf(
		"cancelled %d day(s) before check-in: %d%% refund (%s policy, final tier)",
		days, policy.FloorPercent, policy.Name,
	)
	if days <= 0 {
		explanation = fmt.Sprintf(
			"cancelled on or after check-in: %d%% refund (%s policy, final tier)",
			policy.FloorPercent, policy.Name,
		)
	}

	return Result{
		Amount:      total.PercentOf(policy.FloorPercent),
		Percent:     policy.FloorPercent,
		Explanation: explanation,
	}
}

// DaysUntilCheckIn returns ceil((checkIn - now) / 24h).
// Negative once check-in has passed by more than a day, zero on the day itself.
func DaysUntilCheckIn(checkIn, now time.Time) int {
	diff := checkIn.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
