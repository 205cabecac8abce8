package domain

import "github.com/m04kA/STY-ReservationService/pkg/money"

// FeeSchedule describes the listing's flat fees and tax policy.
// Cleaning and service fees are flat amounts per stay; taxes are computed
// from the subtotal at TaxRateBasisPoints / 10000.
type FeeSchedule struct {
	CleaningFee        money.Money
	ServiceFee         money.Money
	TaxRateBasisPoints int64
}

// GuestLimits describes listing occupancy constraints.
// MaxChildren, MaxInfants and MaxPets are hard caps: zero forbids that guest
// class entirely. MaxAdults is different because a stay always needs at least
// one adult: a zero MaxAdults means the listing supplied no adult cap and any
// adult count is accepted.
type GuestLimits struct {
	MaxAdults   int
	MaxChildren int
	MaxInfants  int
	MaxPets     int
}

// PolicyTier is a named cancellation policy tier owned by the listing
type PolicyTier string

const (
	PolicyFlexible PolicyTier = "flexible"
	PolicyModerate PolicyTier = "moderate"
	PolicyStrict   PolicyTier = "strict"
)

// Listing is a read-only snapshot of listing data the engine needs:
// pricing inputs, occupancy limits and the cancellation policy tier.
// The listing itself is owned by an external service.
type Listing struct {
	ID                 int64
	HostID             int64
	NightlyRate        money.Money
	Fees               FeeSchedule
	Limits             GuestLimits
	CancellationPolicy PolicyTier
}
