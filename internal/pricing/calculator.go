package pricing

import (
	"fmt"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/pkg/money"
)

// Quote computes an itemized price breakdown for a stay.
// Pure and deterministic: no I/O, no clock, identical inputs always produce
// an identical breakdown.
//
// Total = NightlyRate*Nights + CleaningFee + ServiceFee + Taxes, where taxes
// are taken from the subtotal (nightly charge plus flat fees) at the
// listing's tax rate. Guest counts do not change the nightly rate; they are
// validated against the listing limits and violations are reported, never
// silently clamped.
func Quote(nightlyRate money.Money, nights int, fees domain.FeeSchedule, guests domain.GuestCounts, limits domain.GuestLimits) (domain.PriceBreakdown, error) {
	if nights < domain.MinNights {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: got %d", ErrInvalidNights, nights)
	}

	if err := validateGuests(guests, limits); err != nil {
		return domain.PriceBreakdown{}, err
	}

	if nightlyRate.IsNegative() || fees.CleaningFee.IsNegative() || fees.ServiceFee.IsNegative() {
		return domain.PriceBreakdown{}, ErrNegativeRate
	}

	if nightlyRate.Currency != fees.CleaningFee.Currency || nightlyRate.Currency != fees.ServiceFee.Currency {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: rate=%s cleaning=%s service=%s",
			ErrCurrencyMismatch, nightlyRate.Currency, fees.CleaningFee.Currency, fees.ServiceFee.Currency)
	}

	nightlyCharge := nightlyRate.Multiply(int64(nights))

	subtotal, err := nightlyCharge.Add(fees.CleaningFee)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	subtotal, err = subtotal.Add(fees.ServiceFee)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	taxes := subtotal.BasisPointsOf(fees.TaxRateBasisPoints)

	total, err := subtotal.Add(taxes)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	return domain.PriceBreakdown{
		NightlyRate: nightlyRate,
		Nights:      nights,
		CleaningFee: fees.CleaningFee,
		ServiceFee:  fees.ServiceFee,
		Taxes:       taxes,
		Total:       total,
	}, nil
}

// validateGuests checks the guest composition against listing limits
func validateGuests(guests domain.GuestCounts, limits domain.GuestLimits) error {
	if guests.Adults < 0 || guests.Children < 0 || guests.Infants < 0 || guests.Pets < 0 {
		return ErrNegativeGuestCount
	}
	if guests.Adults < domain.MinAdults {
		return ErrNoAdults
	}

	// Zero MaxAdults means the listing supplied no adult cap; for children,
	// infants and pets a zero cap forbids the class (see GuestLimits)
	if limits.MaxAdults > 0 && guests.Adults > limits.MaxAdults {
		return fmt.Errorf("%w: adults %d > max %d", ErrGuestLimitExceeded, guests.Adults, limits.MaxAdults)
	}
	if guests.Children > limits.MaxChildren {
		return fmt.Errorf("%w: children %d > max %d", ErrGuestLimitExceeded, guests.Children, limits.MaxChildren)
	}
	if guests.Infants > limits.MaxInfants {
		return fmt.Errorf("%w: infants %d > max %d", ErrGuestLimitExceeded, guests.Infants, limits.MaxInfants)
	}
	if guests.Pets > limits.MaxPets {
		return fmt.Errorf("%w: pets %d > max %d", ErrGuestLimitExceeded, guests.Pets, limits.MaxPets)
	}

	return nil
}
