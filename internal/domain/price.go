package domain

import "github.com/m04kA/STY-ReservationService/pkg/money"

// PriceBreakdown is an itemized stay price.
// Invariant: Total = NightlyRate*Nights + CleaningFee + ServiceFee + Taxes.
type PriceBreakdown struct {
	NightlyRate money.Money
	Nights      int
	CleaningFee money.Money
	ServiceFee  money.Money
	Taxes       money.Money
	Total       money.Money
}

// Currency returns the currency code shared by all components
func (p PriceBreakdown) Currency() string {
	return p.Total.Currency
}

// Subtotal returns the nightly charge before fees and taxes
func (p PriceBreakdown) Subtotal() money.Money {
	return p.NightlyRate.Multiply(int64(p.Nights))
}
