package listingservice

// Listing модель листинга из ListingService
// Движку бронирований нужен только срез данных: владелец, ценовые параметры,
// лимиты по гостям и тариф политики отмены
type Listing struct {
	ID                 int64  `json:"id"`
	HostID             int64  `json:"host_id"`
	NightlyRateCents   int64  `json:"nightly_rate_cents"`
	Currency           string `json:"currency"`
	CleaningFeeCents   int64  `json:"cleaning_fee_cents"`
	ServiceFeeCents    int64  `json:"service_fee_cents"`
	TaxRateBasisPoints int64  `json:"tax_rate_basis_points"`
	MaxAdults          int    `json:"max_adults"`
	MaxChildren        int    `json:"max_children"`
	MaxInfants         int    `json:"max_infants"`
	MaxPets            int    `json:"max_pets"`
	CancellationPolicy string `json:"cancellation_policy"` // flexible | moderate | strict
}

// ErrorResponse модель ошибки от ListingService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
