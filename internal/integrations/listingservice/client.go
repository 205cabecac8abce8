package listingservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/pkg/money"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с ListingService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ListingService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetListing получает листинг по ID
func (c *Client) GetListing(ctx context.Context, listingID int64) (*domain.Listing, error) {
	url := fmt.Sprintf("%s/internal/listings/%d", c.baseURL, listingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid listing ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrListingNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return toDomain(&listing), nil
}

// toDomain конвертирует модель ListingService в доменный снапшот
func toDomain(l *Listing) *domain.Listing {
	return &domain.Listing{
		ID:          l.ID,
		HostID:      l.HostID,
		NightlyRate: money.Money{Amount: l.NightlyRateCents, Currency: l.Currency},
		Fees: domain.FeeSchedule{
			CleaningFee:        money.Money{Amount: l.CleaningFeeCents, Currency: l.Currency},
			ServiceFee:         money.Money{Amount: l.ServiceFeeCents, Currency: l.Currency},
			TaxRateBasisPoints: l.TaxRateBasisPoints,
		},
		Limits: domain.GuestLimits{
			MaxAdults:   l.MaxAdults,
			MaxChildren: l.MaxChildren,
			MaxInfants:  l.MaxInfants,
			MaxPets:     l.MaxPets,
		},
		CancellationPolicy: domain.PolicyTier(l.CancellationPolicy),
	}
}
