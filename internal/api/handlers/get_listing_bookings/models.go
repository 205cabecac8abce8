package get_listing_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/STY-ReservationService/internal/domain"
	"github.com/m04kA/STY-ReservationService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	listingID int64,
	userID int64,
	statusStr string,
	fromStr string,
	toStr string,
	includeInactiveStr string,
) (*models.GetListingBookingsRequest, error) {
	req := &models.GetListingBookingsRequest{
		UserID:          userID,
		ListingID:       listingID,
		IncludeInactive: false, // По умолчанию только активные
	}

	// Парсим status если указан
	if statusStr != "" {
		req.Status = &statusStr
	}

	// Парсим границы периода если указаны
	if fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &from
	}
	if toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &to
	}

	// Парсим includeInactive если указан
	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
