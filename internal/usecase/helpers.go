package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/utils"

	"github.com/google/uuid"
)

// Clock is swapped in tests.
type Clock func() time.Time

func validateRequest(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.ValidationError{Msg: utils.FormatValidationErrors(errs), Fields: errs}
	}
	return nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation(field, "must be a valid UUID")
	}
	return id, nil
}

func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(entity.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// storeErr marks a repository failure as retryable, keeping the wrapped cause.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Unavailable(op, err)
}

// withTimeout bounds a single outbound call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// bookingVars are the placeholders available to booking email templates.
func bookingVars(b *entity.Booking) map[string]string {
	serviceType := ""
	if b.ServiceType != nil {
		serviceType = strings.ReplaceAll(string(*b.ServiceType), "_", " ")
	}
	return map[string]string{
		"customer_name":    b.CustomerName,
		"customer_email":   b.CustomerEmail,
		"pickup_location":  b.PickupLocation,
		"dropoff_location": b.DropoffLocation,
		"pickup_date":      b.PickupDate.Format(entity.DateLayout),
		"pickup_time":      b.PickupTime,
		"amount":           b.Amount.Display(),
		"vehicle_type":     b.VehicleType,
		"service_type":     serviceType,
		"booking_id":       b.ID.String(),
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
