package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingAlert marks that the upcoming-trip alert already fired for a booking on a day.
type BookingAlert struct {
	BookingID uuid.UUID `db:"booking_id"`
	AlertDay  time.Time `db:"alert_day"`
	AlertedAt time.Time `db:"alerted_at"`
}
