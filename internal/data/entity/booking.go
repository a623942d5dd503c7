package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusQuoteRequest BookingStatus = "Quote Request"
	BookingStatusPending      BookingStatus = "Pending"
	BookingStatusQuoteSent    BookingStatus = "Quote Sent"
	BookingStatusConfirmed    BookingStatus = "Confirmed"
	BookingStatusInProgress   BookingStatus = "In Progress"
	BookingStatusCompleted    BookingStatus = "Completed"
	BookingStatusCancelled    BookingStatus = "Cancelled"
)

// Stage groups statuses that behave identically in the lifecycle.
type Stage int

const (
	StageUnknown Stage = iota
	StageUncommitted
	StageQuoteSent
	StageConfirmed
	StageInProgress
	StageCompleted
	StageCancelled
)

var stageNames = map[Stage]string{
	StageUncommitted: "uncommitted",
	StageQuoteSent:   "quote_sent",
	StageConfirmed:   "confirmed",
	StageInProgress:  "in_progress",
	StageCompleted:   "completed",
	StageCancelled:   "cancelled",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Quote Request and Pending are two labels for the same uncommitted stage.
func (s BookingStatus) Stage() Stage {
	switch s {
	case BookingStatusQuoteRequest, BookingStatusPending:
		return StageUncommitted
	case BookingStatusQuoteSent:
		return StageQuoteSent
	case BookingStatusConfirmed:
		return StageConfirmed
	case BookingStatusInProgress:
		return StageInProgress
	case BookingStatusCompleted:
		return StageCompleted
	case BookingStatusCancelled:
		return StageCancelled
	default:
		return StageUnknown
	}
}

func (s BookingStatus) IsValid() bool {
	return s.Stage() != StageUnknown
}

func (s BookingStatus) IsTerminal() bool {
	st := s.Stage()
	return st == StageCompleted || st == StageCancelled
}

var transitions = map[Stage][]Stage{
	StageUncommitted: {StageQuoteSent, StageConfirmed, StageCancelled},
	StageQuoteSent:   {StageConfirmed, StageCancelled},
	StageConfirmed:   {StageInProgress, StageCompleted, StageCancelled},
	StageInProgress:  {StageCompleted, StageCancelled},
}

// CanTransitionTo reports whether moving from s to target is a legal lifecycle step.
// Same-stage moves are never legal, including Pending to Quote Request.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	from, to := s.Stage(), target.Stage()
	if from == StageUnknown || to == StageUnknown || from == to {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses reachable from s. Uncommitted targets are never listed.
func (s BookingStatus) AllowedTargets() []BookingStatus {
	var out []BookingStatus
	for _, target := range AllBookingStatuses() {
		if s.CanTransitionTo(target) {
			out = append(out, target)
		}
	}
	return out
}

func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusQuoteRequest,
		BookingStatusPending,
		BookingStatusQuoteSent,
		BookingStatusConfirmed,
		BookingStatusInProgress,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

// ParseBookingStatus accepts the wire label, case-insensitively.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range AllBookingStatuses() {
		if strings.EqualFold(string(s), trimmed) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

type ServiceType string

const (
	ServiceAirportTransfer ServiceType = "airport_transfer"
	ServiceLongDistance    ServiceType = "long_distance"
	ServiceHourly          ServiceType = "hourly"
	ServiceSpecialEvent    ServiceType = "special_event"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceAirportTransfer, ServiceLongDistance, ServiceHourly, ServiceSpecialEvent:
		return true
	}
	return false
}

type Booking struct {
	Base
	CustomerName    string        `db:"customer_name"`
	CustomerEmail   string        `db:"customer_email"`
	CustomerPhone   string        `db:"customer_phone"`
	PickupLocation  string        `db:"pickup_location"`
	DropoffLocation string        `db:"dropoff_location"`
	PickupDate      time.Time     `db:"pickup_date"`
	PickupTime      string        `db:"pickup_time"`
	VehicleType     string        `db:"vehicle_type"`
	ServiceType     *ServiceType  `db:"service_type"`
	Amount          Amount        `db:"amount"`
	Status          BookingStatus `db:"status"`
	DriverID        *uuid.UUID    `db:"driver_id"`
	Notes           string        `db:"notes"`
}

// PickupAt combines the pickup date and "HH:MM[:SS]" time in loc.
func (b *Booking) PickupAt(loc *time.Location) (time.Time, error) {
	clock, err := ParseClock(b.PickupTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := b.PickupDate.Date()
	return time.Date(y, m, d, clock.Hour, clock.Minute, clock.Second, 0, loc), nil
}

type Clock struct {
	Hour, Minute, Second int
}

// ParseClock reads "HH:MM" or "HH:MM:SS".
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid pickup time %q", raw)
}
