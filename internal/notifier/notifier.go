// Package notifier raises alerts shortly before a booked trip's pickup time.
package notifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Alert is one upcoming-trip reminder. Tag is stable per booking and day.
type Alert struct {
	Tag       string    `json:"tag"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Sound     bool      `json:"sound"`
	BookingID string    `json:"booking_id"`
	PickupAt  time.Time `json:"pickup_at"`
	Minutes   int       `json:"minutes"`
}

// Alerter is a local notification surface.
type Alerter interface {
	Permission() Permission
	RequestPermission(ctx context.Context) Permission
	// Raise shows the alert; raising the same tag twice must not duplicate it.
	Raise(ctx context.Context, alert Alert) error
}

var watchedStatuses = []entity.BookingStatus{
	entity.BookingStatusConfirmed,
	entity.BookingStatusPending,
}

type Notifier struct {
	bookings repository.BookingRepository
	alerts   repository.AlertRepository
	alerter  Alerter
	interval time.Duration
	window   int
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger

	day     string
	alerted map[string]struct{}
}

func New(repo *repository.Repository, alerter Alerter, config *utils.Config, now func() time.Time, log *zap.Logger) *Notifier {
	interval := config.Notifier.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	window := config.Notifier.WindowMinutes
	if window <= 0 {
		window = 60
	}
	if now == nil {
		now = time.Now
	}
	return &Notifier{
		bookings: repo.Booking,
		alerts:   repo.Alert,
		alerter:  alerter,
		interval: interval,
		window:   window,
		timeout:  config.App.RequestTimeout,
		loc:      config.App.Location(),
		now:      now,
		log:      log.With(zap.String("component", "notifier")),
		alerted:  map[string]struct{}{},
	}
}

// Run polls immediately and then once per interval until ctx is cancelled.
// A slow poll delays the next one; polls never overlap.
func (n *Notifier) Run(ctx context.Context) error {
	if n.alerter.Permission() == PermissionDefault {
		p := n.alerter.RequestPermission(ctx)
		n.log.Info("Alert permission requested", zap.String("permission", string(p)))
	}

	n.log.Info("Upcoming-trip notifier started",
		zap.Duration("interval", n.interval),
		zap.Int("window_minutes", n.window))

	n.Poll(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.log.Info("Upcoming-trip notifier stopped")
			return nil
		case <-ticker.C:
			n.Poll(ctx)
		}
	}
}

// Tag identifies the alert for a booking on a given day.
func Tag(bookingID string, day time.Time) string {
	return bookingID + ":" + day.Format(entity.DateLayout)
}

// Poll checks today's bookings once and returns how many alerts were raised.
func (n *Notifier) Poll(ctx context.Context) int {
	now := n.now().In(n.loc)
	today := entity.DateOnly(now)
	n.rollDay(ctx, today)

	if p := n.alerter.Permission(); p != PermissionGranted {
		n.log.Debug("Alerts not permitted, skipping poll", zap.String("permission", string(p)))
		return 0
	}

	qctx, cancel := context.WithTimeout(ctx, n.queryTimeout())
	bookings, err := n.bookings.List(qctx, repository.BookingFilter{
		Statuses: watchedStatuses,
		DateFrom: &today,
		DateTo:   &today,
	})
	cancel()
	if err != nil {
		n.log.Error("Failed to load today's bookings", zap.Error(err))
		return 0
	}

	raised := 0
	for _, b := range bookings {
		pickupAt, err := b.PickupAt(n.loc)
		if err != nil {
			n.log.Warn("Skipping booking with unreadable pickup time",
				zap.String("booking_id", b.ID.String()),
				zap.String("pickup_time", b.PickupTime))
			continue
		}

		minutes := int(math.Round(pickupAt.Sub(now).Minutes()))
		if minutes <= 0 || minutes > n.window {
			continue
		}

		tag := Tag(b.ID.String(), today)
		if _, ok := n.alerted[tag]; ok {
			continue
		}

		alert := Alert{
			Tag:       tag,
			Title:     fmt.Sprintf("Job Starting in %d mins!", minutes),
			Body:      fmt.Sprintf("%s @ %s", b.CustomerName, b.PickupLocation),
			Sound:     true,
			BookingID: b.ID.String(),
			PickupAt:  pickupAt,
			Minutes:   minutes,
		}
		if err := n.alerter.Raise(ctx, alert); err != nil {
			n.log.Warn("Failed to raise alert, will retry next poll", zap.String("tag", tag), zap.Error(err))
			continue
		}

		n.alerted[tag] = struct{}{}
		raised++
		n.log.Info("Upcoming trip alert raised",
			zap.String("booking_id", alert.BookingID),
			zap.Int("minutes", minutes))

		rctx, cancel := context.WithTimeout(ctx, n.queryTimeout())
		err = n.alerts.Record(rctx, &entity.BookingAlert{BookingID: b.ID, AlertDay: today, AlertedAt: now})
		cancel()
		if err != nil {
			n.log.Error("Failed to persist alert marker", zap.String("tag", tag), zap.Error(err))
		}
	}
	return raised
}

// rollDay reloads the persisted markers when the business day changes.
func (n *Notifier) rollDay(ctx context.Context, today time.Time) {
	day := today.Format(entity.DateLayout)
	if day == n.day {
		return
	}

	qctx, cancel := context.WithTimeout(ctx, n.queryTimeout())
	ids, err := n.alerts.ListForDay(qctx, today)
	cancel()
	if err != nil {
		// keep the old day so the next poll retries the load
		n.log.Error("Failed to load alert markers", zap.String("day", day), zap.Error(err))
		return
	}

	n.day = day
	n.alerted = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		n.alerted[Tag(id.String(), today)] = struct{}{}
	}
}

func (n *Notifier) queryTimeout() time.Duration {
	if n.timeout <= 0 {
		return 10 * time.Second
	}
	return n.timeout
}
