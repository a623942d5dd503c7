package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/telegram"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type DispatchService interface {
	// Assign sets the booking's driver. Reassignment replaces the previous driver.
	Assign(ctx context.Context, bookingID, driverID string) (*response.BookingResponse, error)
	ListDrivers(ctx context.Context, status string) ([]response.DriverResponse, error)
}

type dispatchService struct {
	repo     *repository.Repository
	telegram telegram.Messenger
	events   events.Publisher
	now      Clock
	timeout  time.Duration
	log      *zap.Logger
}

func NewDispatchService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) DispatchService {
	return &dispatchService{
		repo:     repo,
		telegram: deps.Telegram,
		events:   deps.Events,
		now:      deps.Now,
		timeout:  config.App.RequestTimeout,
		log:      log.With(zap.String("service", "dispatch")),
	}
}

func (s *dispatchService) Assign(ctx context.Context, bookingID, driverID string) (*response.BookingResponse, error) {
	bID, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}
	dID, err := parseID("driver_id", driverID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.repo.Booking.FindByID(ctx, bID)
	if err != nil {
		return nil, storeErr("find booking", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking", bookingID)
	}

	driver, err := s.repo.Driver.FindByID(ctx, dID)
	if err != nil {
		return nil, storeErr("find driver", err)
	}
	if driver == nil {
		return nil, apperr.NotFound("driver", driverID)
	}

	now := s.now()
	if err := s.repo.Booking.UpdateDriver(ctx, bID, dID, now); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("booking", bookingID)
		}
		return nil, storeErr("assign driver", err)
	}

	var previous string
	if booking.DriverID != nil {
		previous = booking.DriverID.String()
	}
	booking.DriverID = &dID
	booking.UpdatedAt = now

	s.log.Info("Driver assigned",
		zap.String("booking_id", bookingID),
		zap.String("driver_id", driverID),
		zap.String("previous_driver_id", previous),
	)

	s.notifyDriver(driver, booking)
	publishAsync(s.events, events.Event{
		Type:       events.BookingDriverAssigned,
		BookingID:  bookingID,
		OccurredAt: now,
		Data: map[string]any{
			"driver_id":          driverID,
			"driver_name":        driver.Name,
			"previous_driver_id": previous,
		},
	}, s.timeout, s.log)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// DriverNotice is the job sheet sent to a driver's Telegram chat.
func DriverNotice(d *entity.Driver, b *entity.Booking) string {
	return fmt.Sprintf("<b>New job assigned</b>\n%s at %s\n%s → %s\nVehicle: %s\nCustomer: %s (%s)",
		b.PickupDate.Format(entity.DateLayout), html.EscapeString(b.PickupTime),
		html.EscapeString(b.PickupLocation), html.EscapeString(b.DropoffLocation),
		html.EscapeString(b.VehicleType),
		html.EscapeString(b.CustomerName), html.EscapeString(b.CustomerPhone))
}

func (s *dispatchService) notifyDriver(d *entity.Driver, b *entity.Booking) {
	if s.telegram == nil || d.TelegramChatID == nil {
		return
	}
	chatID := *d.TelegramChatID
	msg := DriverNotice(d, b)
	go func() {
		ctx, cancel := withTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.telegram.SendMessage(ctx, chatID, msg); err != nil {
			s.log.Warn("Driver notice not delivered",
				zap.String("booking_id", b.ID.String()),
				zap.String("driver_id", d.ID.String()),
				zap.Error(err))
		}
	}()
}

func (s *dispatchService) ListDrivers(ctx context.Context, status string) ([]response.DriverResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var filter *entity.DriverStatus
	if status != "" {
		st := entity.DriverStatus(status)
		switch st {
		case entity.DriverStatusAvailable, entity.DriverStatusOnJob, entity.DriverStatusOffline:
		default:
			return nil, apperr.Validation("status", "must be one of Available, On Job, Offline")
		}
		filter = &st
	}

	drivers, err := s.repo.Driver.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list drivers", err)
	}
	out := make([]response.DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, response.DriverToResponse(d))
	}
	return out, nil
}
