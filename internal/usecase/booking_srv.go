package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// List presets used by the admin screens.
const (
	ViewQuotes    = "quotes"
	ViewUpcoming  = "upcoming"
	ViewCompleted = "completed"
	ViewActive    = "active"
	ViewAll       = "all"
)

type BookingService interface {
	// Public quote intake
	SubmitQuote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteSubmittedResponse, error)

	// Admin
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, id string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateAmount(ctx context.Context, id string, req *request.UpdateAmountRequest) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, id string) (*response.DeleteBookingResponse, error)
	ListEmailTemplates(ctx context.Context) ([]response.EmailTemplateResponse, error)
}

type bookingService struct {
	repo       *repository.Repository
	pricing    PricingService
	mailer     mailer.Sender
	events     events.Publisher
	adminInbox string
	now        Clock
	loc        *time.Location
	timeout    time.Duration
	log        *zap.Logger
}

func NewBookingService(repo *repository.Repository, pricing PricingService, config *utils.Config, deps Dependencies, log *zap.Logger) BookingService {
	return &bookingService{
		repo:       repo,
		pricing:    pricing,
		mailer:     deps.Mailer,
		events:     deps.Events,
		adminInbox: config.Email.AdminInbox,
		now:        deps.Now,
		loc:        config.App.Location(),
		timeout:    config.App.RequestTimeout,
		log:        log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) today() time.Time {
	return entity.DateOnly(s.now().In(s.loc))
}

func (s *bookingService) SubmitQuote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteSubmittedResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := validateRequest(req); err != nil {
		s.log.Warn("Quote request validation failed", zap.Error(err))
		return nil, err
	}

	pickupDate, err := parseDate("pickup_date", req.PickupDate, s.loc)
	if err != nil {
		return nil, err
	}
	if pickupDate.Before(s.today()) {
		return nil, apperr.Validation("pickup_date", "must not be in the past")
	}
	if _, err := entity.ParseClock(req.PickupTime); err != nil {
		return nil, apperr.Validation("pickup_time", "must be HH:MM or HH:MM:SS")
	}

	in := EstimateInput{
		VehicleType: req.VehicleType,
		Pickup:      req.PickupLocation,
		Dropoff:     req.DropoffLocation,
		Hours:       req.Hours,
		DistanceKm:  req.DistanceKm,
	}
	if req.ServiceType != "" {
		st := entity.ServiceType(req.ServiceType)
		in.ServiceType = &st
	}

	// Pricing outages degrade to the fallback; only bad input stops the quote
	est, err := s.pricing.EstimateOrFallback(ctx, in)
	if err != nil {
		return nil, err
	}

	amount := entity.PendingAmount()
	if est.Price != nil {
		amount = entity.EstimatedAmount(math.Round(est.Price.Float64()))
	}

	now := s.now()
	serviceType := est.ServiceType
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		PickupLocation:  strings.TrimSpace(req.PickupLocation),
		DropoffLocation: strings.TrimSpace(req.DropoffLocation),
		PickupDate:      pickupDate,
		PickupTime:      strings.TrimSpace(req.PickupTime),
		VehicleType:     est.VehicleClass,
		ServiceType:     &serviceType,
		Amount:          amount,
		Status:          entity.BookingStatusQuoteRequest,
		Notes:           req.Notes,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, storeErr("create quote request", err)
	}

	s.log.Info("Quote request received",
		zap.String("booking_id", booking.ID.String()),
		zap.String("service_type", string(serviceType)),
		zap.String("amount", amount.String()),
		zap.Bool("low_confidence", est.LowConfidence),
	)

	s.notifyQuoteReceived(booking)
	publishAsync(s.events, events.Event{
		Type:       events.BookingQuoteRequested,
		BookingID:  booking.ID.String(),
		OccurredAt: now,
		Data: map[string]any{
			"vehicle_type": booking.VehicleType,
			"amount":       amount.Display(),
		},
	}, s.timeout, s.log)

	return &response.QuoteSubmittedResponse{
		Booking:  response.BookingToResponse(booking),
		Estimate: EstimateToResponse(est),
	}, nil
}

// notifyQuoteReceived sends the admin alert and the customer auto-reply in the background.
func (s *bookingService) notifyQuoteReceived(b *entity.Booking) {
	messages := []mailer.Message{{
		To:      b.CustomerEmail,
		Subject: "We received your quote request",
		HTML: fmt.Sprintf(`<p>Dear %s,</p><p>Thank you for your enquiry for a %s from %s to %s on %s at %s.</p>
<p>Estimated fare: <strong>%s</strong>. Our team will confirm the final price shortly.</p>`,
			b.CustomerName, b.VehicleType, b.PickupLocation, b.DropoffLocation,
			b.PickupDate.Format(entity.DateLayout), b.PickupTime, b.Amount.Display()),
	}}
	if s.adminInbox != "" {
		messages = append(messages, mailer.Message{
			To:      s.adminInbox,
			Subject: fmt.Sprintf("New quote request: %s", b.CustomerName),
			HTML: fmt.Sprintf(`<p><strong>%s</strong> (%s, %s) requested a %s.</p>
<p>%s to %s on %s at %s</p><p>Estimate: %s</p><p>Notes: %s</p>`,
				b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.VehicleType,
				b.PickupLocation, b.DropoffLocation, b.PickupDate.Format(entity.DateLayout), b.PickupTime,
				b.Amount.Display(), b.Notes),
		})
	}

	s.sendBestEffort(b.ID, messages...)
}

func (s *bookingService) sendBestEffort(bookingID uuid.UUID, messages ...mailer.Message) {
	go func() {
		for _, msg := range messages {
			ctx, cancel := withTimeout(context.Background(), s.timeout)
			if err := s.mailer.Send(ctx, msg); err != nil {
				s.log.Warn("Best-effort email not sent",
					zap.String("booking_id", bookingID.String()),
					zap.String("to", msg.To),
					zap.Error(err))
			}
			cancel()
		}
	}()
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := validateRequest(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	pickupDate, err := parseDate("pickup_date", req.PickupDate, s.loc)
	if err != nil {
		return nil, err
	}
	if _, err := entity.ParseClock(req.PickupTime); err != nil {
		return nil, apperr.Validation("pickup_time", "must be HH:MM or HH:MM:SS")
	}
	class, err := FleetClass(req.VehicleType)
	if err != nil {
		return nil, err
	}

	serviceType := ClassifyService(req.PickupLocation, req.DropoffLocation)
	if req.ServiceType != "" {
		serviceType = entity.ServiceType(req.ServiceType)
	}

	var driverID *uuid.UUID
	if req.DriverID != "" {
		id, err := parseID("driver_id", req.DriverID)
		if err != nil {
			return nil, err
		}
		driver, err := s.repo.Driver.FindByID(ctx, id)
		if err != nil {
			return nil, storeErr("find driver", err)
		}
		if driver == nil {
			return nil, apperr.NotFound("driver", req.DriverID)
		}
		driverID = &id
	}

	now := s.now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		PickupLocation:  strings.TrimSpace(req.PickupLocation),
		DropoffLocation: strings.TrimSpace(req.DropoffLocation),
		PickupDate:      pickupDate,
		PickupTime:      strings.TrimSpace(req.PickupTime),
		VehicleType:     class,
		ServiceType:     &serviceType,
		Amount:          entity.KnownAmount(*req.Amount),
		Status:          entity.BookingStatusConfirmed,
		DriverID:        driverID,
		Notes:           req.Notes,
	}

	customer := &entity.Customer{
		BaseSimple: entity.BaseSimple{ID: utils.GenerateUUID(), CreatedAt: now},
		FullName:   booking.CustomerName,
		Email:      booking.CustomerEmail,
		Phone:      booking.CustomerPhone,
		Status:     "active",
	}

	err = s.repo.Transactor.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Customer.Upsert(ctx, customer); err != nil {
			return err
		}
		return tx.Booking.Create(ctx, booking)
	})
	if err != nil {
		return nil, storeErr("create booking", err)
	}

	s.log.Info("Booking created by staff",
		zap.String("booking_id", booking.ID.String()),
		zap.String("customer_id", customer.ID.String()),
	)

	s.sendConfirmation(ctx, booking)
	publishAsync(s.events, events.Event{
		Type:       events.BookingStatusChanged,
		BookingID:  booking.ID.String(),
		OccurredAt: now,
		Data:       map[string]any{"to": string(booking.Status)},
	}, s.timeout, s.log)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) sendConfirmation(ctx context.Context, b *entity.Booking) {
	tpl, err := s.repo.EmailTemplate.FindByName(ctx, entity.TemplateBookingConfirmed)
	if err != nil || tpl == nil || !tpl.IsActive {
		s.log.Debug("No active confirmation template, skipping email", zap.String("booking_id", b.ID.String()))
		return
	}
	subject, body := tpl.Render(bookingVars(b))
	s.sendBestEffort(b.ID, mailer.Message{To: b.CustomerEmail, Subject: subject, HTML: body})
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*response.BookingResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	bookingID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("find booking", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking", id)
	}
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// BookingFilterFor turns a list request into a store filter, applying the named preset first.
func BookingFilterFor(req *request.BookingListRequest, today time.Time, loc *time.Location) (repository.BookingFilter, error) {
	var filter repository.BookingFilter

	switch req.View {
	case ViewQuotes:
		filter.Statuses = []entity.BookingStatus{
			entity.BookingStatusPending, entity.BookingStatusQuoteRequest, entity.BookingStatusQuoteSent,
		}
	case ViewUpcoming:
		filter.Statuses = []entity.BookingStatus{entity.BookingStatusConfirmed, entity.BookingStatusInProgress}
		from := today
		filter.DateFrom = &from
	case ViewCompleted:
		filter.Statuses = []entity.BookingStatus{entity.BookingStatusCompleted}
	case ViewAll:
	default:
		filter.ExcludeStatuses = []entity.BookingStatus{entity.BookingStatusQuoteRequest}
	}

	if req.Status != "" {
		status, err := entity.ParseBookingStatus(req.Status)
		if err != nil {
			return filter, apperr.Validation("status", err.Error())
		}
		filter.Statuses = intersectStatuses(filter.Statuses, status)
	}

	if req.DateFrom != "" {
		from, err := parseDate("date_from", req.DateFrom, loc)
		if err != nil {
			return filter, err
		}
		if filter.DateFrom == nil || from.After(*filter.DateFrom) {
			filter.DateFrom = &from
		}
	}
	if req.DateTo != "" {
		to, err := parseDate("date_to", req.DateTo, loc)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}

	filter.Search = strings.TrimSpace(req.Search)
	return filter, nil
}

// intersectStatuses narrows a preset to one status; an empty preset means any.
func intersectStatuses(preset []entity.BookingStatus, status entity.BookingStatus) []entity.BookingStatus {
	if len(preset) == 0 {
		return []entity.BookingStatus{status}
	}
	for _, s := range preset {
		if s == status {
			return []entity.BookingStatus{status}
		}
	}
	// outside the preset nothing can match
	return nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	filter, err := BookingFilterFor(req, s.today(), s.loc)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && len(filter.Statuses) == 0 {
		return response.NewPaginatedResponse([]response.BookingResponse{}, req.Page, req.Limit(), 0), nil
	}

	total, err := s.repo.Booking.Count(ctx, filter)
	if err != nil {
		return nil, storeErr("count bookings", err)
	}

	filter.Limit = req.Limit()
	filter.Offset = req.Offset()
	bookings, err := s.repo.Booking.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) UpdateAmount(ctx context.Context, id string, req *request.UpdateAmountRequest) (*response.BookingResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	bookingID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return nil, apperr.Validation("amount", err.Error())
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("find booking", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking", id)
	}

	now := s.now()
	if err := s.repo.Booking.UpdateAmount(ctx, bookingID, amount, now); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("booking", id)
		}
		return nil, storeErr("update booking amount", err)
	}
	booking.Amount = amount
	booking.UpdatedAt = now

	s.log.Info("Booking amount updated", zap.String("booking_id", id), zap.String("amount", amount.String()))
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// DeleteBooking removes the booking with its invoices, follow-ups and alert markers in one transaction.
func (s *bookingService) DeleteBooking(ctx context.Context, id string) (*response.DeleteBookingResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	bookingID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	result := &response.DeleteBookingResponse{BookingID: id}
	err = s.repo.Transactor.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		if result.InvoicesRemoved, err = tx.Invoice.DeleteByBookingID(ctx, bookingID); err != nil {
			return err
		}
		if result.FollowUpsRemoved, err = tx.FollowUp.DeleteByBookingID(ctx, bookingID); err != nil {
			return err
		}
		if _, err = tx.Alert.DeleteByBookingID(ctx, bookingID); err != nil {
			return err
		}
		return tx.Booking.Delete(ctx, bookingID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("booking", id)
		}
		return nil, storeErr("delete booking", err)
	}

	s.log.Info("Booking deleted",
		zap.String("booking_id", id),
		zap.Int64("invoices_removed", result.InvoicesRemoved),
		zap.Int64("followups_removed", result.FollowUpsRemoved),
	)
	return result, nil
}

func (s *bookingService) ListEmailTemplates(ctx context.Context) ([]response.EmailTemplateResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	templates, err := s.repo.EmailTemplate.List(ctx)
	if err != nil {
		return nil, storeErr("list email templates", err)
	}
	out := make([]response.EmailTemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, response.EmailTemplateToResponse(t))
	}
	return out, nil
}
