package usecase

import (
	"context"
	"errors"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type StatusService interface {
	// Transition moves a booking to target. A Quote Sent target runs the quote send with the default template.
	Transition(ctx context.Context, id string, target string) (*response.TransitionResponse, error)
	// SendQuote emails the quote, then records Quote Sent and a follow-up task in one transaction.
	SendQuote(ctx context.Context, id string, req *request.SendQuoteRequest) (*response.TransitionResponse, error)
}

type statusService struct {
	repo    *repository.Repository
	mailer  mailer.Sender
	events  events.Publisher
	now     Clock
	loc     *time.Location
	timeout time.Duration
	log     *zap.Logger
}

func NewStatusService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) StatusService {
	return &statusService{
		repo:    repo,
		mailer:  deps.Mailer,
		events:  deps.Events,
		now:     deps.Now,
		loc:     config.App.Location(),
		timeout: config.App.RequestTimeout,
		log:     log.With(zap.String("service", "status")),
	}
}

func (s *statusService) load(ctx context.Context, id string) (*entity.Booking, error) {
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
	return booking, nil
}

func checkTransition(b *entity.Booking, target entity.BookingStatus) error {
	if b.Status.CanTransitionTo(target) {
		return nil
	}
	if b.Status.IsTerminal() {
		return apperr.InvalidState("booking is %s and its status can no longer change", b.Status)
	}
	return apperr.InvalidState("cannot move booking from %q to %q", b.Status, target)
}

func (s *statusService) Transition(ctx context.Context, id string, target string) (*response.TransitionResponse, error) {
	status, err := entity.ParseBookingStatus(target)
	if err != nil {
		return nil, apperr.Validation("status", err.Error())
	}
	if status == entity.BookingStatusQuoteSent {
		return s.SendQuote(ctx, id, &request.SendQuoteRequest{})
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(booking, status); err != nil {
		s.log.Warn("Rejected status transition",
			zap.String("booking_id", id),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(status)))
		return nil, err
	}

	from := booking.Status
	now := s.now()
	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, status, now); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("booking", id)
		}
		return nil, storeErr("update booking status", err)
	}
	booking.Status = status
	booking.UpdatedAt = now

	s.log.Info("Booking status changed",
		zap.String("booking_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	s.publishChange(booking, from)

	return &response.TransitionResponse{Booking: response.BookingToResponse(booking)}, nil
}

func (s *statusService) SendQuote(ctx context.Context, id string, req *request.SendQuoteRequest) (*response.TransitionResponse, error) {
	if req == nil {
		req = &request.SendQuoteRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Store phases and the email each run under their own deadline
	loadCtx, cancelLoad := withTimeout(ctx, s.timeout)
	defer cancelLoad()

	booking, err := s.load(loadCtx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(booking, entity.BookingStatusQuoteSent); err != nil {
		return nil, err
	}

	subject, body, err := s.quoteContent(loadCtx, booking, req)
	if err != nil {
		return nil, err
	}

	// 1. Email first; nothing is written unless the customer actually got the quote
	sendCtx, cancel := withTimeout(ctx, s.timeout)
	err = s.mailer.Send(sendCtx, mailer.Message{To: booking.CustomerEmail, Subject: subject, HTML: body})
	cancel()
	if err != nil {
		s.log.Warn("Quote email failed, booking unchanged",
			zap.String("booking_id", id),
			zap.String("to", booking.CustomerEmail),
			zap.Error(err))
		return nil, apperr.QuoteNotSentError{Err: err}
	}

	// 2. Status and follow-up commit together
	now := s.now()
	task := ScheduleQuoteFollowUp(booking, now, s.loc)

	txCtx, cancelTx := withTimeout(ctx, s.timeout)
	defer cancelTx()
	err = s.repo.Transactor.WithinTx(txCtx, func(tx *repository.Repository) error {
		if err := tx.Booking.UpdateStatus(txCtx, booking.ID, entity.BookingStatusQuoteSent, now); err != nil {
			return err
		}
		return tx.FollowUp.Create(txCtx, task)
	})
	if err != nil {
		s.log.Error("Quote email sent but booking was not updated, manual reconciliation needed",
			zap.String("booking_id", id),
			zap.String("customer_email", booking.CustomerEmail),
			zap.String("subject", subject),
			zap.Error(err))
		return nil, apperr.PartialFailureError{
			Msg: "quote email was sent but the booking could not be updated, contact support",
			Err: err,
		}
	}

	from := booking.Status
	booking.Status = entity.BookingStatusQuoteSent
	booking.UpdatedAt = now

	s.log.Info("Quote sent",
		zap.String("booking_id", id),
		zap.String("followup_id", task.ID.String()),
		zap.String("due_date", task.DueDate.Format(entity.DateLayout)))
	s.publishChange(booking, from)

	followUp := response.FollowUpToResponse(task)
	return &response.TransitionResponse{
		Booking:  response.BookingToResponse(booking),
		FollowUp: &followUp,
	}, nil
}

// quoteContent resolves subject and body: explicit text wins, otherwise the chosen or default quote template.
func (s *statusService) quoteContent(ctx context.Context, b *entity.Booking, req *request.SendQuoteRequest) (string, string, error) {
	vars := bookingVars(b)
	if req.Subject != "" && req.Body != "" {
		return entity.Substitute(req.Subject, vars), entity.Substitute(req.Body, vars), nil
	}

	var (
		tpl *entity.EmailTemplate
		err error
	)
	if req.TemplateID != "" {
		templateID, perr := parseID("template_id", req.TemplateID)
		if perr != nil {
			return "", "", perr
		}
		tpl, err = s.repo.EmailTemplate.FindByID(ctx, templateID)
		if err == nil && tpl == nil {
			return "", "", apperr.NotFound("email template", req.TemplateID)
		}
	} else {
		tpl, err = s.repo.EmailTemplate.FindFirstActiveContaining(ctx, "quote")
	}
	if err != nil {
		return "", "", storeErr("load quote template", err)
	}
	if tpl == nil {
		return "", "", apperr.Validation("template_id", "no active quote template, provide subject and body")
	}

	subject, body := tpl.Render(vars)
	if req.Subject != "" {
		subject = entity.Substitute(req.Subject, vars)
	}
	if req.Body != "" {
		body = entity.Substitute(req.Body, vars)
	}
	return subject, body, nil
}

func (s *statusService) publishChange(b *entity.Booking, from entity.BookingStatus) {
	publishAsync(s.events, events.Event{
		Type:       events.BookingStatusChanged,
		BookingID:  b.ID.String(),
		OccurredAt: b.UpdatedAt,
		Data: map[string]any{
			"from": string(from),
			"to":   string(b.Status),
		},
	}, s.timeout, s.log)
}
