package usecase

import (
	"context"
	"time"

	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/telegram"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

// Dependencies are the outbound collaborators shared by services.
type Dependencies struct {
	Mailer   mailer.Sender
	Events   events.Publisher
	Telegram telegram.Messenger // nil disables driver notices
	Tokens   *utils.TokenManager
	Now      Clock
}

type Service struct {
	Auth     AuthService
	Pricing  PricingService
	Booking  BookingService
	Status   StatusService
	Dispatch DispatchService
	FollowUp FollowUpService
	Invoice  InvoiceService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = events.Noop()
	}
	if deps.Tokens == nil {
		deps.Tokens = utils.NewTokenManager(config.Admin)
	}

	pricing := NewPricingService(repo.PricingRule, config, deps.Now, log)

	return &Service{
		Auth:     NewAuthService(config.Admin, deps.Tokens, deps.Now, log),
		Pricing:  pricing,
		Booking:  NewBookingService(repo, pricing, config, deps, log),
		Status:   NewStatusService(repo, config, deps, log),
		Dispatch: NewDispatchService(repo, config, deps, log),
		FollowUp: NewFollowUpService(repo.FollowUp, config, deps.Now, log),
		Invoice:  NewInvoiceService(repo, config, deps, log),
	}
}

// publishAsync fires an event without holding up the caller; failures are only logged.
func publishAsync(pub events.Publisher, evt events.Event, timeout time.Duration, log *zap.Logger) {
	go func() {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()
		if err := pub.Publish(ctx, evt); err != nil {
			log.Warn("Failed to publish event",
				zap.String("type", evt.Type),
				zap.String("booking_id", evt.BookingID),
				zap.Error(err))
		}
	}()
}
