package cmd

import (
	"context"
	"os"

	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/notifier"
	"chauffeur-booking/pkg/telegram"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

// Alerter combines every configured alert channel. messenger and hub may be nil.
func Alerter(config *utils.Config, messenger telegram.Messenger, hub *notifier.Hub) notifier.Alerter {
	var alerters notifier.Multi

	if config.Notifier.Console {
		alerters = append(alerters, notifier.NewConsole(os.Stdout))
	}
	if messenger != nil && config.Notifier.TelegramAdminID != 0 {
		alerters = append(alerters, notifier.NewTelegram(messenger, config.Notifier.TelegramAdminID))
	}
	if hub != nil {
		alerters = append(alerters, hub)
	}

	return alerters
}

// UpcomingTripNotifier runs the polling loop until ctx is cancelled.
func UpcomingTripNotifier(
	ctx context.Context,
	repo *repository.Repository,
	alerter notifier.Alerter,
	config *utils.Config,
	log *zap.Logger,
) error {
	n := notifier.New(repo, alerter, config, nil, log)
	return n.Run(ctx)
}
