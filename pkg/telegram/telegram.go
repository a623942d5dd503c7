// Package telegram sends one-way notices through a Telegram bot.
package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger posts an HTML message to a chat id.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, html string) error
}

type botMessenger struct {
	bot *tele.Bot
	log *zap.Logger
}

// New builds an offline bot: it only sends, it never polls for updates.
func New(token string, log *zap.Logger) (Messenger, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &botMessenger{bot: b, log: log.With(zap.String("component", "telegram"))}, nil
}

func (m *botMessenger) SendMessage(ctx context.Context, chatID int64, html string) error {
	done := make(chan error, 1)
	go func() {
		_, err := m.bot.Send(&tele.Chat{ID: chatID}, html, tele.ModeHTML)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("telegram send to %d: %w", chatID, ctx.Err())
	case err := <-done:
		if err != nil {
			m.log.Warn("Telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return fmt.Errorf("telegram send to %d: %w", chatID, err)
		}
		return nil
	}
}
