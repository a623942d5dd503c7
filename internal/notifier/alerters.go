package notifier

import (
	"context"
	"fmt"
	"html"
	"io"
	"sync"

	"chauffeur-booking/pkg/telegram"

	"go.uber.org/multierr"
)

// Console prints alerts to a terminal, ringing the bell as the audio cue.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	permission Permission
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, permission: PermissionDefault}
}

func (c *Console) Permission() Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

func (c *Console) RequestPermission(context.Context) Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.permission == PermissionDefault {
		c.permission = PermissionGranted
		fmt.Fprintln(c.out, "Notifications enabled: you will now be alerted for upcoming trips.")
	}
	return c.permission
}

func (c *Console) Raise(_ context.Context, a Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bell := ""
	if a.Sound {
		bell = "\a"
	}
	_, err := fmt.Fprintf(c.out, "%s[%s] %s %s\n", bell, a.PickupAt.Format("15:04"), a.Title, a.Body)
	return err
}

// Telegram posts alerts to the admin chat.
type Telegram struct {
	messenger telegram.Messenger
	chatID    int64
}

func NewTelegram(messenger telegram.Messenger, chatID int64) *Telegram {
	return &Telegram{messenger: messenger, chatID: chatID}
}

func (t *Telegram) Permission() Permission {
	if t.messenger == nil || t.chatID == 0 {
		return PermissionDenied
	}
	return PermissionGranted
}

func (t *Telegram) RequestPermission(context.Context) Permission { return t.Permission() }

func (t *Telegram) Raise(ctx context.Context, a Alert) error {
	msg := fmt.Sprintf("🚗 <b>%s</b>\n%s", html.EscapeString(a.Title), html.EscapeString(a.Body))
	return t.messenger.SendMessage(ctx, t.chatID, msg)
}

// Multi fans an alert out to every member that has permission.
type Multi []Alerter

func (m Multi) Permission() Permission {
	result := PermissionDenied
	for _, a := range m {
		switch a.Permission() {
		case PermissionGranted:
			return PermissionGranted
		case PermissionDefault:
			result = PermissionDefault
		}
	}
	return result
}

func (m Multi) RequestPermission(ctx context.Context) Permission {
	for _, a := range m {
		if a.Permission() == PermissionDefault {
			a.RequestPermission(ctx)
		}
	}
	return m.Permission()
}

// Raise fails only when no member delivered the alert.
func (m Multi) Raise(ctx context.Context, alert Alert) error {
	var (
		errs      error
		delivered bool
	)
	for _, a := range m {
		if a.Permission() != PermissionGranted {
			continue
		}
		if err := a.Raise(ctx, alert); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errs
}
