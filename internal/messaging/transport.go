// Package messaging composes and delivers user-facing messages over email,
// WhatsApp and Telegram. Channels without credentials run in simulate mode:
// sends are logged, not delivered, and never fail.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"engagesphere/internal/metrics"
	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

const defaultSubject = "A message from your event organizer"

type Config struct {
	// RatePerSec throttles outbound sends across all channels.
	RatePerSec float64
	Email      EmailConfig
	WhatsApp   WhatsAppConfig
	Telegram   TelegramConfig
}

// Transport routes a composed message to the user's preferred channel.
type Transport struct {
	email    *EmailClient
	whatsapp *WhatsAppClient
	telegram *TelegramClient
	limiter  *rate.Limiter
	log      logx.Logger
}

func NewTransport(cfg Config, log logx.Logger) (*Transport, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("component", "transport"))

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}

	tg, err := NewTelegramClient(cfg.Telegram, log)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}
	return &Transport{
		email:    NewEmailClient(cfg.Email, log),
		whatsapp: NewWhatsAppClient(cfg.WhatsApp, log),
		telegram: tg,
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		log:      log,
	}, nil
}

// Send splits the composed text into subject and body and delivers it over
// the user's contact method. Unknown methods fall back to email.
func (t *Transport) Send(ctx context.Context, user *model.User, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	subject, body := SplitSubject(text)

	channel := user.ContactMethod
	var err error
	switch channel {
	case model.ContactWhatsApp:
		err = t.whatsapp.Send(ctx, user.PhoneNumber, fmt.Sprintf("*%s*\n\n%s", subject, body))
	case model.ContactTelegram:
		err = t.telegram.Send(ctx, user.TelegramChatID, fmt.Sprintf("%s\n\n%s", subject, body))
	default:
		channel = model.ContactEmail
		err = t.email.Send(ctx, user.Email, subject, body)
	}

	if err != nil {
		metrics.MessagesFailed.WithLabelValues(channel).Inc()
		return err
	}
	metrics.MessagesSent.WithLabelValues(channel).Inc()
	return nil
}

// SplitSubject parses the "Subject: ...\n\n<body>" convention the composer
// emits. Text without a subject line becomes the whole body under a default
// subject.
func SplitSubject(text string) (subject, body string) {
	head, rest, ok := strings.Cut(text, "\n\n")
	if ok && strings.HasPrefix(head, "Subject: ") {
		return strings.TrimPrefix(head, "Subject: "), rest
	}
	return defaultSubject, text
}
