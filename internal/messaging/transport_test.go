package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

func TestSplitSubject(t *testing.T) {
	cases := []struct {
		name        string
		in          string
		wantSubject string
		wantBody    string
	}{
		{
			"standard",
			"Subject: See you soon\n\nHi Ada,\n\nBest,\nEvent Team",
			"See you soon",
			"Hi Ada,\n\nBest,\nEvent Team",
		},
		{
			"no subject line",
			"Hi Ada, just a reminder.",
			defaultSubject,
			"Hi Ada, just a reminder.",
		},
		{
			"blank separator but wrong prefix",
			"RE: something\n\nbody here",
			defaultSubject,
			"RE: something\n\nbody here",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			subject, body := SplitSubject(c.in)
			if subject != c.wantSubject {
				t.Fatalf("subject: expected %q, got %q", c.wantSubject, subject)
			}
			if body != c.wantBody {
				t.Fatalf("body: expected %q, got %q", c.wantBody, body)
			}
		})
	}
}

func TestFallbackMessageKeepsSubjectContract(t *testing.T) {
	user := &model.User{Name: "Ada"}
	event := &model.Event{Name: "AI Conference", EventTime: time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)}

	msg := fallbackMessage(user, event, "reminder_24h")
	subject, body := SplitSubject(msg)
	if subject != "Regarding AI Conference" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Hi Ada") || !strings.Contains(body, "reminder_24h") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestComposerFallsBackWithoutLLM(t *testing.T) {
	c := NewComposer(nil, logx.Nop())
	user := &model.User{Name: "Ada"}
	event := &model.Event{Name: "Data Summit", EventTime: time.Now().Add(48 * time.Hour)}

	msg := c.Compose(context.Background(), user, event, "welcome")
	if !strings.HasPrefix(msg, "Subject: ") {
		t.Fatalf("composer output must carry a subject line, got %q", msg)
	}
}

func TestTransportSimulateModeNeverFails(t *testing.T) {
	tr, err := NewTransport(Config{RatePerSec: 100}, logx.Nop())
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}

	users := []*model.User{
		{Name: "A", Email: "a@example.com", ContactMethod: model.ContactEmail},
		{Name: "B", PhoneNumber: "+6281234", ContactMethod: model.ContactWhatsApp},
		{Name: "C", TelegramChatID: 99, ContactMethod: model.ContactTelegram},
		{Name: "D", Email: "d@example.com", ContactMethod: "carrier-pigeon"},
	}
	for _, u := range users {
		if err := tr.Send(context.Background(), u, "Subject: Hello\n\nHi"); err != nil {
			t.Fatalf("simulated send for %s failed: %v", u.Name, err)
		}
	}
}

func TestTransportRespectsContextCancellation(t *testing.T) {
	tr, err := NewTransport(Config{RatePerSec: 1}, logx.Nop())
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := &model.User{Email: "a@example.com", ContactMethod: model.ContactEmail}
	// Burn the initial burst so the limiter has to wait, then the cancelled
	// context must surface.
	_ = tr.Send(context.Background(), u, "Subject: 1\n\nx")
	_ = tr.Send(context.Background(), u, "Subject: 2\n\nx")
	if err := tr.Send(ctx, u, "Subject: 3\n\nx"); err == nil {
		t.Fatalf("expected context error from rate limiter")
	}
}
