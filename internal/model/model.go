package model

import (
	"strings"
	"time"
)

// Contact preferences routed by the transport. Anything unrecognized is
// treated as email.
const (
	ContactEmail    = "email"
	ContactWhatsApp = "whatsapp"
	ContactTelegram = "telegram"
)

type User struct {
	ID             int64
	Email          string
	Name           string
	HashedPassword string
	JobTitle       string
	IsAdmin        bool

	// Interests is a comma-delimited, lowercase, sorted keyword set. It is
	// derived state: every registration unions in keywords extracted from the
	// event, so it drifts toward what the user actually signs up for.
	Interests string

	ContactMethod  string
	PhoneNumber    string
	TelegramChatID int64
}

// InterestList splits the persisted interest string into its keywords.
func (u *User) InterestList() []string {
	if strings.TrimSpace(u.Interests) == "" {
		return nil
	}
	parts := strings.Split(u.Interests, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Event struct {
	ID           int64
	Name         string
	Description  string
	EventTime    time.Time // UTC
	ImageURL     string
	RecordingURL string
}

type Registration struct {
	ID               int64
	UserID           int64
	EventID          int64
	RegistrationTime time.Time
}
