package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestUserRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.CreateUser(ctx, &model.User{
		Email:          "Ada@Example.com",
		Name:           "Ada",
		HashedPassword: "hash",
		JobTitle:       "Engineer",
		IsAdmin:        true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := st.FindUser(ctx, id)
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email should be lowercased, got %q", u.Email)
	}
	if !u.IsAdmin || u.Name != "Ada" || u.ContactMethod != model.ContactEmail {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := st.FindUserByEmail(ctx, "ADA@example.com"); err != nil {
		t.Fatalf("FindUserByEmail should be case-insensitive: %v", err)
	}

	if _, err := st.CreateUser(ctx, &model.User{Email: "ada@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same email, got %v", err)
	}

	n, err := st.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountUsers: n=%d err=%v", n, err)
	}
}

func TestUpdateUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.CreateUser(ctx, &model.User{Email: "a@example.com", Name: "A"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := st.UpdateUserInterests(ctx, id, "cloud,golang"); err != nil {
		t.Fatalf("UpdateUserInterests: %v", err)
	}
	if err := st.UpdateUserContact(ctx, id, model.ContactWhatsApp, "+628123", 0); err != nil {
		t.Fatalf("UpdateUserContact: %v", err)
	}
	u, err := st.FindUser(ctx, id)
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.Interests != "cloud,golang" || u.ContactMethod != model.ContactWhatsApp || u.PhoneNumber != "+628123" {
		t.Fatalf("unexpected user after updates %+v", u)
	}

	if err := st.UpdateUserInterests(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestEventRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	when := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	id, err := st.CreateEvent(ctx, &model.Event{
		Name:        "AI Conference",
		Description: "Explore the future of AI",
		EventTime:   when,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	ev, err := st.FindEvent(ctx, id)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if !ev.EventTime.Equal(when) {
		t.Fatalf("event_time round trip: expected %v, got %v", when, ev.EventTime)
	}

	if _, err := st.FindEvent(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	events, err := st.ListEvents(ctx)
	if err != nil || len(events) != 1 {
		t.Fatalf("ListEvents: %v (%d)", err, len(events))
	}

	if err := st.DeleteEvent(ctx, id); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := st.DeleteEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRegistrationLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	userID, err := st.CreateUser(ctx, &model.User{Email: "a@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	eventID, err := st.CreateEvent(ctx, &model.Event{Name: "Summit", EventTime: time.Now().Add(48 * time.Hour).UTC()})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	now := time.Now().UTC()
	if _, err := st.CreateRegistration(ctx, &model.Registration{UserID: userID, EventID: eventID, RegistrationTime: now}); err != nil {
		t.Fatalf("CreateRegistration: %v", err)
	}
	if _, err := st.CreateRegistration(ctx, &model.Registration{UserID: userID, EventID: eventID, RegistrationTime: now}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	r, err := st.FindRegistration(ctx, userID, eventID)
	if err != nil {
		t.Fatalf("FindRegistration: %v", err)
	}
	if r.UserID != userID || r.EventID != eventID {
		t.Fatalf("unexpected registration %+v", r)
	}

	regs, err := st.ListRegistrationsByEvent(ctx, eventID)
	if err != nil || len(regs) != 1 {
		t.Fatalf("ListRegistrationsByEvent: %v (%d)", err, len(regs))
	}

	if err := st.DeleteRegistration(ctx, userID, eventID); err != nil {
		t.Fatalf("DeleteRegistration: %v", err)
	}
	if _, err := st.FindRegistration(ctx, userID, eventID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeleteRegistration(ctx, userID, eventID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListUpcomingEventsForUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	userID, err := st.CreateUser(ctx, &model.User{Email: "a@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	mkEvent := func(name string, at time.Time) int64 {
		id, err := st.CreateEvent(ctx, &model.Event{Name: name, EventTime: at})
		if err != nil {
			t.Fatalf("CreateEvent %s: %v", name, err)
		}
		return id
	}
	past := mkEvent("Past Meetup", now.Add(-24*time.Hour))
	soon := mkEvent("Soon Summit", now.Add(24*time.Hour))
	later := mkEvent("Later Conference", now.Add(72*time.Hour))
	_ = mkEvent("Unregistered Event", now.Add(48*time.Hour))

	for _, eventID := range []int64{past, soon, later} {
		if _, err := st.CreateRegistration(ctx, &model.Registration{UserID: userID, EventID: eventID, RegistrationTime: now}); err != nil {
			t.Fatalf("CreateRegistration: %v", err)
		}
	}

	events, err := st.ListUpcomingEventsForUser(ctx, userID, now)
	if err != nil {
		t.Fatalf("ListUpcomingEventsForUser: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 upcoming events, got %d", len(events))
	}
	if events[0].Name != "Soon Summit" || events[1].Name != "Later Conference" {
		t.Fatalf("expected soonest-first ordering, got %v then %v", events[0].Name, events[1].Name)
	}
}
