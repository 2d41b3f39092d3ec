package storage

import (
	"context"
	"errors"
	"time"

	"engagesphere/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate is returned on unique-constraint violations
	// (user email, (user_id, event_id) registration pairs).
	ErrDuplicate = errors.New("storage: duplicate")
)

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Store is the persistence surface the workflows depend on. Calls are
// synchronous and transactionally scoped per call.
type Store interface {
	Close() error

	CreateUser(ctx context.Context, u *model.User) (int64, error)
	FindUser(ctx context.Context, id int64) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserProfile(ctx context.Context, id int64, name, jobTitle, interests string) error
	UpdateUserContact(ctx context.Context, id int64, method, phone string, telegramChatID int64) error
	UpdateUserInterests(ctx context.Context, id int64, interests string) error

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	FindEvent(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	CreateRegistration(ctx context.Context, r *model.Registration) (int64, error)
	FindRegistration(ctx context.Context, userID, eventID int64) (*model.Registration, error)
	DeleteRegistration(ctx context.Context, userID, eventID int64) error
	ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]model.Registration, error)

	// ListUpcomingEventsForUser returns events the user is registered for with
	// event_time at or after now, soonest first.
	ListUpcomingEventsForUser(ctx context.Context, userID int64, now time.Time) ([]model.Event, error)
}
