// Package engage implements the registration workflows and the engagement
// job lifecycle around them.
package engage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engagesphere/internal/metrics"
	"engagesphere/internal/model"
	"engagesphere/internal/storage"
	"engagesphere/pkg/logx"
)

// JobScheduler is the slice of the scheduler the workflows need: one-shot
// jobs keyed by id. Cancel reports whether the id was present.
type JobScheduler interface {
	Schedule(id string, due time.Time, task func(ctx context.Context)) error
	Cancel(id string) bool
	Query(id string) bool
}

// Composer produces the text of one engagement message. It never fails;
// implementations fall back to a template when generation is unavailable.
type Composer interface {
	Compose(ctx context.Context, user *model.User, event *model.Event, messageType string) string
}

// Transport delivers a composed message over the user's preferred channel.
type Transport interface {
	Send(ctx context.Context, user *model.User, text string) error
}

// Service runs the registration, cancellation and event-removal workflows.
type Service struct {
	store     storage.Store
	jobs      JobScheduler
	composer  Composer
	transport Transport
	log       logx.Logger

	now func() time.Time
}

func NewService(store storage.Store, jobs JobScheduler, composer Composer, transport Transport, log logx.Logger) *Service {
	return &Service{
		store:     store,
		jobs:      jobs,
		composer:  composer,
		transport: transport,
		log:       log.With(logx.String("component", "engage")),
		now:       time.Now,
	}
}

// Register signs the user up for the event: it persists the registration,
// folds event keywords into the user's interests, sends the welcome message
// and schedules the engagement jobs.
//
// The welcome send is deliberately synchronous and non-fatal: a dead channel
// must not cost the user their registration or the scheduled reminders.
func (s *Service) Register(ctx context.Context, userID, eventID int64) (*model.User, *model.Event, error) {
	ev, err := s.store.FindEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("find event: %w", err)
	}

	if _, err := s.store.FindRegistration(ctx, userID, eventID); err == nil {
		return nil, nil, ErrAlreadyRegistered
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("check registration: %w", err)
	}

	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	// Interests first: even if the insert below races a concurrent duplicate,
	// the union is idempotent.
	interests := JoinInterests(DeriveInterests(user.InterestList(), ev.Name, ev.Description))
	if interests != user.Interests {
		if err := s.store.UpdateUserInterests(ctx, userID, interests); err != nil {
			return nil, nil, fmt.Errorf("update interests: %w", err)
		}
		user.Interests = interests
	}

	reg := &model.Registration{
		UserID:           userID,
		EventID:          eventID,
		RegistrationTime: s.now().UTC(),
	}
	if _, err := s.store.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, ErrAlreadyRegistered
		}
		return nil, nil, fmt.Errorf("create registration: %w", err)
	}
	metrics.RegistrationsCreated.Inc()

	welcome := s.composer.Compose(ctx, user, ev, "welcome")
	if err := s.transport.Send(ctx, user, welcome); err != nil {
		s.log.Error("welcome send failed",
			logx.Int64("user", userID), logx.Int64("event", eventID), logx.Err(err))
	}

	s.scheduleJobs(user, ev)

	s.log.Info("registered",
		logx.Int64("user", userID), logx.Int64("event", eventID),
		logx.Time("event_time", ev.EventTime))
	return user, ev, nil
}

// Cancel removes the registration and its pending jobs. It reports whether a
// registration existed; cancelling an absent registration is not an error.
func (s *Service) Cancel(ctx context.Context, userID, eventID int64) (bool, error) {
	if _, err := s.store.FindRegistration(ctx, userID, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find registration: %w", err)
	}

	s.cancelJobs(userID, eventID)

	if err := s.store.DeleteRegistration(ctx, userID, eventID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	metrics.RegistrationsCancelled.Inc()

	s.log.Info("registration cancelled", logx.Int64("user", userID), logx.Int64("event", eventID))
	return true, nil
}

// DeleteEvent removes the event and, for every registrant, their
// registration and pending jobs.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64) error {
	if _, err := s.store.FindEvent(ctx, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("find event: %w", err)
	}

	regs, err := s.store.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list registrations: %w", err)
	}
	for _, r := range regs {
		s.cancelJobs(r.UserID, eventID)
		if err := s.store.DeleteRegistration(ctx, r.UserID, eventID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete registration user=%d: %w", r.UserID, err)
		}
		metrics.RegistrationsCancelled.Inc()
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", logx.Int64("event", eventID), logx.Int("registrations", len(regs)))
	return nil
}

// scheduleJobs plans the engagement timeline and hands each surviving job to
// the scheduler. A job id already present means another path scheduled it
// first; that earlier schedule wins and the collision is only logged.
func (s *Service) scheduleJobs(user *model.User, ev *model.Event) {
	now := s.now()
	planned := Plan(ev.EventTime, now)

	seen := make(map[JobKind]bool, len(planned))
	for _, p := range planned {
		seen[p.Kind] = true
	}
	for _, k := range AllKinds {
		if !seen[k] {
			metrics.JobsSkipped.WithLabelValues(string(k)).Inc()
			s.log.Debug("job skipped, due time passed",
				logx.String("kind", string(k)), logx.Int64("user", user.ID), logx.Int64("event", ev.ID))
		}
	}

	userID, eventID := user.ID, ev.ID
	for _, p := range planned {
		id := JobID(p.Kind, userID, eventID)
		task := s.jobTask(id, p.Kind, userID, eventID)
		if err := s.jobs.Schedule(id, p.Due, task); err != nil {
			s.log.Warn("job not scheduled", logx.String("job", id), logx.Err(err))
			continue
		}
		metrics.JobsScheduled.WithLabelValues(string(p.Kind)).Inc()
		s.log.Debug("job scheduled", logx.String("job", id), logx.Time("due", p.Due))
	}
}

// jobTask builds the closure a fired timer runs. It re-reads user and event
// at fire time so the message reflects current data, and it bails out
// quietly when either side disappeared in the meantime.
func (s *Service) jobTask(id string, kind JobKind, userID, eventID int64) func(ctx context.Context) {
	return func(ctx context.Context) {
		metrics.JobsFired.WithLabelValues(string(kind)).Inc()

		user, err := s.store.FindUser(ctx, userID)
		if err != nil {
			s.log.Warn("job fired for missing user", logx.String("job", id), logx.Err(err))
			return
		}
		ev, err := s.store.FindEvent(ctx, eventID)
		if err != nil {
			s.log.Warn("job fired for missing event", logx.String("job", id), logx.Err(err))
			return
		}

		text := s.composer.Compose(ctx, user, ev, kind.MessageType())
		if err := s.transport.Send(ctx, user, text); err != nil {
			s.log.Error("engagement send failed", logx.String("job", id), logx.Err(err))
			return
		}
		s.log.Info("engagement sent", logx.String("job", id), logx.String("kind", string(kind)))
	}
}

func (s *Service) cancelJobs(userID, eventID int64) {
	for _, k := range AllKinds {
		if s.jobs.Cancel(JobID(k, userID, eventID)) {
			metrics.JobsCancelled.Inc()
		}
	}
}
