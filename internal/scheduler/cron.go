package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"engagesphere/pkg/logx"
)

// AddCron registers a recurring maintenance job under name. Upsert by name:
// re-registering replaces the previous spec, which keeps hot-reloads from
// stacking duplicates.
func (s *Service) AddCron(name, spec string, job func(ctx context.Context)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("scheduler: name required")
	}
	if job == nil {
		return errors.New("scheduler: job required")
	}
	if _, err := s.parser.Parse(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCronLocked(name)
	s.crons = append(s.crons, cronDef{name: name, spec: spec, job: job})
	if s.c != nil {
		s.registerCronLocked(&s.crons[len(s.crons)-1])
	}
	return nil
}

// RemoveCron unregisters the named recurring job. Returns true if it existed.
func (s *Service) RemoveCron(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeCronLocked(name)
}

func (s *Service) removeCronLocked(name string) bool {
	removed := false
	n := 0
	for _, d := range s.crons {
		if d.name == name {
			if s.c != nil && d.entryID != 0 {
				s.c.Remove(d.entryID)
			}
			removed = true
			continue
		}
		s.crons[n] = d
		n++
	}
	s.crons = s.crons[:n]
	return removed
}

// runCron executes a recurring job inline on the cron goroutine (cron runs
// each entry on its own goroutine already) with the configured timeout.
func (s *Service) runCron(name string, job func(ctx context.Context)) {
	s.mu.Lock()
	base := s.baseCtx
	timeout := s.cfg.TaskTimeout
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx := base
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(base, timeout)
	}
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cron job panicked", logx.String("name", name), logx.Any("panic", r))
		}
	}()
	job(ctx)
	s.log.Debug("cron ran", logx.String("name", name), logx.Duration("took", time.Since(start)))
}
