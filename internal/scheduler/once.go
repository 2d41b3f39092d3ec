package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"engagesphere/pkg/logx"
)

// Schedule registers a one-shot job under id, firing once at due. A due time
// in the past fires immediately.
//
// If the id is already pending, the existing job wins and the call is a
// logged no-op: ids are derived deterministically from their payload, so a
// collision means the same communication was planned twice, not that the
// caller wants the due time moved.
func (s *Service) Schedule(id string, due time.Time, task func(ctx context.Context)) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("scheduler: id required")
	}
	if task == nil {
		return errors.New("scheduler: task required")
	}
	if due.IsZero() {
		return errors.New("scheduler: due time required")
	}

	s.tmu.Lock()
	defer s.tmu.Unlock()

	if _, exists := s.jobs[id]; exists {
		s.log.Warn("job already scheduled, keeping existing", logx.String("job", id))
		return nil
	}

	ver := s.ver[id] + 1
	s.ver[id] = ver
	s.jobs[id] = jobDef{due: due, task: task}

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		s.armLocked(id, due, ver)
	}
	return nil
}

// Cancel removes the pending job with the given id and reports whether one
// existed. Cancelling an unknown id is not an error.
//
// A job whose timer has already fired and entered dispatch is past
// cancellation: Cancel returns false and the run proceeds.
func (s *Service) Cancel(id string) bool {
	s.tmu.Lock()
	defer s.tmu.Unlock()

	removed := false
	if t, ok := s.timers[id]; ok {
		_ = t.Stop()
		delete(s.timers, id)
		removed = true
	}
	if _, ok := s.jobs[id]; ok {
		delete(s.jobs, id)
		delete(s.ver, id)
		removed = true
	}
	if removed {
		s.log.Debug("job cancelled", logx.String("job", id))
	}
	return removed
}

// Query reports whether a job with the given id is still pending.
func (s *Service) Query(id string) bool {
	s.tmu.Lock()
	_, ok := s.jobs[id]
	s.tmu.Unlock()
	return ok
}

// armLocked creates the runtime timer for a pending job. Call with tmu held.
func (s *Service) armLocked(id string, due time.Time, ver uint64) {
	if t, ok := s.timers[id]; ok {
		_ = t.Stop()
	}
	delay := time.Until(due)
	if delay < 0 {
		delay = 0
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.fire(id, ver)
	})
}

// fire runs from the timer goroutine. It claims the job under the table
// lock, then dispatches it on its own goroutine so a slow task never blocks
// scheduling or cancellation of other jobs.
func (s *Service) fire(id string, ver uint64) {
	s.tmu.Lock()
	d, ok := s.jobs[id]
	if !ok || s.ver[id] != ver {
		// cancelled, or a stale callback from a superseded timer
		s.tmu.Unlock()
		return
	}
	delete(s.jobs, id)
	delete(s.timers, id)
	delete(s.ver, id)
	s.wg.Add(1)
	s.tmu.Unlock()

	go s.run(id, d)
}

func (s *Service) run(id string, d jobDef) {
	defer s.wg.Done()

	s.mu.Lock()
	base := s.baseCtx
	timeout := s.cfg.TaskTimeout
	s.inFlight++
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx := base
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(base, timeout)
	}

	item := HistoryItem{ID: id, Due: d.due, Started: time.Now()}
	func() {
		defer func() {
			if r := recover(); r != nil {
				item.Panicked = true
				s.log.Error("job panicked", logx.String("job", id), logx.Any("panic", r))
			}
		}()
		d.task(ctx)
	}()
	cancel()
	item.Took = time.Since(item.Started)

	s.mu.Lock()
	s.inFlight--
	s.hist = append(s.hist, item)
	if over := len(s.hist) - s.cfg.HistorySize; over > 0 {
		s.hist = s.hist[over:]
	}
	s.mu.Unlock()

	s.log.Debug("job ran", logx.String("job", id), logx.Duration("took", item.Took))
}
