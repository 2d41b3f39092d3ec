package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"engagesphere/pkg/logx"
)

const (
	DefaultHistorySize = 200
	DefaultTaskTimeout = 45 * time.Second
)

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.TaskTimeout < 0 {
		cfg.TaskTimeout = 0
	}
	return &Service{
		log:    log.With(logx.String("component", "scheduler")),
		cfg:    cfg,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		jobs:   map[string]jobDef{},
		timers: map[string]*time.Timer{},
		ver:    map[string]uint64{},
	}
}

// Apply updates runtime limits. Pending jobs and crons are untouched; the new
// timeout applies to runs dispatched after the call.
func (s *Service) Apply(cfg Config) {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	s.mu.Lock()
	s.cfg = cfg
	if len(s.hist) > cfg.HistorySize {
		s.hist = s.hist[len(s.hist)-cfg.HistorySize:]
	}
	s.mu.Unlock()
}

// Start arms timers for jobs scheduled before startup and starts the cron
// runner. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.c = cron.New(cron.WithParser(s.parser))
	for i := range s.crons {
		s.registerCronLocked(&s.crons[i])
	}
	s.c.Start()
	nCrons := len(s.crons)
	s.mu.Unlock()

	s.tmu.Lock()
	for id, d := range s.jobs {
		s.armLocked(id, d.due, s.ver[id])
	}
	nJobs := len(s.jobs)
	s.tmu.Unlock()

	s.log.Info("scheduler started", logx.Int("jobs", nJobs), logx.Int("crons", nCrons))
}

// Stop halts the cron runner, stops every pending timer and waits for
// in-flight job runs to drain (bounded by ctx). Job definitions stay in the
// table so a later Start resumes them.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.c
	s.c = nil
	cancel := s.cancel
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}

	s.tmu.Lock()
	for _, t := range s.timers {
		_ = t.Stop()
	}
	s.timers = map[string]*time.Timer{}
	s.tmu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		// give up waiting; cancel below aborts the stragglers
	}
	if cancel != nil {
		cancel()
	}

	s.log.Info("scheduler stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) registerCronLocked(d *cronDef) {
	job := cron.FuncJob(func() {
		s.runCron(d.name, d.job)
	})
	eid, err := s.c.AddJob(d.spec, job)
	if err != nil {
		s.log.Error("cron register failed", logx.String("name", d.name), logx.String("spec", d.spec), logx.Err(err))
		return
	}
	d.entryID = eid
	s.log.Debug("cron registered", logx.String("name", d.name), logx.String("spec", d.spec))
}
