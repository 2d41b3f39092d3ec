// Package app wires configuration, storage, the scheduler, messaging and
// the HTTP server into one runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"engagesphere/internal/auth"
	"engagesphere/internal/chat"
	"engagesphere/internal/config"
	"engagesphere/internal/engage"
	"engagesphere/internal/messaging"
	"engagesphere/internal/scheduler"
	"engagesphere/internal/server"
	"engagesphere/internal/storage"
	"engagesphere/pkg/llm"
	"engagesphere/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	store storage.Store
	sched *scheduler.Service
	srv   *server.Server

	cfgCh  chan *config.Config
	cancel context.CancelFunc
	srvErr chan error
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfgm.SetValidator(config.Validate)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logCfg(cfg))
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, err := config.ParseDurationOrDefault("database.busy_timeout", cfg.Database.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	schedCfg, err := mapSchedulerConfig(cfg)
	if err != nil {
		return nil, err
	}
	sched := scheduler.New(schedCfg, log)

	llmTimeout, err := config.ParseDurationOrDefault("llm.timeout", cfg.LLM.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Token:   cfg.LLM.Token,
		Model:   cfg.LLM.Model,
		Timeout: llmTimeout,
	})
	if !llmClient.Configured() {
		log.Warn("llm token not set, messages use template fallback")
	}

	composer := messaging.NewComposer(llmClient, log)
	transport, err := messaging.NewTransport(messaging.Config{
		RatePerSec: float64(cfg.Messaging.RatePerSec),
		Email: messaging.EmailConfig{
			APIKey:    cfg.Messaging.Email.APIKey,
			FromEmail: cfg.Messaging.Email.FromEmail,
		},
		WhatsApp: messaging.WhatsAppConfig{
			AccountSID: cfg.Messaging.WhatsApp.AccountSID,
			AuthToken:  cfg.Messaging.WhatsApp.AuthToken,
			From:       cfg.Messaging.WhatsApp.From,
		},
		Telegram: messaging.TelegramConfig{Token: cfg.Messaging.Telegram.Token},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("messaging transport: %w", err)
	}

	eng := engage.NewService(store, sched, composer, transport, log)
	dispatcher := chat.NewDispatcher(eng, store, chat.NewLLMExtractor(llmClient), log)

	tokenTTL, err := config.ParseDurationOrDefault("auth.token_ttl", cfg.Auth.TokenTTL, 30*time.Minute)
	if err != nil {
		return nil, err
	}
	authSvc := auth.NewService(auth.Config{Secret: cfg.Auth.Secret, TokenTTL: tokenTTL})

	readTimeout, err := config.ParseDurationOrDefault("server.read_timeout", cfg.Server.ReadTimeout, 15*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := config.ParseDurationOrDefault("server.write_timeout", cfg.Server.WriteTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		CORSOrigins:  cfg.Server.CORSOrigins,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, store, authSvc, eng, dispatcher, sched, log)

	return &App{
		cfgm:   cfgm,
		logs:   logSvc,
		log:    log,
		store:  store,
		sched:  sched,
		srv:    srv,
		srvErr: make(chan error, 1),
	}, nil
}

// Start brings up the scheduler, registers maintenance crons, starts the
// config watcher and the HTTP listener.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	a.sched.Start(runCtx)

	if err := a.sched.AddCron("scheduler:report", "@hourly", func(context.Context) {
		snap := a.sched.TakeSnapshot()
		a.log.Info("scheduler report",
			logx.Int("pending", len(snap.Pending)),
			logx.Int("in_flight", snap.InFlight),
			logx.Int("history", len(snap.History)))
	}); err != nil {
		return err
	}

	a.cfgCh = a.cfgm.Subscribe(1)
	go a.reloadLoop(runCtx)
	go func() {
		if err := a.cfgm.Watch(runCtx); err != nil && runCtx.Err() == nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	go func() {
		a.srvErr <- a.srv.Start()
	}()
	return nil
}

// Err reports a fatal listener failure.
func (a *App) Err() <-chan error { return a.srvErr }

// Stop shuts down in reverse start order: listener first so no new work
// arrives, then the scheduler (draining in-flight jobs), then storage.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("shutting down")
	if a.cancel != nil {
		a.cancel()
	}

	shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(shCtx); err != nil {
		a.log.Warn("http shutdown", logx.Err(err))
	}
	a.sched.Stop(shCtx)
	if err := a.store.Close(); err != nil {
		a.log.Warn("storage close", logx.Err(err))
	}
	return a.logs.Close()
}

// reloadLoop applies hot-reloadable config sections. Messaging credentials
// and the listen address need a restart; logging and scheduler limits do not.
func (a *App) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-a.cfgCh:
			if !ok {
				return
			}
			a.logs.Apply(logCfg(cfg))
			schedCfg, err := mapSchedulerConfig(cfg)
			if err != nil {
				a.log.Warn("reload: bad scheduler config", logx.Err(err))
				continue
			}
			a.sched.Apply(schedCfg)
			a.log.Info("config reloaded")
		}
	}
}

func logCfg(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapSchedulerConfig(cfg *config.Config) (scheduler.Config, error) {
	taskTimeout, err := config.ParseDurationOrDefault("scheduler.task_timeout", cfg.Scheduler.TaskTimeout, scheduler.DefaultTaskTimeout)
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		HistorySize: cfg.Scheduler.HistorySize,
		TaskTimeout: taskTimeout,
	}, nil
}

// Addr echoes the configured listen address, useful for sd_notify status.
func (a *App) Addr() string {
	cfg := a.cfgm.Get()
	if cfg == nil {
		return ""
	}
	return cfg.Server.Addr
}
