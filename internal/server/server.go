// Package server exposes the HTTP API: auth, profile, the event catalog,
// registrations, the chat surface and operational endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"engagesphere/internal/auth"
	"engagesphere/internal/chat"
	"engagesphere/internal/engage"
	"engagesphere/internal/metrics"
	"engagesphere/internal/scheduler"
	"engagesphere/internal/storage"
	"engagesphere/pkg/logx"
)

type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	cfg   Config
	store storage.Store
	auth  *auth.Service
	eng   *engage.Service
	chat  *chat.Dispatcher
	sched *scheduler.Service
	log   logx.Logger

	httpSrv *http.Server
}

func New(cfg Config, store storage.Store, authSvc *auth.Service, eng *engage.Service, chatDisp *chat.Dispatcher, sched *scheduler.Service, log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Server{
		cfg:   cfg,
		store: store,
		auth:  authSvc,
		eng:   eng,
		chat:  chatDisp,
		sched: sched,
		log:   log.With(logx.String("component", "http")),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.accessLog(c.Handler(s.withUser(mux))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/token", s.handleToken)

	mux.HandleFunc("GET /me", requireUser(s.handleMe))
	mux.HandleFunc("PUT /me/profile", requireUser(s.handleUpdateProfile))
	mux.HandleFunc("PUT /me/contact", requireUser(s.handleUpdateContact))
	mux.HandleFunc("GET /me/registrations", requireUser(s.handleMyRegistrations))

	mux.HandleFunc("GET /events", s.handleListEvents)
	mux.HandleFunc("GET /events/{id}", s.handleGetEvent)
	mux.HandleFunc("POST /events", requireAdmin(s.handleCreateEvent))
	mux.HandleFunc("DELETE /events/{id}", requireAdmin(s.handleDeleteEvent))
	mux.HandleFunc("POST /events/{id}/register", requireUser(s.handleRegister))
	mux.HandleFunc("DELETE /events/{id}/register", requireUser(s.handleUnregister))

	mux.HandleFunc("POST /chat", s.handleChat)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /debug/scheduler", requireAdmin(s.handleSchedulerSnapshot))
}

// Start blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info("http listening", logx.String("addr", s.cfg.Addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
