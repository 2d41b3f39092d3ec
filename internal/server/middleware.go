package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"engagesphere/internal/auth"
	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

type ctxKey int

const userKey ctxKey = iota

// currentUser returns the authenticated user, or nil.
func currentUser(r *http.Request) *model.User {
	u, _ := r.Context().Value(userKey).(*model.User)
	return u
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog tags each request with an id and logs method, path, status and
// latency on completion.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.log.Debug("request",
			logx.String("id", reqID),
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Int("status", rec.status),
			logx.Duration("took", time.Since(start)))
	})
}

// withUser attaches the authenticated user when a valid bearer token is
// present. It never rejects; handlers that require auth use requireUser.
func (s *Server) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.auth.ValidateToken(tok)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.store.FindUser(r.Context(), claims.UserID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requireUser wraps a handler that needs an authenticated caller.
func requireUser(h func(w http.ResponseWriter, r *http.Request, user *model.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h(w, r, user)
	}
}

// requireAdmin wraps a handler restricted to admin users.
func requireAdmin(h func(w http.ResponseWriter, r *http.Request, user *model.User)) http.HandlerFunc {
	return requireUser(func(w http.ResponseWriter, r *http.Request, user *model.User) {
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		h(w, r, user)
	})
}
