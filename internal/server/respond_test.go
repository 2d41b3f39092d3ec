package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"engagesphere/internal/engage"
	"engagesphere/internal/storage"
)

func TestWriteWorkflowErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"event not found", engage.ErrEventNotFound, http.StatusNotFound},
		{"user not found", engage.ErrUserNotFound, http.StatusNotFound},
		{"already registered", engage.ErrAlreadyRegistered, http.StatusConflict},
		{"storage not found", storage.ErrNotFound, http.StatusNotFound},
		{"storage duplicate", storage.ErrDuplicate, http.StatusConflict},
		{"wrapped conflict", errors.Join(errors.New("ctx"), engage.ErrAlreadyRegistered), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeWorkflowError(rec, c.err)
			if rec.Code != c.want {
				t.Fatalf("expected status %d, got %d", c.want, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %q", ct)
			}
		})
	}

	// internal errors must not leak details
	rec := httptest.NewRecorder()
	writeWorkflowError(rec, errors.New("secret detail"))
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query": "hi", "evil": true}`))
	var body struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(req, &body); err == nil {
		t.Fatalf("expected unknown-field error")
	}
}
