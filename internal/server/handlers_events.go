package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

type eventResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	EventTime    time.Time `json:"event_time"`
	ImageURL     string    `json:"image_url,omitempty"`
	RecordingURL string    `json:"recording_url,omitempty"`
}

func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		EventTime:    e.EventTime,
		ImageURL:     e.ImageURL,
		RecordingURL: e.RecordingURL,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	ev, err := s.store.FindEvent(r.Context(), id)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Name         string    `json:"name"`
		Description  string    `json:"description"`
		EventTime    time.Time `json:"event_time"`
		ImageURL     string    `json:"image_url"`
		RecordingURL string    `json:"recording_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.EventTime.IsZero() {
		writeError(w, http.StatusBadRequest, "name and event_time are required")
		return
	}
	ev := &model.Event{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		EventTime:    req.EventTime.UTC(),
		ImageURL:     req.ImageURL,
		RecordingURL: req.RecordingURL,
	}
	id, err := s.store.CreateEvent(r.Context(), ev)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	ev.ID = id
	s.log.Info("event created", logx.Int64("event", id), logx.Int64("by", user.ID))
	writeJSON(w, http.StatusCreated, toEventResponse(ev))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, user *model.User) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := s.eng.DeleteEvent(r.Context(), id); err != nil {
		writeWorkflowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, user *model.User) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	_, ev, err := s.eng.Register(r.Context(), user.ID, id)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful and communications scheduled.",
		"event":   toEventResponse(ev),
	})
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request, user *model.User) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	removed, err := s.eng.Cancel(r.Context(), user.ID, id)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "registration not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyRegistrations(w http.ResponseWriter, r *http.Request, user *model.User) {
	events, err := s.store.ListUpcomingEventsForUser(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
