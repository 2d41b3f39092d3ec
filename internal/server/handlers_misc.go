package server

import (
	"net/http"
	"strings"

	"engagesphere/internal/model"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	reply := s.chat.Handle(r.Context(), req.Query, currentUser(r))
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchedulerSnapshot(w http.ResponseWriter, r *http.Request, _ *model.User) {
	snap := s.sched.TakeSnapshot()

	type jobView struct {
		ID  string `json:"id"`
		Due string `json:"due"`
	}
	pending := make([]jobView, 0, len(snap.Pending))
	for _, j := range snap.Pending {
		pending = append(pending, jobView{ID: j.ID, Due: j.Due.UTC().Format("2006-01-02T15:04:05Z07:00")})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pending":   pending,
		"crons":     snap.Crons,
		"in_flight": snap.InFlight,
		"history":   len(snap.History),
	})
}
