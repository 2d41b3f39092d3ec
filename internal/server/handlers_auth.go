package server

import (
	"errors"
	"net/http"
	"strings"

	"engagesphere/internal/auth"
	"engagesphere/internal/engage"
	"engagesphere/internal/model"
	"engagesphere/internal/storage"
	"engagesphere/pkg/logx"
)

type userResponse struct {
	ID            int64    `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	JobTitle      string   `json:"job_title,omitempty"`
	Interests     []string `json:"interests"`
	IsAdmin       bool     `json:"is_admin"`
	ContactMethod string   `json:"contact_method"`
}

func toUserResponse(u *model.User) userResponse {
	interests := u.InterestList()
	if interests == nil {
		interests = []string{}
	}
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		JobTitle:      u.JobTitle,
		Interests:     interests,
		IsAdmin:       u.IsAdmin,
		ContactMethod: u.ContactMethod,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		JobTitle string `json:"job_title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "email, password and name are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The first account on a fresh database becomes the admin.
	count, err := s.store.CountUsers(r.Context())
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	user := &model.User{
		Email:          req.Email,
		Name:           strings.TrimSpace(req.Name),
		HashedPassword: hashed,
		JobTitle:       strings.TrimSpace(req.JobTitle),
		IsAdmin:        count == 0,
		ContactMethod:  model.ContactEmail,
	}
	id, err := s.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeWorkflowError(w, err)
		return
	}
	user.ID = id

	token, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.log.Info("user signed up", logx.Int64("user", id), logx.Bool("admin", user.IsAdmin))
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.FindUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		// Same reply for unknown email and bad password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *model.User) {
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Name      string   `json:"name"`
		JobTitle  string   `json:"job_title"`
		Interests []string `json:"interests"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = user.Name
	}
	interests := engage.JoinInterests(engage.DeriveInterests(req.Interests, "", ""))
	if err := s.store.UpdateUserProfile(r.Context(), user.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.JobTitle), interests); err != nil {
		writeWorkflowError(w, err)
		return
	}
	user.Name = strings.TrimSpace(req.Name)
	user.JobTitle = strings.TrimSpace(req.JobTitle)
	user.Interests = interests
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		ContactMethod  string `json:"contact_method"`
		PhoneNumber    string `json:"phone_number"`
		TelegramChatID int64  `json:"telegram_chat_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.ContactMethod {
	case model.ContactEmail, model.ContactWhatsApp, model.ContactTelegram:
	default:
		writeError(w, http.StatusBadRequest, "contact_method must be email, whatsapp or telegram")
		return
	}
	if err := s.store.UpdateUserContact(r.Context(), user.ID, req.ContactMethod, strings.TrimSpace(req.PhoneNumber), req.TelegramChatID); err != nil {
		writeWorkflowError(w, err)
		return
	}
	user.ContactMethod = req.ContactMethod
	user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	user.TelegramChatID = req.TelegramChatID
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
