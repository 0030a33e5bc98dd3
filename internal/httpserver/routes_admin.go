// internal/httpserver/routes_admin.go
//
// Moderation console endpoints under /api/admin:
//   - POST   /login                 → issue admin token (cookie + body)
//   - POST   /logout                → clear cookie
//   - GET    /me                    → current admin (gated)
//   - GET    /scores                → full ranking (gated)
//   - GET    /messages              → every message, newest first (gated)
//   - GET    /messages/pending      → moderation queue (gated)
//   - PUT    /messages/{id}/status  → approve / deny / re-queue (gated)
//   - DELETE /messages/{id}         → remove a message (gated)

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/nicorema/wedding/internal/messages"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRes struct {
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type statusReq struct {
	Status messages.Status `json:"status"`
}

// mountAdmin registers /api/admin routes.
func (s *Server) mountAdmin(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.Post("/logout", s.handleAdminLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.admin.requireAdmin)
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"username": currentAdmin(r).Subject})
			})
			r.Get("/scores", s.handleAdminScores)
			r.Get("/messages", s.handleAdminMessages)
			r.Get("/messages/pending", s.handlePendingMessages)
			r.Put("/messages/{id}/status", s.handleSetMessageStatus)
			r.Delete("/messages/{id}", s.handleDeleteMessage)
		})
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := s.admin.check(body.Username, body.Password); err != nil {
		hlog.FromRequest(r).Warn().Str("username", body.Username).Msg("admin login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	tok, exp, err := s.admin.sign()
	if err != nil {
		fail(w, r, err)
		return
	}
	s.admin.setCookie(w, tok, exp)
	hlog.FromRequest(r).Info().Str("username", s.admin.username).Msg("admin logged in")
	writeJSON(w, http.StatusOK, loginRes{Username: s.admin.username, Token: tok, ExpiresAt: exp.Unix()})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.admin.clearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAdminScores(w http.ResponseWriter, r *http.Request) {
	list, err := s.scores.List(r.Context(), 0)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.messages.All(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePendingMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.messages.Pending(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSetMessageStatus(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body statusReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	m, err := s.messages.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int64("message", id).Str("status", string(m.Status)).Msg("message moderated")
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.messages.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int64("message", id).Msg("message deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func messageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid message id")
	}
	return id, nil
}
