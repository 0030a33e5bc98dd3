// internal/httpserver/routes_public.go
//
// Leaderboard and guestbook endpoints used by the wedding site:
//   - GET  /api/scores/best → {"bestTime": int|null, "name": string}
//   - POST /api/scores      → record a finished game {name, time}
//   - GET  /api/messages    → approved guestbook messages, newest first
//   - POST /api/messages    → leave a message (enters moderation as Pending)
//   - GET  /api/health      → liveness probe

package httpserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var (
	errNameAndTime    = errors.New("Name and time are required")
	errInvalidTime    = errors.New("Time must be a valid number")
	errNameAndMessage = errors.New("Name and message are required")
)

type scoreReq struct {
	Name string          `json:"name"`
	Time json.RawMessage `json:"time"`
}

type messageReq struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// bestRes keeps "bestTime" present (as null) when nobody has scored yet.
type bestRes struct {
	BestTime *int   `json:"bestTime"`
	Name     string `json:"name,omitempty"`
}

func (s *Server) mountPublic(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Backend is running"})
	})

	r.Get("/scores/best", s.handleBestScore)
	r.Post("/scores", s.handleSubmitScore)
	r.Get("/messages", s.handleApprovedMessages)
	r.Post("/messages", s.handleCreateMessage)
}

func (s *Server) handleBestScore(w http.ResponseWriter, r *http.Request) {
	best, err := s.scores.BestTime(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	var res bestRes
	if best != nil {
		res.BestTime, res.Name = &best.Time, best.Name
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var body scoreReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(body.Name) == "" || len(body.Time) == 0 || string(body.Time) == "null" {
		writeError(w, http.StatusBadRequest, errNameAndTime.Error())
		return
	}
	seconds, err := parseSeconds(body.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := s.scores.Submit(r.Context(), body.Name, seconds)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// parseSeconds accepts a JSON number or a numeric string and truncates
// fractions. Negative values are left to the score store to reject.
func parseSeconds(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, errInvalidTime
		}
		return int(f), nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			return n, nil
		}
	}
	return 0, errInvalidTime
}

func (s *Server) handleApprovedMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.messages.Approved(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var body messageReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if body.Name == "" || body.Message == "" {
		writeError(w, http.StatusBadRequest, errNameAndMessage.Error())
		return
	}
	m, err := s.messages.Create(r.Context(), body.Name, body.Message)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
