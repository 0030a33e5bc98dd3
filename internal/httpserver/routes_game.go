// internal/httpserver/routes_game.go
//
// HTTP routes for word-search play. The browser renders the grid and
// forwards pointer/touch gestures; all game rules run in the session.
//
//   - POST   /api/game               → new session (grid generated, timer not started)
//   - GET    /api/game/{id}          → snapshot + current record
//   - DELETE /api/game/{id}          → close session
//   - POST   /api/game/{id}/start    → start timer, unlock the grid
//   - POST   /api/game/{id}/reset    → new grid, everything cleared
//   - POST   /api/game/{id}/press    → {row,col} begin drag
//   - POST   /api/game/{id}/move     → {row,col} extend drag
//   - POST   /api/game/{id}/release  → end drag, match, maybe win
//   - POST   /api/game/{id}/leave    → pointer left the grid, abort drag
//   - PUT    /api/game/{id}/layout   → rendered cell geometry for touch hit-testing
//   - POST   /api/game/{id}/touch    → {x,y} touch move resolved through the layout
//   - POST   /api/game/{id}/score    → {name} submit the winning time

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/session"
	"github.com/nicorema/wedding/internal/wordsearch"
)

var errCellRequired = errors.New("row and col are required")

// gameRes is the snapshot plus the record to beat.
type gameRes struct {
	session.Snapshot
	Best *scores.Best `json:"best,omitempty"`
}

type cellReq struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (c cellReq) cell() (wordsearch.Cell, error) {
	if c.Row == nil || c.Col == nil {
		return wordsearch.Cell{}, errCellRequired
	}
	return wordsearch.Cell{Row: *c.Row, Col: *c.Col}, nil
}

type moveRes struct {
	Moved bool `json:"moved"`
	session.Snapshot
}

type releaseRes struct {
	Result session.ReleaseResult `json:"result"`
	Game   session.Snapshot      `json:"game"`
}

type cellRectReq struct {
	Row int `json:"row"`
	Col int `json:"col"`
	wordsearch.Rect
}

// layoutReq describes the rendered grid: either a uniform square layout
// (x, y, cellSize, gap) or an explicit per-cell table.
type layoutReq struct {
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	CellSize float64       `json:"cellSize"`
	Gap      float64       `json:"gap"`
	Cells    []cellRectReq `json:"cells"`
}

type touchReq struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type submitReq struct {
	Name string `json:"name"`
}

// mountGame registers /api/game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/start", s.handleStart)
			r.Post("/reset", s.handleReset)
			r.Post("/press", s.handlePress)
			r.Post("/move", s.handleMove)
			r.Post("/release", s.handleRelease)
			r.Post("/leave", s.handleLeave)
			r.Put("/layout", s.handleLayout)
			r.Post("/touch", s.handleTouch)
			r.Post("/score", s.handleSubmitGameScore)
		})
	})
}

// newSession builds a session wired to the score store.
func (s *Server) newSession() *session.Session {
	var scorer session.Scorer
	if s.scores != nil {
		scorer = s.scores
	}
	return session.New(uuid.NewString(), session.Config{
		Words:     s.words,
		Generator: s.newGen(),
		Scorer:    scorer,
		Clock:     s.now,
	})
}

// lookup resolves {id} or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// view renders the snapshot with the current record. A failing record
// lookup is logged and left out.
func (s *Server) view(r *http.Request, sess *session.Session) gameRes {
	res := gameRes{Snapshot: sess.Snapshot()}
	best, err := sess.BestTime(r.Context())
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("session", sess.ID()).Msg("best time lookup")
		return res
	}
	res.Best = best
	return res
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		sess.Close()
		fail(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("session", sess.ID()).Msg("game created")
	writeJSON(w, http.StatusCreated, s.view(r, sess))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, sess))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// lifecycle wraps a no-argument session operation that answers with a snapshot.
func (s *Server) lifecycle(op func(*session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookup(w, r)
		if !ok {
			return
		}
		if err := op(sess); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.view(r, sess))
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.lifecycle((*session.Session).Start)(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.lifecycle((*session.Session).Reset)(w, r)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Leave(); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	c, ok := readCell(w, r)
	if !ok {
		return
	}
	if err := sess.Press(c); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	c, ok := readCell(w, r)
	if !ok {
		return
	}
	moved, err := sess.Move(c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moveRes{Moved: moved, Snapshot: sess.Snapshot()})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, err := sess.Release()
	if err != nil {
		fail(w, r, err)
		return
	}
	if res.Won {
		hlog.FromRequest(r).Info().Str("session", sess.ID()).Msg("game won")
	}
	writeJSON(w, http.StatusOK, releaseRes{Result: res, Game: sess.Snapshot()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body layoutReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var l wordsearch.Layout
	switch {
	case len(body.Cells) > 0:
		for _, c := range body.Cells {
			l.Set(wordsearch.Cell{Row: c.Row, Col: c.Col}, c.Rect)
		}
	case body.CellSize > 0 && body.Gap >= 0:
		l = wordsearch.UniformLayout(body.X, body.Y, body.CellSize, body.Gap, sess.Snapshot().Size)
	default:
		writeError(w, http.StatusBadRequest, "cellSize must be positive or cells must be given")
		return
	}
	sess.SetLayout(l)
	writeJSON(w, http.StatusOK, map[string]int{"cells": l.Len()})
}

func (s *Server) handleTouch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body touchReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if body.X == nil || body.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	moved, err := sess.TouchMove(*body.X, *body.Y)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moveRes{Moved: moved, Snapshot: sess.Snapshot()})
}

func (s *Server) handleSubmitGameScore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body submitReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	sc, err := sess.Submit(r.Context(), body.Name)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			// Scorer failures are retryable from the client's point of view.
			hlog.FromRequest(r).Warn().Err(err).Str("session", sess.ID()).Msg("score submission failed")
			writeError(w, http.StatusBadGateway, "score submission failed, try again")
			return
		}
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// readCell decodes {row,col} or writes a 400.
func readCell(w http.ResponseWriter, r *http.Request) (wordsearch.Cell, bool) {
	var body cellReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return wordsearch.Cell{}, false
	}
	c, err := body.cell()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return wordsearch.Cell{}, false
	}
	return c, true
}
