// internal/httpserver/server.go
//
// HTTP server wiring for the wedding word-search backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery, JSON, CORS).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: /api/game/* (routes_game.go), timer feed (timer_ws.go).
//   - Leaderboard + guestbook endpoints: /api/scores, /api/messages (routes_public.go).
//   - Moderation console: /api/admin/* behind JWT (routes_admin.go, auth.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the admin cookie works).
//   - Errors are JSON bodies of the form {"error": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/nicorema/wedding/internal/config"
	"github.com/nicorema/wedding/internal/messages"
	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/session"
	"github.com/nicorema/wedding/internal/store"
	"github.com/nicorema/wedding/internal/words"
	"github.com/nicorema/wedding/internal/wordsearch"
)

// handlerTimeout bounds plain request handlers. The websocket feed is exempt.
const handlerTimeout = 10 * time.Second

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config   *config.Config
	Sessions store.Store
	Scores   *scores.Store
	Messages *messages.Store
	Words    words.List

	// NewGenerator builds the grid generator for each new game. Nil uses a
	// randomly seeded generator of Config.Game.GridSize.
	NewGenerator func() *wordsearch.Generator
	// Clock overrides time.Now for sessions and tokens.
	Clock func() time.Time
}

// Server bundles router, session registry and the SQLite-backed stores.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	sessions store.Store
	scores   *scores.Store
	messages *messages.Store
	words    words.List
	newGen   func() *wordsearch.Generator
	now      func() time.Time
	admin    *adminAuth
	upgrader websocket.Upgrader

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) (*Server, error) {
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewGenerator == nil {
		size := d.Config.Game.GridSize
		d.NewGenerator = func() *wordsearch.Generator { return wordsearch.NewGenerator(size) }
	}
	admin, err := newAdminAuth(d.Config.Admin, d.Config.IsProduction(), d.Clock)
	if err != nil {
		return nil, err
	}

	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		sessions: d.Sessions,
		scores:   d.Scores,
		messages: d.Messages,
		words:    d.Words,
		newGen:   d.NewGenerator,
		now:      d.Clock,
		admin:    admin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.upgrader.CheckOrigin = s.checkOrigin

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // request-scoped logger
	s.r.Use(accessLog)                   // one line per request
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(jsonContentType)             // default JSON responses
	s.r.Use(s.cors)                      // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wedding-wordsearch",
			"endpoints": []string{"/health", "/api/game", "/api/scores", "/api/messages", "/api/admin/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Len()})
	})

	s.r.Route("/api", func(r chi.Router) {
		// The websocket handler outlives any handler timeout.
		r.Get("/game/{id}/timer", s.handleTimerFeed)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(handlerTimeout))
			s.mountGame(r)
			s.mountPublic(r)
			s.mountAdmin(r)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// ServeHTTP lets the server be mounted or driven by httptest directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	hs := s.http
	s.mu.Unlock()

	err := hs.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
// A Start that has not begun yet returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	hs := s.http
	s.mu.Unlock()
	if hs == nil {
		return nil
	}
	return hs.Shutdown(ctx)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.Server.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin admits websocket upgrades from the client origin, or any
// origin outside production.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || !s.cfg.IsProduction() {
		return true
	}
	return origin == s.cfg.Server.ClientOrigin
}

// accessLog writes one structured line per request through the
// request-scoped zerolog logger.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			hlog.FromRequest(r).Info().
				Str("req_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("size", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, messages.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotStarted),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, session.ErrNotWon),
		errors.Is(err, session.ErrAlreadySubmitted),
		errors.Is(err, session.ErrSubmitting):
		return http.StatusConflict
	case errors.Is(err, session.ErrOutOfGrid),
		errors.Is(err, session.ErrNoLayout),
		errors.Is(err, scores.ErrEmptyName),
		errors.Is(err, scores.ErrNameTooLong),
		errors.Is(err, scores.ErrNegativeTime),
		errors.Is(err, messages.ErrEmptyName),
		errors.Is(err, messages.ErrNameTooLong),
		errors.Is(err, messages.ErrMessageTooLong),
		errors.Is(err, messages.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoScorer):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Unexpected errors are logged and
// reported without internals.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal_error")
		return
	}
	writeError(w, status, err.Error())
}
