// internal/httpserver/timer_ws.go
//
// GET /api/game/{id}/timer upgrades to a websocket and streams
// {"elapsed": int, "running": bool} every time the session timer ticks.
// The feed ends when the client disconnects or the session is closed.

package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Clients only ever send control frames.
	maxMessageSize = 512
)

func (s *Server) handleTimerFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	logger := hlog.FromRequest(r).With().Str("session", sess.ID()).Logger()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ticks, cancel := sess.Subscribe()
	logger.Debug().Msg("timer feed connected")

	// readPump: only pongs and close frames are expected.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug().Err(err).Msg("websocket read error")
				}
				return
			}
		}
	}()

	// writePump
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		cancel()
		_ = conn.Close()
		<-gone
		logger.Debug().Msg("timer feed closed")
	}()
	for {
		select {
		case <-gone:
			return
		case t, ok := <-ticks:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
