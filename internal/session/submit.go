package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nicorema/wedding/internal/scores"
)

// Submit sends the finished game's time under name to the Scorer.
//
// Preconditions: the game is won and no score was submitted yet. The name is
// trimmed and must be 1..50 characters. On success the session is marked
// submitted; on failure it is not, so the player can retry. If the game is
// reset while the call is in flight, its outcome no longer touches the session.
func (s *Session) Submit(ctx context.Context, name string) (scores.Score, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return scores.Score{}, ErrClosed
	}
	switch {
	case !s.won:
		s.mu.Unlock()
		return scores.Score{}, ErrNotWon
	case s.submitted:
		s.mu.Unlock()
		return scores.Score{}, ErrAlreadySubmitted
	case s.submitting:
		s.mu.Unlock()
		return scores.Score{}, ErrSubmitting
	}
	name, err := scores.NormalizeName(name)
	if err != nil {
		s.mu.Unlock()
		return scores.Score{}, err
	}
	if s.cfg.Scorer == nil {
		s.mu.Unlock()
		return scores.Score{}, ErrNoScorer
	}
	gen := s.generation
	seconds := s.timer.Elapsed(s.cfg.Clock())
	s.submitting = true
	s.playerName = name
	s.mu.Unlock()

	sc, err := s.cfg.Scorer.Submit(ctx, name, seconds)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Debug().Str("session", s.id).Msg("submission finished after reset; ignored")
		return sc, err
	}
	s.submitting = false
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("submit score")
		return scores.Score{}, fmt.Errorf("submit score: %w", err)
	}
	s.submitted = true
	log.Info().Str("session", s.id).Str("name", name).Int("time", seconds).Msg("score submitted")
	return sc, nil
}

// BestTime asks the Scorer for the current record. It returns nil when
// there is no Scorer or no score yet.
func (s *Session) BestTime(ctx context.Context) (*scores.Best, error) {
	if s.cfg.Scorer == nil {
		return nil, nil
	}
	return s.cfg.Scorer.BestTime(ctx)
}
