// internal/session/session.go
//
// Game session for one word-search play-through.
// Responsibilities:
//   - Own the grid, placements and found-word state for a single player.
//   - Drive the selection tracker from press/move/release/leave gestures.
//   - Match released selections and detect the win.
//   - Run the session timer and its 100 ms tick loop (published to subscribers).
//   - Run the score submission flow against a Scorer.
//
// Concurrency:
//   - Every exported method is safe for concurrent use (one mutex per session).
//   - The tick goroutine and the selection clear timer are owned by the session
//     and are stopped by win, Reset and Close. Close waits for the tick goroutine.
//   - The Scorer call in Submit runs without holding the lock; a Reset while it
//     is in flight discards its outcome.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/words"
	"github.com/nicorema/wedding/internal/wordsearch"
)

const (
	// TickInterval is the timer recomputation period.
	TickInterval = 100 * time.Millisecond
	// ClearDelay is how long a released selection stays highlighted.
	ClearDelay = 500 * time.Millisecond
)

var (
	ErrClosed           = errors.New("session closed")
	ErrNotStarted       = errors.New("game not started")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrOutOfGrid        = errors.New("cell outside grid")
	ErrNoLayout         = errors.New("grid layout not reported")
	ErrNotWon           = errors.New("game not finished")
	ErrAlreadySubmitted = errors.New("score already submitted")
	ErrSubmitting       = errors.New("score submission in progress")
	ErrNoScorer         = errors.New("score service unavailable")
)

// Scorer is the remote score collaborator.
type Scorer interface {
	// BestTime returns the record, or nil when nobody has scored yet.
	BestTime(ctx context.Context) (*scores.Best, error)
	// Submit persists a score and returns it.
	Submit(ctx context.Context, name string, seconds int) (scores.Score, error)
}

// Config carries a session's collaborators. Zero durations and a nil Clock
// fall back to the package defaults.
type Config struct {
	Words      words.List
	Generator  *wordsearch.Generator
	Scorer     Scorer
	Clock      func() time.Time
	Tick       time.Duration
	ClearDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Generator == nil {
		c.Generator = wordsearch.NewGenerator(wordsearch.DefaultSize)
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Tick <= 0 {
		c.Tick = TickInterval
	}
	if c.ClearDelay <= 0 {
		c.ClearDelay = ClearDelay
	}
	return c
}

// Tick is one timer update delivered to subscribers.
type Tick struct {
	Elapsed int  `json:"elapsed"`
	Running bool `json:"running"`
}

// ReleaseResult describes what a drag release did.
type ReleaseResult struct {
	Selection []wordsearch.Cell `json:"selection"`
	Word      string            `json:"word,omitempty"` // list entry matched, if any
	New       bool              `json:"new"`            // first time this word was found
	Won       bool              `json:"won"`            // this release completed the puzzle
}

// Session is a single player's game. Create with New.
type Session struct {
	id  string
	cfg Config

	mu         sync.Mutex
	generation uint64 // bumped on Reset
	grid       wordsearch.Grid
	placed     []wordsearch.PlacedWord
	found      []string
	foundSet   map[string]struct{}
	foundCells []wordsearch.Cell
	tracker    wordsearch.Tracker
	layout     *wordsearch.Layout
	timer      Timer
	won        bool
	submitted  bool
	submitting bool
	playerName string
	lastActive time.Time

	clearTimer *time.Timer
	clearSeq   uint64

	tickStop chan struct{}
	subs     map[chan Tick]struct{}
	wg       sync.WaitGroup
	closed   bool
}

// New creates a session and generates its first grid.
func New(id string, cfg Config) *Session {
	s := &Session{
		id:   id,
		cfg:  cfg.withDefaults(),
		subs: make(map[chan Tick]struct{}),
	}
	s.generateLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Scorer returns the configured score collaborator (may be nil).
func (s *Session) Scorer() Scorer { return s.cfg.Scorer }

// generateLocked replaces the grid and clears all per-game state.
func (s *Session) generateLocked() {
	s.grid, s.placed = s.cfg.Generator.Generate(s.cfg.Words.Words())
	if len(s.placed) < s.cfg.Words.Len() {
		log.Warn().Str("session", s.id).
			Int("placed", len(s.placed)).
			Int("words", s.cfg.Words.Len()).
			Msg("not every word fit the grid; game cannot be won")
	}
	s.found = nil
	s.foundSet = make(map[string]struct{})
	s.foundCells = nil
	s.tracker = wordsearch.Tracker{}
	s.timer.Reset()
	s.won = false
	s.submitted = false
	s.submitting = false
	s.playerName = ""
	s.lastActive = s.cfg.Clock()
}

// Start begins the timer (NotStarted → Running) and the tick loop.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	now := s.cfg.Clock()
	s.lastActive = now
	if !s.timer.Start(now) {
		return ErrAlreadyStarted
	}
	s.startTickerLocked()
	log.Debug().Str("session", s.id).Msg("game started")
	return nil
}

// Reset discards the current game and generates a new grid. Found words,
// highlights, selection, timer, submission flag and player name are cleared.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stopTickerLocked()
	s.cancelClearLocked()
	s.generation++
	s.generateLocked()
	s.broadcastLocked(Tick{Elapsed: 0, Running: false})
	log.Debug().Str("session", s.id).Uint64("generation", s.generation).Msg("game reset")
	return nil
}

// Press starts a drag on c.
func (s *Session) Press(c wordsearch.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playableLocked(); err != nil {
		return err
	}
	if !s.grid.In(c) {
		return ErrOutOfGrid
	}
	s.cancelClearLocked()
	s.tracker.Press(c)
	return nil
}

// Move extends the live selection toward c. It reports whether a drag was
// in progress.
func (s *Session) Move(c wordsearch.Cell) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playableLocked(); err != nil {
		return false, err
	}
	if !s.grid.In(c) {
		return false, ErrOutOfGrid
	}
	return s.tracker.Move(c), nil
}

// SetLayout records the rendered cell geometry used by TouchMove.
func (s *Session) SetLayout(l wordsearch.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = &l
}

// TouchMove resolves a touch coordinate against the layout and moves the
// selection to the cell under it. Points that miss every cell are ignored.
func (s *Session) TouchMove(x, y float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playableLocked(); err != nil {
		return false, err
	}
	if s.layout == nil {
		return false, ErrNoLayout
	}
	c, ok := s.layout.CellAt(x, y)
	if !ok || !s.grid.In(c) {
		return false, nil
	}
	return s.tracker.Move(c), nil
}

// Release ends the drag and matches the final selection. The selection stays
// visible for ClearDelay. Releasing with no drag in progress is a no-op.
func (s *Session) Release() (ReleaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playableLocked(); err != nil {
		return ReleaseResult{}, err
	}
	sel, ok := s.tracker.Release()
	if !ok {
		return ReleaseResult{}, nil
	}
	res := ReleaseResult{Selection: sel}
	if w, ok := wordsearch.Match(sel, s.grid, s.cfg.Words); ok {
		res.Word = w
		res.New, res.Won = s.recordLocked(w, sel)
	}
	s.scheduleClearLocked()
	return res, nil
}

// Leave aborts a drag without matching (pointer left the grid).
func (s *Session) Leave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lastActive = s.cfg.Clock()
	s.tracker.Leave()
	return nil
}

// recordLocked adds w to the found set. It reports whether w was new and
// whether this find won the game.
func (s *Session) recordLocked(w string, sel []wordsearch.Cell) (isNew, won bool) {
	if _, dup := s.foundSet[w]; dup {
		return false, false
	}
	s.foundSet[w] = struct{}{}
	s.found = append(s.found, w)
	s.foundCells = append(s.foundCells, sel...)
	log.Debug().Str("session", s.id).Str("word", w).Int("found", len(s.found)).Msg("word found")

	if s.won || len(s.found) != s.cfg.Words.Len() {
		return true, false
	}
	now := s.cfg.Clock()
	s.won = true
	s.timer.Stop(now)
	s.stopTickerLocked()
	elapsed := s.timer.Elapsed(now)
	s.broadcastLocked(Tick{Elapsed: elapsed, Running: false})
	log.Info().Str("session", s.id).Int("elapsed", elapsed).Msg("puzzle solved")
	return true, true
}

// playableLocked gates gestures: the grid is hidden until the game starts.
func (s *Session) playableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.timer.State() == NotStarted {
		return ErrNotStarted
	}
	s.lastActive = s.cfg.Clock()
	return nil
}

// scheduleClearLocked hides the released selection after ClearDelay. A newer
// press, reset or close cancels it.
func (s *Session) scheduleClearLocked() {
	s.cancelClearLocked()
	seq := s.clearSeq
	s.clearTimer = time.AfterFunc(s.cfg.ClearDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.clearSeq != seq {
			return
		}
		s.tracker.Clear()
		s.clearTimer = nil
	})
}

func (s *Session) cancelClearLocked() {
	s.clearSeq++
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

/* ------------------------------ tick loop -------------------------------- */

func (s *Session) startTickerLocked() {
	stop := make(chan struct{})
	s.tickStop = stop
	s.wg.Add(1)
	go s.tickLoop(stop)
}

func (s *Session) stopTickerLocked() {
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
}

func (s *Session) tickLoop(stop <-chan struct{}) {
	defer s.wg.Done()
	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			select {
			case <-stop:
				s.mu.Unlock()
				return
			default:
			}
			s.broadcastLocked(Tick{Elapsed: s.timer.Elapsed(s.cfg.Clock()), Running: true})
			s.mu.Unlock()
		}
	}
}

// Subscribe returns a channel of timer ticks and a cancel func. Slow
// subscribers only ever see the latest tick. The channel is closed by
// cancel or by Close.
func (s *Session) Subscribe() (<-chan Tick, func()) {
	ch := make(chan Tick, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	ch <- Tick{Elapsed: s.timer.Elapsed(s.cfg.Clock()), Running: s.timer.State() == Running}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) broadcastLocked(t Tick) {
	for ch := range s.subs {
		select {
		case ch <- t:
		default:
			// Replace the stale tick with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- t:
			default:
			}
		}
	}
}

// Close tears the session down: stops the tick loop and the clear timer,
// closes subscriber channels and waits for the tick goroutine to exit.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTickerLocked()
	s.cancelClearLocked()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

/* ------------------------------ read side -------------------------------- */

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	ID         string            `json:"id"`
	Size       int               `json:"size"`
	Grid       wordsearch.Grid   `json:"grid"`
	Words      []string          `json:"words"`
	Found      []string          `json:"found"`
	FoundCells []wordsearch.Cell `json:"foundCells"`
	Selection  []wordsearch.Cell `json:"selection"`
	Drag       *wordsearch.Drag  `json:"drag,omitempty"`
	Timer      TimerState        `json:"timer"`
	Elapsed    int               `json:"elapsed"`
	Started    bool              `json:"started"`
	Won        bool              `json:"won"`
	Submitted  bool              `json:"submitted"`
	PlayerName string            `json:"playerName,omitempty"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Size:       s.grid.Size(),
		Grid:       s.grid.Clone(),
		Words:      s.cfg.Words.Words(),
		Found:      append([]string{}, s.found...),
		FoundCells: append([]wordsearch.Cell{}, s.foundCells...),
		Selection:  append([]wordsearch.Cell{}, s.tracker.Selection()...),
		Timer:      s.timer.State(),
		Elapsed:    s.timer.Elapsed(s.cfg.Clock()),
		Started:    s.timer.State() != NotStarted,
		Won:        s.won,
		Submitted:  s.submitted,
		PlayerName: s.playerName,
	}
	if d, ok := s.tracker.Dragging(); ok {
		snap.Drag = &d
	}
	return snap
}

// Placements returns where the generator put each word.
func (s *Session) Placements() []wordsearch.PlacedWord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wordsearch.PlacedWord(nil), s.placed...)
}

// LastActive is the time of the last gesture or lifecycle call.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
