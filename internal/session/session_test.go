package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/words"
	"github.com/nicorema/wedding/internal/wordsearch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeScorer struct {
	mu      sync.Mutex
	calls   []scores.Score
	err     error
	gate    chan struct{} // when non-nil, Submit blocks until closed
	entered chan struct{}
	best    *scores.Best
}

func (f *fakeScorer) BestTime(context.Context) (*scores.Best, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.best, nil
}

func (f *fakeScorer) Submit(_ context.Context, name string, seconds int) (scores.Score, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return scores.Score{}, f.err
	}
	sc := scores.Score{ID: int64(len(f.calls) + 1), Name: name, Time: seconds}
	f.calls = append(f.calls, sc)
	return sc, nil
}

var testWords = []string{"AMOR", "BESO", "BODA", "NIDO"}

func newTestSession(t *testing.T, mutate func(*Config)) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cfg := Config{
		Words:      words.MustNew(testWords, 8),
		Generator:  &wordsearch.Generator{Size: 8, Attempts: wordsearch.MaxAttempts, Rand: rand.New(rand.NewPCG(42, 7))},
		Clock:      clock.Now,
		Tick:       5 * time.Millisecond,
		ClearDelay: 20 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s := New("test", cfg)
	t.Cleanup(s.Close)
	require.Len(t, s.Placements(), len(testWords), "fixture must place every word")
	return s, clock
}

func drag(t *testing.T, s *Session, from, to wordsearch.Cell) ReleaseResult {
	t.Helper()
	require.NoError(t, s.Press(from))
	_, err := s.Move(to)
	require.NoError(t, err)
	res, err := s.Release()
	require.NoError(t, err)
	return res
}

func dragWord(t *testing.T, s *Session, p wordsearch.PlacedWord) ReleaseResult {
	t.Helper()
	cells := p.Cells()
	return drag(t, s, cells[0], cells[len(cells)-1])
}

func solve(t *testing.T, s *Session) {
	t.Helper()
	for _, p := range s.Placements() {
		dragWord(t, s, p)
	}
}

func TestGesturesRequireStart(t *testing.T) {
	s, _ := newTestSession(t, nil)

	assert.ErrorIs(t, s.Press(wordsearch.Cell{}), ErrNotStarted)
	_, err := s.Move(wordsearch.Cell{})
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = s.Release()
	assert.ErrorIs(t, err, ErrNotStarted)

	snap := s.Snapshot()
	assert.False(t, snap.Started)
	assert.Equal(t, NotStarted, snap.Timer)
	assert.Equal(t, 0, snap.Elapsed)
	assert.True(t, snap.Grid.Full())
	assert.Equal(t, 8, snap.Size)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)
	assert.ErrorIs(t, s.Press(wordsearch.Cell{Row: 8, Col: 0}), ErrOutOfGrid)
}

func TestFindAllWordsWinsOnce(t *testing.T) {
	s, clock := newTestSession(t, nil)
	require.NoError(t, s.Start())
	clock.Advance(42700 * time.Millisecond)

	placed := s.Placements()
	wins := 0
	for i, p := range placed {
		res := dragWord(t, s, p)
		assert.Equal(t, p.Word, res.Word)
		assert.True(t, res.New)
		if res.Won {
			wins++
			assert.Equal(t, len(placed)-1, i, "only the last word wins")
		}
	}
	assert.Equal(t, 1, wins)

	snap := s.Snapshot()
	assert.True(t, snap.Won)
	assert.Equal(t, Stopped, snap.Timer)
	assert.Equal(t, 42, snap.Elapsed)
	assert.ElementsMatch(t, testWords, snap.Found)

	// Re-selecting after the win changes nothing.
	clock.Advance(time.Minute)
	res := dragWord(t, s, placed[0])
	assert.Equal(t, placed[0].Word, res.Word)
	assert.False(t, res.New)
	assert.False(t, res.Won)

	again := s.Snapshot()
	assert.Len(t, again.Found, len(testWords))
	assert.Equal(t, 42, again.Elapsed, "frozen after win")
}

func TestReverseDragRecordsListEntry(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())

	p := s.Placements()[0]
	cells := p.Cells()
	res := drag(t, s, cells[len(cells)-1], cells[0])
	assert.Equal(t, p.Word, res.Word)
	assert.Equal(t, []string{p.Word}, s.Snapshot().Found)
}

func TestRepeatSelectionIsIdempotent(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())

	p := s.Placements()[1]
	first := dragWord(t, s, p)
	second := dragWord(t, s, p)
	assert.True(t, first.New)
	assert.False(t, second.New)

	snap := s.Snapshot()
	assert.Equal(t, []string{p.Word}, snap.Found)
	assert.Len(t, snap.FoundCells, len(p.Word), "cells are only appended for new finds")
}

func TestNonLineSelectionMatchesNothing(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())

	res := drag(t, s, wordsearch.Cell{Row: 0, Col: 0}, wordsearch.Cell{Row: 1, Col: 3})
	assert.Equal(t, []wordsearch.Cell{{Row: 0, Col: 0}}, res.Selection)
	assert.Empty(t, res.Word)
	assert.Empty(t, s.Snapshot().Found)
}

func TestReleaseWithoutDragIsNoop(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())
	res, err := s.Release()
	require.NoError(t, err)
	assert.Empty(t, res.Selection)
}

func TestLeaveAbortsDrag(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())

	p := s.Placements()[0]
	cells := p.Cells()
	require.NoError(t, s.Press(cells[0]))
	_, err := s.Move(cells[len(cells)-1])
	require.NoError(t, err)
	require.NotNil(t, s.Snapshot().Drag)

	require.NoError(t, s.Leave())
	snap := s.Snapshot()
	assert.Nil(t, snap.Drag)
	assert.Empty(t, snap.Selection)

	res, err := s.Release()
	require.NoError(t, err)
	assert.Empty(t, res.Word)
	assert.Empty(t, s.Snapshot().Found)
}

func TestSelectionClearsAfterDelay(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())

	res := drag(t, s, wordsearch.Cell{Row: 2, Col: 2}, wordsearch.Cell{Row: 2, Col: 4})
	assert.Len(t, res.Selection, 3)
	assert.Len(t, s.Snapshot().Selection, 3, "visible right after release")

	require.Eventually(t, func() bool { return len(s.Snapshot().Selection) == 0 },
		time.Second, 5*time.Millisecond)
}

func TestPressCancelsPendingClear(t *testing.T) {
	s, _ := newTestSession(t, func(c *Config) { c.ClearDelay = 30 * time.Millisecond })
	require.NoError(t, s.Start())

	drag(t, s, wordsearch.Cell{Row: 0, Col: 0}, wordsearch.Cell{Row: 0, Col: 3})
	require.NoError(t, s.Press(wordsearch.Cell{Row: 5, Col: 5}))
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []wordsearch.Cell{{Row: 5, Col: 5}}, s.Snapshot().Selection)
}

func TestTouchMoveUsesLayout(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())
	require.NoError(t, s.Press(wordsearch.Cell{Row: 0, Col: 0}))

	_, err := s.TouchMove(5, 5)
	assert.ErrorIs(t, err, ErrNoLayout)

	s.SetLayout(wordsearch.UniformLayout(0, 0, 10, 0, 8))
	moved, err := s.TouchMove(35, 5)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Len(t, s.Snapshot().Selection, 4)

	moved, err = s.TouchMove(-5, -5)
	require.NoError(t, err)
	assert.False(t, moved, "miss leaves the selection alone")
	assert.Len(t, s.Snapshot().Selection, 4)
}

func TestResetClearsDerivedState(t *testing.T) {
	scorer := &fakeScorer{}
	s, _ := newTestSession(t, func(c *Config) { c.Scorer = scorer })
	require.NoError(t, s.Start())
	solve(t, s)
	_, err := s.Submit(context.Background(), "Ana")
	require.NoError(t, err)
	require.NoError(t, s.Press(wordsearch.Cell{Row: 1, Col: 1}))

	before := s.Snapshot()
	require.NoError(t, s.Reset())
	after := s.Snapshot()

	assert.Empty(t, after.Found)
	assert.Empty(t, after.FoundCells)
	assert.Empty(t, after.Selection)
	assert.Nil(t, after.Drag)
	assert.False(t, after.Started)
	assert.False(t, after.Won)
	assert.False(t, after.Submitted)
	assert.Empty(t, after.PlayerName)
	assert.Equal(t, NotStarted, after.Timer)
	assert.Equal(t, 0, after.Elapsed)
	assert.True(t, after.Grid.Full())
	assert.NotEqual(t, before.Grid.Rows(), after.Grid.Rows(), "a new grid is generated")
}

func TestSubmitFlow(t *testing.T) {
	ctx := context.Background()
	scorer := &fakeScorer{err: errors.New("network down")}
	s, clock := newTestSession(t, func(c *Config) { c.Scorer = scorer })

	_, err := s.Submit(ctx, "Ana")
	assert.ErrorIs(t, err, ErrNotWon)

	require.NoError(t, s.Start())
	clock.Advance(95 * time.Second)
	solve(t, s)

	_, err = s.Submit(ctx, "   ")
	assert.ErrorIs(t, err, scores.ErrEmptyName)
	assert.Empty(t, scorer.calls, "no call on local validation failure")

	_, err = s.Submit(ctx, "Ana")
	require.Error(t, err)
	assert.False(t, s.Snapshot().Submitted, "failure allows retry")

	scorer.mu.Lock()
	scorer.err = nil
	scorer.mu.Unlock()

	sc, err := s.Submit(ctx, "  Ana Luisa ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Luisa", sc.Name)
	assert.Equal(t, 95, sc.Time)

	snap := s.Snapshot()
	assert.True(t, snap.Submitted)
	assert.Equal(t, "Ana Luisa", snap.PlayerName)

	_, err = s.Submit(ctx, "Ana")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, scorer.calls, 1)
}

func TestSubmitWithoutScorer(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, s.Start())
	solve(t, s)
	_, err := s.Submit(context.Background(), "Ana")
	assert.ErrorIs(t, err, ErrNoScorer)

	best, err := s.BestTime(context.Background())
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestResetDuringSubmissionDiscardsOutcome(t *testing.T) {
	scorer := &fakeScorer{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, _ := newTestSession(t, func(c *Config) { c.Scorer = scorer })
	require.NoError(t, s.Start())
	solve(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "Ana")
		done <- err
	}()
	<-scorer.entered

	_, err := s.Submit(context.Background(), "Ana")
	assert.ErrorIs(t, err, ErrSubmitting)

	require.NoError(t, s.Reset())
	close(scorer.gate)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.False(t, snap.Submitted)
	assert.Empty(t, snap.PlayerName)
}

func TestTickFeed(t *testing.T) {
	s, clock := newTestSession(t, nil)
	ticks, cancel := s.Subscribe()
	defer cancel()

	first := <-ticks
	assert.Equal(t, Tick{Elapsed: 0, Running: false}, first)

	require.NoError(t, s.Start())
	clock.Advance(3 * time.Second)

	var got Tick
	require.Eventually(t, func() bool {
		select {
		case got = <-ticks:
		default:
		}
		return got.Running && got.Elapsed == 3
	}, time.Second, time.Millisecond)

	clock.Advance(2 * time.Second)
	solve(t, s)
	require.Eventually(t, func() bool {
		select {
		case got = <-ticks:
		default:
		}
		return !got.Running
	}, time.Second, time.Millisecond)
	assert.Equal(t, 5, got.Elapsed)
}

func TestCloseStopsEverything(t *testing.T) {
	s, _ := newTestSession(t, nil)
	ticks, _ := s.Subscribe()
	require.NoError(t, s.Start())
	drag(t, s, wordsearch.Cell{Row: 0, Col: 0}, wordsearch.Cell{Row: 0, Col: 2})

	s.Close()
	s.Close()

	for range ticks {
		// drain until closed
	}
	assert.ErrorIs(t, s.Start(), ErrClosed)
	assert.ErrorIs(t, s.Reset(), ErrClosed)
	assert.ErrorIs(t, s.Press(wordsearch.Cell{}), ErrClosed)
	assert.ErrorIs(t, s.Leave(), ErrClosed)
	_, err := s.Submit(context.Background(), "Ana")
	assert.ErrorIs(t, err, ErrClosed)

	late, _ := s.Subscribe()
	_, open := <-late
	assert.False(t, open)
}
