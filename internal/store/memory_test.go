package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nicorema/wedding/internal/session"
	"github.com/nicorema/wedding/internal/words"
	"github.com/nicorema/wedding/internal/wordsearch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

func newSession(id string, at time.Time) *session.Session {
	return session.New(id, session.Config{
		Words:     words.MustNew([]string{"AMOR", "BESO"}, 6),
		Generator: wordsearch.NewGenerator(6),
		Clock:     func() time.Time { return at },
	})
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	_, err := st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s := newSession("a", t0)
	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(ctx, "a"))
	assert.ErrorIs(t, st.Delete(ctx, "a"), ErrNotFound)
	assert.Equal(t, 0, st.Len())
	assert.ErrorIs(t, s.Start(), session.ErrClosed, "delete closes the session")
}

func TestSaveReplacesAndClosesOld(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	old := newSession("a", t0)
	require.NoError(t, old.Start())
	require.NoError(t, st.Save(ctx, old))
	require.NoError(t, st.Save(ctx, newSession("a", t0)))

	assert.Equal(t, 1, st.Len())
	assert.ErrorIs(t, old.Reset(), session.ErrClosed)
}

func TestSweepEvictsIdle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	stale := newSession("stale", t0)
	require.NoError(t, stale.Start())
	require.NoError(t, st.Save(ctx, stale))
	require.NoError(t, st.Save(ctx, newSession("fresh", t0.Add(90*time.Minute))))

	n := st.Sweep(t0.Add(2*time.Hour), time.Hour)
	assert.Equal(t, 1, n)

	_, err := st.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, "fresh")
	assert.NoError(t, err)
	assert.ErrorIs(t, stale.Start(), session.ErrClosed)
}

func TestRunStopsWithContext(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	require.NoError(t, st.Save(context.Background(), newSession("old", t0)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, st, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	require.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
