package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorema/wedding/internal/config"
	"github.com/nicorema/wedding/internal/database"
	"github.com/nicorema/wedding/internal/httpserver"
	"github.com/nicorema/wedding/internal/messages"
	"github.com/nicorema/wedding/internal/scores"
	"github.com/nicorema/wedding/internal/store"
	"github.com/nicorema/wedding/internal/words"
)

func run(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestPuzzleIsDeterministicPerSeed(t *testing.T) {
	ctx := context.Background()
	a, err := run(ctx, t, "", "puzzle", "--json", "--seed", "7", "--size", "15")
	require.NoError(t, err)
	b, err := run(ctx, t, "", "puzzle", "--json", "--seed", "7", "--size", "15")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var p puzzleOut
	require.NoError(t, json.Unmarshal([]byte(a), &p))
	assert.Equal(t, uint64(7), p.Seed)
	assert.Equal(t, 15, p.Grid.Size())
	require.NotEmpty(t, p.Placements)
	for _, pw := range p.Placements {
		var sb strings.Builder
		for _, c := range pw.Cells() {
			sb.WriteByte(p.Grid.Letter(c))
		}
		assert.Equal(t, pw.Word, sb.String())
	}
}

func TestPuzzleText(t *testing.T) {
	out, err := run(context.Background(), t, "", "puzzle", "--seed", "3", "--size", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "Puzzle 15x15 (seed 3)")
	assert.Contains(t, out, "COMPROMISO")
}

func TestDBViewAndFlush(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wedding.db")

	db, err := database.OpenAndMigrate(path)
	require.NoError(t, err)
	_, err = scores.NewStore(db).Submit(ctx, "Ana", 42)
	require.NoError(t, err)
	_, err = messages.NewStore(db).Create(ctx, "Luis", "Felicidades")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := run(ctx, t, "", "db", "view", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scores: 1 row(s)")
	assert.Contains(t, out, "messages: 1 row(s)")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Felicidades")

	_, err = run(ctx, t, "", "db", "view", "--db", path, "guests")
	assert.ErrorContains(t, err, `unknown table "guests"`)

	out, err = run(ctx, t, "no\n", "db", "flush", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Flush cancelled.")

	out, err = run(ctx, t, "", "db", "view", "--db", path, "scores")
	require.NoError(t, err)
	assert.Contains(t, out, "scores: 1 row(s)")

	out, err = run(ctx, t, "", "db", "flush", "--db", path, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "messages: deleted 1 row(s)")
	assert.Contains(t, out, "scores: deleted 1 row(s)")

	out, err = run(ctx, t, "", "db", "view", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scores: (empty)")
	assert.Contains(t, out, "messages: (empty)")
}

func TestRemoteCommands(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sessions := store.NewMemoryStore()
	t.Cleanup(sessions.Close)
	srv, err := httpserver.New(httpserver.Deps{
		Config:   config.DefaultConfig(),
		Sessions: sessions,
		Scores:   scores.NewStore(db),
		Messages: messages.NewStore(db),
		Words:    words.MustNew([]string{"AMOR"}, 15),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	out, err := run(ctx, t, "", "remote", "--server", ts.URL, "best")
	require.NoError(t, err)
	assert.Equal(t, "no scores yet\n", out)

	out, err = run(ctx, t, "", "remote", "--server", ts.URL, "submit", "Ana", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana 42s")

	out, err = run(ctx, t, "", "remote", "--server", ts.URL, "best")
	require.NoError(t, err)
	assert.Equal(t, "Ana 42s\n", out)

	_, err = run(ctx, t, "", "remote", "--server", ts.URL, "submit", "Ana", "soon")
	assert.ErrorContains(t, err, "seconds")

	out, err = run(ctx, t, "", "remote", "--server", ts.URL, "message", "Abuela", "Que vivan los novios")
	require.NoError(t, err)
	assert.Contains(t, out, "is Pending")

	out, err = run(ctx, t, "", "remote", "--server", ts.URL, "messages")
	require.NoError(t, err)
	assert.Empty(t, out, "pending messages stay hidden")
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "0")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := run(ctx, t, "", "serve", "--db", filepath.Join(t.TempDir(), "wedding.db"))
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
