package messages

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicorema/wedding/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore(db)
	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func names(ms []Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestCreateStartsPending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, err := s.Create(ctx, " Tía Rosa ", " ¡Felicidades! ")
	require.NoError(t, err)
	assert.Equal(t, Pending, m.Status)
	assert.Equal(t, "Tía Rosa", m.Name)
	assert.Equal(t, "¡Felicidades!", m.Message)

	approved, err := s.Approved(ctx)
	require.NoError(t, err)
	assert.Empty(t, approved, "pending messages are not public")

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tía Rosa"}, names(pending))
}

func TestModerationFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Create(ctx, "Ana", "uno")
	b, _ := s.Create(ctx, "Beto", "dos")
	c, _ := s.Create(ctx, "Caro", "tres")

	_, err := s.SetStatus(ctx, a.ID, Approved)
	require.NoError(t, err)
	updated, err := s.SetStatus(ctx, c.ID, Approved)
	require.NoError(t, err)
	assert.Equal(t, Approved, updated.Status)
	_, err = s.SetStatus(ctx, b.ID, Denied)
	require.NoError(t, err)

	approved, err := s.Approved(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Caro", "Ana"}, names(approved), "newest first")

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.Delete(ctx, a.ID))
	approved, _ = s.Approved(ctx)
	assert.Equal(t, []string{"Caro"}, names(approved))
}

func TestModerationErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m, _ := s.Create(ctx, "Ana", "hola")

	_, err := s.SetStatus(ctx, m.ID, Status("Maybe"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.SetStatus(ctx, 999, Approved)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, 999), ErrNotFound)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, "", "hola")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.Create(ctx, "Ana", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = s.Create(ctx, strings.Repeat("x", MaxNameLength+1), "hola")
	assert.ErrorIs(t, err, ErrNameTooLong)
	_, err = s.Create(ctx, "Ana", strings.Repeat("x", MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}
