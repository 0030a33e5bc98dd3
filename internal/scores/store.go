// internal/scores/store.go
//
// SQLite-backed score persistence for the word-search leaderboard.
// Exposes:
//   - Submit:   record a finished game (name, seconds)
//   - BestTime: lowest recorded time, or nil when no score exists yet
//   - List:     ranking ordered by time ASC, then created_at ASC

package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nicorema/wedding/internal/database"
)

// MaxNameLength bounds player names, in characters.
const MaxNameLength = 50

var (
	ErrEmptyName    = errors.New("name is required")
	ErrNameTooLong  = fmt.Errorf("name must be at most %d characters", MaxNameLength)
	ErrNegativeTime = errors.New("time must be a positive number")
)

// Score is a stored leaderboard entry.
type Score struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Time      int       `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// Best is the current record holder.
type Best struct {
	Time int    `json:"bestTime"`
	Name string `json:"name"`
}

// NormalizeName trims name and checks it is non-empty and within MaxNameLength.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, now: time.Now} }

// Submit validates and inserts a score.
func (s *Store) Submit(ctx context.Context, name string, seconds int) (Score, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Score{}, err
	}
	if seconds < 0 {
		return Score{}, ErrNegativeTime
	}
	sc := Score{Name: name, Time: seconds, CreatedAt: s.now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores(name, time, created_at) VALUES (?, ?, ?)`,
		sc.Name, sc.Time, database.FormatTime(sc.CreatedAt),
	)
	if err != nil {
		return Score{}, fmt.Errorf("insert score: %w", err)
	}
	sc.ID, _ = res.LastInsertId()
	return sc, nil
}

// BestTime returns the lowest time; ties go to the earliest submission.
// It returns nil, nil when there are no scores.
func (s *Store) BestTime(ctx context.Context) (*Best, error) {
	var b Best
	err := s.db.QueryRowContext(ctx, `
        SELECT time, name FROM scores
        ORDER BY time ASC, created_at ASC, id ASC
        LIMIT 1`,
	).Scan(&b.Time, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("best score: %w", err)
	}
	return &b, nil
}

// List returns the ranking. limit <= 0 returns every score.
func (s *Store) List(ctx context.Context, limit int) ([]Score, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, time, created_at
        FROM scores
        ORDER BY time ASC, created_at ASC, id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Score{}
	for rows.Next() {
		var (
			sc      Score
			created string
		)
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Time, &created); err != nil {
			return nil, err
		}
		sc.CreatedAt = database.ParseTime(created)
		out = append(out, sc)
	}
	return out, rows.Err()
}
