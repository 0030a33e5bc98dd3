// internal/messages/store.go
//
// Guestbook persistence with moderation.
// New messages start Pending and only Approved ones are public.
// Moderators move messages between Pending/Approved/Denied or delete them.

package messages

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

const (
	MaxNameLength    = 50
	MaxMessageLength = 500
)

// Status is the moderation state of a message.
type Status string

const (
	Pending  Status = "Pending"
	Approved Status = "Approved"
	Denied   Status = "Denied"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case Pending, Approved, Denied:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("message not found")
	ErrInvalidStatus  = errors.New("status must be one of Pending, Approved, Denied")
	ErrEmptyName      = errors.New("name and message are required")
	ErrEmptyMessage   = ErrEmptyName
	ErrNameTooLong    = fmt.Errorf("name must be at most %d characters", MaxNameLength)
	ErrMessageTooLong = fmt.Errorf("message must be at most %d characters", MaxMessageLength)
)

// Message is a guestbook entry.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, now: time.Now} }

// Create validates and stores a new Pending message.
func (s *Store) Create(ctx context.Context, name, body string) (Message, error) {
	name, body = strings.TrimSpace(name), strings.TrimSpace(body)
	switch {
	case name == "":
		return Message{}, ErrEmptyName
	case body == "":
		return Message{}, ErrEmptyMessage
	case utf8.RuneCountInString(name) > MaxNameLength:
		return Message{}, ErrNameTooLong
	case utf8.RuneCountInString(body) > MaxMessageLength:
		return Message{}, ErrMessageTooLong
	}

	m := Message{Name: name, Message: body, Status: Pending, CreatedAt: s.now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages(name, message, status, created_at) VALUES (?, ?, ?, ?)`,
		m.Name, m.Message, string(m.Status), database.FormatTime(m.CreatedAt),
	)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	m.ID, _ = res.LastInsertId()
	return m, nil
}

// Approved returns public messages, newest first.
func (s *Store) Approved(ctx context.Context) ([]Message, error) {
	return s.list(ctx, Approved)
}

// Pending returns messages awaiting moderation, newest first.
func (s *Store) Pending(ctx context.Context) ([]Message, error) {
	return s.list(ctx, Pending)
}

// All returns every message regardless of status, newest first.
func (s *Store) All(ctx context.Context) ([]Message, error) {
	return s.list(ctx, "")
}

// Get loads one message by id.
func (s *Store) Get(ctx context.Context, id int64) (Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, message, status, created_at FROM messages WHERE id=?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	return m, err
}

// SetStatus moves a message to status and returns the updated row.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) (Message, error) {
	if !status.Valid() {
		return Message{}, ErrInvalidStatus
	}
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET status=? WHERE id=?`, string(status), id)
	if err != nil {
		return Message{}, fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Message{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a message permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) list(ctx context.Context, status Status) ([]Message, error) {
	q := `SELECT id, name, message, status, created_at FROM messages`
	args := []any{}
	if status != "" {
		q += ` WHERE status=?`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (Message, error) {
	var (
		m       Message
		status  string
		created string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Message, &status, &created); err != nil {
		return Message{}, err
	}
	m.Status = Status(status)
	m.CreatedAt = database.ParseTime(created)
	return m, nil
}
