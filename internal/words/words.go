// internal/words/words.go
//
// Word list management for the word-search puzzle.
//
// Responsibilities:
//   - Load the puzzle words from an operator-provided file or fall back to the
//     embedded default list.
//   - Normalize entries (trim, uppercase) and validate them against the grid.
//   - Provide a List type with fast membership checks for the matcher.
//
// Word list rules:
//   • Only letters A–Z after normalization.
//   • No duplicates.
//   • Every word must fit in the grid (len ≤ grid size).
//
// Environment variables (read by the config package, passed in here):
//   WORDS_FILE=/path/to/words.txt

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nicorema/wedding/assets"
)

var (
	ErrEmptyList   = errors.New("words: list is empty")
	ErrInvalidWord = errors.New("words: only letters A-Z are allowed")
	ErrDuplicate   = errors.New("words: duplicate entry")
	ErrTooLong     = errors.New("words: word does not fit in grid")
)

// List is an ordered, validated set of uppercase puzzle words.
type List struct {
	words []string
	set   map[string]struct{}
}

// New validates ws against gridSize and builds a List.
// Entries are trimmed and uppercased before validation.
func New(ws []string, gridSize int) (List, error) {
	norm := make([]string, 0, len(ws))
	for _, w := range ws {
		norm = append(norm, normalize(w))
	}
	if err := Validate(norm, gridSize); err != nil {
		return List{}, err
	}
	return List{words: norm, set: toSet(norm)}, nil
}

// MustNew is New for static lists known to be valid; it panics otherwise.
func MustNew(ws []string, gridSize int) List {
	l, err := New(ws, gridSize)
	if err != nil {
		panic(err)
	}
	return l
}

// Load reads the list from path, or from the embedded default when path is empty.
func Load(path string, gridSize int) (List, error) {
	var (
		raw []string
		err error
	)
	if path != "" {
		raw, err = readWordFile(path)
	} else {
		raw, err = assets.WordSearchList()
	}
	if err != nil {
		return List{}, fmt.Errorf("load words: %w", err)
	}
	return New(raw, gridSize)
}

// Validate checks already-normalized words against the list rules.
func Validate(ws []string, gridSize int) error {
	if len(ws) == 0 {
		return ErrEmptyList
	}
	seen := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		if w == "" || !isUpperAlpha(w) {
			return fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
		if len(w) > gridSize {
			return fmt.Errorf("%w: %q (%d > %d)", ErrTooLong, w, len(w), gridSize)
		}
		if _, dup := seen[w]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicate, w)
		}
		seen[w] = struct{}{}
	}
	return nil
}

// Words returns a copy of the list in its original order.
func (l List) Words() []string {
	return append([]string(nil), l.words...)
}

// Len reports the number of words.
func (l List) Len() int { return len(l.words) }

// Contains reports whether w is one of the puzzle words (exact, uppercase).
func (l List) Contains(w string) bool {
	_, ok := l.set[w]
	return ok
}

// readWordFile loads one word per line, skipping blanks and # comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func normalize(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isUpperAlpha reports whether s is all uppercase ASCII letters.
func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
