// internal/wordsearch/types.go
//
// Core type definitions for the word-search engine.
// Defines:
//   - Cell: a 0-indexed grid coordinate.
//   - Direction: placement direction of a word (horizontal/vertical/diagonal).
//   - PlacedWord: where the generator put a word.
//   - Grid: the N×N letter matrix.

package wordsearch

import (
	"encoding/json"
	"strings"
)

// Cell is a 0-indexed coordinate into a Grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is the orientation a word was placed in.
// Letters always extend toward increasing row/col from the anchor.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
	Diagonal   Direction = "diagonal" // down-right
)

// Directions lists every placement direction in fallback scan order.
var Directions = []Direction{Horizontal, Vertical, Diagonal}

// step returns the per-letter row/col increment for d.
func (d Direction) step() (dr, dc int) {
	switch d {
	case Horizontal:
		return 0, 1
	case Vertical:
		return 1, 0
	case Diagonal:
		return 1, 1
	}
	return 0, 0
}

// PlacedWord records the anchor (first letter) and direction of a placed word.
type PlacedWord struct {
	Word      string    `json:"word"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
}

// Cells returns the cells the word occupies, anchor first.
func (p PlacedWord) Cells() []Cell {
	dr, dc := p.Direction.step()
	out := make([]Cell, len(p.Word))
	for i := range out {
		out[i] = Cell{Row: p.Row + i*dr, Col: p.Col + i*dc}
	}
	return out
}

// empty marks an unfilled cell during generation.
const empty byte = 0

// Grid is an N×N matrix of uppercase letters indexed [row][col].
type Grid [][]byte

// NewGrid returns an empty n×n grid.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = make([]byte, n)
	}
	return g
}

// Size is the grid dimension N.
func (g Grid) Size() int { return len(g) }

// In reports whether c lies inside the grid.
func (g Grid) In(c Cell) bool {
	return c.Row >= 0 && c.Row < len(g) && c.Col >= 0 && c.Col < len(g)
}

// Letter returns the letter at c. c must be inside the grid.
func (g Grid) Letter(c Cell) byte { return g[c.Row][c.Col] }

// Full reports whether every cell holds a letter.
func (g Grid) Full() bool {
	for _, row := range g {
		for _, b := range row {
			if b == empty {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]byte(nil), row...)
	}
	return out
}

// Rows renders each row as a string; empty cells become '.'.
func (g Grid) Rows() []string {
	out := make([]string, len(g))
	for i, row := range g {
		b := make([]byte, len(row))
		for j, c := range row {
			if c == empty {
				c = '.'
			}
			b[j] = c
		}
		out[i] = string(b)
	}
	return out
}

// String prints the grid one row per line with letters separated by spaces.
func (g Grid) String() string {
	var sb strings.Builder
	for i, row := range g.Rows() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(strings.Split(row, ""), " "))
	}
	return sb.String()
}

// MarshalJSON encodes the grid as an array of row strings.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes an array of row strings; '.' becomes an empty cell.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := make(Grid, len(rows))
	for i, r := range rows {
		out[i] = []byte(r)
		for j, c := range out[i] {
			if c == '.' {
				out[i][j] = empty
			}
		}
	}
	*g = out
	return nil
}
