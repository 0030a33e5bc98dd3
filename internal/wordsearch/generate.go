// internal/wordsearch/generate.go
//
// Grid generation for a single word-search game.
//
// Algorithm:
//  1. Sort words longest-first (stable) so long words land while the grid is sparse.
//  2. For each word, up to MaxAttempts random trials: uniform direction, uniform
//     anchor. A placement is legal when the whole path is in bounds and every
//     cell is empty or already holds the same letter (words may cross).
//  3. If the random trials fail, scan exhaustively: direction, then row, then
//     column, in fixed order, and take the first legal position. A word with no
//     legal position anywhere is skipped.
//  4. Fill every remaining empty cell with a uniform random letter A–Z.

package wordsearch

import (
	"math/rand/v2"
	"slices"
)

const (
	// DefaultSize is the grid dimension used by the wedding puzzle.
	DefaultSize = 15
	// MaxAttempts bounds the random placement trials per word.
	MaxAttempts = 500
)

// Generator builds puzzle grids.
// A nil Rand uses the concurrency-safe top-level math/rand/v2 source, so a
// single Generator may be shared. A non-nil Rand is not safe for concurrent use.
type Generator struct {
	Size     int
	Attempts int
	Rand     *rand.Rand
}

// NewGenerator returns a Generator for size×size grids using the default attempt budget.
func NewGenerator(size int) *Generator {
	return &Generator{Size: size, Attempts: MaxAttempts}
}

// Generate is shorthand for NewGenerator(size).Generate(ws).
func Generate(ws []string, size int) (Grid, []PlacedWord) {
	return NewGenerator(size).Generate(ws)
}

// Generate places ws into a fresh grid and fills the rest with random letters.
// The returned placements are in placement order (longest word first). Words
// that could not be placed are absent from the placements.
func (g *Generator) Generate(ws []string) (Grid, []PlacedWord) {
	grid := NewGrid(g.Size)
	placed := make([]PlacedWord, 0, len(ws))

	sorted := slices.Clone(ws)
	slices.SortStableFunc(sorted, func(a, b string) int { return len(b) - len(a) })

	for _, w := range sorted {
		if p, ok := g.placeRandom(grid, w); ok {
			placed = append(placed, p)
			continue
		}
		if p, ok := placeScan(grid, w); ok {
			placed = append(placed, p)
		}
	}

	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] == empty {
				grid[r][c] = byte('A' + g.intN(26))
			}
		}
	}
	return grid, placed
}

// placeRandom tries randomized anchors and directions.
func (g *Generator) placeRandom(grid Grid, w string) (PlacedWord, bool) {
	attempts := g.Attempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}
	for i := 0; i < attempts; i++ {
		p := PlacedWord{
			Word:      w,
			Direction: Directions[g.intN(len(Directions))],
			Row:       g.intN(g.Size),
			Col:       g.intN(g.Size),
		}
		if canPlace(grid, p) {
			place(grid, p)
			return p, true
		}
	}
	return PlacedWord{}, false
}

// placeScan is the deterministic fallback: first legal position in
// direction → row → column order.
func placeScan(grid Grid, w string) (PlacedWord, bool) {
	n := grid.Size()
	for _, d := range Directions {
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				p := PlacedWord{Word: w, Row: r, Col: c, Direction: d}
				if canPlace(grid, p) {
					place(grid, p)
					return p, true
				}
			}
		}
	}
	return PlacedWord{}, false
}

// canPlace reports whether p stays in bounds and agrees with existing letters.
func canPlace(grid Grid, p PlacedWord) bool {
	for i, c := range p.Cells() {
		if !grid.In(c) {
			return false
		}
		if l := grid.Letter(c); l != empty && l != p.Word[i] {
			return false
		}
	}
	return true
}

func place(grid Grid, p PlacedWord) {
	for i, c := range p.Cells() {
		grid[c.Row][c.Col] = p.Word[i]
	}
}

func (g *Generator) intN(n int) int {
	if g.Rand != nil {
		return g.Rand.IntN(n)
	}
	return rand.IntN(n)
}
