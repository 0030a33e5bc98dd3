package wordsearch

// Rect is an axis-aligned screen rectangle. X/Y is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges belong to the neighbouring cell.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type cellRect struct {
	cell Cell
	rect Rect
}

// Layout is the table of rendered cell rectangles used to resolve a touch
// coordinate to the grid cell under it.
type Layout struct {
	cells []cellRect
}

// UniformLayout builds the table for an n×n grid whose top-left cell starts
// at (x, y), with square cells of side size separated by gap.
func UniformLayout(x, y, size, gap float64, n int) Layout {
	l := Layout{cells: make([]cellRect, 0, n*n)}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			l.Set(Cell{Row: r, Col: c}, Rect{
				X: x + float64(c)*(size+gap),
				Y: y + float64(r)*(size+gap),
				W: size,
				H: size,
			})
		}
	}
	return l
}

// Set records (or replaces) the rectangle rendered for c.
func (l *Layout) Set(c Cell, r Rect) {
	for i := range l.cells {
		if l.cells[i].cell == c {
			l.cells[i].rect = r
			return
		}
	}
	l.cells = append(l.cells, cellRect{cell: c, rect: r})
}

// CellAt resolves a coordinate. Points in gaps or outside the grid miss.
func (l Layout) CellAt(x, y float64) (Cell, bool) {
	for _, cr := range l.cells {
		if cr.rect.Contains(x, y) {
			return cr.cell, true
		}
	}
	return Cell{}, false
}

// Len is the number of cells in the table.
func (l Layout) Len() int { return len(l.cells) }
