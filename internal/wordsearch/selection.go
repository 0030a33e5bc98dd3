// internal/wordsearch/selection.go
//
// Drag-gesture selection for the word-search grid.
//
// Line rules (first match wins):
//   - same row:      horizontal, columns ascending regardless of drag direction
//   - same column:   vertical, rows ascending regardless of drag direction
//   - |Δrow|==|Δcol|: diagonal, stepping from start toward end (direction kept)
//   - otherwise:     no line, selection is just [start]
//
// Tracker is a two-state machine: Idle, or Dragging{Start, Current}.

package wordsearch

// Line returns the straight run of cells from start to end inclusive,
// or [start] when the two cells are not on a common line.
func Line(start, end Cell) []Cell {
	dr, dc := end.Row-start.Row, end.Col-start.Col
	switch {
	case dr == 0:
		lo, hi := minMax(start.Col, end.Col)
		cells := make([]Cell, 0, hi-lo+1)
		for c := lo; c <= hi; c++ {
			cells = append(cells, Cell{Row: start.Row, Col: c})
		}
		return cells
	case dc == 0:
		lo, hi := minMax(start.Row, end.Row)
		cells := make([]Cell, 0, hi-lo+1)
		for r := lo; r <= hi; r++ {
			cells = append(cells, Cell{Row: r, Col: start.Col})
		}
		return cells
	case abs(dr) == abs(dc):
		steps := abs(dr)
		rs, cs := sign(dr), sign(dc)
		cells := make([]Cell, 0, steps+1)
		for i := 0; i <= steps; i++ {
			cells = append(cells, Cell{Row: start.Row + i*rs, Col: start.Col + i*cs})
		}
		return cells
	}
	return []Cell{start}
}

// Drag is the Dragging state payload.
type Drag struct {
	Start   Cell `json:"start"`
	Current Cell `json:"current"`
}

// Tracker converts press/move/release gestures into a selection.
// The zero value is Idle with no visible selection.
type Tracker struct {
	drag      *Drag // nil while Idle
	selection []Cell
}

// Press starts a drag at c (Idle → Dragging). Pressing while already
// dragging restarts the drag from c.
func (t *Tracker) Press(c Cell) {
	t.drag = &Drag{Start: c, Current: c}
	t.selection = []Cell{c}
}

// Move recomputes the live selection toward c. It is a no-op while Idle
// and reports whether the selection changed state.
func (t *Tracker) Move(c Cell) bool {
	if t.drag == nil {
		return false
	}
	t.drag.Current = c
	t.selection = Line(t.drag.Start, c)
	return true
}

// Release ends the drag (Dragging → Idle) and returns the final selection
// for matching. The selection stays visible until Clear. Releasing while
// Idle returns false.
func (t *Tracker) Release() ([]Cell, bool) {
	if t.drag == nil || len(t.selection) == 0 {
		return nil, false
	}
	t.drag = nil
	return append([]Cell(nil), t.selection...), true
}

// Leave aborts a drag when the pointer leaves the grid: the selection is
// dropped immediately and nothing is matched.
func (t *Tracker) Leave() {
	if t.drag == nil {
		return
	}
	t.drag = nil
	t.selection = nil
}

// Clear drops the visible selection left behind by Release. It never
// interrupts an active drag.
func (t *Tracker) Clear() {
	if t.drag != nil {
		return
	}
	t.selection = nil
}

// Dragging returns the drag state, ok=false while Idle.
func (t *Tracker) Dragging() (Drag, bool) {
	if t.drag == nil {
		return Drag{}, false
	}
	return *t.drag, true
}

// Selection returns a copy of the currently highlighted cells.
func (t *Tracker) Selection() []Cell {
	return append([]Cell(nil), t.selection...)
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	return 1
}
