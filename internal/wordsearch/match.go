package wordsearch

import "github.com/nicorema/wedding/internal/words"

// ReadWord returns the grid letters under sel, in selection order.
func ReadWord(grid Grid, sel []Cell) string {
	b := make([]byte, 0, len(sel))
	for _, c := range sel {
		if !grid.In(c) {
			return ""
		}
		b = append(b, grid.Letter(c))
	}
	return string(b)
}

// Match checks a selection against the word list in both reading directions.
// The returned word is always the list entry, never the literal reverse reading.
func Match(sel []Cell, grid Grid, list words.List) (string, bool) {
	w := ReadWord(grid, sel)
	if w == "" {
		return "", false
	}
	if list.Contains(w) {
		return w, true
	}
	if rw := reverse(w); list.Contains(rw) {
		return rw, true
	}
	return "", false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
