package mt

import "strings"

// Snapshot is a plain-text capture of the visible screen.
type Snapshot struct {
	Cols   int
	Rows   int
	Cursor Cursor
	Lines  []string
}

// Snapshot captures the active screen as text, one entry per row with
// trailing blanks removed.
func (t *Terminal) Snapshot() Snapshot {
	s := Snapshot{
		Cols:   t.cols,
		Rows:   t.rows,
		Cursor: t.cursor,
		Lines:  make([]string, t.rows),
	}
	for y := 0; y < t.rows; y++ {
		s.Lines[y] = t.LineContent(y)
	}
	return s
}

// String renders the snapshot as newline-joined rows.
func (s Snapshot) String() string {
	return strings.Join(s.Lines, "\n")
}
