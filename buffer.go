package mt

// Buffer stores a 2D grid of glyphs and a per-row dirty bitmap.
// Coordinates are (x, y) with x the column; both 0-based. The accessors
// and SetGlyph ignore out-of-range coordinates and ClearRegion and
// MarkDirty clamp them; InsertBlanks, DeleteChars, ScrollUp and ScrollDown
// clamp only their count and expect the position inside the grid.
type Buffer struct {
	rows  int
	cols  int
	lines [][]Glyph
	dirty []bool
}

// NewBuffer creates a buffer with the given dimensions, filled with spaces.
func NewBuffer(cols, rows int) *Buffer {
	b := &Buffer{
		rows:  rows,
		cols:  cols,
		lines: make([][]Glyph, rows),
		dirty: make([]bool, rows),
	}
	for y := range b.lines {
		b.lines[y] = make([]Glyph, cols)
		for x := range b.lines[y] {
			b.lines[y][x] = Glyph{Rune: ' ', FG: ColorForeground, BG: ColorBackground}
		}
	}
	return b
}

// Rows returns the buffer height in character rows.
func (b *Buffer) Rows() int {
	return b.rows
}

// Cols returns the buffer width in character columns.
func (b *Buffer) Cols() int {
	return b.cols
}

// Glyph returns a pointer to the cell at (x, y), or nil if out of bounds.
func (b *Buffer) Glyph(x, y int) *Glyph {
	if y < 0 || y >= b.rows || x < 0 || x >= b.cols {
		return nil
	}
	return &b.lines[y][x]
}

// Line returns the row at y, or nil if out of bounds. The slice aliases the
// buffer's storage.
func (b *Buffer) Line(y int) []Glyph {
	if y < 0 || y >= b.rows {
		return nil
	}
	return b.lines[y]
}

// LineLen returns the length of the visible run on row y: the full width
// when the row wraps, otherwise the index past the last non-space cell.
func (b *Buffer) LineLen(y int) int {
	if y < 0 || y >= b.rows {
		return 0
	}
	i := b.cols
	if b.lines[y][i-1].Mode&AttrWrap != 0 {
		return i
	}
	for i > 0 && b.lines[y][i-1].Rune == ' ' {
		i--
	}
	return i
}

// SetGlyph writes g at (x, y) and marks the row dirty.
func (b *Buffer) SetGlyph(x, y int, g Glyph) {
	if y < 0 || y >= b.rows || x < 0 || x >= b.cols {
		return
	}
	b.lines[y][x] = g
	b.dirty[y] = true
}

// MarkDirty flags rows top through bot (inclusive) as needing repaint.
func (b *Buffer) MarkDirty(top, bot int) {
	top = limit(top, 0, b.rows-1)
	bot = limit(bot, 0, b.rows-1)
	for y := top; y <= bot; y++ {
		b.dirty[y] = true
	}
}

// MarkAllDirty flags every row as needing repaint.
func (b *Buffer) MarkAllDirty() {
	b.MarkDirty(0, b.rows-1)
}

// Dirty reports whether row y has been mutated since the last ClearDirty.
func (b *Buffer) Dirty(y int) bool {
	return y >= 0 && y < b.rows && b.dirty[y]
}

// ClearDirty resets the dirty bitmap, typically after a repaint.
func (b *Buffer) ClearDirty() {
	for y := range b.dirty {
		b.dirty[y] = false
	}
}

// ClearRegion resets every cell in the rectangle spanned by the two corners
// (inclusive) to a blank carrying the template's colors. Corner order does
// not matter.
func (b *Buffer) ClearRegion(x1, y1, x2, y2 int, template Glyph) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	x1 = limit(x1, 0, b.cols-1)
	x2 = limit(x2, 0, b.cols-1)
	y1 = limit(y1, 0, b.rows-1)
	y2 = limit(y2, 0, b.rows-1)

	blank := blankGlyph(template)
	for y := y1; y <= y2; y++ {
		b.dirty[y] = true
		for x := x1; x <= x2; x++ {
			b.lines[y][x] = blank
		}
	}
}

// ScrollUp rotates rows [orig, bot] up by n, clearing the revealed band at
// the bottom. The caller owns selection bookkeeping.
func (b *Buffer) ScrollUp(orig, bot, n int, template Glyph) {
	n = limit(n, 0, bot-orig+1)
	if n == 0 {
		return
	}

	b.ClearRegion(0, orig, b.cols-1, orig+n-1, template)
	b.MarkDirty(orig+n, bot)
	for y := orig; y <= bot-n; y++ {
		b.lines[y], b.lines[y+n] = b.lines[y+n], b.lines[y]
	}
}

// ScrollDown rotates rows [orig, bot] down by n, clearing the revealed band
// at the top.
func (b *Buffer) ScrollDown(orig, bot, n int, template Glyph) {
	n = limit(n, 0, bot-orig+1)
	if n == 0 {
		return
	}

	b.MarkDirty(orig, bot-n)
	b.ClearRegion(0, bot-n+1, b.cols-1, bot, template)
	for y := bot; y >= orig+n; y-- {
		b.lines[y], b.lines[y-n] = b.lines[y-n], b.lines[y]
	}
}

// InsertBlanks opens n blank cells at (x, y), shifting the tail of the row
// right. Shifted-out cells are discarded.
func (b *Buffer) InsertBlanks(x, y, n int, template Glyph) {
	if y < 0 || y >= b.rows {
		return
	}
	n = limit(n, 0, b.cols-x)
	if n == 0 {
		return
	}
	line := b.lines[y]
	copy(line[x+n:b.cols], line[x:b.cols-n])
	b.ClearRegion(x, y, x+n-1, y, template)
}

// DeleteChars removes n cells at (x, y), shifting the tail of the row left
// and clearing the vacated end of the row.
func (b *Buffer) DeleteChars(x, y, n int, template Glyph) {
	if y < 0 || y >= b.rows {
		return
	}
	n = limit(n, 0, b.cols-x)
	if n == 0 {
		return
	}
	line := b.lines[y]
	copy(line[x:b.cols-n], line[x+n:b.cols])
	b.ClearRegion(b.cols-n, y, b.cols-1, y, template)
}

// Resize changes the buffer dimensions. Rows are first slid up by shift so
// a cursor near the bottom stays on screen, then the row vector and each
// row are resized, padding with zero-value glyphs (rune 0, no colors); the
// caller clears the revealed area.
func (b *Buffer) Resize(cols, rows, shift int) {
	if shift > 0 {
		copy(b.lines, b.lines[shift:])
	}

	if rows <= len(b.lines) {
		b.lines = b.lines[:rows]
		b.dirty = b.dirty[:rows]
	} else {
		for len(b.lines) < rows {
			b.lines = append(b.lines, make([]Glyph, cols))
			b.dirty = append(b.dirty, true)
		}
	}

	for y := range b.lines {
		if cols <= len(b.lines[y]) {
			b.lines[y] = b.lines[y][:cols]
		} else {
			line := make([]Glyph, cols)
			copy(line, b.lines[y])
			b.lines[y] = line
		}
	}

	b.rows = rows
	b.cols = cols
}

// limit clamps v to [lo, hi].
func limit(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
