package mt

import (
	"strings"
	"time"
)

// SelectionMode tracks the lifecycle of a selection gesture.
type SelectionMode int

const (
	// SelectionIdle means no selection exists.
	SelectionIdle SelectionMode = iota
	// SelectionEmpty means an anchor is set but nothing is selected yet.
	SelectionEmpty
	// SelectionReady means a visible span is selected.
	SelectionReady
)

// SelectionType selects the shape of the selected span.
type SelectionType int

const (
	SelectionRegular SelectionType = iota
	SelectionRectangular
)

// SelectionSnap expands an anchor to a surrounding boundary.
type SelectionSnap int

const (
	SnapNone SelectionSnap = iota
	SnapWord
	SnapLine
)

// point is a grid coordinate; x is the column.
type point struct {
	x, y int
}

// Selection holds the anchor pair as set by the user (ob, oe) and the
// normalized span actually highlighted (nb, ne). ob.x == -1 is the
// sentinel for "no selection".
type Selection struct {
	Mode SelectionMode
	Type SelectionType
	Snap SelectionSnap

	ob, oe point
	nb, ne point

	// Click timestamps kept for the display layer's multi-click detection.
	TClick1 time.Time
	TClick2 time.Time
}

// StartSelection anchors a new selection at (x, y), replacing any existing
// one. With a non-none snap the selection is immediately visible.
func (t *Terminal) StartSelection(x, y int, typ SelectionType, snap SelectionSnap) {
	t.ClearSelection()
	t.sel.Mode = SelectionEmpty
	t.sel.Type = typ
	t.sel.Snap = snap
	t.sel.TClick1, t.sel.TClick2 = t.sel.TClick2, time.Now()
	t.sel.ob = point{x, y}
	t.sel.oe = point{x, y}
	t.normalizeSelection()
	if snap != SnapNone {
		t.sel.Mode = SelectionReady
	}
}

// ExtendSelection moves the free end of the selection to (x, y).
func (t *Terminal) ExtendSelection(x, y int) {
	if t.sel.Mode == SelectionIdle {
		return
	}
	oldNb, oldNe := t.sel.nb, t.sel.ne
	t.sel.oe = point{x, y}
	t.normalizeSelection()
	t.sel.Mode = SelectionReady
	t.activeBuffer().MarkDirty(min(oldNb.y, t.sel.nb.y), max(oldNe.y, t.sel.ne.y))
}

// ClearSelection drops the selection and marks the previously highlighted
// rows dirty.
func (t *Terminal) ClearSelection() {
	if t.sel.ob.x == -1 {
		return
	}
	t.sel.Mode = SelectionIdle
	t.sel.ob.x = -1
	t.activeBuffer().MarkDirty(t.sel.nb.y, t.sel.ne.y)
}

// Selected reports whether the cell at (x, y) lies inside the selection.
func (t *Terminal) Selected(x, y int) bool {
	sel := &t.sel
	if sel.Mode == SelectionEmpty || sel.ob.x == -1 {
		return false
	}

	if sel.Type == SelectionRectangular {
		return between(y, sel.nb.y, sel.ne.y) && between(x, sel.nb.x, sel.ne.x)
	}

	return between(y, sel.nb.y, sel.ne.y) &&
		(y != sel.nb.y || x >= sel.nb.x) &&
		(y != sel.ne.y || x <= sel.ne.x)
}

// normalizeSelection sorts the raw anchors into the top-left/bottom-right
// span, applies snapping in both directions, and for regular selections
// clamps to line content and extends over soft line breaks.
func (t *Terminal) normalizeSelection() {
	sel := &t.sel
	if sel.Type == SelectionRegular && sel.ob.y != sel.oe.y {
		if sel.ob.y < sel.oe.y {
			sel.nb.x, sel.ne.x = sel.ob.x, sel.oe.x
		} else {
			sel.nb.x, sel.ne.x = sel.oe.x, sel.ob.x
		}
	} else {
		sel.nb.x = min(sel.ob.x, sel.oe.x)
		sel.ne.x = max(sel.ob.x, sel.oe.x)
	}
	sel.nb.y = min(sel.ob.y, sel.oe.y)
	sel.ne.y = max(sel.ob.y, sel.oe.y)

	t.snapSelection(&sel.nb.x, &sel.nb.y, -1)
	t.snapSelection(&sel.ne.x, &sel.ne.y, +1)

	// Expand the selection over soft line breaks.
	if sel.Type == SelectionRectangular {
		return
	}
	buf := t.activeBuffer()
	if i := buf.LineLen(sel.nb.y); i < sel.nb.x {
		sel.nb.x = i
	}
	if buf.LineLen(sel.ne.y) <= sel.ne.x {
		sel.ne.x = t.cols - 1
	}
}

// snapSelection grows (*x, *y) outward in direction according to the
// selection's snap setting.
func (t *Terminal) snapSelection(x, y *int, direction int) {
	buf := t.activeBuffer()
	switch t.sel.Snap {
	case SnapWord:
		// Snap around if the word wraps around at the end or beginning
		// of a line. Scrolling can leave an anchor one past the last
		// column; clamp before reading.
		*x = limit(*x, 0, t.cols-1)
		*y = limit(*y, 0, t.rows-1)
		prev := buf.Glyph(*x, *y)
		prevDelim := t.isDelim(prev.Rune)
		for {
			newX := *x + direction
			newY := *y
			if !between(newX, 0, t.cols-1) {
				newY += direction
				newX = (newX + t.cols) % t.cols
				if !between(newY, 0, t.rows-1) {
					break
				}

				var xt, yt int
				if direction > 0 {
					xt, yt = *x, *y
				} else {
					xt, yt = newX, newY
				}
				if buf.Glyph(xt, yt).Mode&AttrWrap == 0 {
					break
				}
			}

			if newX >= buf.LineLen(newY) {
				break
			}

			g := buf.Glyph(newX, newY)
			delim := t.isDelim(g.Rune)
			if g.Mode&AttrWideDummy == 0 && (delim != prevDelim || (delim && g.Rune != prev.Rune)) {
				break
			}

			*x, *y = newX, newY
			prev, prevDelim = g, delim
		}

	case SnapLine:
		// Walk to the first or last row of the wrapped logical line.
		if direction < 0 {
			*x = 0
			for ; *y > 0; *y += direction {
				if buf.Glyph(t.cols-1, *y-1).Mode&AttrWrap == 0 {
					break
				}
			}
		} else if direction > 0 {
			*x = t.cols - 1
			for ; *y < t.rows-1; *y += direction {
				if buf.Glyph(t.cols-1, *y).Mode&AttrWrap == 0 {
					break
				}
			}
		}
	}
}

// scrollSelection translates the selection anchors after rows [orig, bot]
// scrolled by n, dropping the selection when it leaves the region.
func (t *Terminal) scrollSelection(orig, n int) {
	sel := &t.sel
	if sel.ob.x == -1 {
		return
	}

	if !between(sel.ob.y, orig, t.bot) && !between(sel.oe.y, orig, t.bot) {
		return
	}
	sel.ob.y += n
	sel.oe.y += n
	if sel.ob.y > t.bot || sel.oe.y < t.top {
		t.ClearSelection()
		return
	}
	if sel.Type == SelectionRectangular {
		sel.ob.y = limit(sel.ob.y, t.top, t.bot)
		sel.oe.y = limit(sel.oe.y, t.top, t.bot)
	} else {
		if sel.ob.y < t.top {
			sel.ob.y = t.top
			sel.ob.x = 0
		}
		if sel.oe.y > t.bot {
			sel.oe.y = t.bot
			sel.oe.x = t.cols
		}
	}
	t.normalizeSelection()
}

// SelectionText returns the selected text, or "" when nothing is selected.
// Rows end with '\n' unless the line continues through a soft wrap.
func (t *Terminal) SelectionText() string {
	sel := &t.sel
	if sel.ob.x == -1 {
		return ""
	}

	buf := t.activeBuffer()
	var sb strings.Builder
	enc := make([]byte, 0, utfSize)

	for y := sel.nb.y; y <= sel.ne.y; y++ {
		lineLen := buf.LineLen(y)
		if lineLen == 0 {
			sb.WriteByte('\n')
			continue
		}

		line := buf.Line(y)
		var first, lastX int
		if sel.Type == SelectionRectangular {
			first = sel.nb.x
			lastX = sel.ne.x
		} else {
			if sel.nb.y == y {
				first = sel.nb.x
			}
			lastX = t.cols - 1
			if sel.ne.y == y {
				lastX = sel.ne.x
			}
		}

		last := min(lastX, lineLen-1)
		for last >= first && line[last].Rune == ' ' {
			last--
		}

		for x := first; x <= last; x++ {
			if line[x].Mode&AttrWideDummy != 0 {
				continue
			}
			enc = EncodeRune(enc[:0], line[x].Rune)
			sb.Write(enc)
		}

		// Produce '\n' for hard line endings; pasted text converts them
		// back to '\r' on the way in.
		if (y < sel.ne.y || lastX >= lineLen) && (last < 0 || line[last].Mode&AttrWrap == 0) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// isDelim reports whether u separates words for snap purposes.
func (t *Terminal) isDelim(u rune) bool {
	return u != 0 && strings.ContainsRune(t.wordDelimiters, u)
}

func between(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
