package mt

import (
	"image/color"
	"io"
	"strings"
)

const (
	// DefaultRows is the default number of terminal rows.
	DefaultRows = 24
	// DefaultCols is the default number of terminal columns.
	DefaultCols = 80
)

// Terminal is the display-independent core of a VT102/xterm-subset
// emulator: the escape parser plus the screen model it mutates.
//
// A Terminal is a single-owner value: the event loop that feeds it bytes
// borrows it mutably, and nothing in here locks. Collaborators (display,
// clipboard, printer) are passed in as providers at construction.
type Terminal struct {
	// Dimensions
	rows int
	cols int

	// Screens. primary and alternate keep their contents across swaps;
	// activeBuffer returns the one ModeAltScreen selects.
	primary   *Buffer
	alternate *Buffer

	// Cursor and per-screen saved cursors.
	cursor       Cursor
	savedPrimary Cursor
	savedAlt     Cursor

	// Tab stops, shared between the two screens.
	tabs []bool

	// Scrolling region, 0-based inclusive.
	top int
	bot int

	// Modes
	mode TerminalMode

	// Charsets
	charsets      [4]Charset
	activeCharset int
	icharset      int

	// Cursor style as set by DECSCUSR.
	cursorStyle CursorStyle

	// Escape parser state.
	state      parseState
	pendingStr bool
	csi        csiEscape
	str        strEscape

	// Selection
	sel Selection

	// Partial UTF-8 input carried between Write calls, and an encode
	// scratch buffer for the write pipeline.
	partial    [utfSize]byte
	npartial   int
	encScratch [utfSize]byte

	// OSC 4 palette overrides.
	palette map[int]color.RGBA

	// Providers
	response  ResponseProvider
	bell      BellProvider
	title     TitleProvider
	clipboard ClipboardProvider
	printer   PrinterProvider
	motion    PointerMotionProvider

	allowAltScreen bool
	wordDelimiters string
	numlock        bool
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithSize sets the terminal dimensions.
// Values <= 0 are replaced with defaults (80x24).
func WithSize(cols, rows int) Option {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	return func(t *Terminal) {
		t.cols = cols
		t.rows = rows
	}
}

// WithResponse sets the writer for terminal responses (device attributes,
// cursor position reports). If nil, responses are discarded.
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) {
		t.response = p
	}
}

// WithBell sets the handler for bell events. Defaults to a no-op.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bell = p
	}
}

// WithTitle sets the handler for window title changes. Defaults to a no-op.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.title = p
	}
}

// WithClipboard sets the handler for OSC 52 clipboard writes.
// Defaults to a no-op.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) {
		t.clipboard = p
	}
}

// WithPrinter sets the sink for Media Copy dumps and MODE_PRINT mirroring.
// If nil, printing is disabled.
func WithPrinter(p PrinterProvider) Option {
	return func(t *Terminal) {
		t.printer = p
	}
}

// WithPointerMotion sets the handler asked to engage continuous pointer
// motion reporting when mode 1003 toggles. Defaults to a no-op.
func WithPointerMotion(p PointerMotionProvider) Option {
	return func(t *Terminal) {
		t.motion = p
	}
}

// WithAltScreen controls whether the alternate screen may be entered.
// When disallowed, modes 47/1047/1049 are no-ops. Allowed by default.
func WithAltScreen(allow bool) Option {
	return func(t *Terminal) {
		t.allowAltScreen = allow
	}
}

// WithWordDelimiters sets the characters that separate words for
// word-snap selection. Defaults to " ".
func WithWordDelimiters(delims string) Option {
	return func(t *Terminal) {
		t.wordDelimiters = delims
	}
}

// New creates a terminal with default 80x24 dimensions unless overridden.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:           DefaultRows,
		cols:           DefaultCols,
		response:       NoopResponse{},
		bell:           NoopBell{},
		title:          NoopTitle{},
		clipboard:      NoopClipboard{},
		motion:         NoopPointerMotion{},
		allowAltScreen: true,
		wordDelimiters: " ",
	}

	for _, opt := range opts {
		opt(t)
	}

	t.primary = NewBuffer(t.cols, t.rows)
	t.alternate = NewBuffer(t.cols, t.rows)
	t.palette = make(map[int]color.RGBA)
	t.sel.ob.x = -1
	t.numlock = true
	t.cursor.Attr = Glyph{FG: ColorForeground, BG: ColorBackground}

	t.Reset()
	return t
}

// Reset restores the terminal to its initial state: cursor home with
// default attributes, tab stops every 8 columns, full scrolling region,
// wrap and UTF-8 modes on, both screens cleared.
func (t *Terminal) Reset() {
	t.cursor = Cursor{Attr: Glyph{FG: ColorForeground, BG: ColorBackground}}

	t.tabs = make([]bool, t.cols)
	// Initial tab stops every 8 columns, matching 'it#8' in terminfo.
	for i := 8; i < t.cols; i += 8 {
		t.tabs[i] = true
	}
	t.top = 0
	t.bot = t.rows - 1
	t.mode = ModeWrap | ModeUTF8
	for i := range t.charsets {
		t.charsets[i] = CharsetASCII
	}
	t.activeCharset = 0

	t.state = stateGround
	t.pendingStr = false
	t.npartial = 0
	clear(t.palette)

	for i := 0; i < 2; i++ {
		t.moveTo(0, 0)
		t.saveCursor()
		t.clearRegion(0, 0, t.cols-1, t.rows-1)
		t.swapScreen()
	}
}

// Rows returns the terminal height in character rows.
func (t *Terminal) Rows() int {
	return t.rows
}

// Cols returns the terminal width in character columns.
func (t *Terminal) Cols() int {
	return t.cols
}

// Cursor returns a copy of the cursor.
func (t *Terminal) Cursor() Cursor {
	return t.cursor
}

// CursorPos returns the cursor position as (col, row).
func (t *Terminal) CursorPos() (x, y int) {
	return t.cursor.X, t.cursor.Y
}

// CursorStyle returns the style last set via DECSCUSR.
func (t *Terminal) CursorStyle() CursorStyle {
	return t.cursorStyle
}

// Mode returns the active mode bits.
func (t *Terminal) Mode() TerminalMode {
	return t.mode
}

// ScrollRegion returns the scrolling region as 0-based inclusive rows.
func (t *Terminal) ScrollRegion() (top, bot int) {
	return t.top, t.bot
}

// Glyph returns a pointer into the active screen, or nil if out of bounds.
func (t *Terminal) Glyph(x, y int) *Glyph {
	return t.activeBuffer().Glyph(x, y)
}

// Dirty reports whether row y of the active screen needs repainting.
func (t *Terminal) Dirty(y int) bool {
	return t.activeBuffer().Dirty(y)
}

// ClearDirty marks the active screen as repainted.
func (t *Terminal) ClearDirty() {
	t.activeBuffer().ClearDirty()
}

// MarkAllDirty forces a full repaint of the active screen.
func (t *Terminal) MarkAllDirty() {
	t.activeBuffer().MarkAllDirty()
}

// NumLock reports the keypad numlock override used by key mapping.
func (t *Terminal) NumLock() bool {
	return t.numlock
}

// ToggleNumLock flips the keypad numlock override.
func (t *Terminal) ToggleNumLock() {
	t.numlock = !t.numlock
}

// TabStop reports whether column x has a tab stop.
func (t *Terminal) TabStop(x int) bool {
	return x >= 0 && x < len(t.tabs) && t.tabs[x]
}

func (t *Terminal) isSet(m TerminalMode) bool {
	return t.mode&m != 0
}

func (t *Terminal) setModeBit(set bool, m TerminalMode) {
	if set {
		t.mode |= m
	} else {
		t.mode &^= m
	}
}

func (t *Terminal) activeBuffer() *Buffer {
	if t.isSet(ModeAltScreen) {
		return t.alternate
	}
	return t.primary
}

// Write feeds raw PTY bytes through the UTF-8 codec into the escape
// parser. A trailing partial sequence is retained for the next call, so
// writes may split multi-byte characters arbitrarily. It never fails; the
// error is always nil.
func (t *Terminal) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		// The stream interpretation can flip mid-buffer (ESC % @, Sixel),
		// so the mode is rechecked per code point.
		if !t.isSet(ModeUTF8) || t.isSet(ModeSixel) {
			// Byte mode: every byte is a code point in 0..0xFF.
			t.drainPartial()
			t.putRune(rune(p[0]))
			p = p[1:]
			continue
		}

		if t.npartial > 0 {
			// Stitch the carried partial sequence together with the
			// new bytes, one at a time.
			if !t.decodePartial() {
				t.partial[t.npartial] = p[0]
				t.npartial++
				p = p[1:]
			}
			continue
		}

		u, size := DecodeRune(p)
		if size == 0 {
			t.npartial = copy(t.partial[:], p)
			break
		}
		t.putRune(u)
		p = p[size:]
	}

	// Whatever the stitching decoded completely is emitted now; only a
	// genuine partial prefix is carried to the next call.
	for t.npartial > 0 && t.decodePartial() {
	}
	return n, nil
}

// decodePartial emits one code point from the carry buffer if it holds a
// complete sequence. It reports whether progress was made.
func (t *Terminal) decodePartial() bool {
	u, size := DecodeRune(t.partial[:t.npartial])
	if size == 0 {
		if t.npartial < utfSize {
			return false
		}
		// A full buffer cannot be a valid prefix; don't loop forever.
		u, size = RuneInvalid, t.npartial
	}
	t.putRune(u)
	t.npartial = copy(t.partial[:], t.partial[size:t.npartial])
	return true
}

// drainPartial flushes carried bytes as raw code points when the stream
// drops out of UTF-8 interpretation.
func (t *Terminal) drainPartial() {
	for i := 0; i < t.npartial; i++ {
		t.putRune(rune(t.partial[i]))
	}
	t.npartial = 0
}

// WriteString is Write for strings.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// moveAbsTo moves for absolute user addressing: with origin mode set, y is
// relative to the scrolling region.
func (t *Terminal) moveAbsTo(x, y int) {
	if t.cursor.State&CursorOrigin != 0 {
		y += t.top
	}
	t.moveTo(x, y)
}

// moveTo clamps and moves the cursor, clearing the pending wrap flag.
func (t *Terminal) moveTo(x, y int) {
	minY, maxY := 0, t.rows-1
	if t.cursor.State&CursorOrigin != 0 {
		minY, maxY = t.top, t.bot
	}
	t.cursor.State &^= CursorWrapNext
	t.cursor.X = limit(x, 0, t.cols-1)
	t.cursor.Y = limit(y, minY, maxY)
}

// saveCursor stores the cursor for the active screen.
func (t *Terminal) saveCursor() {
	if t.isSet(ModeAltScreen) {
		t.savedAlt = t.cursor
	} else {
		t.savedPrimary = t.cursor
	}
}

// restoreCursor reinstates the cursor saved for the active screen.
func (t *Terminal) restoreCursor() {
	saved := t.savedPrimary
	if t.isSet(ModeAltScreen) {
		saved = t.savedAlt
	}
	t.cursor = saved
	t.moveTo(saved.X, saved.Y)
}

// swapScreen flips between the primary and alternate screens and forces a
// repaint.
func (t *Terminal) swapScreen() {
	t.mode ^= ModeAltScreen
	t.primary.MarkAllDirty()
	t.alternate.MarkAllDirty()
}

// setScroll sets the scrolling region, swapping the bounds if reversed.
func (t *Terminal) setScroll(top, bot int) {
	top = limit(top, 0, t.rows-1)
	bot = limit(bot, 0, t.rows-1)
	if top > bot {
		top, bot = bot, top
	}
	t.top = top
	t.bot = bot
}

// newline advances to the next row, scrolling at the bottom margin.
func (t *Terminal) newline(firstCol bool) {
	y := t.cursor.Y
	if y == t.bot {
		t.scrollUp(t.top, 1)
	} else {
		y++
	}
	x := t.cursor.X
	if firstCol {
		x = 0
	}
	t.moveTo(x, y)
}

// setChar writes u at (x, y) with the attribute template, translating
// through the active charset and fixing up any wide cell it overwrites.
func (t *Terminal) setChar(u rune, attr Glyph, x, y int) {
	u = translateCharset(t.charsets[t.activeCharset], u)

	buf := t.activeBuffer()
	if g := buf.Glyph(x, y); g != nil && g.Mode&AttrWide != 0 {
		if right := buf.Glyph(x+1, y); right != nil {
			right.Rune = ' '
			right.Mode &^= AttrWideDummy
		}
	} else if g != nil && g.Mode&AttrWideDummy != 0 {
		left := buf.Glyph(x-1, y)
		left.Rune = ' '
		left.Mode &^= AttrWide
	}

	attr.Rune = u
	buf.SetGlyph(x, y, attr)
}

// clearRegion blanks the rectangle and drops the selection if it touched
// any cleared cell.
func (t *Terminal) clearRegion(x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	x1 = limit(x1, 0, t.cols-1)
	x2 = limit(x2, 0, t.cols-1)
	y1 = limit(y1, 0, t.rows-1)
	y2 = limit(y2, 0, t.rows-1)

	if t.sel.ob.x != -1 {
	scan:
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				if t.Selected(x, y) {
					t.ClearSelection()
					break scan
				}
			}
		}
	}

	t.activeBuffer().ClearRegion(x1, y1, x2, y2, t.cursor.Attr)
}

// scrollUp scrolls rows [orig, bot] up by n and translates the selection.
func (t *Terminal) scrollUp(orig, n int) {
	n = limit(n, 0, t.bot-orig+1)
	if n == 0 {
		return
	}
	t.activeBuffer().ScrollUp(orig, t.bot, n, t.cursor.Attr)
	t.scrollSelection(orig, -n)
}

// scrollDown scrolls rows [orig, bot] down by n and translates the
// selection.
func (t *Terminal) scrollDown(orig, n int) {
	n = limit(n, 0, t.bot-orig+1)
	if n == 0 {
		return
	}
	t.activeBuffer().ScrollDown(orig, t.bot, n, t.cursor.Attr)
	t.scrollSelection(orig, n)
}

// insertBlanks opens n blanks at the cursor, clearing the selection if it
// touched the shifted row.
func (t *Terminal) insertBlanks(n int) {
	t.clearSelectionOnRow(t.cursor.Y)
	t.activeBuffer().InsertBlanks(t.cursor.X, t.cursor.Y, n, t.cursor.Attr)
}

// deleteChars deletes n cells at the cursor.
func (t *Terminal) deleteChars(n int) {
	t.clearSelectionOnRow(t.cursor.Y)
	t.activeBuffer().DeleteChars(t.cursor.X, t.cursor.Y, n, t.cursor.Attr)
}

// insertLines inserts n blank lines at the cursor when it is inside the
// scrolling region.
func (t *Terminal) insertLines(n int) {
	if between(t.cursor.Y, t.top, t.bot) {
		t.scrollDown(t.cursor.Y, n)
	}
}

// deleteLines deletes n lines at the cursor when it is inside the
// scrolling region.
func (t *Terminal) deleteLines(n int) {
	if between(t.cursor.Y, t.top, t.bot) {
		t.scrollUp(t.cursor.Y, n)
	}
}

// clearSelectionOnRow drops the selection when it includes any cell of
// row y.
func (t *Terminal) clearSelectionOnRow(y int) {
	if t.sel.ob.x != -1 && between(y, t.sel.nb.y, t.sel.ne.y) {
		t.ClearSelection()
	}
}

// putTab advances the cursor to the n-th following tab stop, or the n-th
// preceding one for negative n.
func (t *Terminal) putTab(n int) {
	x := t.cursor.X
	if n > 0 {
		for x < t.cols && n > 0 {
			n--
			for x++; x < t.cols && !t.tabs[x]; x++ {
			}
		}
	} else if n < 0 {
		for x > 0 && n < 0 {
			n++
			for x--; x > 0 && !t.tabs[x]; x-- {
			}
		}
	}
	t.cursor.X = limit(x, 0, t.cols-1)
}

// Resize reflows both screens to the new dimensions, keeping the cursor on
// screen and extending tab stops at the interval the existing stops imply.
func (t *Terminal) Resize(cols, rows int) {
	if cols < 1 || rows < 1 {
		logf("resize: bad dimensions %dx%d", cols, rows)
		return
	}

	// Slide rows up so the cursor stays on screen.
	shift := max(0, t.cursor.Y-rows+1)
	t.primary.Resize(cols, rows, shift)
	t.alternate.Resize(cols, rows, shift)
	t.savedPrimary.Y = limit(t.savedPrimary.Y-shift, 0, rows-1)
	t.savedAlt.Y = limit(t.savedAlt.Y-shift, 0, rows-1)

	// Resize and extend the tab stops.
	if cols > t.cols {
		tabs := make([]bool, cols)
		copy(tabs, t.tabs)

		// Guess the interval from the first stop; the application may
		// have changed it from the default.
		interval := 8
		for i := 1; i < t.cols; i++ {
			if t.tabs[i] {
				interval = i
				break
			}
		}
		last := t.cols - 1
		for last >= 0 && !tabs[last] {
			last--
		}
		for i := last + interval; i < cols; i += interval {
			tabs[i] = true
		}
		t.tabs = tabs
	} else {
		t.tabs = t.tabs[:cols]
	}

	minRows := min(rows, t.rows)
	minCols := min(cols, t.cols)
	t.cols = cols
	t.rows = rows

	t.setScroll(0, rows-1)
	t.moveTo(t.cursor.X, t.cursor.Y)

	// Clear the revealed regions on both screens, preserving the cursor
	// and its saved copies.
	cursor := t.cursor
	for i := 0; i < 2; i++ {
		if minCols < cols && minRows > 0 {
			t.clearRegion(minCols, 0, cols-1, minRows-1)
		}
		if cols > 0 && minRows < rows {
			t.clearRegion(0, minRows, cols-1, rows-1)
		}
		t.swapScreen()
		t.restoreCursor()
	}
	t.cursor = cursor
	t.primary.MarkAllDirty()
	t.alternate.MarkAllDirty()
}

// Echo renders a locally echoed code point, substituting visible glyphs
// for control characters ("^C", "^[") before the normal write pipeline.
func (t *Terminal) Echo(u rune) {
	if isControl(u) {
		if u&0x80 != 0 {
			u &= 0x7f
			t.putRune('^')
			t.putRune('[')
		} else if u != '\n' && u != '\r' && u != '\t' {
			u ^= 0x40
			t.putRune('^')
		}
	}
	t.putRune(u)
}

// writeResponse sends reply bytes (device attributes, status reports)
// toward the PTY.
func (t *Terminal) writeResponse(s string) {
	if t.response == nil {
		return
	}
	io.WriteString(t.response, s)
}

// printString mirrors s to the printer sink, if one is attached.
func (t *Terminal) printString(s string) {
	if t.printer == nil {
		return
	}
	io.WriteString(t.printer, s)
}

// DumpLine prints the visible run of row y plus a newline to the printer
// sink.
func (t *Terminal) DumpLine(y int) {
	buf := t.activeBuffer()
	line := buf.Line(y)
	if line == nil {
		return
	}
	var sb strings.Builder
	n := buf.LineLen(y)
	if line[0].Rune != ' ' || n > 1 {
		enc := make([]byte, 0, utfSize)
		for x := 0; x < n; x++ {
			enc = EncodeRune(enc[:0], line[x].Rune)
			sb.Write(enc)
		}
	}
	sb.WriteByte('\n')
	t.printString(sb.String())
}

// Dump prints every row to the printer sink.
func (t *Terminal) Dump() {
	for y := 0; y < t.rows; y++ {
		t.DumpLine(y)
	}
}

// LineContent returns the visible text of row y without trailing blanks.
func (t *Terminal) LineContent(y int) string {
	buf := t.activeBuffer()
	line := buf.Line(y)
	if line == nil {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < buf.LineLen(y); x++ {
		if line[x].Mode&AttrWideDummy != 0 {
			continue
		}
		sb.WriteRune(line[x].Rune)
	}
	return sb.String()
}
