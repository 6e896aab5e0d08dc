package mt

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTerminal(t *testing.T) {
	term := New()
	if term.Cols() != 80 || term.Rows() != 24 {
		t.Errorf("expected 80x24, got %dx%d", term.Cols(), term.Rows())
	}
}

func TestTerminalWithSize(t *testing.T) {
	term := New(WithSize(120, 40))
	if term.Cols() != 120 || term.Rows() != 40 {
		t.Errorf("expected 120x40, got %dx%d", term.Cols(), term.Rows())
	}
}

func TestPlainPrint(t *testing.T) {
	term := New(WithSize(20, 5))
	term.ClearDirty()

	term.WriteString("Hello")

	if got := term.LineContent(0); got != "Hello" {
		t.Errorf("row 0 = %q, want %q", got, "Hello")
	}
	if x, y := term.CursorPos(); x != 5 || y != 0 {
		t.Errorf("cursor = (%d, %d), want (5, 0)", x, y)
	}
	if !term.Dirty(0) {
		t.Error("row 0 should be dirty")
	}
	for y := 1; y < 5; y++ {
		if term.Dirty(y) {
			t.Errorf("row %d should be clean", y)
		}
	}
}

func TestCursorPositionAndClear(t *testing.T) {
	term := New(WithSize(20, 5))

	term.WriteString("\x1b[3;5H")
	if x, y := term.CursorPos(); x != 4 || y != 2 {
		t.Fatalf("cursor = (%d, %d), want (4, 2)", x, y)
	}

	term.WriteString("X")
	if g := term.Glyph(4, 2); g.Rune != 'X' {
		t.Errorf("cell (4,2) = %q, want 'X'", g.Rune)
	}

	term.ClearDirty()
	term.WriteString("\x1b[2J")
	for y := 0; y < 5; y++ {
		if !term.Dirty(y) {
			t.Errorf("row %d should be dirty after ED 2", y)
		}
		for x := 0; x < 20; x++ {
			if g := term.Glyph(x, y); g.Rune != ' ' || g.Mode != 0 {
				t.Fatalf("cell (%d,%d) not cleared: %+v", x, y, g)
			}
		}
	}
	// ED does not move the cursor.
	if x, y := term.CursorPos(); x != 5 || y != 2 {
		t.Errorf("cursor = (%d, %d), want (5, 2)", x, y)
	}
}

func TestWrapSetsAttrWrap(t *testing.T) {
	term := New(WithSize(20, 5))

	term.WriteString(strings.Repeat("a", 20) + "b")

	for x := 0; x < 20; x++ {
		if g := term.Glyph(x, 0); g.Rune != 'a' {
			t.Fatalf("cell (%d,0) = %q, want 'a'", x, g.Rune)
		}
	}
	if term.Glyph(19, 0).Mode&AttrWrap == 0 {
		t.Error("cell (19,0) should carry AttrWrap")
	}
	if g := term.Glyph(0, 1); g.Rune != 'b' {
		t.Errorf("cell (0,1) = %q, want 'b'", g.Rune)
	}
	if x, y := term.CursorPos(); x != 1 || y != 1 {
		t.Errorf("cursor = (%d, %d), want (1, 1)", x, y)
	}
}

func TestWrapModeOff(t *testing.T) {
	term := New(WithSize(10, 3))
	term.WriteString("\x1b[?7l" + strings.Repeat("x", 15))
	if x, y := term.CursorPos(); x != 9 || y != 0 {
		t.Errorf("cursor = (%d, %d), want (9, 0)", x, y)
	}
	if term.LineContent(1) != "" {
		t.Error("content wrapped with DECAWM off")
	}
}

func TestSGRTrueColor(t *testing.T) {
	term := New(WithSize(20, 5))

	term.WriteString("\x1b[38;2;10;20;30mZ")

	g := term.Glyph(0, 0)
	if g.Rune != 'Z' {
		t.Fatalf("cell = %q, want 'Z'", g.Rune)
	}
	if g.FG != TrueColor(10, 20, 30) {
		t.Errorf("fg = %#x, want %#x", g.FG, TrueColor(10, 20, 30))
	}

	// Later writes inherit the color until the next SGR.
	term.WriteString("W")
	if g := term.Glyph(1, 0); g.FG != TrueColor(10, 20, 30) {
		t.Errorf("inherited fg = %#x, want %#x", g.FG, TrueColor(10, 20, 30))
	}
	term.WriteString("\x1b[0mV")
	if g := term.Glyph(2, 0); g.FG != ColorForeground {
		t.Errorf("fg after reset = %#x, want default", g.FG)
	}
}

func TestSGRAttributes(t *testing.T) {
	term := New(WithSize(40, 3))
	term.WriteString("\x1b[1;3;4;7mX")
	g := term.Glyph(0, 0)
	want := AttrBold | AttrItalic | AttrUnderline | AttrReverse
	if g.Mode != want {
		t.Errorf("mode = %#x, want %#x", g.Mode, want)
	}

	term.WriteString("\x1b[22;23mY")
	g = term.Glyph(1, 0)
	want = AttrUnderline | AttrReverse
	if g.Mode != want {
		t.Errorf("mode after clears = %#x, want %#x", g.Mode, want)
	}
}

func TestSGRIndexedColor(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b[31;48;5;123mQ")
	g := term.Glyph(0, 0)
	if g.FG != Color(1) {
		t.Errorf("fg = %v, want 1", g.FG)
	}
	if g.BG != Color(123) {
		t.Errorf("bg = %v, want 123", g.BG)
	}

	term.WriteString("\x1b[94mR")
	if g := term.Glyph(1, 0); g.FG != Color(12) {
		t.Errorf("bright fg = %v, want 12", g.FG)
	}
}

func TestSGRMalformedColorIgnored(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b[38;2;300;0;0mA")
	if g := term.Glyph(0, 0); g.FG != ColorForeground {
		t.Errorf("fg = %v, want untouched default", g.FG)
	}
}

func TestAltScreenRoundTrip(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("primary")
	xBefore, yBefore := term.CursorPos()

	term.WriteString("\x1b[?1049h")
	if !term.isSet(ModeAltScreen) {
		t.Fatal("alt screen not active after 1049h")
	}
	if got := term.LineContent(0); got != "" {
		t.Errorf("alt screen not clean: %q", got)
	}

	term.WriteString("A")
	if g := term.Glyph(7, 0); g.Rune != 'A' {
		t.Errorf("cell (7,0) on alt = %q, want 'A'", g.Rune)
	}

	term.WriteString("\x1b[?1049l")
	if term.isSet(ModeAltScreen) {
		t.Fatal("alt screen still active after 1049l")
	}
	if got := term.LineContent(0); got != "primary" {
		t.Errorf("primary content = %q, want %q", got, "primary")
	}
	if x, y := term.CursorPos(); x != xBefore || y != yBefore {
		t.Errorf("cursor = (%d, %d), want restored (%d, %d)", x, y, xBefore, yBefore)
	}
}

func TestAltScreenDisallowed(t *testing.T) {
	term := New(WithSize(20, 5), WithAltScreen(false))
	term.WriteString("keep")
	term.WriteString("\x1b[?1049h")
	if term.isSet(ModeAltScreen) {
		t.Error("alt screen entered despite being disallowed")
	}
	if got := term.LineContent(0); got != "keep" {
		t.Errorf("content = %q, want %q", got, "keep")
	}
}

func TestSelectionSnapWord(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("foo bar baz")

	term.StartSelection(5, 0, SelectionRegular, SnapWord)
	term.ExtendSelection(5, 0)
	term.normalizeSelection()

	if got := term.SelectionText(); got != "bar" {
		t.Errorf("selection = %q, want %q", got, "bar")
	}
}

func TestSelectionClearedByOverwrite(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("foo bar baz")
	term.StartSelection(0, 0, SelectionRegular, SnapWord)
	if term.sel.Mode != SelectionReady {
		t.Fatal("selection not ready")
	}

	term.WriteString("\r!")
	if term.sel.Mode != SelectionIdle {
		t.Error("selection should be cleared by a write on its row")
	}
}

func TestTabStops(t *testing.T) {
	term := New(WithSize(40, 3))
	term.WriteString("\t")
	if x, _ := term.CursorPos(); x != 8 {
		t.Errorf("cursor after tab = %d, want 8", x)
	}
	term.WriteString("\t")
	if x, _ := term.CursorPos(); x != 16 {
		t.Errorf("cursor after two tabs = %d, want 16", x)
	}

	// HTS sets a custom stop; TBC 0 clears it again.
	term.WriteString("\x1b[4;4H\x1bH\r\t")
	if x, _ := term.CursorPos(); x != 3 {
		t.Errorf("cursor after custom stop = %d, want 3", x)
	}
	term.WriteString("\x1b[4;4H\x1b[g\r\t")
	if x, _ := term.CursorPos(); x != 8 {
		t.Errorf("cursor after TBC = %d, want 8", x)
	}

	// TBC 3 drops every stop; tabs then run to the right edge.
	term.WriteString("\x1b[3g\r\t")
	if x, _ := term.CursorPos(); x != 39 {
		t.Errorf("cursor with no stops = %d, want 39", x)
	}
}

func TestBackwardTab(t *testing.T) {
	term := New(WithSize(40, 3))
	term.WriteString("\t\t\x1b[Z")
	if x, _ := term.CursorPos(); x != 8 {
		t.Errorf("cursor after CBT = %d, want 8", x)
	}
}

func TestScrollRegion(t *testing.T) {
	term := New(WithSize(10, 5))
	term.WriteString("\x1b[2;4r")
	if top, bot := term.ScrollRegion(); top != 1 || bot != 3 {
		t.Fatalf("region = (%d, %d), want (1, 3)", top, bot)
	}
	if x, y := term.CursorPos(); x != 0 || y != 0 {
		t.Errorf("cursor = (%d, %d), want origin", x, y)
	}

	// Writing at the bottom margin scrolls only the region.
	term.WriteString("\x1b[1;1Htop\x1b[4;1Hlast\n\n")
	if got := term.LineContent(0); got != "top" {
		t.Errorf("row 0 = %q, want %q (outside region)", got, "top")
	}
	if got := term.LineContent(1); got != "last" {
		t.Errorf("row 1 = %q, want %q (scrolled up)", got, "last")
	}
}

func TestOriginMode(t *testing.T) {
	term := New(WithSize(10, 5))
	term.WriteString("\x1b[2;4r\x1b[?6h")
	if x, y := term.CursorPos(); x != 0 || y != 1 {
		t.Fatalf("cursor = (%d, %d), want region origin (0, 1)", x, y)
	}
	term.WriteString("\x1b[1;1HX")
	if g := term.Glyph(0, 1); g.Rune != 'X' {
		t.Error("CUP 1;1 should land on the region's first row in origin mode")
	}
	// Moves cannot leave the region.
	term.WriteString("\x1b[9;1HY")
	if g := term.Glyph(0, 3); g.Rune != 'Y' {
		t.Error("CUP past the region should clamp to its bottom")
	}
}

func TestInsertAndDeleteLines(t *testing.T) {
	term := New(WithSize(10, 4))
	term.WriteString("a\r\nb\r\nc\r\nd")

	term.WriteString("\x1b[2;1H\x1b[L")
	want := []string{"a", "", "b", "c"}
	for y, w := range want {
		if got := term.LineContent(y); got != w {
			t.Errorf("after IL: row %d = %q, want %q", y, got, w)
		}
	}

	term.WriteString("\x1b[M")
	want = []string{"a", "b", "c", ""}
	for y, w := range want {
		if got := term.LineContent(y); got != w {
			t.Errorf("after DL: row %d = %q, want %q", y, got, w)
		}
	}
}

func TestInsertAndDeleteChars(t *testing.T) {
	term := New(WithSize(10, 2))
	term.WriteString("abcdef\x1b[1;3H\x1b[2@")
	if got := term.LineContent(0); got != "ab  cdef" {
		t.Errorf("after ICH: %q, want %q", got, "ab  cdef")
	}
	term.WriteString("\x1b[2P")
	if got := term.LineContent(0); got != "abcdef" {
		t.Errorf("after DCH: %q, want %q", got, "abcdef")
	}
	term.WriteString("\x1b[2X")
	if got := term.LineContent(0); got != "ab  ef" {
		t.Errorf("after ECH: %q, want %q", got, "ab  ef")
	}
}

func TestInsertMode(t *testing.T) {
	term := New(WithSize(10, 2))
	term.WriteString("abc\x1b[1;1H\x1b[4hX")
	if got := term.LineContent(0); got != "Xabc" {
		t.Errorf("insert mode write = %q, want %q", got, "Xabc")
	}
	term.WriteString("\x1b[4l\x1b[1;1HY")
	if got := term.LineContent(0); got != "Yabc" {
		t.Errorf("replace mode write = %q, want %q", got, "Yabc")
	}
}

func TestEraseLineVariants(t *testing.T) {
	term := New(WithSize(10, 2))
	term.WriteString("abcdefghij\x1b[1;5H\x1b[K")
	if got := term.LineContent(0); got != "abcd" {
		t.Errorf("EL 0 = %q, want %q", got, "abcd")
	}
	term.WriteString("\x1b[1;1Habcdefghij\x1b[1;5H\x1b[1K")
	if got := term.LineContent(0); got != "     fghij" {
		t.Errorf("EL 1 = %q, want %q", got, "     fghij")
	}
	term.WriteString("\x1b[2K")
	if got := term.LineContent(0); got != "" {
		t.Errorf("EL 2 = %q, want empty", got)
	}
}

func TestDeviceAttributes(t *testing.T) {
	var resp bytes.Buffer
	term := New(WithSize(20, 5), WithResponse(&resp))
	term.WriteString("\x1b[c")
	if resp.String() != "\x1b[?6c" {
		t.Errorf("DA reply = %q, want %q", resp.String(), "\x1b[?6c")
	}

	resp.Reset()
	term.WriteString("\x1bZ")
	if resp.String() != "\x1b[?6c" {
		t.Errorf("DECID reply = %q, want %q", resp.String(), "\x1b[?6c")
	}
}

func TestDeviceStatusReport(t *testing.T) {
	var resp bytes.Buffer
	term := New(WithSize(20, 5), WithResponse(&resp))
	term.WriteString("\x1b[3;5H\x1b[6n")
	if resp.String() != "\x1b[3;5R" {
		t.Errorf("DSR reply = %q, want %q", resp.String(), "\x1b[3;5R")
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b[3;7H\x1b7\x1b[1;1H\x1b8")
	if x, y := term.CursorPos(); x != 6 || y != 2 {
		t.Errorf("cursor = (%d, %d), want (6, 2)", x, y)
	}

	term.WriteString("\x1b[2;2H\x1b[s\x1b[5;5H\x1b[u")
	if x, y := term.CursorPos(); x != 1 || y != 1 {
		t.Errorf("cursor = (%d, %d), want (1, 1)", x, y)
	}
}

func TestLineDrawingCharset(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b(0j\x1b(Bj")
	if g := term.Glyph(0, 0); g.Rune != '┘' {
		t.Errorf("cell (0,0) = %q, want '┘'", g.Rune)
	}
	if g := term.Glyph(1, 0); g.Rune != 'j' {
		t.Errorf("cell (1,0) = %q, want 'j'", g.Rune)
	}
}

func TestShiftInOut(t *testing.T) {
	term := New(WithSize(20, 5))
	// Designate line drawing into G1, shift to it and back.
	term.WriteString("\x1b)0\x0eq\x0fq")
	if g := term.Glyph(0, 0); g.Rune != '─' {
		t.Errorf("cell (0,0) = %q, want '─'", g.Rune)
	}
	if g := term.Glyph(1, 0); g.Rune != 'q' {
		t.Errorf("cell (1,0) = %q, want 'q'", g.Rune)
	}
}

func TestDECAlignmentTest(t *testing.T) {
	term := New(WithSize(10, 3))
	term.WriteString("\x1b#8")
	for y := 0; y < 3; y++ {
		for x := 0; x < 10; x++ {
			if g := term.Glyph(x, y); g.Rune != 'E' {
				t.Fatalf("cell (%d,%d) = %q, want 'E'", x, y, g.Rune)
			}
		}
	}
}

func TestReverseIndex(t *testing.T) {
	term := New(WithSize(10, 3))
	term.WriteString("top\x1b[1;1H\x1bM")
	if got := term.LineContent(1); got != "top" {
		t.Errorf("row 1 = %q, want %q after RI scroll", got, "top")
	}
}

func TestFullReset(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b[?6h\x1b[2;4r\x1b[1mstuff\x1bc")
	if got := term.LineContent(0); got != "" {
		t.Errorf("screen not cleared by RIS: %q", got)
	}
	if top, bot := term.ScrollRegion(); top != 0 || bot != 4 {
		t.Errorf("region = (%d, %d), want full", top, bot)
	}
	if term.cursor.Attr.Mode != 0 {
		t.Errorf("attributes survived RIS: %#x", term.cursor.Attr.Mode)
	}
	if !term.isSet(ModeWrap) || !term.isSet(ModeUTF8) {
		t.Error("RIS should restore wrap and UTF-8 modes")
	}
}

func TestWideChar(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("日")
	g := term.Glyph(0, 0)
	if g.Rune != '日' || g.Mode&AttrWide == 0 {
		t.Fatalf("cell (0,0) = %+v, want wide 日", g)
	}
	d := term.Glyph(1, 0)
	if d.Rune != 0 || d.Mode&AttrWideDummy == 0 {
		t.Errorf("cell (1,0) = %+v, want wide dummy", d)
	}
	if x, _ := term.CursorPos(); x != 2 {
		t.Errorf("cursor = %d, want 2", x)
	}
}

func TestWideCharAtMarginWraps(t *testing.T) {
	term := New(WithSize(5, 3))
	term.WriteString("abcd日")
	if g := term.Glyph(0, 1); g.Rune != '日' {
		t.Errorf("wide char should wrap whole: row 1 = %q", term.LineContent(1))
	}
}

func TestOverwriteWideCharClearsDummy(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("日\x1b[1;1HX")
	if g := term.Glyph(1, 0); g.Mode&AttrWideDummy != 0 {
		t.Error("dummy cell should be cleared when the wide cell is overwritten")
	}
	term.WriteString("\x1b[1;1H漢\x1b[1;2HY")
	if g := term.Glyph(0, 0); g.Mode&AttrWide != 0 {
		t.Error("wide flag should be cleared when the dummy cell is overwritten")
	}
}

func TestEcho(t *testing.T) {
	term := New(WithSize(20, 5))
	term.Echo('a')
	term.Echo(0x03)
	if got := term.LineContent(0); got != "a^C" {
		t.Errorf("echoed = %q, want %q", got, "a^C")
	}
}

func TestTitleOSC(t *testing.T) {
	var got string
	term := New(WithSize(20, 5), WithTitle(&recordTitle{&got}))
	term.WriteString("\x1b]2;hello world\x07")
	if got != "hello world" {
		t.Errorf("title = %q, want %q", got, "hello world")
	}

	term.WriteString("\x1b]0;other\x1b\\")
	if got != "other" {
		t.Errorf("title = %q, want %q", got, "other")
	}

	// Legacy ESC k title, terminated by ST.
	term.WriteString("\x1bklegacy\x1b\\")
	if got != "legacy" {
		t.Errorf("title = %q, want %q", got, "legacy")
	}
}

type recordTitle struct{ s *string }

func (r *recordTitle) SetTitle(title string) { *r.s = title }
func (r *recordTitle) ResetTitle()           { *r.s = "" }

type recordClipboard struct{ data []byte }

func (r *recordClipboard) Write(clipboard byte, data []byte) { r.data = data }

func TestClipboardOSC52(t *testing.T) {
	var clip recordClipboard
	term := New(WithSize(20, 5), WithClipboard(&clip))
	term.WriteString("\x1b]52;c;aGVsbG8=\x07")
	if string(clip.data) != "hello" {
		t.Errorf("clipboard = %q, want %q", clip.data, "hello")
	}
}

func TestPaletteOSC(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b]4;1;#102030\x07")
	c := term.ResolveColor(Color(1))
	if c.R != 0x10 || c.G != 0x20 || c.B != 0x30 {
		t.Errorf("palette entry 1 = %+v, want #102030", c)
	}

	term.WriteString("\x1b]104;1\x07")
	if got := term.ResolveColor(Color(1)); got != DefaultPalette[1] {
		t.Errorf("palette entry 1 = %+v, want default", got)
	}
}

func TestOSCInterruptedByCan(t *testing.T) {
	var got string
	term := New(WithSize(20, 5), WithTitle(&recordTitle{&got}))
	term.WriteString("\x1b]2;partial\x18done")
	if got != "" {
		t.Errorf("canceled OSC should not set the title, got %q", got)
	}
	if gotLine := term.LineContent(0); gotLine != "done" {
		t.Errorf("row 0 = %q, want %q", gotLine, "done")
	}
}

func TestSixelDetectAndDiscard(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1bPq#0;2;0;0;0#0~~\x1b\\after")
	if got := term.LineContent(0); got != "after" {
		t.Errorf("row 0 = %q, want %q (payload discarded)", got, "after")
	}
	if term.isSet(ModeSixel) {
		t.Error("sixel mode should end at ST")
	}
}

func TestPrinterMediaCopy(t *testing.T) {
	var sink bytes.Buffer
	term := New(WithSize(10, 3), WithPrinter(&sink))
	term.WriteString("hi\x1b[1i")
	if got := sink.String(); got != "hi\n" {
		t.Errorf("dumped line = %q, want %q", got, "hi\n")
	}

	sink.Reset()
	term.WriteString("\x1b[5iX")
	if !strings.Contains(sink.String(), "X") {
		t.Errorf("print mode did not mirror input: %q", sink.String())
	}
	term.WriteString("\x1b[4i")
	sink.Reset()
	term.WriteString("Y")
	if sink.Len() != 0 {
		t.Errorf("print mode still mirroring after MC 4: %q", sink.String())
	}
}

func TestBracketedPaste(t *testing.T) {
	term := New(WithSize(20, 5))
	if got := string(term.WrapPaste([]byte("hi"))); got != "hi" {
		t.Errorf("unwrapped paste = %q", got)
	}
	term.WriteString("\x1b[?2004h")
	if got := string(term.WrapPaste([]byte("hi"))); got != "\x1b[200~hi\x1b[201~" {
		t.Errorf("wrapped paste = %q", got)
	}
}

func TestFocusReport(t *testing.T) {
	term := New(WithSize(20, 5))
	if term.FocusReport(true) != nil {
		t.Error("focus report emitted with mode off")
	}
	term.WriteString("\x1b[?1004h")
	if got := string(term.FocusReport(true)); got != "\x1b[I" {
		t.Errorf("focus in = %q, want ESC[I", got)
	}
	if got := string(term.FocusReport(false)); got != "\x1b[O" {
		t.Errorf("focus out = %q, want ESC[O", got)
	}
}

func TestSplitUTF8Write(t *testing.T) {
	term := New(WithSize(20, 5))
	b := []byte("héllo")
	for _, c := range b {
		term.Write([]byte{c})
	}
	if got := term.LineContent(0); got != "héllo" {
		t.Errorf("row 0 = %q, want %q", got, "héllo")
	}
}

func TestByteModeWrite(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b%@")
	term.Write([]byte{0xe9}) // Latin-1 é as a raw byte
	if g := term.Glyph(0, 0); g.Rune != 0xe9 {
		t.Errorf("cell = %#x, want 0xe9", g.Rune)
	}
	term.WriteString("\x1b%G")
	if !term.isSet(ModeUTF8) {
		t.Error("ESC % G should re-enable UTF-8")
	}
}

func TestResizePreservesContent(t *testing.T) {
	term := New(WithSize(10, 4))
	term.WriteString("abc\r\ndef")
	term.Resize(20, 6)
	if got := term.LineContent(0); got != "abc" {
		t.Errorf("row 0 = %q, want %q", got, "abc")
	}
	if got := term.LineContent(1); got != "def" {
		t.Errorf("row 1 = %q, want %q", got, "def")
	}
	if top, bot := term.ScrollRegion(); top != 0 || bot != 5 {
		t.Errorf("region = (%d, %d), want full height", top, bot)
	}
}

func TestResizeKeepsCursorOnScreen(t *testing.T) {
	term := New(WithSize(10, 6))
	term.WriteString("\x1b[6;1Hbottom")
	term.Resize(10, 3)
	_, y := term.CursorPos()
	if y > 2 {
		t.Errorf("cursor row = %d, off screen", y)
	}
	if got := term.LineContent(2); got != "bottom" {
		t.Errorf("row 2 = %q, want %q (slid up)", got, "bottom")
	}
}

func TestResizeExtendsTabStops(t *testing.T) {
	term := New(WithSize(16, 3))
	term.Resize(40, 3)
	for _, want := range []int{24, 32} {
		if !term.TabStop(want) {
			t.Errorf("expected tab stop at %d after widening", want)
		}
	}
}

func TestReverseVideoMarksDirty(t *testing.T) {
	term := New(WithSize(10, 3))
	term.ClearDirty()
	term.WriteString("\x1b[?5h")
	if !term.isSet(ModeReverse) {
		t.Fatal("reverse mode not set")
	}
	for y := 0; y < 3; y++ {
		if !term.Dirty(y) {
			t.Errorf("row %d should be dirty after DECSCNM", y)
		}
	}
}

func TestModeToggles(t *testing.T) {
	term := New(WithSize(10, 3))
	seqs := []struct {
		seq  string
		mode TerminalMode
		on   bool
	}{
		{"\x1b[?1h", ModeAppCursor, true},
		{"\x1b[?1l", ModeAppCursor, false},
		{"\x1b[?25l", ModeHide, true},
		{"\x1b[?25h", ModeHide, false},
		{"\x1b[?1000h", ModeMouseButton, true},
		{"\x1b[?1006h", ModeMouseSGR, true},
		{"\x1b[4h", ModeInsert, true},
		{"\x1b[12l", ModeEcho, true},
		{"\x1b[20h", ModeCRLF, true},
		{"\x1b=", ModeAppKeypad, true},
		{"\x1b>", ModeAppKeypad, false},
	}
	for _, tt := range seqs {
		term.WriteString(tt.seq)
		if got := term.isSet(tt.mode); got != tt.on {
			t.Errorf("%q: mode %#x = %v, want %v", tt.seq, tt.mode, got, tt.on)
		}
	}
}

func TestCRLFMode(t *testing.T) {
	term := New(WithSize(10, 3))
	term.WriteString("ab\ncd")
	if got := term.LineContent(1); got != "  cd" {
		t.Errorf("LF without CRLF mode: row 1 = %q, want %q", got, "  cd")
	}
	term.WriteString("\x1b[2J\x1b[H\x1b[20hab\ncd")
	if got := term.LineContent(1); got != "cd" {
		t.Errorf("LF with CRLF mode: row 1 = %q, want %q", got, "cd")
	}
}

func TestControlInCSI(t *testing.T) {
	// A control code in the middle of a CSI sequence executes without
	// aborting the sequence.
	term := New(WithSize(20, 5))
	term.WriteString("ab\x1b[\b2DX")
	// BS moved the cursor from 2 to 1; CUB 2 clamps to 0; X overwrites 'a'.
	if got := term.LineContent(0); got != "Xb" {
		t.Errorf("row 0 = %q, want %q", got, "Xb")
	}
}

func TestSUBOverwritesWithQuestionMark(t *testing.T) {
	term := New(WithSize(20, 5))
	term.WriteString("\x1b[1;1H\x1a")
	if g := term.Glyph(0, 0); g.Rune != '?' {
		t.Errorf("cell (0,0) = %q, want '?'", g.Rune)
	}
	// SUB does not advance the cursor: the next character replaces the '?'.
	term.WriteString("X")
	if g := term.Glyph(0, 0); g.Rune != 'X' {
		t.Errorf("cell (0,0) = %q, want 'X'", g.Rune)
	}
}

func TestSnapshot(t *testing.T) {
	term := New(WithSize(10, 3))
	term.WriteString("one\r\ntwo")
	snap := term.Snapshot()
	if snap.Cols != 10 || snap.Rows != 3 {
		t.Errorf("snapshot size = %dx%d", snap.Cols, snap.Rows)
	}
	if got := snap.String(); got != "one\ntwo\n" {
		t.Errorf("snapshot = %q, want %q", got, "one\ntwo\n")
	}
}
