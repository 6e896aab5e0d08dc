package mt

import (
	"fmt"
	"log/slog"
	"strings"
)

// parseState is the escape recognizer's current state. Unlike the classic
// bitset encoding, exactly one state is active at a time; the pending-ST
// flag for finished string sequences is tracked separately.
type parseState int

const (
	// stateGround prints characters and executes control codes.
	stateGround parseState = iota
	// stateEscape has seen ESC and selects a branch on the next byte.
	stateEscape
	// stateCSI collects bytes after ESC [ until a final byte.
	stateCSI
	// stateString collects an OSC/DCS/APC/PM payload until ST.
	stateString
	// stateAltCharset expects a character set designator after ESC ( ) * +.
	stateAltCharset
	// stateTest expects a DEC test selector after ESC #.
	stateTest
	// stateUTF8 expects G or @ after ESC %.
	stateUTF8
)

// vt102Identify is the reply sent for DA and DECID. We claim to be a
// VT102; feature detection is via terminfo in practice.
const vt102Identify = "\x1b[?6c"

func isControlC0(u rune) bool {
	return (u >= 0 && u <= 0x1f) || u == 0x7f
}

func isControlC1(u rune) bool {
	return u >= 0x80 && u <= 0x9f
}

func isControl(u rune) bool {
	return isControlC0(u) || isControlC1(u)
}

// logf reports a protocol malformation. The stream is never rejected:
// malformed sequences are logged and dropped.
func logf(format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...))
}

// dumpBytes renders a sequence buffer printably for diagnostics.
func dumpBytes(buf []byte) string {
	var sb strings.Builder
	for _, c := range buf {
		switch {
		case c == '\n':
			sb.WriteString(`(\n)`)
		case c == '\r':
			sb.WriteString(`(\r)`)
		case c == 0x1b:
			sb.WriteString(`(\e)`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "(%02x)", c)
		}
	}
	return sb.String()
}

// putRune drives one code point through the terminal: string collection
// first, then control codes, then escape dispatch, then printing.
func (t *Terminal) putRune(u rune) {
	control := isControl(u)

	var width int
	var enc []byte
	if !t.isSet(ModeUTF8) && !t.isSet(ModeSixel) {
		width = 1
		t.encScratch[0] = byte(u)
		enc = t.encScratch[:1]
	} else {
		width = runeWidth(u)
		if !control && width == 0 && u >= 0x80 {
			// Combining marks and other zero-width input are dropped;
			// cells always hold a spacing character.
			return
		}
		if width == 0 {
			width = 1
		}
		enc = EncodeRune(t.encScratch[:0], u)
	}

	if t.isSet(ModePrint) {
		t.printString(string(enc))
	}

	// The string payload owns every byte until a terminator: BEL, CAN,
	// SUB, ESC, or any C1 control.
	if t.state == stateString {
		if u == 0x07 || u == 0x18 || u == 0x1a || u == 0x1b || isControlC1(u) {
			t.state = stateGround
			if t.isSet(ModeSixel) {
				// Sixel payloads are detected and discarded; the
				// terminator still executes below so a closing ESC \
				// is consumed cleanly.
				t.mode &^= ModeSixel
			} else {
				t.pendingStr = true
			}
			// The terminator is itself a control code; run it below.
		} else {
			if t.isSet(ModeSixel) {
				return
			}
			if t.str.typ == 'P' && len(t.str.buf) == 0 && u == 'q' {
				t.mode |= ModeSixel
			}
			t.str.append(enc)
			return
		}
	}

	// Control codes execute as soon as they arrive, even in the middle
	// of a CSI sequence.
	if control {
		t.controlCode(u)
		return
	}

	switch t.state {
	case stateEscape:
		if t.escHandle(u) {
			t.state = stateGround
		}
		return
	case stateCSI:
		if t.csi.append(byte(u)) {
			t.state = stateGround
			t.csi.parse()
			t.csiHandle()
		}
		return
	case stateUTF8:
		t.defUTF8(u)
		t.state = stateGround
		return
	case stateAltCharset:
		t.defTran(u)
		t.state = stateGround
		return
	case stateTest:
		t.decTest(u)
		t.state = stateGround
		return
	}

	if t.sel.ob.x != -1 && between(t.cursor.Y, t.sel.nb.y, t.sel.ne.y) {
		t.ClearSelection()
	}

	if t.isSet(ModeWrap) && t.cursor.State&CursorWrapNext != 0 {
		t.activeBuffer().Glyph(t.cursor.X, t.cursor.Y).Mode |= AttrWrap
		t.newline(true)
	}

	if t.isSet(ModeInsert) && t.cursor.X+width < t.cols {
		t.activeBuffer().InsertBlanks(t.cursor.X, t.cursor.Y, width, t.cursor.Attr)
	}

	if t.cursor.X+width > t.cols {
		t.newline(true)
	}

	t.setChar(u, t.cursor.Attr, t.cursor.X, t.cursor.Y)

	if width == 2 {
		g := t.activeBuffer().Glyph(t.cursor.X, t.cursor.Y)
		g.Mode |= AttrWide
		if t.cursor.X+1 < t.cols {
			dummy := t.cursor.Attr
			dummy.Rune = 0
			dummy.Mode = AttrWideDummy
			t.activeBuffer().SetGlyph(t.cursor.X+1, t.cursor.Y, dummy)
		}
	}

	if t.cursor.X+width < t.cols {
		t.moveTo(t.cursor.X+width, t.cursor.Y)
	} else {
		t.cursor.State |= CursorWrapNext
	}
}

// controlCode executes a C0 or C1 control byte. Only CAN, SUB, BEL, and C1
// controls terminate an in-progress string sequence; the rest leave the
// string state alone.
func (t *Terminal) controlCode(u rune) {
	switch u {
	case '\t':
		t.putTab(1)
		return
	case '\b':
		t.moveTo(t.cursor.X-1, t.cursor.Y)
		return
	case '\r':
		t.moveTo(0, t.cursor.Y)
		return
	case '\f', '\v', '\n':
		t.newline(t.isSet(ModeCRLF))
		return
	case '\a':
		if t.pendingStr {
			// BEL terminates a string for xterm compatibility.
			t.strHandle()
		} else {
			t.bell.Ring()
		}
	case 0x1b:
		t.csi.reset()
		t.state = stateEscape
		return
	case 0x0e: // SO: locking shift 1
		t.activeCharset = 1
		return
	case 0x0f: // SI: locking shift 0
		t.activeCharset = 0
		return
	case 0x1a: // SUB
		t.setChar('?', t.cursor.Attr, t.cursor.X, t.cursor.Y)
		fallthrough
	case 0x18: // CAN
		t.csi.reset()
		t.state = stateGround
	case 0x00, 0x05, 0x11, 0x13, 0x7f: // NUL, ENQ, XON, XOFF, DEL
		return
	case 0x85: // NEL
		t.newline(true)
	case 0x88: // HTS
		t.tabs[t.cursor.X] = true
	case 0x9a: // DECID
		t.writeResponse(vt102Identify)
	case 0x90, 0x9d, 0x9e, 0x9f: // DCS, OSC, PM, APC
		t.strSequence(u)
		return
	default:
		if !isControlC1(u) {
			return
		}
		// Remaining C1 controls are ignored, but still cancel strings.
	}
	t.pendingStr = false
}

// strSequence begins collecting a string sequence introduced by c (either
// the raw C1 byte or the 7-bit type character).
func (t *Terminal) strSequence(c rune) {
	typ := byte(c)
	switch c {
	case 0x90:
		typ = 'P'
	case 0x9d:
		typ = ']'
	case 0x9e:
		typ = '^'
	case 0x9f:
		typ = '_'
	}
	t.str.reset(typ)
	t.state = stateString
}

// escHandle dispatches the byte after ESC. It returns true when the
// sequence is finished and the parser should return to ground.
func (t *Terminal) escHandle(u rune) bool {
	switch u {
	case '[':
		t.state = stateCSI
		return false
	case '#':
		t.state = stateTest
		return false
	case '%':
		t.state = stateUTF8
		return false
	case 'P', '_', '^', ']', 'k': // DCS, APC, PM, OSC, legacy title
		t.strSequence(u)
		return false
	case 'n': // LS2
		t.activeCharset = 2
	case 'o': // LS3
		t.activeCharset = 3
	case '(', ')', '*', '+': // designate G0-G3
		t.icharset = int(u - '(')
		t.state = stateAltCharset
		return false
	case 'D': // IND
		if t.cursor.Y == t.bot {
			t.scrollUp(t.top, 1)
		} else {
			t.moveTo(t.cursor.X, t.cursor.Y+1)
		}
	case 'E': // NEL
		t.newline(true)
	case 'H': // HTS
		t.tabs[t.cursor.X] = true
	case 'M': // RI
		if t.cursor.Y == t.top {
			t.scrollDown(t.top, 1)
		} else {
			t.moveTo(t.cursor.X, t.cursor.Y-1)
		}
	case 'Z': // DECID
		t.writeResponse(vt102Identify)
	case 'c': // RIS
		t.Reset()
		t.title.ResetTitle()
	case '=': // DECPAM
		t.mode |= ModeAppKeypad
	case '>': // DECPNM
		t.mode &^= ModeAppKeypad
	case '7': // DECSC
		t.saveCursor()
	case '8': // DECRC
		t.restoreCursor()
	case '\\': // ST
		if t.pendingStr {
			t.strHandle()
		}
	default:
		logf("unknown sequence ESC 0x%02X %q", u, string(u))
	}
	return true
}

// defUTF8 handles ESC % sequences switching stream interpretation.
func (t *Terminal) defUTF8(u rune) {
	switch u {
	case 'G':
		t.mode |= ModeUTF8
	case '@':
		t.mode &^= ModeUTF8
	}
}

// defTran designates a character set into the slot chosen by ESC ( ) * +.
func (t *Terminal) defTran(u rune) {
	switch u {
	case '0':
		t.charsets[t.icharset] = CharsetLineDrawing
	case 'B':
		t.charsets[t.icharset] = CharsetASCII
	default:
		logf("unhandled charset: ESC ( %q", string(u))
	}
}

// decTest handles ESC # sequences; only the screen alignment test is
// implemented.
func (t *Terminal) decTest(u rune) {
	if u == '8' {
		for x := 0; x < t.cols; x++ {
			for y := 0; y < t.rows; y++ {
				t.setChar('E', t.cursor.Attr, x, y)
			}
		}
	}
}
