package mt

import (
	"strconv"
	"strings"
)

// csiBufSize bounds a CSI sequence; longer sequences are finalized early.
const csiBufSize = 128 * utfSize

// csiEscape holds one parsed control sequence:
// ESC '[' [[ [<priv>] <arg> [;]] <mode> [<mode>]]
type csiEscape struct {
	buf  []byte
	priv bool
	args []int
	mode [2]byte
}

// append collects one byte and reports whether the sequence is complete:
// either a final byte arrived or the buffer is full.
func (c *csiEscape) append(b byte) bool {
	c.buf = append(c.buf, b)
	return (b >= 0x40 && b <= 0x7e) || len(c.buf) >= csiBufSize
}

func (c *csiEscape) reset() {
	c.buf = c.buf[:0]
	c.priv = false
	c.args = c.args[:0]
	c.mode = [2]byte{}
}

// parse splits the collected buffer into the private marker, the numeric
// arguments, and the final mode byte(s). Overflowed numbers become -1;
// empty arguments parse as 0.
func (c *csiEscape) parse() {
	c.priv = false
	c.args = c.args[:0]

	buf := c.buf
	if len(buf) > 0 && buf[0] == '?' {
		c.priv = true
		buf = buf[1:]
	}

	pos := 0
	for pos < len(buf) {
		start := pos
		for pos < len(buf) && buf[pos] >= '0' && buf[pos] <= '9' {
			pos++
		}
		v := 0
		if pos > start {
			parsed, err := strconv.Atoi(string(buf[start:pos]))
			if err != nil {
				parsed = -1
			}
			v = parsed
		}
		c.args = append(c.args, v)
		if pos >= len(buf) || buf[pos] != ';' {
			break
		}
		pos++
	}

	c.mode = [2]byte{}
	copy(c.mode[:], buf[pos:])
}

// arg returns argument i, substituting def when the argument is missing
// or zero.
func (c *csiEscape) arg(i, def int) int {
	if i < len(c.args) && c.args[i] != 0 {
		return c.args[i]
	}
	return def
}

// String re-serializes the parsed sequence; used for diagnostics.
func (c *csiEscape) String() string {
	var sb strings.Builder
	sb.WriteString("ESC[")
	if c.priv {
		sb.WriteByte('?')
	}
	for i, a := range c.args {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteByte(c.mode[0])
	if c.mode[1] != 0 {
		sb.WriteByte(c.mode[1])
	}
	return sb.String()
}

// csiHandle dispatches a completed CSI sequence.
func (t *Terminal) csiHandle() {
	c := &t.csi
	switch c.mode[0] {
	default:
		t.csiUnknown()
	case '@': // ICH: insert blank chars
		t.insertBlanks(c.arg(0, 1))
	case 'A': // CUU: cursor up
		t.moveTo(t.cursor.X, t.cursor.Y-c.arg(0, 1))
	case 'B', 'e': // CUD, VPR: cursor down
		t.moveTo(t.cursor.X, t.cursor.Y+c.arg(0, 1))
	case 'C', 'a': // CUF, HPR: cursor right
		t.moveTo(t.cursor.X+c.arg(0, 1), t.cursor.Y)
	case 'D': // CUB: cursor left
		t.moveTo(t.cursor.X-c.arg(0, 1), t.cursor.Y)
	case 'E': // CNL: cursor down, first column
		t.moveTo(0, t.cursor.Y+c.arg(0, 1))
	case 'F': // CPL: cursor up, first column
		t.moveTo(0, t.cursor.Y-c.arg(0, 1))
	case 'G', '`': // CHA, HPA: move to column
		t.moveTo(c.arg(0, 1)-1, t.cursor.Y)
	case 'H', 'f': // CUP, HVP: move to row and column
		t.moveAbsTo(c.arg(1, 1)-1, c.arg(0, 1)-1)
	case 'I': // CHT: forward tab stops
		t.putTab(c.arg(0, 1))
	case 'J': // ED: clear screen
		t.ClearSelection()
		switch c.arg(0, 0) {
		case 0: // below
			t.clearRegion(t.cursor.X, t.cursor.Y, t.cols-1, t.cursor.Y)
			if t.cursor.Y < t.rows-1 {
				t.clearRegion(0, t.cursor.Y+1, t.cols-1, t.rows-1)
			}
		case 1: // above
			if t.cursor.Y > 0 {
				t.clearRegion(0, 0, t.cols-1, t.cursor.Y-1)
			}
			t.clearRegion(0, t.cursor.Y, t.cursor.X, t.cursor.Y)
		case 2: // all
			t.clearRegion(0, 0, t.cols-1, t.rows-1)
		default:
			t.csiUnknown()
		}
	case 'K': // EL: clear line
		switch c.arg(0, 0) {
		case 0: // right
			t.clearRegion(t.cursor.X, t.cursor.Y, t.cols-1, t.cursor.Y)
		case 1: // left
			t.clearRegion(0, t.cursor.Y, t.cursor.X, t.cursor.Y)
		case 2: // whole line
			t.clearRegion(0, t.cursor.Y, t.cols-1, t.cursor.Y)
		}
	case 'L': // IL: insert blank lines
		t.insertLines(c.arg(0, 1))
	case 'M': // DL: delete lines
		t.deleteLines(c.arg(0, 1))
	case 'P': // DCH: delete chars
		t.deleteChars(c.arg(0, 1))
	case 'S': // SU: scroll up
		t.scrollUp(t.top, c.arg(0, 1))
	case 'T': // SD: scroll down
		t.scrollDown(t.top, c.arg(0, 1))
	case 'X': // ECH: erase chars in place
		t.clearRegion(t.cursor.X, t.cursor.Y, t.cursor.X+c.arg(0, 1)-1, t.cursor.Y)
	case 'Z': // CBT: backward tab stops
		t.putTab(-c.arg(0, 1))
	case 'c': // DA: device attributes
		if c.arg(0, 0) == 0 {
			t.writeResponse(vt102Identify)
		}
	case 'd': // VPA: move to row
		t.moveAbsTo(t.cursor.X, c.arg(0, 1)-1)
	case 'g': // TBC: tabulation clear
		switch c.arg(0, 0) {
		case 0:
			t.tabs[t.cursor.X] = false
		case 3:
			for i := range t.tabs {
				t.tabs[i] = false
			}
		default:
			t.csiUnknown()
		}
	case 'h': // SM: set mode
		t.setMode(c.priv, true, c.args)
	case 'i': // MC: media copy
		switch c.arg(0, 0) {
		case 0:
			t.Dump()
		case 1:
			t.DumpLine(t.cursor.Y)
		case 2:
			t.printString(t.SelectionText())
		case 4:
			t.mode &^= ModePrint
		case 5:
			t.mode |= ModePrint
		}
	case 'l': // RM: reset mode
		t.setMode(c.priv, false, c.args)
	case 'm': // SGR: character attributes
		t.setAttr(c.args)
	case 'n': // DSR: device status report
		if c.arg(0, 0) == 6 {
			t.writeResponse("\x1b[" + strconv.Itoa(t.cursor.Y+1) + ";" + strconv.Itoa(t.cursor.X+1) + "R")
		}
	case 'r': // DECSTBM: set scrolling region
		if c.priv {
			t.csiUnknown()
		} else {
			t.setScroll(c.arg(0, 1)-1, c.arg(1, t.rows)-1)
			t.moveAbsTo(0, 0)
		}
	case 's': // DECSC: save cursor
		t.saveCursor()
	case 'u': // DECRC: restore cursor
		t.restoreCursor()
	case ' ':
		switch c.mode[1] {
		case 'q': // DECSCUSR: set cursor style
			style := c.arg(0, 1)
			if style < 0 || style > 6 {
				t.csiUnknown()
				break
			}
			t.cursorStyle = CursorStyle(style)
		default:
			t.csiUnknown()
		}
	}
}

func (t *Terminal) csiUnknown() {
	logf("unknown csi ESC[%s", dumpBytes(t.csi.buf))
}

// defColor decodes an SGR 38/48 extended color starting at args[*i+1].
// It advances *i past the consumed parameters and returns a negative value
// on malformed input.
func (t *Terminal) defColor(args []int, i *int) int64 {
	if *i+1 >= len(args) {
		return -1
	}
	switch args[*i+1] {
	case 2: // direct color in RGB space
		if *i+4 >= len(args) {
			logf("sgr(38): incorrect number of parameters (%d)", len(args))
			break
		}
		r, g, b := args[*i+2], args[*i+3], args[*i+4]
		*i += 4
		if !between(r, 0, 255) || !between(g, 0, 255) || !between(b, 0, 255) {
			logf("sgr: bad rgb color (%d,%d,%d)", r, g, b)
			break
		}
		return int64(TrueColor(uint8(r), uint8(g), uint8(b)))
	case 5: // indexed color
		if *i+2 >= len(args) {
			logf("sgr(38): incorrect number of parameters (%d)", len(args))
			break
		}
		*i += 2
		if !between(args[*i], 0, 255) {
			logf("sgr: bad color index %d", args[*i])
			break
		}
		return int64(args[*i])
	default:
		logf("sgr(38): unknown color space %d", args[*i+1])
	}
	return -1
}

// setAttr applies an SGR parameter list to the cursor's attribute
// template.
func (t *Terminal) setAttr(args []int) {
	if len(args) == 0 {
		args = []int{0}
	}
	for i := 0; i < len(args); i++ {
		switch v := args[i]; v {
		case 0:
			t.cursor.Attr.Mode &^= AttrBold | AttrFaint | AttrItalic |
				AttrUnderline | AttrBlink | AttrReverse | AttrInvisible | AttrStruck
			t.cursor.Attr.FG = ColorForeground
			t.cursor.Attr.BG = ColorBackground
		case 1:
			t.cursor.Attr.Mode |= AttrBold
		case 2:
			t.cursor.Attr.Mode |= AttrFaint
		case 3:
			t.cursor.Attr.Mode |= AttrItalic
		case 4:
			t.cursor.Attr.Mode |= AttrUnderline
		case 5, 6: // slow and rapid blink
			t.cursor.Attr.Mode |= AttrBlink
		case 7:
			t.cursor.Attr.Mode |= AttrReverse
		case 8:
			t.cursor.Attr.Mode |= AttrInvisible
		case 9:
			t.cursor.Attr.Mode |= AttrStruck
		case 22:
			t.cursor.Attr.Mode &^= AttrBold | AttrFaint
		case 23:
			t.cursor.Attr.Mode &^= AttrItalic
		case 24:
			t.cursor.Attr.Mode &^= AttrUnderline
		case 25:
			t.cursor.Attr.Mode &^= AttrBlink
		case 27:
			t.cursor.Attr.Mode &^= AttrReverse
		case 28:
			t.cursor.Attr.Mode &^= AttrInvisible
		case 29:
			t.cursor.Attr.Mode &^= AttrStruck
		case 38:
			if idx := t.defColor(args, &i); idx >= 0 {
				t.cursor.Attr.FG = Color(idx)
			}
		case 39:
			t.cursor.Attr.FG = ColorForeground
		case 48:
			if idx := t.defColor(args, &i); idx >= 0 {
				t.cursor.Attr.BG = Color(idx)
			}
		case 49:
			t.cursor.Attr.BG = ColorBackground
		default:
			switch {
			case between(v, 30, 37):
				t.cursor.Attr.FG = Color(v - 30)
			case between(v, 40, 47):
				t.cursor.Attr.BG = Color(v - 40)
			case between(v, 90, 97):
				t.cursor.Attr.FG = Color(v - 90 + 8)
			case between(v, 100, 107):
				t.cursor.Attr.BG = Color(v - 100 + 8)
			default:
				logf("sgr: unknown attribute %d in %s", v, t.csi.String())
			}
		}
	}
}

// setMode sets or resets terminal modes for CSI h / CSI l.
func (t *Terminal) setMode(priv, set bool, args []int) {
	for _, arg := range args {
		if priv {
			switch arg {
			case 1: // DECCKM: application cursor keys
				t.setModeBit(set, ModeAppCursor)
			case 5: // DECSCNM: reverse video
				old := t.mode
				t.setModeBit(set, ModeReverse)
				if old != t.mode {
					t.MarkAllDirty()
				}
			case 6: // DECOM: origin mode
				if set {
					t.cursor.State |= CursorOrigin
				} else {
					t.cursor.State &^= CursorOrigin
				}
				t.moveAbsTo(0, 0)
			case 7: // DECAWM: auto wrap
				t.setModeBit(set, ModeWrap)
			case 0, 2, 3, 4, 8, 12, 18, 19, 42:
				// DECANM, DECCOLM, DECSCLM, DECARM, att610, DECPFF,
				// DECPEX, DECNRCM: ignored
			case 25: // DECTCEM: text cursor enable
				t.setModeBit(!set, ModeHide)
			case 9: // X10 mouse compatibility
				t.motion.SetPointerMotion(false)
				t.setModeBit(false, ModeMouse)
				t.setModeBit(set, ModeMouseX10)
			case 1000: // report button presses
				t.motion.SetPointerMotion(false)
				t.setModeBit(false, ModeMouse)
				t.setModeBit(set, ModeMouseButton)
			case 1002: // report motion on button press
				t.motion.SetPointerMotion(false)
				t.setModeBit(false, ModeMouse)
				t.setModeBit(set, ModeMouseMotion)
			case 1003: // report all motion
				t.motion.SetPointerMotion(set)
				t.setModeBit(false, ModeMouse)
				t.setModeBit(set, ModeMouseMany)
			case 1004: // focus events
				t.setModeBit(set, ModeFocus)
			case 1006: // SGR mouse encoding
				t.setModeBit(set, ModeMouseSGR)
			case 1034:
				t.setModeBit(set, Mode8Bit)
			case 47, 1047, 1048, 1049:
				t.setAltScreen(arg, set)
			case 2004: // bracketed paste
				t.setModeBit(set, ModeBracketedPaste)
			case 1001, 1005, 1015:
				// Mouse highlight, UTF-8 mouse, and urxvt mouse modes are
				// intentionally unsupported.
			default:
				logf("unknown private set/reset mode %d", arg)
			}
		} else {
			switch arg {
			case 0: // error, ignored
			case 2: // KAM: keyboard action
				t.setModeBit(set, ModeKeyboardLock)
			case 4: // IRM: insert-replace
				t.setModeBit(set, ModeInsert)
			case 12: // SRM: send-receive
				t.setModeBit(!set, ModeEcho)
			case 20: // LNM: linefeed/newline
				t.setModeBit(set, ModeCRLF)
			default:
				logf("unknown set/reset mode %d", arg)
			}
		}
	}
}

// setAltScreen implements the 47/1047/1048/1049 cascade: 1049 and 1048
// save or restore the cursor, 47/1047/1049 swap screens, and a request
// that arrives while the alternate screen is active clears it first.
func (t *Terminal) setAltScreen(arg int, set bool) {
	if arg != 1048 {
		if !t.allowAltScreen {
			return
		}
		if arg == 1049 {
			t.saveOrRestoreCursor(set)
		}
		alt := t.isSet(ModeAltScreen)
		if alt {
			// The alternate screen is wiped on the way out, so it is
			// always clean when entered.
			t.clearRegion(0, 0, t.cols-1, t.rows-1)
		}
		if set != alt {
			t.swapScreen()
		}
		if arg != 1049 {
			return
		}
	}
	t.saveOrRestoreCursor(set)
}

func (t *Terminal) saveOrRestoreCursor(save bool) {
	if save {
		t.saveCursor()
	} else {
		t.restoreCursor()
	}
}
