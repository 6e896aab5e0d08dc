package mt

import (
	"bytes"
	"encoding/base64"
	"strconv"
)

// strBufSize bounds an OSC/DCS/APC/PM payload; further bytes are dropped.
const strBufSize = 8192

// strEscape holds one string sequence:
// ESC type [[ [<priv>] <arg> [;]] <mode>] ESC '\'
type strEscape struct {
	typ  byte
	buf  []byte
	args []string
}

func (s *strEscape) reset(typ byte) {
	s.typ = typ
	s.buf = s.buf[:0]
	s.args = s.args[:0]
}

// append collects payload bytes up to the buffer bound. The sequence is
// left unfinished rather than truncated so misbehaving applications are
// visible to users.
func (s *strEscape) append(b []byte) {
	if len(s.buf)+len(b) > strBufSize {
		return
	}
	s.buf = append(s.buf, b...)
}

// parse splits the payload into ';'-separated argument strings.
func (s *strEscape) parse() {
	s.args = s.args[:0]
	for _, a := range bytes.Split(s.buf, []byte{';'}) {
		if len(a) > 0 {
			s.args = append(s.args, string(a))
		}
	}
}

// arg returns argument i, or def when missing.
func (s *strEscape) arg(i int, def string) string {
	if i < len(s.args) {
		return s.args[i]
	}
	return def
}

// strHandle dispatches a completed string sequence.
func (t *Terminal) strHandle() {
	t.pendingStr = false
	s := &t.str
	s.parse()

	switch s.typ {
	case ']': // OSC
		sel, _ := strconv.Atoi(s.arg(0, ""))
		switch sel {
		case 0, 1, 2:
			if len(s.args) > 1 {
				t.title.SetTitle(s.args[1])
			}
			return
		case 52:
			if len(s.args) > 2 {
				dec, err := base64.StdEncoding.DecodeString(s.args[2])
				if err != nil {
					logf("invalid base64 in OSC 52")
					return
				}
				t.clipboard.Write('c', dec)
			}
			return
		case 4: // color set
			if len(s.args) < 3 {
				break
			}
			idx, _ := strconv.Atoi(s.arg(1, "-1"))
			if !t.setPaletteColor(idx, s.args[2]) {
				logf("invalid color %s", s.args[2])
			} else {
				t.MarkAllDirty()
			}
			return
		case 104: // color reset
			idx, err := strconv.Atoi(s.arg(1, ""))
			if err != nil {
				idx = -1
			}
			if !t.resetPaletteColor(idx) {
				logf("invalid color index %d", idx)
			} else {
				t.MarkAllDirty()
			}
			return
		}
	case 'k': // old title set compatibility
		t.title.SetTitle(s.arg(0, ""))
		return
	case 'P': // DCS: only Sixel detection, handled in the parser
		return
	case '_', '^': // APC, PM: accepted and discarded
		return
	}

	logf("unknown str ESC%c%s", s.typ, dumpBytes(s.buf))
}
