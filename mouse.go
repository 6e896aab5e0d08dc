package mt

import (
	"fmt"
)

// Mouse modifier bits added to the encoded button value, xterm convention.
const (
	MouseModShift = 4
	MouseModMeta  = 8
	MouseModCtrl  = 16
)

// EncodeMouse produces the report bytes for a mouse event at cell (x, y),
// 0-based. button is 0-based (0 left, 1 middle, 2 right, 3+ wheel), mods
// is a combination of the MouseMod constants, and motion marks a movement
// report. It returns nil when the event should not be reported under the
// current modes.
func (t *Terminal) EncodeMouse(button, x, y int, press bool, mods int, motion bool) []byte {
	if !t.isSet(ModeMouse) {
		return nil
	}

	b := button
	if b >= 3 {
		// Wheel buttons report in the 64+ range.
		b += 64 - 3
	}
	if motion {
		if !t.isSet(ModeMouseMotion | ModeMouseMany) {
			return nil
		}
		b += 32
	} else if !press && !t.isSet(ModeMouseSGR) {
		// The legacy encoding reports every release as button 3.
		b = 3
	}
	if t.isSet(ModeMouseX10) {
		// X10 compatibility reports presses only, without modifiers.
		if !press || motion {
			return nil
		}
	} else {
		b += mods
	}

	if t.isSet(ModeMouseSGR) {
		final := byte('M')
		if !press && !motion {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", b, x+1, y+1, final))
	}

	bx := limit(x, 0, 222) + 33
	by := limit(y, 0, 222) + 33
	return []byte{0x1b, '[', 'M', byte(32 + b), byte(bx), byte(by)}
}

// FocusReport returns the bytes reporting a focus change, or nil when
// focus reporting is off.
func (t *Terminal) FocusReport(in bool) []byte {
	if !t.isSet(ModeFocus) {
		return nil
	}
	if in {
		return []byte("\x1b[I")
	}
	return []byte("\x1b[O")
}

// WrapPaste brackets pasted text when bracketed paste mode is on, and
// returns it unchanged otherwise.
func (t *Terminal) WrapPaste(data []byte) []byte {
	if !t.isSet(ModeBracketedPaste) {
		return data
	}
	wrapped := make([]byte, 0, len(data)+12)
	wrapped = append(wrapped, "\x1b[200~"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "\x1b[201~"...)
	return wrapped
}
