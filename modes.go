package mt

// TerminalMode is a bitmask of terminal behavior flags.
// Multiple modes can be active simultaneously.
type TerminalMode uint32

const (
	// ModeWrap enables automatic line wrapping at the right margin (DECAWM).
	ModeWrap TerminalMode = 1 << iota
	// ModeInsert shifts characters right instead of overwriting (IRM).
	ModeInsert
	// ModeAppKeypad enables application keypad mode (DECPAM).
	ModeAppKeypad
	// ModeAltScreen is set while the alternate screen is active.
	ModeAltScreen
	// ModeCRLF makes line feed also move to column 0 (LNM).
	ModeCRLF
	// ModeMouseButton reports mouse button presses (1000).
	ModeMouseButton
	// ModeMouseMotion reports motion while a button is held (1002).
	ModeMouseMotion
	// ModeMouseMany reports all mouse motion (1003).
	ModeMouseMany
	// ModeReverse swaps foreground and background for the whole screen (DECSCNM).
	ModeReverse
	// ModeKeyboardLock ignores keyboard input (KAM).
	ModeKeyboardLock
	// ModeHide hides the cursor (inverse of DECTCEM).
	ModeHide
	// ModeEcho locally echoes sent bytes back through the screen (inverse of SRM).
	ModeEcho
	// ModeAppCursor enables application cursor keys (DECCKM).
	ModeAppCursor
	// ModeMouseSGR selects SGR mouse report encoding (1006).
	ModeMouseSGR
	// Mode8Bit marks a meta-key-sets-eighth-bit keyboard (1034).
	Mode8Bit
	// ModeBlink indicates blinking cells are currently in their hidden phase.
	ModeBlink
	// ModeFocus reports focus in/out events (1004).
	ModeFocus
	// ModeMouseX10 enables X10 mouse compatibility reporting (9).
	ModeMouseX10
	// ModeSixel is set while a Sixel DCS payload is being consumed.
	ModeSixel
	// ModeUTF8 interprets the input stream as UTF-8.
	ModeUTF8
	// ModePrint mirrors all input to the printer sink (MC 5).
	ModePrint
	// ModeBracketedPaste brackets pasted text in ESC[200~ / ESC[201~ (2004).
	ModeBracketedPaste

	// ModeMouse covers every mouse reporting variant.
	ModeMouse = ModeMouseButton | ModeMouseMotion | ModeMouseX10 | ModeMouseMany
)
