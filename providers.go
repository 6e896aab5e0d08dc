package mt

import "io"

// ResponseProvider receives terminal replies (device attributes, cursor
// position reports) headed back to the PTY. Typically the PTY master.
type ResponseProvider = io.Writer

// PrinterProvider receives Media Copy output and MODE_PRINT mirroring.
type PrinterProvider = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// BellProvider handles bell events triggered by BEL (0x07). The display
// decides between an audible bell and an urgency hint.
type BellProvider interface {
	// Ring is called when a bell character is received.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// TitleProvider handles window title changes (OSC 0, 1, 2 and ESC k).
type TitleProvider interface {
	// SetTitle is called when the title changes.
	SetTitle(title string)
	// ResetTitle restores the configured default title (on RIS).
	ResetTitle()
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}
func (NoopTitle) ResetTitle()           {}

// ClipboardProvider handles clipboard writes requested by OSC 52.
type ClipboardProvider interface {
	// Write stores content to the specified clipboard ('c' for clipboard,
	// 'p' for primary selection).
	Write(clipboard byte, data []byte)
}

// NoopClipboard ignores all clipboard operations.
type NoopClipboard struct{}

func (NoopClipboard) Write(clipboard byte, data []byte) {}

// PointerMotionProvider is asked to engage or disengage continuous
// pointer motion reporting when mouse mode 1003 toggles.
type PointerMotionProvider interface {
	SetPointerMotion(on bool)
}

// NoopPointerMotion ignores pointer motion requests.
type NoopPointerMotion struct{}

func (NoopPointerMotion) SetPointerMotion(on bool) {}

var _ ResponseProvider = NoopResponse{}
