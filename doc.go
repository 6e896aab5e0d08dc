// Package mt implements the display-independent core of a VT102/xterm
// subset terminal emulator: an escape-sequence parser driving a grid of
// styled cells, plus the selection model and PTY plumbing around it.
//
// # Basic usage
//
// Create a terminal and feed it bytes:
//
//	term := mt.New(mt.WithSize(80, 24))
//	term.WriteString("Hello, \x1b[1;31mworld\x1b[0m!\r\n")
//	fmt.Println(term.LineContent(0))
//
// The terminal interprets control codes, CSI sequences (cursor movement,
// scrolling, SGR attributes including 256-color and true color), OSC
// strings (title, palette, clipboard), charset designators, and the
// alternate screen, maintaining two independent grids with a per-row
// dirty bitmap for repainting.
//
// # Running a child process
//
// To drive the terminal from a real program, start it on a pty:
//
//	term := mt.New(mt.WithSize(80, 24))
//	p, err := mt.StartCommand(term, exec.Command("/bin/sh"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		if _, err := p.ReadOnce(); err != nil {
//			break
//		}
//	}
//
// Pty.Write applies the classic pty backpressure dance: while a write
// blocks, readable bytes are drained through the parser so the child
// never deadlocks against a full buffer. Keyboard input goes through
// Pty.Send, which honors local echo mode.
//
// # Collaborators
//
// Display-side concerns stay outside the core and plug in as providers:
// a ResponseProvider receives device replies (DA, DSR), a TitleProvider
// window titles, a ClipboardProvider OSC 52 writes, a BellProvider BEL
// events, and a PrinterProvider Media Copy output. All default to no-ops.
//
// # Selection
//
// The selection model tracks an anchored span with optional word or line
// snapping and follows the grid through scrolls:
//
//	term.StartSelection(5, 0, mt.SelectionRegular, mt.SnapWord)
//	term.ExtendSelection(5, 0)
//	text := term.SelectionText()
//
// Grid mutations that touch selected cells clear the selection, so a
// stale span never survives a screen update.
package mt
