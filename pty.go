package mt

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// ptyBufSize is the read buffer; a partial trailing UTF-8 sequence is
// carried over between reads by the terminal itself.
const ptyBufSize = 8192

// writeChunk bounds a single write toward the child. A pty might be a
// modem line; writing too much at once clogs it.
const writeChunk = 256

// Pty couples a terminal to a child process running on a pseudo-terminal:
// the read loop feeds the parser and writes apply backpressure by
// draining reads.
type Pty struct {
	t    *Terminal
	f    *os.File
	cmd  *exec.Cmd
	rbuf [ptyBufSize]byte
}

// StartCommand runs cmd on a new pseudo-terminal sized to the terminal
// and attaches it. The terminal's responses are rewired to the child.
func StartCommand(t *Terminal, cmd *exec.Cmd) (*Pty, error) {
	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(t.Rows()),
		Cols: uint16(t.Cols()),
	})
	if err != nil {
		return nil, fmt.Errorf("start %q on pty: %w", cmd.Path, err)
	}
	p := &Pty{t: t, f: f, cmd: cmd}
	t.response = p
	return p, nil
}

// ReadOnce performs one read from the pty and feeds the bytes through the
// terminal. It returns the byte count; io.EOF-like conditions surface as
// the underlying read error.
func (p *Pty) ReadOnce() (int, error) {
	n, err := p.f.Read(p.rbuf[:])
	if n > 0 {
		p.t.Write(p.rbuf[:n])
	}
	if err != nil {
		return n, fmt.Errorf("read from pty: %w", err)
	}
	return n, nil
}

// Write sends bytes to the child in bounded chunks. When the kernel pty
// buffer fills, readable bytes are drained through the parser while
// waiting, preserving their order exactly.
func (p *Pty) Write(s []byte) (int, error) {
	fd := int(p.f.Fd())
	total := len(s)
	lim := writeChunk

	for len(s) > 0 {
		var rfd, wfd unix.FdSet
		rfd.Set(fd)
		wfd.Set(fd)

		_, err := unix.Select(fd+1, &rfd, &wfd, nil, nil)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return total - len(s), fmt.Errorf("select on pty: %w", err)
		}

		if wfd.IsSet(fd) {
			// Only write up to the chunk limit, or however much a
			// blocked reader freed up last round.
			w := min(len(s), lim)
			r, err := unix.Write(fd, s[:w])
			if err != nil {
				return total - len(s), fmt.Errorf("write to pty: %w", err)
			}
			if r < len(s) {
				// The buffer is getting full again; empty it.
				if len(s) < lim {
					n, err := p.ReadOnce()
					if err != nil {
						return total - len(s) + r, err
					}
					lim = n
				}
				s = s[r:]
			} else {
				break
			}
		}
		if rfd.IsSet(fd) {
			n, err := p.ReadOnce()
			if err != nil {
				return total - len(s), err
			}
			lim = n
		}
	}
	return total, nil
}

// Send writes bytes to the child and, when local echo is on, renders each
// code point through the echo pipeline.
func (p *Pty) Send(s []byte) error {
	if _, err := p.Write(s); err != nil {
		return err
	}
	if !p.t.isSet(ModeEcho) {
		return nil
	}

	for len(s) > 0 {
		var u rune
		var size int
		if p.t.isSet(ModeUTF8) && !p.t.isSet(ModeSixel) {
			u, size = DecodeRune(s)
			if size <= 0 {
				break
			}
		} else {
			u, size = rune(s[0]), 1
		}
		p.t.Echo(u)
		s = s[size:]
	}
	return nil
}

// SendPaste sends pasted text, bracketing it when bracketed paste mode is
// on.
func (p *Pty) SendPaste(data []byte) error {
	return p.Send(p.t.WrapPaste(data))
}

// SendFocus reports a focus change to the child, if focus reporting is on.
func (p *Pty) SendFocus(in bool) error {
	report := p.t.FocusReport(in)
	if report == nil {
		return nil
	}
	_, err := p.Write(report)
	return err
}

// Resize propagates new dimensions to the terminal and the child's pty.
func (p *Pty) Resize(cols, rows int) error {
	p.t.Resize(cols, rows)
	err := pty.Setsize(p.f, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return fmt.Errorf("set pty size: %w", err)
	}
	return nil
}

// Close closes the master end of the pty. The child observes EOF/SIGHUP.
func (p *Pty) Close() error {
	return p.f.Close()
}
