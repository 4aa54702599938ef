//go:build !windows

package termclient

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/quillkit/quill/internal/input"
)

// Terminal owns the raw-mode lifecycle and the read loop feeding decoded
// keys to the caller, the Go equivalent of the ncurses client's
// initscr/cbreak/noecho setup and its process_key_presses read loop,
// without going through a curses binding.
type Terminal struct {
	in     *os.File
	out    *os.File
	saved  unix.Termios
	fd     int
	keysCh chan []input.Key
	sizeCh chan Size
	stopCh chan struct{}
}

// Size is a terminal's dimensions in character cells.
type Size struct {
	Rows, Cols int
}

// Open puts stdin into raw mode (no line buffering, no echo, no signal
// key interpretation) and starts the background read loop. Call Close to
// restore the previous terminal state.
func Open() (*Terminal, error) {
	fd := int(os.Stdin.Fd())

	saved, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("termclient: get termios: %w", err)
	}

	raw := *saved
	raw.Iflag &^= unix.IXON | unix.ICRNL | unix.BRKINT | unix.INPCK | unix.ISTRIP
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("termclient: set raw mode: %w", err)
	}

	t := &Terminal{
		in:     os.Stdin,
		out:    os.Stdout,
		saved:  *saved,
		fd:     fd,
		keysCh: make(chan []input.Key, 16),
		sizeCh: make(chan Size, 1),
		stopCh: make(chan struct{}),
	}

	go t.readLoop()

	return t, nil
}

// Out returns the writer Paint/cursor/mode-toggle helpers should target.
func (t *Terminal) Out() *os.File { return t.out }

// Keys returns the channel decoded key batches arrive on.
func (t *Terminal) Keys() <-chan []input.Key { return t.keysCh }

// Size reads the current terminal dimensions via TIOCGWINSZ, the ioctl
// ncurses' getmaxyx ultimately resolves to.
func (t *Terminal) Size() (Size, error) {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, fmt.Errorf("termclient: get window size: %w", err)
	}

	return Size{Rows: int(ws.Row), Cols: int(ws.Col)}, nil
}

func (t *Terminal) readLoop() {
	buf := make([]byte, 4096)

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := t.in.Read(buf)
		if err != nil {
			close(t.keysCh)
			return
		}

		if n == 0 {
			continue
		}

		keys := DecodeKeys(buf[:n])

		select {
		case t.keysCh <- keys:
		case <-t.stopCh:
			return
		}
	}
}

// Close restores the terminal's original mode and stops the read loop.
// The read loop's blocking Read on stdin is not interrupted by this (no
// portable way to do so without also closing stdin), so Close returns
// once the current in-flight read unblocks rather than immediately; for
// interactive use that is the next keystroke or input.CodeEscape.
func (t *Terminal) Close() error {
	close(t.stopCh)

	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.saved); err != nil {
		return fmt.Errorf("termclient: restore termios: %w", err)
	}

	return nil
}
