package ui

import (
	"io"
	"os"
	"sync"

	"hdxtunes/internal/session"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	altScreenOn  = "\033[?1049h\033[?25l"
	altScreenOff = "\033[?25h\033[?1049l"
)

// Terminal owns stdin in raw mode. A reader goroutine turns key presses
// into commands, or forwards them to the add-songs prompt while it is open.
type Terminal struct {
	in  *os.File
	out io.Writer
	fd  int
	old *term.State

	cmds chan<- session.Command

	mu     sync.Mutex
	prompt *io.PipeWriter
}

// Open switches the terminal to raw mode on the alternate screen.
func Open(in *os.File, out io.Writer, cmds chan<- session.Command) (*Terminal, error) {
	fd := int(in.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "raw mode")
	}
	t := &Terminal{in: in, out: out, fd: fd, old: old, cmds: cmds}
	io.WriteString(out, altScreenOn)

	go t.readKeys()
	return t, nil
}

func (t *Terminal) readKeys() {
	buf := make([]byte, 1)
	for {
		if _, err := t.in.Read(buf); err != nil {
			return
		}

		t.mu.Lock()
		w := t.prompt
		t.mu.Unlock()
		if w != nil {
			w.Write(buf)
			continue
		}

		if cmd, ok := session.KeyCommand(buf[0]); ok {
			select {
			case t.cmds <- cmd:
			default:
				// loop sibuk, tombol dibuang
			}
		}
	}
}

// capture routes key presses to w until release is called.
func (t *Terminal) capture(w *io.PipeWriter) (release func()) {
	t.mu.Lock()
	t.prompt = w
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.prompt = nil
		t.mu.Unlock()
	}
}

// Width is the terminal width in columns, 120 when unknown.
func (t *Terminal) Width() int {
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 {
		return 120
	}
	return w
}

func (t *Terminal) Out() io.Writer { return t.out }

// Restore leaves the alternate screen and the raw mode.
func (t *Terminal) Restore() error {
	io.WriteString(t.out, altScreenOff)
	return term.Restore(t.fd, t.old)
}
