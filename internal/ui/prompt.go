package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

const promptHeader = "\r\nenter-path-to-songs (tab completes, empty line cancels)\r\n"

// Prompt is the add-songs dialog: a readline fed by the terminal's key
// reader, with path completion.
type Prompt struct {
	term  *Terminal
	start string
}

// NewPrompt pre-fills the dialog with start, usually MUSIC_HOME.
func NewPrompt(t *Terminal, start string) *Prompt {
	if start != "" && !strings.HasSuffix(start, string(filepath.Separator)) {
		start += string(filepath.Separator)
	}
	return &Prompt{term: t, start: start}
}

func (p *Prompt) AskPath(ctx context.Context) (string, bool, error) {
	pr, pw := io.Pipe()
	release := p.term.capture(pw)
	defer release()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pw.CloseWithError(io.EOF)
		case <-done:
		}
	}()

	io.WriteString(p.term.Out(), promptHeader)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		Stdin:           pr,
		Stdout:          p.term.Out(),
		Stderr:          p.term.Out(),
		InterruptPrompt: "^C",
		FuncIsTerminal:  func() bool { return true },
		FuncMakeRaw:     func() error { return nil },
		FuncExitRaw:     func() error { return nil },
		FuncGetWidth:    p.term.Width,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItemDynamic(func(line string) []string {
				return listFiles(line)
			}),
		),
	})
	if err != nil {
		pw.Close()
		return "", false, err
	}
	defer rl.Close()

	line, err := rl.ReadlineWithDefault(p.start)
	pw.Close()
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}
	if err == readline.ErrInterrupt || err == io.EOF {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}
	return expandHome(line), true, nil
}

// listFiles completes the last path segment of line. Candidates keep the
// directory part exactly as typed ("./", "~/") so they stay prefixes of line.
func listFiles(line string) []string {
	prefix := line[:strings.LastIndex(line, string(filepath.Separator))+1]
	dir := expandHome(prefix)
	if dir == "" {
		dir = "."
	}
	entries, _ := os.ReadDir(dir)

	var names []string
	for _, e := range entries {
		name := prefix + e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		if strings.HasPrefix(name, line) {
			names = append(names, name)
		}
	}
	return names
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
