package session

import (
	"context"
	"time"
)

type Op int

const (
	OpNone Op = iota
	OpQuit
	OpNext
	OpBack
	OpTogglePause
	OpPause
	OpResume
	OpRestart
	OpAdd
	OpShuffle
)

var opNames = map[Op]string{
	OpNone:        "none",
	OpQuit:        "quit",
	OpNext:        "next",
	OpBack:        "back",
	OpTogglePause: "toggle-pause",
	OpPause:       "pause",
	OpResume:      "resume",
	OpRestart:     "restart",
	OpAdd:         "add",
	OpShuffle:     "shuffle",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// Command is one user action. Path is only set for OpAdd coming from
// a remote client; an empty Path asks the prompter instead.
type Command struct {
	Op   Op
	Path string
}

// KeyCommand maps a raw key byte to a command.
func KeyCommand(b byte) (Command, bool) {
	switch b {
	case 'q', 3: // Ctrl-C
		return Command{Op: OpQuit}, true
	case 'n':
		return Command{Op: OpNext}, true
	case 'b':
		return Command{Op: OpBack}, true
	case 'p':
		return Command{Op: OpTogglePause}, true
	case 'r':
		return Command{Op: OpRestart}, true
	case 'a':
		return Command{Op: OpAdd}, true
	case 's':
		return Command{Op: OpShuffle}, true
	}
	return Command{}, false
}

// Input delivers commands. Poll waits at most timeout; ok is false when
// nothing arrived.
type Input interface {
	Poll(ctx context.Context, timeout time.Duration) (cmd Command, ok bool, err error)
}

// ChannelInput polls a command channel fed by producer goroutines.
// A closed channel reads as quit.
type ChannelInput <-chan Command

func (c ChannelInput) Poll(ctx context.Context, timeout time.Duration) (Command, bool, error) {
	if timeout <= 0 {
		select {
		case cmd, ok := <-c:
			return closedAsQuit(cmd, ok), true, nil
		case <-ctx.Done():
			return Command{}, false, ctx.Err()
		default:
			return Command{}, false, nil
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case cmd, ok := <-c:
		return closedAsQuit(cmd, ok), true, nil
	case <-ctx.Done():
		return Command{}, false, ctx.Err()
	case <-timer.C:
		return Command{}, false, nil
	}
}

func closedAsQuit(cmd Command, ok bool) Command {
	if !ok {
		return Command{Op: OpQuit}
	}
	return cmd
}
