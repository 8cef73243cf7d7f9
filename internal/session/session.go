// Package session runs the tick-driven player loop: pop a track, start the
// speaker and the analyzer on it, render bars, react to commands.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"hdxtunes/internal/navigator"
	"hdxtunes/internal/tracks"
	"hdxtunes/pkg/spec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Analyzer is the per-track spectrum state.
type Analyzer interface {
	Sample(elapsedMs int)
	Bars() []float64
	Close() error
}

// Sink is the playing side of a track.
type Sink interface {
	Play()
	Pause()
	Stop()
	IsPaused() bool
	Empty() bool
}

// Loader opens both decode streams for a track, sink first.
type Loader interface {
	Load(path string) (Analyzer, Sink, error)
}

// Prompter asks the user for a path to add. ok is false on cancel.
type Prompter interface {
	AskPath(ctx context.Context) (path string, ok bool, err error)
}

type Renderer interface {
	Render(Frame) error
}

// Store resolves a path into tracks.
type Store func(path string) ([]tracks.Track, error)

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Bars    []float64
	Track   tracks.Track
	Playing bool
	Tags    *tracks.Tags
	Paused  bool
	UpNext  []string
	History []string
	Message string
}

type Config struct {
	Input    Input
	Prompter Prompter
	Renderer Renderer
	Loader   Loader

	Store   Store                                 // default tracks.Load
	Tags    func(path string) (tracks.Tags, error) // optional
	Publish func(Frame)                           // optional, called after every render
	Rand    *rand.Rand                            // shuffle source, nil = global

	Tick   time.Duration
	Now    func() time.Time
	Logger zerolog.Logger
}

type Loop struct {
	nav *navigator.Navigator
	cfg Config
	log zerolog.Logger

	message   string
	messageAt time.Time
}

// messageTTL is how long a status message stays on screen.
const messageTTL = 3 * time.Second

func New(nav *navigator.Navigator, cfg Config) *Loop {
	if cfg.Store == nil {
		cfg.Store = tracks.Load
	}
	if cfg.Tick <= 0 {
		cfg.Tick = spec.TickRate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loop{nav: nav, cfg: cfg, log: cfg.Logger}
}

// current is the loaded analyzer/sink pair of the now-playing track.
type current struct {
	track    tracks.Track
	tags     *tracks.Tags
	analyzer Analyzer
	sink     Sink
}

func (c *current) release() {
	if c.sink != nil {
		c.sink.Stop()
		c.sink = nil
	}
	if c.analyzer != nil {
		c.analyzer.Close()
		c.analyzer = nil
	}
}

// Run plays until the user quits, ctx is cancelled, or the queue runs dry
// and the user declines to add more.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		t, err := l.nav.PopNext()
		if errors.Is(err, navigator.ErrQueueEmpty) {
			list, ok, err := l.askForTracks(ctx)
			if err != nil {
				return quitOnCancel(err)
			}
			if !ok || len(list) == 0 {
				l.log.Info().Msg("queue empty, session ends")
				return nil
			}
			l.nav.Append(list)
			continue
		}
		if err != nil {
			return errors.Wrap(err, "pop next")
		}

		quit, err := l.play(ctx, t)
		if err != nil || quit {
			return err
		}
	}
}

// play drives one track until something clears the now-playing slot.
func (l *Loop) play(ctx context.Context, t tracks.Track) (bool, error) {
	cur := &current{track: t}
	if !l.load(cur) {
		l.nav.Skip()
		return false, nil
	}
	defer cur.release()

	last := l.cfg.Now()
	for {
		l.render(cur)

		wait := l.cfg.Tick - l.cfg.Now().Sub(last)
		if wait < 0 {
			wait = 0
		}
		cmd, ok, err := l.cfg.Input.Poll(ctx, wait)
		if err != nil {
			return true, quitOnCancel(err)
		}

		if ok {
			l.log.Debug().Stringer("op", cmd.Op).Str("track", t.Name).Msg("command")
			switch cmd.Op {
			case OpQuit:
				return true, nil
			case OpNext:
				return false, l.nav.Advance()
			case OpBack:
				return false, l.nav.Rewind()
			case OpShuffle:
				return false, l.nav.Shuffle(l.cfg.Rand)
			case OpTogglePause:
				if cur.sink.IsPaused() {
					cur.sink.Play()
					last = l.cfg.Now()
				} else {
					cur.sink.Pause()
				}
			case OpPause:
				cur.sink.Pause()
			case OpResume:
				if cur.sink.IsPaused() {
					cur.sink.Play()
					last = l.cfg.Now()
				}
			case OpRestart:
				cur.release()
				if !l.load(cur) {
					l.nav.Skip()
					return false, nil
				}
				last = l.cfg.Now()
			case OpAdd:
				wasPaused := cur.sink.IsPaused()
				cur.sink.Pause()

				list, accepted, err := l.add(ctx, cmd.Path)
				if err != nil {
					return true, quitOnCancel(err)
				}
				if accepted {
					return false, l.nav.InsertAndContinue(list)
				}
				if !wasPaused {
					cur.sink.Play()
					last = l.cfg.Now()
				}
			}
		}

		if cur.sink.Empty() {
			return false, l.nav.Advance()
		}

		if !cur.sink.IsPaused() {
			if elapsed := l.cfg.Now().Sub(last); elapsed >= l.cfg.Tick {
				cur.analyzer.Sample(int(elapsed.Milliseconds()))
				last = l.cfg.Now()
			}
		}
	}
}

func (l *Loop) load(cur *current) bool {
	an, sink, err := l.cfg.Loader.Load(cur.track.Path)
	if err != nil {
		l.log.Warn().Err(err).Str("path", cur.track.Path).Msg("load failed")
		l.setMessage(fmt.Sprintf("cannot play %s: %v", cur.track.Name, err))
		return false
	}
	cur.analyzer, cur.sink = an, sink

	if l.cfg.Tags != nil && cur.tags == nil {
		if tags, err := l.cfg.Tags(cur.track.Path); err == nil {
			cur.tags = &tags
		} else {
			l.log.Debug().Err(err).Str("path", cur.track.Path).Msg("no tags")
		}
	}
	l.log.Info().Str("path", cur.track.Path).Msg("playing")
	return true
}

// add resolves an add request. A remote path is looked up directly and a
// lookup failure only shows a message; otherwise the prompter is asked.
func (l *Loop) add(ctx context.Context, path string) ([]tracks.Track, bool, error) {
	if path == "" {
		return l.askForTracks(ctx)
	}
	list, err := l.cfg.Store(path)
	if err != nil {
		l.report(err, path)
		return nil, false, nil
	}
	return list, true, nil
}

// askForTracks keeps asking until the store accepts a path or the user cancels.
func (l *Loop) askForTracks(ctx context.Context) ([]tracks.Track, bool, error) {
	for {
		path, ok, err := l.cfg.Prompter.AskPath(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}

		list, err := l.cfg.Store(path)
		if err != nil {
			l.report(err, path)
			l.render(nil)
			continue
		}
		return list, true, nil
	}
}

func (l *Loop) report(err error, path string) {
	l.log.Warn().Err(err).Str("path", path).Msg("cannot add songs")
	l.setMessage(fmt.Sprintf("cannot add %s: %v", path, err))
}

func (l *Loop) setMessage(msg string) {
	l.message = msg
	l.messageAt = l.cfg.Now()
}

func (l *Loop) render(cur *current) {
	if l.message != "" && l.cfg.Now().Sub(l.messageAt) >= messageTTL {
		l.message = ""
	}
	f := Frame{
		UpNext:  tracks.Names(l.nav.UpNext(), false, spec.ListLimit),
		History: tracks.Names(l.nav.History(), false, spec.ListLimit),
		Message: l.message,
	}
	if cur != nil && cur.sink != nil {
		f.Bars = cur.analyzer.Bars()
		f.Track = cur.track
		f.Tags = cur.tags
		f.Playing = true
		f.Paused = cur.sink.IsPaused()
	}

	if l.cfg.Renderer != nil {
		if err := l.cfg.Renderer.Render(f); err != nil {
			l.log.Error().Err(err).Msg("render")
		}
	}
	if l.cfg.Publish != nil {
		l.cfg.Publish(f)
	}
}

func quitOnCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
