// Package navigator holds the play queue: pending and history stacks plus
// the now-playing slot. Every track lives in exactly one of the three.
package navigator

import (
	"math/rand/v2"

	"hdxtunes/internal/tracks"

	"github.com/pkg/errors"
)

var (
	ErrQueueEmpty     = errors.New("queue is empty")
	ErrTrackLoaded    = errors.New("a track is already loaded")
	ErrNothingPlaying = errors.New("nothing is playing")
)

// Navigator is not safe for concurrent use; the session loop owns it.
type Navigator struct {
	pending []tracks.Track // top = last
	history []tracks.Track // top = last
	current *tracks.Track
}

// New takes the pending list bottom first, as tracks.Load returns it.
func New(pending []tracks.Track) *Navigator {
	return &Navigator{pending: append([]tracks.Track(nil), pending...)}
}

// PopNext moves the top of the queue into the now-playing slot.
func (n *Navigator) PopNext() (tracks.Track, error) {
	if n.current != nil {
		return tracks.Track{}, ErrTrackLoaded
	}
	if len(n.pending) == 0 {
		return tracks.Track{}, ErrQueueEmpty
	}
	t := n.pending[len(n.pending)-1]
	n.pending = n.pending[:len(n.pending)-1]
	n.current = &t
	return t, nil
}

// Advance finishes the current track.
func (n *Navigator) Advance() error {
	if n.current == nil {
		return ErrNothingPlaying
	}
	n.history = append(n.history, *n.current)
	n.current = nil
	return nil
}

// Rewind puts the current track back and the previous one on top of it.
func (n *Navigator) Rewind() error {
	if n.current == nil {
		return ErrNothingPlaying
	}
	n.pending = append(n.pending, *n.current)
	n.current = nil
	if len(n.history) > 0 {
		n.pending = append(n.pending, n.history[len(n.history)-1])
		n.history = n.history[:len(n.history)-1]
	}
	return nil
}

func (n *Navigator) Restart() (tracks.Track, error) {
	if n.current == nil {
		return tracks.Track{}, ErrNothingPlaying
	}
	return *n.current, nil
}

// InsertAndContinue puts list under the queue and the current track on top,
// so playback resumes the current track from the start.
func (n *Navigator) InsertAndContinue(list []tracks.Track) error {
	if n.current == nil {
		return ErrNothingPlaying
	}
	merged := make([]tracks.Track, 0, len(list)+len(n.pending)+1)
	merged = append(merged, list...)
	merged = append(merged, n.pending...)
	n.pending = append(merged, *n.current)
	n.current = nil
	return nil
}

// Shuffle returns the current track to the queue and permutes all of it.
// A nil rng uses the global source.
func (n *Navigator) Shuffle(rng *rand.Rand) error {
	if n.current == nil {
		return ErrNothingPlaying
	}
	n.pending = append(n.pending, *n.current)
	n.current = nil

	swap := func(i, j int) { n.pending[i], n.pending[j] = n.pending[j], n.pending[i] }
	if rng == nil {
		rand.Shuffle(len(n.pending), swap)
	} else {
		rng.Shuffle(len(n.pending), swap)
	}
	return nil
}

// Skip drops the current track; used when it fails to load.
func (n *Navigator) Skip() {
	n.current = nil
}

// Append puts list on the bottom of the queue.
func (n *Navigator) Append(list []tracks.Track) {
	n.pending = append(append([]tracks.Track(nil), list...), n.pending...)
}

func (n *Navigator) NowPlaying() (tracks.Track, bool) {
	if n.current == nil {
		return tracks.Track{}, false
	}
	return *n.current, true
}

// UpNext lists the queue in play order, next first.
func (n *Navigator) UpNext() []tracks.Track {
	out := make([]tracks.Track, 0, len(n.pending))
	for i := len(n.pending) - 1; i >= 0; i-- {
		out = append(out, n.pending[i])
	}
	return out
}

// History lists played tracks oldest first.
func (n *Navigator) History() []tracks.Track {
	return append([]tracks.Track(nil), n.history...)
}

// Remaining is the queue in storage order with an interrupted track on top.
func (n *Navigator) Remaining() []tracks.Track {
	out := append([]tracks.Track(nil), n.pending...)
	if n.current != nil {
		out = append(out, *n.current)
	}
	return out
}

// Len counts every track the navigator holds.
func (n *Navigator) Len() int {
	c := len(n.pending) + len(n.history)
	if n.current != nil {
		c++
	}
	return c
}
