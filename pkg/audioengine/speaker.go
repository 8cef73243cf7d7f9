package audioengine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
)

// Output is the process-wide audio device. speaker.Init hanya boleh sekali.
type Output struct {
	rate beep.SampleRate
}

func NewOutput(rate int, buffer time.Duration) (*Output, error) {
	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, errors.Wrap(err, "init speaker")
	}
	return &Output{rate: sr}, nil
}

func (o *Output) Close() {
	speaker.Clear()
	speaker.Close()
}

// Sink plays exactly one track and reports when it has drained.
type Sink struct {
	stream beep.StreamCloser
	ctrl   *beep.Ctrl
	volume *effects.Volume
	done   atomic.Bool
	once   sync.Once
}

// PlayOnce decodes path and starts it on the speaker immediately.
func (o *Output) PlayOnce(path string) (*Sink, error) {
	stream, format, err := OpenStream(path)
	if err != nil {
		return nil, err
	}

	var s beep.Streamer = stream
	if format.SampleRate != o.rate {
		s = beep.Resample(4, format.SampleRate, o.rate, stream)
	}

	sink := &Sink{stream: stream}
	sink.ctrl = &beep.Ctrl{Streamer: s}
	sink.volume = &effects.Volume{Streamer: sink.ctrl, Base: 2}

	speaker.Play(beep.Seq(sink.volume, beep.Callback(func() {
		sink.done.Store(true)
	})))
	return sink, nil
}

func (s *Sink) Play() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *Sink) Pause() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *Sink) IsPaused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl.Paused
}

// Empty reports whether the track has played to the end.
func (s *Sink) Empty() bool { return s.done.Load() }

// Stop detaches the track from the speaker and closes its decoder.
func (s *Sink) Stop() {
	s.once.Do(func() {
		speaker.Lock()
		s.ctrl.Streamer = nil
		s.ctrl.Paused = false
		speaker.Unlock()
		s.stream.Close()
	})
}
