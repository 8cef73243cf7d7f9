package audioengine

import (
	"time"

	"hdxtunes/pkg/spec"

	"github.com/mjibson/go-dsp/window"
)

// Cursor decides how many frames a tick consumes.
type Cursor interface {
	Advance(elapsedMs int) int
}

// WallClock maps elapsed milliseconds to frames at a fixed rate.
type WallClock struct {
	SampleRate int
}

func (w WallClock) Advance(elapsedMs int) int {
	if elapsedMs <= 0 {
		return 0
	}
	return w.SampleRate * elapsedMs / 1000
}

// Analyzer keeps a private decode of the playing track and turns the
// audio the speaker has consumed since the last tick into NumBars bands.
type Analyzer struct {
	source    SampleSource
	cursor    Cursor
	transform Transform

	sampleRate int
	channels   int
	numBars    int
	tick       time.Duration
	low, high  float64

	buf      []float64 // scratch channel pertama, diisi ulang tiap step
	hann     []float64
	windowed []float64
	bars     []float64
}

type Option func(*Analyzer)

func WithTransform(t Transform) Option { return func(a *Analyzer) { a.transform = t } }
func WithCursor(c Cursor) Option       { return func(a *Analyzer) { a.cursor = c } }
func WithBars(n int) Option            { return func(a *Analyzer) { a.numBars = n } }
func WithTickRate(d time.Duration) Option {
	return func(a *Analyzer) { a.tick = d }
}

// WithRange overrides the analysed band (default 40-5000 Hz).
func WithRange(low, high float64) Option {
	return func(a *Analyzer) { a.low, a.high = low, high }
}

func NewAnalyzer(src SampleSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:     src,
		transform:  Spectrum,
		sampleRate: src.SampleRate(),
		channels:   src.Channels(),
		numBars:    spec.NumBars,
		tick:       spec.TickRate,
		low:        spec.FreqLow,
		high:       spec.FreqHigh,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.channels < 1 {
		a.channels = 1
	}
	if a.numBars < 1 {
		a.numBars = 1
	}
	if a.cursor == nil {
		a.cursor = WallClock{SampleRate: a.sampleRate}
	}

	// Buffer: 4 tick audio, minimal sebesar window Hann
	size := int(a.tick.Milliseconds()) * 4 * a.sampleRate / 1000
	if size < spec.HannWindowSize {
		size = spec.HannWindowSize
	}
	a.buf = make([]float64, size)
	a.hann = window.Hann(spec.HannWindowSize)
	a.windowed = make([]float64, spec.HannWindowSize)
	a.bars = make([]float64, a.numBars)
	return a
}

// Sample consumes the frames played during elapsedMs and recomputes the bars.
// A tick that maps to zero frames leaves the previous bars in place.
func (a *Analyzer) Sample(elapsedMs int) {
	n := a.cursor.Advance(elapsedMs)
	if n <= 0 {
		return
	}

	for i := 0; i < n; i++ {
		v, _ := a.source.Next()
		if i < len(a.buf) {
			a.buf[i] = v
		}
		for c := 1; c < a.channels; c++ {
			a.source.Next()
		}
	}
	// Sisa buffer dari tick sebelumnya tidak ikut dianalisis
	for i := n; i < len(a.buf); i++ {
		a.buf[i] = 0
	}

	for i := range a.windowed {
		a.windowed[i] = a.buf[i] * a.hann[i]
	}

	bins := a.transform(a.windowed, a.sampleRate, a.low, a.high)

	for i := range a.bars {
		a.bars[i] = 0
	}
	for _, b := range bins {
		a.bars[a.bucket(b.Freq)] += b.Magnitude
	}
}

func (a *Analyzer) bucket(freq float64) int {
	idx := int((freq - a.low) * float64(a.numBars) / (a.high - a.low))
	if idx < 0 {
		return 0
	}
	if idx >= a.numBars {
		return a.numBars - 1
	}
	return idx
}

// Bars returns a copy of the current band magnitudes.
func (a *Analyzer) Bars() []float64 {
	out := make([]float64, len(a.bars))
	copy(out, a.bars)
	return out
}

func (a *Analyzer) SampleRate() int { return a.sampleRate }

func (a *Analyzer) Close() error { return a.source.Close() }
