package audioengine

import (
	"os"
	"path/filepath"
	"strings"

	"hdxtunes/pkg/spec"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoDecoder         = errors.New("no decoder for format")
)

// SampleSource is an interleaved stream of raw samples, one value per channel per frame.
type SampleSource interface {
	Next() (float64, bool)
	SampleRate() int
	Channels() int
	Close() error
}

// OpenStream membuka file audio dan mengembalikan streamer beserta formatnya.
// Ekstensi di luar spec.SupportedFormats ditolak sebelum file dibuka.
func OpenStream(path string) (beep.StreamCloser, beep.Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !isSupported(ext) {
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "file %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "open track")
	}

	var (
		s      beep.StreamCloser
		format beep.Format
	)
	switch ext {
	case "mp3":
		s, format, err = mp3.Decode(f)
	case "wav":
		s, format, err = wav.Decode(f)
	case "flac":
		s, format, err = flac.Decode(f)
	case "ogg":
		s, format, err = vorbis.Decode(f)
	case "opus":
		s, format, err = decodeOpus(f)
	default:
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(ErrNoDecoder, "%s (%s)", ext, filepath.Base(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	return s, format, nil
}

// OpenSource opens a private decode stream for analysis.
func OpenSource(path string) (SampleSource, error) {
	s, format, err := OpenStream(path)
	if err != nil {
		return nil, err
	}
	return NewFrameSource(s, format), nil
}

func isSupported(ext string) bool {
	for _, f := range spec.SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// frameSource flattens beep stereo frames back into interleaved samples.
type frameSource struct {
	s        beep.StreamCloser
	rate     int
	channels int

	frames [][2]float64
	n, pos int
	ch     int
	done   bool
}

// NewFrameSource wraps a beep stream. Mono streams yield one sample per frame.
func NewFrameSource(s beep.StreamCloser, format beep.Format) SampleSource {
	channels := format.NumChannels
	if channels < 1 {
		channels = 1
	}
	if channels > 2 {
		channels = 2
	}
	return &frameSource{
		s:        s,
		rate:     int(format.SampleRate),
		channels: channels,
		frames:   make([][2]float64, 512),
	}
}

func (f *frameSource) Next() (float64, bool) {
	for f.pos >= f.n {
		if f.done {
			return 0, false
		}
		n, ok := f.s.Stream(f.frames)
		f.n, f.pos, f.ch = n, 0, 0
		if !ok || n == 0 {
			f.done = true
		}
	}

	v := f.frames[f.pos][f.ch]
	f.ch++
	if f.ch >= f.channels {
		f.ch = 0
		f.pos++
	}
	return v, true
}

func (f *frameSource) SampleRate() int { return f.rate }
func (f *frameSource) Channels() int   { return f.channels }
func (f *frameSource) Close() error    { return f.s.Close() }
