package audioengine

import (
	"bufio"
	"io"

	"github.com/faiface/beep"
	"github.com/hraban/opus"
	"github.com/pkg/errors"
)

const (
	opusRate  = 48000
	opusFrame = 5760 // 120ms @ 48kHz, frame opus terbesar

	oggPageHeader = 27
	opusHeadMin   = 19
)

// pcmReader is the part of opus.Stream the streamer needs.
type pcmReader interface {
	Read(pcm []int16) (int, error)
	Close() error
}

// opusStreamer membaca file Ogg Opus lewat libopusfile.
// Output selalu 48kHz; mono diduplikasi ke kiri dan kanan.
type opusStreamer struct {
	file     io.Closer
	stream   pcmReader
	channels int // stride pcm dari libopusfile
	pcm      []int16
	buffer   [][2]float64
	err      error
}

func decodeOpus(rc io.ReadCloser) (beep.StreamCloser, beep.Format, error) {
	br := bufio.NewReader(rc)
	channels, err := opusHeadChannels(br)
	if err != nil {
		return nil, beep.Format{}, err
	}
	s, err := opus.NewStream(br)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return newOpusStreamer(s, rc, channels), opusFormat(channels), nil
}

// opusHeadChannels membaca channel count dari OpusHead di page Ogg pertama
// tanpa mengonsumsi data.
func opusHeadChannels(br *bufio.Reader) (int, error) {
	hdr, err := br.Peek(oggPageHeader)
	if err != nil {
		return 0, errors.Wrap(err, "ogg page header")
	}
	if string(hdr[:4]) != "OggS" {
		return 0, errors.New("not an ogg stream")
	}

	segments := int(hdr[26])
	page, err := br.Peek(oggPageHeader + segments + opusHeadMin)
	if err != nil {
		return 0, errors.Wrap(err, "opus head")
	}
	head := page[oggPageHeader+segments:]
	if string(head[:8]) != "OpusHead" {
		return 0, errors.New("missing OpusHead packet")
	}
	channels := int(head[9])
	if channels < 1 {
		return 0, errors.New("opus head has no channels")
	}
	return channels, nil
}

func opusFormat(channels int) beep.Format {
	if channels > 2 {
		channels = 2
	}
	return beep.Format{SampleRate: opusRate, NumChannels: channels, Precision: 2}
}

func newOpusStreamer(s pcmReader, file io.Closer, channels int) *opusStreamer {
	return &opusStreamer{
		file:     file,
		stream:   s,
		channels: channels,
		pcm:      make([]int16, opusFrame*channels),
	}
}

func (o *opusStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(o.buffer) == 0 {
			n, err := o.stream.Read(o.pcm)
			if err != nil {
				if err != io.EOF {
					o.err = err
				}
				return filled, filled > 0
			}
			if n == 0 {
				return filled, filled > 0
			}
			// lebih dari 2 channel: ambil front left/right saja
			for i := 0; i < n; i++ {
				base := i * o.channels
				l := float64(o.pcm[base]) / 32768.0
				r := l
				if o.channels > 1 {
					r = float64(o.pcm[base+1]) / 32768.0
				}
				o.buffer = append(o.buffer, [2]float64{l, r})
			}
		}

		n := copy(samples[filled:], o.buffer)
		o.buffer = o.buffer[n:]
		filled += n
	}
	return filled, true
}

func (o *opusStreamer) Err() error { return o.err }

func (o *opusStreamer) Close() error {
	err := o.stream.Close()
	if o.file != nil {
		o.file.Close()
	}
	return err
}
