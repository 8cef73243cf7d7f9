package audioengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func drain(src SampleSource) []float64 {
	var out []float64
	for {
		v, ok := src.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestOpenSourceMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	data := make([]int, 1000)
	for i := range data {
		data[i] = 8000
	}
	writeWav(t, path, 8000, 1, data)

	src, err := OpenSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 8000, src.SampleRate())
	assert.Equal(t, 1, src.Channels())

	got := drain(src)
	require.Len(t, got, len(data))
	for _, v := range got {
		assert.Greater(t, v, 0.0)
	}

	_, ok := src.Next()
	assert.False(t, ok)
}

func TestOpenSourceStereoInterleaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Stereo.WAV")
	data := make([]int, 0, 600)
	for i := 0; i < 300; i++ {
		data = append(data, 8000, -8000)
	}
	writeWav(t, path, 22050, 2, data)

	src, err := OpenSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.Channels())
	got := drain(src)
	require.Len(t, got, len(data))
	for i, v := range got {
		if i%2 == 0 {
			assert.Greater(t, v, 0.0)
		} else {
			assert.Less(t, v, 0.0)
		}
	}
}

func TestOpenStreamRejectsFormats(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o644))
	_, _, err := OpenStream(txt)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	aac := filepath.Join(dir, "song.aac")
	require.NoError(t, os.WriteFile(aac, []byte{0xff, 0xf1}, 0o644))
	_, _, err = OpenStream(aac)
	assert.ErrorIs(t, err, ErrNoDecoder)

	_, _, err = OpenStream(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a riff file"), 0o644))
	_, _, err = OpenStream(bad)
	assert.Error(t, err)
}

func TestAnalyzerOverWavFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	data := make([]int, 44100)
	for i := range data {
		if (i/22)%2 == 0 { // ~1kHz square
			data[i] = 12000
		} else {
			data[i] = -12000
		}
	}
	writeWav(t, path, 44100, 1, data)

	src, err := OpenSource(path)
	require.NoError(t, err)
	a := NewAnalyzer(src)
	defer a.Close()

	a.Sample(50)
	var total float64
	for _, b := range a.Bars() {
		total += b
	}
	assert.Greater(t, total, 0.0)
}
