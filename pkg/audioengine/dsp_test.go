package audioengine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrumPeak(t *testing.T) {
	const (
		rate = 44100
		n    = 2048
		tone = 1000.0
	)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * tone * float64(i) / rate)
	}

	bins := Spectrum(samples, rate, 40, 5000)
	require.NotEmpty(t, bins)

	peak := bins[0]
	for _, b := range bins {
		assert.GreaterOrEqual(t, b.Freq, 40.0)
		assert.LessOrEqual(t, b.Freq, 5000.0)
		if b.Magnitude > peak.Magnitude {
			peak = b
		}
	}
	binWidth := float64(rate) / n
	assert.InDelta(t, tone, peak.Freq, binWidth)
}

func TestSpectrumSilence(t *testing.T) {
	for _, b := range Spectrum(make([]float64, 2048), 44100, 40, 5000) {
		assert.Zero(t, b.Magnitude)
	}
	assert.Nil(t, Spectrum(nil, 44100, 40, 5000))
}
