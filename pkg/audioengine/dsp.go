package audioengine

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one transform output: a frequency in Hz and its linear magnitude.
type Bin struct {
	Freq      float64
	Magnitude float64
}

// Transform turns a windowed buffer into bins restricted to [low, high].
type Transform func(samples []float64, sampleRate int, low, high float64) []Bin

// Spectrum menjalankan FFT real dan mengembalikan bin 0..N/2 yang frekuensinya
// ada di [low, high]. Magnitudo dibagi panjang window (linear, divide by N).
func Spectrum(samples []float64, sampleRate int, low, high float64) []Bin {
	n := len(samples)
	if n == 0 {
		return nil
	}

	coeffs := fft.FFTReal(samples)

	bins := make([]Bin, 0, n/2+1)
	for i := 0; i <= n/2; i++ {
		freq := float64(i) * float64(sampleRate) / float64(n)
		if freq < low || freq > high {
			continue
		}
		bins = append(bins, Bin{
			Freq:      freq,
			Magnitude: cmplx.Abs(coeffs[i]) / float64(n),
		})
	}
	return bins
}
