// Package spectra interprets the firmware's float vectors as per-mic
// frequency spectra.
package spectra

import (
	"fmt"
	"math/cmplx"

	"github.com/epuck-audio/link/pkg/link"
)

// Firmware build defaults.
const (
	DefaultMics       = 4
	DefaultBins       = 32
	DefaultBufferSize = 2048
	DefaultSampleRate = 32000
)

// Layout describes how the firmware interleaves a float vector:
//
//	[re_1(f1)..re_M(f1), im_1(f1)..im_M(f1), ... , im_M(fN)]
//
// for M mics and N frequency bins.
type Layout struct {
	Mics int
	Bins int
}

// DefaultLayout is the layout of the stock firmware build.
var DefaultLayout = Layout{Mics: DefaultMics, Bins: DefaultBins}

// FloatCount returns the vector length the layout requires.
func (l Layout) FloatCount() int {
	return l.Mics * l.Bins * 2
}

// Deinterleave splits a firmware float vector into per-mic complex
// spectra, indexed [mic][bin].
func (l Layout) Deinterleave(samples []float32) ([][]complex128, error) {
	if len(samples) != l.FloatCount() {
		return nil, fmt.Errorf("sample vector length %d, layout requires %d", len(samples), l.FloatCount())
	}
	signals := make([][]complex128, l.Mics)
	for m := range signals {
		signals[m] = make([]complex128, l.Bins)
	}
	stride := l.Mics * 2
	for f := 0; f < l.Bins; f++ {
		base := f * stride
		for m := 0; m < l.Mics; m++ {
			re := float64(samples[base+m])
			im := float64(samples[base+l.Mics+m])
			signals[m][f] = complex(re, im)
		}
	}
	return signals, nil
}

// Spectrum holds one decoded frame as per-mic complex spectra.
type Spectrum struct {
	Timestamp   uint32
	Frequencies []float64     // Hz per bin
	Signals     [][]complex128 // [mic][bin]
}

// FromFrame deinterleaves a sample frame using the layout. Bin
// frequencies are derived from the buffer size and sample rate.
func FromFrame(frame *link.SampleFrame, l Layout, bufferSize int, sampleRate float64) (*Spectrum, error) {
	signals, err := l.Deinterleave(frame.Samples)
	if err != nil {
		return nil, err
	}
	return &Spectrum{
		Timestamp:   frame.Timestamp,
		Frequencies: BinFrequencies(l.Bins, bufferSize, sampleRate),
		Signals:     signals,
	}, nil
}

// BinFrequencies returns the center frequency in Hz of the first bins
// of a real FFT over bufferSize samples at sampleRate.
func BinFrequencies(bins, bufferSize int, sampleRate float64) []float64 {
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(bufferSize)
	}
	return freqs
}

// Magnitudes returns the magnitude spectrum of one mic.
func (s *Spectrum) Magnitudes(mic int) []float64 {
	mags := make([]float64, len(s.Signals[mic]))
	for i, v := range s.Signals[mic] {
		mags[i] = cmplx.Abs(v)
	}
	return mags
}
