package spectra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epuck-audio/link/pkg/link"
)

func TestDeinterleave(t *testing.T) {
	l := Layout{Mics: 2, Bins: 2}
	// [re_1(f1), re_2(f1), im_1(f1), im_2(f1), re_1(f2), re_2(f2), im_1(f2), im_2(f2)]
	samples := []float32{1, 2, 3, 4, 5, 6, 7, 8}

	signals, err := l.Deinterleave(samples)
	require.NoError(t, err)
	require.Equal(t, [][]complex128{
		{complex(1, 3), complex(5, 7)},
		{complex(2, 4), complex(6, 8)},
	}, signals)
}

func TestDeinterleaveLengthMismatch(t *testing.T) {
	_, err := Layout{Mics: 4, Bins: 32}.Deinterleave(make([]float32, 7))
	require.Error(t, err)
}

func TestFromFrame(t *testing.T) {
	l := Layout{Mics: 1, Bins: 4}
	frame := &link.SampleFrame{
		Timestamp: 7,
		Samples:   []float32{1, 2, 3, 4, 5, 6, 7, 8},
	}

	s, err := FromFrame(frame, l, DefaultBufferSize, DefaultSampleRate)
	require.NoError(t, err)
	require.Equal(t, uint32(7), s.Timestamp)
	require.Equal(t, []float64{0, 15.625, 31.25, 46.875}, s.Frequencies)
	require.Equal(t, []float64{1, 3, 5, 7}, realParts(s.Signals[0]))
	require.InDeltaSlice(t,
		[]float64{2.236068, 5, 7.810250, 10.630146},
		s.Magnitudes(0), 1e-6)
}

func realParts(row []complex128) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = real(v)
	}
	return out
}

func TestBinFrequencies(t *testing.T) {
	freqs := BinFrequencies(DefaultBins, DefaultBufferSize, DefaultSampleRate)
	require.Len(t, freqs, DefaultBins)
	require.Equal(t, 0.0, freqs[0])
	require.Equal(t, 15.625, freqs[1])
	require.Equal(t, 15.625*31, freqs[31])
}
