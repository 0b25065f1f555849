package link

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendFloatToComputer(t *testing.T) {
	testCases := []struct {
		name      string
		timestamp uint32
		samples   []float32
		expect    []byte
	}{
		{"empty", 0x12345678, nil, []byte{0x78, 0x56, 0x34, 0x12, 0, 0}},
		{"two samples", 1, []float32{1.5, -2.25}, []byte{
			1, 0, 0, 0, // timestamp
			2, 0, // count
			0x00, 0x00, 0xc0, 0x3f, // 1.5
			0x00, 0x00, 0x10, 0xc0, // -2.25
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Default.SendFloatToComputer(&buf, tc.samples, tc.timestamp))
			require.Equal(t, tc.expect, buf.Bytes())
			frame := &SampleFrame{Timestamp: tc.timestamp, Samples: tc.samples}
			require.Equal(t, len(tc.expect), frame.EncodedSize())
		})
	}
}

func TestSampleFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	samples := []float32{0, 1.5, -2.25, 3.1415927, -1e-6}
	require.NoError(t, Default.SendFloatToComputer(&buf, samples, 42))

	frame, err := Default.ReceiveFloatFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(42), frame.Timestamp)
	require.Equal(t, samples, frame.Samples)
}

func TestReceiveFloatFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default.SendFloatToComputer(&buf, []float32{1.5, -2.25}, 1))

	// a write failing partway leaves fewer bytes than the header declares
	for cut := 1; cut < buf.Len(); cut++ {
		_, err := Default.ReceiveFloatFrame(bytes.NewReader(buf.Bytes()[:cut]))
		require.Error(t, err, "cut=%d", cut)
	}
}

func TestSendFloatToComputerWriteError(t *testing.T) {
	werr := errors.New("stream broken")
	err := Default.SendFloatToComputer(failWriter{werr}, []float32{1}, 0)
	require.Equal(t, werr, err)
}

type failWriter struct{ err error }

func (w failWriter) Write(p []byte) (int, error) { return 0, w.err }

func intFrame(values ...byte) []byte {
	b := []byte{byte(len(values) / 2), 0}
	return append(b, values...)
}

func TestReceiveInt16FromComputer(t *testing.T) {
	testCases := []struct {
		name     string
		in       []byte
		capacity int
		expectN  int
		expect   []float32
		err      error
	}{
		{"exact fit", intFrame(1, 0, 0xff, 0xff, 0x00, 0x80), 3, 3, []float32{1, -1, -32768}, nil},
		{"truncation", intFrame(5, 0), 4, 1, []float32{5}, nil},
		{"clipped", intFrame(1, 0, 2, 0, 3, 0), 2, 2, []float32{1, 2}, nil},
		{"zero capacity", intFrame(7, 0), 0, 0, []float32{}, nil},
		{"empty frame", intFrame(), 4, 0, []float32{}, nil},
		{"no header", nil, 4, 0, []float32{}, io.EOF},
		{"cut mid element", []byte{2, 0, 1, 0, 9}, 4, 1, []float32{1}, io.ErrUnexpectedEOF},
		{"cut after element", []byte{2, 0, 1, 0}, 4, 1, []float32{1}, io.ErrUnexpectedEOF},
		{"cut while clipping", []byte{2, 0, 1, 0}, 1, 1, []float32{1}, io.ErrUnexpectedEOF},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]float32, tc.capacity)
			n, err := Default.ReceiveInt16FromComputer(bytes.NewReader(tc.in), dst)
			require.Equal(t, tc.err, err)
			require.Equal(t, tc.expectN, n)
			require.Equal(t, tc.expect, dst[:n])
		})
	}
}

func TestReceiveInt16StaysFrameAligned(t *testing.T) {
	// clipped elements must be drained so the next frame decodes cleanly
	var buf bytes.Buffer
	buf.Write(intFrame(1, 0, 2, 0, 3, 0, 4, 0))
	buf.Write([]byte{0x10, 0x27})

	dst := make([]float32, 2)
	n, err := Default.ReceiveInt16FromComputer(&buf, dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	hz, err := Default.ReceiveFrequencyFromComputer(&buf)
	require.NoError(t, err)
	require.Equal(t, uint16(10000), hz)
}

func TestReceiveInt16Unsigned(t *testing.T) {
	c := Codec{UnsignedInts: true}
	dst := make([]float32, 1)
	n, err := c.ReceiveInt16FromComputer(bytes.NewReader(intFrame(0xff, 0xff)), dst)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []float32{65535}, dst)
}

func TestInt16RoundTrip(t *testing.T) {
	values := []int16{0, 1, -1, 12345, -32768, 32767}
	var buf bytes.Buffer
	require.NoError(t, Default.SendInt16ToDevice(&buf, values))

	dst := make([]float32, len(values))
	n, err := Default.ReceiveInt16FromComputer(&buf, dst)
	require.NoError(t, err)
	require.Equal(t, len(values), n)
	for i, v := range values {
		require.Equal(t, float32(v), dst[i])
	}
}

func TestDecodeInt16(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		expect []int16
		err    error
	}{
		{"ok", intFrame(1, 0, 0xfe, 0xff), []int16{1, -2}, nil},
		{"empty", intFrame(), []int16{}, nil},
		{"short header", []byte{1}, nil, ErrBadFrame},
		{"missing bytes", []byte{2, 0, 1, 0}, nil, ErrBadFrame},
		{"trailing bytes", []byte{1, 0, 1, 0, 9}, nil, ErrBadFrame},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := Default.DecodeInt16(tc.in)
			require.Equal(t, tc.err, err)
			require.Equal(t, tc.expect, values)
		})
	}
}

func TestReceiveFrequencyFromComputer(t *testing.T) {
	hz, err := Default.ReceiveFrequencyFromComputer(bytes.NewReader([]byte{0x10, 0x27}))
	require.NoError(t, err)
	require.Equal(t, uint16(10000), hz)

	_, err = Default.ReceiveFrequencyFromComputer(bytes.NewReader([]byte{0x10}))
	require.Equal(t, io.ErrUnexpectedEOF, err)

	_, err = Default.ReceiveFrequencyFromComputer(bytes.NewReader(nil))
	require.Equal(t, io.EOF, err)
}

func TestFrequencyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default.SendFrequencyToDevice(&buf, 3200))
	hz, err := Default.ReceiveFrequencyFromComputer(&buf)
	require.NoError(t, err)
	require.Equal(t, uint16(3200), hz)
}
