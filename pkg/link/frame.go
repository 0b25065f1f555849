package link

import (
	"io"
	"math"
)

// Frame layout sizes in bytes.
const (
	SampleHeaderSize = 6 // timestamp:4 + count:2
	IntHeaderSize    = 2 // count:2
	FrequencySize    = 2

	sampleSize = 4
	intSize    = 2
)

// MaxFrameElems is the largest element count a frame header can declare.
const MaxFrameElems = 0xffff

// SampleFrame is one timestamped batch of floating-point samples as
// produced by the firmware. The timestamp is the device tick count at
// send time.
type SampleFrame struct {
	Timestamp uint32
	Samples   []float32
}

// EncodedSize returns the on-wire size of the frame.
func (f *SampleFrame) EncodedSize() int {
	return SampleHeaderSize + sampleSize*len(f.Samples)
}

// Encode returns the encoded bytes of the frame.
func (f *SampleFrame) Encode() ([]byte, error) {
	return Default.encodeSamples(f.Samples, f.Timestamp)
}

// WriteTo writes the encoded frame.
func (f *SampleFrame) WriteTo(w io.Writer) (int, error) {
	return Default.writeSamples(w, f.Samples, f.Timestamp)
}

func (c Codec) encodeSamples(samples []float32, timestamp uint32) ([]byte, error) {
	if len(samples) > MaxFrameElems {
		return nil, ErrFrameTooLarge
	}
	order := c.order()
	b := make([]byte, SampleHeaderSize+sampleSize*len(samples))
	order.PutUint32(b, timestamp)
	order.PutUint16(b[4:], uint16(len(samples)))
	for i, v := range samples {
		order.PutUint32(b[SampleHeaderSize+sampleSize*i:], math.Float32bits(v))
	}
	return b, nil
}

func (c Codec) writeSamples(w io.Writer, samples []float32, timestamp uint32) (int, error) {
	b, err := c.encodeSamples(samples, timestamp)
	if err != nil {
		return 0, err
	}
	return w.Write(b)
}
