package link

import (
	"encoding/binary"
	"io"
	"math"
)

// Codec encodes and decodes frames over a byte stream. The zero value
// uses the wire defaults: little-endian fields and signed 16-bit
// integers. A Codec holds no stream state and is safe to copy.
type Codec struct {
	// Order overrides the wire byte order. nil means little-endian.
	Order binary.ByteOrder
	// UnsignedInts decodes inbound 16-bit integers as unsigned.
	// The firmware convention is signed.
	UnsignedInts bool
}

// Default is the Codec with wire defaults.
var Default Codec

func (c Codec) order() binary.ByteOrder {
	if c.Order != nil {
		return c.Order
	}
	return binary.LittleEndian
}

// SendFloatToComputer writes one sample frame: the timestamp, the
// sample count and the samples themselves. It blocks until the stream
// accepts all bytes or fails; write errors are returned as-is with no
// retry. The header-declared count lets a reader reject a frame cut
// short by a failed write.
func (c Codec) SendFloatToComputer(w io.Writer, samples []float32, timestamp uint32) error {
	_, err := c.writeSamples(w, samples, timestamp)
	return err
}

// ReceiveFloatFrame reads one sample frame. This is the host-side
// counterpart of SendFloatToComputer. A frame truncated mid-payload
// yields io.ErrUnexpectedEOF.
func (c Codec) ReceiveFloatFrame(r io.Reader) (*SampleFrame, error) {
	var head [SampleHeaderSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	order := c.order()
	frame := &SampleFrame{
		Timestamp: order.Uint32(head[:]),
		Samples:   make([]float32, order.Uint16(head[4:])),
	}
	buf := make([]byte, sampleSize*len(frame.Samples))
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	for i := range frame.Samples {
		frame.Samples[i] = math.Float32frombits(order.Uint32(buf[sampleSize*i:]))
	}
	return frame, nil
}

// ReceiveInt16FromComputer reads one integer frame and widens each
// 16-bit integer into the corresponding slot of dst. Widening to
// float32 is exact for every 16-bit value. At most len(dst) elements
// are stored; elements the header declares beyond that are read and
// discarded so the stream stays frame-aligned. The returned count is
// the number of elements stored in dst. On a truncated frame it
// returns the elements fully decoded so far together with the error.
func (c Codec) ReceiveInt16FromComputer(r io.Reader, dst []float32) (int, error) {
	order := c.order()
	var b [intSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	count := int(order.Uint16(b[:]))
	n := count
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return i, err
		}
		v := order.Uint16(b[:])
		if c.UnsignedInts {
			dst[i] = float32(v)
		} else {
			dst[i] = float32(int16(v))
		}
	}
	if count > n {
		if _, err := io.CopyN(io.Discard, r, int64(count-n)*intSize); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
	}
	return n, nil
}

// SendInt16ToDevice writes one integer frame. This is the host-side
// counterpart of ReceiveInt16FromComputer.
func (c Codec) SendInt16ToDevice(w io.Writer, values []int16) error {
	if len(values) > MaxFrameElems {
		return ErrFrameTooLarge
	}
	order := c.order()
	b := make([]byte, IntHeaderSize+intSize*len(values))
	order.PutUint16(b, uint16(len(values)))
	for i, v := range values {
		order.PutUint16(b[IntHeaderSize+intSize*i:], uint16(v))
	}
	_, err := w.Write(b)
	return err
}

// DecodeInt16 decodes a complete integer frame held in a byte slice.
// Unlike ReceiveInt16FromComputer it is strict: the slice must contain
// exactly one frame, with no missing or trailing bytes.
func (c Codec) DecodeInt16(b []byte) ([]int16, error) {
	if len(b) < IntHeaderSize {
		return nil, ErrBadFrame
	}
	order := c.order()
	count := int(order.Uint16(b))
	if len(b) != IntHeaderSize+intSize*count {
		return nil, ErrBadFrame
	}
	values := make([]int16, count)
	for i := range values {
		values[i] = int16(order.Uint16(b[IntHeaderSize+intSize*i:]))
	}
	return values, nil
}

// ReceiveFrequencyFromComputer reads a single 16-bit frequency value,
// blocking until it is available or the stream fails. The unit
// convention is Hz.
func (c Codec) ReceiveFrequencyFromComputer(r io.Reader) (uint16, error) {
	var b [FrequencySize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return c.order().Uint16(b[:]), nil
}

// SendFrequencyToDevice writes a single 16-bit frequency value. This
// is the host-side counterpart of ReceiveFrequencyFromComputer.
func (c Codec) SendFrequencyToDevice(w io.Writer, hz uint16) error {
	var b [FrequencySize]byte
	c.order().PutUint16(b[:], hz)
	_, err := w.Write(b[:])
	return err
}
