// Package pump drives the link protocol over an open stream: it reads
// sample frames from the firmware and fans them out to handlers, and
// serializes downlink commands onto the same stream.
package pump

import (
	"context"
	"io"
	"sync"

	fx "github.com/epuck-audio/link/pkg/framework"
	"github.com/epuck-audio/link/pkg/link"
)

// FrameHandler consumes received sample frames.
type FrameHandler interface {
	HandleFrame(context.Context, *link.SampleFrame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *link.SampleFrame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame *link.SampleFrame) {
	f(ctx, frame)
}

// Pump owns one end of the link. Reads run in Run; sends are
// serialized by an internal lock so handlers and other goroutines can
// share the single stream.
type Pump struct {
	Stream   io.ReadWriter
	Codec    link.Codec
	Handlers []FrameHandler

	sendLock sync.Mutex
}

// New creates a Pump over an open stream.
func New(stream io.ReadWriter) *Pump {
	return &Pump{Stream: stream}
}

// AddHandler registers frame handlers.
func (p *Pump) AddHandler(handlers ...FrameHandler) *Pump {
	p.Handlers = append(p.Handlers, handlers...)
	return p
}

// SendBins sends a frequency-bin selection to the firmware.
func (p *Pump) SendBins(bins []int16) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.Codec.SendInt16ToDevice(p.Stream, bins)
}

// SendFrequency sends the buzzer frequency in Hz to the firmware.
func (p *Pump) SendFrequency(hz uint16) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.Codec.SendFrequencyToDevice(p.Stream, hz)
}

// Run reads sample frames until the stream fails or the context is
// canceled. If the stream is closeable, cancelation closes it to
// unblock the pending read. Read errors are returned as-is, no retry.
func (p *Pump) Run(ctx context.Context) error {
	loop := func() error {
		for {
			frame, err := p.Codec.ReceiveFloatFrame(p.Stream)
			if err != nil {
				return err
			}
			for _, h := range p.Handlers {
				h.HandleFrame(ctx, frame)
			}
		}
	}
	if closer, ok := p.Stream.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, loop)
	}
	return fx.RunWithContext(ctx, loop)
}
