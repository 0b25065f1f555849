package mqtt

import (
	"bytes"
	"context"

	"github.com/golang/glog"

	"github.com/epuck-audio/link/pkg/link"
	"github.com/epuck-audio/link/pkg/pump"
)

// Topic suffixes under the device prefix.
const (
	TopicSignals = "/signals"
	TopicBins    = "/bins"
	TopicBuzzer  = "/buzzer"
)

// Publisher publishes received sample frames to <device>/signals.
type Publisher struct {
	Queue  *Queue
	Device string
}

// NewPublisher creates a Publisher for the device name.
func NewPublisher(q *Queue, device string) *Publisher {
	return &Publisher{Queue: q, Device: device}
}

// HandleFrame implements pump.FrameHandler. Payloads are the encoded
// wire frames, unchanged.
func (p *Publisher) HandleFrame(_ context.Context, frame *link.SampleFrame) {
	payload, err := frame.Encode()
	if err != nil {
		glog.Warningf("drop frame: %v", err)
		return
	}
	token := p.Queue.Pub(p.Device+TopicSignals, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Warningf("publish failed: %v", err)
	}
}

// Downlink subscribes to <device>/bins and <device>/buzzer and
// forwards well-formed commands to the device through the pump.
// Malformed payloads are dropped with a warning so a bad broker
// client cannot desynchronize the serial stream.
type Downlink struct {
	Queue  *Queue
	Pump   *pump.Pump
	Device string
	Codec  link.Codec
}

// NewDownlink creates a Downlink for the device name.
func NewDownlink(q *Queue, p *pump.Pump, device string) *Downlink {
	return &Downlink{Queue: q, Pump: p, Device: device}
}

// Run implements Runnable: it holds the subscriptions until the
// context is canceled.
func (d *Downlink) Run(ctx context.Context) error {
	binsSub := d.Queue.Sub(d.Device+TopicBins, d.handleBins)
	defer binsSub.Close()
	buzzerSub := d.Queue.Sub(d.Device+TopicBuzzer, d.handleBuzzer)
	defer buzzerSub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (d *Downlink) handleBins(topic string, payload []byte) {
	bins, err := d.Codec.DecodeInt16(payload)
	if err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	if err := d.Pump.SendBins(bins); err != nil {
		glog.Errorf("%s: send failed: %v", topic, err)
	}
}

func (d *Downlink) handleBuzzer(topic string, payload []byte) {
	hz, err := d.Codec.ReceiveFrequencyFromComputer(bytes.NewReader(payload))
	if err != nil || len(payload) != link.FrequencySize {
		glog.Warningf("%s: bad frequency payload", topic)
		return
	}
	if err := d.Pump.SendFrequency(hz); err != nil {
		glog.Errorf("%s: send failed: %v", topic, err)
	}
}
