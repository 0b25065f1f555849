// Package influx records received spectra in InfluxDB.
package influx

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/epuck-audio/link/pkg/link"
	"github.com/epuck-audio/link/pkg/spectra"
)

// Options configures the sink.
type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	Device     string
	Layout     spectra.Layout
	BufferSize int
	SampleRate float64

	// Epoch is the wall time of device tick 0; Tick is the duration of
	// one tick. Frame timestamps are mapped onto wall time with these.
	Epoch time.Time
	Tick  time.Duration
}

// Sink writes one point per mic per received frame, with magnitude
// fields keyed by bin frequency. It implements pump.FrameHandler.
type Sink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	opts   Options
}

// New creates a Sink and its underlying client.
func New(opts Options) *Sink {
	if opts.Tick == 0 {
		opts.Tick = time.Millisecond
	}
	if opts.Epoch.IsZero() {
		opts.Epoch = time.Now()
	}
	client := influxdb2.NewClient(opts.URL, opts.Token)
	return &Sink{
		client: client,
		write:  client.WriteAPIBlocking(opts.Org, opts.Bucket),
		opts:   opts,
	}
}

// HandleFrame implements pump.FrameHandler.
func (s *Sink) HandleFrame(ctx context.Context, frame *link.SampleFrame) {
	spec, err := spectra.FromFrame(frame, s.opts.Layout, s.opts.BufferSize, s.opts.SampleRate)
	if err != nil {
		glog.Warningf("drop frame: %v", err)
		return
	}
	ts := s.opts.Epoch.Add(time.Duration(frame.Timestamp) * s.opts.Tick)
	for mic := 0; mic < s.opts.Layout.Mics; mic++ {
		fields := make(map[string]interface{}, len(spec.Frequencies))
		for i, mag := range spec.Magnitudes(mic) {
			fields[fmt.Sprintf("bin_%04.0fhz", spec.Frequencies[i])] = mag
		}
		p := influxdb2.NewPoint(
			"spectrum",
			map[string]string{
				"device": s.opts.Device,
				"mic":    fmt.Sprintf("%d", mic),
			},
			fields,
			ts,
		)
		if err := s.write.WritePoint(ctx, p); err != nil {
			glog.Errorf("influx write: %v", err)
		}
	}
}

// Close releases the client.
func (s *Sink) Close() error {
	s.client.Close()
	return nil
}
