package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/epuck-audio/link/pkg/config"
	"github.com/epuck-audio/link/pkg/link"
	"github.com/epuck-audio/link/pkg/link/serial"
	"github.com/epuck-audio/link/pkg/pump"
	"github.com/epuck-audio/link/pkg/spectra"
)

var (
	configPath = "audiolink.yaml"
	evalOnly   bool
)

func init() {
	flag.StringVar(&configPath, "config", configPath, "Configuration file.")
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

const sessionKey = "$session"

// session is the state behind the shell: one open serial stream with a
// pump running in the background.
type session struct {
	conf   *config.Config
	stream io.ReadWriteCloser
	pump   *pump.Pump
	cancel func()
	doneCh chan error

	lock    sync.Mutex
	watchCh chan *link.SampleFrame
}

func sessionFrom(c *ishell.Context) *session {
	return c.Get(sessionKey).(*session)
}

func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if sessionFrom(c).pump == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

func (s *session) connect(port string) error {
	conf := s.conf.SerialConfig()
	if port != "" {
		conf.Device = port
	}
	stream, err := serial.Open(conf)
	if err != nil {
		return err
	}
	s.stream = stream
	s.pump = pump.New(stream).AddHandler(pump.HandleFrameFunc(s.handleFrame))
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.doneCh = make(chan error, 1)
	go func() {
		s.doneCh <- s.pump.Run(ctx)
	}()
	return nil
}

func (s *session) disconnect() {
	if s.pump == nil {
		return
	}
	s.cancel()
	<-s.doneCh
	s.pump, s.stream, s.cancel = nil, nil, nil
}

func (s *session) handleFrame(_ context.Context, frame *link.SampleFrame) {
	s.lock.Lock()
	ch := s.watchCh
	s.lock.Unlock()
	if ch != nil {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (s *session) watch() chan *link.SampleFrame {
	ch := make(chan *link.SampleFrame, 1)
	s.lock.Lock()
	s.watchCh = ch
	s.lock.Unlock()
	return ch
}

func (s *session) unwatch() {
	s.lock.Lock()
	s.watchCh = nil
	s.lock.Unlock()
}

var commands = []*ishell.Cmd{
	{
		Name: "connect",
		Help: "[PORT] open the serial link",
		Func: func(c *ishell.Context) {
			s := sessionFrom(c)
			s.disconnect()
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if err := s.connect(port); err != nil {
				c.Err(err)
				return
			}
			c.Println("connected")
		},
	},
	{
		Name: "disconnect",
		Help: "close the serial link",
		Func: func(c *ishell.Context) {
			sessionFrom(c).disconnect()
		},
	},
	{
		Name: "buzzer",
		Help: "HZ set the buzzer frequency",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("HZ required"))
				return
			}
			hz, err := strconv.ParseUint(c.Args[0], 10, 16)
			if err != nil {
				c.Err(fmt.Errorf("Invalid HZ: %v", err))
				return
			}
			if err := sessionFrom(c).pump.SendFrequency(uint16(hz)); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "bins",
		Help: "N... select frequency bins",
		Func: mustBeConnected(func(c *ishell.Context) {
			bins := make([]int16, 0, len(c.Args))
			for _, arg := range c.Args {
				val, err := strconv.ParseInt(arg, 10, 16)
				if err != nil {
					c.Err(fmt.Errorf("Invalid bin %q: %v", arg, err))
					return
				}
				bins = append(bins, int16(val))
			}
			if err := sessionFrom(c).pump.SendBins(bins); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "watch",
		Help: "[COUNT] print incoming spectra",
		Func: mustBeConnected(func(c *ishell.Context) {
			count := 1
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val < 1 {
					c.Err(fmt.Errorf("Invalid COUNT"))
					return
				}
				count = val
			}
			s := sessionFrom(c)
			ch := s.watch()
			defer s.unwatch()
			for i := 0; i < count; i++ {
				select {
				case frame := <-ch:
					printFrame(c, frame, s.conf)
				case <-time.After(5 * time.Second):
					c.Err(fmt.Errorf("no frame received"))
					return
				}
			}
		}),
	},
}

func printFrame(c *ishell.Context, frame *link.SampleFrame, conf *config.Config) {
	layout := conf.Layout()
	spec, err := spectra.FromFrame(frame, layout,
		conf.Audio.BufferSize, conf.Audio.SampleRate)
	if err != nil {
		c.Printf("tick %d: %d raw samples (%v)\n", frame.Timestamp, len(frame.Samples), err)
		return
	}
	c.Printf("tick %d:\n", frame.Timestamp)
	for mic := 0; mic < layout.Mics; mic++ {
		c.Printf("  mic%d:", mic)
		for _, mag := range spec.Magnitudes(mic) {
			c.Printf(" %.3g", mag)
		}
		c.Println()
	}
}

func main() {
	flag.Parse()

	conf, err := config.Load(configPath)
	if err != nil {
		conf = config.Default()
	}
	s := &session{conf: conf}
	defer s.disconnect()

	shell := ishell.New()
	shell.Set(sessionKey, s)
	shell.SetPrompt(conf.Device + " > ")
	for _, cmd := range commands {
		shell.AddCmd(cmd)
	}

	if evalOnly || len(flag.Args()) > 0 {
		if err := shell.Process(flag.Args()...); err != nil {
			shell.Println(err)
		}
		return
	}
	shell.Run()
}
