package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/epuck-audio/link/pkg/config"
	fx "github.com/epuck-audio/link/pkg/framework"
	"github.com/epuck-audio/link/pkg/link/serial"
	"github.com/epuck-audio/link/pkg/pump"
	"github.com/epuck-audio/link/pkg/sink/influx"
	"github.com/epuck-audio/link/pkg/transport/mqtt"
)

var (
	configPath = "audiolink.yaml"
	serialPort string
	mqttURL    string
)

func init() {
	if val := os.Getenv("AUDIOLINK_CONFIG"); val != "" {
		configPath = val
	}
	flag.StringVar(&configPath, "config", configPath, "Configuration file.")
	flag.StringVar(&serialPort, "port", serialPort, "Override serial port device.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "Override MQTT broker URL.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load(configPath)
	if os.IsNotExist(err) {
		glog.Warningf("%s not found, using defaults", configPath)
		conf, err = config.Default(), nil
	}
	if err != nil {
		glog.Exit(err)
	}
	if serialPort != "" {
		conf.Serial.Port = serialPort
	}
	if mqttURL != "" {
		conf.MQTT.URL = mqttURL
	}

	stream, err := serial.Open(conf.SerialConfig())
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("serial %s @ %d", conf.Serial.Port, conf.Serial.BaudRate)

	p := pump.New(stream)
	runner := fx.NewRunner().HandleSignals()

	if conf.MQTT.URL != "" {
		q, err := mqtt.NewQueueFromURL(conf.MQTT.URL)
		if err != nil {
			glog.Exit(err)
		}
		token := q.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			glog.Exit(err)
		}
		defer q.Close()
		p.AddHandler(mqtt.NewPublisher(q, conf.Device))
		runner.Go(fx.NamedRun("downlink", mqtt.NewDownlink(q, p, conf.Device)))
	}

	if conf.Influx.URL != "" {
		sink := influx.New(influx.Options{
			URL:        conf.Influx.URL,
			Token:      conf.Influx.Token,
			Org:        conf.Influx.Org,
			Bucket:     conf.Influx.Bucket,
			Device:     conf.Device,
			Layout:     conf.Layout(),
			BufferSize: conf.Audio.BufferSize,
			SampleRate: conf.Audio.SampleRate,
			Epoch:      time.Now(),
		})
		defer sink.Close()
		p.AddHandler(sink)
	}

	runner.Go(fx.NamedRun("pump", p))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
