// Package config loads the host tool configuration from a YAML file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/epuck-audio/link/pkg/link/serial"
	"github.com/epuck-audio/link/pkg/spectra"
)

// Config is the top-level configuration.
type Config struct {
	Device string       `yaml:"device"`
	Serial SerialConfig `yaml:"serial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Influx InfluxConfig `yaml:"influx"`
	Audio  AudioConfig  `yaml:"audio"`
}

// SerialConfig configures the serial port to the firmware.
type SerialConfig struct {
	Port          string `yaml:"port"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// MQTTConfig configures the broker connection. An empty URL disables
// MQTT fan-out.
type MQTTConfig struct {
	URL string `yaml:"url"`
}

// InfluxConfig configures the telemetry sink. An empty URL disables it.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Token  string `yaml:"token"`
}

// AudioConfig mirrors the firmware build parameters.
type AudioConfig struct {
	Mics       int     `yaml:"n_mics"`
	Bins       int     `yaml:"fft_size"`
	BufferSize int     `yaml:"n_buffer"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the configuration matching the stock firmware build.
func Default() *Config {
	return &Config{
		Device: "epuck0",
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: serial.DefaultBaud,
		},
		Audio: AudioConfig{
			Mics:       spectra.DefaultMics,
			Bins:       spectra.DefaultBins,
			BufferSize: spectra.DefaultBufferSize,
			SampleRate: spectra.DefaultSampleRate,
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// SerialConfig converts to the port package config.
func (c *Config) SerialConfig() serial.Config {
	return serial.Config{
		Device:      c.Serial.Port,
		Baud:        c.Serial.BaudRate,
		ReadTimeout: time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond,
	}
}

// Layout returns the spectra layout of the configured firmware.
func (c *Config) Layout() spectra.Layout {
	return spectra.Layout{Mics: c.Audio.Mics, Bins: c.Audio.Bins}
}
