// Package serial opens the serial port the link protocol runs over.
// The port lifecycle is owned by the caller; the codec only uses the
// returned stream.
package serial

import (
	"io"
	"time"

	tarm "github.com/tarm/serial"
)

// Config describes the serial port connected to the audio firmware.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// DefaultBaud matches the firmware UART configuration.
const DefaultBaud = 115200

// Open opens the port as a raw byte stream.
func Open(conf Config) (io.ReadWriteCloser, error) {
	baud := conf.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	return tarm.OpenPort(&tarm.Config{
		Name:        conf.Device,
		Baud:        baud,
		ReadTimeout: conf.ReadTimeout,
	})
}
