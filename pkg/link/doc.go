// Package link implements the wire protocol between the audio firmware
// and the host computer.
package link

// The link carries three frame kinds over a raw byte stream (a serial
// port or any io.ReadWriter):
//
//   sample frame    timestamp:4, count:2, then count 4-byte IEEE-754 floats
//   integer frame   count:2, then count 2-byte integers
//   frequency       a single 2-byte integer
//
// All fields are little-endian unless a Codec overrides the order.
// A frame declares its own element count, so a truncated frame is
// detectable by any conforming reader. Frames carry no checksum for
// simplicity and to be lightweighted; if bit verification is needed,
// parity bits can be enabled on the serial port.
//
// Producer of sample frames: audio firmware
// Producer of integer and frequency frames: host computer
//
// Each operation is a single blocking transaction with no cross-call
// state. The stream is exclusively owned for the duration of a call;
// callers issuing sends and receives from different goroutines must
// serialize access themselves.
