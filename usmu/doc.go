// Package usmu drives a single-channel uSMU source-measure unit over its
// USB virtual COM port.
//
// The device speaks a line-oriented ASCII protocol at 9600 baud: one command
// per '\n'-terminated line, at most one command in flight, and a mandatory
// settle delay after every transmission. Package usmu provides the full
// command catalog as validated constructors, a [Device] that owns the serial
// connection and enforces the timing contract, and discovery of attached
// units by USB vendor/product identity.
//
// # Command catalog
//
// Every command the firmware understands has a constructor (for example
// [SetCurrentLimit], [Measure], [Identity]). Parameter domains the hardware
// enforces are validated at construction and an out-of-domain value fails
// with [ErrConfiguration] before anything reaches the wire.
//
// # Timing
//
// The device cannot accept a new command within 50 ms of the previous one,
// and it withholds the reply to a measurement for the full duration of the
// measurement. [Device.Send] sleeps the settle delay before returning;
// [Device.Query] additionally reads one reply line with a read timeout that
// must exceed the worst-case measurement latency. High oversampling
// configurations can exceed the default 1 s timeout; raise it with
// [WithReadTimeout] when needed.
//
// # Discovery
//
// [Discover] enumerates serial ports, keeps those reporting USB VID 1155 /
// PID 22336, disambiguates by port path or device identity, and returns an
// open [Device]. A [Device.Reset] makes the unit drop off the bus; the
// connection is closed and the caller must rediscover.
package usmu
