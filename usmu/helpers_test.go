package usmu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePort is an in-memory Port. It records every Write and serves scripted
// reply chunks, one chunk per Read call. A nil chunk simulates an expired
// read timeout (zero-byte read, nil error), matching the serial port
// behavior.
type fakePort struct {
	writes      [][]byte
	replies     [][]byte
	readErr     error
	writeErr    error
	closed      bool
	readTimeout time.Duration
}

func (p *fakePort) Read(buf []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.replies) == 0 {
		return 0, nil
	}

	chunk := p.replies[0]
	p.replies = p.replies[1:]
	if chunk == nil {
		return 0, nil
	}

	return copy(buf, chunk), nil
}

func (p *fakePort) Write(buf []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes = append(p.writes, append([]byte(nil), buf...))

	return len(buf), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

// reply queues one scripted reply chunk.
func (p *fakePort) reply(chunks ...string) {
	for _, c := range chunks {
		p.replies = append(p.replies, []byte(c))
	}
}

// sentLines returns every written buffer as a string.
func (p *fakePort) sentLines() []string {
	lines := make([]string, 0, len(p.writes))
	for _, w := range p.writes {
		lines = append(lines, string(w))
	}

	return lines
}

// newTestDevice creates a Device over a fakePort with a zero settle delay
// so tests run at full speed.
func newTestDevice(t *testing.T, port *fakePort, opts ...DeviceOption) *Device {
	t.Helper()

	opts = append([]DeviceOption{WithSettleDelay(0)}, opts...)

	dev, err := NewDevice(port, opts...)
	require.NoError(t, err)

	return dev
}
