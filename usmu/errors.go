package usmu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration indicates a parameter outside the domain the hardware
	// enforces. The command is never serialized.
	ErrConfiguration = errors.New("usmu: invalid parameter")

	// ErrNotFound indicates that device discovery matched no port.
	ErrNotFound = errors.New("usmu: no matching device found")

	// ErrAmbiguous indicates that device discovery matched more than one
	// port and the selectors did not narrow it to exactly one.
	ErrAmbiguous = errors.New("usmu: multiple matching devices")

	// ErrTimeout indicates that no reply line arrived within the read
	// timeout.
	ErrTimeout = errors.New("usmu: reply timeout")

	// ErrConnectionClosed indicates an operation on a closed connection,
	// including any use after a successful Reset.
	ErrConnectionClosed = errors.New("usmu: connection closed")

	// ErrUnsupported indicates an operation the device cannot safely
	// perform.
	ErrUnsupported = errors.New("usmu: operation not supported by device firmware")
)

// AmbiguousError reports a device selection that left more than one
// candidate. It carries the full candidate list so a caller can present the
// choices to a human.
//
// It matches [ErrAmbiguous] under [errors.Is].
type AmbiguousError struct {
	Candidates []PortCandidate
}

func (e *AmbiguousError) Error() string {
	var sb strings.Builder
	sb.WriteString("usmu: multiple matching devices:")
	for _, c := range e.Candidates {
		fmt.Fprintf(&sb, " %s (%s)", c.Path, c.Identity)
	}

	return sb.String()
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }
