package scpi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedToken indicates that a fixed literal (mnemonic, separator,
	// or terminator) did not match the input at the current position.
	ErrUnexpectedToken = errors.New("scpi: unexpected token")

	// ErrTrailingData indicates that unconsumed bytes remained after the
	// last expected field of a reply.
	ErrTrailingData = errors.New("scpi: trailing data after reply")

	// ErrMalformed indicates that a numeric field could not be parsed.
	ErrMalformed = errors.New("scpi: malformed field")
)

// UnexpectedTokenError reports a literal mismatch with the expected literal
// and the input actually found.
//
// It matches [ErrUnexpectedToken] under [errors.Is].
type UnexpectedTokenError struct {
	Expected string
	Found    string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("scpi: unexpected token: expected %q, found %q", e.Expected, e.Found)
}

func (e *UnexpectedTokenError) Unwrap() error { return ErrUnexpectedToken }
