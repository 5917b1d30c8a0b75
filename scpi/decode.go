package scpi

import (
	"fmt"
	"strconv"
	"strings"
)

// floatChars are the bytes that may appear in a decimal float field.
const floatChars = "0123456789+-.eE"

// digitChars are the bytes that may appear in an unsigned decimal field.
const digitChars = "0123456789"

// Cursor is a consuming reader over a single reply line.
//
// Each method consumes the bytes it matches; decoding a reply is a sequence
// of field and literal matches followed by [Cursor.Empty].
type Cursor struct {
	rest string
}

// NewCursor creates a Cursor over line. The line should include its trailing
// terminator so the caller can verify it with MatchLiteral(Terminator).
func NewCursor(line string) *Cursor {
	return &Cursor{rest: line}
}

// MatchLiteral consumes lit from the input. The match is case-sensitive and
// exact; on mismatch it returns an [UnexpectedTokenError] and consumes
// nothing.
func (c *Cursor) MatchLiteral(lit string) error {
	if !strings.HasPrefix(c.rest, lit) {
		found := c.rest
		if len(found) > len(lit) {
			found = found[:len(lit)]
		}

		return &UnexpectedTokenError{Expected: lit, Found: found}
	}
	c.rest = c.rest[len(lit):]

	return nil
}

// Float32 consumes and parses a single-precision decimal float field.
func (c *Cursor) Float32() (float32, error) {
	tok := c.take(floatChars)
	if tok == "" {
		return 0, fmt.Errorf("%w: expected float, found %q", ErrMalformed, c.rest)
	}

	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid float %q", ErrMalformed, tok)
	}

	return float32(v), nil
}

// Uint consumes and parses an unsigned decimal field of the given bit size.
func (c *Cursor) Uint(bitSize int) (uint64, error) {
	tok := c.take(digitChars)
	if tok == "" {
		return 0, fmt.Errorf("%w: expected unsigned integer, found %q", ErrMalformed, c.rest)
	}

	v, err := strconv.ParseUint(tok, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid unsigned integer %q", ErrMalformed, tok)
	}

	return v, nil
}

// Empty returns nil if the entire input has been consumed, and
// [ErrTrailingData] otherwise.
func (c *Cursor) Empty() error {
	if c.rest != "" {
		return fmt.Errorf("%w: %q", ErrTrailingData, c.rest)
	}

	return nil
}

// Rest returns the unconsumed remainder of the input.
func (c *Cursor) Rest() string {
	return c.rest
}

// take consumes the longest prefix made of bytes in set.
func (c *Cursor) take(set string) string {
	i := 0
	for i < len(c.rest) && strings.IndexByte(set, c.rest[i]) >= 0 {
		i++
	}
	tok := c.rest[:i]
	c.rest = c.rest[i:]

	return tok
}
