// Package scpi implements the line-oriented ASCII codec used by the uSMU's
// SCPI-flavored command protocol.
//
// Commands travel as one ASCII line terminated by '\n'; replies are one line
// terminated by '\n' with ',' separating fields in multi-field replies.
//
// # Encoding
//
// The encoding helpers produce the minimal decimal text that round-trips a
// single-precision value exactly. The device's finest resolution is 10
// nanoamps, so fixed-precision truncation would lose real information;
// [FormatFloat32] instead uses the shortest digits that parse back to the
// identical bit pattern, always rendered in positional notation since the
// firmware does not read exponent forms.
//
// # Decoding
//
// [Cursor] is a consuming reader over a single reply line. Fixed mnemonics
// and separators are matched case-sensitively with [Cursor.MatchLiteral];
// a mismatch fails with [ErrUnexpectedToken]. After the last expected field
// the caller matches the terminator and calls [Cursor.Empty], which fails
// with [ErrTrailingData] if any bytes remain.
package scpi
