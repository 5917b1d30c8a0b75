package scpi

import "strconv"

// Terminator is the line terminator of both commands and replies.
const Terminator = "\n"

// FormatFloat32 returns the shortest decimal text that parses back to
// exactly f at single precision.
func FormatFloat32(f float32) string {
	return string(AppendFloat32(nil, f))
}

// AppendFloat32 appends the shortest round-trip decimal text of f to dst.
// The text is always positional decimal, never exponent notation; the
// device firmware only deals in plain decimal on the wire.
func AppendFloat32(dst []byte, f float32) []byte {
	return strconv.AppendFloat(dst, float64(f), 'f', -1, 32)
}

// FormatUint returns the decimal text of v.
func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// ValidLine reports whether line is pure ASCII with no embedded terminator,
// the only form the device accepts on the wire.
func ValidLine(line string) bool {
	for i := 0; i < len(line); i++ {
		b := line[i]
		if b >= 0x80 || b == '\n' || b == '\r' {
			return false
		}
	}

	return true
}
