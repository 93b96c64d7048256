package primitives

// Framing bytes of the normalized PICA+ serialization.
const (
	unitSeparator   = 0x1f // US, precedes each subfield
	recordSeparator = 0x1e // RS, terminates each field
	lineFeed        = 0x0a // LF, terminates each record
)

// SubfieldCode is a single alphanumeric byte identifying a subfield
// within a field.
type SubfieldCode byte

// ValidSubfieldCode reports whether b is a valid subfield code.
func ValidSubfieldCode(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (c SubfieldCode) String() string {
	return string(rune(c))
}

// SubfieldRef is a (code, value) pair. The value is an arbitrary byte
// sequence free of the framing bytes US, RS and LF; it points into the
// decoder's input buffer and must not be retained past the next read.
type SubfieldRef struct {
	Code  SubfieldCode
	Value []byte
}

func (s SubfieldRef) appendTo(dst []byte) []byte {
	dst = append(dst, unitSeparator, byte(s.Code))
	return append(dst, s.Value...)
}
