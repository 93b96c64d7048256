package primitives

// FieldRef is a tag, an optional occurrence and an ordered list of
// subfields. A nil Occurrence means the field carries none; for matching
// purposes an absent occurrence is equivalent to "00", but the two are
// distinct in the encoding.
type FieldRef struct {
	Tag        Tag
	Occurrence []byte
	Subfields  []SubfieldRef
}

// Values returns the values of all subfields whose code is c, in order.
func (f *FieldRef) Values(c SubfieldCode) [][]byte {
	var values [][]byte
	for i := range f.Subfields {
		if f.Subfields[i].Code == c {
			values = append(values, f.Subfields[i].Value)
		}
	}
	return values
}

// First returns the value of the first subfield with code c, or nil.
func (f *FieldRef) First(c SubfieldCode) []byte {
	for i := range f.Subfields {
		if f.Subfields[i].Code == c {
			return f.Subfields[i].Value
		}
	}
	return nil
}

// Contains reports whether the field has at least one subfield with
// code c.
func (f *FieldRef) Contains(c SubfieldCode) bool {
	return f.First(c) != nil
}

func (f *FieldRef) appendTo(dst []byte) []byte {
	dst = append(dst, f.Tag[:]...)
	if len(f.Occurrence) > 0 {
		dst = append(dst, '/')
		dst = append(dst, f.Occurrence...)
	}
	dst = append(dst, ' ')
	for i := range f.Subfields {
		dst = f.Subfields[i].appendTo(dst)
	}
	return append(dst, recordSeparator)
}
