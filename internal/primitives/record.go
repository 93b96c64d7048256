package primitives

import (
	"crypto/sha256"
	"io"
)

// RecordRef is a decoded PICA+ record whose fields borrow from the
// decoder's input buffer. It is valid until the next read on the
// originating reader; use ToOwned to keep it longer.
type RecordRef struct {
	fields []FieldRef
}

// NewRecord builds a record from fields. It returns an error if fields
// is empty or any tag or occurrence is malformed; use it for fixtures
// and programmatic construction, not for decoding.
func NewRecord(fields []FieldRef) (*RecordRef, error) {
	if len(fields) == 0 {
		return nil, &DecodeError{Kind: ErrEmptyLine}
	}
	for i := range fields {
		for j, b := range fields[i].Tag {
			if !validTagByte(j, b) {
				return nil, &DecodeError{Kind: ErrInvalidTag}
			}
		}
		occ := fields[i].Occurrence
		valid := occ == nil || (len(occ) >= 2 && len(occ) <= 3)
		for _, b := range occ {
			valid = valid && b >= '0' && b <= '9'
		}
		if !valid {
			return nil, &DecodeError{Kind: ErrInvalidOccurrence}
		}
	}
	return &RecordRef{fields: fields}, nil
}

// Fields returns the fields of the record in document order.
func (r *RecordRef) Fields() []FieldRef {
	return r.fields
}

// PPN returns the record identifier: the value of the first subfield
// with code '0' within the first field with tag 003@. It returns nil
// when the record has none.
func (r *RecordRef) PPN() []byte {
	ppn := Tag{'0', '0', '3', '@'}
	for i := range r.fields {
		if r.fields[i].Tag == ppn {
			return r.fields[i].First('0')
		}
	}
	return nil
}

// Retain rewrites the record to contain only the fields for which keep
// returns true, preserving order. It reports whether at least one field
// remains; a record reduced to zero fields must be dropped by the caller.
func (r *RecordRef) Retain(keep func(*FieldRef) bool) bool {
	kept := r.fields[:0]
	for i := range r.fields {
		if keep(&r.fields[i]) {
			kept = append(kept, r.fields[i])
		}
	}
	r.fields = kept
	return len(r.fields) > 0
}

// AppendTo appends the normalized serialization of the record, including
// the terminating line feed, to dst.
func (r *RecordRef) AppendTo(dst []byte) []byte {
	for i := range r.fields {
		dst = r.fields[i].appendTo(dst)
	}
	return append(dst, lineFeed)
}

// WriteTo writes the normalized serialization of the record to w.
func (r *RecordRef) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.AppendTo(nil))
	return int64(n), err
}

// SHA256 returns the SHA-256 digest of the record's serialized bytes,
// including the terminating line feed, so that the digest matches
// sha256sum over the original input line.
func (r *RecordRef) SHA256() [32]byte {
	return sha256.Sum256(r.AppendTo(nil))
}

// ToOwned deep-copies the record into its own backing buffer so it can
// outlive the reader that produced it.
func (r *RecordRef) ToOwned() *Record {
	buf := r.AppendTo(nil)
	rec, err := Decode(buf)
	if err != nil {
		// A serialized valid record always decodes.
		panic(err)
	}
	return &Record{RecordRef: *rec, buf: buf}
}

// Record is the owned form of a record: its fields point into a buffer
// the record itself owns. Used where records are retained across reads,
// such as deduplication sets and sampling reservoirs.
type Record struct {
	RecordRef
	buf []byte
}

// Bytes returns the owned serialized form, including the line feed.
func (r *Record) Bytes() []byte {
	return r.buf
}
