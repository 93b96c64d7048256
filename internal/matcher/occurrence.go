package matcher

import "bytes"

type occKind int

const (
	occNone occKind = iota // no occurrence given; matches absent or 00
	occAny                 // /*
	occExact               // /NN or /NNN
	occRange               // /NN-MM
)

// OccurrenceMatcher matches the optional occurrence of a field. The
// zero value matches fields without an occurrence (or with "00", which
// is semantically equivalent).
type OccurrenceMatcher struct {
	kind occKind
	min  []byte
	max  []byte
}

// AnyOccurrence returns the matcher for "/*".
func AnyOccurrence() OccurrenceMatcher {
	return OccurrenceMatcher{kind: occAny}
}

// NewOccurrenceMatcher parses an occurrence matcher expression: "/NN",
// "/NNN", "/NN-MM" or "/*". The empty expression yields the none
// matcher.
func NewOccurrenceMatcher(expr string) (OccurrenceMatcher, error) {
	p := NewParser([]byte(expr))
	m, err := p.ParseOccurrenceMatcher()
	if err == nil {
		err = p.Finish()
	}
	if err != nil {
		return OccurrenceMatcher{}, WithExpr(expr, err)
	}
	return m, nil
}

// IsMatch reports whether the occurrence occ matches; nil means the
// field carries none. An absent occurrence and "00" are equivalent.
func (m OccurrenceMatcher) IsMatch(occ []byte) bool {
	if occ == nil {
		return m.kind == occNone || m.kind == occAny
	}
	switch m.kind {
	case occAny:
		return true
	case occNone:
		return string(occ) == "00"
	case occExact:
		return bytes.Equal(occ, m.min)
	default:
		return bytes.Compare(occ, m.min) >= 0 && bytes.Compare(occ, m.max) <= 0
	}
}

func (m OccurrenceMatcher) String() string {
	switch m.kind {
	case occAny:
		return "/*"
	case occExact:
		return "/" + string(m.min)
	case occRange:
		return "/" + string(m.min) + "-" + string(m.max)
	default:
		return ""
	}
}

// ParseOccurrenceMatcher parses an optional occurrence matcher from the
// current position. Absence of a leading '/' yields the none matcher.
func (p *Parser) ParseOccurrenceMatcher() (OccurrenceMatcher, error) {
	if !p.Eat('/') {
		return OccurrenceMatcher{}, nil
	}
	if p.Eat('*') {
		return OccurrenceMatcher{kind: occAny}, nil
	}

	min, err := p.parseOccurrenceDigits()
	if err != nil {
		return OccurrenceMatcher{}, err
	}

	if p.peek() == '-' && p.peekAt(1) >= '0' && p.peekAt(1) <= '9' {
		p.pos++
		max, err := p.parseOccurrenceDigits()
		if err != nil {
			return OccurrenceMatcher{}, err
		}
		if len(min) != len(max) || bytes.Compare(min, max) >= 0 {
			return OccurrenceMatcher{}, p.Errf("invalid occurrence range %s-%s", min, max)
		}
		return OccurrenceMatcher{kind: occRange, min: min, max: max}, nil
	}

	// "/00" is the encoded form of an absent occurrence.
	if string(min) == "00" {
		return OccurrenceMatcher{}, nil
	}
	return OccurrenceMatcher{kind: occExact, min: min}, nil
}

func (p *Parser) parseOccurrenceDigits() ([]byte, error) {
	start := p.pos
	for p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if n := p.pos - start; n < 2 || n > 3 {
		return nil, p.Errf("expected 2- or 3-digit occurrence")
	}
	out := make([]byte, p.pos-start)
	copy(out, p.in[start:p.pos])
	return out, nil
}
