package matcher

import (
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// TagMatcher matches a 4-byte tag. Each position holds the set of
// accepted bytes, built from a literal character, a '.' wildcard or a
// bracketed character set with ranges.
type TagMatcher struct {
	pattern [4][]byte
	raw     string
}

// tagAlphabet holds the full byte alphabet per tag position.
var tagAlphabet = [4]string{
	"012",
	"0123456789",
	"0123456789",
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ@",
}

// NewTagMatcher parses a tag matcher expression such as "003@",
// "041[A@]", "00[3-5]@" or "....".
func NewTagMatcher(expr string) (*TagMatcher, error) {
	p := NewParser([]byte(expr))
	m, err := p.ParseTagMatcher()
	if err == nil {
		err = p.Finish()
	}
	if err != nil {
		return nil, WithExpr(expr, err)
	}
	return m, nil
}

// IsMatch reports whether tag matches the pattern.
func (m *TagMatcher) IsMatch(tag primitives.Tag) bool {
	for i := 0; i < 4; i++ {
		if !containsByte(m.pattern[i], tag[i]) {
			return false
		}
	}
	return true
}

func (m *TagMatcher) String() string {
	return m.raw
}

func containsByte(set []byte, b byte) bool {
	for _, x := range set {
		if x == b {
			return true
		}
	}
	return false
}

// ParseTagMatcher parses a tag matcher from the current position.
func (p *Parser) ParseTagMatcher() (*TagMatcher, error) {
	start := p.pos
	var m TagMatcher

	for i := 0; i < 4; i++ {
		set, err := p.parseTagPosition(i)
		if err != nil {
			return nil, err
		}
		m.pattern[i] = set
	}

	m.raw = string(p.in[start:p.pos])
	return &m, nil
}

func (p *Parser) parseTagPosition(i int) ([]byte, error) {
	alphabet := tagAlphabet[i]
	switch b := p.peek(); {
	case b == '.':
		p.pos++
		return []byte(alphabet), nil
	case b == '[':
		p.pos++
		var set []byte
		for !p.Eat(']') {
			lo := p.peek()
			if !containsByte([]byte(alphabet), lo) {
				return nil, p.Errf("invalid character in tag pattern")
			}
			p.pos++
			if p.peek() == '-' && containsByte([]byte(alphabet), p.peekAt(1)) {
				p.pos++
				hi := p.peek()
				p.pos++
				if hi <= lo {
					return nil, p.Errf("invalid tag pattern range %c-%c", lo, hi)
				}
				for c := lo; c <= hi; c++ {
					if containsByte([]byte(alphabet), c) {
						set = append(set, c)
					}
				}
			} else {
				set = append(set, lo)
			}
		}
		if len(set) == 0 {
			return nil, p.Errf("empty tag pattern set")
		}
		return set, nil
	case containsByte([]byte(alphabet), b):
		p.pos++
		return []byte{b}, nil
	default:
		return nil, p.Errf("invalid tag pattern")
	}
}
