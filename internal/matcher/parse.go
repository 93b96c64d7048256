package matcher

import (
	"fmt"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// ParseError reports a malformed matcher, path or selection expression
// together with the byte offset the parser gave up at.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("invalid expression %q at byte %d: %s", e.Expr, e.Pos, e.Msg)
	}
	return fmt.Sprintf("invalid expression at byte %d: %s", e.Pos, e.Msg)
}

// Parser is a cursor over an expression. It is shared between the
// matcher, path and selection grammars so that one grammar can embed
// another without re-scanning.
type Parser struct {
	in  []byte
	pos int
}

// NewParser returns a parser over expr.
func NewParser(expr []byte) *Parser {
	return &Parser{in: expr}
}

// Rest returns the unconsumed input.
func (p *Parser) Rest() []byte {
	return p.in[p.pos:]
}

// Input returns the full expression being parsed.
func (p *Parser) Input() []byte {
	return p.in
}

// Pos returns the current byte offset.
func (p *Parser) Pos() int {
	return p.pos
}

// EOF reports whether the whole input is consumed.
func (p *Parser) EOF() bool {
	return p.pos >= len(p.in)
}

// Finish returns an error unless all input is consumed.
func (p *Parser) Finish() error {
	p.SkipWS()
	if !p.EOF() {
		return p.Errf("unexpected trailing input")
	}
	return nil
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *Parser) peekAt(off int) byte {
	if p.pos+off >= len(p.in) {
		return 0
	}
	return p.in[p.pos+off]
}

// Eat consumes b if it is the next byte.
func (p *Parser) Eat(b byte) bool {
	if p.peek() == b {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) eatString(s string) bool {
	if p.pos+len(s) <= len(p.in) && string(p.in[p.pos:p.pos+len(s)]) == s {
		p.pos += len(s)
		return true
	}
	return false
}

// Expect consumes b or fails.
func (p *Parser) Expect(b byte) error {
	if !p.Eat(b) {
		return p.Errf("expected %q", string(rune(b)))
	}
	return nil
}

// SkipWS skips whitespace.
func (p *Parser) SkipWS() {
	for p.pos < len(p.in) {
		switch p.in[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// Errf creates a ParseError at the current position.
func (p *Parser) Errf(format string, args ...any) *ParseError {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// WithExpr stamps the full expression text onto a parse error.
func WithExpr(expr string, err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ParseError); ok {
		pe.Expr = expr
		return pe
	}
	return err
}

// CodeSelector is a set of subfield codes, possibly the wildcard set.
type CodeSelector struct {
	codes []primitives.SubfieldCode
	any   bool
}

func (c CodeSelector) Has(code primitives.SubfieldCode) bool {
	if c.any {
		return true
	}
	for _, x := range c.codes {
		if x == code {
			return true
		}
	}
	return false
}

func (c CodeSelector) String() string {
	if c.any {
		return "*"
	}
	if len(c.codes) == 1 {
		return c.codes[0].String()
	}
	out := "["
	for _, x := range c.codes {
		out += x.String()
	}
	return out + "]"
}

// parseSubfieldCode parses a single alphanumeric subfield code.
func (p *Parser) parseSubfieldCode() (primitives.SubfieldCode, error) {
	b := p.peek()
	if !primitives.ValidSubfieldCode(b) {
		return 0, p.Errf("expected subfield code")
	}
	p.pos++
	return primitives.SubfieldCode(b), nil
}

// ParseCodeSelector parses a code selector: a single code, a bracketed
// set with optional ranges ([ab0-9]), or the wildcard '*'.
func (p *Parser) ParseCodeSelector() (CodeSelector, error) {
	if p.Eat('*') {
		return CodeSelector{any: true}, nil
	}
	if !p.Eat('[') {
		code, err := p.parseSubfieldCode()
		if err != nil {
			return CodeSelector{}, err
		}
		return CodeSelector{codes: []primitives.SubfieldCode{code}}, nil
	}

	var codes []primitives.SubfieldCode
	for !p.Eat(']') {
		lo, err := p.parseSubfieldCode()
		if err != nil {
			return CodeSelector{}, err
		}
		if p.peek() == '-' && primitives.ValidSubfieldCode(p.peekAt(1)) {
			p.pos++
			hi, err := p.parseSubfieldCode()
			if err != nil {
				return CodeSelector{}, err
			}
			if hi <= lo {
				return CodeSelector{}, p.Errf("invalid code range %c-%c", lo, hi)
			}
			for c := lo; c <= hi; c++ {
				if primitives.ValidSubfieldCode(byte(c)) {
					codes = append(codes, c)
				}
			}
		} else {
			codes = append(codes, lo)
		}
	}
	if len(codes) == 0 {
		return CodeSelector{}, p.Errf("empty subfield code list")
	}
	return CodeSelector{codes: codes}, nil
}

// parseString parses a single- or double-quoted literal with the escape
// sequences \n, \r, \t, \b, \f, \\, \/ and the active quote.
func (p *Parser) parseString() ([]byte, error) {
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return nil, p.Errf("expected string literal")
	}
	p.pos++

	var out []byte
	for {
		if p.EOF() {
			return nil, p.Errf("unterminated string literal")
		}
		b := p.in[p.pos]
		switch b {
		case quote:
			p.pos++
			return out, nil
		case '\\':
			p.pos++
			if p.EOF() {
				return nil, p.Errf("unterminated escape sequence")
			}
			esc := p.in[p.pos]
			p.pos++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, 0x08)
			case 'f':
				out = append(out, 0x0c)
			case '\\', '/':
				out = append(out, esc)
			case quote:
				out = append(out, quote)
			default:
				p.pos -= 2
				return nil, p.Errf("invalid escape sequence \\%c", esc)
			}
		default:
			out = append(out, b)
			p.pos++
		}
	}
}

// ParseLiteral parses a quoted string literal from the current
// position. The selection grammar uses it for verbatim columns.
func (p *Parser) ParseLiteral() ([]byte, error) {
	return p.parseString()
}

// parseStringList parses a bracketed, comma-separated list of string
// literals with at least one element.
func (p *Parser) parseStringList() ([][]byte, error) {
	p.SkipWS()
	if err := p.Expect('['); err != nil {
		return nil, err
	}

	var values [][]byte
	for {
		p.SkipWS()
		value, err := p.parseString()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		p.SkipWS()
		if p.Eat(',') {
			continue
		}
		if err := p.Expect(']'); err != nil {
			return nil, err
		}
		return values, nil
	}
}

// parseNumber parses a non-negative decimal integer.
func (p *Parser) parseNumber() (int, error) {
	start := p.pos
	for p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.Errf("expected number")
	}

	n := 0
	for _, d := range p.in[start:p.pos] {
		n = n*10 + int(d-'0')
	}
	return n, nil
}

// parseRelationalOp parses a relational operator token.
func (p *Parser) parseRelationalOp() (RelationalOp, error) {
	switch {
	case p.eatString("=="):
		return OpEqual, nil
	case p.eatString("!="):
		return OpNotEqual, nil
	case p.eatString(">="):
		return OpGreaterEqual, nil
	case p.eatString("<="):
		return OpLessEqual, nil
	case p.eatString("=^"):
		return OpStartsWith, nil
	case p.eatString("!^"):
		return OpStartsNotWith, nil
	case p.eatString("=$"):
		return OpEndsWith, nil
	case p.eatString("!$"):
		return OpEndsNotWith, nil
	case p.eatString("=*"):
		return OpSimilar, nil
	case p.eatString("=?"):
		return OpContains, nil
	case p.Eat('>'):
		return OpGreater, nil
	case p.Eat('<'):
		return OpLess, nil
	default:
		return 0, p.Errf("expected relational operator")
	}
}

// parseQuantifier parses an optional ALL/ANY prefix. The symbolic forms
// are accepted as aliases.
func (p *Parser) parseQuantifier() Quantifier {
	p.SkipWS()
	switch {
	case p.eatString("ALL"), p.eatString("∀"):
		p.SkipWS()
		return All
	case p.eatString("ANY"), p.eatString("∃"):
		p.SkipWS()
		return Any
	default:
		return Any
	}
}
