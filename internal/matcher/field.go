package matcher

import (
	"fmt"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// FieldMatcher is a predicate over the fields of a record. All node
// kinds are peers: field existence, subfield tests, cardinality, and
// grouping, negation and boolean composition.
type FieldMatcher interface {
	// IsMatch evaluates the matcher against a list of fields.
	IsMatch(fields []primitives.FieldRef, o *Options) bool
	String() string
}

// FieldExistsMatcher is true if the record contains at least one field
// matching the tag and occurrence ("003@?", "041A/*?").
type FieldExistsMatcher struct {
	tag *TagMatcher
	occ OccurrenceMatcher
}

func (m *FieldExistsMatcher) IsMatch(fields []primitives.FieldRef, _ *Options) bool {
	for i := range fields {
		if m.tag.IsMatch(fields[i].Tag) && m.occ.IsMatch(fields[i].Occurrence) {
			return true
		}
	}
	return false
}

func (m *FieldExistsMatcher) String() string {
	return m.tag.String() + m.occ.String() + "?"
}

// SubfieldsMatcher applies a subfield matcher to every field matching
// the tag and occurrence. Under the Any quantifier one satisfied field
// suffices; under All every matching field must satisfy it (vacuously
// true when none match).
type SubfieldsMatcher struct {
	quantifier Quantifier
	tag        *TagMatcher
	occ        OccurrenceMatcher
	subfields  SubfieldMatcher
	brace      bool
}

func (m *SubfieldsMatcher) IsMatch(fields []primitives.FieldRef, o *Options) bool {
	if m.quantifier == All {
		for i := range fields {
			if !m.tag.IsMatch(fields[i].Tag) || !m.occ.IsMatch(fields[i].Occurrence) {
				continue
			}
			if !m.subfields.IsMatch(fields[i].Subfields, o) {
				return false
			}
		}
		return true
	}
	for i := range fields {
		if !m.tag.IsMatch(fields[i].Tag) || !m.occ.IsMatch(fields[i].Occurrence) {
			continue
		}
		if m.subfields.IsMatch(fields[i].Subfields, o) {
			return true
		}
	}
	return false
}

func (m *SubfieldsMatcher) String() string {
	if m.brace {
		return quantPrefix(m.quantifier) + fmt.Sprintf("%s%s{%s}", m.tag, m.occ, m.subfields)
	}
	return quantPrefix(m.quantifier) + fmt.Sprintf("%s%s.%s", m.tag, m.occ, m.subfields)
}

// FieldCardinalityMatcher relates the number of matching fields to a
// number ("#003@ == 1", "#010@{a == 'ger'} > 1").
type FieldCardinalityMatcher struct {
	tag       *TagMatcher
	occ       OccurrenceMatcher
	subfields SubfieldMatcher
	op        RelationalOp
	value     int
}

func (m *FieldCardinalityMatcher) IsMatch(fields []primitives.FieldRef, o *Options) bool {
	count := 0
	for i := range fields {
		if !m.tag.IsMatch(fields[i].Tag) || !m.occ.IsMatch(fields[i].Occurrence) {
			continue
		}
		if m.subfields != nil && !m.subfields.IsMatch(fields[i].Subfields, o) {
			continue
		}
		count++
	}
	return m.op.compareCount(count, m.value)
}

func (m *FieldCardinalityMatcher) String() string {
	if m.subfields != nil {
		return fmt.Sprintf("#%s%s{%s} %s %d", m.tag, m.occ, m.subfields, m.op, m.value)
	}
	return fmt.Sprintf("#%s%s %s %d", m.tag, m.occ, m.op, m.value)
}

type fieldNotMatcher struct {
	inner FieldMatcher
}

func (m *fieldNotMatcher) IsMatch(fields []primitives.FieldRef, o *Options) bool {
	return !m.inner.IsMatch(fields, o)
}

func (m *fieldNotMatcher) String() string {
	return "!" + m.inner.String()
}

type fieldGroupMatcher struct {
	inner FieldMatcher
}

func (m *fieldGroupMatcher) IsMatch(fields []primitives.FieldRef, o *Options) bool {
	return m.inner.IsMatch(fields, o)
}

func (m *fieldGroupMatcher) String() string {
	return "(" + m.inner.String() + ")"
}

type fieldCompositeMatcher struct {
	lhs, rhs FieldMatcher
	op       BooleanOp
}

func (m *fieldCompositeMatcher) IsMatch(fields []primitives.FieldRef, o *Options) bool {
	lhs := m.lhs.IsMatch(fields, o)
	switch m.op {
	case BoolAnd:
		return lhs && m.rhs.IsMatch(fields, o)
	case BoolOr:
		return lhs || m.rhs.IsMatch(fields, o)
	default:
		return lhs != m.rhs.IsMatch(fields, o)
	}
}

func (m *fieldCompositeMatcher) String() string {
	return fmt.Sprintf("%s %s %s", m.lhs, m.op, m.rhs)
}

// maxGroupDepth bounds parenthesis nesting so malicious expressions
// cannot exhaust the stack.
const maxGroupDepth = 256

// ParseFieldMatcher parses a field matcher with the precedence chain
// ! > && > XOR > ||.
func (p *Parser) ParseFieldMatcher() (FieldMatcher, error) {
	return p.parseFieldOr(0)
}

func (p *Parser) parseFieldOr(depth int) (FieldMatcher, error) {
	lhs, err := p.parseFieldXor(depth)
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("||") {
			return lhs, nil
		}
		rhs, err := p.parseFieldXor(depth)
		if err != nil {
			return nil, err
		}
		lhs = &fieldCompositeMatcher{lhs: lhs, rhs: rhs, op: BoolOr}
	}
}

func (p *Parser) parseFieldXor(depth int) (FieldMatcher, error) {
	lhs, err := p.parseFieldAnd(depth)
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("XOR") && !p.Eat('^') {
			return lhs, nil
		}
		rhs, err := p.parseFieldAnd(depth)
		if err != nil {
			return nil, err
		}
		lhs = &fieldCompositeMatcher{lhs: lhs, rhs: rhs, op: BoolXor}
	}
}

func (p *Parser) parseFieldAnd(depth int) (FieldMatcher, error) {
	lhs, err := p.parseFieldUnary(depth)
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("&&") {
			return lhs, nil
		}
		rhs, err := p.parseFieldUnary(depth)
		if err != nil {
			return nil, err
		}
		lhs = &fieldCompositeMatcher{lhs: lhs, rhs: rhs, op: BoolAnd}
	}
}

func (p *Parser) parseFieldUnary(depth int) (FieldMatcher, error) {
	p.SkipWS()
	if p.Eat('!') {
		inner, err := p.parseFieldUnary(depth)
		if err != nil {
			return nil, err
		}
		return &fieldNotMatcher{inner: inner}, nil
	}
	if p.Eat('(') {
		if depth >= maxGroupDepth {
			return nil, p.Errf("expression nested too deeply")
		}
		inner, err := p.parseFieldOr(depth + 1)
		if err != nil {
			return nil, err
		}
		p.SkipWS()
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return &fieldGroupMatcher{inner: inner}, nil
	}
	return p.parseFieldAtom()
}

func (p *Parser) parseFieldAtom() (FieldMatcher, error) {
	p.SkipWS()

	if p.peek() == '#' {
		return p.parseFieldCardinality()
	}

	quantifier := p.parseQuantifier()

	tag, err := p.ParseTagMatcher()
	if err != nil {
		return nil, err
	}
	occ, err := p.ParseOccurrenceMatcher()
	if err != nil {
		return nil, err
	}

	switch {
	case p.Eat('?'):
		return &FieldExistsMatcher{tag: tag, occ: occ}, nil
	case p.Eat('.'):
		sub, err := p.ParseSubfieldSingleton()
		if err != nil {
			return nil, err
		}
		return &SubfieldsMatcher{quantifier: quantifier, tag: tag, occ: occ, subfields: sub}, nil
	case p.Eat('{'):
		sub, err := p.ParseSubfieldMatcher()
		if err != nil {
			return nil, err
		}
		p.SkipWS()
		if err := p.Expect('}'); err != nil {
			return nil, err
		}
		return &SubfieldsMatcher{quantifier: quantifier, tag: tag, occ: occ, subfields: sub, brace: true}, nil
	default:
		return nil, p.Errf("expected '?', '.' or '{' after tag")
	}
}

func (p *Parser) parseFieldCardinality() (FieldMatcher, error) {
	if err := p.Expect('#'); err != nil {
		return nil, err
	}
	p.SkipWS()

	tag, err := p.ParseTagMatcher()
	if err != nil {
		return nil, err
	}
	occ, err := p.ParseOccurrenceMatcher()
	if err != nil {
		return nil, err
	}

	var sub SubfieldMatcher
	p.SkipWS()
	if p.Eat('{') {
		sub, err = p.ParseSubfieldMatcher()
		if err != nil {
			return nil, err
		}
		p.SkipWS()
		if err := p.Expect('}'); err != nil {
			return nil, err
		}
	}

	p.SkipWS()
	op, err := p.parseRelationalOp()
	if err != nil {
		return nil, err
	}
	if !op.numericApplicable() {
		return nil, p.Errf("operator %s not applicable to cardinalities", op)
	}

	p.SkipWS()
	value, err := p.parseNumber()
	if err != nil {
		return nil, err
	}

	return &FieldCardinalityMatcher{tag: tag, occ: occ, subfields: sub, op: op, value: value}, nil
}
