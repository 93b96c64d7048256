package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// SubfieldMatcher is a predicate over the subfields of one field. All
// node kinds are peers: the atomic matchers below plus grouping,
// negation and boolean composition.
type SubfieldMatcher interface {
	// IsMatch evaluates the matcher against a list of subfields.
	IsMatch(subfields []primitives.SubfieldRef, o *Options) bool
	String() string
}

// ExistsMatcher is true if at least one subfield carries a code from
// its code list ("0?", "[a-c]?", "*?").
type ExistsMatcher struct {
	codes CodeSelector
}

func (m *ExistsMatcher) IsMatch(subfields []primitives.SubfieldRef, _ *Options) bool {
	for i := range subfields {
		if m.codes.Has(subfields[i].Code) {
			return true
		}
	}
	return false
}

func (m *ExistsMatcher) String() string {
	return m.codes.String() + "?"
}

// RelationMatcher relates subfield values to a literal with one of the
// string operators (==, !=, =^, !^, =$, !$, =?, =*).
type RelationMatcher struct {
	quantifier Quantifier
	codes      CodeSelector
	op         RelationalOp
	value      []byte
}

func (m *RelationMatcher) check(value []byte, o *Options) bool {
	switch m.op {
	case OpEqual:
		return compareEqual(value, m.value, o)
	case OpNotEqual:
		if _, ok := prepare(value, o); !ok {
			return false
		}
		if _, ok := prepare(m.value, o); !ok {
			return false
		}
		return !compareEqual(value, m.value, o)
	case OpStartsWith:
		return compareStartsWith(value, m.value, o, false)
	case OpStartsNotWith:
		return compareStartsWith(value, m.value, o, true)
	case OpEndsWith:
		return compareEndsWith(value, m.value, o, false)
	case OpEndsNotWith:
		return compareEndsWith(value, m.value, o, true)
	case OpContains:
		return compareContains(value, m.value, o)
	default:
		return compareSimilar(value, m.value, o)
	}
}

func (m *RelationMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	return quantify(m.quantifier, subfields, m.codes, func(s *primitives.SubfieldRef) bool {
		return m.check(s.Value, o)
	})
}

func (m *RelationMatcher) String() string {
	return quantPrefix(m.quantifier) + fmt.Sprintf("%s %s '%s'", m.codes, m.op, m.value)
}

// ContainsListMatcher is the list form of =? : true if a value contains
// any of the literals as a substring.
type ContainsListMatcher struct {
	quantifier Quantifier
	codes      CodeSelector
	values     [][]byte
}

func (m *ContainsListMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	return quantify(m.quantifier, subfields, m.codes, func(s *primitives.SubfieldRef) bool {
		for _, v := range m.values {
			if compareContains(s.Value, v, o) {
				return true
			}
		}
		return false
	})
}

func (m *ContainsListMatcher) String() string {
	return quantPrefix(m.quantifier) + fmt.Sprintf("%s =? %s", m.codes, literalList(m.values))
}

// RegexMatcher matches subfield values against one or more regular
// expressions ("0 =~ '^Tp'", "0 !~ ['^Ts', '^Tu']"). A set is an OR
// over its patterns. Patterns are compiled at parse time in both a
// case-sensitive and a case-insensitive variant so evaluation cannot
// fail.
type RegexMatcher struct {
	quantifier Quantifier
	codes      CodeSelector
	patterns   []string
	invert     bool
	set        bool
	regexes    []*regexp.Regexp
	regexesCI  []*regexp.Regexp
}

func newRegexMatcher(q Quantifier, codes CodeSelector, patterns []string, invert, set bool) (*RegexMatcher, error) {
	m := &RegexMatcher{
		quantifier: q,
		codes:      codes,
		patterns:   patterns,
		invert:     invert,
		set:        set,
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		reCI, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, err
		}
		m.regexes = append(m.regexes, re)
		m.regexesCI = append(m.regexesCI, reCI)
	}
	return m, nil
}

func (m *RegexMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	regexes := m.regexes
	if o.CaseIgnore {
		regexes = m.regexesCI
	}

	return quantify(m.quantifier, subfields, m.codes, func(s *primitives.SubfieldRef) bool {
		value := s.Value
		if o.Normalization != translit.None {
			normalized, ok := o.Normalization.NormalizeBytes(value)
			if !ok {
				return false
			}
			value = normalized
		}

		matched := false
		for _, re := range regexes {
			if re.Match(value) {
				matched = true
				break
			}
		}
		if m.invert {
			matched = !matched
		}
		return matched
	})
}

func (m *RegexMatcher) String() string {
	op := "=~"
	if m.invert {
		op = "!~"
	}
	if m.set {
		quoted := make([][]byte, len(m.patterns))
		for i, pattern := range m.patterns {
			quoted[i] = []byte(pattern)
		}
		return quantPrefix(m.quantifier) + fmt.Sprintf("%s %s %s", m.codes, op, literalList(quoted))
	}
	return quantPrefix(m.quantifier) + fmt.Sprintf("%s %s '%s'", m.codes, op, m.patterns[0])
}

// InMatcher checks membership of a subfield value in a literal list
// ("0 in ['Tp1', 'Tpz']", "0 not in [...]").
type InMatcher struct {
	quantifier Quantifier
	codes      CodeSelector
	values     [][]byte
	invert     bool
}

func (m *InMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	return quantify(m.quantifier, subfields, m.codes, func(s *primitives.SubfieldRef) bool {
		if _, ok := prepare(s.Value, o); !ok {
			return false
		}
		result := false
		for _, v := range m.values {
			if _, ok := prepare(v, o); !ok {
				return false
			}
			if compareEqual(s.Value, v, o) {
				result = true
				break
			}
		}
		if m.invert {
			result = !result
		}
		return result
	})
}

func (m *InMatcher) String() string {
	op := "in"
	if m.invert {
		op = "not in"
	}
	return quantPrefix(m.quantifier) + fmt.Sprintf("%s %s %s", m.codes, op, literalList(m.values))
}

// CardinalityMatcher relates the number of subfields with a given code
// to a number ("#a > 1").
type CardinalityMatcher struct {
	code  primitives.SubfieldCode
	op    RelationalOp
	value int
}

func (m *CardinalityMatcher) IsMatch(subfields []primitives.SubfieldRef, _ *Options) bool {
	count := 0
	for i := range subfields {
		if subfields[i].Code == m.code {
			count++
		}
	}
	return m.op.compareCount(count, m.value)
}

func (m *CardinalityMatcher) String() string {
	return fmt.Sprintf("#%s %s %d", m.code, m.op, m.value)
}

// notMatcher negates its operand.
type notMatcher struct {
	inner SubfieldMatcher
}

func (m *notMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	return !m.inner.IsMatch(subfields, o)
}

func (m *notMatcher) String() string {
	return "!" + m.inner.String()
}

// groupMatcher is a parenthesized operand.
type groupMatcher struct {
	inner SubfieldMatcher
}

func (m *groupMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	return m.inner.IsMatch(subfields, o)
}

func (m *groupMatcher) String() string {
	return "(" + m.inner.String() + ")"
}

// compositeMatcher connects two operands with a boolean operator;
// evaluation short-circuits left to right.
type compositeMatcher struct {
	lhs, rhs SubfieldMatcher
	op       BooleanOp
}

func (m *compositeMatcher) IsMatch(subfields []primitives.SubfieldRef, o *Options) bool {
	lhs := m.lhs.IsMatch(subfields, o)
	switch m.op {
	case BoolAnd:
		return lhs && m.rhs.IsMatch(subfields, o)
	case BoolOr:
		return lhs || m.rhs.IsMatch(subfields, o)
	default:
		return lhs != m.rhs.IsMatch(subfields, o)
	}
}

func (m *compositeMatcher) String() string {
	return fmt.Sprintf("%s %s %s", m.lhs, m.op, m.rhs)
}

func quantify(q Quantifier, subfields []primitives.SubfieldRef, codes CodeSelector, check func(*primitives.SubfieldRef) bool) bool {
	if q == All {
		for i := range subfields {
			if !codes.Has(subfields[i].Code) {
				continue
			}
			if !check(&subfields[i]) {
				return false
			}
		}
		return true
	}
	for i := range subfields {
		if !codes.Has(subfields[i].Code) {
			continue
		}
		if check(&subfields[i]) {
			return true
		}
	}
	return false
}

func quantPrefix(q Quantifier) string {
	if q == All {
		return "ALL "
	}
	return ""
}

func literalList(values [][]byte) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + string(v) + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewSubfieldMatcher parses a subfield matcher expression.
func NewSubfieldMatcher(expr string) (SubfieldMatcher, error) {
	p := NewParser([]byte(expr))
	m, err := p.ParseSubfieldMatcher()
	if err == nil {
		err = p.Finish()
	}
	if err != nil {
		return nil, WithExpr(expr, err)
	}
	return m, nil
}

// ParseSubfieldMatcher parses a subfield matcher with the precedence
// chain ! > && > XOR > ||.
func (p *Parser) ParseSubfieldMatcher() (SubfieldMatcher, error) {
	return p.parseSubfieldOr()
}

func (p *Parser) parseSubfieldOr() (SubfieldMatcher, error) {
	lhs, err := p.parseSubfieldXor()
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("||") {
			return lhs, nil
		}
		rhs, err := p.parseSubfieldXor()
		if err != nil {
			return nil, err
		}
		lhs = &compositeMatcher{lhs: lhs, rhs: rhs, op: BoolOr}
	}
}

func (p *Parser) parseSubfieldXor() (SubfieldMatcher, error) {
	lhs, err := p.parseSubfieldAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("XOR") && !p.Eat('^') {
			return lhs, nil
		}
		rhs, err := p.parseSubfieldAnd()
		if err != nil {
			return nil, err
		}
		lhs = &compositeMatcher{lhs: lhs, rhs: rhs, op: BoolXor}
	}
}

func (p *Parser) parseSubfieldAnd() (SubfieldMatcher, error) {
	lhs, err := p.parseSubfieldUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.SkipWS()
		if !p.eatString("&&") {
			return lhs, nil
		}
		rhs, err := p.parseSubfieldUnary()
		if err != nil {
			return nil, err
		}
		lhs = &compositeMatcher{lhs: lhs, rhs: rhs, op: BoolAnd}
	}
}

func (p *Parser) parseSubfieldUnary() (SubfieldMatcher, error) {
	p.SkipWS()
	if p.Eat('!') {
		inner, err := p.parseSubfieldUnary()
		if err != nil {
			return nil, err
		}
		return &notMatcher{inner: inner}, nil
	}
	if p.Eat('(') {
		inner, err := p.parseSubfieldOr()
		if err != nil {
			return nil, err
		}
		p.SkipWS()
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return &groupMatcher{inner: inner}, nil
	}
	return p.ParseSubfieldSingleton()
}

// ParseSubfieldSingleton parses one atomic subfield matcher: a
// cardinality, exists, in, regex or relation matcher.
func (p *Parser) ParseSubfieldSingleton() (SubfieldMatcher, error) {
	p.SkipWS()

	if p.peek() == '#' {
		return p.parseSubfieldCardinality()
	}

	quantifier := p.parseQuantifier()

	codes, err := p.ParseCodeSelector()
	if err != nil {
		return nil, err
	}

	if p.Eat('?') {
		return &ExistsMatcher{codes: codes}, nil
	}

	p.SkipWS()

	// Membership: "in" / "not in".
	save := p.pos
	invert := p.eatString("not")
	if invert {
		p.SkipWS()
	}
	if p.eatString("in") {
		values, err := p.parseStringList()
		if err != nil {
			return nil, err
		}
		return &InMatcher{quantifier: quantifier, codes: codes, values: values, invert: invert}, nil
	}
	p.pos = save

	// Regex: "=~" / "!~" with a single pattern or a pattern set.
	if p.eatString("=~") || p.eatString("!~") {
		regexInvert := p.in[p.pos-2] == '!'
		p.SkipWS()
		patterns, set, err := p.parsePatterns()
		if err != nil {
			return nil, err
		}
		m, err := newRegexMatcher(quantifier, codes, patterns, regexInvert, set)
		if err != nil {
			return nil, p.Errf("invalid regex: %v", err)
		}
		return m, nil
	}

	op, err := p.parseRelationalOp()
	if err != nil {
		return nil, err
	}
	if op.numericApplicable() && op != OpEqual && op != OpNotEqual {
		return nil, p.Errf("operator %s requires a cardinality expression", op)
	}

	p.SkipWS()
	if op == OpContains && p.peek() == '[' {
		values, err := p.parseStringList()
		if err != nil {
			return nil, err
		}
		return &ContainsListMatcher{quantifier: quantifier, codes: codes, values: values}, nil
	}

	value, err := p.parseString()
	if err != nil {
		return nil, err
	}
	return &RelationMatcher{quantifier: quantifier, codes: codes, op: op, value: value}, nil
}

func (p *Parser) parsePatterns() ([]string, bool, error) {
	if p.peek() == '[' {
		values, err := p.parseStringList()
		if err != nil {
			return nil, false, err
		}
		patterns := make([]string, len(values))
		for i, v := range values {
			patterns[i] = string(v)
		}
		return patterns, true, nil
	}

	value, err := p.parseString()
	if err != nil {
		return nil, false, err
	}
	return []string{string(value)}, false, nil
}

func (p *Parser) parseSubfieldCardinality() (SubfieldMatcher, error) {
	if err := p.Expect('#'); err != nil {
		return nil, err
	}
	p.SkipWS()

	code, err := p.parseSubfieldCode()
	if err != nil {
		return nil, err
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

	return &CardinalityMatcher{code: code, op: op, value: value}, nil
}
