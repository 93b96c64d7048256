package matcher

import (
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// RecordMatcher is the top-level predicate over a record. It wraps a
// field matcher and adds post-parse composition used by the CLI
// (--and, --or, --not).
type RecordMatcher struct {
	inner FieldMatcher
}

// NewRecordMatcher parses a record matcher expression.
func NewRecordMatcher(expr string) (*RecordMatcher, error) {
	p := NewParser([]byte(expr))
	inner, err := p.ParseFieldMatcher()
	if err == nil {
		err = p.Finish()
	}
	if err != nil {
		return nil, WithExpr(expr, err)
	}
	return &RecordMatcher{inner: inner}, nil
}

// IsMatch evaluates the matcher against a record.
func (m *RecordMatcher) IsMatch(rec *primitives.RecordRef, o *Options) bool {
	return m.inner.IsMatch(rec.Fields(), o)
}

func (m *RecordMatcher) String() string {
	return m.inner.String()
}

// And returns the conjunction of m and rhs.
func (m *RecordMatcher) And(rhs *RecordMatcher) *RecordMatcher {
	return &RecordMatcher{inner: &fieldCompositeMatcher{
		lhs: groupIfComposite(m.inner), rhs: groupIfComposite(rhs.inner), op: BoolAnd,
	}}
}

// Or returns the disjunction of m and rhs.
func (m *RecordMatcher) Or(rhs *RecordMatcher) *RecordMatcher {
	return &RecordMatcher{inner: &fieldCompositeMatcher{
		lhs: groupIfComposite(m.inner), rhs: groupIfComposite(rhs.inner), op: BoolOr,
	}}
}

// Xor returns the exclusive disjunction of m and rhs.
func (m *RecordMatcher) Xor(rhs *RecordMatcher) *RecordMatcher {
	return &RecordMatcher{inner: &fieldCompositeMatcher{
		lhs: groupIfComposite(m.inner), rhs: groupIfComposite(rhs.inner), op: BoolXor,
	}}
}

// Not returns the negation of m.
func (m *RecordMatcher) Not() *RecordMatcher {
	return &RecordMatcher{inner: &fieldNotMatcher{inner: groupIfComposite(m.inner)}}
}

// groupIfComposite wraps composite operands in a group so composition
// keeps the operands' own precedence intact.
func groupIfComposite(m FieldMatcher) FieldMatcher {
	if _, ok := m.(*fieldCompositeMatcher); ok {
		return &fieldGroupMatcher{inner: m}
	}
	return m
}
