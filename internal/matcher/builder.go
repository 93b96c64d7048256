package matcher

// Builder composes a record matcher from a base expression and the
// additional --and/--or/--not expressions supplied on the command line.
// An optional transform is applied to every expression before parsing,
// typically a Unicode normalization of the expression text.
type Builder struct {
	matcher   *RecordMatcher
	transform func(string) string
}

// NewBuilder parses the base expression. A nil transform leaves
// expressions untouched.
func NewBuilder(expr string, transform func(string) string) (*Builder, error) {
	if transform == nil {
		transform = func(s string) string { return s }
	}
	matcher, err := NewRecordMatcher(transform(expr))
	if err != nil {
		return nil, err
	}
	return &Builder{matcher: matcher, transform: transform}, nil
}

// And conjoins each expression: A && B.
func (b *Builder) And(exprs []string) (*Builder, error) {
	for _, expr := range exprs {
		rhs, err := NewRecordMatcher(b.transform(expr))
		if err != nil {
			return nil, err
		}
		b.matcher = b.matcher.And(rhs)
	}
	return b, nil
}

// Or disjoins each expression: A || B.
func (b *Builder) Or(exprs []string) (*Builder, error) {
	for _, expr := range exprs {
		rhs, err := NewRecordMatcher(b.transform(expr))
		if err != nil {
			return nil, err
		}
		b.matcher = b.matcher.Or(rhs)
	}
	return b, nil
}

// Not conjoins each negated expression: A && !B.
func (b *Builder) Not(exprs []string) (*Builder, error) {
	for _, expr := range exprs {
		rhs, err := NewRecordMatcher(b.transform(expr))
		if err != nil {
			return nil, err
		}
		b.matcher = b.matcher.And(rhs.Not())
	}
	return b, nil
}

// Build returns the composed matcher.
func (b *Builder) Build() *RecordMatcher {
	return b.matcher
}
