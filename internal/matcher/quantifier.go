package matcher

// Quantifier selects between existential and universal evaluation of a
// matcher over repeated fields or subfields. The default is Any.
type Quantifier int

const (
	// Any is true if at least one candidate satisfies the matcher.
	Any Quantifier = iota
	// All is true if every candidate satisfies the matcher; vacuously
	// true when there are none.
	All
)

func (q Quantifier) String() string {
	if q == All {
		return "ALL"
	}
	return "ANY"
}
