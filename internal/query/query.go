// Package query implements the selection engine: a comma-separated list
// of selectors evaluated against a record into rows.
//
// A selector is either a quoted string literal, emitted verbatim into
// every row, or a path expression. The rows of a record are the
// Cartesian product of the per-selector value sequences, ordered
// lexicographically over the per-selector emission orders.
package query

import (
	"log/slog"
	"strings"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/matcher"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/path"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// Fragment is one selector of a query: a literal or a path.
type Fragment struct {
	Literal string // verbatim column; valid when Path is nil
	Path    *path.Path
}

// Width returns the number of columns the fragment contributes.
func (f *Fragment) Width() int {
	if f.Path == nil {
		return 1
	}
	return len(f.Path.Codes())
}

// Query is a parsed selection.
type Query struct {
	fragments []Fragment
	raw       string
}

// New parses a selection expression.
func New(expr string) (*Query, error) {
	p := matcher.NewParser([]byte(expr))
	q := &Query{raw: expr}

	for {
		p.SkipWS()
		fragment, err := parseFragment(p)
		if err != nil {
			return nil, matcher.WithExpr(expr, err)
		}
		q.fragments = append(q.fragments, fragment)
		p.SkipWS()
		if p.Eat(',') {
			continue
		}
		if err := p.Finish(); err != nil {
			return nil, matcher.WithExpr(expr, err)
		}
		return q, nil
	}
}

func parseFragment(p *matcher.Parser) (Fragment, error) {
	if b := p.Rest(); len(b) > 0 && (b[0] == '\'' || b[0] == '"') {
		literal, err := p.ParseLiteral()
		if err != nil {
			return Fragment{}, err
		}
		return Fragment{Literal: string(literal)}, nil
	}

	pth, err := path.Parse(p)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Path: pth}, nil
}

// Fragments returns the selectors of the query.
func (q *Query) Fragments() []Fragment {
	return q.fragments
}

// Width returns the total number of columns per row.
func (q *Query) Width() int {
	width := 0
	for i := range q.fragments {
		width += q.fragments[i].Width()
	}
	return width
}

func (q *Query) String() string {
	return q.raw
}

// Options configures query evaluation.
type Options struct {
	Matcher matcher.Options

	// Separator joins values under Squash and Merge (default "|").
	Separator string

	// Squash joins, per selector, all values of one field into one cell.
	Squash bool

	// Merge collapses all rows of one record into a single row.
	Merge bool
}

// NewOptions returns Options with default settings.
func NewOptions() Options {
	return Options{Matcher: matcher.NewOptions(), Separator: "|"}
}

// Outcome is the evaluation result of a query against one record: a
// list of rows, each with Width() cells.
type Outcome [][]string

// ones is the single row with n empty cells.
func ones(n int) Outcome {
	return Outcome{make([]string, n)}
}

// fromValues lifts a value list into a one-column outcome.
func fromValues(values [][]byte) Outcome {
	out := make(Outcome, len(values))
	for i, v := range values {
		out[i] = []string{string(v)}
	}
	return out
}

// add appends the rows of rhs.
func (out Outcome) add(rhs Outcome) Outcome {
	return append(out, rhs...)
}

// mul is the Cartesian product; an empty operand acts as the identity.
func (out Outcome) mul(rhs Outcome) Outcome {
	if len(out) == 0 {
		return rhs
	}
	if len(rhs) == 0 {
		return out
	}

	rows := make(Outcome, 0, len(out)*len(rhs))
	for _, x := range out {
		for _, y := range rhs {
			row := make([]string, 0, len(x)+len(y))
			row = append(row, x...)
			row = append(row, y...)
			rows = append(rows, row)
		}
	}
	return rows
}

// squash joins all values of a one-selector outcome with sep.
func (out Outcome) squash(sep string) Outcome {
	var flat []string
	for _, row := range out {
		flat = append(flat, row...)
	}

	if len(flat) > 1 && sep != "" {
		for _, item := range flat {
			if strings.Contains(item, sep) {
				slog.Warn("a value contains the squash separator", "separator", sep)
				break
			}
		}
	}

	return Outcome{[]string{strings.Join(flat, sep)}}
}

// merge collapses all rows into one by joining column-wise with sep.
func (out Outcome) merge(sep string) Outcome {
	if len(out) == 0 {
		return out
	}

	merged := make([]string, len(out[0]))
	copy(merged, out[0])
	for _, row := range out[1:] {
		for i := range merged {
			merged[i] = merged[i] + sep + row[i]
		}
	}
	return Outcome{merged}
}

// Eval evaluates the query against a record. Every selector yields an
// outcome; the record's rows are their Cartesian product. A path
// selector without matching fields contributes one all-empty row so
// that row arity is preserved.
func (q *Query) Eval(rec *primitives.RecordRef, o *Options) Outcome {
	sep := o.Separator
	if sep == "" {
		sep = "|"
	}

	var outcomes []Outcome
	for i := range q.fragments {
		fragment := &q.fragments[i]

		if fragment.Path == nil {
			outcomes = append(outcomes, Outcome{[]string{fragment.Literal}})
			continue
		}

		var outcome Outcome
		for _, group := range fragment.Path.PerSelector(rec, &o.Matcher) {
			fieldOutcome := Outcome{}
			for _, values := range group {
				var selectorOutcome Outcome
				if len(values) == 0 {
					selectorOutcome = ones(1)
				} else {
					selectorOutcome = fromValues(values)
				}
				if o.Squash {
					selectorOutcome = selectorOutcome.squash(sep)
				}
				fieldOutcome = fieldOutcome.mul(selectorOutcome)
			}
			outcome = outcome.add(fieldOutcome)
		}

		if len(outcome) == 0 {
			outcome = ones(fragment.Width())
		}
		outcomes = append(outcomes, outcome)
	}

	result := Outcome{}
	for _, outcome := range outcomes {
		if o.Merge {
			outcome = outcome.merge(sep)
		}
		result = result.mul(outcome)
	}
	return result
}
