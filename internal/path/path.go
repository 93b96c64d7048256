// Package path implements the path expression DSL that addresses
// subfield values within a record.
//
// A path selects fields by tag pattern and occurrence, optionally
// filters them with an embedded subfield matcher, and emits the values
// of the selected subfield codes in document order:
//
//	003@.0
//	012A/01-03.[abc]
//	041A/*{ (a, 9) | 4 == 'aut' }
package path

import (
	"strings"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/matcher"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// Path addresses zero or more subfield values within a record.
type Path struct {
	tag       *matcher.TagMatcher
	occ       matcher.OccurrenceMatcher
	subfields matcher.SubfieldMatcher // optional field filter
	codes     []matcher.CodeSelector
	raw       string
}

// New parses a path expression.
func New(expr string) (*Path, error) {
	p := matcher.NewParser([]byte(expr))
	path, err := Parse(p)
	if err == nil {
		err = p.Finish()
	}
	if err != nil {
		return nil, matcher.WithExpr(expr, err)
	}
	return path, nil
}

// Parse parses a path from the current position of p. The selection
// grammar embeds paths, so parsing must be resumable mid-expression.
func Parse(p *matcher.Parser) (*Path, error) {
	start := p.Pos()

	tag, err := p.ParseTagMatcher()
	if err != nil {
		return nil, err
	}
	occ, err := p.ParseOccurrenceMatcher()
	if err != nil {
		return nil, err
	}

	path := &Path{tag: tag, occ: occ}

	switch {
	case p.Eat('.'):
		codes, err := p.ParseCodeSelector()
		if err != nil {
			return nil, err
		}
		path.codes = []matcher.CodeSelector{codes}
	case p.Eat('{'):
		if err := parseBraceBody(p, path); err != nil {
			return nil, err
		}
	default:
		return nil, p.Errf("expected '.' or '{' after tag")
	}

	path.raw = strings.TrimSpace(string(p.Input()[start:p.Pos()]))
	return path, nil
}

// parseBraceBody parses "{ codes, ... | matcher? }" with the code list
// optionally parenthesized as a tuple.
func parseBraceBody(p *matcher.Parser, path *Path) error {
	p.SkipWS()

	tuple := p.Eat('(')
	for {
		p.SkipWS()
		codes, err := p.ParseCodeSelector()
		if err != nil {
			return err
		}
		path.codes = append(path.codes, codes)
		p.SkipWS()
		if p.Eat(',') {
			continue
		}
		break
	}
	if tuple {
		if err := p.Expect(')'); err != nil {
			return err
		}
		p.SkipWS()
	}

	if p.Eat('|') {
		sub, err := p.ParseSubfieldMatcher()
		if err != nil {
			return err
		}
		path.subfields = sub
		p.SkipWS()
	}

	return p.Expect('}')
}

// Codes returns the code selectors of the path, one per emitted column.
func (path *Path) Codes() []matcher.CodeSelector {
	return path.codes
}

func (path *Path) String() string {
	return path.raw
}

// matchField reports whether a field is selected by tag, occurrence and
// the embedded subfield matcher.
func (path *Path) matchField(f *primitives.FieldRef, o *matcher.Options) bool {
	if !path.tag.IsMatch(f.Tag) || !path.occ.IsMatch(f.Occurrence) {
		return false
	}
	if path.subfields != nil && !path.subfields.IsMatch(f.Subfields, o) {
		return false
	}
	return true
}

// Values evaluates the path against a record and returns all matching
// subfield values in document order, flattened over the path's code
// selectors. The result only depends on the path, the record and the
// options; two successive evaluations yield identical sequences.
func (path *Path) Values(rec *primitives.RecordRef, o *matcher.Options) [][]byte {
	var values [][]byte
	fields := rec.Fields()
	for i := range fields {
		if !path.matchField(&fields[i], o) {
			continue
		}
		for j := range fields[i].Subfields {
			sub := &fields[i].Subfields[j]
			for _, codes := range path.codes {
				if codes.Has(sub.Code) {
					values = append(values, sub.Value)
					break
				}
			}
		}
	}
	return values
}

// PerSelector evaluates the path per matching field: for every selected
// field it yields one group holding, per code selector, the values of
// the subfields with a matching code. Selector positions without values
// yield an empty list; the selection engine turns those into empty
// cells so tuple arity is preserved.
func (path *Path) PerSelector(rec *primitives.RecordRef, o *matcher.Options) [][][][]byte {
	var groups [][][][]byte
	fields := rec.Fields()
	for i := range fields {
		if !path.matchField(&fields[i], o) {
			continue
		}
		group := make([][][]byte, len(path.codes))
		for j := range fields[i].Subfields {
			sub := &fields[i].Subfields[j]
			for k, codes := range path.codes {
				if codes.Has(sub.Code) {
					group[k] = append(group[k], sub.Value)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}
