package matcher

import "github.com/deutsche-nationalbibliothek/pica-go/internal/translit"

// DefaultStrSimThreshold is the cut-off for the similar operator (`=*`)
// when no threshold is configured.
const DefaultStrSimThreshold = 0.75

// Options configures matcher evaluation. Options never become part of a
// parsed expression; the same matcher can be evaluated under different
// options.
type Options struct {
	// StrSimThreshold is the minimum Jaro-Winkler similarity for `=*`.
	StrSimThreshold float64

	// CaseIgnore lowercases both sides of every comparison using
	// Unicode case folding.
	CaseIgnore bool

	// Normalization, when set, transliterates both sides of every
	// comparison (and regex inputs) into the same Unicode normal form.
	// Values that are not valid UTF-8 then compare as non-matches.
	Normalization translit.Form
}

// NewOptions returns Options with default settings.
func NewOptions() Options {
	return Options{StrSimThreshold: DefaultStrSimThreshold}
}
