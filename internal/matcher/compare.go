package matcher

import (
	"bytes"
	"log/slog"

	"github.com/xrash/smetrics"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// prepare applies the normalization form and case folding from o to a
// comparison operand. It reports false when normalization is requested
// and the operand is not valid UTF-8; the caller must then treat the
// comparison as a non-match.
func prepare(v []byte, o *Options) ([]byte, bool) {
	if o.Normalization != translit.None {
		normalized, ok := o.Normalization.NormalizeBytes(v)
		if !ok {
			slog.Debug("comparison on invalid UTF-8 treated as non-match")
			return nil, false
		}
		v = normalized
	}
	if o.CaseIgnore {
		v = translit.Fold(v)
	}
	return v, true
}

func compareEqual(value, literal []byte, o *Options) bool {
	value, ok := prepare(value, o)
	if !ok {
		return false
	}
	literal, ok = prepare(literal, o)
	if !ok {
		return false
	}
	return bytes.Equal(value, literal)
}

func compareStartsWith(value, literal []byte, o *Options, invert bool) bool {
	value, ok := prepare(value, o)
	if !ok {
		return false
	}
	literal, ok = prepare(literal, o)
	if !ok {
		return false
	}
	result := bytes.HasPrefix(value, literal)
	if invert {
		result = !result
	}
	return result
}

func compareEndsWith(value, literal []byte, o *Options, invert bool) bool {
	value, ok := prepare(value, o)
	if !ok {
		return false
	}
	literal, ok = prepare(literal, o)
	if !ok {
		return false
	}
	result := bytes.HasSuffix(value, literal)
	if invert {
		result = !result
	}
	return result
}

func compareContains(value, literal []byte, o *Options) bool {
	value, ok := prepare(value, o)
	if !ok {
		return false
	}
	literal, ok = prepare(literal, o)
	if !ok {
		return false
	}
	return bytes.Contains(value, literal)
}

// compareSimilar reports whether the Jaro-Winkler similarity of the two
// operands reaches the configured threshold.
func compareSimilar(value, literal []byte, o *Options) bool {
	value, ok := prepare(value, o)
	if !ok {
		return false
	}
	literal, ok = prepare(literal, o)
	if !ok {
		return false
	}

	threshold := o.StrSimThreshold
	if threshold == 0 {
		threshold = DefaultStrSimThreshold
	}
	return smetrics.JaroWinkler(string(value), string(literal), 0.7, 4) >= threshold
}
