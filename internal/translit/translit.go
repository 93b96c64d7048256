// Package translit provides Unicode normalization forms and case folding
// for matcher comparisons and output transliteration.
package translit

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Form selects a Unicode normalization form. The zero value performs no
// normalization.
type Form int

const (
	None Form = iota
	NFC
	NFD
	NFKC
	NFKD
)

// ParseForm parses the CLI spelling of a normalization form ("nfc",
// "nfd", "nfkc", "nfkd").
func ParseForm(s string) (Form, error) {
	switch s {
	case "":
		return None, nil
	case "nfc":
		return NFC, nil
	case "nfd":
		return NFD, nil
	case "nfkc":
		return NFKC, nil
	case "nfkd":
		return NFKD, nil
	default:
		return None, fmt.Errorf("invalid normalization form %q", s)
	}
}

func (f Form) String() string {
	switch f {
	case NFC:
		return "nfc"
	case NFD:
		return "nfd"
	case NFKC:
		return "nfkc"
	case NFKD:
		return "nfkd"
	default:
		return ""
	}
}

func (f Form) normalizer() norm.Form {
	switch f {
	case NFC:
		return norm.NFC
	case NFD:
		return norm.NFD
	case NFKC:
		return norm.NFKC
	default:
		return norm.NFKD
	}
}

// Normalize transliterates s into the selected form. For the None form
// s is returned unchanged.
func (f Form) Normalize(s string) string {
	if f == None {
		return s
	}
	return f.normalizer().String(s)
}

// NormalizeBytes transliterates b into the selected form. It reports
// false when b is not valid UTF-8; comparisons requiring normalization
// must treat that case as a non-match.
func (f Form) NormalizeBytes(b []byte) ([]byte, bool) {
	if f == None {
		return b, true
	}
	if !utf8.Valid(b) {
		return nil, false
	}
	return f.normalizer().Bytes(b), true
}

var foldCaser = cases.Fold()

// Fold lowercases b using Unicode case folding. Bytes that are not valid
// UTF-8 are folded per ASCII rules so byte-oriented comparisons stay
// well defined.
func Fold(b []byte) []byte {
	if utf8.Valid(b) {
		return []byte(foldCaser.String(string(b)))
	}
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// FoldString is Fold over a string.
func FoldString(s string) string {
	return string(Fold([]byte(s)))
}
