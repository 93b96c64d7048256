package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurrenceMatcher(t *testing.T) {
	tests := []struct {
		expr    string
		matches []string // "" means absent occurrence
		misses  []string
	}{
		{"", []string{"", "00"}, []string{"01"}},
		{"/00", []string{"", "00"}, []string{"01"}},
		{"/*", []string{"", "00", "01", "001"}, nil},
		{"/01", []string{"01"}, []string{"", "02"}},
		{"/001", []string{"001"}, []string{"01"}},
		{"/01-03", []string{"01", "02", "03"}, []string{"", "04", "00"}},
	}

	for _, tt := range tests {
		t.Run("expr="+tt.expr, func(t *testing.T) {
			m, err := NewOccurrenceMatcher(tt.expr)
			require.NoError(t, err)

			for _, occ := range tt.matches {
				var b []byte
				if occ != "" {
					b = []byte(occ)
				}
				assert.True(t, m.IsMatch(b), occ)
			}
			for _, occ := range tt.misses {
				var b []byte
				if occ != "" {
					b = []byte(occ)
				}
				assert.False(t, m.IsMatch(b), occ)
			}
		})
	}
}

func TestOccurrenceMatcherErrors(t *testing.T) {
	for _, bad := range []string{"/", "/1", "/0001", "/03-01", "/01-001", "/1-3"} {
		_, err := NewOccurrenceMatcher(bad)
		assert.Error(t, err, bad)
	}
}
