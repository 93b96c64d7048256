package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

func TestTagMatcher(t *testing.T) {
	tests := []struct {
		expr    string
		matches []string
		misses  []string
	}{
		{"003@", []string{"003@"}, []string{"002@", "003A"}},
		{"041[A@]", []string{"041A", "041@"}, []string{"041B"}},
		{"00[3-5]@", []string{"003@", "004@", "005@"}, []string{"002@", "006@"}},
		{"0[14]1A", []string{"011A", "041A"}, []string{"021A"}},
		{"....", []string{"003@", "247C", "101@"}, nil},
		{"00.@", []string{"003@", "009@"}, []string{"013@"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m, err := NewTagMatcher(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, m.String())

			for _, tag := range tt.matches {
				assert.True(t, m.IsMatch(primitives.MustTag(tag)), tag)
			}
			for _, tag := range tt.misses {
				assert.False(t, m.IsMatch(primitives.MustTag(tag)), tag)
			}
		})
	}
}

func TestTagMatcherErrors(t *testing.T) {
	for _, bad := range []string{"", "30", "303@", "0a3@", "003@X", "00[5-3]@", "00[]@"} {
		_, err := NewTagMatcher(bad)
		assert.Error(t, err, bad)
	}
}
