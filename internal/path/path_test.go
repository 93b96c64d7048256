package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/matcher"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

func record(t *testing.T, line string) *primitives.RecordRef {
	t.Helper()
	rec, err := primitives.Decode([]byte(line))
	require.NoError(t, err)
	return rec
}

func values(t *testing.T, expr, line string) []string {
	t.Helper()
	p, err := New(expr)
	require.NoError(t, err)

	options := matcher.NewOptions()
	var out []string
	for _, v := range p.Values(record(t, line), &options) {
		out = append(out, string(v))
	}
	return out
}

func TestPathValues(t *testing.T) {
	tests := []struct {
		expr string
		line string
		want []string
	}{
		{"003@.0", "003@ \x1f0123456789X\x1e\n", []string{"123456789X"}},
		{"003@.0", "002@ \x1f0Tp1\x1e\n", nil},

		// repeated subfields and fields, document order
		{
			"012A.a",
			"012A \x1fa123\x1fa456\x1e012A \x1fa789\x1e\n",
			[]string{"123", "456", "789"},
		},

		// occurrence handling
		{"041A/*.9", "041A/01 \x1f9a\x1f9b\x1e041A/02 \x1f9c\x1f9d\x1e\n", []string{"a", "b", "c", "d"}},
		{"041A/01.9", "041A/01 \x1f9a\x1e041A/02 \x1f9b\x1e\n", []string{"a"}},
		{"041A/01-02.9", "041A/01 \x1f9a\x1e041A/02 \x1f9b\x1e041A/03 \x1f9c\x1e\n", []string{"a", "b"}},
		{"041A.9", "041A/01 \x1f9a\x1e\n", nil},

		// code sets and ranges
		{"012A.[ab]", "012A \x1fax\x1fby\x1fcz\x1e\n", []string{"x", "y"}},
		{"012A.[a-c]", "012A \x1fax\x1fby\x1fcz\x1fdq\x1e\n", []string{"x", "y", "z"}},
		{"012A.*", "012A \x1fax\x1fby\x1e\n", []string{"x", "y"}},

		// tag patterns
		{"0[12]3A.a", "013A \x1fax\x1e023A \x1fay\x1e\n", []string{"x", "y"}},

		// brace form with embedded matcher
		{
			"045E{e | E == 'm'}",
			"045E \x1fEm\x1fea\x1e045E \x1fEn\x1feb\x1e\n",
			[]string{"a"},
		},
		{
			"041A{9 | 4 == 'aut'}",
			"041A \x1f4aut\x1f9x\x1e041A \x1f4edt\x1f9y\x1e\n",
			[]string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, values(t, tt.expr, tt.line))
		})
	}
}

func TestPathRestartable(t *testing.T) {
	p, err := New("041A/*.9")
	require.NoError(t, err)

	rec := record(t, "041A/01 \x1f9a\x1f9b\x1e041A/02 \x1f9c\x1e\n")
	options := matcher.NewOptions()

	first := p.Values(rec, &options)
	second := p.Values(rec, &options)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestPathPerSelector(t *testing.T) {
	p, err := New("041A{ (a, 9) | 4 == 'aut' }")
	require.NoError(t, err)
	require.Len(t, p.Codes(), 2)

	rec := record(t, "041A \x1f4aut\x1fax\x1f9u\x1f9v\x1e041A \x1f4edt\x1fay\x1e\n")
	options := matcher.NewOptions()

	groups := p.PerSelector(rec, &options)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
	assert.Equal(t, [][]byte{[]byte("x")}, groups[0][0])
	assert.Equal(t, [][]byte{[]byte("u"), []byte("v")}, groups[0][1])
}

func TestPathParseErrors(t *testing.T) {
	for _, bad := range []string{
		"",
		"003@",
		"003@.",
		"003@.!",
		"303@.0",
		"003@/0.0",
		"003@{}",
		"003@{0",
		"003@{0 | }",
		"003@.0 extra",
	} {
		_, err := New(bad)
		assert.Error(t, err, bad)
	}
}

func TestPathString(t *testing.T) {
	for _, expr := range []string{"003@.0", "041A/*.9", "012A.[a-c]"} {
		p, err := New(expr)
		require.NoError(t, err)
		assert.Equal(t, expr, p.String())
	}
}
