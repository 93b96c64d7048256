package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

func record(t *testing.T, line string) *primitives.RecordRef {
	t.Helper()
	rec, err := primitives.Decode([]byte(line))
	require.NoError(t, err)
	return rec
}

func eval(t *testing.T, expr, line string) Outcome {
	t.Helper()
	q, err := New(expr)
	require.NoError(t, err)
	options := NewOptions()
	return q.Eval(record(t, line), &options)
}

func TestQueryEvalSimple(t *testing.T) {
	out := eval(t, "003@.0", "003@ \x1f01234\x1e\n")
	assert.Equal(t, Outcome{{"1234"}}, out)
}

func TestQueryEvalLiteral(t *testing.T) {
	out := eval(t, "003@.0, 'const'", "003@ \x1f01234\x1e\n")
	assert.Equal(t, Outcome{{"1234", "const"}}, out)
}

func TestQueryEvalTupleWithMissingCell(t *testing.T) {
	out := eval(t, "003@.0, 012A{(a,b) | a == 'abc'}", "003@ \x1f01234\x1e012A \x1faabc\x1e\n")
	assert.Equal(t, Outcome{{"1234", "abc", ""}}, out)
}

func TestQueryEvalCartesianProduct(t *testing.T) {
	// One 003@ with PPN P; two matching 041A fields: the first yields
	// one (a,9) row, the second two rows via its repeated 9.
	line := "003@ \x1f0P\x1e041A \x1f4aut\x1fax\x1f9u\x1e041A \x1f4aut\x1fay\x1f9v\x1f9w\x1e\n"
	out := eval(t, "003@.0, 041A{(a, 9) | 4 == 'aut'}", line)

	assert.Equal(t, Outcome{
		{"P", "x", "u"},
		{"P", "y", "v"},
		{"P", "y", "w"},
	}, out)
}

func TestQueryEvalProductSize(t *testing.T) {
	// |rows| == product of per-selector sequence lengths.
	line := "012A \x1fax\x1fay\x1e013A \x1fbu\x1fbv\x1fbw\x1e\n"
	out := eval(t, "012A.a, 013A.b", line)
	assert.Len(t, out, 6)
}

func TestQueryEvalNoMatchYieldsEmptyRow(t *testing.T) {
	out := eval(t, "003@.0, 012A.a", "003@ \x1f01234\x1e\n")
	assert.Equal(t, Outcome{{"1234", ""}}, out)
}

func TestQueryEvalSquash(t *testing.T) {
	q, err := New("003@.0, 012A.a")
	require.NoError(t, err)

	options := NewOptions()
	options.Squash = true

	rec := record(t, "003@ \x1f01234\x1e012A \x1fax\x1fay\x1e\n")
	assert.Equal(t, Outcome{{"1234", "x|y"}}, q.Eval(rec, &options))
}

func TestQueryEvalMerge(t *testing.T) {
	q, err := New("003@.0, 012A.a")
	require.NoError(t, err)

	options := NewOptions()
	options.Merge = true

	rec := record(t, "003@ \x1f01234\x1e012A \x1fax\x1e012A \x1fay\x1e\n")
	assert.Equal(t, Outcome{{"1234", "x|y"}}, q.Eval(rec, &options))
}

func TestQueryEvalSeparator(t *testing.T) {
	q, err := New("012A.a")
	require.NoError(t, err)

	options := NewOptions()
	options.Squash = true
	options.Separator = ";"

	rec := record(t, "012A \x1fax\x1fay\x1e\n")
	assert.Equal(t, Outcome{{"x;y"}}, q.Eval(rec, &options))
}

func TestQueryWidth(t *testing.T) {
	q, err := New("003@.0, 'lit', 012A{(a, b, c)}")
	require.NoError(t, err)
	assert.Equal(t, 5, q.Width())
}

func TestQueryParseErrors(t *testing.T) {
	for _, bad := range []string{
		"",
		",",
		"003@.0,",
		"003@",
		"'unterminated",
		"003@.0 012A.a",
	} {
		_, err := New(bad)
		assert.Error(t, err, bad)
	}
}
