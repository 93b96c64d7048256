package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

func subfields(pairs ...string) []primitives.SubfieldRef {
	var out []primitives.SubfieldRef
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, primitives.SubfieldRef{
			Code:  primitives.SubfieldCode(pairs[i][0]),
			Value: []byte(pairs[i+1]),
		})
	}
	return out
}

func TestSubfieldMatcherEval(t *testing.T) {
	options := NewOptions()

	tests := []struct {
		expr string
		subs []primitives.SubfieldRef
		want bool
	}{
		// existence
		{"0?", subfields("0", "123456789X"), true},
		{"a?", subfields("0", "123456789X"), false},
		{"[a0]?", subfields("0", "x"), true},
		{"*?", subfields("z", "x"), true},

		// equality
		{"0 == '123456789X'", subfields("0", "123456789X"), true},
		{"0 == '123456789X'", subfields("0", "123456789!"), false},
		{"0 != 'abc'", subfields("0", "def"), true},
		{"0 != 'abc'", subfields("0", "abc"), false},
		// != is existential over repeats, not the negation of ==
		{"a != 'ger'", subfields("a", "ger", "a", "eng"), true},

		// prefix / suffix
		{"a =^ 'foo'", subfields("a", "foobar"), true},
		{"a =^ 'bar'", subfields("a", "foobar"), false},
		{"a !^ 'bar'", subfields("a", "foobar"), true},
		{"a =$ 'bar'", subfields("a", "foobar"), true},
		{"a !$ 'foo'", subfields("a", "foobar"), true},
		{"a !$ 'bar'", subfields("a", "foobar"), false},

		// containment
		{"a =? 'oob'", subfields("a", "foobar"), true},
		{"a =? 'xyz'", subfields("a", "foobar"), false},
		{"a =? ['xyz', 'oob']", subfields("a", "foobar"), true},
		{"a =? ['xyz', 'zyx']", subfields("a", "foobar"), false},

		// regex
		{"0 =~ '^Tp'", subfields("0", "Tp1"), true},
		{"0 =~ '^Ts'", subfields("0", "Tp1"), false},
		{"0 !~ '^Ts'", subfields("0", "Tp1"), true},
		{"0 =~ ['^Ts', '^Tp']", subfields("0", "Tp1"), true},
		{"0 !~ ['^Ts', '^Tu']", subfields("0", "Tp1"), true},
		{"0 !~ ['^Ts', '^Tp']", subfields("0", "Tp1"), false},

		// membership
		{"0 in ['Tp1', 'Tpz']", subfields("0", "Tpz"), true},
		{"0 in ['Tp1', 'Tpz']", subfields("0", "Ts1"), false},
		{"0 not in ['Tp1', 'Tpz']", subfields("0", "Ts1"), true},
		{"0 not in ['Tp1', 'Tpz']", subfields("0", "Tp1"), false},

		// similarity (Jaro-Winkler, default threshold 0.75)
		{"a =* 'Heike'", subfields("a", "Heiko"), true},
		{"a =* 'Heike'", subfields("a", "Monika"), false},

		// cardinality
		{"#a == 2", subfields("a", "x", "a", "y", "b", "z"), true},
		{"#a > 1", subfields("a", "x", "a", "y"), true},
		{"#a > 2", subfields("a", "x", "a", "y"), false},
		{"#c == 0", subfields("a", "x"), true},
		{"#a >= 1", subfields("a", "x"), true},
		{"#a <= 1", subfields("a", "x", "a", "y"), false},
		{"#a != 1", subfields("a", "x"), false},
		{"#a < 2", subfields("a", "x"), true},

		// quantifiers
		{"ALL a =^ 'f'", subfields("a", "foo", "a", "fun"), true},
		{"ALL a =^ 'f'", subfields("a", "foo", "a", "bar"), false},
		{"ALL a =^ 'f'", subfields("b", "bar"), true}, // vacuous
		{"ANY a =^ 'f'", subfields("a", "bar", "a", "fun"), true},
		{"∀ a =^ 'f'", subfields("a", "foo", "a", "bar"), false},
		{"∃ a =^ 'f'", subfields("a", "bar", "a", "fun"), true},

		// boolean composition
		{"a == 'ger' || a == 'eng'", subfields("a", "ger", "a", "eng"), true},
		{"a == 'ger' || a == 'eng'", subfields("a", "eng"), true},
		{"a == 'ger' || a == 'eng'", subfields("a", "fre"), false},
		{"a =^ 'f' && a =$ 'o'", subfields("a", "foo"), true},
		{"a =^ 'f' && a =$ 'x'", subfields("a", "foo"), false},
		{"a == 'x' ^ b == 'y'", subfields("a", "x"), true},
		{"a == 'x' XOR b == 'y'", subfields("a", "x", "b", "y"), false},
		{"!(a == 'x')", subfields("a", "y"), true},
		{"!a?", subfields("b", "y"), true},

		// precedence: && binds tighter than XOR binds tighter than ||
		{"a? || b? && c?", subfields("a", "x"), true},
		{"(a? || b?) && c?", subfields("a", "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m, err := NewSubfieldMatcher(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.IsMatch(tt.subs, &options))
		})
	}
}

func TestSubfieldMatcherCaseIgnore(t *testing.T) {
	options := NewOptions()
	options.CaseIgnore = true

	for _, expr := range []string{
		"a == 'foo'",
		"a =^ 'FO'",
		"a =$ 'Oo'",
		"a =? 'OO'",
		"a in ['FOO', 'BAR']",
		"a =~ '^foo$'",
	} {
		m, err := NewSubfieldMatcher(expr)
		require.NoError(t, err)
		assert.True(t, m.IsMatch(subfields("a", "FoO"), &options), expr)
	}
}

func TestSubfieldMatcherNormalization(t *testing.T) {
	options := NewOptions()
	options.Normalization = translit.NFC

	m, err := NewSubfieldMatcher("a == 'café'")
	require.NoError(t, err)

	// Decomposed value compares equal once both sides are NFC.
	assert.True(t, m.IsMatch(subfields("a", "café"), &options))

	// Invalid UTF-8 under an active normalization form is a non-match.
	bad := []primitives.SubfieldRef{{Code: 'a', Value: []byte{0xff, 0xfe}}}
	assert.False(t, m.IsMatch(bad, &options))

	// The same holds for the regex operators, in both polarities.
	re, err := NewSubfieldMatcher("a =~ '.*'")
	require.NoError(t, err)
	assert.False(t, re.IsMatch(bad, &options))

	notRe, err := NewSubfieldMatcher("a !~ 'x'")
	require.NoError(t, err)
	assert.False(t, notRe.IsMatch(bad, &options))
}

func TestSubfieldMatcherStrSimThreshold(t *testing.T) {
	m, err := NewSubfieldMatcher("a =* 'baz'")
	require.NoError(t, err)

	relaxed := NewOptions()
	relaxed.StrSimThreshold = 0.5
	assert.True(t, m.IsMatch(subfields("a", "bar"), &relaxed))

	strict := NewOptions()
	strict.StrSimThreshold = 0.99
	assert.False(t, m.IsMatch(subfields("a", "bar"), &strict))
}

func TestSubfieldMatcherParseErrors(t *testing.T) {
	for _, bad := range []string{
		"",
		"0 >= 'abc'",
		"0 < 'abc'",
		"0 == abc",
		"0 == 'abc",
		"0 =~ '^[ab$'",
		"0 in []",
		"#[ab] > 0",
		"#a =~ '^abc'",
		"#a > -1",
		"a == 'x' &&",
		"(a == 'x'",
		"[a1!]?",
	} {
		_, err := NewSubfieldMatcher(bad)
		assert.Error(t, err, bad)
	}
}

func TestSubfieldMatcherString(t *testing.T) {
	for _, expr := range []string{
		"a?",
		"#a >= 3",
		"0 =~ '^Tp'",
	} {
		m, err := NewSubfieldMatcher(expr)
		require.NoError(t, err)
		assert.Equal(t, expr, m.String())
	}
}

func TestBooleanLaws(t *testing.T) {
	options := NewOptions()
	fixtures := [][]primitives.SubfieldRef{
		subfields("a", "x"),
		subfields("a", "x", "b", "y"),
		subfields("b", "y"),
		subfields("c", "z"),
	}

	a, err := NewSubfieldMatcher("a == 'x'")
	require.NoError(t, err)
	b, err := NewSubfieldMatcher("b == 'y'")
	require.NoError(t, err)

	and1, err := NewSubfieldMatcher("a == 'x' && b == 'y'")
	require.NoError(t, err)
	and2, err := NewSubfieldMatcher("b == 'y' && a == 'x'")
	require.NoError(t, err)
	deMorgan1, err := NewSubfieldMatcher("!(a == 'x' && b == 'y')")
	require.NoError(t, err)
	deMorgan2, err := NewSubfieldMatcher("!(a == 'x') || !(b == 'y')")
	require.NoError(t, err)
	not, err := NewSubfieldMatcher("!(a == 'x')")
	require.NoError(t, err)

	for _, subs := range fixtures {
		assert.Equal(t, and1.IsMatch(subs, &options), and2.IsMatch(subs, &options))
		assert.Equal(t, deMorgan1.IsMatch(subs, &options), deMorgan2.IsMatch(subs, &options))
		assert.Equal(t, !a.IsMatch(subs, &options), not.IsMatch(subs, &options))
		_ = b
	}
}
