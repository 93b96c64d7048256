package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectScenarioRows(t *testing.T) {
	// One 003@ and two matching 041A fields; the first produces one
	// (a,9) row, the second two. Every row starts with the PPN.
	line := "003@ \x1f0P\x1e041A \x1f4aut\x1fax\x1f9u\x1e041A \x1f4aut\x1fay\x1f9v\x1f9w\x1e\n"
	input := writeInput(t, "in.dat", line)

	out, err := runCommand(t, "select", "003@.0, 041A{(a,9) | 4 == 'aut'}", input)
	require.NoError(t, err)
	assert.Equal(t, "P,x,u\nP,y,v\nP,y,w\n", out)
}

func TestSelectNoEmptyColumns(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1)

	out, err := runCommand(t, "select", "003@.0, 012A.a", input)
	require.NoError(t, err)
	assert.Equal(t, "123456789X,\n", out)

	out, err = runCommand(t, "select", "--no-empty-columns", "003@.0, 012A.a", input)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSelectUnique(t *testing.T) {
	input := writeInput(t, "in.dat", "010@ \x1fager\x1fager\x1e\n")

	out, err := runCommand(t, "select", "010@.a", input)
	require.NoError(t, err)
	assert.Equal(t, "ger\nger\n", out)

	out, err = runCommand(t, "select", "-u", "010@.a", input)
	require.NoError(t, err)
	assert.Equal(t, "ger\n", out)
}

func TestSelectSquash(t *testing.T) {
	input := writeInput(t, "in.dat", "003@ \x1f0P\x1e010@ \x1fager\x1faeng\x1e\n")

	out, err := runCommand(t, "select", "--squash", "003@.0, 010@.a", input)
	require.NoError(t, err)
	assert.Equal(t, "P,ger|eng\n", out)
}

func TestSelectMerge(t *testing.T) {
	input := writeInput(t, "in.dat", "003@ \x1f0P\x1e010@ \x1fager\x1e010@ \x1faeng\x1e\n")

	out, err := runCommand(t, "select", "--merge", "--separator", ";", "003@.0, 010@.a", input)
	require.NoError(t, err)
	assert.Equal(t, "P,ger;eng\n", out)
}

func TestSelectHeader(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1)

	out, err := runCommand(t, "select", "-H", "ppn", "003@.0", input)
	require.NoError(t, err)
	assert.Equal(t, "ppn\n123456789X\n", out)
}

func TestSelectLiteralColumn(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1)

	out, err := runCommand(t, "select", "003@.0, 'fixed'", input)
	require.NoError(t, err)
	assert.Equal(t, "123456789X,fixed\n", out)
}

func TestSelectWhere(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "select", "--where", "002@.0 == 'Ts1'", "003@.0", input)
	require.NoError(t, err)
	assert.Equal(t, "234567891X\n", out)
}
