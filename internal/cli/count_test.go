package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountDefault(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "count", input)
	require.NoError(t, err)
	assert.Equal(t, "records: 2\nfields: 4\nsubfields: 4\n", out)
}

func TestCountSingleValues(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "count", "--records", input)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = runCommand(t, "count", "--fields", input)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, err = runCommand(t, "count", "--subfields", input)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestCountCSV(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1)

	out, err := runCommand(t, "count", "--csv", input)
	require.NoError(t, err)
	assert.Equal(t, "records,fields,subfields\n1,2,2\n", out)

	out, err = runCommand(t, "count", "--tsv", "--no-header", input)
	require.NoError(t, err)
	assert.Equal(t, "1\t2\t2\n", out)
}

func TestCountWhere(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "count", "--records", "--where", "002@.0 == 'Tp1'", input)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}
