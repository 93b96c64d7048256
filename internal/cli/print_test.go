package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintFormat(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+"041A/01 \x1f9x\x1e\n")

	out, err := runCommand(t, "print", input)
	require.NoError(t, err)
	assert.Equal(t,
		"003@ $0 123456789X\n002@ $0 Tp1\n\n041A/01 $9 x\n\n",
		out)
}

func TestPrintLimit(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "print", "-l", "1", input)
	require.NoError(t, err)
	assert.Equal(t, "003@ $0 123456789X\n002@ $0 Tp1\n\n", out)
}

func TestPrintWhere(t *testing.T) {
	input := writeInput(t, "in.dat", recTp1+recTs1)

	out, err := runCommand(t, "print", "--where", "002@.0 == 'Ts1'", input)
	require.NoError(t, err)
	assert.Equal(t, "003@ $0 234567891X\n002@ $0 Ts1\n\n", out)
}
