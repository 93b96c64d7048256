package stream

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

func TestReaderYieldsRecordsInOrder(t *testing.T) {
	input := "003@ \x1f0111\x1e\n003@ \x1f0222\x1e\n003@ \x1f0333\x1e\n"
	reader := NewReader(strings.NewReader(input))

	var ppns []string
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		ppns = append(ppns, string(rec.PPN()))
	}

	assert.Equal(t, []string{"111", "222", "333"}, ppns)
}

func TestReaderSkipsEmptyLines(t *testing.T) {
	input := "\n003@ \x1f0111\x1e\n\n\n003@ \x1f0222\x1e\n"
	reader := NewReader(strings.NewReader(input))

	rec, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "111", string(rec.PPN()))

	rec, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "222", string(rec.PPN()))

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderInvalidLine(t *testing.T) {
	input := "003@ \x1f0111\x1e\ngarbage\n003@ \x1f0333\x1e\n"
	reader := NewReader(strings.NewReader(input))

	rec, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "111", string(rec.PPN()))

	_, err = reader.Next()
	require.Error(t, err)
	require.True(t, IsInvalidLine(err))

	var invalid *InvalidLineError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 2, invalid.Line)
	assert.Equal(t, []byte("garbage\n"), invalid.Bytes)

	// The reader stays usable after an invalid line.
	rec, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "333", string(rec.PPN()))
}

func TestReaderRecordTooLarge(t *testing.T) {
	reader := NewReader(strings.NewReader("003@ \x1f0" + strings.Repeat("x", 64) + "\x1e\n"))
	reader.maxLen = 16

	_, err := reader.Next()
	require.Error(t, err)
	require.True(t, IsInvalidLine(err))

	var decodeErr *primitives.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, primitives.ErrRecordTooLarge, decodeErr.Kind)
}

func TestReaderMissingFinalNewline(t *testing.T) {
	reader := NewReader(strings.NewReader("003@ \x1f0111\x1e"))

	rec, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "111", string(rec.PPN()))

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriterRoundTrip(t *testing.T) {
	input := "003@ \x1f0111\x1e\n003@ \x1f0222\x1e\n"

	var buf bytes.Buffer
	writer := NewWriter(&buf, false)

	reader := NewReader(strings.NewReader(input))
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		require.NoError(t, writer.WriteRecord(rec))
	}
	require.NoError(t, writer.Finish())

	assert.Equal(t, input, buf.String())
}

func TestGzipFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dat.gz")

	writer, err := Create(path, WriterOptions{Gzip: true})
	require.NoError(t, err)

	rec := primitives.MustDecode([]byte("003@ \x1f0111\x1e\n"))
	require.NoError(t, writer.WriteRecord(rec))
	require.NoError(t, writer.Finish())

	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "111", string(got.PPN()))

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriterAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dat")

	for _, ppn := range []string{"111", "222"} {
		writer, err := Create(path, WriterOptions{Append: true})
		require.NoError(t, err)
		rec := primitives.MustDecode([]byte("003@ \x1f0" + ppn + "\x1e\n"))
		require.NoError(t, writer.WriteRecord(rec))
		require.NoError(t, writer.Finish())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "003@ \x1f0111\x1e\n003@ \x1f0222\x1e\n", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no-such-file"))
	assert.Error(t, err)
}
