package stream

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// RecordWriter is the sink interface shared by the normalized writer
// and the alternate format encoders.
type RecordWriter interface {
	WriteRecord(rec *primitives.RecordRef) error
	Finish() error
}

// Writer writes records in the normalized serialization, optionally
// gzip-compressed.
type Writer struct {
	bw      *bufio.Writer
	gz      *gzip.Writer
	closers []io.Closer
	buf     []byte
}

// WriterOptions configures output framing.
type WriterOptions struct {
	// Gzip compresses the output. Implied by a ".gz" output path.
	Gzip bool
	// Append opens the file for appending instead of truncating. Not
	// applicable to gzip output.
	Append bool
}

// NewWriter wraps w as a record writer.
func NewWriter(w io.Writer, gzipped bool) *Writer {
	writer := &Writer{}
	if gzipped {
		writer.gz = gzip.NewWriter(w)
		writer.bw = bufio.NewWriter(writer.gz)
	} else {
		writer.bw = bufio.NewWriter(w)
	}
	return writer
}

// Create opens a named output for writing records. "-" and "" denote
// stdout.
func Create(name string, o WriterOptions) (*Writer, error) {
	if name == "-" || name == "" {
		return NewWriter(os.Stdout, o.Gzip), nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if o.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	file, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return nil, err
	}

	writer := NewWriter(file, o.Gzip || strings.HasSuffix(name, ".gz"))
	writer.closers = append(writer.closers, file)
	return writer, nil
}

// WriteRecord writes the normalized serialization of rec, including
// its terminating line feed.
func (w *Writer) WriteRecord(rec *primitives.RecordRef) error {
	w.buf = rec.AppendTo(w.buf[:0])
	_, err := w.bw.Write(w.buf)
	return err
}

// WriteBytes writes raw bytes, used by commands that pass lines through
// unchanged.
func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.bw.Write(b)
	return err
}

// Finish flushes buffered output and closes the compressor and any
// underlying file.
func (w *Writer) Finish() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}
