package convert

import (
	"bufio"
	"bytes"
	"io"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// binaryWriter emits the normalized serialization with a trailing NUL
// terminating each record instead of the line feed.
type binaryWriter struct {
	bw      *bufio.Writer
	closers []io.Closer
	buf     []byte
}

func newBinaryWriter(output string, stdout io.Writer) (*binaryWriter, error) {
	w, closers, err := openOutput(output, stdout)
	if err != nil {
		return nil, err
	}
	return &binaryWriter{bw: bufio.NewWriter(w), closers: closers}, nil
}

func (w *binaryWriter) WriteRecord(rec *primitives.RecordRef) error {
	w.buf = rec.AppendTo(w.buf[:0])
	w.buf = bytes.TrimSuffix(w.buf, []byte("\n"))
	w.buf = append(w.buf, 0x00)
	_, err := w.bw.Write(w.buf)
	return err
}

func (w *binaryWriter) Finish() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return closeAll(w.closers)
}
