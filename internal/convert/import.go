package convert

import (
	"bufio"
	"io"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// importWriter emits the import framing: each record starts with a
// GS LF header, and each field is written as RS TAG[/OCC] HT subfields
// LF, with the horizontal tab replacing the space of the normalized
// form.
type importWriter struct {
	bw      *bufio.Writer
	closers []io.Closer
}

func newImportWriter(output string, stdout io.Writer) (*importWriter, error) {
	w, closers, err := openOutput(output, stdout)
	if err != nil {
		return nil, err
	}
	return &importWriter{bw: bufio.NewWriter(w), closers: closers}, nil
}

func (w *importWriter) WriteRecord(rec *primitives.RecordRef) error {
	if _, err := w.bw.Write([]byte{0x1d, 0x0a}); err != nil {
		return err
	}

	for _, field := range rec.Fields() {
		if err := w.bw.WriteByte(0x1e); err != nil {
			return err
		}
		if _, err := w.bw.Write(field.Tag[:]); err != nil {
			return err
		}
		if len(field.Occurrence) > 0 {
			if err := w.bw.WriteByte('/'); err != nil {
				return err
			}
			if _, err := w.bw.Write(field.Occurrence); err != nil {
				return err
			}
		}
		if err := w.bw.WriteByte('\t'); err != nil {
			return err
		}
		for _, sub := range field.Subfields {
			if _, err := w.bw.Write([]byte{0x1f, byte(sub.Code)}); err != nil {
				return err
			}
			if _, err := w.bw.Write(sub.Value); err != nil {
				return err
			}
		}
		if err := w.bw.WriteByte(0x0a); err != nil {
			return err
		}
	}

	return nil
}

func (w *importWriter) Finish() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return closeAll(w.closers)
}
