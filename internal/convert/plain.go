package convert

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// plainWriter renders records human-readable: one field per line as
// "TAG[/OCC] $CODEVALUE...", records separated by a blank line. A '$'
// in a value is escaped as "$$".
type plainWriter struct {
	bw      *bufio.Writer
	closers []io.Closer
	nf      translit.Form
	first   bool
}

func newPlainWriter(output string, nf translit.Form, stdout io.Writer) (*plainWriter, error) {
	w, closers, err := openOutput(output, stdout)
	if err != nil {
		return nil, err
	}
	return &plainWriter{bw: bufio.NewWriter(w), closers: closers, nf: nf, first: true}, nil
}

func (w *plainWriter) WriteRecord(rec *primitives.RecordRef) error {
	if !w.first {
		if err := w.bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	w.first = false

	for _, field := range rec.Fields() {
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
		if err := w.bw.WriteByte(' '); err != nil {
			return err
		}

		for _, sub := range field.Subfields {
			if _, err := w.bw.Write([]byte{'$', byte(sub.Code)}); err != nil {
				return err
			}
			value := bytes.ReplaceAll(sub.Value, []byte("$"), []byte("$$"))
			if w.nf != translit.None {
				value = []byte(w.nf.Normalize(string(value)))
			}
			if _, err := w.bw.Write(value); err != nil {
				return err
			}
		}
		if err := w.bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return nil
}

func (w *plainWriter) Finish() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return closeAll(w.closers)
}

// openOutput resolves an output name to a writer; "-" and "" select
// the given stdout writer.
func openOutput(output string, stdout io.Writer) (io.Writer, []io.Closer, error) {
	if output == "-" || output == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return stdout, nil, nil
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return file, []io.Closer{file}, nil
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
