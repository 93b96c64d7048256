package convert

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

type jsonSubfield struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

type jsonField struct {
	Tag        string         `json:"tag"`
	Occurrence string         `json:"occurrence,omitempty"`
	Subfields  []jsonSubfield `json:"subfields"`
}

// jsonWriter emits one array of records; each record is an array of
// field objects.
type jsonWriter struct {
	bw      *bufio.Writer
	closers []io.Closer
	nf      translit.Form
	count   int
}

func newJSONWriter(output string, nf translit.Form, stdout io.Writer) (*jsonWriter, error) {
	w, closers, err := openOutput(output, stdout)
	if err != nil {
		return nil, err
	}

	jw := &jsonWriter{bw: bufio.NewWriter(w), closers: closers, nf: nf}
	if err := jw.bw.WriteByte('['); err != nil {
		return nil, err
	}
	return jw, nil
}

func (w *jsonWriter) WriteRecord(rec *primitives.RecordRef) error {
	if w.count > 0 {
		if err := w.bw.WriteByte(','); err != nil {
			return err
		}
	}
	w.count++

	fields := make([]jsonField, 0, len(rec.Fields()))
	for _, field := range rec.Fields() {
		jf := jsonField{Tag: field.Tag.String(), Occurrence: string(field.Occurrence)}
		for _, sub := range field.Subfields {
			jf.Subfields = append(jf.Subfields, jsonSubfield{
				Code:  sub.Code.String(),
				Value: w.nf.Normalize(string(sub.Value)),
			})
		}
		fields = append(fields, jf)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = w.bw.Write(data)
	return err
}

func (w *jsonWriter) Finish() error {
	if err := w.bw.WriteByte(']'); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return closeAll(w.closers)
}
