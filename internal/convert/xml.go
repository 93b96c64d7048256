package convert

import (
	"bufio"
	"encoding/xml"
	"io"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// xmlWriter emits records in the GBV picaXML-v1.0 schema.
type xmlWriter struct {
	bw      *bufio.Writer
	closers []io.Closer
	nf      translit.Form
}

const xmlHeader = xml.Header +
	`<collection targetNamespace="info:srw/schema/5/picaXML-v1.0" ` +
	`xmlns:xs="http://www.w3.org/2001/XMLSchema" ` +
	`xmlns="info:srw/schema/5/picaXML-v1.0">` + "\n"

func newXMLWriter(output string, nf translit.Form, stdout io.Writer) (*xmlWriter, error) {
	w, closers, err := openOutput(output, stdout)
	if err != nil {
		return nil, err
	}

	xw := &xmlWriter{bw: bufio.NewWriter(w), closers: closers, nf: nf}
	if _, err := xw.bw.WriteString(xmlHeader); err != nil {
		return nil, err
	}
	return xw, nil
}

func (w *xmlWriter) WriteRecord(rec *primitives.RecordRef) error {
	if _, err := w.bw.WriteString("  <record>\n"); err != nil {
		return err
	}

	for _, field := range rec.Fields() {
		if _, err := w.bw.WriteString(`    <datafield tag="` + field.Tag.String() + `"`); err != nil {
			return err
		}
		if len(field.Occurrence) > 0 {
			if _, err := w.bw.WriteString(` occurrence="` + string(field.Occurrence) + `"`); err != nil {
				return err
			}
		}
		if _, err := w.bw.WriteString(">\n"); err != nil {
			return err
		}

		for _, sub := range field.Subfields {
			if _, err := w.bw.WriteString(`      <subfield code="` + sub.Code.String() + `">`); err != nil {
				return err
			}
			value := w.nf.Normalize(string(sub.Value))
			if err := xml.EscapeText(w.bw, []byte(value)); err != nil {
				return err
			}
			if _, err := w.bw.WriteString("</subfield>\n"); err != nil {
				return err
			}
		}

		if _, err := w.bw.WriteString("    </datafield>\n"); err != nil {
			return err
		}
	}

	_, err := w.bw.WriteString("  </record>\n")
	return err
}

func (w *xmlWriter) Finish() error {
	if _, err := w.bw.WriteString("</collection>\n"); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return closeAll(w.closers)
}
