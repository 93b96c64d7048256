// Package convert provides the write-only encoders for the alternate
// output formats of the convert command: plain, JSON, picaXML, binary
// and import. Each encoder is a stateless traversal over the record
// and shares no state with the matcher or path engines.
package convert

import (
	"fmt"
	"io"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// Format names an output serialization.
type Format string

const (
	FormatPlus   Format = "plus"
	FormatPlain  Format = "plain"
	FormatJSON   Format = "json"
	FormatXML    Format = "xml"
	FormatBinary Format = "binary"
	FormatImport Format = "import"
)

// ParseFormat parses the CLI spelling of a format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPlus, FormatPlain, FormatJSON, FormatXML, FormatBinary, FormatImport:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid format %q", s)
	}
}

// NewWriter returns a record writer encoding the given format to the
// named output; "-" and "" select the given stdout writer. The normal
// form, when set, transliterates textual output formats.
func NewWriter(format Format, output string, gzipped bool, nf translit.Form, stdout io.Writer) (stream.RecordWriter, error) {
	switch format {
	case FormatPlain:
		return newPlainWriter(output, nf, stdout)
	case FormatJSON:
		return newJSONWriter(output, nf, stdout)
	case FormatXML:
		return newXMLWriter(output, nf, stdout)
	case FormatBinary:
		return newBinaryWriter(output, stdout)
	case FormatImport:
		return newImportWriter(output, stdout)
	default:
		if output == "" || output == "-" {
			return stream.NewWriter(stdout, gzipped), nil
		}
		return stream.Create(output, stream.WriterOptions{Gzip: gzipped})
	}
}
