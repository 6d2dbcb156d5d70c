package exporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// CSVMIMEType is the content type of CSV artifacts
const CSVMIMEType = "text/csv;charset=utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoder writes CSV rows where every field is quoted and embedded quotes
// are doubled. Rows are separated by "\n"; the last row has no terminator.
type Encoder struct {
	w    io.Writer
	rows int
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteRow writes one row
func (e *Encoder) WriteRow(fields []string) error {
	var sb strings.Builder
	if e.rows > 0 {
		sb.WriteByte('\n')
	}
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quoteField(field))
	}

	if _, err := io.WriteString(e.w, sb.String()); err != nil {
		return fmt.Errorf("failed to write row %d: %w", e.rows, err)
	}
	e.rows++
	return nil
}

// Rows returns the number of rows written so far
func (e *Encoder) Rows() int {
	return e.rows
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// MarshalCSV serializes ds with the resolved columns: a header row followed
// by one row per record. An empty dataset yields nil.
func MarshalCSV(ds Dataset, cols Columns) []byte {
	if len(ds) == 0 {
		return nil
	}
	cols = ResolveColumns(ds, cols)

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	// bytes.Buffer writes only fail on allocation panics
	_ = enc.WriteRow(cols.Headers())
	for _, r := range ds {
		_ = enc.WriteRow(cols.Row(r))
	}
	return buf.Bytes()
}
