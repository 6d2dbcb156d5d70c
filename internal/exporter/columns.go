package exporter

import (
	"fmt"
	"strings"
)

// Column pairs a record key with the header shown for it
type Column struct {
	Key    string `json:"key" validate:"required"`
	Header string `json:"header"`
}

// Columns is an ordered column specification
type Columns []Column

// ResolveColumns returns cols unchanged when given, otherwise the keys of the
// first record in order with header equal to key.
func ResolveColumns(ds Dataset, cols Columns) Columns {
	if len(cols) > 0 {
		return cols
	}
	if len(ds) == 0 {
		return nil
	}
	keys := ds[0].Keys()
	inferred := make(Columns, len(keys))
	for i, k := range keys {
		inferred[i] = Column{Key: k, Header: k}
	}
	return inferred
}

// Headers returns the header row
func (c Columns) Headers() []string {
	headers := make([]string, len(c))
	for i, col := range c {
		headers[i] = col.Header
	}
	return headers
}

// Row extracts the cells of r in column order. Keys the record lacks
// produce empty cells.
func (c Columns) Row(r Record) []string {
	row := make([]string, len(c))
	for i, col := range c {
		value, ok := r.Lookup(col.Key)
		if !ok {
			row[i] = ""
			continue
		}
		row[i] = Stringify(value)
	}
	return row
}

// ParseColumns parses "key:Header,key2,key3:Other Header".
// A column without a header uses its key as header.
func ParseColumns(s string) (Columns, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	cols := make(Columns, 0, len(parts))
	for _, part := range parts {
		key, header, found := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid column %q: empty key", part)
		}
		if !found {
			header = key
		}
		cols = append(cols, Column{Key: key, Header: strings.TrimSpace(header)})
	}
	return cols, nil
}
