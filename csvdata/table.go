package csvdata

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Row maps header name to the raw cell value for one record.
// Values are opaque text; the service never coerces types.
type Row map[string]string

// Value returns the cell for a field, or "" when the field is absent.
func (r Row) Value(field string) string {
	return r[field]
}

// Table is a decoded tabular data source with header order preserved.
type Table struct {
	Headers []string
	Rows    []Row
}

// KeyField is the first column; per-row output naming derives from it.
func (t *Table) KeyField() string {
	if len(t.Headers) == 0 {
		return ""
	}
	return t.Headers[0]
}

var ErrNoHeader = errors.New("csvdata: data source has no header row")

// Parse decodes a CSV stream. The first record is the header; header names
// are whitespace-trimmed and a UTF-8 BOM on the first header is stripped.
// Cell values pass through verbatim. Short records leave the trailing
// fields absent rather than erroring, matching how loosely most exported
// sheets behave.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, err
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	t := &Table{Headers: headers}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
