// Package csv renders records into delimited output for export.
package csv

import (
	"bytes"
	"encoding/csv"
)

// Record is anything that can render itself as one CSV row.
type Record interface {
	CSVRow() []string
}

// FilterFunc decides whether a record makes it into the output.
type FilterFunc[T Record] func(T) bool

// Create writes the header and every record passing the filter. A nil
// filter keeps everything.
func Create[T Record](header []string, records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write(r.CSVRow())
		}
	}
	w.Flush()
	return buf.Bytes()
}
