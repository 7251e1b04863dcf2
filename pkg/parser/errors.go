package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput means the file itself could not be decoded.
	ErrMalformedInput = errors.New("statement could not be decoded")
	// ErrEmptyInput means decoding worked but there were no data rows.
	ErrEmptyInput = errors.New("no data rows in statement")
)

// NoTransactionsError is returned when every row was filtered out. It carries
// the detected columns and a sample row so the caller can see why header
// matching went wrong instead of guessing.
type NoTransactionsError struct {
	DetectedColumns []string
	SampleRow       RawRow
	Filter          TypeFilter
}

func (e *NoTransactionsError) Error() string {
	return fmt.Sprintf("no transactions matched filter %q; detected columns: %s",
		e.Filter, strings.Join(e.DetectedColumns, ", "))
}
