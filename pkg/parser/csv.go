package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// decodeCSV reads delimited text into a cell grid. Semicolon-delimited
// exports are detected from the first line, everything else is treated as
// comma-separated.
func decodeCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if firstLine, _, found := bytes.Cut(data, []byte("\n")); found || len(firstLine) > 0 {
		if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
			reader.Comma = ';'
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
