package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

const maxWorkbookRows = 5000

// decodeXLS reads the first worksheet of a binary Excel workbook into a cell
// grid. Cell values arrive as strings; date serials stay numeric text and
// are handled downstream by ParseDate.
func decodeXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	rows := workbook.ReadAllCells(maxWorkbookRows)
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// isXLS sniffs the OLE2 compound-file magic that every .xls workbook starts with.
func isXLS(data []byte) bool {
	magic := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic)
}
