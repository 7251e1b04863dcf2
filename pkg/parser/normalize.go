package parser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
)

// Format identifies the statement file encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
)

// TypeFilter selects which side of the statement survives normalization.
type TypeFilter string

const (
	FilterCredit TypeFilter = "credit"
	FilterDebit  TypeFilter = "debit"
	FilterBoth   TypeFilter = "both"
)

// Result is the outcome of normalizing one statement file. Skipped counts
// rows removed by the type filter; Errors counts rows with no usable date or
// amount. Neither aborts the batch.
type Result struct {
	Transactions []*models.Transaction
	Skipped      int
	Errors       int
}

// Parser turns raw statement files into canonical transactions.
type Parser struct {
	logger        *log.Logger
	resolver      *Resolver
	categoryRules []models.CategoryRule
	maxHeaderScan int
}

// New creates a parser with the built-in alias and category rules.
func New(logger *log.Logger) *Parser {
	return &Parser{
		logger:        logger,
		resolver:      NewResolver(nil),
		maxHeaderScan: DefaultMaxHeaderScan,
	}
}

// WithAliases extends the column alias tables (field name -> extra labels).
func (p *Parser) WithAliases(extra map[string][]string) *Parser {
	p.resolver = NewResolver(extra)
	return p
}

// WithCategoryRules prepends keyword rules tried before the defaults.
func (p *Parser) WithCategoryRules(rules []models.CategoryRule) *Parser {
	p.categoryRules = rules
	return p
}

// WithMaxHeaderScan overrides how many leading rows the header search visits.
func (p *Parser) WithMaxHeaderScan(n int) *Parser {
	p.maxHeaderScan = n
	return p
}

// NormalizeStatement decodes the file and converts every usable row into a
// transaction, in source order. Party names are left blank; the matcher
// fills them in later. The call fails only when the file cannot be decoded,
// has no data rows, or zero rows survive the filter.
func (p *Parser) NormalizeStatement(data []byte, format Format, filter TypeFilter) (*Result, error) {
	if filter == "" {
		filter = FilterBoth
	}

	grid, err := p.decode(data, format)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, ErrEmptyInput
	}

	headerIdx := LocateHeader(grid, p.maxHeaderScan)
	header := grid[headerIdx]
	dataRows := grid[headerIdx+1:]
	if len(dataRows) == 0 {
		return nil, ErrEmptyInput
	}

	p.logger.Debug("header located", "row", headerIdx, "columns", len(header))

	result := &Result{}
	var sample RawRow
	for i, cells := range dataRows {
		row := buildRawRow(header, cells)
		if sample == nil {
			sample = row
		}

		tx, outcome := p.normalizeRow(row, filter)
		switch outcome {
		case rowOK:
			result.Transactions = append(result.Transactions, tx)
		case rowFiltered:
			result.Skipped++
		case rowUnresolvable:
			result.Errors++
			p.logger.Debug("row skipped", "row", headerIdx+1+i, "reason", "no usable date or amount")
		}
	}

	if len(result.Transactions) == 0 {
		return nil, &NoTransactionsError{
			DetectedColumns: detectedColumns(header),
			SampleRow:       sample,
			Filter:          filter,
		}
	}
	return result, nil
}

func (p *Parser) decode(data []byte, format Format) ([][]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	switch format {
	case FormatXLS:
		return decodeXLS(data)
	case FormatCSV:
		return decodeCSV(data)
	case FormatAuto:
		if isXLS(data) {
			return decodeXLS(data)
		}
		return decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrMalformedInput, format)
	}
}

type rowOutcome int

const (
	rowOK rowOutcome = iota
	rowFiltered
	rowUnresolvable
)

func (p *Parser) normalizeRow(row RawRow, filter TypeFilter) (*models.Transaction, rowOutcome) {
	rawDate, ok := p.resolver.Resolve(row, FieldDate)
	if !ok {
		return nil, rowUnresolvable
	}
	date, ok := ParseDate(rawDate)
	if !ok {
		return nil, rowUnresolvable
	}

	deposit, withdrawal := decimal.Zero, decimal.Zero
	if v, ok := p.resolver.Resolve(row, FieldDeposit); ok {
		deposit = ParseAmount(v)
	}
	if v, ok := p.resolver.Resolve(row, FieldWithdrawal); ok {
		withdrawal = ParseAmount(v)
	}

	// Export artifacts sometimes populate both columns; the larger value
	// wins and decides the side, ties going to credit.
	amount := deposit
	typ := models.TypeCredit
	switch {
	case deposit.IsPositive() && withdrawal.IsPositive():
		if withdrawal.GreaterThan(deposit) {
			amount, typ = withdrawal, models.TypeDebit
		}
	case withdrawal.IsPositive():
		amount, typ = withdrawal, models.TypeDebit
	case !deposit.IsPositive():
		return nil, rowUnresolvable
	}

	if filter != FilterBoth && TypeFilter(typ) != filter {
		return nil, rowFiltered
	}

	narration := ""
	if v, ok := p.resolver.Resolve(row, FieldNarration); ok {
		narration = strings.TrimSpace(fmt.Sprint(v))
	}
	reference := ""
	if v, ok := p.resolver.Resolve(row, FieldReference); ok {
		reference = strings.TrimSpace(fmt.Sprint(v))
	}

	tx := models.NewTransaction(date, amount, narration, typ)
	tx.Category = models.Categorize(narration, typ, p.categoryRules)
	tx.ReferenceNumber = reference
	return tx, rowOK
}

// buildRawRow zips the header labels with one row of cells. Cells beyond the
// header are ignored; missing trailing cells stay absent.
func buildRawRow(header []string, cells []string) RawRow {
	row := make(RawRow, len(header))
	for i, label := range header {
		label = strings.TrimSpace(label)
		if label == "" || i >= len(cells) {
			continue
		}
		if _, exists := row[label]; exists {
			continue
		}
		row[label] = cells[i]
	}
	return row
}

func detectedColumns(header []string) []string {
	out := make([]string, 0, len(header))
	for _, label := range header {
		if l := strings.TrimSpace(label); l != "" {
			out = append(out, l)
		}
	}
	return out
}
