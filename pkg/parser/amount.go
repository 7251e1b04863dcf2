package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
	" ", "",
	"\t", "",
)

// ParseAmount converts a raw cell value into a non-negative decimal. It never
// fails: empty cells, sentinels and garbage all come back as zero, which
// callers read as "no value in this column".
func ParseAmount(value any) decimal.Decimal {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v).Abs()
	case int:
		return decimal.NewFromInt(int64(v)).Abs()
	case int64:
		return decimal.NewFromInt(v).Abs()
	case decimal.Decimal:
		return v.Abs()
	case string:
		return parseAmountString(v)
	default:
		return decimal.Zero
	}
}

func parseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "null", "undefined", "nan":
		return decimal.Zero
	}

	s = currencyReplacer.Replace(s)

	// Accounting notation: (1234.56) means -1234.56.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}
