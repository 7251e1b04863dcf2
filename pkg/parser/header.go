package parser

import "strings"

// DefaultMaxHeaderScan bounds how deep LocateHeader looks for the real
// header. Bank exports rarely prepend more than a handful of title rows.
const DefaultMaxHeaderScan = 10

var (
	headerDateTokens      = []string{"date"}
	headerNarrationTokens = []string{"narration", "description", "particulars", "details", "remarks"}
	headerDepositTokens   = []string{"deposit", "credit"}
)

// LocateHeader scans the first maxScan rows for the one that looks like a
// column header: it must mention a date column, a narration column and a
// deposit/credit column. Title and branch-info rows fail that test. Row 0 is
// the fallback when nothing matches.
func LocateHeader(rows [][]string, maxScan int) int {
	if maxScan <= 0 {
		maxScan = DefaultMaxHeaderScan
	}
	if maxScan > len(rows) {
		maxScan = len(rows)
	}

	for i := 0; i < maxScan; i++ {
		if looksLikeHeader(rows[i]) {
			return i
		}
	}
	return 0
}

func looksLikeHeader(row []string) bool {
	var hasDate, hasNarration, hasDeposit bool
	for _, cell := range row {
		label := strings.ToLower(strings.TrimSpace(cell))
		if label == "" {
			continue
		}
		if !hasDate && containsAny(label, headerDateTokens) {
			hasDate = true
		}
		if !hasNarration && containsAny(label, headerNarrationTokens) {
			hasNarration = true
		}
		// "cr" matches as a whole word only, otherwise "description" would
		// count as a deposit column.
		if !hasDeposit && (containsAny(label, headerDepositTokens) || hasWord(label, "cr")) {
			hasDeposit = true
		}
	}
	return hasDate && hasNarration && hasDeposit
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func hasWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '.' || r == '/' || r == '-'
	}) {
		if f == word {
			return true
		}
	}
	return false
}
