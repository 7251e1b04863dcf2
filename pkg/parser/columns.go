package parser

import "strings"

// RawRow maps a source column label to its cell value (string or number).
// Labels keep their original casing; resolution is case-insensitive.
type RawRow map[string]any

// Field names a semantic column the normalizer needs out of a raw row.
type Field string

const (
	FieldDate       Field = "date"
	FieldNarration  Field = "narration"
	FieldDeposit    Field = "deposit"
	FieldWithdrawal Field = "withdrawal"
	FieldReference  Field = "reference"
)

// fieldSpec drives the two-phase lookup: first a keyword scan over the
// labels (with disqualifying substrings, so "Value Dt" never wins over
// "Date"), then an explicit alias table for the dialects the keyword scan
// misses.
type fieldSpec struct {
	keywords []string
	exclude  []string
	aliases  []string
}

var defaultFieldSpecs = map[Field]fieldSpec{
	FieldDate: {
		keywords: []string{"date"},
		exclude:  []string{"value", "closing"},
		aliases:  []string{"txn date", "transaction date", "tran date", "dt"},
	},
	FieldNarration: {
		keywords: []string{"narration", "description", "particulars"},
		aliases:  []string{"transaction details", "details", "remarks", "transaction remarks"},
	},
	FieldDeposit: {
		keywords: []string{"deposit", "credit"},
		exclude:  []string{"card"},
		aliases:  []string{"deposit amt.", "deposit amount", "credit amt", "credit amount", "cr amt", "cr", "amount (inr) cr"},
	},
	FieldWithdrawal: {
		keywords: []string{"withdrawal", "debit"},
		exclude:  []string{"card"},
		aliases:  []string{"withdrawal amt.", "withdrawal amount", "debit amt", "debit amount", "dr amt", "dr", "amount (inr) dr"},
	},
	FieldReference: {
		keywords: []string{"ref", "chq", "cheque"},
		exclude:  []string{"closing"},
		aliases:  []string{"chq./ref.no.", "chq/ref no", "chq no", "cheque no", "ref no", "reference no", "utr"},
	},
}

// Resolver finds semantic fields in raw rows across bank export dialects.
type Resolver struct {
	specs map[Field]fieldSpec
}

// NewResolver builds a resolver with the built-in alias rules, extended by
// per-deployment aliases from config (field name -> extra labels).
func NewResolver(extraAliases map[string][]string) *Resolver {
	specs := make(map[Field]fieldSpec, len(defaultFieldSpecs))
	for f, spec := range defaultFieldSpecs {
		if extra, ok := extraAliases[string(f)]; ok {
			merged := spec
			merged.aliases = append(append([]string{}, spec.aliases...), extra...)
			specs[f] = merged
			continue
		}
		specs[f] = spec
	}
	return &Resolver{specs: specs}
}

// Resolve returns the cell value for the requested field, or false when no
// column matches or the matched cell holds a sentinel empty marker.
func (r *Resolver) Resolve(row RawRow, field Field) (any, bool) {
	spec, ok := r.specs[field]
	if !ok {
		return nil, false
	}

	// Phase 1: keyword scan with disqualifiers.
	for label, value := range row {
		lower := strings.ToLower(strings.TrimSpace(label))
		if !containsAny(lower, spec.keywords) || containsAny(lower, spec.exclude) {
			continue
		}
		if present(value) {
			return value, true
		}
	}

	// Phase 2: explicit alias table.
	for label, value := range row {
		lower := strings.ToLower(strings.TrimSpace(label))
		for _, alias := range spec.aliases {
			if lower == alias && present(value) {
				return value, true
			}
		}
	}
	return nil, false
}

// present rejects blank cells and the sentinel markers some exporters write
// into empty columns.
func present(value any) bool {
	s, ok := value.(string)
	if !ok {
		return value != nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "undefined", "null":
		return false
	}
	return true
}
