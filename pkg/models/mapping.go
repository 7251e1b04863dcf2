package models

import (
	"strings"
	"time"
)

// MaxConfidence is the saturation point for repeat confirmations.
const MaxConfidence = 10

// NameMapping is a learned association from a raw narration pattern to a
// canonical party name. OriginalName is stored normalized for lookup;
// CorrectedName keeps the user's casing.
type NameMapping struct {
	ID            string    `json:"id"`
	OriginalName  string    `json:"originalName"`
	CorrectedName string    `json:"correctedName"`
	Confidence    int       `json:"confidence"`
	LastUsed      time.Time `json:"lastUsed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NormalizeKey trims, lower-cases and collapses whitespace so that lookups
// are insensitive to spacing and casing differences between statements.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
