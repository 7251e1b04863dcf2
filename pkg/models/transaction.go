package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType classifies a transaction as money in or money out.
type TxType string

const (
	TypeCredit TxType = "credit"
	TypeDebit  TxType = "debit"
)

// Category is the auto-assigned bookkeeping bucket for a transaction.
type Category string

const (
	CategoryCreditSale  Category = "Credit Sale"
	CategoryPurchase    Category = "Purchase"
	CategoryOtherCredit Category = "Other Credit"
	CategoryOtherDebit  Category = "Other Debit"
)

// Transaction is the canonical record produced from one statement row.
// PartyName starts empty and is filled in later by the matcher or the user.
type Transaction struct {
	ID                    string          `json:"id"`
	Date                  time.Time       `json:"date"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	Type                  TxType          `json:"type"`
	Category              Category        `json:"category"`
	PartyName             string          `json:"partyName"`
	ReferenceNumber       string          `json:"referenceNumber,omitempty"`
	AddedToLedger         bool            `json:"addedToLedger"`
	LedgerReferenceNumber string          `json:"ledgerReferenceNumber,omitempty"`
	Hold                  bool            `json:"hold"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// NewTransaction builds a transaction with a fresh ID and timestamps.
// Amount must already be non-negative; the parsers guarantee that.
func NewTransaction(date time.Time, amount decimal.Decimal, description string, typ TxType) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Description: description,
		Type:        typ,
		Category:    Categorize(description, typ, nil),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CategoryRule maps narration keywords to a category. Rules loaded from
// config are tried before the built-in defaults.
type CategoryRule struct {
	Category Category `json:"category" yaml:"category" mapstructure:"category"`
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

var defaultCategoryRules = []CategoryRule{
	{Category: CategoryCreditSale, Keywords: []string{"sale", "invoice"}},
	{Category: CategoryPurchase, Keywords: []string{"purchase", "buy"}},
}

// Categorize picks a category from keyword rules on the narration,
// falling back to Other Credit / Other Debit.
func Categorize(description string, typ TxType, extra []CategoryRule) Category {
	lower := strings.ToLower(description)
	for _, rules := range [][]CategoryRule{extra, defaultCategoryRules} {
		for _, rule := range rules {
			for _, kw := range rule.Keywords {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					return rule.Category
				}
			}
		}
	}
	if typ == TypeCredit {
		return CategoryOtherCredit
	}
	return CategoryOtherDebit
}

// ErrDateMutation is returned when an update tries to change the date of an
// existing transaction. The date is kept as-is and the rest of the update
// still applies; callers surface this as a warning.
var ErrDateMutation = errors.New("transaction date cannot be changed after creation")

// TransactionUpdate carries the editable fields of a transaction.
// Nil pointers leave the field untouched.
type TransactionUpdate struct {
	Date                  *time.Time
	PartyName             *string
	Category              *Category
	Notes                 *string
	Hold                  *bool
	AddedToLedger         *bool
	LedgerReferenceNumber *string
}

// ApplyUpdate writes the editable fields onto the transaction. A date change
// is rejected: the original date is preserved and ErrDateMutation returned
// after all other fields have been applied.
func (t *Transaction) ApplyUpdate(u TransactionUpdate) error {
	if u.PartyName != nil {
		t.PartyName = *u.PartyName
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Hold != nil {
		t.Hold = *u.Hold
	}
	if u.AddedToLedger != nil {
		t.AddedToLedger = *u.AddedToLedger
	}
	if u.LedgerReferenceNumber != nil {
		t.LedgerReferenceNumber = *u.LedgerReferenceNumber
	}
	t.UpdatedAt = time.Now().UTC()

	if u.Date != nil && !u.Date.Equal(t.Date) {
		return ErrDateMutation
	}
	return nil
}

// CSVRow renders the transaction as one canonical CSV record.
func (t *Transaction) CSVRow() []string {
	return []string{
		t.Date.Format("2006-01-02"),
		t.PartyName,
		t.Description,
		string(t.Type),
		string(t.Category),
		t.ReferenceNumber,
		t.Amount.StringFixed(2),
	}
}

// CSVHeader matches the columns produced by CSVRow.
func CSVHeader() []string {
	return []string{"Date", "Party", "Description", "Type", "Category", "Reference", "Amount"}
}
