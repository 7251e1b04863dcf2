package main

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/csv"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
)

type filters struct {
	startDate string
	endDate   string
	minAmount float64
	maxAmount float64
	party     string
}

func (f *filters) toFilterFunc() csv.FilterFunc[*models.Transaction] {
	return func(t *models.Transaction) bool {
		if f.startDate != "" {
			if start, err := time.Parse("2006-01-02", f.startDate); err == nil && t.Date.Before(start) {
				return false
			}
		}
		if f.endDate != "" {
			if end, err := time.Parse("2006-01-02", f.endDate); err == nil && t.Date.After(end) {
				return false
			}
		}
		if f.minAmount != 0 && t.Amount.LessThan(decimal.NewFromFloat(f.minAmount)) {
			return false
		}
		if f.maxAmount != 0 && t.Amount.GreaterThan(decimal.NewFromFloat(f.maxAmount)) {
			return false
		}
		if f.party != "" {
			haystack := strings.ToLower(t.PartyName + " " + t.Description)
			if !strings.Contains(haystack, strings.ToLower(f.party)) {
				return false
			}
		}
		return true
	}
}
