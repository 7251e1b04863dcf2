// Package ledger persists normalized transactions through the KV boundary,
// next to the mapping table the matcher keeps there.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
)

const txnKeyPrefix = "txn/"

// ErrNotFound reports a transaction id with no stored record.
var ErrNotFound = errors.New("transaction not found")

// Store keeps the transaction table as JSON records keyed by id.
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Save writes every transaction in the batch. Records are independent, so a
// failure mid-batch leaves the already-written rows in place.
func (s *Store) Save(ctx context.Context, txs []*models.Transaction) error {
	for _, tx := range txs {
		raw, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("transaction encode %q: %w", tx.ID, err)
		}
		if err := s.kv.Put(ctx, txnKeyPrefix+tx.ID, raw); err != nil {
			return fmt.Errorf("transaction put %q: %w", tx.ID, err)
		}
	}
	return nil
}

// Get loads one transaction by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Transaction, error) {
	raw, ok, err := s.kv.Get(ctx, txnKeyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("transaction get %q: %w", id, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	var tx models.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("transaction decode %q: %w", id, err)
	}
	return &tx, nil
}

// List returns the stored table ordered by date, then id for stability.
func (s *Store) List(ctx context.Context) ([]*models.Transaction, error) {
	entries, err := s.kv.List(ctx, txnKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("transaction list: %w", err)
	}
	out := make([]*models.Transaction, 0, len(entries))
	for key, raw := range entries {
		var tx models.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("transaction decode %q: %w", key, err)
		}
		out = append(out, &tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update loads a transaction, applies the editable fields and persists the
// result. A date change comes back as dateRejected with the original date
// kept; the rest of the update still lands.
func (s *Store) Update(ctx context.Context, id string, u models.TransactionUpdate) (tx *models.Transaction, dateRejected bool, err error) {
	tx, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if err := tx.ApplyUpdate(u); err != nil {
		if !errors.Is(err, models.ErrDateMutation) {
			return nil, false, err
		}
		dateRejected = true
	}

	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, false, fmt.Errorf("transaction encode %q: %w", id, err)
	}
	if err := s.kv.Put(ctx, txnKeyPrefix+id, raw); err != nil {
		return nil, false, fmt.Errorf("transaction put %q: %w", id, err)
	}
	return tx, dateRejected, nil
}
