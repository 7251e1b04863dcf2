package matcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
)

// mappingKeyPrefix namespaces mapping records inside the shared KV store,
// which also holds the transaction table.
const mappingKeyPrefix = "mapping/"

// MappingStore persists NameMapping records through the KV boundary as JSON.
type MappingStore struct {
	kv store.KV
}

func NewMappingStore(kv store.KV) *MappingStore {
	return &MappingStore{kv: kv}
}

// Get loads the mapping for a normalized key; nil when absent.
func (s *MappingStore) Get(ctx context.Context, normKey string) (*models.NameMapping, error) {
	raw, ok, err := s.kv.Get(ctx, mappingKeyPrefix+normKey)
	if err != nil {
		return nil, fmt.Errorf("mapping get: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var m models.NameMapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("mapping decode: %w", err)
	}
	return &m, nil
}

// Put upserts a mapping keyed by its normalized OriginalName.
func (s *MappingStore) Put(ctx context.Context, m models.NameMapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("mapping encode: %w", err)
	}
	if err := s.kv.Put(ctx, mappingKeyPrefix+m.OriginalName, raw); err != nil {
		return fmt.Errorf("mapping put: %w", err)
	}
	return nil
}

// List returns every stored mapping.
func (s *MappingStore) List(ctx context.Context) ([]models.NameMapping, error) {
	entries, err := s.kv.List(ctx, mappingKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("mapping list: %w", err)
	}
	out := make([]models.NameMapping, 0, len(entries))
	for key, raw := range entries {
		var m models.NameMapping
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("mapping decode %q: %w", key, err)
		}
		out = append(out, m)
	}
	return out, nil
}
