package matcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
)

// Config carries the tunable matching knobs. The fuzzy thresholds are
// empirically tuned defaults, not hard invariants; keep them configurable.
type Config struct {
	MinOverlap     float64       `mapstructure:"min_overlap"`      // overlap needed with substring containment
	StrongOverlap  float64       `mapstructure:"strong_overlap"`   // overlap that stands on its own
	MinSharedWords int           `mapstructure:"min_shared_words"` // never suggest below this many shared words
	MinLengthRatio float64       `mapstructure:"min_length_ratio"` // shorter/longer string length floor
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	StoreTimeout   time.Duration `mapstructure:"store_timeout"`
}

// DefaultConfig returns the thresholds the matcher ships with.
func DefaultConfig() Config {
	return Config{
		MinOverlap:     0.5,
		StrongOverlap:  0.75,
		MinSharedWords: 2,
		MinLengthRatio: 0.5,
		CacheTTL:       30 * time.Second,
		StoreTimeout:   5 * time.Second,
	}
}

// Generic business and location words carry no matching signal.
var fuzzyStopwords = map[string]struct{}{
	"enterprises": {}, "enterprise": {}, "traders": {}, "trading": {},
	"company": {}, "limited": {}, "private": {}, "agencies": {}, "agency": {},
	"stores": {}, "store": {}, "industries": {}, "corporation": {},
	"india": {}, "bharat": {}, "city": {}, "nagar": {}, "road": {},
}

// Engine resolves raw narration text to canonical party names and learns
// from corrections. Suggestion is read-only and fails open; learning is
// idempotent per key so retries and abandoned batches are safe.
type Engine struct {
	logger *log.Logger
	store  *MappingStore
	cache  *mappingCache
	cfg    Config
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // serializes writes per mapping key
}

// NewEngine wires the engine over the KV persistence boundary.
func NewEngine(logger *log.Logger, kv store.KV, cfg Config) *Engine {
	ms := NewMappingStore(kv)
	e := &Engine{
		logger: logger,
		store:  ms,
		cfg:    cfg,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	e.cache = newMappingCache(cfg.CacheTTL, e.clock, func(ctx context.Context) ([]models.NameMapping, error) {
		return ms.List(ctx)
	})
	return e
}

// WithClock injects a clock for tests; returns the engine for chaining.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.cache.now = now
	return e
}

func (e *Engine) clock() time.Time { return e.now() }

// Suggest returns the canonical name for the given raw text, or false when
// nothing matches confidently. Store failures degrade to "no suggestion".
func (e *Engine) Suggest(ctx context.Context, rawText string) (string, bool) {
	normKey := models.NormalizeKey(rawText)
	if normKey == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	table, err := e.cache.snapshot(ctx)
	if err != nil {
		e.logger.Warn("mapping store unavailable, suggestion skipped", "error", err)
		return "", false
	}

	if m, ok := table[normKey]; ok {
		return m.CorrectedName, true
	}
	return e.fuzzyMatch(normKey, table)
}

// fuzzyMatch compares significant words between the input and every stored
// key. The rule is deliberately strict: a wrong suggestion silently
// mislabels a transaction, a missed one just asks the user once more.
func (e *Engine) fuzzyMatch(normKey string, table map[string]models.NameMapping) (string, bool) {
	inputWords := significantWords(normKey)
	if len(inputWords) == 0 {
		return "", false
	}

	var best *models.NameMapping
	bestShared := 0
	for key := range table {
		m := table[key]
		keyWords := significantWords(key)
		if len(keyWords) == 0 {
			continue
		}

		shared := sharedWordCount(inputWords, keyWords)
		if shared < e.cfg.MinSharedWords {
			continue
		}

		larger := len(inputWords)
		if len(keyWords) > larger {
			larger = len(keyWords)
		}
		overlap := float64(shared) / float64(larger)

		contained := strings.Contains(normKey, key) || strings.Contains(key, normKey)
		strong := overlap >= e.cfg.StrongOverlap && lengthRatio(normKey, key) >= e.cfg.MinLengthRatio

		if !(contained && overlap >= e.cfg.MinOverlap) && !strong {
			continue
		}

		if best == nil || shared > bestShared ||
			(shared == bestShared && m.Confidence > best.Confidence) {
			picked := m
			best = &picked
			bestShared = shared
		}
	}

	if best == nil {
		return "", false
	}
	return best.CorrectedName, true
}

// Learn upserts a mapping from original text to the corrected name. Repeat
// confirmations bump confidence up to the cap; a different correction for
// the same key replaces the name. Learning nothing (text already equals the
// correction) is a no-op.
func (e *Engine) Learn(ctx context.Context, original, corrected string) error {
	normKey := models.NormalizeKey(original)
	corrected = strings.TrimSpace(corrected)
	if normKey == "" || corrected == "" {
		return nil
	}
	if normKey == models.NormalizeKey(corrected) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	unlock := e.lockKey(normKey)
	defer unlock()

	existing, err := e.store.Get(ctx, normKey)
	if err != nil {
		return fmt.Errorf("learn %q: %w", normKey, err)
	}

	now := e.now().UTC()
	var m models.NameMapping
	if existing != nil {
		m = *existing
		if m.Confidence < models.MaxConfidence {
			m.Confidence++
		}
		m.CorrectedName = corrected
		m.LastUsed = now
	} else {
		m = models.NameMapping{
			ID:            uuid.NewString(),
			OriginalName:  normKey,
			CorrectedName: corrected,
			Confidence:    1,
			LastUsed:      now,
			CreatedAt:     now,
		}
	}

	if err := e.store.Put(ctx, m); err != nil {
		return fmt.Errorf("learn %q: %w", normKey, err)
	}
	e.cache.invalidate()
	return nil
}

// AutoTrain mines the narration and learns every candidate against the
// corrected name. Without a corrected name there is nothing correct to
// associate, so nothing is persisted.
func (e *Engine) AutoTrain(ctx context.Context, narration, corrected string) error {
	if strings.TrimSpace(corrected) == "" {
		return nil
	}

	var failed int
	for _, candidate := range ExtractCandidates(narration) {
		if err := e.Learn(ctx, candidate, corrected); err != nil {
			failed++
			e.logger.Warn("auto-train candidate dropped", "candidate", candidate, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("auto-train: %d candidate(s) not persisted", failed)
	}
	return nil
}

// Mappings lists the learned table, for review tooling.
func (e *Engine) Mappings(ctx context.Context) ([]models.NameMapping, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()
	return e.store.List(ctx)
}

// lockKey serializes writes for one mapping key, keeping at most one
// in-flight write per key without blocking unrelated learns.
func (e *Engine) lockKey(key string) func() {
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := fuzzyStopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func sharedWordCount(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	n := 0
	for _, w := range b {
		if _, ok := set[w]; ok {
			n++
			delete(set, w)
		}
	}
	return n
}

func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}
