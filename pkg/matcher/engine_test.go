package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store/memory"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheTTL = 0 // always refresh so learns are visible immediately
	return NewEngine(log.Default(), memory.New(), cfg)
}

func TestLearnThenExactSuggest(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if err := e.Learn(ctx, "sri raja rajeswari ortho", "Sri Raja Rajeswari Hospital"); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	got, ok := e.Suggest(ctx, "sri raja rajeswari ortho")
	if !ok || got != "Sri Raja Rajeswari Hospital" {
		t.Errorf("Suggest = %q (ok=%v)", got, ok)
	}

	// Lookup is case- and whitespace-insensitive.
	got, ok = e.Suggest(ctx, "  SRI RAJA   RAJESWARI ORTHO ")
	if !ok || got != "Sri Raja Rajeswari Hospital" {
		t.Errorf("normalized Suggest = %q (ok=%v)", got, ok)
	}
}

func TestSuggestUnrelatedReturnsNone(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_ = e.Learn(ctx, "sri raja rajeswari ortho", "Sri Raja Rajeswari Hospital")
	if got, ok := e.Suggest(ctx, "completely unrelated text"); ok {
		t.Errorf("expected no suggestion, got %q", got)
	}
}

func TestFuzzySuggestSharedWords(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_ = e.Learn(ctx, "gupta hardware kanpur", "Gupta Hardware")

	// Substring containment plus two shared significant words.
	got, ok := e.Suggest(ctx, "gupta hardware")
	if !ok || got != "Gupta Hardware" {
		t.Errorf("fuzzy Suggest = %q (ok=%v)", got, ok)
	}
}

func TestFuzzyNeverMatchesOnOneWord(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_ = e.Learn(ctx, "gupta hardware kanpur", "Gupta Hardware")

	// "gupta" alone shares a single significant word; no suggestion allowed.
	if got, ok := e.Suggest(ctx, "gupta textiles delhi"); ok {
		t.Errorf("single shared word produced suggestion %q", got)
	}
}

func TestLearnConfidenceSaturates(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if err := e.Learn(ctx, "acme ortho", "Acme Hospital"); err != nil {
			t.Fatalf("Learn: %v", err)
		}
	}

	m, err := e.store.Get(ctx, "acme ortho")
	if err != nil || m == nil {
		t.Fatalf("Get: %v %v", m, err)
	}
	if m.Confidence != 10 {
		t.Errorf("confidence = %d, want cap 10", m.Confidence)
	}
}

func TestLearnUpdatesCorrection(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_ = e.Learn(ctx, "acme ortho", "Acme Clinic")
	_ = e.Learn(ctx, "acme ortho", "Acme Hospital")

	got, ok := e.Suggest(ctx, "acme ortho")
	if !ok || got != "Acme Hospital" {
		t.Errorf("Suggest after re-learn = %q (ok=%v)", got, ok)
	}

	m, _ := e.store.Get(ctx, "acme ortho")
	if m.Confidence != 2 {
		t.Errorf("confidence = %d, want 2", m.Confidence)
	}
}

func TestLearnNothingToLearn(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if err := e.Learn(ctx, "Acme Hospital", "acme  hospital"); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	mappings, err := e.Mappings(ctx)
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(mappings) != 0 {
		t.Errorf("self-mapping persisted: %v", mappings)
	}
}

func TestAutoTrainTeachesCandidates(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	narration := "NEFT CR-1234-ACME TRADERS-XYZ999"
	if err := e.AutoTrain(ctx, narration, "Acme Traders Pvt Ltd"); err != nil {
		t.Fatalf("AutoTrain: %v", err)
	}

	got, ok := e.Suggest(ctx, "ACME TRADERS")
	if !ok || got != "Acme Traders Pvt Ltd" {
		t.Errorf("Suggest after training = %q (ok=%v)", got, ok)
	}
}

func TestAutoTrainWithoutNameIsNoop(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if err := e.AutoTrain(ctx, "NEFT CR-1234-ACME TRADERS-XYZ999", ""); err != nil {
		t.Fatalf("AutoTrain: %v", err)
	}
	mappings, _ := e.Mappings(ctx)
	if len(mappings) != 0 {
		t.Errorf("candidates persisted without a corrected name: %v", mappings)
	}
}

// failingKV simulates an unreachable store.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingKV) Put(context.Context, string, []byte) error { return errors.New("store down") }
func (failingKV) Delete(context.Context, string) error      { return errors.New("store down") }
func (failingKV) List(context.Context, string) (map[string][]byte, error) {
	return nil, errors.New("store down")
}

var _ store.KV = failingKV{}

func TestSuggestFailsOpenWhenStoreDown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreTimeout = time.Second
	e := NewEngine(log.Default(), failingKV{}, cfg)

	if got, ok := e.Suggest(context.Background(), "anything"); ok {
		t.Errorf("expected fail-open none, got %q", got)
	}
	if err := e.Learn(context.Background(), "a b c d", "ABCD"); err == nil {
		t.Error("expected learn error when store down")
	}
}

func TestLearnIsIdempotentAcrossRetries(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_ = e.Learn(ctx, "kumar medicals", "Kumar Medicals Pvt")
	_ = e.Learn(ctx, "kumar medicals", "Kumar Medicals Pvt")

	mappings, _ := e.Mappings(ctx)
	if len(mappings) != 1 {
		t.Fatalf("expected one mapping, got %d", len(mappings))
	}
}
