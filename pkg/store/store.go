package store

import (
	"context"
	"time"
)

// KV is the persistence boundary consumed by the core. The concrete
// transport (remote sheet API, local file, database) lives behind it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}

// Retrying decorates a KV with exponential-backoff retries on writes.
// Reads stay single-shot: a failed read degrades to "no suggestion" at the
// caller, so retrying there only adds latency.
type Retrying struct {
	kv       KV
	attempts int
	base     time.Duration
}

// WithRetry wraps kv; attempts below 1 are treated as 1.
func WithRetry(kv KV, attempts int, base time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	return &Retrying{kv: kv, attempts: attempts, base: base}
}

func (r *Retrying) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.kv.Get(ctx, key)
}

func (r *Retrying) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	return r.kv.List(ctx, prefix)
}

func (r *Retrying) Put(ctx context.Context, key string, value []byte) error {
	return r.retry(ctx, func() error { return r.kv.Put(ctx, key, value) })
}

func (r *Retrying) Delete(ctx context.Context, key string) error {
	return r.retry(ctx, func() error { return r.kv.Delete(ctx, key) })
}

func (r *Retrying) retry(ctx context.Context, op func() error) error {
	delay := r.base
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}

var _ KV = (*Retrying)(nil)
