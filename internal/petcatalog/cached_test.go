package petcatalog

import (
	"context"
	"sync"
	"testing"
	"time"
)

// countingReader records lookups to the underlying source.
type countingReader struct {
	mu    sync.Mutex
	calls int
	pets  []Pet
}

func (r *countingReader) GetSchedulableEntities(context.Context, string) ([]Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.pets, nil
}

func (r *countingReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCachedReader_SecondLookupHitsCache(t *testing.T) {
	inner := &countingReader{pets: []Pet{{ID: "p1", Name: "Luna"}}}
	cached := NewCachedReader(inner, 16, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		pets, err := cached.GetSchedulableEntities(ctx, "user-1")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if len(pets) != 1 || pets[0].Name != "Luna" {
			t.Fatalf("lookup %d returned %v", i, pets)
		}
	}
	if inner.callCount() != 1 {
		t.Errorf("inner calls = %d, want 1 (cache should absorb repeats)", inner.callCount())
	}
}

func TestCachedReader_PerUserKeys(t *testing.T) {
	inner := &countingReader{pets: []Pet{{ID: "p1", Name: "Luna"}}}
	cached := NewCachedReader(inner, 16, time.Minute, nil)
	ctx := context.Background()

	_, _ = cached.GetSchedulableEntities(ctx, "user-1")
	_, _ = cached.GetSchedulableEntities(ctx, "user-2")
	if inner.callCount() != 2 {
		t.Errorf("inner calls = %d, want 2 (one per user)", inner.callCount())
	}
}

func TestCachedReader_InvalidateForcesRefetch(t *testing.T) {
	inner := &countingReader{pets: []Pet{{ID: "p1", Name: "Luna"}}}
	cached := NewCachedReader(inner, 16, time.Minute, nil)
	ctx := context.Background()

	_, _ = cached.GetSchedulableEntities(ctx, "user-1")
	cached.Invalidate("user-1")
	_, _ = cached.GetSchedulableEntities(ctx, "user-1")
	if inner.callCount() != 2 {
		t.Errorf("inner calls = %d, want 2 after invalidation", inner.callCount())
	}
}
