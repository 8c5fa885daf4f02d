package pricing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"butchery-analytics-service/internal/revenue"
)

type countingLookup struct {
	calls atomic.Int32
	fail  bool
}

func (l *countingLookup) PurchasePrice(context.Context, string, string, string) (revenue.PriceQuote, error) {
	l.calls.Add(1)
	if l.fail {
		return revenue.PriceQuote{}, ErrPriceNotFound
	}
	return revenue.PriceQuote{Price: 200, Category: "chicken"}, nil
}

func TestCacheMemoizesByCanonicalKey(t *testing.T) {
	next := &countingLookup{}
	cache := NewCache(next, time.Minute)
	ctx := context.Background()

	for _, name := range []string{"Chicken Breast", "Kozhi - Chicken Breast - கோழி", "chicken breast"} {
		quote, err := cache.PurchasePrice(ctx, "kak", name, "500g")
		if err != nil || quote.Price != 200 {
			t.Fatalf("expected cached quote, got %+v err=%v", quote, err)
		}
	}
	if next.calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls.Load())
	}

	if _, err := cache.PurchasePrice(ctx, "kak", "Chicken Breast", "1kg"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if next.calls.Load() != 2 {
		t.Fatalf("expected size to be part of the key, got %d calls", next.calls.Load())
	}
}

func TestCacheExpiresAndInvalidates(t *testing.T) {
	next := &countingLookup{}
	cache := NewCache(next, time.Minute)
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.PurchasePrice(ctx, "kak", "Chicken Breast", "")
	now = now.Add(2 * time.Minute)
	_, _ = cache.PurchasePrice(ctx, "kak", "Chicken Breast", "")
	if next.calls.Load() != 2 {
		t.Fatalf("expected expired entry to be refetched, got %d calls", next.calls.Load())
	}

	cache.Invalidate("kak")
	_, _ = cache.PurchasePrice(ctx, "kak", "Chicken Breast", "")
	if next.calls.Load() != 3 {
		t.Fatalf("expected invalidated entry to be refetched, got %d calls", next.calls.Load())
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	next := &countingLookup{fail: true}
	cache := NewCache(next, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := cache.PurchasePrice(context.Background(), "kak", "Rohu Fish", ""); !errors.Is(err, ErrPriceNotFound) {
			t.Fatalf("expected ErrPriceNotFound, got %v", err)
		}
	}
	if next.calls.Load() != 2 {
		t.Fatalf("expected failures to be retried, got %d calls", next.calls.Load())
	}
}
