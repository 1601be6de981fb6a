package indicator

import (
	"errors"
	"testing"
)

func TestCache_MemoizesOutputs(t *testing.T) {
	cache := NewCache(series(100, 102, 104, 103, 105, 106, 107))

	a, err := cache.Get(Spec{Kind: KindSMA, Params: Params{Period: 3}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := cache.Get(Spec{Kind: KindSMA, Params: Params{Period: 3}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if &a.Line[0] != &b.Line[0] {
		t.Error("repeated Get recomputed instead of reusing the memoized output")
	}
}

func TestCache_CanonicalKeyEquivalence(t *testing.T) {
	cache := NewCache(series(100, 102, 104, 103, 105, 106, 107, 108, 109, 110,
		111, 112, 113, 114, 115, 116, 117))

	// Zero period means the kind's default (RSI: 14); both spellings must
	// resolve to the same cache entry.
	a, err := cache.Get(Spec{Kind: KindRSI})
	if err != nil {
		t.Fatalf("Get default: %v", err)
	}
	b, err := cache.Get(Spec{Kind: KindRSI, Params: Params{Period: 14}})
	if err != nil {
		t.Fatalf("Get explicit: %v", err)
	}
	if &a.Line[0] != &b.Line[0] {
		t.Error("default and explicit period produced distinct cache entries")
	}

	// Fields irrelevant to the kind are zeroed before keying.
	c, err := cache.Get(Spec{Kind: KindRSI, Params: Params{Period: 14, Multiplier: 7}})
	if err != nil {
		t.Fatalf("Get with stray field: %v", err)
	}
	if &a.Line[0] != &c.Line[0] {
		t.Error("irrelevant param field changed the cache key")
	}
}

func TestCache_UnknownKind(t *testing.T) {
	cache := NewCache(series(1, 2, 3))
	_, err := cache.Get(Spec{Kind: "STOCHASTIC"})
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}
