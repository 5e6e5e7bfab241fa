package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := cachedQuote{Symbol: "AAPL", Price: 187.5}
	if err := mc.Set(ctx, "quote:AAPL", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out cachedQuote
	if err := mc.Get(ctx, "quote:AAPL", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestMemoryCacheStrings(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v" {
		t.Fatalf("got %q", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got string
	if err := mc.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got string
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss after expiry", err)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("signal", "technical", "AAPL"); got != "signal:technical:AAPL" {
		t.Fatalf("key = %q", got)
	}
}
