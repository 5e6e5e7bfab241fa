package stream

import (
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func TestRegistryListOrdering(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Add(models.Subscription{ID: "c", SubscribedAt: base.Add(2 * time.Second)})
	r.Add(models.Subscription{ID: "b", SubscribedAt: base})
	r.Add(models.Subscription{ID: "a", SubscribedAt: base})

	got := r.List()
	if len(got) != 3 {
		t.Fatalf("List = %d entries", len(got))
	}
	// same timestamp ties break on id
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("unexpected order %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRegistryAddReplacesAndRemove(t *testing.T) {
	r := NewRegistry()
	r.Add(models.Subscription{ID: "s1", Symbols: []string{"AAPL"}})
	r.Add(models.Subscription{ID: "s1", Symbols: []string{"AAPL", "MSFT"}})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	s, ok := r.Get("s1")
	if !ok || len(s.Symbols) != 2 {
		t.Fatalf("unexpected subscription %+v ok=%v", s, ok)
	}

	if !r.Remove("s1") {
		t.Fatal("Remove returned false for existing id")
	}
	if r.Remove("s1") {
		t.Fatal("Remove returned true for missing id")
	}
}

func TestRegistryReplaceAll(t *testing.T) {
	r := NewRegistry()
	r.Add(models.Subscription{ID: "old"})

	r.ReplaceAll([]models.Subscription{{ID: "n1"}, {ID: "n2"}})
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if _, ok := r.Get("old"); ok {
		t.Fatal("stale subscription survived ReplaceAll")
	}
}

func TestRegistrySymbolsFor(t *testing.T) {
	r := NewRegistry()
	r.Add(models.Subscription{ID: "s1", DataType: models.DataTypeQuote, Symbols: []string{"MSFT", "AAPL"}})
	r.Add(models.Subscription{ID: "s2", DataType: models.DataTypeQuote, Symbols: []string{"AAPL", "NVDA"}})
	r.Add(models.Subscription{ID: "s3", DataType: models.DataTypeTrade, Symbols: []string{"TSLA"}})

	got := r.SymbolsFor(models.DataTypeQuote)
	want := []string{"AAPL", "MSFT", "NVDA"}
	if len(got) != len(want) {
		t.Fatalf("SymbolsFor = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SymbolsFor = %v, want %v", got, want)
		}
	}
}
