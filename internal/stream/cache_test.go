package stream

import (
	"encoding/json"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func quoteData(price float64) json.RawMessage {
	raw, _ := json.Marshal(models.Quote{Symbol: "AAPL", LastPrice: price})
	return raw
}

func TestCacheLastValueWins(t *testing.T) {
	c := NewCache()
	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeQuote, Data: quoteData(100)})
	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeQuote, Data: quoteData(101)})

	e, ok := c.Get("AAPL", models.DataTypeQuote)
	if !ok {
		t.Fatal("expected entry")
	}
	var q models.Quote
	if err := json.Unmarshal(e.Data, &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.LastPrice != 101 {
		t.Fatalf("LastPrice = %v, want 101", q.LastPrice)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := NewCache()
	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeQuote, Data: quoteData(1)})
	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeTrade, Data: json.RawMessage(`{}`)})
	c.Put(&models.MarketData{Symbol: "MSFT", DataType: models.DataTypeQuote, Data: quoteData(2)})

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	byType := c.AllForSymbol("AAPL")
	if len(byType) != 2 {
		t.Fatalf("AllForSymbol = %d entries, want 2", len(byType))
	}
	if _, ok := c.Get("MSFT", models.DataTypeTrade); ok {
		t.Fatal("unexpected entry for MSFT trade")
	}
}

func TestCacheStaleness(t *testing.T) {
	c := NewCache()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if !c.IsStale("AAPL", models.DataTypeQuote, time.Minute) {
		t.Fatal("missing entry must be stale")
	}

	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeQuote, Data: quoteData(1)})
	if c.IsStale("AAPL", models.DataTypeQuote, time.Minute) {
		t.Fatal("fresh entry must not be stale")
	}

	now = now.Add(61 * time.Second)
	if !c.IsStale("AAPL", models.DataTypeQuote, time.Minute) {
		t.Fatal("aged entry must be stale")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Put(&models.MarketData{Symbol: "AAPL", DataType: models.DataTypeQuote, Data: quoteData(1)})
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after Clear = %d", c.Len())
	}
	if _, ok := c.Get("AAPL", models.DataTypeQuote); ok {
		t.Fatal("entry survived Clear")
	}
}
