package stream

import (
	"encoding/json"
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestBusEmitOrderAndOff(t *testing.T) {
	b := NewBus()
	var got []string

	t1 := b.On("topic", func(_ string, p any) { got = append(got, "first:"+p.(string)) })
	b.On("topic", func(_ string, p any) { got = append(got, "second:"+p.(string)) })

	b.Emit("topic", "a")
	if len(got) != 2 || got[0] != "first:a" || got[1] != "second:a" {
		t.Fatalf("unexpected dispatch %v", got)
	}

	b.Off("topic", t1)
	b.Emit("topic", "b")
	if len(got) != 3 || got[2] != "second:b" {
		t.Fatalf("unexpected dispatch after Off %v", got)
	}

	// unknown token is a no-op
	b.Off("topic", 9999)
	b.Off("missing", t1)
}

func TestBusMarketDataFourGranularities(t *testing.T) {
	b := NewBus()
	md := &models.MarketData{
		Symbol:   "AAPL",
		DataType: models.DataTypeQuote,
		Data:     json.RawMessage(`{}`),
	}

	topics := []string{
		TopicMarketData,
		TopicForType(models.DataTypeQuote),
		TopicForSymbol("AAPL"),
		TopicForTypeSymbol(models.DataTypeQuote, "AAPL"),
	}
	hits := make(map[string]int)
	for _, topic := range topics {
		b.On(topic, func(tp string, _ any) { hits[tp]++ })
	}
	// must not fire for other symbols or types
	b.On(TopicForSymbol("MSFT"), func(string, any) { t.Error("MSFT handler fired") })
	b.On(TopicForType(models.DataTypeTrade), func(string, any) { t.Error("trade handler fired") })

	b.EmitMarketData(md)

	for _, topic := range topics {
		if hits[topic] != 1 {
			t.Fatalf("topic %s fired %d times, want 1", topic, hits[topic])
		}
	}
}

func TestBusPanicIsolation(t *testing.T) {
	b := NewBus()
	called := false
	b.On("topic", func(string, any) { panic("boom") })
	b.On("topic", func(string, any) { called = true })

	b.Emit("topic", nil)

	if !called {
		t.Fatal("second handler was not invoked after a panic")
	}
	if b.HandlerPanics() != 1 {
		t.Fatalf("HandlerPanics = %d, want 1", b.HandlerPanics())
	}
}

func TestBusReentrantUnsubscribe(t *testing.T) {
	b := NewBus()
	var token int64
	fired := 0
	token = b.On("topic", func(string, any) {
		fired++
		b.Off("topic", token)
	})

	b.Emit("topic", nil)
	b.Emit("topic", nil)
	if fired != 1 {
		t.Fatalf("handler fired %d times, want 1", fired)
	}
}

func TestBusRemoveAll(t *testing.T) {
	b := NewBus()
	b.On("a", func(string, any) {})
	b.On("b", func(string, any) {})

	b.RemoveAll("a")
	if got := b.Topics(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("unexpected topics %v", got)
	}

	b.RemoveAll()
	if got := b.Topics(); len(got) != 0 {
		t.Fatalf("expected empty bus, got %v", got)
	}
}
