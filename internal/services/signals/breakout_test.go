package signals

import (
	"context"
	"strings"
	"testing"

	"MarketPulse/internal/domain/models"
)

// rangeBars builds n prior bars trading inside [90, 110] plus one latest bar.
func rangeBars(n int, latestClose, latestVolume float64) []models.Bar {
	out := make([]models.Bar, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, models.Bar{
			Symbol: "AAPL", Open: 100, High: 110, Low: 90, Close: 100,
			Volume:    1000,
			Timestamp: int64(i+1) * 60_000,
		})
	}
	out = append(out, models.Bar{
		Symbol: "AAPL", Open: 100, High: latestClose, Low: 90, Close: latestClose,
		Volume:    latestVolume,
		Timestamp: int64(n+1) * 60_000,
	})
	return out
}

func TestBreakoutAboveResistanceConfirmed(t *testing.T) {
	store := &fakeBars{bars: rangeBars(20, 115, 2000)}
	g := NewBreakoutGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalBuy {
		t.Fatalf("level = %s, want BUY", sig.Level)
	}
	if !almost(sig.Confidence, 0.75) {
		t.Fatalf("confidence = %v, want 0.75 (volume confirmed)", sig.Confidence)
	}
	if !almost(sig.BreakoutLevel, 110) {
		t.Fatalf("breakout level = %v, want 110", sig.BreakoutLevel)
	}
	if store.gotN != breakoutWindow+1 {
		t.Fatalf("requested %d bars, want %d", store.gotN, breakoutWindow+1)
	}
}

func TestBreakoutAboveResistanceUnconfirmed(t *testing.T) {
	// 1.2x average volume is under the 1.5x confirmation bar
	store := &fakeBars{bars: rangeBars(20, 115, 1200)}
	g := NewBreakoutGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalBuy {
		t.Fatalf("level = %s, want BUY", sig.Level)
	}
	if !almost(sig.Confidence, 0.5) {
		t.Fatalf("confidence = %v, want 0.5 (unconfirmed)", sig.Confidence)
	}
}

func TestBreakoutBelowSupport(t *testing.T) {
	store := &fakeBars{bars: rangeBars(20, 85, 2000)}
	g := NewBreakoutGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalSell {
		t.Fatalf("level = %s, want SELL", sig.Level)
	}
	if !almost(sig.BreakoutLevel, 90) {
		t.Fatalf("breakout level = %v, want 90", sig.BreakoutLevel)
	}
}

func TestBreakoutInsideRangeHolds(t *testing.T) {
	store := &fakeBars{bars: rangeBars(20, 100, 1000)}
	g := NewBreakoutGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalHold {
		t.Fatalf("level = %s, want HOLD", sig.Level)
	}
	if !almost(sig.Confidence, 0.4) {
		t.Fatalf("confidence = %v, want 0.4", sig.Confidence)
	}
}

func TestBreakoutThinHistoryHoldsLowConfidence(t *testing.T) {
	store := &fakeBars{bars: rangeBars(8, 115, 2000)}
	g := NewBreakoutGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalHold {
		t.Fatalf("level = %s, want HOLD", sig.Level)
	}
	if !almost(sig.Confidence, 0.3) {
		t.Fatalf("confidence = %v, want 0.3", sig.Confidence)
	}
	if !strings.Contains(sig.Reasoning, "insufficient data") {
		t.Fatalf("reasoning = %q", sig.Reasoning)
	}
}
