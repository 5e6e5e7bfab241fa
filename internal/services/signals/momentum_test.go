package signals

import (
	"context"
	"errors"
	"testing"

	"MarketPulse/internal/domain/models"
)

// fakeBars serves a fixed series and records the last request.
type fakeBars struct {
	bars []models.Bar
	err  error

	gotSymbol string
	gotN      int
	gotFreq   models.Frequency
}

func (f *fakeBars) LatestBars(_ context.Context, symbol string, n int, freq models.Frequency) ([]models.Bar, error) {
	f.gotSymbol, f.gotN, f.gotFreq = symbol, n, freq
	if f.err != nil {
		return nil, f.err
	}
	if len(f.bars) > n {
		return f.bars[len(f.bars)-n:], nil
	}
	return f.bars, nil
}

func barsFromCloses(closes ...float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{
			Symbol: "AAPL", Open: c, High: c, Low: c, Close: c,
			Volume:    1000,
			Timestamp: int64(i+1) * 60_000,
		}
	}
	return out
}

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func fallingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(n - i)
	}
	return out
}

func flatCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
	}
	return out
}

func TestMomentumUptrend(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(risingCloses(30)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// price above both SMAs and SMA10 > SMA20 give +3; monotonic rise pins
	// RSI at 100, the overbought rule takes 2 back
	if sig.Score != 1 {
		t.Fatalf("score = %v, want 1", sig.Score)
	}
	if sig.Level != models.SignalWeakBuy {
		t.Fatalf("level = %s, want WEAK_BUY", sig.Level)
	}
	if !almost(sig.Confidence, 0.5) {
		t.Fatalf("confidence = %v, want 0.5", sig.Confidence)
	}
	if store.gotN != 30 || store.gotFreq != models.Freq1Day {
		t.Fatalf("request = n %d freq %s", store.gotN, store.gotFreq)
	}
}

// The API default timeframe must resolve to the interval bars are stored
// under, or every request would come back empty-handed.
func TestMomentumAPITimeframeReadsStoredBars(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(risingCloses(30)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	if _, err := g.Generate(context.Background(), "AAPL", models.Timeframe1D); err != nil {
		t.Fatalf("generate 1D: %v", err)
	}
	if store.gotFreq != models.Freq1Day {
		t.Fatalf("1D freq = %q, want %q", store.gotFreq, models.Freq1Day)
	}

	if _, err := g.Generate(context.Background(), "AAPL", models.Timeframe1W); err != nil {
		t.Fatalf("generate 1W: %v", err)
	}
	if store.gotFreq != models.Freq1Day {
		t.Fatalf("1W freq = %q, want %q", store.gotFreq, models.Freq1Day)
	}
}

func TestMomentumDowntrend(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(fallingCloses(30)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Score != -1 {
		t.Fatalf("score = %v, want -1", sig.Score)
	}
	if sig.Level != models.SignalWeakSell {
		t.Fatalf("level = %s, want WEAK_SELL", sig.Level)
	}
}

func TestMomentumFlatSeriesHolds(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(flatCloses(30)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalHold || sig.Score != 0 {
		t.Fatalf("flat series: level %s score %v", sig.Level, sig.Score)
	}
	if !almost(sig.Confidence, 0.4) {
		t.Fatalf("confidence = %v, want 0.4", sig.Confidence)
	}
}

func TestMomentumNeedsHistory(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(risingCloses(10)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	_, err := g.Generate(context.Background(), "AAPL", "")
	if err == nil {
		t.Fatal("expected error on thin history")
	}
	var dse *models.DataSourceError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestMomentumTimeframeOverridesFrequency(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(risingCloses(30)...)}
	g := NewMomentumGenerator(store, models.Freq1Day)

	if _, err := g.Generate(context.Background(), "AAPL", "1min"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if store.gotFreq != models.Freq1Min {
		t.Fatalf("freq = %s, want 1min", store.gotFreq)
	}
}

func TestMomentumLevelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  models.SignalLevel
	}{
		{5, models.SignalStrongBuy},
		{4, models.SignalStrongBuy},
		{3, models.SignalBuy},
		{2, models.SignalBuy},
		{1, models.SignalWeakBuy},
		{0, models.SignalHold},
		{-1, models.SignalWeakSell},
		{-2, models.SignalSell},
		{-4, models.SignalStrongSell},
	}
	for _, tc := range cases {
		if got := momentumLevel(tc.score); got != tc.want {
			t.Fatalf("momentumLevel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
