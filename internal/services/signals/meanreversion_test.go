package signals

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"MarketPulse/internal/domain/models"
)

func TestMeanReversionFlatSeries(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(flatCloses(20)...)}
	g := NewMeanReversionGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalHold {
		t.Fatalf("level = %s, want HOLD", sig.Level)
	}
	if !almost(sig.Confidence, 0.2) {
		t.Fatalf("confidence = %v, want 0.2", sig.Confidence)
	}
	if !strings.Contains(sig.Reasoning, "flat series") {
		t.Fatalf("reasoning = %q", sig.Reasoning)
	}
}

func TestMeanReversionStretchedAboveSells(t *testing.T) {
	closes := flatCloses(19)
	closes = append(closes, 130)
	store := &fakeBars{bars: barsFromCloses(closes...)}
	g := NewMeanReversionGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalSell {
		t.Fatalf("level = %s, want SELL", sig.Level)
	}
	if !almost(sig.Confidence, 0.8) {
		t.Fatalf("confidence = %v, want 0.8", sig.Confidence)
	}
	if sig.Deviation <= 2 {
		t.Fatalf("deviation = %v, want > 2", sig.Deviation)
	}
	// reversion target is the window mean
	if math.Abs(sig.TargetPrice-101.5) > 1e-9 {
		t.Fatalf("target = %v, want 101.5", sig.TargetPrice)
	}
}

func TestMeanReversionStretchedBelowBuys(t *testing.T) {
	closes := flatCloses(19)
	closes = append(closes, 70)
	store := &fakeBars{bars: barsFromCloses(closes...)}
	g := NewMeanReversionGenerator(store, models.Freq1Day)

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalBuy {
		t.Fatalf("level = %s, want BUY", sig.Level)
	}
	if sig.Deviation >= -2 {
		t.Fatalf("deviation = %v, want < -2", sig.Deviation)
	}
}

func TestMeanReversionNeedsFullWindow(t *testing.T) {
	store := &fakeBars{bars: barsFromCloses(flatCloses(10)...)}
	g := NewMeanReversionGenerator(store, models.Freq1Day)

	_, err := g.Generate(context.Background(), "AAPL", "")
	if err == nil {
		t.Fatal("expected error on thin history")
	}
	var dse *models.DataSourceError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestReversionLevelBands(t *testing.T) {
	cases := []struct {
		dev      float64
		want     models.SignalLevel
		wantConf float64
	}{
		{2.5, models.SignalSell, 0.8},
		{1.5, models.SignalWeakSell, 0.6},
		{0.5, models.SignalHold, 0.4},
		{-0.5, models.SignalHold, 0.4},
		{-1.5, models.SignalWeakBuy, 0.6},
		{-2.5, models.SignalBuy, 0.8},
	}
	for _, tc := range cases {
		level, conf := reversionLevel(tc.dev)
		if level != tc.want || !almost(conf, tc.wantConf) {
			t.Fatalf("reversionLevel(%v) = %s/%v, want %s/%v", tc.dev, level, conf, tc.want, tc.wantConf)
		}
	}
}
