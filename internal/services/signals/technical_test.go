package signals

import (
	"context"
	"errors"
	"math"
	"testing"

	"MarketPulse/internal/domain/models"
	dservice "MarketPulse/internal/domain/service"
)

type fakeIndicators struct {
	set dservice.IndicatorSet
	err error
}

func (f fakeIndicators) Indicators(_ context.Context, _, _ string) (dservice.IndicatorSet, error) {
	return f.set, f.err
}

func TestFeaturesFrom(t *testing.T) {
	ind := dservice.IndicatorSet{
		RSI:          30,
		MACD:         0.5,
		MACDSignal:   0.1,
		BollingerPos: 0.8,
		SMA20:        101,
		SMA50:        100,
		VolumeRatio:  1.5,
	}
	f := featuresFrom(ind)

	if !almost(f[FeatureRSIZone], 0.4) {
		t.Fatalf("rsi_zone = %v, want 0.4", f[FeatureRSIZone])
	}
	if f[FeatureMACDCross] != 1 {
		t.Fatalf("macd_cross = %v, want 1", f[FeatureMACDCross])
	}
	if !almost(f[FeatureBollingerPos], -0.8) {
		t.Fatalf("bollinger_pos = %v, want -0.8", f[FeatureBollingerPos])
	}
	if f[FeatureTrend] != 1 {
		t.Fatalf("trend = %v, want 1", f[FeatureTrend])
	}
	if !almost(f[FeatureVolumeRatio], 0.5) {
		t.Fatalf("volume_ratio = %v, want 0.5", f[FeatureVolumeRatio])
	}

	// volume only confirms an existing trend
	ind.SMA20, ind.SMA50 = 100, 100
	f = featuresFrom(ind)
	if f[FeatureVolumeRatio] != 0 {
		t.Fatalf("trendless volume_ratio = %v, want 0", f[FeatureVolumeRatio])
	}
}

func TestTechnicalGenerateBullish(t *testing.T) {
	g := NewTechnicalGenerator(fakeIndicators{set: dservice.IndicatorSet{
		RSI:          25,
		MACD:         0.5,
		MACDSignal:   0.1,
		BollingerPos: -0.9,
		SMA20:        105,
		SMA50:        100,
		Price:        100,
		VolumeRatio:  2,
	}}, NewLinearScorer())

	sig, err := g.Generate(context.Background(), "AAPL", "1D")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// features: rsi_zone 0.5, macd 1, bollinger 0.9, trend 1, volume 1
	// score = 0.25*0.5 + 0.2 + 0.18 + 0.2 + 0.15 = 0.855
	if sig.Level != models.SignalStrongBuy {
		t.Fatalf("level = %s, want STRONG_BUY", sig.Level)
	}
	if math.Abs(sig.Score-0.855) > 1e-9 {
		t.Fatalf("score = %v, want 0.855", sig.Score)
	}
	if math.Abs(sig.TargetPrice-104.275) > 1e-9 {
		t.Fatalf("target = %v, want 104.275", sig.TargetPrice)
	}
	if math.Abs(sig.StopLoss-97) > 1e-9 {
		t.Fatalf("stop = %v, want 97", sig.StopLoss)
	}
	if sig.Model != ModelTechnical || sig.Symbol != "AAPL" {
		t.Fatalf("identity fields wrong: %+v", sig)
	}
}

func TestTechnicalGenerateHoldHasNoTargets(t *testing.T) {
	g := NewTechnicalGenerator(fakeIndicators{set: dservice.IndicatorSet{
		RSI: 50, Price: 100, VolumeRatio: 1,
	}}, NewLinearScorer())

	sig, err := g.Generate(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig.Level != models.SignalHold {
		t.Fatalf("level = %s, want HOLD", sig.Level)
	}
	if sig.TargetPrice != 0 || sig.StopLoss != 0 {
		t.Fatalf("hold must not carry price targets: %+v", sig)
	}
}

func TestTechnicalGeneratePropagatesErrors(t *testing.T) {
	srcErr := models.NewDataSourceError("indicators", "AAPL", errors.New("status 502"))
	g := NewTechnicalGenerator(fakeIndicators{err: srcErr}, NewLinearScorer())

	_, err := g.Generate(context.Background(), "AAPL", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var dse *models.DataSourceError
	if !errors.As(err, &dse) || dse.Source != "indicators" {
		t.Fatalf("error lost source info: %v", err)
	}
}

func TestTechnicalLevelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  models.SignalLevel
	}{
		{0.7, models.SignalStrongBuy},
		{0.3, models.SignalBuy},
		{0.2, models.SignalHold},
		{0, models.SignalHold},
		{-0.2, models.SignalHold},
		{-0.3, models.SignalSell},
		{-0.7, models.SignalStrongSell},
	}
	for _, tc := range cases {
		if got := technicalLevel(tc.score); got != tc.want {
			t.Fatalf("technicalLevel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
