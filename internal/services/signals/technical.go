package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	dservice "MarketPulse/internal/domain/service"
)

// TechnicalGenerator maps an indicator snapshot through the configured scorer
// to one of five prediction buckets.
type TechnicalGenerator struct {
	indicators dservice.IndicatorProvider
	scorer     dservice.Scorer
}

// NewTechnicalGenerator creates the technical model.
func NewTechnicalGenerator(indicators dservice.IndicatorProvider, scorer dservice.Scorer) *TechnicalGenerator {
	return &TechnicalGenerator{indicators: indicators, scorer: scorer}
}

func (g *TechnicalGenerator) Model() string { return ModelTechnical }

// Generate fetches indicators, derives normalized features, and scores them.
func (g *TechnicalGenerator) Generate(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	ind, err := g.indicators.Indicators(ctx, symbol, timeframe)
	if err != nil {
		return models.Signal{}, fmt.Errorf("technical %s: %w", symbol, err)
	}

	res := g.scorer.Score(featuresFrom(ind))
	level := technicalLevel(res.Score)

	sig := models.Signal{
		Symbol:     symbol,
		Model:      ModelTechnical,
		Level:      level,
		Confidence: res.Confidence,
		Score:      res.Score,
		Reasoning: fmt.Sprintf("scorer=%s score=%.2f rsi=%.1f macd=%.3f bb=%.2f vol=%.2fx",
			g.scorer.Name(), res.Score, ind.RSI, ind.MACD-ind.MACDSignal, ind.BollingerPos, ind.VolumeRatio),
		Timestamp: time.Now(),
	}
	if ind.Price > 0 && level != models.SignalHold {
		sig.TargetPrice, sig.StopLoss = priceTargets(ind.Price, res.Score)
	}
	return sig, nil
}

// featuresFrom normalizes the raw indicators into the [-1,1] feature space.
func featuresFrom(ind dservice.IndicatorSet) map[string]float64 {
	f := map[string]float64{
		// RSI 30 -> +0.4 (oversold, buy side), RSI 70 -> -0.4
		FeatureRSIZone: clamp((50-ind.RSI)/50, -1, 1),
		// position inside the bands inverts: near upper band argues sell
		FeatureBollingerPos: clamp(-ind.BollingerPos, -1, 1),
	}

	switch {
	case ind.MACD > ind.MACDSignal:
		f[FeatureMACDCross] = 1
	case ind.MACD < ind.MACDSignal:
		f[FeatureMACDCross] = -1
	}

	trend := 0.0
	switch {
	case ind.SMA20 > ind.SMA50:
		trend = 1
	case ind.SMA20 < ind.SMA50:
		trend = -1
	}
	f[FeatureTrend] = trend
	// above-average volume confirms the trend direction, it has no direction of its own
	f[FeatureVolumeRatio] = trend * clamp(ind.VolumeRatio-1, 0, 1)
	return f
}

func technicalLevel(score float64) models.SignalLevel {
	switch {
	case score > 0.6:
		return models.SignalStrongBuy
	case score > 0.2:
		return models.SignalBuy
	case score < -0.6:
		return models.SignalStrongSell
	case score < -0.2:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func priceTargets(price, score float64) (target, stop float64) {
	if score > 0 {
		return price * (1 + 0.05*clamp(score, 0, 1)), price * 0.97
	}
	return price * (1 - 0.05*clamp(-score, 0, 1)), price * 1.03
}

var _ dservice.Generator = (*TechnicalGenerator)(nil)
