package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
)

const reversionWindow = 20

// MeanReversionGenerator measures how far the latest close sits from the
// window mean in standard-deviation units and bets on reversion: stretched
// above the mean argues sell, stretched below argues buy.
type MeanReversionGenerator struct {
	bars drepo.BarStore
	freq models.Frequency
}

// NewMeanReversionGenerator creates the mean-reversion model.
func NewMeanReversionGenerator(bars drepo.BarStore, freq models.Frequency) *MeanReversionGenerator {
	if freq == "" {
		freq = models.Freq1Day
	}
	return &MeanReversionGenerator{bars: bars, freq: freq}
}

func (g *MeanReversionGenerator) Model() string { return ModelMeanReversion }

func (g *MeanReversionGenerator) Generate(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	bars, err := g.bars.LatestBars(ctx, symbol, reversionWindow, historyFrequency(g.freq, timeframe))
	if err != nil {
		return models.Signal{}, fmt.Errorf("mean reversion %s: %w", symbol, err)
	}
	if len(bars) < reversionWindow {
		return models.Signal{}, fmt.Errorf("mean reversion %s: %w", symbol,
			models.NewDataSourceError("history", symbol,
				fmt.Errorf("need %d bars, have %d", reversionWindow, len(bars))))
	}

	prices := closes(bars)
	price := prices[len(prices)-1]
	m := mean(prices)
	sd := stddev(prices)

	sig := models.Signal{
		Symbol:    symbol,
		Model:     ModelMeanReversion,
		Timestamp: time.Now(),
	}

	// A flat series has no band to revert within.
	if sd == 0 {
		sig.Level = models.SignalHold
		sig.Confidence = 0.2
		sig.Reasoning = fmt.Sprintf("flat series around %.2f, no deviation signal", m)
		return sig, nil
	}

	dev := (price - m) / sd
	sig.Deviation = dev
	sig.TargetPrice = m
	sig.Level, sig.Confidence = reversionLevel(dev)
	sig.Reasoning = fmt.Sprintf("price=%.2f mean=%.2f deviation=%+.2fσ", price, m, dev)
	return sig, nil
}

func reversionLevel(dev float64) (models.SignalLevel, float64) {
	switch {
	case dev > 2:
		return models.SignalSell, 0.8
	case dev > 1:
		return models.SignalWeakSell, 0.6
	case dev < -2:
		return models.SignalBuy, 0.8
	case dev < -1:
		return models.SignalWeakBuy, 0.6
	default:
		return models.SignalHold, 0.4
	}
}

var _ dservice.Generator = (*MeanReversionGenerator)(nil)
