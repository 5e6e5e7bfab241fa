package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
)

const momentumHistory = 30 // enough closes for SMA20 and RSI14

// MomentumGenerator scores a symbol from rule-based checks over its recent
// price history: price vs SMA10/SMA20, the SMA crossover, and RSI extremes.
// Each rule contributes a fixed increment to a signed score.
type MomentumGenerator struct {
	bars drepo.BarStore
	freq models.Frequency
}

// NewMomentumGenerator creates the momentum model over the given bar store.
func NewMomentumGenerator(bars drepo.BarStore, freq models.Frequency) *MomentumGenerator {
	if freq == "" {
		freq = models.Freq1Day
	}
	return &MomentumGenerator{bars: bars, freq: freq}
}

func (g *MomentumGenerator) Model() string { return ModelMomentum }

func (g *MomentumGenerator) Generate(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	bars, err := g.bars.LatestBars(ctx, symbol, momentumHistory, historyFrequency(g.freq, timeframe))
	if err != nil {
		return models.Signal{}, fmt.Errorf("momentum %s: %w", symbol, err)
	}
	if len(bars) < 21 {
		return models.Signal{}, fmt.Errorf("momentum %s: %w", symbol,
			models.NewDataSourceError("history", symbol,
				fmt.Errorf("need 21 bars, have %d", len(bars))))
	}

	prices := closes(bars)
	price := prices[len(prices)-1]
	sma10 := sma(prices, 10)
	sma20 := sma(prices, 20)
	rsi14 := rsi(prices, 14)

	score := 0.0
	if price > sma10 {
		score++
	} else if price < sma10 {
		score--
	}
	if price > sma20 {
		score++
	} else if price < sma20 {
		score--
	}
	if sma10 > sma20 {
		score++
	} else if sma10 < sma20 {
		score--
	}
	switch {
	case rsi14 < 30:
		score += 2
	case rsi14 > 70:
		score -= 2
	}

	return models.Signal{
		Symbol:     symbol,
		Model:      ModelMomentum,
		Level:      momentumLevel(score),
		Confidence: clamp(0.4+0.1*abs(score), 0, 0.9),
		Score:      score,
		Reasoning: fmt.Sprintf("price=%.2f sma10=%.2f sma20=%.2f rsi=%.1f score=%+.0f",
			price, sma10, sma20, rsi14, score),
		Timestamp: time.Now(),
	}, nil
}

func momentumLevel(score float64) models.SignalLevel {
	switch {
	case score >= 4:
		return models.SignalStrongBuy
	case score >= 2:
		return models.SignalBuy
	case score >= 1:
		return models.SignalWeakBuy
	case score <= -4:
		return models.SignalStrongSell
	case score <= -2:
		return models.SignalSell
	case score <= -1:
		return models.SignalWeakSell
	default:
		return models.SignalHold
	}
}

var _ dservice.Generator = (*MomentumGenerator)(nil)
