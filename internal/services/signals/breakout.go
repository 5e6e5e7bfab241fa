package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
)

const (
	breakoutWindow    = 20
	breakoutVolWindow = 10
	volumeConfirmMult = 1.5

	breakoutConfirmedConf   = 0.75
	breakoutUnconfirmedConf = 0.5
	breakoutHoldConf        = 0.4
)

// BreakoutGenerator compares the latest close against the prior 20-period
// high/low (excluding the latest bar) and checks for a volume surge. It is
// not part of the ensemble; callers request it standalone.
type BreakoutGenerator struct {
	bars drepo.BarStore
	freq models.Frequency
}

// NewBreakoutGenerator creates the breakout model.
func NewBreakoutGenerator(bars drepo.BarStore, freq models.Frequency) *BreakoutGenerator {
	if freq == "" {
		freq = models.Freq1Day
	}
	return &BreakoutGenerator{bars: bars, freq: freq}
}

func (g *BreakoutGenerator) Model() string { return ModelBreakout }

func (g *BreakoutGenerator) Generate(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	bars, err := g.bars.LatestBars(ctx, symbol, breakoutWindow+1, historyFrequency(g.freq, timeframe))
	if err != nil {
		return models.Signal{}, fmt.Errorf("breakout %s: %w", symbol, err)
	}

	sig := models.Signal{
		Symbol:    symbol,
		Model:     ModelBreakout,
		Timestamp: time.Now(),
	}

	// Too little history to place a high/low range; a low-confidence hold
	// beats an error here because thin history is routine for new listings.
	if len(bars) < breakoutWindow {
		sig.Level = models.SignalHold
		sig.Confidence = 0.3
		sig.Reasoning = fmt.Sprintf("insufficient data: %d of %d bars", len(bars), breakoutWindow)
		return sig, nil
	}

	latest := bars[len(bars)-1]
	prior := bars[:len(bars)-1]
	if len(prior) > breakoutWindow {
		prior = prior[len(prior)-breakoutWindow:]
	}

	resistance, support := prior[0].High, prior[0].Low
	for _, b := range prior[1:] {
		if b.High > resistance {
			resistance = b.High
		}
		if b.Low < support {
			support = b.Low
		}
	}

	volWindow := prior
	if len(volWindow) > breakoutVolWindow {
		volWindow = volWindow[len(volWindow)-breakoutVolWindow:]
	}
	avgVol := 0.0
	for _, b := range volWindow {
		avgVol += b.Volume
	}
	avgVol /= float64(len(volWindow))
	confirmed := avgVol > 0 && latest.Volume > volumeConfirmMult*avgVol

	switch {
	case latest.Close > resistance:
		sig.Level = models.SignalBuy
		sig.BreakoutLevel = resistance
		sig.Confidence = breakoutUnconfirmedConf
		if confirmed {
			sig.Confidence = breakoutConfirmedConf
		}
		sig.Reasoning = fmt.Sprintf("close %.2f above %d-period high %.2f, volume %.1fx avg (confirmed=%t)",
			latest.Close, breakoutWindow, resistance, volumeRatio(latest.Volume, avgVol), confirmed)
	case latest.Close < support:
		sig.Level = models.SignalSell
		sig.BreakoutLevel = support
		sig.Confidence = breakoutUnconfirmedConf
		if confirmed {
			sig.Confidence = breakoutConfirmedConf
		}
		sig.Reasoning = fmt.Sprintf("close %.2f below %d-period low %.2f, volume %.1fx avg (confirmed=%t)",
			latest.Close, breakoutWindow, support, volumeRatio(latest.Volume, avgVol), confirmed)
	default:
		sig.Level = models.SignalHold
		sig.Confidence = breakoutHoldConf
		sig.Reasoning = fmt.Sprintf("close %.2f inside range [%.2f, %.2f]", latest.Close, support, resistance)
	}
	return sig, nil
}

func volumeRatio(vol, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	return vol / avg
}

var _ dservice.Generator = (*BreakoutGenerator)(nil)
