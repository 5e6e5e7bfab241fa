package models

import "time"

// SignalLevel is a directional trading call on a seven-step scale.
type SignalLevel string

const (
	SignalStrongBuy  SignalLevel = "STRONG_BUY"
	SignalBuy        SignalLevel = "BUY"
	SignalWeakBuy    SignalLevel = "WEAK_BUY"
	SignalHold       SignalLevel = "HOLD"
	SignalWeakSell   SignalLevel = "WEAK_SELL"
	SignalSell       SignalLevel = "SELL"
	SignalStrongSell SignalLevel = "STRONG_SELL"
)

// Value maps a level onto the signed voting scale used by the ensemble.
func (l SignalLevel) Value() float64 {
	switch l {
	case SignalStrongBuy:
		return 2
	case SignalBuy:
		return 1
	case SignalWeakBuy:
		return 0.5
	case SignalWeakSell:
		return -0.5
	case SignalSell:
		return -1
	case SignalStrongSell:
		return -2
	default:
		return 0
	}
}

// LevelFromScore maps a continuous ensemble score back to a level using the
// symmetric threshold bands.
func LevelFromScore(score float64) SignalLevel {
	switch {
	case score > 1.5:
		return SignalStrongBuy
	case score > 0.7:
		return SignalBuy
	case score > 0.2:
		return SignalWeakBuy
	case score < -1.5:
		return SignalStrongSell
	case score < -0.7:
		return SignalSell
	case score < -0.2:
		return SignalWeakSell
	default:
		return SignalHold
	}
}

// Signal is one model's output. Immutable once produced.
type Signal struct {
	Symbol     string      `json:"symbol"`
	Model      string      `json:"model"`
	Level      SignalLevel `json:"signal"`
	Confidence float64     `json:"confidence"` // [0,1]
	Reasoning  string      `json:"reasoning"`
	Timestamp  time.Time   `json:"timestamp"`

	// Model-specific auxiliary fields.
	TargetPrice   float64 `json:"target_price,omitempty"`
	StopLoss      float64 `json:"stop_loss,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Deviation     float64 `json:"deviation,omitempty"`      // mean reversion, σ units
	BreakoutLevel float64 `json:"breakout_level,omitempty"` // breakout resistance/support
}

// EnsembleSignal is the combined recommendation over the component models.
type EnsembleSignal struct {
	Symbol     string      `json:"symbol"`
	Level      SignalLevel `json:"signal"`
	Score      float64     `json:"score"`
	Confidence float64     `json:"confidence"`
	Consensus  float64     `json:"consensus"` // [0,1], 1 = unanimous
	Components []Signal    `json:"components"`
	Timestamp  time.Time   `json:"timestamp"`
}
