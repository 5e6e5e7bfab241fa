package signals

import (
	"math/rand"
	"sync"

	dservice "MarketPulse/internal/domain/service"
)

// Feature names produced by the technical generator and consumed by scorers.
const (
	FeatureRSIZone      = "rsi_zone"
	FeatureMACDCross    = "macd_cross"
	FeatureBollingerPos = "bollinger_pos"
	FeatureTrend        = "trend"
	FeatureVolumeRatio  = "volume_ratio"
)

// LinearScorer is the default deterministic model: a fixed-weight linear
// combination of the normalized features, confidence from score magnitude.
type LinearScorer struct {
	weights map[string]float64
}

// NewLinearScorer creates the scorer with the standard feature weights.
func NewLinearScorer() *LinearScorer {
	return &LinearScorer{
		weights: map[string]float64{
			FeatureRSIZone:      0.25,
			FeatureMACDCross:    0.20,
			FeatureBollingerPos: 0.20,
			FeatureTrend:        0.20,
			FeatureVolumeRatio:  0.15,
		},
	}
}

func (s *LinearScorer) Name() string { return "linear" }

// Score combines the features. Each feature is expected in [-1, 1]; the result
// stays in [-1, 1] because the weights sum to 1.
func (s *LinearScorer) Score(features map[string]float64) dservice.ScoreResult {
	score := 0.0
	for name, w := range s.weights {
		score += w * clamp(features[name], -1, 1)
	}
	return dservice.ScoreResult{
		Score:      score,
		Confidence: clamp(0.5+0.45*abs(score), 0, 0.95),
	}
}

// StochasticScorer wraps another scorer and adds bounded, seeded noise to the
// score. It exists for demo environments and is only selected by explicit
// configuration, never as a silent default.
type StochasticScorer struct {
	base   dservice.Scorer
	jitter float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStochasticScorer wraps base with uniform noise in [-jitter, jitter].
func NewStochasticScorer(base dservice.Scorer, jitter float64, seed int64) *StochasticScorer {
	if jitter <= 0 {
		jitter = 0.1
	}
	return &StochasticScorer{
		base:   base,
		jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *StochasticScorer) Name() string { return s.base.Name() + "+noise" }

func (s *StochasticScorer) Score(features map[string]float64) dservice.ScoreResult {
	res := s.base.Score(features)
	s.mu.Lock()
	noise := (s.rng.Float64()*2 - 1) * s.jitter
	s.mu.Unlock()
	res.Score = clamp(res.Score+noise, -1, 1)
	return res
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var (
	_ dservice.Scorer = (*LinearScorer)(nil)
	_ dservice.Scorer = (*StochasticScorer)(nil)
)
