package signals

import (
	"math"
	"testing"
)

func TestLinearScorerIsDeterministic(t *testing.T) {
	s := NewLinearScorer()
	features := map[string]float64{
		FeatureRSIZone:      0.5,
		FeatureMACDCross:    1,
		FeatureBollingerPos: -0.3,
		FeatureTrend:        1,
		FeatureVolumeRatio:  0.2,
	}
	// 0.25*0.5 + 0.20*1 - 0.20*0.3 + 0.20*1 + 0.15*0.2 = 0.495
	want := 0.495
	first := s.Score(features)
	if math.Abs(first.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", first.Score, want)
	}
	for i := 0; i < 10; i++ {
		if got := s.Score(features); got != first {
			t.Fatalf("scorer not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestLinearScorerBoundsAndConfidence(t *testing.T) {
	s := NewLinearScorer()

	neutral := s.Score(map[string]float64{})
	if neutral.Score != 0 || math.Abs(neutral.Confidence-0.5) > 1e-9 {
		t.Fatalf("neutral = %+v", neutral)
	}

	// out-of-range features are clamped before weighting
	extreme := s.Score(map[string]float64{
		FeatureRSIZone:      99,
		FeatureMACDCross:    99,
		FeatureBollingerPos: 99,
		FeatureTrend:        99,
		FeatureVolumeRatio:  99,
	})
	if math.Abs(extreme.Score-1) > 1e-9 {
		t.Fatalf("extreme score = %v, want 1", extreme.Score)
	}
	if math.Abs(extreme.Confidence-0.95) > 1e-9 {
		t.Fatalf("extreme confidence = %v, want 0.95", extreme.Confidence)
	}
	if s.Name() != "linear" {
		t.Fatalf("name = %q", s.Name())
	}
}

func TestStochasticScorerSeededAndBounded(t *testing.T) {
	features := map[string]float64{FeatureTrend: 1}
	base := NewLinearScorer()
	baseScore := base.Score(features).Score

	a := NewStochasticScorer(NewLinearScorer(), 0.1, 42)
	b := NewStochasticScorer(NewLinearScorer(), 0.1, 42)

	for i := 0; i < 20; i++ {
		ra := a.Score(features)
		rb := b.Score(features)
		if ra != rb {
			t.Fatalf("same seed diverged at %d: %+v vs %+v", i, ra, rb)
		}
		if math.Abs(ra.Score-baseScore) > 0.1+1e-9 {
			t.Fatalf("noise exceeded jitter: %v vs base %v", ra.Score, baseScore)
		}
	}

	if a.Name() != "linear+noise" {
		t.Fatalf("name = %q", a.Name())
	}
}
