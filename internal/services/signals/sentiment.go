package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	dservice "MarketPulse/internal/domain/service"

	"golang.org/x/sync/errgroup"
)

// Source weights for the combined sentiment score. They sum to 1.
const (
	newsWeight    = 0.40
	analystWeight = 0.35
	socialWeight  = 0.25
)

// SentimentGenerator combines news, social, and analyst sentiment into one
// directional call. The three sources are fetched concurrently; any source
// failure fails the generation, no substitute data is synthesized.
type SentimentGenerator struct {
	provider dservice.SentimentProvider
}

// NewSentimentGenerator creates the sentiment model.
func NewSentimentGenerator(provider dservice.SentimentProvider) *SentimentGenerator {
	return &SentimentGenerator{provider: provider}
}

func (g *SentimentGenerator) Model() string { return ModelSentiment }

// Generate fans out the three sources and maps the weighted score through the
// fixed thresholds.
func (g *SentimentGenerator) Generate(ctx context.Context, symbol, _ string) (models.Signal, error) {
	var news, social, analyst dservice.SentimentScore

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		news, err = g.provider.NewsSentiment(egCtx, symbol)
		return err
	})
	eg.Go(func() error {
		var err error
		social, err = g.provider.SocialSentiment(egCtx, symbol)
		return err
	})
	eg.Go(func() error {
		var err error
		analyst, err = g.provider.AnalystSentiment(egCtx, symbol)
		return err
	})
	if err := eg.Wait(); err != nil {
		return models.Signal{}, fmt.Errorf("sentiment %s: %w", symbol, err)
	}

	score := newsWeight*news.Score + socialWeight*social.Score + analystWeight*analyst.Score
	confidence := (news.Confidence + social.Confidence + analyst.Confidence) / 3

	return models.Signal{
		Symbol:     symbol,
		Model:      ModelSentiment,
		Level:      sentimentLevel(score),
		Confidence: clamp(confidence, 0, 1),
		Score:      score,
		Reasoning: fmt.Sprintf("news=%.2f social=%.2f analyst=%.2f combined=%.2f",
			news.Score, social.Score, analyst.Score, score),
		Timestamp: time.Now(),
	}, nil
}

func sentimentLevel(score float64) models.SignalLevel {
	switch {
	case score > 0.7:
		return models.SignalStrongBuy
	case score > 0.3:
		return models.SignalBuy
	case score < -0.7:
		return models.SignalStrongSell
	case score < -0.3:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

var _ dservice.Generator = (*SentimentGenerator)(nil)
