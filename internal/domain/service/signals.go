package service

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// Generator is one independent signal model.
type Generator interface {
	Model() string
	Generate(ctx context.Context, symbol, timeframe string) (models.Signal, error)
}

// IndicatorSet is the technical indicator snapshot the technical model consumes.
type IndicatorSet struct {
	RSI           float64
	MACD          float64
	MACDSignal    float64
	BollingerPos  float64 // position within the bands, [-1,1]
	SMA20         float64
	SMA50         float64
	Price         float64
	VolumeRatio   float64 // current volume / average volume
}

// IndicatorProvider fetches technical indicators for a symbol.
type IndicatorProvider interface {
	Indicators(ctx context.Context, symbol, timeframe string) (IndicatorSet, error)
}

// SentimentScore is one source's reading: score in [-1,1], confidence in [0,1].
type SentimentScore struct {
	Score      float64
	Confidence float64
}

// SentimentProvider fetches the three independent sentiment sources.
type SentimentProvider interface {
	NewsSentiment(ctx context.Context, symbol string) (SentimentScore, error)
	SocialSentiment(ctx context.Context, symbol string) (SentimentScore, error)
	AnalystSentiment(ctx context.Context, symbol string) (SentimentScore, error)
}

// ScoreResult is the output of a scoring strategy.
type ScoreResult struct {
	Score      float64 // signed, roughly [-1,1]
	Confidence float64 // [0,1]
}

// Scorer maps technical features to a prediction. A deterministic linear model
// is the default; a stochastic variant exists for demos but must be selected
// explicitly, never silently.
type Scorer interface {
	Name() string
	Score(features map[string]float64) ScoreResult
}
