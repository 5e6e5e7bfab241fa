package signals

import (
	"context"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
)

// AnalyticsService implements the indicator and sentiment providers over the
// analytics HTTP API. Failures carry the source and symbol so generator errors
// identify exactly which fetch broke.
type AnalyticsService struct {
	*HTTPServiceBase
}

// NewAnalyticsService creates the HTTP-backed analytics providers.
func NewAnalyticsService(base *HTTPServiceBase) *AnalyticsService {
	return &AnalyticsService{HTTPServiceBase: base}
}

type indicatorRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

type indicatorResponse struct {
	RSI          float64 `json:"rsi"`
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	BollingerPos float64 `json:"bollinger_position"`
	SMA20        float64 `json:"sma_20"`
	SMA50        float64 `json:"sma_50"`
	Price        float64 `json:"price"`
	VolumeRatio  float64 `json:"volume_ratio"`
}

// Indicators fetches the technical indicator snapshot for a symbol.
func (s *AnalyticsService) Indicators(ctx context.Context, symbol, timeframe string) (dservice.IndicatorSet, error) {
	var resp indicatorResponse
	req := indicatorRequest{Symbol: symbol, Timeframe: timeframe}
	if err := s.PostJSONWithRetry(ctx, "/indicators", req, &resp, 2); err != nil {
		return dservice.IndicatorSet{}, models.NewDataSourceError("indicators", symbol, err)
	}
	return dservice.IndicatorSet{
		RSI:          resp.RSI,
		MACD:         resp.MACD,
		MACDSignal:   resp.MACDSignal,
		BollingerPos: resp.BollingerPos,
		SMA20:        resp.SMA20,
		SMA50:        resp.SMA50,
		Price:        resp.Price,
		VolumeRatio:  resp.VolumeRatio,
	}, nil
}

type sentimentRequest struct {
	Symbol string `json:"symbol"`
}

type sentimentResponse struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

func (s *AnalyticsService) fetchSentiment(ctx context.Context, source, path, symbol string) (dservice.SentimentScore, error) {
	var resp sentimentResponse
	if err := s.PostJSON(ctx, path, sentimentRequest{Symbol: symbol}, &resp); err != nil {
		return dservice.SentimentScore{}, models.NewDataSourceError(source, symbol, err)
	}
	return dservice.SentimentScore{Score: resp.Score, Confidence: resp.Confidence}, nil
}

// NewsSentiment fetches the news sentiment reading for a symbol.
func (s *AnalyticsService) NewsSentiment(ctx context.Context, symbol string) (dservice.SentimentScore, error) {
	return s.fetchSentiment(ctx, "news_sentiment", "/sentiment/news", symbol)
}

// SocialSentiment fetches the social sentiment reading for a symbol.
func (s *AnalyticsService) SocialSentiment(ctx context.Context, symbol string) (dservice.SentimentScore, error) {
	return s.fetchSentiment(ctx, "social_sentiment", "/sentiment/social", symbol)
}

// AnalystSentiment fetches the analyst sentiment reading for a symbol.
func (s *AnalyticsService) AnalystSentiment(ctx context.Context, symbol string) (dservice.SentimentScore, error) {
	return s.fetchSentiment(ctx, "analyst_sentiment", "/sentiment/analyst", symbol)
}

type historyRequest struct {
	Symbol    string `json:"symbol"`
	Limit     int    `json:"limit"`
	Frequency string `json:"frequency"`
}

type historyResponse struct {
	Bars []models.Bar `json:"bars"`
}

// LatestBars fetches price history over HTTP. It is the bar store used when no
// local ClickHouse history is configured. Bars come back oldest first.
func (s *AnalyticsService) LatestBars(ctx context.Context, symbol string, n int, freq models.Frequency) ([]models.Bar, error) {
	var resp historyResponse
	req := historyRequest{Symbol: symbol, Limit: n, Frequency: string(freq)}
	if err := s.PostJSONWithRetry(ctx, "/history", req, &resp, 2); err != nil {
		return nil, models.NewDataSourceError("history", symbol, err)
	}
	return resp.Bars, nil
}

var (
	_ dservice.IndicatorProvider = (*AnalyticsService)(nil)
	_ dservice.SentimentProvider = (*AnalyticsService)(nil)
	_ drepo.BarStore             = (*AnalyticsService)(nil)
)
