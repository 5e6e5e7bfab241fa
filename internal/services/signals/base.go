package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// Model names as they appear in signal payloads and API routes.
const (
	ModelTechnical     = "technical"
	ModelSentiment     = "sentiment"
	ModelMomentum      = "momentum"
	ModelMeanReversion = "mean_reversion"
	ModelBreakout      = "breakout"
	ModelEnsemble      = "ensemble"
)

// historyFrequency picks the bar interval backing a signal timeframe. The day
// horizon reads bars at the configured interval; week and month horizons
// coarsen to daily bars. Anything else falls back to the configured interval,
// so a timeframe value never reaches the bar store as a frequency.
func historyFrequency(base models.Frequency, timeframe string) models.Frequency {
	switch timeframe {
	case models.Timeframe1W, models.Timeframe1M:
		return models.Freq1Day
	default:
		return base
	}
}

// HTTPServiceBase provides a DRY foundation for the analytics HTTP providers.
// It centralizes client construction and JSON request handling.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client for the analytics service.
func NewHTTPServiceBase(baseURL string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("analytics http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry posts JSON with up to `attempts` retries for transient errors.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.PostJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.PostJSON(ctx, path, payload, dest)
		if err == nil {
			return nil
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
