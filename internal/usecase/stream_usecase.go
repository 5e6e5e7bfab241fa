package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/middleware"
	"MarketPulse/internal/stream"
	applogger "MarketPulse/pkg/logger"
)

// ErrNoHistory is returned when no bar history backend is configured.
var ErrNoHistory = errors.New("history store not configured")

// MarketDataView is one cached payload plus freshness, as served over HTTP.
type MarketDataView struct {
	Symbol     string          `json:"symbol"`
	DataType   models.DataType `json:"data_type"`
	Data       interface{}     `json:"data"`
	ReceivedAt time.Time       `json:"received_at"`
	Stale      bool            `json:"stale"`
}

// StreamUsecase owns the streaming side: it starts and stops the tap pipeline,
// the bar recorder, and the connection, and adapts the stream client for the
// HTTP handlers.
type StreamUsecase struct {
	client   *stream.Client
	pipeline *middleware.TapPipeline
	recorder *BarRecorder
	bars     drepo.BarStore
	log      *applogger.Logger
}

// NewStreamUsecase wires the streaming components. pipeline, recorder, and
// bars may be nil when the Kafka tap or bar history are disabled.
func NewStreamUsecase(client *stream.Client, pipeline *middleware.TapPipeline, recorder *BarRecorder, bars drepo.BarStore, log *applogger.Logger) *StreamUsecase {
	return &StreamUsecase{client: client, pipeline: pipeline, recorder: recorder, bars: bars, log: log}
}

// Start brings up downstream consumers before connecting, so no early message
// is lost between connect and consumer registration.
func (u *StreamUsecase) Start(ctx context.Context) error {
	if u.pipeline != nil {
		u.pipeline.Start(ctx)
	}
	if u.recorder != nil {
		u.recorder.Start()
	}
	if err := u.client.Connect(ctx); err != nil {
		u.log.Error("initial connect failed", applogger.Error(err))
		return err
	}
	return nil
}

// Stop disconnects and tears down the consumers.
func (u *StreamUsecase) Stop() {
	_ = u.client.Disconnect()
	if u.recorder != nil {
		u.recorder.Stop()
	}
	if u.pipeline != nil {
		u.pipeline.Stop()
	}
}

// Subscribe validates nothing itself; the HTTP layer has already bound and
// validated the request.
func (u *StreamUsecase) Subscribe(ctx context.Context, req *models.SubscribeRequest) (models.Subscription, error) {
	id, err := u.client.Subscribe(ctx, req.Symbols,
		models.DataType(req.DataType), models.Frequency(req.Frequency))
	if err != nil {
		return models.Subscription{}, err
	}
	if s, found := u.subscription(id); found {
		return s, nil
	}
	return models.Subscription{ID: id}, nil
}

func (u *StreamUsecase) subscription(id string) (models.Subscription, bool) {
	for _, s := range u.client.Subscriptions() {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subscription{}, false
}

// Unsubscribe removes one subscription.
func (u *StreamUsecase) Unsubscribe(ctx context.Context, id string) error {
	return u.client.Unsubscribe(ctx, id)
}

// UnsubscribeAll removes every subscription.
func (u *StreamUsecase) UnsubscribeAll(ctx context.Context) error {
	return u.client.UnsubscribeAll(ctx)
}

// Subscriptions lists the confirmed subscriptions.
func (u *StreamUsecase) Subscriptions() []models.Subscription {
	return u.client.Subscriptions()
}

// SubscriptionsFor lists the subscriptions whose symbol set includes symbol.
func (u *StreamUsecase) SubscriptionsFor(symbol string) []models.Subscription {
	return filterCovering(u.client.Subscriptions(), symbol)
}

// filterCovering keeps the subscriptions covering symbol. The symbol is
// uppercased to match registry normalization.
func filterCovering(subs []models.Subscription, symbol string) []models.Subscription {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	out := make([]models.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Covers(symbol) {
			out = append(out, s)
		}
	}
	return out
}

// Feeds lists the provider's available feeds.
func (u *StreamUsecase) Feeds() []string {
	return u.client.AvailableFeeds()
}

// Status returns the connection state.
func (u *StreamUsecase) Status() stream.State {
	return u.client.Status()
}

// Metrics returns the stream counters snapshot.
func (u *StreamUsecase) Metrics() stream.StreamMetrics {
	return u.client.Metrics()
}

// Health returns the liveness summary.
func (u *StreamUsecase) Health() stream.Health {
	return u.client.HealthCheck()
}

// SymbolData returns every cached data type for a symbol with staleness flags.
func (u *StreamUsecase) SymbolData(symbol string, maxAge time.Duration) []MarketDataView {
	entries := u.client.SymbolData(symbol)
	out := make([]MarketDataView, 0, len(entries))
	for dt, e := range entries {
		out = append(out, MarketDataView{
			Symbol:     e.Symbol,
			DataType:   dt,
			Data:       e.Data,
			ReceivedAt: e.ReceivedAt,
			Stale:      u.client.IsDataStale(symbol, dt, maxAge),
		})
	}
	return out
}

// History returns the most recent stored bars for a symbol, oldest first.
// Bars older than since are dropped when since is non-zero.
func (u *StreamUsecase) History(ctx context.Context, symbol string, limit int, freq models.Frequency, since time.Time) ([]models.Bar, error) {
	if u.bars == nil {
		return nil, ErrNoHistory
	}
	bars, err := u.bars.LatestBars(ctx, symbol, limit, freq)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return bars, nil
	}
	cutoff := since.UnixMilli()
	out := bars[:0]
	for _, b := range bars {
		if b.Timestamp >= cutoff {
			out = append(out, b)
		}
	}
	return out, nil
}

// TypedData returns the latest cached payload for (symbol, dataType).
func (u *StreamUsecase) TypedData(symbol string, dt models.DataType, maxAge time.Duration) (MarketDataView, bool) {
	entries := u.client.SymbolData(symbol)
	e, ok := entries[dt]
	if !ok {
		return MarketDataView{}, false
	}
	return MarketDataView{
		Symbol:     e.Symbol,
		DataType:   dt,
		Data:       e.Data,
		ReceivedAt: e.ReceivedAt,
		Stale:      u.client.IsDataStale(symbol, dt, maxAge),
	}, true
}
