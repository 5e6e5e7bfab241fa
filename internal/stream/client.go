package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"

	"github.com/google/uuid"
)

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	// StateFailed is entered after reconnect attempts are exhausted. Only an
	// explicit Connect leaves it.
	StateFailed State = "FAILED"
)

// ClientConfig tunes the connection manager.
type ClientConfig struct {
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBase        time.Duration
	ReconnectMax         time.Duration
	MaxReconnectAttempts int
	ConfirmTimeout       time.Duration
	HealthMaxSilence     time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = 10
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = 5 * time.Second
	}
	if c.HealthMaxSilence <= 0 {
		c.HealthMaxSilence = 2 * time.Minute
	}
}

// backoffDelay implements min(base * 2^(attempt-1), max) for attempt >= 1.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// shifting past 30 would overflow any sane base; it is past max anyway
	if attempt > 30 {
		return max
	}
	d := base << uint(attempt-1)
	if d > max || d <= 0 {
		return max
	}
	return d
}

type confirmResult struct {
	subscriptionID string
	err            error
}

// watchSetter is implemented by transports that poll a symbol set locally.
type watchSetter interface {
	SetWatch(map[models.DataType][]string)
}

// Client is the connection manager: it owns one logical link to the provider,
// routes inbound messages into the cache and event bus, keeps the registry in
// sync, and recovers from transport failures with bounded exponential backoff.
//
// After an unintentional disconnect the client automatically reissues every
// registered subscription once reconnected; callers never resubscribe manually.
type Client struct {
	transport drepo.Transport
	bus       *Bus
	cache     *Cache
	registry  *Registry
	sink      drepo.MarketDataSink
	metrics   drepo.Metrics
	log       *applogger.Logger
	cfg       ClientConfig

	mu           sync.Mutex
	state        State
	attempt      int
	intentional  bool
	connectedAt  time.Time
	feeds        []string
	awaitingPong bool
	pending      map[string]chan confirmResult
	runCancel    context.CancelFunc

	msgsReceived atomic.Int64
	dropped      atomic.Int64
	reconnects   atomic.Int64
	lastMsgNano  atomic.Int64

	latMu      sync.Mutex
	latencyEMA float64 // milliseconds
	hasLatency bool
}

// ClientOption configures optional collaborators.
type ClientOption func(*Client)

// WithSink forwards every accepted market-data payload downstream.
func WithSink(s drepo.MarketDataSink) ClientOption {
	return func(c *Client) { c.sink = s }
}

// NewClient creates a connection manager over the given transport.
func NewClient(
	t drepo.Transport,
	bus *Bus,
	cache *Cache,
	registry *Registry,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg ClientConfig,
	opts ...ClientOption,
) *Client {
	cfg.applyDefaults()
	c := &Client{
		transport: t,
		bus:       bus,
		cache:     cache,
		registry:  registry,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		state:     StateDisconnected,
		pending:   make(map[string]chan confirmResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bus returns the event bus consumers subscribe on.
func (c *Client) Bus() *Bus { return c.bus }

// Connect establishes the transport. Connecting while already connected is a
// no-op; a dial still in progress returns ErrAlreadyConnecting.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting {
		c.mu.Unlock()
		return models.ErrAlreadyConnecting
	}
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.intentional = false
	c.mu.Unlock()

	c.metrics.RecordConnectionState(string(StateConnecting))
	c.bus.Emit(TopicConnecting, nil)

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	if err := c.transport.Open(dialCtx); err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.metrics.RecordError("connect")
		c.metrics.RecordConnectionState(string(StateDisconnected))
		return fmt.Errorf("connect: %w", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.state = StateConnected
	c.attempt = 0
	c.connectedAt = time.Now()
	c.awaitingPong = false
	c.runCancel = runCancel
	c.mu.Unlock()

	c.metrics.RecordConnectionState(string(StateConnected))
	c.bus.Emit(TopicConnected, nil)
	c.log.Info("stream connected")

	go c.run(runCtx)
	go c.heartbeat(runCtx)

	// Feed discovery and subscription reissue are best-effort; a failure here
	// surfaces through the transport error path.
	_ = c.transport.Send(ctx, &models.Envelope{Type: models.MsgGetFeeds})
	c.resubscribeAll(ctx)
	return nil
}

// Disconnect performs an intentional close. It never triggers reconnection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state == StateDisconnected || c.state == StateFailed {
		c.mu.Unlock()
		return nil
	}
	c.intentional = true
	c.state = StateDisconnected
	cancel := c.runCancel
	c.runCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := c.transport.Close()
	c.failPending(models.ErrNotConnected)
	c.metrics.RecordConnectionState(string(StateDisconnected))
	c.bus.Emit(TopicDisconnected, nil)
	c.log.Info("stream disconnected")
	return err
}

func (c *Client) run(ctx context.Context) {
	msgs := c.transport.Messages()
	errs := c.transport.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			if err == nil {
				continue
			}
			c.handleFailure(err)
			return
		case raw, ok := <-msgs:
			if !ok {
				c.handleFailure(fmt.Errorf("transport channel closed"))
				return
			}
			c.handleMessage(raw)
		}
	}
}

func (c *Client) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != StateConnected {
				c.mu.Unlock()
				return
			}
			if c.awaitingPong {
				c.mu.Unlock()
				c.handleFailure(fmt.Errorf("heartbeat: pong overdue"))
				return
			}
			c.awaitingPong = true
			c.mu.Unlock()

			env := &models.Envelope{Type: models.MsgPing, Timestamp: time.Now().UnixMilli()}
			if err := c.transport.Send(ctx, env); err != nil {
				c.handleFailure(fmt.Errorf("heartbeat send: %w", err))
				return
			}
		}
	}
}

// handleFailure runs the unintentional-close path: emit lifecycle events, fail
// pending confirmations, and kick off the backoff reconnect loop.
func (c *Client) handleFailure(err error) {
	c.mu.Lock()
	if c.intentional || c.state == StateDisconnected || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	cancel := c.runCancel
	c.runCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	_ = c.transport.Close()
	c.failPending(err)

	c.metrics.RecordError("transport")
	c.metrics.RecordConnectionState(string(StateDisconnected))
	c.bus.Emit(TopicError, err)
	c.bus.Emit(TopicDisconnected, err)
	c.log.Warn("stream connection lost", applogger.Error(err))

	go c.reconnectLoop()
}

func (c *Client) reconnectLoop() {
	for {
		c.mu.Lock()
		if c.intentional || c.state != StateDisconnected {
			c.mu.Unlock()
			return
		}
		c.attempt++
		attempt := c.attempt
		c.mu.Unlock()

		if attempt > c.cfg.MaxReconnectAttempts {
			c.mu.Lock()
			c.state = StateFailed
			c.mu.Unlock()
			c.metrics.RecordConnectionState(string(StateFailed))
			c.bus.Emit(TopicExhausted, models.ErrReconnectExhausted)
			c.log.Error("stream reconnect exhausted",
				applogger.Int("attempts", c.cfg.MaxReconnectAttempts))
			return
		}

		delay := backoffDelay(attempt, c.cfg.ReconnectBase, c.cfg.ReconnectMax)
		c.log.Info("stream reconnect scheduled",
			applogger.Int("attempt", attempt),
			applogger.Duration("delay_ms", delay))
		time.Sleep(delay)

		c.mu.Lock()
		if c.intentional {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		c.reconnects.Add(1)
		c.metrics.RecordReconnect()

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		err := c.Connect(ctx)
		cancel()
		if err == nil {
			return
		}
		c.log.Warn("stream reconnect failed",
			applogger.Int("attempt", attempt), applogger.Error(err))
	}
}

// resubscribeAll reissues every registered subscription, keeping ids stable.
func (c *Client) resubscribeAll(ctx context.Context) {
	subs := c.registry.List()
	for _, sub := range subs {
		env := &models.Envelope{
			Type:           models.MsgSubscribe,
			SubscriptionID: sub.ID,
			Symbols:        sub.Symbols,
			DataType:       sub.DataType,
			Frequency:      sub.Frequency,
		}
		if err := c.transport.Send(ctx, env); err != nil {
			c.log.Warn("resubscribe failed",
				applogger.String("subscription", sub.ID), applogger.Error(err))
			return
		}
	}
	if len(subs) > 0 {
		c.log.Info("subscriptions reissued", applogger.Int("count", len(subs)))
	}
}

// ---- inbound routing ----

func (c *Client) handleMessage(raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		c.dropped.Add(1)
		c.metrics.RecordDropped("malformed")
		return
	}
	c.msgsReceived.Add(1)
	c.lastMsgNano.Store(time.Now().UnixNano())

	switch env.Type {
	case models.MsgMarketData:
		c.handleMarketData(&env)
	case models.MsgSubscribed:
		c.handleSubscribed(&env)
	case models.MsgUnsubscribed:
		c.handleUnsubscribed(&env)
	case models.MsgSubscriptions:
		c.registry.ReplaceAll(env.Subscriptions)
	case models.MsgFeeds:
		c.mu.Lock()
		c.feeds = env.Feeds
		c.mu.Unlock()
		c.bus.Emit(TopicFeeds, env.Feeds)
	case models.MsgPong:
		c.mu.Lock()
		c.awaitingPong = false
		c.mu.Unlock()
	case models.MsgError:
		c.metrics.RecordError("provider")
		c.bus.Emit(TopicError, fmt.Errorf("provider: %s", env.Message))
		c.log.Warn("provider error", applogger.String("message", env.Message))
	default:
		c.dropped.Add(1)
		c.metrics.RecordDropped("unknown_type")
	}
}

func (c *Client) handleMarketData(env *models.Envelope) {
	if env.Symbol == "" || !models.IsValidDataType(env.DataType) {
		c.dropped.Add(1)
		c.metrics.RecordDropped("invalid_market_data")
		return
	}
	if env.Timestamp > 0 {
		c.observeLatency(time.Since(time.UnixMilli(env.Timestamp)))
	}

	md := &models.MarketData{
		Symbol:    env.Symbol,
		DataType:  env.DataType,
		Data:      env.Data,
		Timestamp: env.Timestamp,
	}
	c.cache.Put(md)
	c.metrics.RecordMessage(string(md.DataType), md.Symbol)
	c.bus.EmitMarketData(md)

	if c.sink != nil {
		if err := c.sink.Process(context.Background(), md); err != nil {
			c.metrics.RecordError("sink")
		}
	}
}

func (c *Client) handleSubscribed(env *models.Envelope) {
	sub := models.Subscription{
		ID:           env.SubscriptionID,
		Symbols:      models.NormalizeSymbols(env.Symbols),
		DataType:     env.DataType,
		Frequency:    env.Frequency,
		SubscribedAt: time.Now(),
	}
	if prev, ok := c.registry.Get(sub.ID); ok {
		// reissue after reconnect keeps the original subscription time
		sub.SubscribedAt = prev.SubscribedAt
	}
	c.registry.Add(sub)
	c.resolvePending(env.RequestID, confirmResult{subscriptionID: sub.ID})
	c.bus.Emit(TopicSubscribed, sub)
}

func (c *Client) handleUnsubscribed(env *models.Envelope) {
	if env.SubscriptionID == "" {
		c.registry.Clear()
	} else {
		c.registry.Remove(env.SubscriptionID)
	}
	c.syncWatch()
	c.resolvePending(env.RequestID, confirmResult{subscriptionID: env.SubscriptionID})
	c.bus.Emit(TopicUnsubscribed, env.SubscriptionID)
}

// syncWatch rebuilds a polling transport's symbol sets from the registry.
func (c *Client) syncWatch() {
	ws, ok := c.transport.(watchSetter)
	if !ok {
		return
	}
	byType := make(map[models.DataType][]string)
	for _, sub := range c.registry.List() {
		byType[sub.DataType] = append(byType[sub.DataType], sub.Symbols...)
	}
	ws.SetWatch(byType)
}

func (c *Client) observeLatency(sample time.Duration) {
	ms := float64(sample.Milliseconds())
	if ms < 0 {
		ms = 0
	}
	c.latMu.Lock()
	if !c.hasLatency {
		c.latencyEMA = ms
		c.hasLatency = true
	} else {
		c.latencyEMA = 0.8*c.latencyEMA + 0.2*ms
	}
	c.latMu.Unlock()
	c.metrics.RecordStreamLatency(ms / 1000)
}

// ---- pending confirmation bookkeeping ----

func (c *Client) resolvePending(requestID string, res confirmResult) {
	if requestID == "" {
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[requestID]
	delete(c.pending, requestID)
	c.mu.Unlock()
	if ok {
		ch <- res
	}
}

func (c *Client) removePending(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan confirmResult)
	c.mu.Unlock()
	for _, ch := range pending {
		ch <- confirmResult{err: err}
	}
}

// ---- subscription API ----

// Subscribe requests a stream and waits for the provider's confirmation.
// Rejections and send failures are returned to the caller, never retried.
func (c *Client) Subscribe(ctx context.Context, symbols []string, dt models.DataType, freq models.Frequency) (string, error) {
	syms := models.NormalizeSymbols(symbols)
	if len(syms) == 0 {
		return "", models.ErrNoSymbols
	}
	if !models.IsValidDataType(dt) {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownDataType, dt)
	}

	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return "", models.ErrNotConnected
	}
	requestID := uuid.NewString()
	ch := make(chan confirmResult, 1)
	c.pending[requestID] = ch
	c.mu.Unlock()

	env := &models.Envelope{
		Type:      models.MsgSubscribe,
		RequestID: requestID,
		Symbols:   syms,
		DataType:  dt,
		Frequency: freq,
	}
	if err := c.transport.Send(ctx, env); err != nil {
		c.removePending(requestID)
		return "", fmt.Errorf("subscribe %v %s: %w", syms, dt, err)
	}

	select {
	case res := <-ch:
		return res.subscriptionID, res.err
	case <-time.After(c.cfg.ConfirmTimeout):
		c.removePending(requestID)
		return "", models.ErrConfirmTimeout
	case <-ctx.Done():
		c.removePending(requestID)
		return "", ctx.Err()
	}
}

// SubscribeQuotes subscribes the symbols to the quote stream.
func (c *Client) SubscribeQuotes(ctx context.Context, symbols []string) (string, error) {
	return c.Subscribe(ctx, symbols, models.DataTypeQuote, "")
}

// SubscribeTrades subscribes the symbols to the trade stream.
func (c *Client) SubscribeTrades(ctx context.Context, symbols []string) (string, error) {
	return c.Subscribe(ctx, symbols, models.DataTypeTrade, "")
}

// SubscribeBars subscribes the symbols to the bar stream at the given frequency.
func (c *Client) SubscribeBars(ctx context.Context, symbols []string, freq models.Frequency) (string, error) {
	if freq == "" {
		freq = models.Freq1Min
	}
	return c.Subscribe(ctx, symbols, models.DataTypeBar, freq)
}

// SubscribeNews subscribes the symbols to the news stream.
func (c *Client) SubscribeNews(ctx context.Context, symbols []string) (string, error) {
	return c.Subscribe(ctx, symbols, models.DataTypeNews, "")
}

// SubscribeCrypto subscribes the symbols to the crypto stream.
func (c *Client) SubscribeCrypto(ctx context.Context, symbols []string) (string, error) {
	return c.Subscribe(ctx, symbols, models.DataTypeCrypto, "")
}

// Unsubscribe tears down one subscription.
func (c *Client) Unsubscribe(ctx context.Context, id string) error {
	if _, ok := c.registry.Get(id); !ok {
		return models.ErrSubscriptionGone
	}
	return c.sendUnsubscribe(ctx, id)
}

// UnsubscribeAll tears down every subscription.
func (c *Client) UnsubscribeAll(ctx context.Context) error {
	return c.sendUnsubscribe(ctx, "")
}

func (c *Client) sendUnsubscribe(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return models.ErrNotConnected
	}
	requestID := uuid.NewString()
	ch := make(chan confirmResult, 1)
	c.pending[requestID] = ch
	c.mu.Unlock()

	env := &models.Envelope{
		Type:           models.MsgUnsubscribe,
		RequestID:      requestID,
		SubscriptionID: id,
	}
	if err := c.transport.Send(ctx, env); err != nil {
		c.removePending(requestID)
		return fmt.Errorf("unsubscribe %s: %w", id, err)
	}

	select {
	case res := <-ch:
		return res.err
	case <-time.After(c.cfg.ConfirmTimeout):
		c.removePending(requestID)
		return models.ErrConfirmTimeout
	case <-ctx.Done():
		c.removePending(requestID)
		return ctx.Err()
	}
}

// Subscriptions returns the current confirmed subscriptions.
func (c *Client) Subscriptions() []models.Subscription {
	return c.registry.List()
}

// RequestSubscriptionList asks the provider to push its authoritative list.
func (c *Client) RequestSubscriptionList(ctx context.Context) error {
	return c.transport.Send(ctx, &models.Envelope{Type: models.MsgListSubscriptions})
}

// AvailableFeeds returns the feeds reported by the provider.
func (c *Client) AvailableFeeds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.feeds))
	copy(out, c.feeds)
	return out
}

// ---- cache reads ----

// LatestQuote returns the cached quote for symbol, if present.
func (c *Client) LatestQuote(symbol string) (models.Quote, time.Time, bool) {
	return decodeLatest[models.Quote](c.cache, symbol, models.DataTypeQuote)
}

// LatestTrade returns the cached trade for symbol, if present.
func (c *Client) LatestTrade(symbol string) (models.Trade, time.Time, bool) {
	return decodeLatest[models.Trade](c.cache, symbol, models.DataTypeTrade)
}

// LatestBar returns the cached bar for symbol, if present.
func (c *Client) LatestBar(symbol string) (models.Bar, time.Time, bool) {
	return decodeLatest[models.Bar](c.cache, symbol, models.DataTypeBar)
}

func decodeLatest[T any](cache *Cache, symbol string, dt models.DataType) (T, time.Time, bool) {
	var v T
	entry, ok := cache.Get(symbol, dt)
	if !ok {
		return v, time.Time{}, false
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		return v, time.Time{}, false
	}
	return v, entry.ReceivedAt, true
}

// SymbolData returns every cached data type for symbol.
func (c *Client) SymbolData(symbol string) map[models.DataType]models.CacheEntry {
	return c.cache.AllForSymbol(symbol)
}

// AllMarketData returns the full cache contents.
func (c *Client) AllMarketData() map[string]map[models.DataType]models.CacheEntry {
	return c.cache.All()
}

// IsDataStale reports whether the cached entry is missing or older than maxAge.
func (c *Client) IsDataStale(symbol string, dt models.DataType, maxAge time.Duration) bool {
	return c.cache.IsStale(symbol, dt, maxAge)
}

// ---- status ----

// Status returns the current connection state.
func (c *Client) Status() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StreamMetrics is a point-in-time counters snapshot.
type StreamMetrics struct {
	State            State     `json:"state"`
	MessagesReceived int64     `json:"messages_received"`
	DroppedMessages  int64     `json:"dropped_messages"`
	Reconnects       int64     `json:"reconnects"`
	HandlerPanics    int64     `json:"handler_panics"`
	AvgLatencyMs     float64   `json:"avg_latency_ms"`
	Subscriptions    int       `json:"subscriptions"`
	CacheEntries     int       `json:"cache_entries"`
	UptimeSeconds    float64   `json:"uptime_seconds"`
	LastMessageAt    time.Time `json:"last_message_at"`
}

// Metrics returns the counters snapshot.
func (c *Client) Metrics() StreamMetrics {
	c.mu.Lock()
	state := c.state
	connectedAt := c.connectedAt
	c.mu.Unlock()

	c.latMu.Lock()
	lat := c.latencyEMA
	c.latMu.Unlock()

	m := StreamMetrics{
		State:            state,
		MessagesReceived: c.msgsReceived.Load(),
		DroppedMessages:  c.dropped.Load(),
		Reconnects:       c.reconnects.Load(),
		HandlerPanics:    c.bus.HandlerPanics(),
		AvgLatencyMs:     lat,
		Subscriptions:    c.registry.Len(),
		CacheEntries:     c.cache.Len(),
	}
	if nano := c.lastMsgNano.Load(); nano > 0 {
		m.LastMessageAt = time.Unix(0, nano)
	}
	if state == StateConnected && !connectedAt.IsZero() {
		m.UptimeSeconds = time.Since(connectedAt).Seconds()
	}
	return m
}

// Health summarizes liveness for the health endpoint.
type Health struct {
	Healthy       bool      `json:"healthy"`
	State         State     `json:"state"`
	LastMessageAt time.Time `json:"last_message_at,omitempty"`
	Subscriptions int       `json:"subscriptions"`
}

// HealthCheck reports healthy when connected and, if anything is subscribed,
// a message arrived within the configured silence window.
func (c *Client) HealthCheck() Health {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	h := Health{State: state, Subscriptions: c.registry.Len()}
	if nano := c.lastMsgNano.Load(); nano > 0 {
		h.LastMessageAt = time.Unix(0, nano)
	}
	if state != StateConnected {
		return h
	}
	if h.Subscriptions > 0 && !h.LastMessageAt.IsZero() &&
		time.Since(h.LastMessageAt) > c.cfg.HealthMaxSilence {
		return h
	}
	h.Healthy = true
	return h
}
