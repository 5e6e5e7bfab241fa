package stream

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"MarketPulse/internal/domain/models"
)

// Event bus topics. Market data fans out at four granularities so consumers
// subscribe at exactly the specificity they need.
const (
	TopicConnecting   = "connecting"
	TopicConnected    = "connected"
	TopicDisconnected = "disconnected"
	TopicExhausted    = "reconnectExhausted"
	TopicError        = "error"
	TopicSubscribed   = "subscribed"
	TopicUnsubscribed = "unsubscribed"
	TopicFeeds        = "availableFeeds"

	TopicMarketData = "marketData"
)

// TopicForType returns the per-data-type market data topic.
func TopicForType(dt models.DataType) string {
	return fmt.Sprintf("%s:%s", TopicMarketData, dt)
}

// TopicForSymbol returns the per-symbol market data topic.
func TopicForSymbol(symbol string) string {
	return fmt.Sprintf("%s:%s", TopicMarketData, symbol)
}

// TopicForTypeSymbol returns the most specific market data topic.
func TopicForTypeSymbol(dt models.DataType, symbol string) string {
	return fmt.Sprintf("%s:%s:%s", TopicMarketData, dt, symbol)
}

// Handler receives the topic it was registered on and the event payload.
type Handler func(topic string, payload any)

type registration struct {
	id int64
	fn Handler
}

// Bus is a synchronous topic-keyed publish/subscribe dispatcher. Handlers run
// in registration order on the emitting goroutine. A panicking handler is
// recovered and counted so one failing consumer cannot break delivery to the
// rest.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	nextID   atomic.Int64
	panics   atomic.Int64
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]registration)}
}

// On registers a handler for topic and returns a token for Off.
func (b *Bus) On(topic string, fn Handler) int64 {
	id := b.nextID.Add(1)
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], registration{id: id, fn: fn})
	b.mu.Unlock()
	return id
}

// Off removes the handler registered under the token. Unknown tokens are a no-op.
func (b *Bus) Off(topic string, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.handlers[topic]
	for i, r := range regs {
		if r.id == id {
			b.handlers[topic] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(b.handlers[topic]) == 0 {
		delete(b.handlers, topic)
	}
}

// Emit invokes every handler currently registered for topic, in order. The
// handler slice is snapshotted first, so handlers may subscribe/unsubscribe
// reentrantly without corrupting dispatch.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.RLock()
	regs := b.handlers[topic]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	b.mu.RUnlock()

	for _, r := range snapshot {
		b.dispatch(topic, r.fn, payload)
	}
}

func (b *Bus) dispatch(topic string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	fn(topic, payload)
}

// EmitMarketData publishes md on all four granularity topics.
func (b *Bus) EmitMarketData(md *models.MarketData) {
	b.Emit(TopicMarketData, md)
	b.Emit(TopicForType(md.DataType), md)
	b.Emit(TopicForSymbol(md.Symbol), md)
	b.Emit(TopicForTypeSymbol(md.DataType, md.Symbol), md)
}

// RemoveAll clears handlers for the given topics, or every topic when none given.
func (b *Bus) RemoveAll(topics ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(topics) == 0 {
		b.handlers = make(map[string][]registration)
		return
	}
	for _, t := range topics {
		delete(b.handlers, t)
	}
}

// HandlerPanics reports how many handler invocations were recovered.
func (b *Bus) HandlerPanics() int64 { return b.panics.Load() }

// Topics returns the currently subscribed topics, sorted. Diagnostic use only.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
