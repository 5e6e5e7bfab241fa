package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// Transport is one physical link to the market-data provider. Implementations
// exist for WebSocket push and authenticated HTTP polling; the stream client
// selects one by configuration and treats them interchangeably.
type Transport interface {
	// Open establishes the link. The ctx bounds the dial; a ctx timeout is a
	// connection failure, not a cancellation of the transport.
	Open(ctx context.Context) error
	// Send writes one outbound envelope.
	Send(ctx context.Context, env *models.Envelope) error
	// Messages yields raw inbound frames until the transport closes.
	Messages() <-chan []byte
	// Errors yields the fatal transport error, if any. One value at most.
	Errors() <-chan error
	Close() error
}

// MarketDataSink receives every accepted market-data payload, downstream of the
// stream client (e.g. the Kafka tap pipeline).
type MarketDataSink interface {
	Process(ctx context.Context, md *models.MarketData) error
}

// BarStore provides read access to historical bars for the signal generators.
type BarStore interface {
	LatestBars(ctx context.Context, symbol string, n int, freq models.Frequency) ([]models.Bar, error)
}

// Metrics is the recording surface the stream and signal paths emit into.
type Metrics interface {
	RecordMessage(dataType, symbol string)
	RecordDropped(reason string)
	RecordError(kind string)
	RecordReconnect()
	RecordConnectionState(state string)
	RecordStreamLatency(seconds float64)
	RecordSignal(model, level string)
	RecordLatency(op string, seconds float64)
}
