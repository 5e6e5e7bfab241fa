package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []*models.MarketData
	fail bool
}

func (s *recordingSink) Process(_ context.Context, md *models.MarketData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker down")
	}
	s.got = append(s.got, md)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func (s *recordingSink) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: make(map[string]int)}
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *countingMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func (m *countingMetrics) RecordMessage(string, string)  {}
func (m *countingMetrics) RecordDropped(string)          {}
func (m *countingMetrics) RecordReconnect()              {}
func (m *countingMetrics) RecordConnectionState(string)  {}
func (m *countingMetrics) RecordStreamLatency(float64)   {}
func (m *countingMetrics) RecordSignal(string, string)   {}
func (m *countingMetrics) RecordLatency(string, float64) {}

func payload(symbol string, dt models.DataType) *models.MarketData {
	return &models.MarketData{
		Symbol:   symbol,
		DataType: dt,
		Data:     json.RawMessage(`{"last_price":100}`),
	}
}

func TestPipelineRejectsInvalidPayloads(t *testing.T) {
	sink := &recordingSink{}
	m := newCountingMetrics()
	p := NewTapPipeline(sink, m)

	cases := []*models.MarketData{
		nil,
		{DataType: models.DataTypeQuote, Data: json.RawMessage(`{}`)},
		{Symbol: "AAPL", DataType: "bogus", Data: json.RawMessage(`{}`)},
		{Symbol: "AAPL", DataType: models.DataTypeQuote},
	}
	for i, md := range cases {
		if err := p.Process(context.Background(), md); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if sink.count() != 0 {
		t.Fatalf("sink received %d invalid payloads", sink.count())
	}
	if m.errCount("pipeline_validate") != len(cases) {
		t.Fatalf("validate errors = %d, want %d", m.errCount("pipeline_validate"), len(cases))
	}
}

func TestPipelineThrottlesPerKey(t *testing.T) {
	sink := &recordingSink{}
	m := newCountingMetrics()
	p := NewTapPipeline(sink, m, WithMaxRPS(1))

	// second payload for the same (symbol, type) inside the window is dropped
	if err := p.Process(context.Background(), payload("AAPL", models.DataTypeQuote)); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), payload("AAPL", models.DataTypeQuote)); err != nil {
		t.Fatalf("throttled payload must not error: %v", err)
	}
	// a different key is not affected
	if err := p.Process(context.Background(), payload("MSFT", models.DataTypeQuote)); err != nil {
		t.Fatalf("other key: %v", err)
	}
	if err := p.Process(context.Background(), payload("AAPL", models.DataTypeTrade)); err != nil {
		t.Fatalf("other type: %v", err)
	}

	if sink.count() != 3 {
		t.Fatalf("sink count = %d, want 3", sink.count())
	}
	if m.errCount("pipeline_throttle") != 1 {
		t.Fatalf("throttle count = %d, want 1", m.errCount("pipeline_throttle"))
	}
}

func TestPipelineBuffersOnDownstreamFailure(t *testing.T) {
	sink := &recordingSink{fail: true}
	m := newCountingMetrics()
	p := NewTapPipeline(sink, m, WithMaxRPS(1000), WithBufferSize(8))

	if err := p.Process(context.Background(), payload("AAPL", models.DataTypeQuote)); err == nil {
		t.Fatal("expected downstream error")
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("process errors = %d, want 1", m.errCount("pipeline_process"))
	}

	// recovery: the background flusher drains the buffered payload
	sink.setFail(false)
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sink.count() == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("buffered payload never flushed, sink count = %d", sink.count())
}

func TestPipelineBufferOverflowCounts(t *testing.T) {
	sink := &recordingSink{fail: true}
	m := newCountingMetrics()
	p := NewTapPipeline(sink, m, WithMaxRPS(1000), WithBufferSize(1))

	p.Process(context.Background(), payload("AAPL", models.DataTypeQuote))
	p.Process(context.Background(), payload("MSFT", models.DataTypeQuote))

	if m.errCount("pipeline_buffer_full") != 1 {
		t.Fatalf("buffer_full = %d, want 1", m.errCount("pipeline_buffer_full"))
	}
}
