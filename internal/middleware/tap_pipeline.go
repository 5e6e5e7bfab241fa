package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
)

// TapPipeline sits between the stream client and the downstream publisher.
// It validates, throttles per (symbol, dataType), and buffers payloads when
// downstream is unavailable, flushing them in the background with backoff.
type TapPipeline struct {
	downstream domrepo.MarketDataSink
	metrics    domrepo.Metrics
	maxRPS     int
	bufSize    int
	bufCh      chan *models.MarketData
	stopCh     chan struct{}
	started    bool
	mu         sync.Mutex
	lastSeen   map[string]time.Time // per (symbol, dataType) last accepted time
}

type PipelineOption func(*TapPipeline)

// WithMaxRPS sets the max accepted payloads per second per (symbol, dataType).
func WithMaxRPS(n int) PipelineOption {
	return func(p *TapPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size used when downstream fails.
func WithBufferSize(n int) PipelineOption {
	return func(p *TapPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewTapPipeline creates the pipeline in front of the given downstream sink.
func NewTapPipeline(downstream domrepo.MarketDataSink, metrics domrepo.Metrics, opts ...PipelineOption) *TapPipeline {
	p := &TapPipeline{
		downstream: downstream,
		metrics:    metrics,
		maxRPS:     20,
		bufSize:    1000,
		stopCh:     make(chan struct{}),
		lastSeen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.MarketData, p.bufSize)
	return p
}

// Start launches background flushing of buffered payloads.
func (p *TapPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case md := <-p.bufCh:
				if md == nil {
					continue
				}
				if err := p.downstream.Process(ctx, md); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- md:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *TapPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and throttles md, forwarding it downstream and buffering
// on failure so a Kafka outage never backs up into the stream client.
func (p *TapPipeline) Process(ctx context.Context, md *models.MarketData) error {
	start := time.Now()
	if err := validate(md); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(md.Symbol+"/"+string(md.DataType), start) {
		// throttled; counted and dropped
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.downstream.Process(ctx, md); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- md:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validate(md *models.MarketData) error {
	if md == nil {
		return fmt.Errorf("payload nil")
	}
	if md.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if !models.IsValidDataType(md.DataType) {
		return fmt.Errorf("unknown data type %q", md.DataType)
	}
	if len(md.Data) == 0 {
		return fmt.Errorf("empty payload")
	}
	return nil
}

func (p *TapPipeline) allow(key string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[key]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[key] = now
		return true
	}
	return false
}

var _ domrepo.MarketDataSink = (*TapPipeline)(nil)
