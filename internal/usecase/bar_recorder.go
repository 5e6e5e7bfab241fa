package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/repository"
	"MarketPulse/internal/stream"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// BarRecorder subscribes to the bar stream on the event bus and persists each
// bar to the history store, feeding the price-history models. Writes happen on
// a worker goroutine so a slow insert never stalls event dispatch.
type BarRecorder struct {
	bus     *stream.Bus
	bars    *repository.BarRepository
	freq    models.Frequency
	metrics drepo.Metrics
	log     *applogger.Logger

	ch     chan models.Bar
	token  int64
	cancel context.CancelFunc
}

// NewBarRecorder creates the recorder. freq labels the stored bars.
func NewBarRecorder(bus *stream.Bus, bars *repository.BarRepository, freq models.Frequency, metrics drepo.Metrics, log *applogger.Logger) *BarRecorder {
	if freq == "" {
		freq = models.Freq1Min
	}
	return &BarRecorder{
		bus:     bus,
		bars:    bars,
		freq:    freq,
		metrics: metrics,
		log:     log,
		ch:      make(chan models.Bar, 256),
	}
}

// Start registers on the bus and launches the write worker.
func (r *BarRecorder) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.token = r.bus.On(stream.TopicForType(models.DataTypeBar), r.handle)
	go r.worker(ctx)
}

// Stop deregisters and stops the worker. Buffered bars are abandoned.
func (r *BarRecorder) Stop() {
	r.bus.Off(stream.TopicForType(models.DataTypeBar), r.token)
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *BarRecorder) handle(_ string, payload any) {
	md, ok := payload.(*models.MarketData)
	if !ok {
		return
	}
	var bar models.Bar
	if err := json.Unmarshal(md.Data, &bar); err != nil {
		r.metrics.RecordError("bar_decode")
		return
	}
	if bar.Symbol == "" {
		bar.Symbol = md.Symbol
	}
	if bar.Timestamp == 0 {
		bar.Timestamp = md.Timestamp
	}
	// Snap to the bar boundary so re-delivered bars overwrite instead of
	// accumulating duplicate rows.
	bar.Timestamp = util.TruncateToFrequency(time.UnixMilli(bar.Timestamp), string(r.freq)).UnixMilli()
	select {
	case r.ch <- bar:
	default:
		r.metrics.RecordError("bar_buffer_full")
	}
}

func (r *BarRecorder) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case bar := <-r.ch:
			insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := r.bars.InsertBar(insertCtx, bar, r.freq)
			cancel()
			if err != nil {
				r.metrics.RecordError("bar_insert")
				r.log.Warn("bar insert failed",
					applogger.String("symbol", bar.Symbol), applogger.Error(err))
			}
		}
	}
}
