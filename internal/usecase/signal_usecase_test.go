package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	dservice "MarketPulse/internal/domain/service"
	"MarketPulse/internal/services/signals"
	"MarketPulse/pkg/cache"
	applogger "MarketPulse/pkg/logger"
)

type countingGenerator struct {
	model string
	sig   models.Signal
	err   error
	calls atomic.Int64
}

func (g *countingGenerator) Model() string { return g.model }

func (g *countingGenerator) Generate(_ context.Context, symbol, _ string) (models.Signal, error) {
	g.calls.Add(1)
	if g.err != nil {
		return models.Signal{}, g.err
	}
	sig := g.sig
	sig.Symbol = symbol
	sig.Model = g.model
	return sig, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordMessage(string, string)  {}
func (noopMetrics) RecordDropped(string)          {}
func (noopMetrics) RecordError(string)            {}
func (noopMetrics) RecordReconnect()              {}
func (noopMetrics) RecordConnectionState(string)  {}
func (noopMetrics) RecordStreamLatency(float64)   {}
func (noopMetrics) RecordSignal(string, string)   {}
func (noopMetrics) RecordLatency(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func buySignal() models.Signal {
	return models.Signal{Level: models.SignalBuy, Confidence: 0.8}
}

func newTestSignalUsecase(t *testing.T) *SignalUsecase {
	t.Helper()
	gens := make([]dservice.Generator, 0, 4)
	for _, model := range []string{
		signals.ModelTechnical, signals.ModelMomentum,
		signals.ModelSentiment, signals.ModelMeanReversion,
	} {
		gens = append(gens, &countingGenerator{model: model, sig: buySignal()})
	}
	ens, err := signals.NewEnsemble(gens...)
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	return NewSignalUsecase(ens, cache.NewMemoryCache(), 30*time.Second, noopMetrics{}, testLogger(t), gens...)
}

func TestModelsListsRegisteredPlusEnsemble(t *testing.T) {
	u := newTestSignalUsecase(t)
	got := u.Models()
	want := []string{"mean_reversion", "momentum", "sentiment", "technical", "ensemble"}
	if len(got) != len(want) {
		t.Fatalf("Models = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Models = %v, want %v", got, want)
		}
	}
}

func TestGenerateModelUnknown(t *testing.T) {
	u := newTestSignalUsecase(t)
	_, err := u.GenerateModel(context.Background(), "AAPL", "astrology", "")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestGenerateModelUsesCache(t *testing.T) {
	gen := &countingGenerator{model: signals.ModelTechnical, sig: buySignal()}
	ens, err := signals.NewEnsemble(gen)
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	u := NewSignalUsecase(ens, cache.NewMemoryCache(), 30*time.Second, noopMetrics{}, testLogger(t), gen)

	first, err := u.GenerateModel(context.Background(), "AAPL", signals.ModelTechnical, "1D")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := u.GenerateModel(context.Background(), "AAPL", signals.ModelTechnical, "1D")
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("generator ran %d times, want 1 (cached)", gen.calls.Load())
	}
	if first.Level != second.Level || second.Level != models.SignalBuy {
		t.Fatalf("levels diverged: %s vs %s", first.Level, second.Level)
	}

	// a different timeframe is a different cache key
	if _, err := u.GenerateModel(context.Background(), "AAPL", signals.ModelTechnical, "1W"); err != nil {
		t.Fatalf("generate other timeframe: %v", err)
	}
	if gen.calls.Load() != 2 {
		t.Fatalf("generator ran %d times, want 2", gen.calls.Load())
	}
}

func TestGenerateModelErrorsAreNotCached(t *testing.T) {
	gen := &countingGenerator{model: signals.ModelTechnical, err: errors.New("upstream down")}
	ens, err := signals.NewEnsemble(&countingGenerator{model: signals.ModelMomentum, sig: buySignal()})
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	u := NewSignalUsecase(ens, cache.NewMemoryCache(), 30*time.Second, noopMetrics{}, testLogger(t), gen)

	for i := 0; i < 2; i++ {
		if _, err := u.GenerateModel(context.Background(), "AAPL", signals.ModelTechnical, ""); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if gen.calls.Load() != 2 {
		t.Fatalf("generator ran %d times, want 2 (errors never cached)", gen.calls.Load())
	}
}

func TestGenerateEnsembleUsesCache(t *testing.T) {
	gens := []*countingGenerator{
		{model: signals.ModelTechnical, sig: buySignal()},
		{model: signals.ModelMomentum, sig: buySignal()},
		{model: signals.ModelSentiment, sig: buySignal()},
		{model: signals.ModelMeanReversion, sig: buySignal()},
	}
	ens, err := signals.NewEnsemble(gens[0], gens[1], gens[2], gens[3])
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	u := NewSignalUsecase(ens, cache.NewMemoryCache(), 30*time.Second, noopMetrics{}, testLogger(t))

	first, err := u.GenerateEnsemble(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	second, err := u.GenerateEnsemble(context.Background(), "AAPL", "")
	if err != nil {
		t.Fatalf("ensemble again: %v", err)
	}
	var total int64
	for _, g := range gens {
		total += g.calls.Load()
	}
	if total != 4 {
		t.Fatalf("component runs = %d, want 4 (second call cached)", total)
	}
	if first.Level != second.Level || first.Level != models.SignalBuy {
		t.Fatalf("levels: %s vs %s", first.Level, second.Level)
	}
}

func TestSignalKey(t *testing.T) {
	if got := signalKey("technical", "AAPL", ""); got != "signal:technical:AAPL:default" {
		t.Fatalf("key = %q", got)
	}
	if got := signalKey("ensemble", "MSFT", "1W"); got != "signal:ensemble:MSFT:1W" {
		t.Fatalf("key = %q", got)
	}
}
