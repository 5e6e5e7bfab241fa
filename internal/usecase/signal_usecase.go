package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
	"MarketPulse/internal/services/signals"
	"MarketPulse/pkg/cache"
	applogger "MarketPulse/pkg/logger"
)

// ErrUnknownModel is returned for a model name outside the registered set.
var ErrUnknownModel = errors.New("unknown signal model")

// SignalUsecase fronts the generators and the ensemble with short-TTL
// response caching, so a burst of identical requests costs one computation.
type SignalUsecase struct {
	generators map[string]dservice.Generator
	ensemble   *signals.Ensemble
	cache      cache.Service
	ttl        time.Duration
	metrics    drepo.Metrics
	log        *applogger.Logger
}

// NewSignalUsecase registers the generators by model name.
func NewSignalUsecase(
	ensemble *signals.Ensemble,
	cacheSvc cache.Service,
	ttl time.Duration,
	metrics drepo.Metrics,
	log *applogger.Logger,
	generators ...dservice.Generator,
) *SignalUsecase {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	byModel := make(map[string]dservice.Generator, len(generators))
	for _, g := range generators {
		byModel[g.Model()] = g
	}
	return &SignalUsecase{
		generators: byModel,
		ensemble:   ensemble,
		cache:      cacheSvc,
		ttl:        ttl,
		metrics:    metrics,
		log:        log,
	}
}

// Models lists the registered model names plus the ensemble.
func (u *SignalUsecase) Models() []string {
	out := make([]string, 0, len(u.generators)+1)
	for name := range u.generators {
		out = append(out, name)
	}
	sort.Strings(out)
	return append(out, signals.ModelEnsemble)
}

// GenerateModel runs one model for the symbol.
func (u *SignalUsecase) GenerateModel(ctx context.Context, symbol, model, timeframe string) (models.Signal, error) {
	gen, ok := u.generators[model]
	if !ok {
		return models.Signal{}, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	key := signalKey(model, symbol, timeframe)
	var cached models.Signal
	if u.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	sig, err := gen.Generate(ctx, symbol, timeframe)
	if err != nil {
		u.metrics.RecordError("signal_" + model)
		return models.Signal{}, err
	}
	u.metrics.RecordSignal(model, string(sig.Level))
	u.metrics.RecordLatency("signal_"+model, time.Since(start).Seconds())
	u.cacheSet(ctx, key, sig)
	return sig, nil
}

// GenerateEnsemble runs the full ensemble for the symbol.
func (u *SignalUsecase) GenerateEnsemble(ctx context.Context, symbol, timeframe string) (models.EnsembleSignal, error) {
	key := signalKey(signals.ModelEnsemble, symbol, timeframe)
	var cached models.EnsembleSignal
	if u.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	sig, err := u.ensemble.Generate(ctx, symbol, timeframe)
	if err != nil {
		u.metrics.RecordError("signal_ensemble")
		return models.EnsembleSignal{}, err
	}
	u.metrics.RecordSignal(signals.ModelEnsemble, string(sig.Level))
	u.metrics.RecordLatency("signal_ensemble", time.Since(start).Seconds())
	u.cacheSet(ctx, key, sig)

	u.log.Debug("ensemble generated",
		applogger.String("symbol", symbol),
		applogger.String("signal", string(sig.Level)),
		applogger.Any("consensus", sig.Consensus))
	return sig, nil
}

func (u *SignalUsecase) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if u.cache == nil {
		return false
	}
	err := u.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		u.log.Debug("signal cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (u *SignalUsecase) cacheSet(ctx context.Context, key string, value interface{}) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, key, value, u.ttl); err != nil {
		u.log.Debug("signal cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

func signalKey(model, symbol, timeframe string) string {
	if timeframe == "" {
		timeframe = "default"
	}
	return cache.GenerateKeyWithParams("signal", model, symbol, timeframe)
}
