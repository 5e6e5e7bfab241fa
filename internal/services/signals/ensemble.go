package signals

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	dservice "MarketPulse/internal/domain/service"

	"golang.org/x/sync/errgroup"
)

// Per-model voting weights. Technical carries the most weight, mean reversion
// the least. They need not sum to 1; the score is normalized by their total.
var ensembleWeights = map[string]float64{
	ModelTechnical:     0.35,
	ModelMomentum:      0.25,
	ModelSentiment:     0.25,
	ModelMeanReversion: 0.15,
}

// Ensemble runs the component models concurrently and combines their votes
// into one recommendation with a consensus measure.
//
// Failure semantics are fail-closed: any component error fails the whole
// generation, there is no partial ensemble.
type Ensemble struct {
	components []dservice.Generator
}

// NewEnsemble creates the aggregator over the component generators. Every
// component must have a configured weight.
func NewEnsemble(components ...dservice.Generator) (*Ensemble, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("ensemble: no components")
	}
	for _, g := range components {
		if _, ok := ensembleWeights[g.Model()]; !ok {
			return nil, fmt.Errorf("ensemble: no weight for model %q", g.Model())
		}
	}
	return &Ensemble{components: components}, nil
}

// Generate fans out the component models and combines their signals.
func (e *Ensemble) Generate(ctx context.Context, symbol, timeframe string) (models.EnsembleSignal, error) {
	results := make([]models.Signal, len(e.components))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range e.components {
		eg.Go(func() error {
			sig, err := g.Generate(egCtx, symbol, timeframe)
			if err != nil {
				return err
			}
			results[i] = sig
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.EnsembleSignal{}, fmt.Errorf("ensemble %s: %w", symbol, err)
	}

	return Combine(symbol, results), nil
}

// Combine folds the component signals into the ensemble recommendation. Each
// component's level value is scaled by its model weight and its own
// confidence, summed, and normalized by the total weight.
func Combine(symbol string, components []models.Signal) models.EnsembleSignal {
	var weightedSum, totalWeight, confSum float64
	values := make([]float64, len(components))
	for i, sig := range components {
		w := ensembleWeights[sig.Model]
		v := sig.Level.Value()
		values[i] = v
		weightedSum += w * v * sig.Confidence
		totalWeight += w
		confSum += sig.Confidence
	}

	score := 0.0
	confidence := 0.0
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}
	if len(components) > 0 {
		confidence = confSum / float64(len(components))
	}

	consensus := 1 - stddev(values)/2
	if consensus < 0 {
		consensus = 0
	}

	return models.EnsembleSignal{
		Symbol:     symbol,
		Level:      models.LevelFromScore(score),
		Score:      score,
		Confidence: confidence,
		Consensus:  consensus,
		Components: components,
		Timestamp:  time.Now(),
	}
}
