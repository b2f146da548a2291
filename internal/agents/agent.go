// Package agents contains the analyst agents that score a single instrument
// from price and fundamentals data. Every analyst degrades to a neutral,
// low-confidence signal on bad input instead of failing the pipeline.
package agents

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

// Analyst produces a Signal directly from market data.
type Analyst interface {
	Name() string
	Weight() float64
	Analyze(symbol string, candles []models.Candle, fundamentals models.Fundamentals) models.Signal
}

// base carries the collaborators every analyst receives via its constructor:
// a component logger and an optional persistence sink.
type base struct {
	name   string
	weight float64
	logger zerolog.Logger
	store  storage.Store
}

func newBase(name string, weight float64, store storage.Store) base {
	return base{
		name:   name,
		weight: weight,
		logger: log.With().Str("component", "agent."+name).Logger(),
		store:  store,
	}
}

func (b *base) Name() string    { return b.name }
func (b *base) Weight() float64 { return b.weight }

// emit saves the signal when a store is configured and logs the result. A
// failed save is logged and swallowed: persistence problems never break an
// analysis cycle.
func (b *base) emit(signal models.Signal) models.Signal {
	if b.store != nil {
		if err := b.store.SaveSignal(signal); err != nil {
			b.logger.Error().Err(err).Str("symbol", signal.Symbol).Msg("failed to save signal")
		}
	}
	b.logger.Info().
		Str("symbol", signal.Symbol).
		Float64("value", signal.Value).
		Float64("confidence", signal.Confidence).
		Msg("signal produced")
	return signal
}

// neutral builds the degraded signal used for insufficient or broken input.
func (b *base) neutral(symbol, reason string) models.Signal {
	return models.NewSignal(symbol, 0.0, 0.1, b.name, map[string]string{
		"error": reason,
	})
}
