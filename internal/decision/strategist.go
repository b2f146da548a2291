// Package decision contains the decision agents that combine analyst
// signals: the quant strategist (aggregation), the risk manager (guardrails
// and sizing) and the CEO (final trade decision).
package decision

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

const strategistName = "quant_strategist"

// defaultAgentWeight applies to analysts with no configured weight.
const defaultAgentWeight = 0.25

// Strategist aggregates analyst signals into a single consensus signal
// using confidence-weighted averaging and agreement scoring.
type Strategist struct {
	weights map[string]float64
	logger  zerolog.Logger
	store   storage.Store
}

// NewStrategist creates an aggregator with per-analyst weights keyed by
// agent name.
func NewStrategist(weights map[string]float64, store storage.Store) *Strategist {
	if weights == nil {
		weights = map[string]float64{}
	}
	return &Strategist{
		weights: weights,
		logger:  log.With().Str("component", strategistName).Logger(),
		store:   store,
	}
}

// Combine produces the confidence-and-weight-weighted consensus of the given
// analyst signals. An empty input is not an error: it yields a neutral,
// zero-confidence signal.
func (s *Strategist) Combine(symbol string, signals []models.Signal) models.Signal {
	if len(signals) == 0 {
		return models.NewSignal(symbol, 0.0, 0.0, strategistName, map[string]string{
			"error": "no analyst signals received",
		})
	}

	var weightedSum, weightTotal float64
	contributions := map[string]string{}

	for _, sig := range signals {
		weight := s.weightFor(sig.AgentName)
		contribution := sig.Value * sig.Confidence * weight
		weightedSum += contribution
		weightTotal += weight * sig.Confidence
		contributions[sig.AgentName] = fmt.Sprintf(
			"value=%.2f conf=%.2f weight=%.2f contribution=%.3f",
			sig.Value, sig.Confidence, weight, contribution,
		)
	}

	finalValue := 0.0
	if weightTotal > 0 {
		finalValue = weightedSum / weightTotal
	}

	values := make([]float64, len(signals))
	confidences := make([]float64, len(signals))
	for i, sig := range signals {
		values[i] = sig.Value
		confidences[i] = sig.Confidence
	}

	// Disagreement among analysts mechanically suppresses confidence even
	// when each analyst is individually confident.
	agreement := math.Max(0, 1-calculate.PopStdDev(values))
	finalConfidence := calculate.Mean(confidences) * agreement

	bullish, bearish := 0, 0
	for _, v := range values {
		if v > 0.1 {
			bullish++
		} else if v < -0.1 {
			bearish++
		}
	}
	neutral := len(signals) - bullish - bearish

	consensus := "mixed"
	if bullish > bearish && bullish > neutral {
		consensus = "bullish"
	} else if bearish > bullish && bearish > neutral {
		consensus = "bearish"
	}

	reasoning := map[string]string{
		"weighted_signal":  fmt.Sprintf("%.3f", finalValue),
		"agreement_factor": fmt.Sprintf("%.3f", agreement),
		"consensus":        consensus,
		"votes":            fmt.Sprintf("bullish=%d bearish=%d neutral=%d", bullish, bearish, neutral),
	}
	for agent, contribution := range contributions {
		reasoning["contribution."+agent] = contribution
	}

	out := models.NewSignal(symbol, finalValue, finalConfidence, strategistName, reasoning)

	if s.store != nil {
		if err := s.store.SaveSignal(out); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to save signal")
		}
	}
	s.logger.Info().
		Str("symbol", symbol).
		Str("consensus", consensus).
		Float64("value", out.Value).
		Float64("confidence", out.Confidence).
		Msg("consensus computed")

	return out
}

func (s *Strategist) weightFor(agentName string) float64 {
	if w, ok := s.weights[agentName]; ok {
		return w
	}
	return defaultAgentWeight
}

// SetWeights replaces configured weights for the given agents.
func (s *Strategist) SetWeights(weights map[string]float64) {
	for agent, w := range weights {
		s.weights[agent] = w
	}
}

// Breakdown reports per-agent values and summary statistics for a signal
// set, for reporting collaborators.
func (s *Strategist) Breakdown(symbol string, signals []models.Signal) map[string]any {
	agents := map[string]any{}
	values := make([]float64, 0, len(signals))
	for _, sig := range signals {
		agents[sig.AgentName] = map[string]any{
			"value":      sig.Value,
			"confidence": sig.Confidence,
			"type":       string(sig.Type),
			"reasoning":  sig.Reasoning,
		}
		values = append(values, sig.Value)
	}

	summary := map[string]any{}
	if len(values) > 0 {
		lowest, highest := values[0], values[0]
		for _, v := range values[1:] {
			lowest = math.Min(lowest, v)
			highest = math.Max(highest, v)
		}
		summary = map[string]any{
			"mean":  calculate.Mean(values),
			"std":   calculate.PopStdDev(values),
			"min":   lowest,
			"max":   highest,
			"range": highest - lowest,
		}
	}

	return map[string]any{
		"symbol":  symbol,
		"agents":  agents,
		"summary": summary,
	}
}
