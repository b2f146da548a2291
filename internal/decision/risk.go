package decision

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

const riskManagerName = "risk_manager"

// metadata key carrying the risk manager's approval verdict on its signal.
const metaApproved = "approved"

// RiskConfig holds the guardrail and sizing knobs for the risk manager.
type RiskConfig struct {
	MaxPositionPct    float64 // fraction of portfolio per position
	StopLossPct       float64
	TakeProfitPct     float64
	MaxPortfolioRisk  float64 // fraction of portfolio risked per trade
	MinSignalStrength float64
}

// DefaultRiskConfig mirrors the standard paper-trading setup.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxPositionPct:    0.1,
		StopLossPct:       0.05,
		TakeProfitPct:     0.15,
		MaxPortfolioRisk:  0.02,
		MinSignalStrength: 0.3,
	}
}

// RiskManager re-aggregates raw analyst signals independently of the
// strategist, applies guardrails, and sizes approved trades.
type RiskManager struct {
	cfg            RiskConfig
	portfolioValue float64
	logger         zerolog.Logger
	store          storage.Store
}

func NewRiskManager(cfg RiskConfig, portfolioValue float64, store storage.Store) *RiskManager {
	if portfolioValue <= 0 {
		portfolioValue = 100000
	}
	return &RiskManager{
		cfg:            cfg,
		portfolioValue: portfolioValue,
		logger:         log.With().Str("component", riskManagerName).Logger(),
		store:          store,
	}
}

// SetPortfolioValue updates the valuation used for position sizing.
func (r *RiskManager) SetPortfolioValue(value float64) {
	r.portfolioValue = value
}

// Combine produces a risk-adjusted signal from raw analyst signals. The
// approval verdict travels in the signal metadata under "approved".
func (r *RiskManager) Combine(symbol string, signals []models.Signal) models.Signal {
	if len(signals) == 0 {
		return models.NewSignal(symbol, 0.0, 0.0, riskManagerName, map[string]string{
			"error": "no signals to evaluate",
		})
	}

	var totalWeight, weightedSum, confidenceSum float64
	for _, sig := range signals {
		totalWeight += sig.Confidence
		weightedSum += sig.Value * sig.Confidence
		confidenceSum += sig.Confidence
	}

	aggregated := 0.0
	if totalWeight > 0 {
		aggregated = weightedSum / totalWeight
	}
	aggConfidence := confidenceSum / float64(len(signals))

	riskFactors := map[string]string{}
	var warnings []string
	adjusted := aggregated

	// Guardrails apply sequentially; each one only dampens further.
	if math.Abs(aggregated) < r.cfg.MinSignalStrength {
		riskFactors["signal_strength"] = fmt.Sprintf("below threshold (%.2f)", r.cfg.MinSignalStrength)
		adjusted = 0.0
	}

	if aggConfidence < 0.3 {
		riskFactors["low_confidence"] = fmt.Sprintf("confidence %.2f < 0.3", aggConfidence)
		adjusted *= 0.5
		warnings = append(warnings, "low confidence - position reduced")
	}

	positive, negative := 0, 0
	for _, sig := range signals {
		if sig.Value > 0 {
			positive++
		} else if sig.Value < 0 {
			negative++
		}
	}
	if positive > 0 && negative > 0 {
		agreement := math.Abs(float64(positive-negative)) / float64(len(signals))
		if agreement < 0.5 {
			riskFactors["mixed_signals"] = fmt.Sprintf("analyst disagreement: %d bullish, %d bearish", positive, negative)
			adjusted *= 0.7
			warnings = append(warnings, "mixed analyst signals - proceed with caution")
		}
	}

	approved := math.Abs(adjusted) >= r.cfg.MinSignalStrength

	reasoning := map[string]string{
		"original_signal": fmt.Sprintf("%.2f", aggregated),
		"adjusted_signal": fmt.Sprintf("%.2f", adjusted),
		"confidence":      fmt.Sprintf("%.2f", aggConfidence),
		"approved":        fmt.Sprintf("%t", approved),
	}
	for k, v := range riskFactors {
		reasoning["risk."+k] = v
	}
	for i, w := range warnings {
		reasoning[fmt.Sprintf("warning.%d", i)] = w
	}

	// Irreducible risk uncertainty keeps output confidence below input.
	out := models.NewSignal(symbol, adjusted, aggConfidence*0.9, riskManagerName, reasoning)
	out.Metadata[metaApproved] = fmt.Sprintf("%t", approved)

	if r.store != nil {
		if err := r.store.SaveSignal(out); err != nil {
			r.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to save signal")
		}
	}
	r.logger.Info().
		Str("symbol", symbol).
		Float64("value", out.Value).
		Bool("approved", approved).
		Msg("risk-adjusted signal")

	return out
}

// Approved reports the risk manager's verdict carried by a signal it
// produced. Signals without the marker count as approved.
func Approved(sig models.Signal) bool {
	return sig.Metadata[metaApproved] != "false"
}

// AssessTrade performs the full risk assessment for one proposed trade:
// position sizing against portfolio risk limits plus stop and target prices.
// Sizing fields are populated even when the trade is not approved.
func (r *RiskManager) AssessTrade(symbol string, sig models.Signal, currentPrice float64) models.RiskAssessment {
	riskFactors := map[string]string{}
	var warnings []string

	if currentPrice <= 0 {
		return models.RiskAssessment{
			Symbol:         symbol,
			Approved:       false,
			OriginalSignal: sig.Value,
			AdjustedSignal: sig.Value,
			RiskFactors:    riskFactors,
			Warnings:       []string{"invalid current price"},
		}
	}

	maxRiskAmount := r.portfolioValue * r.cfg.MaxPortfolioRisk
	stopDistance := currentPrice * r.cfg.StopLossPct

	basePositionSize := maxRiskAmount / stopDistance
	positionSize := basePositionSize * math.Abs(sig.Value)

	maxShares := r.portfolioValue * r.cfg.MaxPositionPct / currentPrice
	if positionSize > maxShares {
		positionSize = maxShares
		riskFactors["position_capped"] = fmt.Sprintf("capped at %.0f%% of portfolio", r.cfg.MaxPositionPct*100)
	}

	var stopLoss, takeProfit float64
	if sig.Value > 0 {
		stopLoss = currentPrice * (1 - r.cfg.StopLossPct)
		takeProfit = currentPrice * (1 + r.cfg.TakeProfitPct)
	} else {
		stopLoss = currentPrice * (1 + r.cfg.StopLossPct)
		takeProfit = currentPrice * (1 - r.cfg.TakeProfitPct)
	}

	approved := true
	if math.Abs(sig.Value) < r.cfg.MinSignalStrength {
		approved = false
		warnings = append(warnings, fmt.Sprintf("signal %.2f below minimum %.2f", sig.Value, r.cfg.MinSignalStrength))
	}

	return models.RiskAssessment{
		Symbol:          symbol,
		Approved:        approved,
		OriginalSignal:  sig.Value,
		AdjustedSignal:  sig.Value,
		MaxPositionSize: positionSize,
		StopLossPrice:   stopLoss,
		TakeProfitPrice: takeProfit,
		RiskFactors:     riskFactors,
		Warnings:        warnings,
	}
}
