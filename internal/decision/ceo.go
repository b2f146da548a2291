package decision

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/models"
)

const ceoName = "portfolio_ceo"

// CEO is the final decision maker. It reconciles the strategist's consensus
// with the risk manager's adjusted signal, resolves conflicts and overrides,
// and emits a TradeDecision.
type CEO struct {
	strategist *Strategist
	risk       *RiskManager

	minConfidenceToTrade float64
	minSignalForAction   float64

	pending    map[string]models.TradeDecision
	history    []models.TradeDecision
	historyCap int

	logger zerolog.Logger
}

func NewCEO(strategist *Strategist, risk *RiskManager) *CEO {
	return &CEO{
		strategist:           strategist,
		risk:                 risk,
		minConfidenceToTrade: 0.4,
		minSignalForAction:   0.2,
		pending:              map[string]models.TradeDecision{},
		historyCap:           100,
		logger:               log.With().Str("component", ceoName).Logger(),
	}
}

// Combine runs both subordinate decision agents over the raw analyst signals
// and applies the CEO's reconciliation logic.
func (c *CEO) Combine(symbol string, signals []models.Signal) models.Signal {
	quant := c.strategist.Combine(symbol, signals)
	risk := c.risk.Combine(symbol, signals)

	value := c.reconcile(quant, risk)

	riskApproved := Approved(risk)
	confidenceFactor := 1.0
	if !riskApproved {
		confidenceFactor = 0.5
	}
	finalConfidence := quant.Confidence * confidenceFactor

	reasoning := map[string]string{
		"quant_signal":         fmt.Sprintf("%.3f", quant.Value),
		"quant_confidence":     fmt.Sprintf("%.3f", quant.Confidence),
		"risk_adjusted_signal": fmt.Sprintf("%.3f", risk.Value),
		"risk_approved":        fmt.Sprintf("%t", riskApproved),
		"ceo_decision":         fmt.Sprintf("%.3f", value),
	}

	out := models.NewSignal(symbol, value, finalConfidence, ceoName, reasoning)

	c.logger.Info().
		Str("symbol", symbol).
		Float64("value", out.Value).
		Float64("confidence", out.Confidence).
		Msg("final decision signal")

	return out
}

// reconcile combines the consensus and risk-adjusted signals. The risk
// manager's veto can only be overridden on very strong consensus conviction,
// and then only at half strength.
func (c *CEO) reconcile(quant, risk models.Signal) float64 {
	base := risk.Value

	if !Approved(risk) {
		if quant.Confidence > 0.8 && math.Abs(quant.Value) > 0.7 {
			c.logger.Warn().Str("symbol", quant.Symbol).Msg("override: risk rejected but consensus conviction high")
			return base * 0.5
		}
		return 0.0
	}

	quantDirection := directionOf(quant.Value)
	riskDirection := directionOf(risk.Value)

	if quantDirection != riskDirection && math.Abs(quant.Value) > 0.1 && math.Abs(risk.Value) > 0.1 {
		c.logger.Info().Str("symbol", quant.Symbol).Msg("consensus and risk signals conflict, de-risking")
		return base * 0.5
	}

	return base * math.Min(1.0, quant.Confidence+0.2)
}

func directionOf(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}

// MakeTradeDecision is the main entry point: it produces the final signal,
// sizes the trade through the risk manager, and resolves the action against
// the current position.
func (c *CEO) MakeTradeDecision(
	symbol string,
	analystSignals []models.Signal,
	currentPrice float64,
	currentPosition float64,
) models.TradeDecision {
	sig := c.Combine(symbol, analystSignals)
	assessment := c.risk.AssessTrade(symbol, sig, currentPrice)

	action, quantity := c.determineAction(sig, assessment, currentPosition)

	decision := models.TradeDecision{
		Symbol:      symbol,
		Action:      action,
		Quantity:    quantity,
		Confidence:  sig.Confidence,
		SignalValue: sig.Value,
		Reasoning:   sig.Reasoning,
		Approved:    assessment.Approved && action != models.ActionHold,
	}
	if action != models.ActionHold {
		decision.StopLoss = assessment.StopLossPrice
		decision.TakeProfit = assessment.TakeProfitPrice
	}

	c.pending[symbol] = decision
	c.history = append(c.history, decision)
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}

	if decision.Approved {
		c.logger.Info().
			Str("symbol", symbol).
			Str("action", string(action)).
			Float64("quantity", quantity).
			Float64("price", currentPrice).
			Msg("trade decision")
	}

	return decision
}

func (c *CEO) determineAction(
	sig models.Signal,
	risk models.RiskAssessment,
	currentPosition float64,
) (models.TradeAction, float64) {
	if math.Abs(sig.Value) < c.minSignalForAction {
		return models.ActionHold, 0
	}
	if sig.Confidence < c.minConfidenceToTrade {
		return models.ActionHold, 0
	}
	if !risk.Approved {
		return models.ActionHold, 0
	}

	if sig.Value > 0 {
		switch {
		case currentPosition < 0:
			return models.ActionClose, math.Abs(currentPosition)
		case currentPosition > 0:
			// Pyramiding only on strong conviction, and at half size.
			if sig.Value > 0.6 && sig.Confidence > 0.6 {
				return models.ActionBuy, risk.MaxPositionSize * 0.5
			}
			return models.ActionHold, 0
		default:
			return models.ActionBuy, risk.MaxPositionSize
		}
	}

	switch {
	case currentPosition > 0:
		return models.ActionClose, currentPosition
	case currentPosition < 0:
		return models.ActionHold, 0
	default:
		return models.ActionSell, risk.MaxPositionSize
	}
}

// PendingDecisions returns decisions awaiting execution, keyed by symbol.
func (c *CEO) PendingDecisions() map[string]models.TradeDecision {
	out := make(map[string]models.TradeDecision, len(c.pending))
	for symbol, decision := range c.pending {
		out[symbol] = decision
	}
	return out
}

// ClearDecision drops a pending decision after execution.
func (c *CEO) ClearDecision(symbol string) {
	delete(c.pending, symbol)
}

// History returns up to limit most recent decisions.
func (c *CEO) History(limit int) []models.TradeDecision {
	if limit <= 0 || limit > len(c.history) {
		limit = len(c.history)
	}
	return c.history[len(c.history)-limit:]
}
