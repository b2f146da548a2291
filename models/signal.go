package models

import (
	"math"
	"time"
)

// SignalType is the categorical class of a signal value.
type SignalType string

const (
	StrongBuy  SignalType = "strong_buy"
	Buy        SignalType = "buy"
	Hold       SignalType = "hold"
	Sell       SignalType = "sell"
	StrongSell SignalType = "strong_sell"
)

// signalBands maps value ranges to signal types. Evaluated in order, first
// match wins, so thresholds live in exactly one place.
var signalBands = []struct {
	lower float64
	upper float64
	label SignalType
}{
	{0.6, math.Inf(1), StrongBuy},
	{0.2, math.Inf(1), Buy},
	{math.Inf(-1), -0.6, StrongSell},
	{math.Inf(-1), -0.2, Sell},
	{math.Inf(-1), math.Inf(1), Hold},
}

// ClassifySignal maps a signal value to its categorical type.
func ClassifySignal(value float64) SignalType {
	for _, band := range signalBands {
		if value >= band.lower && value <= band.upper {
			return band.label
		}
	}
	return Hold
}

// Signal is a bounded numeric opinion about one instrument produced by one
// agent. Value and confidence are clamped at construction; treat a Signal as
// immutable once returned by an agent.
type Signal struct {
	Symbol     string
	Value      float64 // -1.0 (strong sell) .. 1.0 (strong buy)
	Confidence float64 // 0.0 .. 1.0
	Type       SignalType
	AgentName  string
	Timestamp  time.Time
	Reasoning  map[string]string
	Metadata   map[string]string
}

// NewSignal builds a Signal from a raw value, clamping value and confidence
// to their valid ranges and deriving the categorical type.
func NewSignal(symbol string, value, confidence float64, agentName string, reasoning map[string]string) Signal {
	value = Clamp(value, -1.0, 1.0)
	confidence = Clamp(confidence, 0.0, 1.0)

	if reasoning == nil {
		reasoning = map[string]string{}
	}

	return Signal{
		Symbol:     symbol,
		Value:      value,
		Confidence: confidence,
		Type:       ClassifySignal(value),
		AgentName:  agentName,
		Timestamp:  time.Now().UTC(),
		Reasoning:  reasoning,
		Metadata:   map[string]string{},
	}
}

// WeightedValue is the signal value scaled by the agent's confidence.
func (s Signal) WeightedValue() float64 {
	return s.Value * s.Confidence
}

// ToMap converts the signal to a serializable map for reporting collaborators.
func (s Signal) ToMap() map[string]any {
	return map[string]any{
		"symbol":      s.Symbol,
		"value":       s.Value,
		"confidence":  s.Confidence,
		"signal_type": string(s.Type),
		"agent_name":  s.AgentName,
		"timestamp":   s.Timestamp.Format(time.RFC3339),
		"reasoning":   s.Reasoning,
		"metadata":    s.Metadata,
	}
}

// Clamp bounds v to [low, high].
func Clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
