package models

// TradeAction is the final action for one instrument at one point in time.
type TradeAction string

const (
	ActionBuy   TradeAction = "buy"
	ActionSell  TradeAction = "sell"
	ActionHold  TradeAction = "hold"
	ActionClose TradeAction = "close"
)

// RiskAssessment is the risk manager's verdict on a proposed trade. Produced
// fresh per decision request and never mutated afterward. Sizing fields are
// populated even when the trade is not approved so callers can audit what
// would have been traded.
type RiskAssessment struct {
	Symbol          string
	Approved        bool
	OriginalSignal  float64
	AdjustedSignal  float64
	MaxPositionSize float64
	StopLossPrice   float64
	TakeProfitPrice float64
	RiskFactors     map[string]string
	Warnings        []string
}

// TradeDecision is the final output of the decision hierarchy for one
// instrument: action, quantity and risk bracket.
type TradeDecision struct {
	Symbol      string
	Action      TradeAction
	Quantity    float64
	Confidence  float64
	SignalValue float64
	StopLoss    float64 // zero when Action is hold
	TakeProfit  float64 // zero when Action is hold
	Reasoning   map[string]string
	Approved    bool
}
