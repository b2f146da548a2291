// Package backtest replays the decision pipeline over historical data and
// scores the resulting strategy.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/internal/agents"
	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/internal/decision"
	"github.com/quantcrew/quantcrew/internal/portfolio"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

// warmupPeriods is the number of history periods required before any
// trading is attempted.
const warmupPeriods = 60

// HistoryProvider supplies time-ordered daily bars for one instrument.
type HistoryProvider interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error)
}

// Options configures one backtest engine.
type Options struct {
	InitialCapital float64
	Commission     float64 // per trade, flat
	Slippage       float64 // fractional price shift against the order
	RiskFreeRate   float64 // annual
	TradingDays    int     // per year
}

// DefaultOptions mirrors a zero-commission retail setup.
func DefaultOptions() Options {
	return Options{
		InitialCapital: 100000,
		Commission:     0,
		Slippage:       0.001,
		RiskFreeRate:   0.04,
		TradingDays:    252,
	}
}

// Result is the complete output of one backtest run.
type Result struct {
	Metrics        Metrics
	Equity         []models.EquityPoint
	Trades         []models.TradeRecord
	DailyReturns   []float64
	FinalValue     float64
	FinalPositions portfolio.Summary

	Symbols            []string
	Start, End         time.Time
	RebalanceFrequency string
}

// Engine drives the analyst and decision agents across historical data
// day by day and executes approved decisions against a simulated ledger.
type Engine struct {
	provider HistoryProvider
	analysts []agents.Analyst
	ceo      *decision.CEO
	risk     *decision.RiskManager
	store    storage.Store
	opts     Options
	logger   zerolog.Logger
}

// NewEngine wires a backtest engine. The analysts are those usable from bar
// data alone; store may be nil.
func NewEngine(
	provider HistoryProvider,
	analysts []agents.Analyst,
	ceo *decision.CEO,
	risk *decision.RiskManager,
	store storage.Store,
	opts Options,
) *Engine {
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = 100000
	}
	if opts.TradingDays <= 0 {
		opts.TradingDays = 252
	}
	return &Engine{
		provider: provider,
		analysts: analysts,
		ceo:      ceo,
		risk:     risk,
		store:    store,
		opts:     opts,
		logger:   log.With().Str("component", "backtest").Logger(),
	}
}

// Run executes a backtest over the given instruments and date range.
// Failures for a single instrument are logged and skipped; they never abort
// the run.
func (e *Engine) Run(ctx context.Context, symbols []string, start, end time.Time, rebalanceFrequency string) (*Result, error) {
	e.logger.Info().
		Strs("symbols", symbols).
		Time("start", start).
		Time("end", end).
		Str("frequency", rebalanceFrequency).
		Msg("starting backtest")

	data := map[string][]models.Candle{}
	for _, symbol := range symbols {
		candles, err := e.provider.History(ctx, symbol, start, end)
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", symbol).Msg("no data, skipping instrument")
			continue
		}
		if len(candles) > 0 {
			data[symbol] = candles
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no data available for backtesting")
	}

	dates := unionDates(data)

	ledger := portfolio.NewLedger(e.opts.InitialCapital)
	var equity []models.EquityPoint
	var trades []models.TradeRecord
	var dailyReturns []float64

	prevValue := e.opts.InitialCapital

	for i, date := range dates {
		if i < warmupPeriods {
			equity = append(equity, models.EquityPoint{Date: date, Value: e.opts.InitialCapital})
			continue
		}

		if isRebalanceDay(dates, i, rebalanceFrequency) {
			trades = append(trades, e.rebalance(date, data, ledger)...)
		}

		ledger.UpdatePrices(closesOn(data, date))
		value := ledger.TotalValue()

		dailyReturn := 0.0
		if prevValue > 0 {
			dailyReturn = (value - prevValue) / prevValue
		}
		dailyReturns = append(dailyReturns, dailyReturn)
		prevValue = value

		point := models.EquityPoint{Date: date, Value: value}
		equity = append(equity, point)
		if e.store != nil {
			if err := e.store.SaveEquityPoint(point); err != nil {
				e.logger.Error().Err(err).Msg("failed to save equity point")
			}
		}
	}

	metrics := ComputeMetrics(dailyReturns, trades, e.opts.RiskFreeRate, e.opts.TradingDays)

	result := &Result{
		Metrics:            metrics,
		Equity:             equity,
		Trades:             trades,
		DailyReturns:       dailyReturns,
		FinalValue:         ledger.TotalValue(),
		FinalPositions:     ledger.Summarize(),
		Symbols:            symbols,
		Start:              start,
		End:                end,
		RebalanceFrequency: rebalanceFrequency,
	}

	e.logger.Info().
		Int("trades", len(trades)).
		Float64("final_value", result.FinalValue).
		Msg("backtest complete")

	return result, nil
}

// rebalance runs the full pipeline for every instrument trading on date and
// executes approved decisions against the ledger.
func (e *Engine) rebalance(date time.Time, data map[string][]models.Candle, ledger *portfolio.Ledger) []models.TradeRecord {
	var executed []models.TradeRecord

	// Position sizing keys off the current portfolio valuation.
	e.risk.SetPortfolioValue(ledger.TotalValue())

	symbols := make([]string, 0, len(data))
	for symbol := range data {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		historical := trailingWindow(data[symbol], date, warmupPeriods)
		if len(historical) < warmupPeriods {
			continue
		}
		if !historical[len(historical)-1].Date.Equal(date) {
			continue // instrument not trading on this date
		}

		currentPrice := historical[len(historical)-1].Close

		signals := make([]models.Signal, 0, len(e.analysts))
		for _, analyst := range e.analysts {
			signals = append(signals, analyst.Analyze(symbol, historical, nil))
		}

		currentQty := ledger.Quantity(symbol)
		dec := e.ceo.MakeTradeDecision(symbol, signals, currentPrice, currentQty)
		if !dec.Approved {
			continue
		}

		if record, ok := e.execute(date, dec, currentPrice, currentQty, ledger); ok {
			executed = append(executed, record)
			if e.store != nil {
				if err := e.store.SaveTrade(record); err != nil {
					e.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to save trade")
				}
			}
		}
	}

	return executed
}

// execute applies one approved decision to the ledger with slippage worked
// into the fill price.
func (e *Engine) execute(
	date time.Time,
	dec models.TradeDecision,
	currentPrice float64,
	currentQty float64,
	ledger *portfolio.Ledger,
) (models.TradeRecord, bool) {
	switch dec.Action {
	case models.ActionBuy:
		execPrice := currentPrice * (1 + e.opts.Slippage)
		if e.opts.Commission > 0 && dec.Quantity > 0 {
			execPrice += e.opts.Commission / dec.Quantity
		}
		if !ledger.Buy(dec.Symbol, dec.Quantity, execPrice, date) {
			e.logger.Warn().Str("symbol", dec.Symbol).Msg("buy not executed")
			return models.TradeRecord{}, false
		}
		return models.TradeRecord{
			Date:        date,
			Symbol:      dec.Symbol,
			Action:      models.ActionBuy,
			Quantity:    dec.Quantity,
			Price:       execPrice,
			SignalValue: dec.SignalValue,
		}, true

	case models.ActionSell, models.ActionClose:
		execPrice := currentPrice * (1 - e.opts.Slippage)
		qty := dec.Quantity
		if currentQty < qty {
			qty = currentQty
		}
		if qty <= 0 {
			return models.TradeRecord{}, false
		}
		if e.opts.Commission > 0 {
			execPrice -= e.opts.Commission / qty
		}

		pos := ledger.Position(dec.Symbol)
		if pos == nil {
			return models.TradeRecord{}, false
		}
		entryPrice := pos.AvgCost
		entryDate := pos.EntryDate

		if !ledger.Sell(dec.Symbol, qty, execPrice) {
			e.logger.Warn().Str("symbol", dec.Symbol).Msg("sell not executed")
			return models.TradeRecord{}, false
		}

		pnlPct := 0.0
		if entryPrice > 0 {
			pnlPct = (execPrice - entryPrice) / entryPrice
		}

		return models.TradeRecord{
			Date:        date,
			Symbol:      dec.Symbol,
			Action:      dec.Action,
			Quantity:    qty,
			Price:       execPrice,
			SignalValue: dec.SignalValue,
			PnLPct:      pnlPct,
			HoldingDays: int(date.Sub(entryDate).Hours() / 24),
		}, true
	}

	return models.TradeRecord{}, false
}

// unionDates collects the sorted union of trading dates across instruments.
func unionDates(data map[string][]models.Candle) []time.Time {
	seen := map[time.Time]struct{}{}
	for _, candles := range data {
		for _, c := range candles {
			seen[c.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// trailingWindow returns the last limit candles dated at or before date.
func trailingWindow(candles []models.Candle, date time.Time, limit int) []models.Candle {
	end := sort.Search(len(candles), func(i int) bool {
		return candles[i].Date.After(date)
	})
	start := end - limit
	if start < 0 {
		start = 0
	}
	return candles[start:end]
}

// closesOn extracts per-symbol closing prices for one date.
func closesOn(data map[string][]models.Candle, date time.Time) map[string]float64 {
	prices := map[string]float64{}
	for symbol, candles := range data {
		idx := sort.Search(len(candles), func(i int) bool {
			return !candles[i].Date.Before(date)
		})
		if idx < len(candles) && candles[idx].Date.Equal(date) {
			prices[symbol] = candles[idx].Close
		}
	}
	return prices
}

// isRebalanceDay decides whether the pipeline runs on dates[index] for the
// configured frequency. Weekly rebalancing triggers on ISO week changes,
// monthly on calendar month changes; unknown frequencies rebalance daily.
func isRebalanceDay(dates []time.Time, index int, frequency string) bool {
	if index == 0 {
		return true
	}

	switch frequency {
	case "weekly":
		_, week := dates[index].ISOWeek()
		_, prevWeek := dates[index-1].ISOWeek()
		return week != prevWeek
	case "monthly":
		return dates[index].Month() != dates[index-1].Month()
	default: // daily
		return true
	}
}

// TradeAnalysis summarizes the trade log per symbol.
type TradeAnalysis struct {
	TotalTrades int
	BySymbol    map[string]SymbolTradeStats
	MostTraded  string
}

// SymbolTradeStats aggregates the trades of one instrument.
type SymbolTradeStats struct {
	TotalTrades int
	Buys        int
	Sells       int
	AvgPnLPct   float64
	TotalPnLPct float64
}

// AnalyzeTrades groups the result's trade log by symbol.
func (r *Result) AnalyzeTrades() TradeAnalysis {
	analysis := TradeAnalysis{BySymbol: map[string]SymbolTradeStats{}}
	if len(r.Trades) == 0 {
		return analysis
	}

	analysis.TotalTrades = len(r.Trades)
	mostCount := 0

	grouped := map[string][]models.TradeRecord{}
	for _, t := range r.Trades {
		grouped[t.Symbol] = append(grouped[t.Symbol], t)
	}

	for symbol, symbolTrades := range grouped {
		stats := SymbolTradeStats{TotalTrades: len(symbolTrades)}
		var pnls []float64
		for _, t := range symbolTrades {
			if t.Action == models.ActionBuy {
				stats.Buys++
			} else {
				stats.Sells++
				pnls = append(pnls, t.PnLPct)
			}
		}
		stats.AvgPnLPct = calculate.Mean(pnls) * 100
		for _, p := range pnls {
			stats.TotalPnLPct += p * 100
		}
		analysis.BySymbol[symbol] = stats

		if len(symbolTrades) > mostCount {
			mostCount = len(symbolTrades)
			analysis.MostTraded = symbol
		}
	}

	return analysis
}

// CompareToBenchmark aligns the run's daily returns with a benchmark candle
// series by date and computes benchmark-relative statistics.
func (r *Result) CompareToBenchmark(benchmark []models.Candle, riskFreeRate float64, tradingDays int) (BenchmarkComparison, error) {
	benchReturns := map[time.Time]float64{}
	for i := 1; i < len(benchmark); i++ {
		if benchmark[i-1].Close == 0 {
			continue
		}
		benchReturns[benchmark[i].Date] = (benchmark[i].Close - benchmark[i-1].Close) / benchmark[i-1].Close
	}

	var strat, bench []float64
	for i := 1; i < len(r.Equity); i++ {
		br, ok := benchReturns[r.Equity[i].Date]
		if !ok {
			continue
		}
		prev := r.Equity[i-1].Value
		if prev == 0 {
			continue
		}
		strat = append(strat, (r.Equity[i].Value-prev)/prev)
		bench = append(bench, br)
	}

	return CompareToBenchmark(strat, bench, riskFreeRate, tradingDays)
}
