package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/internal/agents"
	"github.com/quantcrew/quantcrew/internal/backtest"
	"github.com/quantcrew/quantcrew/internal/config"
	"github.com/quantcrew/quantcrew/internal/decision"
	"github.com/quantcrew/quantcrew/internal/marketdata"
	"github.com/quantcrew/quantcrew/internal/notifier"
	"github.com/quantcrew/quantcrew/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(output).Level(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store storage.Store
	if cfg.DBName != "" {
		pg, err := storage.NewPostgres(storage.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pg.Close()
		store = pg
	}

	var provider backtest.HistoryProvider
	if cfg.DataDir != "" {
		provider = marketdata.NewCSVProvider(cfg.DataDir)
	} else {
		provider = marketdata.NewClient(marketdata.ClientOptions{
			APIKey:         cfg.MarketDataAPIKey,
			BaseURL:        cfg.MarketDataBaseURL,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		})
	}

	analysts := []agents.Analyst{
		agents.NewTechnicalAnalyst(1.0, store),
		agents.NewSentimentAnalyst(1.0, store),
		agents.NewPredictiveAnalyst(1.0, 60, store),
	}

	strategist := decision.NewStrategist(cfg.AgentWeights, store)

	riskCfg := decision.RiskConfig{
		MaxPositionPct:    cfg.MaxPositionPct,
		StopLossPct:       cfg.StopLossPct,
		TakeProfitPct:     cfg.TakeProfitPct,
		MaxPortfolioRisk:  cfg.MaxPortfolioRisk,
		MinSignalStrength: cfg.MinSignalStrength,
	}
	risk := decision.NewRiskManager(riskCfg, cfg.InitialCapital, store)
	ceo := decision.NewCEO(strategist, risk)

	opts := backtest.DefaultOptions()
	opts.InitialCapital = cfg.InitialCapital
	opts.Commission = cfg.Commission
	opts.Slippage = cfg.Slippage
	opts.RiskFreeRate = cfg.RiskFreeRate

	engine := backtest.NewEngine(provider, analysts, ceo, risk, store, opts)

	result, err := engine.Run(ctx, cfg.Symbols, cfg.StartDate, cfg.EndDate, cfg.RebalanceFrequency)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}

	fmt.Println(result.Metrics.Summary())

	var notify notifier.Notifier = notifier.Nop{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram notifier unavailable")
		} else {
			notify = tg
		}
	}
	if err := notify.NotifyText(result.Metrics.Summary()); err != nil {
		log.Warn().Err(err).Msg("failed to send run summary")
	}

	analysis := result.AnalyzeTrades()
	fmt.Printf("Trades executed: %d\n", analysis.TotalTrades)
	for symbol, stats := range analysis.BySymbol {
		fmt.Printf("  %-8s buys=%d sells=%d avg_pnl=%.2f%%\n",
			symbol, stats.Buys, stats.Sells, stats.AvgPnLPct)
	}

	if benchmarkSymbol := os.Getenv("BENCHMARK_SYMBOL"); benchmarkSymbol != "" {
		candles, err := provider.History(ctx, benchmarkSymbol, cfg.StartDate, cfg.EndDate)
		if err != nil {
			log.Warn().Err(err).Str("symbol", benchmarkSymbol).Msg("benchmark data unavailable")
			return
		}
		comparison, err := result.CompareToBenchmark(candles, cfg.RiskFreeRate, 252)
		if err != nil {
			log.Warn().Err(err).Msg("benchmark comparison skipped")
			return
		}
		fmt.Printf("\nVersus %s: alpha=%.4f beta=%.2f info_ratio=%.2f\n",
			benchmarkSymbol, comparison.AlphaAnnual, comparison.Beta, comparison.InformationRatio)
	}
}
