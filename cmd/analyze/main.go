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
	"github.com/quantcrew/quantcrew/internal/config"
	"github.com/quantcrew/quantcrew/internal/decision"
	"github.com/quantcrew/quantcrew/internal/marketdata"
	"github.com/quantcrew/quantcrew/internal/notifier"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

// historyDays is how far back bars are requested for a one-shot analysis.
const historyDays = 120

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

	var provider marketdata.Provider
	if cfg.DataDir != "" {
		provider = marketdata.NewCSVProvider(cfg.DataDir)
	} else {
		provider = marketdata.NewClient(marketdata.ClientOptions{
			APIKey:         cfg.MarketDataAPIKey,
			BaseURL:        cfg.MarketDataBaseURL,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		})
	}

	var notify notifier.Notifier = notifier.Nop{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create telegram notifier")
		}
		notify = tg
	}

	analysts := []agents.Analyst{
		agents.NewTechnicalAnalyst(1.0, store),
		agents.NewFundamentalAnalyst(1.0, store),
		agents.NewSentimentAnalyst(1.0, store),
		agents.NewPredictiveAnalyst(1.0, 60, store),
	}

	strategist := decision.NewStrategist(cfg.AgentWeights, store)
	risk := decision.NewRiskManager(decision.RiskConfig{
		MaxPositionPct:    cfg.MaxPositionPct,
		StopLossPct:       cfg.StopLossPct,
		TakeProfitPct:     cfg.TakeProfitPct,
		MaxPortfolioRisk:  cfg.MaxPortfolioRisk,
		MinSignalStrength: cfg.MinSignalStrength,
	}, cfg.InitialCapital, store)
	ceo := decision.NewCEO(strategist, risk)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -historyDays)

	for _, symbol := range cfg.Symbols {
		candles, err := provider.History(ctx, symbol, start, end)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("failed to fetch history")
			continue
		}

		fundamentals, err := provider.Fundamentals(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("fundamentals unavailable")
			fundamentals = models.Fundamentals{}
		}

		signals := make([]models.Signal, 0, len(analysts))
		for _, analyst := range analysts {
			signals = append(signals, analyst.Analyze(symbol, candles, fundamentals))
		}

		currentPrice := candles[len(candles)-1].Close
		dec := ceo.MakeTradeDecision(symbol, signals, currentPrice, 0)

		printDecision(symbol, signals, dec)

		if dec.Approved {
			if err := notify.NotifyDecision(dec); err != nil {
				log.Error().Err(err).Str("symbol", symbol).Msg("notification failed")
			}
		}
	}
}

func printDecision(symbol string, signals []models.Signal, dec models.TradeDecision) {
	fmt.Printf("=== %s ===\n", symbol)
	for _, sig := range signals {
		fmt.Printf("  %-22s %-12s value=%+.3f confidence=%.2f\n",
			sig.AgentName, sig.Type, sig.Value, sig.Confidence)
	}
	fmt.Printf("  decision: %s", dec.Action)
	if dec.Action != models.ActionHold {
		fmt.Printf(" qty=%.2f stop=%.2f target=%.2f", dec.Quantity, dec.StopLoss, dec.TakeProfit)
	}
	fmt.Printf(" (signal %+.3f, confidence %.2f)\n\n", dec.SignalValue, dec.Confidence)
}
