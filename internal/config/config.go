// Package config loads application configuration from environment
// variables, with an optional YAML portfolio file for the watchlist and
// agent weights.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	MarketDataAPIKey  string
	MarketDataBaseURL string
	DataDir           string // when set, bars are read from CSV files instead of the API

	Symbols            []string
	StartDate          time.Time
	EndDate            time.Time
	RebalanceFrequency string

	InitialCapital float64
	Commission     float64
	Slippage       float64
	RiskFreeRate   float64

	MaxPositionPct    float64
	StopLossPct       float64
	TakeProfitPct     float64
	MaxPortfolioRisk  float64
	MinSignalStrength float64

	AgentWeights map[string]float64

	LogLevel       string
	RequestTimeout int // seconds

	TelegramBotToken string
	TelegramChatID   int64

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

const dateLayout = "2006-01-02"

// Load initializes configuration from environment variables. When
// PORTFOLIO_FILE is set, the watchlist and agent weights are read from that
// YAML file on top of the environment.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		MarketDataAPIKey:  os.Getenv("MARKET_DATA_API_KEY"),
		MarketDataBaseURL: getEnvWithDefault("MARKET_DATA_BASE_URL", "https://api.twelvedata.com"),
		DataDir:           os.Getenv("DATA_DIR"),

		Symbols:            splitSymbols(getEnvWithDefault("SYMBOLS", "AAPL,MSFT,GOOGL")),
		RebalanceFrequency: getEnvWithDefault("REBALANCE_FREQUENCY", "weekly"),

		InitialCapital: getEnvFloatWithDefault("INITIAL_CAPITAL", 100000),
		Commission:     getEnvFloatWithDefault("COMMISSION", 0),
		Slippage:       getEnvFloatWithDefault("SLIPPAGE", 0.001),
		RiskFreeRate:   getEnvFloatWithDefault("RISK_FREE_RATE", 0.04),

		MaxPositionPct:    getEnvFloatWithDefault("MAX_POSITION_PCT", 0.1),
		StopLossPct:       getEnvFloatWithDefault("STOP_LOSS_PCT", 0.05),
		TakeProfitPct:     getEnvFloatWithDefault("TAKE_PROFIT_PCT", 0.15),
		MaxPortfolioRisk:  getEnvFloatWithDefault("MAX_PORTFOLIO_RISK", 0.02),
		MinSignalStrength: getEnvFloatWithDefault("MIN_SIGNAL_STRENGTH", 0.3),

		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout: getEnvIntWithDefault("REQUEST_TIMEOUT", 30),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}

	var err error
	cfg.StartDate, err = parseDate(getEnvWithDefault("START_DATE", "2022-01-01"))
	if err != nil {
		return nil, fmt.Errorf("parsing START_DATE: %w", err)
	}
	cfg.EndDate, err = parseDate(getEnvWithDefault("END_DATE", time.Now().UTC().Format(dateLayout)))
	if err != nil {
		return nil, fmt.Errorf("parsing END_DATE: %w", err)
	}
	if !cfg.EndDate.After(cfg.StartDate) {
		return nil, fmt.Errorf("END_DATE must be after START_DATE")
	}

	if path := os.Getenv("PORTFOLIO_FILE"); path != "" {
		if err := cfg.applyPortfolioFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// portfolioFile is the YAML layout of an optional watchlist file.
type portfolioFile struct {
	Symbols      []string           `yaml:"symbols"`
	AgentWeights map[string]float64 `yaml:"agent_weights"`
}

func (c *Config) applyPortfolioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading portfolio file: %w", err)
	}

	var pf portfolioFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parsing portfolio file: %w", err)
	}

	if len(pf.Symbols) > 0 {
		c.Symbols = pf.Symbols
	}
	if len(pf.AgentWeights) > 0 {
		c.AgentWeights = pf.AgentWeights
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
