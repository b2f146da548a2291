package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/quantcrew/quantcrew/models"
)

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewPostgres opens a connection and creates the schema if missing.
func NewPostgres(params ConnectionParams) (*Postgres, error) {
	if params.SSLMode == "" {
		params.SSLMode = "disable"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id SERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			signal_value DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			signal_type TEXT NOT NULL,
			reasoning JSONB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id SERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			signal_value DOUBLE PRECISION,
			pnl_pct DOUBLE PRECISION,
			holding_days INT,
			traded_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS equity_curve (
			id SERIAL PRIMARY KEY,
			valued_at TIMESTAMP NOT NULL,
			total_value DOUBLE PRECISION NOT NULL
		)
	`)
	return err
}

// SaveSignal persists one agent signal.
func (p *Postgres) SaveSignal(signal models.Signal) error {
	reasoning, err := json.Marshal(signal.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}

	_, err = p.db.Exec(`
		INSERT INTO signals (symbol, agent_name, signal_value, confidence, signal_type, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		signal.Symbol, signal.AgentName, signal.Value, signal.Confidence,
		string(signal.Type), reasoning, signal.Timestamp,
	)
	return err
}

// SaveTrade persists one executed trade.
func (p *Postgres) SaveTrade(trade models.TradeRecord) error {
	_, err := p.db.Exec(`
		INSERT INTO trades (symbol, action, quantity, price, signal_value, pnl_pct, holding_days, traded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		trade.Symbol, string(trade.Action), trade.Quantity, trade.Price,
		trade.SignalValue, trade.PnLPct, trade.HoldingDays, trade.Date,
	)
	return err
}

// SaveEquityPoint persists one portfolio valuation.
func (p *Postgres) SaveEquityPoint(point models.EquityPoint) error {
	_, err := p.db.Exec(`
		INSERT INTO equity_curve (valued_at, total_value) VALUES ($1, $2)`,
		point.Date, point.Value,
	)
	return err
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
