package storage

import (
	"sync"

	"github.com/quantcrew/quantcrew/models"
)

// Memory is an in-memory Store for tests and one-off CLI runs.
type Memory struct {
	mu      sync.Mutex
	Signals []models.Signal
	Trades  []models.TradeRecord
	Equity  []models.EquityPoint
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveSignal(signal models.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Signals = append(m.Signals, signal)
	return nil
}

func (m *Memory) SaveTrade(trade models.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trades = append(m.Trades, trade)
	return nil
}

func (m *Memory) SaveEquityPoint(point models.EquityPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Equity = append(m.Equity, point)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
