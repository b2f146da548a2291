// Package storage persists signals, trades and equity snapshots produced by
// the decision pipeline. Components receive a Store through their
// constructor; a nil Store disables persistence.
package storage

import "github.com/quantcrew/quantcrew/models"

// Store is a persistence sink for pipeline output.
type Store interface {
	SaveSignal(signal models.Signal) error
	SaveTrade(trade models.TradeRecord) error
	SaveEquityPoint(point models.EquityPoint) error
	Close() error
}
