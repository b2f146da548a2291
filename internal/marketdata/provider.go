// Package marketdata supplies historical bars and fundamental metrics for
// the analyst agents, either from a remote JSON API or from local CSV files.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/quantcrew/quantcrew/models"
)

// ErrNoData is returned when a provider has nothing for the requested
// instrument or range.
var ErrNoData = errors.New("no market data available")

// Provider fetches historical bars and fundamentals for one instrument.
// History returns daily candles sorted oldest first.
type Provider interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error)
	Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error)
}
