package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/models"
)

// CSVProvider reads daily bars from per-symbol CSV files in one directory.
// Files are named <SYMBOL>.csv with a header row of
// date,open,high,low,close,volume. Intended for offline backtests.
type CSVProvider struct {
	dir    string
	logger zerolog.Logger
}

// NewCSVProvider creates a provider reading from dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{
		dir:    dir,
		logger: log.With().Str("component", "csv_provider").Logger(),
	}
}

// History loads the symbol's file and returns candles inside [start, end],
// oldest first.
func (p *CSVProvider) History(_ context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	path := filepath.Join(p.dir, strings.ToUpper(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	var candles []models.Candle
	for _, row := range rows[1:] { // skip header
		if len(row) < 6 {
			continue
		}
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			p.logger.Warn().Str("date", row[0]).Str("file", path).Msg("skipping row with bad date")
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		volume, _ := strconv.ParseInt(row[5], 10, 64)
		candles = append(candles, models.Candle{
			Date:   date,
			Open:   parseFloat(row[1]),
			High:   parseFloat(row[2]),
			Low:    parseFloat(row[3]),
			Close:  parseFloat(row[4]),
			Volume: volume,
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s in range", ErrNoData, symbol)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	return candles, nil
}

// Fundamentals loads optional per-symbol metrics from <SYMBOL>_fundamentals.csv
// with rows of key,value. A missing file is not an error; the fundamental
// analyst degrades to a neutral signal without data.
func (p *CSVProvider) Fundamentals(_ context.Context, symbol string) (models.Fundamentals, error) {
	path := filepath.Join(p.dir, strings.ToUpper(symbol)+"_fundamentals.csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Fundamentals{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fundamentals := models.Fundamentals{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		fundamentals[row[0]] = value
	}
	return fundamentals, nil
}
