package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/models"
)

const dateLayout = "2006-01-02"

// Client fetches daily bars and fundamentals from a JSON market data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new market data API client.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.twelvedata.com"
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		httpClient: newHTTPClient(httpClientOptions{
			Timeout:         opts.RequestTimeout,
			RequestsPerSec:  opts.RequestsPerSec,
			MaxRetryTimeout: opts.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "marketdata_client").Logger(),
	}
}

// barResponse is the wire format of the time series endpoint. All numeric
// fields arrive as strings.
type barResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

// History fetches daily candles for one instrument, oldest first.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	endpoint := fmt.Sprintf(
		"%s/time_series?symbol=%s&interval=1day&start_date=%s&end_date=%s&apikey=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		start.Format(dateLayout),
		end.Format(dateLayout),
		c.apiKey,
	)

	c.logger.Debug().Str("symbol", symbol).Msg("fetching candles")

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data barResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Status == "error" {
		c.logger.Error().Str("message", data.Message).Msg("market data API error")
		return nil, fmt.Errorf("market data API error: %s", data.Message)
	}
	if len(data.Values) == 0 {
		return nil, ErrNoData
	}

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		date, err := time.Parse(dateLayout, v.Datetime)
		if err != nil {
			c.logger.Warn().Str("datetime", v.Datetime).Msg("skipping bar with bad datetime")
			continue
		}
		candles = append(candles, models.Candle{
			Date:   date,
			Open:   parseFloat(v.Open),
			High:   parseFloat(v.High),
			Low:    parseFloat(v.Low),
			Close:  parseFloat(v.Close),
			Volume: parseInt(v.Volume),
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })

	c.logger.Debug().Int("count", len(candles)).Str("symbol", symbol).Msg("fetched candles")
	return candles, nil
}

// Fundamentals fetches the statistics endpoint and flattens the known metric
// keys. Missing metrics are simply absent from the map.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	endpoint := fmt.Sprintf(
		"%s/statistics?symbol=%s&apikey=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		c.apiKey,
	)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	flat := map[string]float64{}
	flattenNumbers(raw, flat)

	known := map[string]string{
		"trailing_pe":          models.FundPERatio,
		"forward_pe":           models.FundForwardPE,
		"peg_ratio":            models.FundPEGRatio,
		"profit_margin":        models.FundProfitMargin,
		"revenue_growth":       models.FundRevenueGrowth,
		"earnings_growth":      models.FundEarningsGrowth,
		"total_debt_to_equity": models.FundDebtToEquity,
		"current_ratio":        models.FundCurrentRatio,
		"fifty_two_week_high":  models.Fund52WeekHigh,
		"fifty_two_week_low":   models.Fund52WeekLow,
		"day_50_ma":            models.Fund50DayAvg,
		"day_200_ma":           models.Fund200DayAvg,
	}

	fundamentals := models.Fundamentals{}
	for apiKey, ourKey := range known {
		if v, ok := flat[apiKey]; ok {
			fundamentals[ourKey] = v
		}
	}
	if len(fundamentals) == 0 {
		return nil, ErrNoData
	}
	return fundamentals, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// flattenNumbers walks nested JSON objects and collects numeric leaves under
// their final key segment.
func flattenNumbers(raw map[string]json.RawMessage, out map[string]float64) {
	for key, value := range raw {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(value, &nested); err == nil {
			flattenNumbers(nested, out)
			continue
		}
		var num float64
		if err := json.Unmarshal(value, &num); err == nil {
			out[key] = num
		}
	}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
