// Package twelvedata loads candles from the Twelve Data time series API.
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/model"
	httpClient "github.com/Alias1177/tradecore/internal/platform/http"
)

// DefaultBaseURL is the production API root
const DefaultBaseURL = "https://api.twelvedata.com"

type value struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Values  []value `json:"values"`
}

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  float64
	MaxRetries      int
	MaxRetryTimeout time.Duration
	Logger          *zerolog.Logger
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = options.Logger.With().Str("component", "twelvedata_client").Logger()
	}
	return &Client{
		apiKey:  options.APIKey,
		baseURL: options.BaseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Name:            "twelvedata",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			Logger:          options.Logger,
		}),
		logger: logger,
	}
}

// GetCandles fetches the most recent count candles, oldest first
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, count int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(count))
	q.Set("apikey", c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).Msg("Fetching candles")

	body, err := c.httpClient.Get(ctx, c.baseURL+"/time_series?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return parse(body)
}

func parse(body []byte) ([]model.Candle, error) {
	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Status == "error" {
		return nil, fmt.Errorf("Twelve Data API error: %s", data.Message)
	}
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("empty data returned: %w", model.ErrInsufficientData)
	}

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		c, err := v.candle()
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	// the API returns newest first
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

func (v value) candle() (model.Candle, error) {
	ts, err := parseDatetime(v.Datetime)
	if err != nil {
		return model.Candle{}, err
	}
	c := model.Candle{Timestamp: ts}
	fields := []struct {
		raw string
		dst *float64
	}{
		{v.Open, &c.Open}, {v.High, &c.High}, {v.Low, &c.Low}, {v.Close, &c.Close},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil {
			return model.Candle{}, fmt.Errorf("candle %s: %w", v.Datetime, err)
		}
	}
	// forex pairs carry no volume
	if v.Volume != "" {
		if c.Volume, err = strconv.ParseFloat(v.Volume, 64); err != nil {
			return model.Candle{}, fmt.Errorf("candle %s volume: %w", v.Datetime, err)
		}
	}
	return c, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}
