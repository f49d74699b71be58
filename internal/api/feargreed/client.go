// Package feargreed reads the crypto Fear & Greed index.
package feargreed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/model"
	httpClient "github.com/Alias1177/tradecore/internal/platform/http"
)

// DefaultURL is the public alternative.me endpoint
const DefaultURL = "https://api.alternative.me/fng/?limit=1"

type response struct {
	Name string `json:"name"`
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// Client fetches the latest index value
type Client struct {
	url    string
	http   *httpClient.Client
	logger zerolog.Logger
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	URL            string
	RequestTimeout time.Duration
	MaxRetries     int
	Logger         *zerolog.Logger
}

// NewClient creates a Fear & Greed client
func NewClient(options ClientOptions) *Client {
	if options.URL == "" {
		options.URL = DefaultURL
	}
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = options.Logger.With().Str("component", "feargreed_client").Logger()
	}
	return &Client{
		url: options.URL,
		http: httpClient.NewClient(httpClient.ClientOptions{
			Name:           "feargreed",
			Timeout:        options.RequestTimeout,
			RequestsPerSec: 1,
			MaxRetries:     options.MaxRetries,
			Logger:         options.Logger,
		}),
		logger: logger,
	}
}

// Fetch returns the most recent index reading
func (c *Client) Fetch(ctx context.Context) (model.Sentiment, error) {
	body, err := c.http.Get(ctx, c.url)
	if err != nil {
		return model.Sentiment{}, fmt.Errorf("fear & greed request: %w", err)
	}
	return parse(body)
}

func parse(body []byte) (model.Sentiment, error) {
	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return model.Sentiment{}, fmt.Errorf("parsing fear & greed response: %w", err)
	}
	if data.Metadata.Error != nil && *data.Metadata.Error != "" {
		return model.Sentiment{}, fmt.Errorf("fear & greed API error: %s", *data.Metadata.Error)
	}
	if len(data.Data) == 0 {
		return model.Sentiment{}, fmt.Errorf("fear & greed response has no data")
	}

	d := data.Data[0]
	value, err := strconv.ParseFloat(d.Value, 64)
	if err != nil {
		return model.Sentiment{}, fmt.Errorf("parsing fear & greed value %q: %w", d.Value, err)
	}
	if value < 0 || value > 100 {
		return model.Sentiment{}, fmt.Errorf("fear & greed value %v out of range", value)
	}
	s := model.Sentiment{Value: value, Classification: d.ValueClassification}
	if ts, err := strconv.ParseInt(d.Timestamp, 10, 64); err == nil {
		s.Timestamp = time.Unix(ts, 0).UTC()
	}
	return s, nil
}

// Static is a fixed reading for offline runs
type Static struct {
	Value float64
}

// Fetch returns the fixed reading
func (s Static) Fetch(context.Context) (model.Sentiment, error) {
	return model.Sentiment{Value: s.Value, Classification: Classify(s.Value)}, nil
}

// Classify names a value the way the index does
func Classify(v float64) string {
	switch {
	case v <= 25:
		return "Extreme Fear"
	case v <= 45:
		return "Fear"
	case v <= 55:
		return "Neutral"
	case v <= 75:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}
