package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client is an HTTP client with rate limiting, retries and a circuit breaker
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	opts       ClientOptions
	log        zerolog.Logger
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Name            string
	Timeout         time.Duration
	RequestsPerSec  float64
	Burst           int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerTimeout
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Logger          *zerolog.Logger
}

// NewClient creates a new HTTP client
func NewClient(opts ClientOptions) *Client {
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 1
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = backoff.DefaultInitialInterval
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 3
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = 60 * time.Second
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "http").Str("client", opts.Name).Logger()
	}

	c := &Client{
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		Limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		opts:       opts,
		log:        log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     opts.Name,
		Interval: 60 * time.Second,
		Timeout:  opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// Get fetches url and returns the body of a 200 response
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w", c.opts.Name, err)
		}
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	operation := func() error {
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = c.opts.RetryInterval
	strategy.MaxElapsedTime = c.opts.MaxRetryTimeout
	retry := backoff.WithContext(backoff.WithMaxRetries(strategy, uint64(c.opts.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.Debug().Err(err).Dur("retry_in", wait).Str("url", url).Msg("request failed, retrying")
	}
	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}
