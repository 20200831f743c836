package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default REST base URLs.
const (
	DefaultSpotURL    = "https://api.binance.com"
	DefaultFuturesURL = "https://fapi.binance.com"
)

// Default request parameters.
const (
	DefaultCandleInterval = "1m"
	DefaultDepthLimit     = 100
	DefaultRatioPeriod    = "5m"
)

// Client provides access to the Binance spot and futures REST APIs.
type Client struct {
	spotURL    string
	futuresURL string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	weights    *WeightTracker

	candleInterval string
	depthLimit     int
	ratioPeriod    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. Empty base URLs fall back to
// the production endpoints.
func NewClient(spotURL, futuresURL string, opts ...ClientOption) *Client {
	if spotURL == "" {
		spotURL = DefaultSpotURL
	}
	if futuresURL == "" {
		futuresURL = DefaultFuturesURL
	}

	c := &Client{
		spotURL:        spotURL,
		futuresURL:     futuresURL,
		httpClient:     &http.Client{},
		logger:         slog.Default(),
		weights:        NewWeightTracker(),
		candleInterval: DefaultCandleInterval,
		depthLimit:     DefaultDepthLimit,
		ratioPeriod:    DefaultRatioPeriod,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outgoing requests to rps with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCandleInterval sets the kline interval.
func WithCandleInterval(interval string) ClientOption {
	return func(c *Client) {
		c.candleInterval = interval
	}
}

// WithDepthLimit sets the number of order-book levels requested per side.
func WithDepthLimit(limit int) ClientOption {
	return func(c *Client) {
		c.depthLimit = limit
	}
}

// WithRatioPeriod sets the period of the long/short ratio endpoints.
func WithRatioPeriod(period string) ClientOption {
	return func(c *Client) {
		c.ratioPeriod = period
	}
}

// Weights returns the client's used-weight tracker.
func (c *Client) Weights() *WeightTracker {
	return c.weights
}
