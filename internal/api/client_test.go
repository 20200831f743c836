package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/binance-collector/internal/model"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("", "")

		if c.spotURL != DefaultSpotURL {
			t.Errorf("spotURL = %q, want %q", c.spotURL, DefaultSpotURL)
		}
		if c.futuresURL != DefaultFuturesURL {
			t.Errorf("futuresURL = %q, want %q", c.futuresURL, DefaultFuturesURL)
		}
		if c.httpClient.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", c.httpClient.Timeout)
		}
		if c.limiter != nil {
			t.Error("limiter should be nil by default")
		}
		if c.candleInterval != "1m" || c.depthLimit != 100 || c.ratioPeriod != "5m" {
			t.Errorf("params = %q/%d/%q, want 1m/100/5m", c.candleInterval, c.depthLimit, c.ratioPeriod)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("http://spot", "http://fut",
			WithTimeout(15*time.Second),
			WithLogger(logger),
			WithRateLimit(10, 5),
			WithCandleInterval("5m"),
			WithDepthLimit(20),
			WithRatioPeriod("1h"),
		)
		if c.httpClient.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 15*time.Second)
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
		if c.limiter == nil || c.limiter.Burst() != 5 {
			t.Error("limiter not configured")
		}
		if c.candleInterval != "5m" || c.depthLimit != 20 || c.ratioPeriod != "1h" {
			t.Errorf("params = %q/%d/%q, want 5m/20/1h", c.candleInterval, c.depthLimit, c.ratioPeriod)
		}
	})

	t.Run("nil logger keeps default", func(t *testing.T) {
		c := NewClient("", "", WithLogger(nil))
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("", "", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 400, Code: -1121, Message: "Invalid symbol."}
	want := "binance api error 400 (code -1121): Invalid symbol."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &APIError{StatusCode: 502, Message: "Bad Gateway"}
	want = "binance api error 502: Bad Gateway"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// newTestServer routes every path to handler and returns a client whose
// spot and futures hosts both point at it.
func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, server.URL)
}

func TestDoRequest(t *testing.T) {
	t.Run("non-2xx wraps APIError in TransportError", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		})

		_, err := c.Candle(context.Background(), "NOPE")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected wrapped *APIError, got %v", err)
		}
		if apiErr.StatusCode != 400 || apiErr.Code != -1121 {
			t.Errorf("APIError = %d/%d, want 400/-1121", apiErr.StatusCode, apiErr.Code)
		}
		if apiErr.Message != "Invalid symbol." {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("non-JSON error body keeps status text", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`internal error`))
		})

		_, err := c.ServerTime(context.Background())
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Message != "Internal Server Error" {
			t.Errorf("Message = %q, want %q", apiErr.Message, "Internal Server Error")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"serverTime":1}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.ServerTime(ctx)
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error should wrap context.Canceled, got %v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c := NewClient(url, url)
		_, err := c.ServerTime(context.Background())
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if !strings.HasPrefix(te.URL, url) {
			t.Errorf("URL = %q, want prefix %q", te.URL, url)
		}
	})

	t.Run("invalid JSON is a DecodeError", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		})

		_, err := c.ServerTime(context.Background())
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("expected *DecodeError, got %T: %v", err, err)
		}
	})

	t.Run("records used weight per market", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/fapi") {
				w.Header().Set(UsedWeightHeader, "42")
				w.Write([]byte(`{"symbol":"BTCUSDT","openInterest":"10.5","time":1}`))
				return
			}
			w.Header().Set(UsedWeightHeader, "7")
			w.Write([]byte(`{"serverTime":1}`))
		})

		if _, err := c.ServerTime(context.Background()); err != nil {
			t.Fatalf("ServerTime() error = %v", err)
		}
		if _, err := c.OpenInterest(context.Background(), "BTCUSDT"); err != nil {
			t.Fatalf("OpenInterest() error = %v", err)
		}
		if got := c.Weights().Used(MarketSpot); got != 7 {
			t.Errorf("Used(spot) = %d, want 7", got)
		}
		if got := c.Weights().Used(MarketFutures); got != 42 {
			t.Errorf("Used(futures) = %d, want 42", got)
		}
	})

	t.Run("no retries", func(t *testing.T) {
		var attempts int32
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		if _, err := c.ServerTime(context.Background()); err == nil {
			t.Fatal("expected error, got nil")
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})
}

func TestFetch_Requests(t *testing.T) {
	tests := []struct {
		name      string
		task      model.FetchTask
		wantPath  string
		wantQuery map[string]string
		body      string
	}{
		{
			name:     "server time",
			task:     model.FetchTask{Kind: model.ServerTime},
			wantPath: "/api/v3/time",
			body:     `{"serverTime":1700000000000}`,
		},
		{
			name:      "candle",
			task:      model.FetchTask{Kind: model.Candle, Symbol: "BTCUSDT"},
			wantPath:  "/api/v3/klines",
			wantQuery: map[string]string{"symbol": "BTCUSDT", "interval": "1m", "limit": "1"},
			body:      `[[1700000000000,"1","2","0.5","1.5","100",1700000059999,"150",12,"40","60","0"]]`,
		},
		{
			name:      "order book",
			task:      model.FetchTask{Kind: model.OrderBookSnapshot, Symbol: "BTCUSDT"},
			wantPath:  "/api/v3/depth",
			wantQuery: map[string]string{"symbol": "BTCUSDT", "limit": "100"},
			body:      `{"lastUpdateId":1,"bids":[["1","2"]],"asks":[["3","4"]]}`,
		},
		{
			name:      "open interest",
			task:      model.FetchTask{Kind: model.OpenInterest, Symbol: "BTCUSDT"},
			wantPath:  "/fapi/v1/openInterest",
			wantQuery: map[string]string{"symbol": "BTCUSDT"},
			body:      `{"symbol":"BTCUSDT","openInterest":"10","time":1}`,
		},
		{
			name:      "top account ratio",
			task:      model.FetchTask{Kind: model.TopLongShortAccountRatio, Symbol: "BTCUSDT", Source: model.SourceAccount},
			wantPath:  "/futures/data/topLongShortAccountRatio",
			wantQuery: map[string]string{"symbol": "BTCUSDT", "period": "5m", "limit": "1"},
			body:      `[{"symbol":"BTCUSDT","longShortRatio":"1.2","longAccount":"0.55","shortAccount":"0.45","timestamp":1}]`,
		},
		{
			name:      "top position ratio",
			task:      model.FetchTask{Kind: model.TopLongShortPositionRatio, Symbol: "BTCUSDT", Source: model.SourcePosition},
			wantPath:  "/futures/data/topLongShortPositionRatio",
			wantQuery: map[string]string{"symbol": "BTCUSDT", "period": "5m", "limit": "1"},
			body:      `[{"symbol":"BTCUSDT","longShortRatio":"1.2","longAccount":"0.55","shortAccount":"0.45","timestamp":1}]`,
		},
		{
			name:      "global account ratio",
			task:      model.FetchTask{Kind: model.GlobalLongShortAccountRatio, Symbol: "BTCUSDT"},
			wantPath:  "/futures/data/globalLongShortAccountRatio",
			wantQuery: map[string]string{"symbol": "BTCUSDT", "period": "5m", "limit": "1"},
			body:      `[{"symbol":"BTCUSDT","longShortRatio":"1.2","longAccount":"0.55","shortAccount":"0.45","timestamp":1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.wantPath {
					t.Errorf("path = %q, want %q", r.URL.Path, tt.wantPath)
				}
				for k, v := range tt.wantQuery {
					if got := r.URL.Query().Get(k); got != v {
						t.Errorf("query %s = %q, want %q", k, got, v)
					}
				}
				w.Write([]byte(tt.body))
			})

			rs, err := c.Fetch(context.Background(), tt.task)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if rs.Kind != tt.task.Kind || rs.Symbol != tt.task.Symbol {
				t.Errorf("RowSet tag = (%s, %q), want (%s, %q)", rs.Kind, rs.Symbol, tt.task.Kind, tt.task.Symbol)
			}
			if err := rs.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestFetch_UnknownKind(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "http://127.0.0.1:0")
	if _, err := c.Fetch(context.Background(), model.FetchTask{Kind: model.MetricKind(99)}); err == nil {
		t.Error("expected error for unknown kind, got nil")
	}
}

func TestWeightTracker(t *testing.T) {
	w := NewWeightTracker()

	h := http.Header{}
	h.Set(UsedWeightHeader, "bogus")
	w.Observe(MarketSpot, h)
	if got := w.Used(MarketSpot); got != 0 {
		t.Errorf("Used(spot) after bogus header = %d, want 0", got)
	}

	h.Set(UsedWeightHeader, "120")
	w.Observe(MarketSpot, h)
	w.Observe(MarketSpot, http.Header{})
	if got := w.Used(MarketSpot); got != 120 {
		t.Errorf("Used(spot) = %d, want 120", got)
	}
	if got := w.Used(MarketFutures); got != 0 {
		t.Errorf("Used(futures) = %d, want 0", got)
	}
}

func TestWeightTracker_MaxPerMinute(t *testing.T) {
	w := NewWeightTracker()
	clock := time.Date(2024, 1, 1, 12, 0, 59, 0, time.UTC)
	w.now = func() time.Time { return clock }

	observe := func(v string) {
		h := http.Header{}
		h.Set(UsedWeightHeader, v)
		w.Observe(MarketFutures, h)
	}

	observe("300")
	observe("120")
	if got := w.Used(MarketFutures); got != 300 {
		t.Errorf("Used(futures) = %d, want 300 (max within the minute)", got)
	}

	clock = clock.Add(time.Second)
	observe("45")
	if got := w.Used(MarketFutures); got != 45 {
		t.Errorf("Used(futures) = %d after minute rollover, want 45", got)
	}

	// A late response from the previous minute must not overwrite.
	clock = clock.Add(-time.Second)
	observe("900")
	if got := w.Used(MarketFutures); got != 45 {
		t.Errorf("Used(futures) = %d after stale observation, want 45", got)
	}
}

func TestWeightTracker_ConcurrentObserve(t *testing.T) {
	w := NewWeightTracker()
	clock := time.Date(2024, 1, 1, 12, 0, 59, 0, time.UTC)
	w.now = func() time.Time { return clock }

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := http.Header{}
			h.Set(UsedWeightHeader, strconv.Itoa(i*10))
			w.Observe(MarketSpot, h)
		}()
	}
	wg.Wait()

	if got := w.Used(MarketSpot); got != 500 {
		t.Errorf("Used(spot) = %d, want 500", got)
	}
}
