package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rickgao/binance-collector/internal/version"
)

// errorBody is the error payload Binance returns alongside 4xx/5xx codes.
type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// doRequest performs a GET against base+path and returns the raw body.
// Every failure is reported as a *TransportError.
func (c *Client) doRequest(ctx context.Context, op string, market Market, base, path string, query url.Values) ([]byte, error) {
	fullURL := base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, URL: fullURL, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &TransportError{Op: op, URL: fullURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: fullURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	c.weights.Observe(market, resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: fullURL, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Msg != "" {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Msg
		}
		return nil, &TransportError{Op: op, URL: fullURL, Err: apiErr}
	}

	c.logger.Debug("binance request complete",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	return body, nil
}

// get performs a GET request and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, op string, market Market, path string, query url.Values, result any) error {
	base := c.spotURL
	if market == MarketFutures {
		base = c.futuresURL
	}

	body, err := c.doRequest(ctx, op, market, base, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{Op: op, Err: err}
	}

	return nil
}
