package api

import (
	"context"
	"fmt"

	futures "github.com/adshao/go-binance/v2/futures"
)

const pathExchangeInfo = "/api/v3/exchangeInfo"

// StatusTrading is the listing status of a symbol open for trading.
const StatusTrading = "TRADING"

// FuturesInfo is the subset of futures exchangeInfo the collector uses.
type FuturesInfo struct {
	// WeightLimit is the REQUEST_WEIGHT per minute limit, 0 if not listed.
	WeightLimit int64
	// Symbols maps each listed contract to its status.
	Symbols map[string]string
}

// FuturesExchangeInfo queries the futures exchangeInfo endpoint through the
// go-binance futures client, sharing this client's HTTP transport.
func (c *Client) FuturesExchangeInfo(ctx context.Context) (FuturesInfo, error) {
	client := futures.NewClient("", "")
	client.HTTPClient = c.httpClient
	client.SetApiEndpoint(c.futuresURL)

	info, err := client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return FuturesInfo{}, fmt.Errorf("fetch futures exchange info: %w", err)
	}

	out := FuturesInfo{Symbols: make(map[string]string, len(info.Symbols))}
	for _, rl := range info.RateLimits {
		if rl.RateLimitType == "REQUEST_WEIGHT" && rl.Interval == "MINUTE" {
			out.WeightLimit = rl.Limit
			break
		}
	}
	for _, s := range info.Symbols {
		out.Symbols[s.Symbol] = s.Status
	}
	return out, nil
}

// FuturesSymbols returns every listed futures contract and its status.
func (c *Client) FuturesSymbols(ctx context.Context) (map[string]string, error) {
	info, err := c.FuturesExchangeInfo(ctx)
	if err != nil {
		return nil, err
	}
	return info.Symbols, nil
}

type spotExchangeInfo struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Status string `json:"status"`
	} `json:"symbols"`
}

// SpotSymbols returns every listed spot symbol and its status.
func (c *Client) SpotSymbols(ctx context.Context) (map[string]string, error) {
	var resp spotExchangeInfo
	if err := c.get(ctx, "exchange_info", MarketSpot, pathExchangeInfo, nil, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(resp.Symbols))
	for _, s := range resp.Symbols {
		out[s.Symbol] = s.Status
	}
	return out, nil
}
