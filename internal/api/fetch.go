package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/binance-collector/internal/model"
)

// REST paths.
const (
	pathServerTime    = "/api/v3/time"
	pathKlines        = "/api/v3/klines"
	pathDepth         = "/api/v3/depth"
	pathOpenInterest  = "/fapi/v1/openInterest"
	pathTopRatio      = "/futures/data/topLongShort%sRatio"
	pathGlobalAccount = "/futures/data/globalLongShortAccountRatio"
)

// Fetch performs the request for task and shapes the response into a
// RowSet tagged with the task's kind and symbol.
func (c *Client) Fetch(ctx context.Context, task model.FetchTask) (model.RowSet, error) {
	switch task.Kind {
	case model.ServerTime:
		return c.ServerTime(ctx)
	case model.Candle:
		return c.Candle(ctx, task.Symbol)
	case model.OrderBookSnapshot:
		return c.OrderBook(ctx, task.Symbol)
	case model.OpenInterest:
		return c.OpenInterest(ctx, task.Symbol)
	case model.TopLongShortAccountRatio, model.TopLongShortPositionRatio:
		source := task.Source
		if source == "" {
			source = task.Kind.Source()
		}
		return c.TopLongShortRatio(ctx, task.Symbol, source)
	case model.GlobalLongShortAccountRatio:
		return c.GlobalLongShortAccountRatio(ctx, task.Symbol)
	default:
		return model.RowSet{}, fmt.Errorf("fetch %s: unknown metric kind", task.Kind)
	}
}

// ServerTime fetches the exchange clock.
func (c *Client) ServerTime(ctx context.Context) (model.RowSet, error) {
	var resp ServerTimeResponse
	if err := c.get(ctx, "server_time", MarketSpot, pathServerTime, nil, &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeServerTime(resp)
}

// Candle fetches the latest kline for symbol.
func (c *Client) Candle(ctx context.Context, symbol string) (model.RowSet, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", c.candleInterval)
	query.Set("limit", "1")

	var resp []Kline
	if err := c.get(ctx, "candle "+symbol, MarketSpot, pathKlines, query, &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeCandle(symbol, resp)
}

// OrderBook fetches an order-book snapshot for symbol.
func (c *Client) OrderBook(ctx context.Context, symbol string) (model.RowSet, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("limit", strconv.Itoa(c.depthLimit))

	var resp DepthResponse
	if err := c.get(ctx, "order_book "+symbol, MarketSpot, pathDepth, query, &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeOrderBook(symbol, resp)
}

// OpenInterest fetches the futures open interest for symbol.
func (c *Client) OpenInterest(ctx context.Context, symbol string) (model.RowSet, error) {
	query := url.Values{}
	query.Set("symbol", symbol)

	var resp OpenInterestResponse
	if err := c.get(ctx, "open_interest "+symbol, MarketFutures, pathOpenInterest, query, &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeOpenInterest(symbol, resp)
}

// TopLongShortRatio fetches the top-trader long/short ratio. source is
// model.SourceAccount or model.SourcePosition.
func (c *Client) TopLongShortRatio(ctx context.Context, symbol, source string) (model.RowSet, error) {
	var kind model.MetricKind
	switch source {
	case model.SourceAccount:
		kind = model.TopLongShortAccountRatio
	case model.SourcePosition:
		kind = model.TopLongShortPositionRatio
	default:
		return model.RowSet{}, fmt.Errorf("top long/short ratio %s: unknown source %q", symbol, source)
	}

	var resp []LongShortRatio
	if err := c.get(ctx, kind.String()+" "+symbol, MarketFutures, fmt.Sprintf(pathTopRatio, source), c.ratioQuery(symbol), &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeLongShortRatio(kind, symbol, resp)
}

// GlobalLongShortAccountRatio fetches the all-accounts long/short ratio.
func (c *Client) GlobalLongShortAccountRatio(ctx context.Context, symbol string) (model.RowSet, error) {
	kind := model.GlobalLongShortAccountRatio

	var resp []LongShortRatio
	if err := c.get(ctx, kind.String()+" "+symbol, MarketFutures, pathGlobalAccount, c.ratioQuery(symbol), &resp); err != nil {
		return model.RowSet{}, err
	}
	return ShapeLongShortRatio(kind, symbol, resp)
}

func (c *Client) ratioQuery(symbol string) url.Values {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("period", c.ratioPeriod)
	query.Set("limit", "1")
	return query
}
