package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ServerTimeResponse from GET /api/v3/time
type ServerTimeResponse struct {
	ServerTime *Millis `json:"serverTime"`
}

// DepthResponse from GET /api/v3/depth
type DepthResponse struct {
	LastUpdateID *Millis     `json:"lastUpdateId"`
	Bids         *[][]string `json:"bids"`
	Asks         *[][]string `json:"asks"`
}

// OpenInterestResponse from GET /fapi/v1/openInterest
type OpenInterestResponse struct {
	Symbol       *string `json:"symbol"`
	OpenInterest *string `json:"openInterest"`
	Time         *Millis `json:"time"`
}

// LongShortRatio is one element of the /futures/data long/short ratio
// endpoints. The top-trader and global variants share the shape.
type LongShortRatio struct {
	Symbol         *string `json:"symbol"`
	LongShortRatio *string `json:"longShortRatio"`
	LongAccount    *string `json:"longAccount"`
	ShortAccount   *string `json:"shortAccount"`
	Timestamp      *Millis `json:"timestamp"`
}

// Kline is one raw kline array from GET /api/v3/klines:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume,
// trades, takerBuyBase, takerBuyQuote, ignore]
type Kline []json.RawMessage

// Millis is an integer that Binance sends either as a JSON number or as a
// quoted string.
type Millis int64

func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", b, err)
	}
	*m = Millis(v)
	return nil
}
