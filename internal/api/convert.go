package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rickgao/binance-collector/internal/model"
)

// Kline array positions kept in the clines table.
const (
	klineOpen        = 1
	klineHigh        = 2
	klineLow         = 3
	klineClose       = 4
	klineCloseTime   = 6
	klineQuoteVolume = 7
	klineTrades      = 8
	klineTakerBase   = 9
	klineTakerQuote  = 10
	klineMinFields   = 11
)

// checkDecimal verifies that s parses as a decimal number.
func checkDecimal(op, field, s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return &SchemaError{Op: op, Field: field, Reason: fmt.Sprintf("not a decimal: %q", s)}
	}
	return nil
}

// requiredDecimal dereferences a decimal string field.
func requiredDecimal(op, field string, v *string) (string, error) {
	if v == nil {
		return "", &SchemaError{Op: op, Field: field}
	}
	if err := checkDecimal(op, field, *v); err != nil {
		return "", err
	}
	return *v, nil
}

// ShapeServerTime builds the server_time RowSet.
func ShapeServerTime(resp ServerTimeResponse) (model.RowSet, error) {
	const op = "server_time"
	if resp.ServerTime == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "serverTime"}
	}

	rs := model.NewRowSet(model.ServerTime, "")
	rs.Append(int64(*resp.ServerTime))
	return rs, nil
}

// ShapeCandle builds the clines RowSet from the most recent kline.
func ShapeCandle(symbol string, klines []Kline) (model.RowSet, error) {
	op := "candle " + symbol
	if len(klines) == 0 {
		return model.RowSet{}, &SchemaError{Op: op, Field: "[0]", Reason: "empty array"}
	}
	k := klines[len(klines)-1]
	if len(k) < klineMinFields {
		return model.RowSet{}, &SchemaError{Op: op, Field: fmt.Sprintf("[%d]", len(k)), Reason: fmt.Sprintf("kline has %d fields, want at least %d", len(k), klineMinFields)}
	}

	intAt := func(i int, field string) (int64, error) {
		var v Millis
		if err := json.Unmarshal(k[i], &v); err != nil {
			return 0, &SchemaError{Op: op, Field: field, Reason: err.Error()}
		}
		return int64(v), nil
	}
	decAt := func(i int, field string) (string, error) {
		var s string
		if err := json.Unmarshal(k[i], &s); err != nil {
			return "", &SchemaError{Op: op, Field: field, Reason: "not a string"}
		}
		if err := checkDecimal(op, field, s); err != nil {
			return "", err
		}
		return s, nil
	}

	closeTime, err := intAt(klineCloseTime, "closeTime")
	if err != nil {
		return model.RowSet{}, err
	}
	trades, err := intAt(klineTrades, "trades")
	if err != nil {
		return model.RowSet{}, err
	}

	fields := []struct {
		idx  int
		name string
	}{
		{klineOpen, "open"},
		{klineHigh, "high"},
		{klineLow, "low"},
		{klineClose, "close"},
		{klineQuoteVolume, "quoteVolume"},
		{klineTakerBase, "takerBuyBaseVolume"},
		{klineTakerQuote, "takerBuyQuoteVolume"},
	}
	vals := make([]string, len(fields))
	for i, f := range fields {
		if vals[i], err = decAt(f.idx, f.name); err != nil {
			return model.RowSet{}, err
		}
	}

	rs := model.NewRowSet(model.Candle, symbol)
	rs.Append(closeTime, vals[0], vals[1], vals[2], vals[3], vals[4], trades, vals[5], vals[6], symbol)
	return rs, nil
}

// ShapeOrderBook builds the order_book RowSet: one row per depth level,
// bids and asks side by side, the shorter side padded with NULLs.
func ShapeOrderBook(symbol string, resp DepthResponse) (model.RowSet, error) {
	op := "order_book " + symbol
	if resp.LastUpdateID == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "lastUpdateId"}
	}
	if resp.Bids == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "bids"}
	}
	if resp.Asks == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "asks"}
	}

	bids, err := levels(op, "bids", *resp.Bids)
	if err != nil {
		return model.RowSet{}, err
	}
	asks, err := levels(op, "asks", *resp.Asks)
	if err != nil {
		return model.RowSet{}, err
	}

	n := max(len(bids), len(asks))
	rs := model.NewRowSet(model.OrderBookSnapshot, symbol)
	rs.Rows = make([][]any, 0, n)
	for i := 0; i < n; i++ {
		var bidPrice, bidQty, askPrice, askQty any
		if i < len(bids) {
			bidPrice, bidQty = bids[i][0], bids[i][1]
		}
		if i < len(asks) {
			askPrice, askQty = asks[i][0], asks[i][1]
		}
		rs.Append(bidPrice, bidQty, askPrice, askQty, int64(*resp.LastUpdateID), symbol)
	}
	return rs, nil
}

func levels(op, side string, raw [][]string) ([][2]string, error) {
	out := make([][2]string, len(raw))
	for i, lvl := range raw {
		field := fmt.Sprintf("%s[%d]", side, i)
		if len(lvl) < 2 {
			return nil, &SchemaError{Op: op, Field: field, Reason: "level needs price and quantity"}
		}
		if err := checkDecimal(op, field+".price", lvl[0]); err != nil {
			return nil, err
		}
		if err := checkDecimal(op, field+".quantity", lvl[1]); err != nil {
			return nil, err
		}
		out[i] = [2]string{lvl[0], lvl[1]}
	}
	return out, nil
}

// ShapeOpenInterest builds the open_interests RowSet.
func ShapeOpenInterest(symbol string, resp OpenInterestResponse) (model.RowSet, error) {
	op := "open_interest " + symbol
	if resp.Symbol == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "symbol"}
	}
	oi, err := requiredDecimal(op, "openInterest", resp.OpenInterest)
	if err != nil {
		return model.RowSet{}, err
	}
	if resp.Time == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "time"}
	}

	rs := model.NewRowSet(model.OpenInterest, symbol)
	rs.Append(*resp.Symbol, oi, int64(*resp.Time))
	return rs, nil
}

// ShapeLongShortRatio builds the RowSet for any of the three long/short
// ratio kinds from the first element of the response. The stored value is
// the long-account share for all three tables.
func ShapeLongShortRatio(kind model.MetricKind, symbol string, resp []LongShortRatio) (model.RowSet, error) {
	op := kind.String() + " " + symbol
	switch kind {
	case model.TopLongShortAccountRatio, model.TopLongShortPositionRatio, model.GlobalLongShortAccountRatio:
	default:
		return model.RowSet{}, fmt.Errorf("%s: not a long/short ratio kind", op)
	}
	if len(resp) == 0 {
		return model.RowSet{}, &SchemaError{Op: op, Field: "[0]", Reason: "empty array"}
	}

	r := resp[0]
	if r.Symbol == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "symbol"}
	}
	long, err := requiredDecimal(op, "longAccount", r.LongAccount)
	if err != nil {
		return model.RowSet{}, err
	}
	if r.Timestamp == nil {
		return model.RowSet{}, &SchemaError{Op: op, Field: "timestamp"}
	}

	rs := model.NewRowSet(kind, symbol)
	rs.Append(*r.Symbol, long, int64(*r.Timestamp))
	return rs, nil
}
