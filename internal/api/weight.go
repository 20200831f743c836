package api

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Market identifies which Binance REST host served a request.
type Market string

const (
	MarketSpot    Market = "spot"
	MarketFutures Market = "futures"
)

// UsedWeightHeader carries the IP's request weight consumed in the current minute.
const UsedWeightHeader = "X-MBX-USED-WEIGHT-1m"

// WeightTracker records, per market, the highest used-weight header seen in
// the current wall-clock minute. Responses of one cycle complete out of
// order, so the last header is not necessarily the highest.
type WeightTracker struct {
	spot    weightSlot
	futures weightSlot

	now func() time.Time
}

// NewWeightTracker creates an empty tracker.
func NewWeightTracker() *WeightTracker {
	return &WeightTracker{now: time.Now}
}

// Observe records the used weight reported in header, if present.
func (t *WeightTracker) Observe(market Market, header http.Header) {
	v := header.Get(UsedWeightHeader)
	if v == "" {
		return
	}
	used, err := strconv.ParseInt(v, 10, 64)
	if err != nil || used < 0 {
		return
	}
	minute := t.now().Unix() / 60
	switch market {
	case MarketSpot:
		t.spot.observe(minute, used)
	case MarketFutures:
		t.futures.observe(minute, used)
	}
}

// Used returns the highest used weight observed for market in the most
// recent minute that saw a response.
func (t *WeightTracker) Used(market Market) int64 {
	switch market {
	case MarketSpot:
		return t.spot.used()
	case MarketFutures:
		return t.futures.used()
	default:
		return 0
	}
}

// weightSlot packs the minute into the high 32 bits and the weight into the
// low 32 bits so both update in one compare-and-swap.
type weightSlot struct {
	v atomic.Int64
}

const weightMask = 1<<32 - 1

func (s *weightSlot) observe(minute, used int64) {
	if used > weightMask {
		used = weightMask
	}
	next := minute<<32 | used
	for {
		old := s.v.Load()
		oldMinute, oldUsed := old>>32, old&weightMask
		if oldMinute > minute || (oldMinute == minute && oldUsed >= used) {
			return
		}
		if s.v.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *weightSlot) used() int64 {
	return s.v.Load() & weightMask
}
