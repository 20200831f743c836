package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/binance-collector/internal/market"
	"github.com/rickgao/binance-collector/internal/metrics"
)

// staleAfter is how old the last cycle may be before health degrades.
const staleAfter = 3 * time.Minute

type pinger interface {
	Ping(ctx context.Context) error
}

type cycleSource interface {
	LastCycle() (metrics.CycleReport, bool)
}

type symbolSource interface {
	Statuses() []market.SymbolStatus
}

// newHandler serves /health, /debug/cycle, /debug/symbols and the metrics
// endpoint.
func newHandler(store pinger, cycles cycleSource, symbols symbolSource, metricsHandler http.Handler, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := store.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["store"] = "connected"
		}

		statuses := symbols.Statuses()
		var halted []string
		for _, st := range statuses {
			if !st.Tradable() {
				halted = append(halted, st.Symbol)
			}
		}
		health.Components["symbols"] = map[string]any{
			"synced":      len(statuses) > 0,
			"not_trading": halted,
		}
		if (len(halted) > 0 || len(statuses) == 0) && health.Status == "healthy" {
			health.Status = "degraded"
		}

		last, ok := cycles.LastCycle()
		if !ok {
			health.Components["last_cycle"] = "none"
		} else {
			age := time.Since(last.Timings.Dispatched)
			health.Components["last_cycle"] = map[string]any{
				"id":     last.ID,
				"status": last.Status,
				"age":    age.Round(time.Second).String(),
			}
			if health.Status == "healthy" && (!last.OK() || age > staleAfter) {
				health.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/cycle", func(w http.ResponseWriter, r *http.Request) {
		last, ok := cycles.LastCycle()
		if !ok {
			http.Error(w, "no cycle has run yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(last)
	})

	mux.HandleFunc("/debug/symbols", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(symbols.Statuses())
	})

	mux.Handle(metricsPath, metricsHandler)

	return mux
}
