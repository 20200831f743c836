// Package market tracks the listing status of the collected symbols on the
// spot and futures exchanges.
//
// The registry syncs once at startup, failing if a configured symbol is not
// listed on both markets, and then reconciles in the background so that a
// halted or delisted symbol is reported before its fetches start failing.
// A startup sync that cannot reach the exchange is left to reconciliation.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// StatusTrading is the listing status of a symbol open for trading.
const StatusTrading = "TRADING"

// StatusUnlisted marks a symbol absent from a market's listing.
const StatusUnlisted = "UNLISTED"

// ErrUnlisted is returned by Start when a symbol is missing from a market.
var ErrUnlisted = errors.New("symbol not listed")

// Source lists every symbol on each market with its status.
type Source interface {
	SpotSymbols(ctx context.Context) (map[string]string, error)
	FuturesSymbols(ctx context.Context) (map[string]string, error)
}

// SymbolStatus is the listing status of one symbol on both markets.
type SymbolStatus struct {
	Symbol  string `json:"symbol"`
	Spot    string `json:"spot"`
	Futures string `json:"futures"`
}

// Tradable reports whether the symbol trades on both markets.
func (s SymbolStatus) Tradable() bool {
	return s.Spot == StatusTrading && s.Futures == StatusTrading
}

// Config holds Registry configuration.
type Config struct {
	ReconcileInterval time.Duration
	SyncTimeout       time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconcileInterval: 15 * time.Minute,
		SyncTimeout:       30 * time.Second,
	}
}

// Registry holds the latest listing status of a fixed symbol set.
type Registry struct {
	cfg     Config
	source  Source
	symbols []string
	logger  *slog.Logger

	mu       sync.RWMutex
	statuses map[string]SymbolStatus
	syncedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a Registry for symbols.
func NewRegistry(cfg Config, source Source, symbols []string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = DefaultConfig().SyncTimeout
	}

	return &Registry{
		cfg:      cfg,
		source:   source,
		symbols:  append([]string(nil), symbols...),
		logger:   logger,
		statuses: make(map[string]SymbolStatus, len(symbols)),
	}
}

// Start performs the initial sync and begins background reconciliation.
// It fails if a symbol is unlisted. A listed but halted symbol, or listings
// that cannot be fetched, only log a warning.
func (r *Registry) Start(ctx context.Context) error {
	if err := r.sync(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn("initial symbol sync failed, continuing",
			"error", err,
			"retry_in", r.cfg.ReconcileInterval,
		)
	}

	var unlisted []string
	for _, s := range r.Statuses() {
		if s.Spot == StatusUnlisted || s.Futures == StatusUnlisted {
			unlisted = append(unlisted, fmt.Sprintf("%s (spot=%s futures=%s)", s.Symbol, s.Spot, s.Futures))
		}
	}
	if len(unlisted) > 0 {
		return fmt.Errorf("%w: %s", ErrUnlisted, strings.Join(unlisted, ", "))
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	if r.cfg.ReconcileInterval > 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.reconciliationLoop(r.ctx)
		}()
	}

	r.logger.Info("symbol registry started", "symbols", len(r.symbols))
	return nil
}

// Stop gracefully shuts down.
func (r *Registry) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("symbol registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Statuses returns the latest status of every symbol in configured order.
func (r *Registry) Statuses() []SymbolStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SymbolStatus, 0, len(r.symbols))
	for _, sym := range r.symbols {
		if s, ok := r.statuses[sym]; ok {
			out = append(out, s)
		}
	}
	return out
}

// SyncedAt returns the time of the last successful sync.
func (r *Registry) SyncedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.syncedAt
}

func (r *Registry) reconciliationLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sync(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("symbol reconciliation failed", "error", err)
			}
		}
	}
}

// sync fetches both listings and records each symbol's status, logging
// every symbol whose status changed.
func (r *Registry) sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.SyncTimeout)
	defer cancel()

	spot, err := r.source.SpotSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list spot symbols: %w", err)
	}
	futures, err := r.source.FuturesSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list futures symbols: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sym := range r.symbols {
		next := SymbolStatus{
			Symbol:  sym,
			Spot:    statusOf(spot, sym),
			Futures: statusOf(futures, sym),
		}
		prev, seen := r.statuses[sym]
		r.statuses[sym] = next

		if seen && prev == next {
			continue
		}
		if next.Tradable() {
			if seen {
				r.logger.Info("symbol trading again", "symbol", sym)
			}
			continue
		}
		r.logger.Warn("symbol not trading on both markets",
			"symbol", sym,
			"spot", next.Spot,
			"futures", next.Futures,
		)
	}
	r.syncedAt = time.Now()

	return nil
}

func statusOf(listing map[string]string, symbol string) string {
	if s, ok := listing[symbol]; ok {
		return s
	}
	return StatusUnlisted
}
