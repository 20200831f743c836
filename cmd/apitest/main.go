// apitest fetches every metric for one symbol from Binance and prints the
// shaped rows to the console. Nothing is written to a database.
// Usage: go run ./cmd/apitest --symbol BTCUSDT
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/binance-collector/internal/api"
	"github.com/rickgao/binance-collector/internal/config"
	"github.com/rickgao/binance-collector/internal/poller"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to fetch")
	spotURL := flag.String("spot-url", config.DefaultSpotURL, "spot REST base URL")
	futuresURL := flag.String("futures-url", config.DefaultFuturesURL, "futures REST base URL")
	verbose := flag.Bool("verbose", false, "print every row as JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := api.NewClient(*spotURL, *futuresURL, api.WithLogger(logger))

	tasks := poller.BuildTasks([]string{*symbol})
	start := time.Now()
	results, err := poller.Execute(ctx, client, tasks, 0)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}

	mapping, err := poller.Reassemble(tasks, results)
	if err != nil {
		logger.Error("reassemble failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("fetched %d tasks in %s\n", len(tasks), time.Since(start).Round(time.Millisecond))
	fmt.Printf("used weight: spot=%d futures=%d\n\n",
		client.Weights().Used(api.MarketSpot),
		client.Weights().Used(api.MarketFutures),
	)

	for _, e := range mapping.Entries() {
		fmt.Printf("%-45s %4d rows  %v\n", e.Key, e.RowSet.Len(), e.RowSet.Columns)
		if *verbose {
			for _, row := range e.RowSet.Rows {
				data, _ := json.Marshal(row)
				fmt.Printf("    %s\n", data)
			}
		} else if e.RowSet.Len() > 0 {
			data, _ := json.Marshal(e.RowSet.Rows[0])
			fmt.Printf("    %s\n", data)
		}
	}
}
