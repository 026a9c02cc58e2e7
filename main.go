// FILE: main.go
// Package main – CLI entrypoint: load a BacktestConfig, serve Prometheus
// metrics, run the backtest to completion, then flush history. Flag-driven
// config path, /metrics HTTP server, context-based graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", getEnv("BACKTEST_CONFIG", "backtest.yaml"), "path to the backtest configuration file")
	metricsAddr := flag.String("metrics-addr", getEnv("BACKTEST_METRICS_ADDR", ":9090"), "address to serve Prometheus metrics on")
	historyOut := flag.String("history-out", getEnv("BACKTEST_HISTORY_OUT", ""), "optional path to write the history JSON export to")
	flag.Parse()

	if err := run(*configPath, *metricsAddr, *historyOut); err != nil {
		log.Fatalf("backtest failed: %v", err)
	}
}

func run(configPath, metricsAddr, historyOut string) error {
	cfg, err := LoadBacktestConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	bt, err := NewBacktest(cfg)
	if err != nil {
		return fmt.Errorf("build backtest: %w", err)
	}

	srv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Printf("serving metrics on %s", metricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- bt.Run() }()

	var finalErr error
	select {
	case finalErr = <-runErr:
	case <-ctx.Done():
		log.Printf("shutdown signal received, waiting for backtest to reach a safe stopping point")
		finalErr = <-runErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	if historyOut != "" {
		if err := writeHistory(bt.History(), historyOut); err != nil {
			log.Printf("failed to write history export: %v", err)
		}
	}

	return finalErr
}

func writeHistory(h *History, path string) error {
	encoded, err := h.Export()
	if err != nil {
		return err
	}
	var pretty map[string]any
	if err := json.Unmarshal(encoded, &pretty); err == nil {
		if reencoded, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			encoded = reencoded
		}
	}
	return os.WriteFile(path, encoded, 0o644)
}
