// FILE: backtestconfig.go
// Package main – Structured backtest configuration, loaded with
// github.com/spf13/viper. The nested fields (per-exchange initial
// balances, stop condition name) do not fit flat env vars, so this is a
// file-backed config; env.go keeps the flat process-level knobs.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// ExchangeConfigEntry names one exchange and its data root under a
// backtest config.
type ExchangeConfigEntry struct {
	Name     string `mapstructure:"name"`
	DataRoot string `mapstructure:"dataRoot"`
}

// BacktestConfig is the root structured configuration for a single
// backtest run.
type BacktestConfig struct {
	Strategy       string                         `mapstructure:"strategy"`
	Start          int64                          `mapstructure:"start"`
	End            int64                          `mapstructure:"end"`
	EvalStep       int64                          `mapstructure:"eval_step"`
	HistLevel      string                         `mapstructure:"hist_level"`
	Exchanges      []ExchangeConfigEntry          `mapstructure:"exchanges"`
	InitialBalance map[string]map[string]float64  `mapstructure:"initial_balance"`
	StopCondition  string                         `mapstructure:"stop_condition"`

	MaxDepth         int     `mapstructure:"max_depth"`
	BookMaxInterval  int64   `mapstructure:"book_max_interval_ms"`
	PriceMaxInterval int64   `mapstructure:"price_max_interval_ms"`
	MidWindow        int     `mapstructure:"mid_window"`
	MMR              float64 `mapstructure:"mmr"`
	DeliveryFeeRate  float64 `mapstructure:"delivery_fee_rate"`
}

// LoadBacktestConfig reads and validates a BacktestConfig from path
// (YAML/JSON/TOML, anything viper supports by extension).
func LoadBacktestConfig(path string) (*BacktestConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("eval_step", 1000)
	v.SetDefault("hist_level", string(HistInfo))
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("book_max_interval_ms", getEnvInt64("BACKTEST_BOOK_MAX_INTERVAL_MS", 60000))
	v.SetDefault("price_max_interval_ms", getEnvInt64("BACKTEST_PRICE_MAX_INTERVAL_MS", 60000))
	v.SetDefault("mid_window", 1)
	v.SetDefault("mmr", defaultMMR)
	v.SetDefault("delivery_fee_rate", defaultDeliveryFeeRate)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read backtest config %s: %w", path, err)
	}

	var cfg BacktestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse backtest config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants of a backtest configuration.
func (c *BacktestConfig) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("backtest config: strategy is required")
	}
	if c.Start >= c.End {
		return fmt.Errorf("backtest config: start (%d) must be < end (%d)", c.Start, c.End)
	}
	if c.EvalStep <= 0 {
		return fmt.Errorf("backtest config: eval_step must be > 0, got %d", c.EvalStep)
	}
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("backtest config: at least one exchange is required")
	}
	switch HistLevel(c.HistLevel) {
	case HistDebug, HistInfo:
	default:
		return fmt.Errorf("backtest config: invalid hist_level %q", c.HistLevel)
	}
	return nil
}
