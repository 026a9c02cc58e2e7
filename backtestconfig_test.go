package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
strategy: noop
start: 0
end: 10000
eval_step: 1000
exchanges:
  - name: okx
    dataRoot: /data/okx
initial_balance:
  okx:
    USDT: 1000
`

// TestLoadBacktestConfig loads a YAML config and applies defaults.
func TestLoadBacktestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadBacktestConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Strategy != "noop" {
		t.Errorf("expected strategy noop, got %q", cfg.Strategy)
	}
	if cfg.End != 10000 || cfg.Start != 0 || cfg.EvalStep != 1000 {
		t.Errorf("unexpected window: start=%d end=%d step=%d", cfg.Start, cfg.End, cfg.EvalStep)
	}
	if len(cfg.Exchanges) != 1 || cfg.Exchanges[0].Name != "okx" || cfg.Exchanges[0].DataRoot != "/data/okx" {
		t.Errorf("unexpected exchanges: %+v", cfg.Exchanges)
	}
	if got := cfg.InitialBalance["okx"]["USDT"]; got != 1000 {
		t.Errorf("expected initial USDT balance 1000, got %v", got)
	}

	// Defaults.
	if cfg.HistLevel != string(HistInfo) {
		t.Errorf("expected default hist_level INFO, got %q", cfg.HistLevel)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected default max_depth %d, got %d", DefaultMaxDepth, cfg.MaxDepth)
	}
	if cfg.MMR != defaultMMR {
		t.Errorf("expected default mmr %v, got %v", defaultMMR, cfg.MMR)
	}
	if cfg.DeliveryFeeRate != defaultDeliveryFeeRate {
		t.Errorf("expected default delivery_fee_rate %v, got %v", defaultDeliveryFeeRate, cfg.DeliveryFeeRate)
	}
}

// TestBacktestConfigValidate rejects structurally invalid configurations.
func TestBacktestConfigValidate(t *testing.T) {
	valid := func() BacktestConfig {
		return BacktestConfig{
			Strategy:  "noop",
			Start:     0,
			End:       10000,
			EvalStep:  1000,
			HistLevel: string(HistInfo),
			Exchanges: []ExchangeConfigEntry{{Name: "okx", DataRoot: "/data"}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*BacktestConfig)
	}{
		{"missing strategy", func(c *BacktestConfig) { c.Strategy = "" }},
		{"start not before end", func(c *BacktestConfig) { c.Start = 10000 }},
		{"non-positive eval_step", func(c *BacktestConfig) { c.EvalStep = 0 }},
		{"no exchanges", func(c *BacktestConfig) { c.Exchanges = nil }},
		{"bad hist_level", func(c *BacktestConfig) { c.HistLevel = "TRACE" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected the baseline config to validate, got %v", err)
	}
}

// TestNewBacktestWiresRegisteredStrategy builds the full stack from a
// config using the strategy registry.
func TestNewBacktestWiresRegisteredStrategy(t *testing.T) {
	RegisterStrategy("wiring-test-noop", func() Strategy {
		return &scriptedStrategy{}
	})
	RegisterStopCondition("wiring-test-stop", func(env *Environment) bool { return false })

	cfg := &BacktestConfig{
		Strategy:      "wiring-test-noop",
		Start:         0,
		End:           10000,
		EvalStep:      1000,
		HistLevel:     string(HistInfo),
		Exchanges:     []ExchangeConfigEntry{{Name: "okx", DataRoot: t.TempDir()}},
		StopCondition: "wiring-test-stop",
		InitialBalance: map[string]map[string]float64{
			"okx": {"USDT": 500},
		},
	}
	bt, err := NewBacktest(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ex, ok := bt.Env.Exchanges["okx"]
	if !ok {
		t.Fatal("expected the configured exchange to exist")
	}
	if got := ex.Balance().Get("USDT"); got != 500 {
		t.Errorf("expected initial balance 500, got %v", got)
	}
	if bt.Clock.Now() != 0 || bt.Clock.End() != 10000 {
		t.Errorf("unexpected clock window: now=%d end=%d", bt.Clock.Now(), bt.Clock.End())
	}

	if _, err := NewBacktest(&BacktestConfig{
		Strategy:  "unregistered",
		Start:     0,
		End:       1000,
		EvalStep:  100,
		HistLevel: string(HistInfo),
		Exchanges: []ExchangeConfigEntry{{Name: "okx", DataRoot: t.TempDir()}},
	}); err == nil {
		t.Error("expected an error for an unregistered strategy")
	}
}
