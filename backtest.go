// FILE: backtest.go
// Package main – Wires a loaded BacktestConfig into a running World
// (clock, exchanges, environment, strategy, history).
package main

import "fmt"

// strategyRegistry maps a configured strategy name to its constructor.
// Strategies are user code; a deployment registers its strategies here at
// package init time.
var strategyRegistry = map[string]func() Strategy{}

// RegisterStrategy adds name to the registry so BacktestConfig.Strategy can
// select it.
func RegisterStrategy(name string, ctor func() Strategy) {
	strategyRegistry[name] = ctor
}

// Backtest is a fully wired, ready-to-run simulation.
type Backtest struct {
	World *World
	Env   *Environment
	Clock *Clock
}

// NewBacktest constructs every layer described by cfg: the clock, one
// Exchange per configured entry (with its own data root and initial
// balance), the environment, the selected strategy, the history log, and
// the owning World.
func NewBacktest(cfg *BacktestConfig) (*Backtest, error) {
	clock, err := NewClock(cfg.Start, cfg.End)
	if err != nil {
		return nil, err
	}

	ctor, ok := strategyRegistry[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	strategy := ctor()

	exchanges := map[string]*Exchange{}
	for _, entry := range cfg.Exchanges {
		ex, err := NewExchange(ExchangeConfig{
			Name:             entry.Name,
			DataRoot:         entry.DataRoot,
			Clock:            clock,
			InitialBalance:   cfg.InitialBalance[entry.Name],
			MaxDepth:         cfg.MaxDepth,
			BookMaxInterval:  cfg.BookMaxInterval,
			PriceMaxInterval: cfg.PriceMaxInterval,
			MidWindow:        cfg.MidWindow,
			MMR:              cfg.MMR,
			DeliveryFeeRate:  cfg.DeliveryFeeRate,
		})
		if err != nil {
			return nil, fmt.Errorf("exchange %q: %w", entry.Name, err)
		}
		exchanges[entry.Name] = ex
	}

	env := NewEnvironment(clock, exchanges)
	history := NewHistory(HistLevel(cfg.HistLevel))

	var stopCond StopCondition
	if cfg.StopCondition != "" {
		sc, ok := stopConditionRegistry[cfg.StopCondition]
		if !ok {
			return nil, fmt.Errorf("unknown stop_condition %q", cfg.StopCondition)
		}
		stopCond = sc
	}

	world, err := NewWorld(WorldConfig{
		Clock:    clock,
		Env:      env,
		Strategy: strategy,
		History:  history,
		StopCond: stopCond,
		EvalStep: cfg.EvalStep,
	})
	if err != nil {
		return nil, err
	}

	return &Backtest{World: world, Env: env, Clock: clock}, nil
}

// stopConditionRegistry maps a configured stop_condition name to its
// predicate, mirroring strategyRegistry above.
var stopConditionRegistry = map[string]StopCondition{}

// RegisterStopCondition adds name to the registry so
// BacktestConfig.StopCondition can select it.
func RegisterStopCondition(name string, cond StopCondition) {
	stopConditionRegistry[name] = cond
}

// History returns the backtest's accumulated history log.
func (b *Backtest) History() *History { return b.World.history }

// Run drives the backtest to completion.
func (b *Backtest) Run() error { return b.World.Run() }
