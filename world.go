// FILE: world.go
// Package main – Outer event loop: snapshot, stop-check, strategy.eval,
// event drain, exchange.eval, clock advance — in that order, every tick.
package main

// StopCondition reports whether the World should terminate before clock
// reaches end.
type StopCondition func(env *Environment) bool

// World owns the clock, the environment, the pending strategy-emitted
// events, the strategy, and the history log.
type World struct {
	clock    *Clock
	env      *Environment
	strategy Strategy
	history  *History
	stopCond StopCondition

	evalStep int64
	pending  []Event
}

// WorldConfig bundles World construction parameters.
type WorldConfig struct {
	Clock    *Clock
	Env      *Environment
	Strategy Strategy
	History  *History
	StopCond StopCondition
	EvalStep int64
}

// NewWorld builds a World. EvalStep must be > 0.
func NewWorld(cfg WorldConfig) (*World, error) {
	if cfg.EvalStep <= 0 {
		return nil, ErrInvalidTime
	}
	return &World{
		clock:    cfg.Clock,
		env:      cfg.Env,
		strategy: cfg.Strategy,
		history:  cfg.History,
		stopCond: cfg.StopCond,
		evalStep: cfg.EvalStep,
	}, nil
}

// Run drives the World loop to completion: either the stop condition
// fires, the clock reaches its end, or a fatal error propagates.
func (w *World) Run() error {
	for {
		done, err := w.Tick()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Tick executes exactly one loop iteration, returning done=true once the
// backtest should stop.
func (w *World) Tick() (done bool, err error) {
	if w.history != nil {
		if err := w.history.Snapshot(w.env); err != nil {
			return false, err
		}
	}

	if (w.stopCond != nil && w.stopCond(w.env)) || w.clock.Now() >= w.clock.End() {
		return true, nil
	}

	w.pending = append(w.pending, w.strategy.Eval(w.env)...)

	remaining := w.pending[:0]
	for _, ev := range w.pending {
		if err := ev.Execute(w.env); err != nil {
			remaining = append(remaining, ev)
		}
	}
	w.pending = remaining

	if err := w.env.Eval(); err != nil {
		return false, err
	}
	recordTick(w.env)

	if err := w.clock.Add(w.evalStep); err != nil {
		return false, err
	}

	return false, nil
}
