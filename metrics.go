// FILE: metrics.go
// Package main – Prometheus instrumentation for a running backtest:
// metrics registered once at package init, updated from the run loop.
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSimTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backtest_sim_time_ms",
		Help: "Current simulation clock value, in epoch milliseconds.",
	})

	metricEquity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backtest_equity",
		Help: "Current balance per exchange and currency.",
	}, []string{"exchange", "currency"})

	metricOrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_orders_total",
		Help: "Orders reaching a terminal status, by exchange and outcome.",
	}, []string{"exchange", "status"})

	metricLiquidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_liquidations_total",
		Help: "Forced position liquidations, by exchange.",
	}, []string{"exchange"})

	metricDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_deliveries_total",
		Help: "Position deliveries at instrument expiry, by exchange.",
	}, []string{"exchange"})
)

// recordTick publishes per-tick gauges for the given environment.
func recordTick(env *Environment) {
	metricSimTime.Set(float64(env.SimTime()))
	for name, ex := range env.Exchanges {
		for ccy, amount := range ex.Balance().Snapshot() {
			metricEquity.WithLabelValues(name, ccy).Set(amount)
		}
	}
}

// recordOrderTerminal bumps the order-outcome counter once an order
// reaches a terminal status.
func recordOrderTerminal(exchangeName string, status OrderStatus) {
	metricOrdersTotal.WithLabelValues(exchangeName, string(status)).Inc()
}

// recordLiquidation bumps the liquidation counter for exchangeName.
func recordLiquidation(exchangeName string) {
	metricLiquidationsTotal.WithLabelValues(exchangeName).Inc()
}

// recordDelivery bumps the delivery counter for exchangeName.
func recordDelivery(exchangeName string) {
	metricDeliveriesTotal.WithLabelValues(exchangeName).Inc()
}
