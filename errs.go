// FILE: errs.go
// Package main – Error kinds for the backtesting kernel.
//
// Every error the kernel can raise is a package-level sentinel (or wraps
// one via fmt.Errorf("...: %w", ...)), checked with errors.Is at call
// sites. Two buckets:
//
//   - fatal: aborts the run (propagated to World.Run's caller). Historical
//     data gaps, malformed rows, clock misuse, unsupported instruments.
//   - non-fatal: observable order outcomes. Insufficient balance/liquidity
//     transitions an Order to INSUFFICIENT; the engine keeps going.
package main

import "errors"

var (
	// Clock
	ErrInvalidTime = errors.New("invalid time")

	// TimeSeriesReader / BookReplay / PricePoint
	ErrNoDataForTime       = errors.New("no data for time")
	ErrNoPriorDataPoint    = errors.New("no prior data point")
	ErrDataGapExceeded     = errors.New("data gap exceeded max interval")
	ErrNullValue           = errors.New("null value at timestamp")
	ErrMalformedRow        = errors.New("malformed row")
	ErrMissingSnapshotHead = errors.New("chunk does not begin with a snapshot")
	ErrClockRegressed      = errors.New("clock regressed")

	// Exchange / Order
	ErrUnsupportedQuote    = errors.New("unsupported quote currency for futures")
	ErrUnsupportedInstType = errors.New("unsupported instrument type")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientLiquid  = errors.New("insufficient liquidity")
	ErrNegativeSettlement  = errors.New("negative settlement")
	ErrOrderTerminal       = errors.New("order operation on terminal order")
	ErrOrderNotOpen        = errors.New("order is not open")
	ErrNotImplemented      = errors.New("not implemented")
)
