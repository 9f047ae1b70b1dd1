// Package config binds the engine's policy knobs (retry/scan/iteration
// caps) to flags and environment variables via viper, for the cmd/simulator
// binary. Library callers constructing engine.MatchingEngine directly may
// build a Config literal and never touch viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every tunable policy knob the matching core exposes as
// configuration rather than hardcoded constants. The order book's slot
// count (orderbook.Capacity) is deliberately not here: it is a fixed
// compile-time array size the core's design requires, not a runtime
// parameter — see DESIGN.md's symbol-slotting decision.
type Config struct {
	// PrimaryRetries bounds the optimistic insertion phase's attempt count.
	PrimaryRetries int
	// FallbackRetries bounds the lengthened, backed-off insertion phase's
	// attempt count before handoff to the background inserter.
	FallbackRetries int
	// ScanLimit bounds how far the primary insertion phase walks the list
	// looking for its insertion point.
	ScanLimit int
	// MatchIterations bounds the crossing loop per admission call.
	MatchIterations int

	// Simulator-only knobs.
	Symbols         int
	Workers         int
	OrdersPerWorker int
}

// Default returns the named constants' default values.
func Default() Config {
	return Config{
		PrimaryRetries:  10,
		FallbackRetries: 50,
		ScanLimit:       100,
		MatchIterations: 100,
		Symbols:         16,
		Workers:         8,
		OrdersPerWorker: 10000,
	}
}

// BindFlags registers every Config field as a pflag flag with its default
// value, for a cobra command to attach to its FlagSet.
func BindFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.Int("primary-retries", d.PrimaryRetries, "optimistic insertion attempt cap")
	flags.Int("fallback-retries", d.FallbackRetries, "backed-off insertion attempt cap")
	flags.Int("scan-limit", d.ScanLimit, "insertion traversal cap")
	flags.Int("match-iterations", d.MatchIterations, "crossing loop iteration cap per admission")
	flags.Int("symbols", d.Symbols, "distinct symbols the simulator generates orders for")
	flags.Int("workers", d.Workers, "concurrent producer goroutines the simulator runs")
	flags.Int("orders-per-worker", d.OrdersPerWorker, "orders each simulator worker admits")
}

// Load reads bound flags and LOCKFREE_-prefixed environment variables into
// a Config, starting from the named-constant defaults. Any type mismatch
// in an overriding value is a configuration error, returned rather than
// panicking.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LOCKFREE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("primary-retries", d.PrimaryRetries)
	v.SetDefault("fallback-retries", d.FallbackRetries)
	v.SetDefault("scan-limit", d.ScanLimit)
	v.SetDefault("match-iterations", d.MatchIterations)
	v.SetDefault("symbols", d.Symbols)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("orders-per-worker", d.OrdersPerWorker)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	cfg := Config{
		PrimaryRetries:  v.GetInt("primary-retries"),
		FallbackRetries: v.GetInt("fallback-retries"),
		ScanLimit:       v.GetInt("scan-limit"),
		MatchIterations: v.GetInt("match-iterations"),
		Symbols:         v.GetInt("symbols"),
		Workers:         v.GetInt("workers"),
		OrdersPerWorker: v.GetInt("orders-per-worker"),
	}

	if cfg.PrimaryRetries <= 0 || cfg.FallbackRetries <= 0 || cfg.ScanLimit <= 0 || cfg.MatchIterations <= 0 {
		return Config{}, fmt.Errorf("config: retry/scan/iteration caps must be positive, got %+v", cfg)
	}

	return cfg, nil
}
