// Package config はシミュレータの設定をフラグと環境変数から読み込みます。
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はシミュレータの設定です。
type Config struct {
	HTTPAddr        string
	Capacity        int
	Keys            int
	ReadRatio       float64
	RemoveRatio     float64
	ValueSize       int
	FixedValues     bool
	Rate            int
	Duration        time.Duration
	Seed            int64
	TimeIndex       string
	CheckInvariants bool
	LogLevel        string
	LogFormat       string
	Namespace       string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func parseBoolEnv(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true"
}

// Load は args (プログラム名を除く) と TCACHE_* 環境変数から設定を読み込みます。
// フラグが環境変数より優先されます。
func Load(args []string) (*Config, error) {
	var c Config
	fs := flag.NewFlagSet("cachesim", flag.ContinueOnError)

	dur, err := time.ParseDuration(envOr("TCACHE_DURATION", "30s"))
	if err != nil {
		return nil, fmt.Errorf("TCACHE_DURATION: %w", err)
	}

	fs.StringVar(&c.HTTPAddr, "http-addr", envOr("TCACHE_HTTP_ADDR", ":8080"), "Address of the operational HTTP server (empty disables it)")
	fs.IntVar(&c.Capacity, "capacity", parseIntEnv("TCACHE_CAPACITY", 10_000), "Cache capacity")
	fs.IntVar(&c.Keys, "keys", parseIntEnv("TCACHE_KEYS", 50_000), "Size of the key space")
	fs.Float64Var(&c.ReadRatio, "read-ratio", parseFloatEnv("TCACHE_READ_RATIO", 0.8), "Ratio of get operations")
	fs.Float64Var(&c.RemoveRatio, "remove-ratio", parseFloatEnv("TCACHE_REMOVE_RATIO", 0.05), "Ratio of remove operations")
	fs.IntVar(&c.ValueSize, "value-size", parseIntEnv("TCACHE_VALUE_SIZE", 128), "Size of each value in bytes")
	fs.BoolVar(&c.FixedValues, "fixed-values", parseBoolEnv("TCACHE_FIXED_VALUES"), "Store values in the fixed-width layout")
	fs.IntVar(&c.Rate, "rate", parseIntEnv("TCACHE_RATE", 10_000), "Operations per second")
	fs.DurationVar(&c.Duration, "duration", dur, "Duration of the simulation (0 runs until interrupted)")
	fs.Int64Var(&c.Seed, "seed", int64(parseIntEnv("TCACHE_SEED", 1)), "Random seed")
	fs.StringVar(&c.TimeIndex, "time-index", envOr("TCACHE_TIME_INDEX", "heap"), "Time index implementation (heap|btree)")
	fs.BoolVar(&c.CheckInvariants, "check-invariants", parseBoolEnv("TCACHE_CHECK_INVARIANTS"), "Verify internal consistency after each mutation")
	fs.StringVar(&c.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug|info|error)")
	fs.StringVar(&c.LogFormat, "log-format", envOr("LOG_FORMAT", "text"), "Log format (text|json)")
	fs.StringVar(&c.Namespace, "metrics-namespace", envOr("TCACHE_METRICS_NAMESPACE", "tcache"), "Prometheus namespace")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は設定値の範囲を検査します。
func (c *Config) Validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if c.Keys <= 0 {
		errs = append(errs, fmt.Errorf("keys must be positive, got %d", c.Keys))
	}
	if c.ReadRatio < 0 || c.RemoveRatio < 0 || c.ReadRatio+c.RemoveRatio > 1 {
		errs = append(errs, fmt.Errorf("read-ratio + remove-ratio must be within [0,1], got %.2f + %.2f", c.ReadRatio, c.RemoveRatio))
	}
	if c.ValueSize < 0 {
		errs = append(errs, fmt.Errorf("value-size must not be negative, got %d", c.ValueSize))
	}
	if c.Rate <= 0 {
		errs = append(errs, fmt.Errorf("rate must be positive, got %d", c.Rate))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %s", c.Duration))
	}
	if c.TimeIndex != "heap" && c.TimeIndex != "btree" {
		errs = append(errs, fmt.Errorf("unknown time index %q", c.TimeIndex))
	}
	return errors.Join(errs...)
}
