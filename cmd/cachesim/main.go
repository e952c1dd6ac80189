// Package main は キャッシュに合成負荷を掛けるシミュレータのエントリーポイントを提供します。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	apphttp "github.com/amakane-hakari/tcache/internal/api/http"
	"github.com/amakane-hakari/tcache/internal/cache"
	"github.com/amakane-hakari/tcache/internal/config"
	ilog "github.com/amakane-hakari/tcache/internal/log"
	"github.com/amakane-hakari/tcache/internal/metrics"
	"github.com/amakane-hakari/tcache/internal/timeindex"
	"github.com/amakane-hakari/tcache/internal/workload"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := ilog.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := cache.NewLocked(cfg.Capacity, cacheOptions(cfg, logger, metrics.NewProm(cfg.Namespace, reg))...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := &apphttp.Health{}
	var srv *http.Server
	errCh := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           apphttp.NewRouter(apphttp.Deps{Stats: c, Gatherer: reg, Health: health, Logger: logger}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		logger.Info("http.start", "addr", cfg.HTTPAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	logger.Info("sim.start",
		"capacity", cfg.Capacity,
		"keys", cfg.Keys,
		"read_ratio", cfg.ReadRatio,
		"remove_ratio", cfg.RemoveRatio,
		"rate", cfg.Rate,
		"duration", cfg.Duration.String(),
		"time_index", cfg.TimeIndex,
	)

	simCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case err := <-errCh:
			logger.Error("http.error", "err", err)
			cancel()
		case <-simCtx.Done():
		}
	}()

	runner := &workload.Runner{
		Rate:     cfg.Rate,
		Duration: cfg.Duration,
		Name:     "cachesim",
		Logger:   logger,
	}
	gen := workload.NewGenerator(cfg.Keys, cfg.ReadRatio, cfg.RemoveRatio, cfg.ValueSize, cfg.Seed)
	summary, runErr := runner.Run(simCtx, gen, c)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("sim.error", "err", runErr)
	}

	if srv != nil {
		health.SetDraining(true)
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http.shutdown", "err", err)
		} else {
			logger.Info("http.stopped")
		}
	}

	out, err := json.MarshalIndent(struct {
		*workload.Summary
		Cache cache.Stats `json:"cache"`
	}{summary, c.Stats()}, "", " ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Printf("\n=== Summary(JSON) ===\n%s\n", out)
	return nil
}

func cacheOptions(cfg *config.Config, logger ilog.Logger, m metrics.Interface) []cache.Option {
	opts := []cache.Option{cache.WithMetrics(m)}
	if cfg.LogLevel == "debug" {
		opts = append(opts, cache.WithLogger(logger))
	}
	if cfg.FixedValues {
		opts = append(opts, cache.WithFixedValueSize(cfg.ValueSize))
	}
	if cfg.CheckInvariants {
		opts = append(opts, cache.WithInvariantChecks())
	}
	if cfg.TimeIndex == "btree" {
		opts = append(opts, cache.WithTimeIndex(func() timeindex.Index {
			return timeindex.NewBTree(timeindex.DefaultDegree)
		}))
	}
	return opts
}
