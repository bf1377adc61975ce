// Command batchrun pushes a synthetic workload through batches.Map and logs
// what happened: mode, results, timing and recorded metrics.
//
// Usage:
//
//	batchrun --items 200 --concurrency 8 --out-of-order --max-latency 20ms
//
// Every flag may also be given as BATCHRUN_<FLAG> (for example
// BATCHRUN_OUT_OF_ORDER=true), directly or through a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ygrebnov/batches"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "batchrun:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	s, err := loadSettings(args, out)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log := newLogger(s, out)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	backend := newMetricsBackend(s.Metrics)
	defer func() { _ = backend.shutdown(context.Background()) }()

	w := newWorkload(s)
	start := time.Now()
	res, runErr := batches.Map(ctx, batches.FromSeq(w.positions()), w.process,
		batches.WithMaxConcurrency(s.Concurrency),
		batches.WithOutOfOrder(s.OutOfOrder),
		batches.WithEstimatedResultSize(s.Items),
		batches.WithLogger(log),
		batches.WithMetrics(backend.provider),
	)
	elapsed := time.Since(start)

	if err := backend.report(context.Background(), log); err != nil {
		log.Warn().Err(err).Msg("metrics report failed")
	}

	ev := log.Info()
	if runErr != nil {
		ev = log.Error().Err(runErr)
		if idx, ok := batches.ExtractItemIndex(runErr); ok {
			ev = ev.Int("failed_item", idx)
		}
	}
	ev.Int("items", s.Items).
		Int("results", len(res)).
		Bool("cancelled", ctx.Err() != nil).
		Dur("elapsed", elapsed).
		Dur("latency_sum", sum(res)).
		Msg("batchrun finished")

	return runErr
}

func newLogger(s Settings, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || s.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if s.LogFormat == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	}
	return zl.Level(level).With().Timestamp().Str("service", "batchrun").Logger()
}

func sum(ds []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total
}
