// Command bronze profiles a raw Parquet file, drops sparse and near-unique
// columns plus fully empty rows, and writes the bronze Parquet file.
//
// Exit codes: 0 success, 2 source read error, 3 configuration error,
// 4 arithmetic error (zero-row source), 1 anything else.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bronze/internal/bronze"
	"bronze/internal/config"
	"bronze/internal/failure"
	"bronze/internal/logging"
	"bronze/internal/metrics"
	"bronze/internal/metrics/datadog"
	"bronze/internal/metrics/prompush"
	"bronze/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "bronze/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds command-line values. Empty strings mean "not given"; given
// values override params.yaml.
type flags struct {
	cfgPath        string
	source         string
	output         string
	engine         string
	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string
	validate       bool
	verbose        bool
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("bronze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.cfgPath, "config", "params.yaml", "params YAML path")
	fs.StringVar(&f.source, "source", "", "source Parquet file (overrides bronze.source)")
	fs.StringVar(&f.output, "out", "", "bronze Parquet output path (overrides bronze.output)")
	fs.StringVar(&f.engine, "engine", "", "profiling engine: native or sqlite (overrides bronze.engine)")
	fs.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog")
	fs.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	fs.StringVar(&f.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address")
	fs.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logs")
	return f, fs.Parse(args)
}

func (f flags) apply(p *config.Params) {
	if f.source != "" {
		p.Bronze.Source = f.source
	}
	if f.output != "" {
		p.Bronze.Output = f.output
	}
	if f.engine != "" {
		p.Bronze.Engine = f.engine
	}
	if f.metricsBackend != "" {
		p.Metrics.Backend = f.metricsBackend
	}
	if f.pushgatewayURL != "" {
		p.Metrics.PushgatewayURL = f.pushgatewayURL
	}
	if f.dogstatsdAddr != "" {
		p.Metrics.DogStatsDAddr = f.dogstatsdAddr
	}
	if f.verbose {
		p.Log.Level = "debug"
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	p, err := config.Load(f.cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return failure.ExitCode(err)
	}
	f.apply(&p)

	issues := config.Validate(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if f.validate {
		if config.HasErrors(issues) {
			fmt.Fprintf(stderr, "configuration is invalid: %s\n", f.cfgPath)
			return 1
		}
		fmt.Fprintf(stdout, "configuration is valid: %s\n", f.cfgPath)
		return 0
	}
	if config.HasErrors(issues) {
		err := failure.Configuration(fmt.Sprintf("invalid configuration %s", f.cfgPath), nil)
		fmt.Fprintln(stderr, err)
		return failure.ExitCode(err)
	}

	if _, lerr := logging.ParseLevel(p.Log.Level); lerr != nil {
		p.Log.Level = "info"
	}
	logger, closeLog, err := logging.Setup(logging.Options{Level: p.Log.Level, SeqURL: p.Log.SeqURL, Out: stdout})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	flush := setupMetrics(p.Metrics, logger)
	defer flush()

	start := time.Now()
	sum, err := bronze.Run(ctx, bronze.Options{
		Source:     p.Bronze.Source,
		Output:     p.Bronze.Output,
		Thresholds: p.Bronze.Thresholds,
		Engine:     p.Bronze.Engine,
		Job:        p.Metrics.Job,
		Logger:     logger,
		Report:     storage.ReportTarget{Kind: p.Report.Kind, DSN: p.Report.DSN, Table: p.Report.Table},
	})
	if err != nil {
		logger.Error("bronze run failed", "error", err, "kind", failure.KindOf(err).String())
		return failure.ExitCode(err)
	}

	logger.Info("summary",
		"source", sum.Source,
		"output", sum.Output,
		"rows_in", sum.InputRows,
		"columns_in", sum.InputColumns,
		"columns_kept", len(sum.Selected),
		"columns_rejected", len(sum.Rejected),
		"rows_dropped", sum.RowsDropped,
		"rows_written", sum.RowsWritten,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return 0
}

// setupMetrics installs the configured backend and returns a flush func. An
// unusable backend logs a warning and leaves metrics disabled.
func setupMetrics(m config.Metrics, logger *slog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DogStatsDAddr,
			Namespace:  "bronze.",
			GlobalTags: []string{"job:" + m.Job},
			Logger:     logger,
		})
	case "", "none":
		logger.Debug("metrics disabled")
		return func() {}
	default:
		logger.Warn("unknown metrics backend; metrics disabled", "backend", m.Backend)
		return func() {}
	}
	if err != nil {
		logger.Warn("metrics backend init failed; using nop", "backend", m.Backend, "error", err)
		return func() {}
	}

	logger.Debug("metrics enabled", "backend", m.Backend, "job", m.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics flush failed", "backend", m.Backend, "error", err)
		}
	}
}
