// Package config provides configuration models and helpers for bronze runs.
//
// This file adds a lightweight linter for Params. It performs static checks
// over decoded Params and returns a list of issues (errors and warnings) that
// callers can surface in a CLI or tests. Threshold values are never rejected;
// an out-of-range threshold is only a warning.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into params.yaml (e.g. "bronze.engine").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints p. It does not mutate p.
func Validate(p Params) []Issue {
	var issues []Issue
	issues = append(issues, validateBronze(p.Bronze)...)
	issues = append(issues, validateReport(p.Report)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateLog(p.Log)...)
	return issues
}

func validateBronze(b Bronze) []Issue {
	var issues []Issue

	if b.Source == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bronze.source",
			Message:  "source path must not be empty",
		})
	}
	if b.Output == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bronze.output",
			Message:  "output path must not be empty",
		})
	}
	if b.Source != "" && b.Output != "" && filepath.Clean(b.Source) == filepath.Clean(b.Output) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bronze.output",
			Message:  "output must differ from source; the source is re-read after profiling",
		})
	}

	switch b.Engine {
	case "native", "sqlite":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bronze.engine",
			Message:  fmt.Sprintf("unknown engine %q; want native or sqlite", b.Engine),
		})
	}

	if f := b.Thresholds.MaxNullFrac; f < 0 || f > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "bronze.max_null_frac",
			Message:  fmt.Sprintf("max_null_frac=%v is outside [0,1]", f),
		})
	}
	if f := b.Thresholds.MaxUniqueFrac; f < 0 || f > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "bronze.max_unique_frac",
			Message:  fmt.Sprintf("max_unique_frac=%v is outside [0,1]", f),
		})
	}

	return issues
}

func validateReport(r Report) []Issue {
	var issues []Issue
	if r.Kind == "" {
		return nil
	}

	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
		"mssql":    {},
		"mysql":    {},
	}
	if _, ok := known[r.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "report.kind",
			Message:  fmt.Sprintf("unknown report kind %q; ensure a matching backend is registered", r.Kind),
		})
	}
	if strings.TrimSpace(r.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.dsn",
			Message:  "report.dsn must not be empty when report.kind is set",
		})
	}
	if r.Table == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.table",
			Message:  "report.table must not be empty when report.kind is set",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	switch l.Level {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Path:     "log.level",
		Message:  fmt.Sprintf("unknown log level %q; using info", l.Level),
	}}
}
