// Package config defines the configuration model for a bronze run and loads it
// from a params.yaml document.
//
// Only the two thresholds are mandatory; everything else has a default. A
// missing threshold, an unreadable file, or a value that is not a number fails
// with a ConfigurationError. Values are otherwise taken as given.
//
// Example:
//
//	bronze:
//	  max_null_frac: 0.5
//	  max_unique_frac: 0.95
//	  source: data/raw/train.parquet
//	  output: data/bronze/train/filtered.parquet
//	report:
//	  kind: sqlite
//	  dsn: file:profile.db
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"bronze/internal/failure"
	"bronze/internal/profile"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys used in params.yaml. Threshold keys have no default.
const (
	KeyMaxNullFrac   = "bronze.max_null_frac"
	KeyMaxUniqueFrac = "bronze.max_unique_frac"
	KeySource        = "bronze.source"
	KeyOutput        = "bronze.output"
	KeyEngine        = "bronze.engine"

	KeyReportKind  = "report.kind"
	KeyReportDSN   = "report.dsn"
	KeyReportTable = "report.table"

	KeyMetricsBackend = "metrics.backend"
	KeyMetricsJob     = "metrics.job"
	KeyPushgatewayURL = "metrics.pushgateway_url"
	KeyDogStatsDAddr  = "metrics.dogstatsd_addr"

	KeyLogLevel  = "log.level"
	KeyLogSeqURL = "log.seq_url"
)

// Defaults mirror the layout the pipeline has always used.
const (
	DefaultSource         = "data/raw/train.parquet"
	DefaultOutput         = "data/bronze/train/filtered.parquet"
	DefaultEngine         = "native"
	DefaultReportTable    = "bronze_column_profile"
	DefaultJob            = "bronze"
	DefaultPushgatewayURL = "http://localhost:9091"
	DefaultDogStatsDAddr  = "127.0.0.1:8125"
)

// Params is the decoded params.yaml.
type Params struct {
	Bronze  Bronze
	Report  Report
	Metrics Metrics
	Log     Log
}

// Bronze holds the profiling thresholds and file locations.
type Bronze struct {
	Thresholds profile.Thresholds
	Source     string
	Output     string

	// Engine selects the profiler: "native" or "sqlite".
	Engine string
}

// Report configures the optional column-profile report sink. An empty Kind
// disables it.
type Report struct {
	Kind  string
	DSN   string
	Table string
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string
	Job            string
	PushgatewayURL string
	DogStatsDAddr  string
}

// Log controls the process logger.
type Log struct {
	Level  string
	SeqURL string
}

// Load reads params from a YAML file at path. BRONZE_* environment variables
// override file values (BRONZE_BRONZE_MAX_NULL_FRAC, BRONZE_REPORT_DSN, ...).
func Load(path string) (Params, error) {
	v := newViper()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return Params{}, failure.Configuration(fmt.Sprintf("read config %s", path), err)
	}
	return fromViper(v)
}

// Decode reads params from YAML in r. It is Load without the filesystem.
func Decode(r io.Reader) (Params, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return Params{}, failure.Configuration("parse config", err)
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BRONZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeySource, DefaultSource)
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyEngine, DefaultEngine)
	v.SetDefault(KeyReportTable, DefaultReportTable)
	v.SetDefault(KeyMetricsBackend, "none")
	v.SetDefault(KeyMetricsJob, DefaultJob)
	v.SetDefault(KeyPushgatewayURL, DefaultPushgatewayURL)
	v.SetDefault(KeyDogStatsDAddr, DefaultDogStatsDAddr)
	v.SetDefault(KeyLogLevel, "info")
	return v
}

func fromViper(v *viper.Viper) (Params, error) {
	nullFrac, err := requiredFloat(v, KeyMaxNullFrac)
	if err != nil {
		return Params{}, err
	}
	uniqueFrac, err := requiredFloat(v, KeyMaxUniqueFrac)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Bronze: Bronze{
			Thresholds: profile.Thresholds{
				MaxNullFrac:   nullFrac,
				MaxUniqueFrac: uniqueFrac,
			},
			Source: strings.TrimSpace(v.GetString(KeySource)),
			Output: strings.TrimSpace(v.GetString(KeyOutput)),
			Engine: strings.ToLower(strings.TrimSpace(v.GetString(KeyEngine))),
		},
		Report: Report{
			Kind:  strings.ToLower(strings.TrimSpace(v.GetString(KeyReportKind))),
			DSN:   v.GetString(KeyReportDSN),
			Table: strings.TrimSpace(v.GetString(KeyReportTable)),
		},
		Metrics: Metrics{
			Backend:        strings.ToLower(strings.TrimSpace(v.GetString(KeyMetricsBackend))),
			Job:            strings.TrimSpace(v.GetString(KeyMetricsJob)),
			PushgatewayURL: v.GetString(KeyPushgatewayURL),
			DogStatsDAddr:  v.GetString(KeyDogStatsDAddr),
		},
		Log: Log{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
			SeqURL: v.GetString(KeyLogSeqURL),
		},
	}, nil
}

// requiredFloat returns key as float64. A missing or null key, or a value that
// cannot be read as a number, is a ConfigurationError. viper's GetFloat64
// would silently return 0 for both.
func requiredFloat(v *viper.Viper, key string) (float64, error) {
	raw := v.Get(key)
	if !v.IsSet(key) || raw == nil {
		return 0, failure.Configuration(fmt.Sprintf("missing required key %q", key), nil)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, failure.Configuration(fmt.Sprintf("key %q is not a number", key), err)
	}
	return f, nil
}
