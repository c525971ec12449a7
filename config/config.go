// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads deepresearch settings from defaults, a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nlpodyssey/deepresearch/research"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// DEEPRESEARCH_RESEARCH_MAX_ITERATIONS.
const EnvPrefix = "DEEPRESEARCH"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Models   ModelsConfig   `mapstructure:"models"`
	Research ResearchConfig `mapstructure:"research"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Store    StoreConfig    `mapstructure:"store"`
	Progress ProgressConfig `mapstructure:"progress"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ModelsConfig struct {
	Orchestrator string `mapstructure:"orchestrator"`
	Search       string `mapstructure:"search"`
	Analyst      string `mapstructure:"analyst"`
	Writer       string `mapstructure:"writer"`
	Verifier     string `mapstructure:"verifier"`
}

type ResearchConfig struct {
	MaxIterations     int `mapstructure:"max_iterations"`
	MaxDepthPerTopic  int `mapstructure:"max_depth_per_topic"`
	SummaryWindow     int `mapstructure:"summary_window"`
	PreviewLength     int `mapstructure:"preview_length"`
	MinNewResults     int `mapstructure:"min_new_results"`
	EagerIterations   int `mapstructure:"eager_iterations"`
	SearchConcurrency int `mapstructure:"search_concurrency"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type StoreConfig struct {
	// One of "sqlite", "postgres" or "none".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ProgressConfig struct {
	Console    bool   `mapstructure:"console"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type MetricsConfig struct {
	// Listen address of the metrics endpoint. Empty disables it.
	Addr string `mapstructure:"addr"`
}

type TracingConfig struct {
	Disabled         bool   `mapstructure:"disabled"`
	TraceloopAPIKey  string `mapstructure:"traceloop_api_key"`
	TraceloopBaseURL string `mapstructure:"traceloop_base_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	models := research.DefaultModels()
	v.SetDefault("models.orchestrator", models.Orchestrator)
	v.SetDefault("models.search", models.Search)
	v.SetDefault("models.analyst", models.Analyst)
	v.SetDefault("models.writer", models.Writer)
	v.SetDefault("models.verifier", models.Verifier)

	opts := research.DefaultOptions()
	v.SetDefault("research.max_iterations", opts.MaxIterations)
	v.SetDefault("research.max_depth_per_topic", opts.MaxDepthPerTopic)
	v.SetDefault("research.summary_window", opts.SummaryWindow)
	v.SetDefault("research.preview_length", opts.PreviewLength)
	v.SetDefault("research.min_new_results", opts.MinNewResults)
	v.SetDefault("research.eager_iterations", opts.EagerIterations)
	v.SetDefault("research.search_concurrency", research.DefaultSearchConcurrency)

	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "financial-deep-research-task-queue")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", defaultStoreDSN())

	v.SetDefault("progress.console", true)
	v.SetDefault("progress.webhook_url", "")

	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("tracing.disabled", false)
	v.SetDefault("tracing.traceloop_api_key", "")
	v.SetDefault("tracing.traceloop_base_url", "api.traceloop.com")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration with the following precedence (highest first):
//  1. environment variables (DEEPRESEARCH_SECTION_KEY)
//  2. the given file, or ./deepresearch.yaml, or the user config file
//  3. built-in defaults
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file == "" {
		file = discoverFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits the research loop cannot work with.
func (c *Config) Validate() error {
	var errs []error
	for _, f := range []struct {
		key   string
		value int
	}{
		{"research.max_iterations", c.Research.MaxIterations},
		{"research.summary_window", c.Research.SummaryWindow},
		{"research.preview_length", c.Research.PreviewLength},
		{"research.min_new_results", c.Research.MinNewResults},
		{"research.eager_iterations", c.Research.EagerIterations},
		{"research.search_concurrency", c.Research.SearchConcurrency},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, f.key, f.value))
		}
	}
	if c.Research.MaxDepthPerTopic < 0 {
		errs = append(errs, fmt.Errorf("%w: research.max_depth_per_topic must not be negative", ErrInvalid))
	}
	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format))
	}
	return errors.Join(errs...)
}

// Options converts the research section into loop options.
func (c *Config) Options() research.Options {
	return research.Options{
		MaxIterations:    c.Research.MaxIterations,
		MaxDepthPerTopic: c.Research.MaxDepthPerTopic,
		SummaryWindow:    c.Research.SummaryWindow,
		PreviewLength:    c.Research.PreviewLength,
		MinNewResults:    c.Research.MinNewResults,
		EagerIterations:  c.Research.EagerIterations,
	}
}

func (c *Config) ResearchModels() research.Models {
	return research.Models{
		Orchestrator: c.Models.Orchestrator,
		Search:       c.Models.Search,
		Analyst:      c.Models.Analyst,
		Writer:       c.Models.Writer,
		Verifier:     c.Models.Verifier,
	}
}

// discoverFile returns the first existing default config file, if any.
func discoverFile() string {
	for _, candidate := range []string{
		"deepresearch.yaml",
		filepath.Join(userConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "deepresearch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "deepresearch")
}

func defaultStoreDSN() string {
	return filepath.Join(userConfigDir(), "reports.db")
}
