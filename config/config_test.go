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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nlpodyssey/deepresearch/research"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config dir at an empty temp dir and runs the test
// from another one, so no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, research.DefaultOptions(), cfg.Options())
	assert.Equal(t, research.DefaultModels(), cfg.ResearchModels())
	assert.Equal(t, research.DefaultSearchConcurrency, cfg.Research.SearchConcurrency)
	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "financial-deep-research-task-queue", cfg.Temporal.TaskQueue)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reports.db", filepath.Base(cfg.Store.DSN))
	assert.True(t, cfg.Progress.Console)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  writer: gpt-4o-mini
research:
  max_iterations: 5
  max_depth_per_topic: 0
temporal:
  host_port: temporal:7233
store:
  driver: none
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Models.Writer)
	assert.Equal(t, "o3-mini", cfg.Models.Orchestrator)
	assert.Equal(t, 5, cfg.Research.MaxIterations)
	assert.Equal(t, 0, cfg.Research.MaxDepthPerTopic)
	assert.Equal(t, 2, cfg.Research.SummaryWindow)
	assert.Equal(t, "temporal:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "none", cfg.Store.Driver)
}

func TestLoad_DiscoveredFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deepresearch.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_UserConfigFile(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "deepresearch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  format: json\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("research:\n  max_iterations: 5\n"), 0o644))

	t.Setenv("DEEPRESEARCH_RESEARCH_MAX_ITERATIONS", "7")
	t.Setenv("DEEPRESEARCH_PROGRESS_WEBHOOK_URL", "http://localhost:8080/hook")
	t.Setenv("DEEPRESEARCH_PROGRESS_CONSOLE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Research.MaxIterations)
	assert.Equal(t, "http://localhost:8080/hook", cfg.Progress.WebhookURL)
	assert.False(t, cfg.Progress.Console)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("DEEPRESEARCH_RESEARCH_MAX_ITERATIONS", "0")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		isolate(t)
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"max iterations", func(c *Config) { c.Research.MaxIterations = 0 }, "research.max_iterations must be positive"},
		{"negative depth", func(c *Config) { c.Research.MaxDepthPerTopic = -1 }, "research.max_depth_per_topic must not be negative"},
		{"search concurrency", func(c *Config) { c.Research.SearchConcurrency = -2 }, "research.search_concurrency must be positive, got -2"},
		{"store driver", func(c *Config) { c.Store.Driver = "redis" }, `unknown store driver "redis"`},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, `unknown log format "xml"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tc.want)
		})
	}

	t.Run("joins every problem", func(t *testing.T) {
		cfg := valid(t)
		cfg.Research.SummaryWindow = 0
		cfg.Store.Driver = "redis"
		err := cfg.Validate()
		assert.ErrorContains(t, err, "research.summary_window")
		assert.ErrorContains(t, err, "redis")
	})
}
