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

// Package metrics turns research progress events into Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deepresearch"

// Collector is a progress.Publisher that records research metrics.
type Collector struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Iterations  prometheus.Counter
	Searches    *prometheus.CounterVec
	SubTopics   prometheus.Counter
	RunDuration prometheus.Histogram

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Research runs by outcome.",
		}, []string{"outcome"}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Completed exploit iterations.",
		}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches by outcome.",
		}, []string{"outcome"}),
		SubTopics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subtopics_total",
			Help:      "Sub-topics researched, counted once per iteration.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed research runs.",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 8),
		}),
		starts: make(map[string]time.Time),
	}
	c.registry.MustRegister(c.Runs, c.Iterations, c.Searches, c.SubTopics, c.RunDuration)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Publish implements progress.Publisher. Runs are keyed by the "run_id"
// metadata entry when present, so concurrent runs time independently.
func (c *Collector) Publish(_ context.Context, event progress.Event) error {
	switch event.Type {
	case progress.ResearchStarted:
		c.mu.Lock()
		c.starts[runKey(event)] = event.Timestamp
		c.mu.Unlock()
	case progress.SubTopicCompleted:
		c.SubTopics.Inc()
		c.Searches.WithLabelValues("ok").Add(float64(event.Int("search_results")))
	case progress.SearchFailed:
		c.Searches.WithLabelValues("failed").Inc()
	case progress.IterationCompleted:
		c.Iterations.Inc()
	case progress.ResearchCompleted:
		c.Runs.WithLabelValues("completed").Inc()
		c.observeDuration(event)
	case progress.ResearchFailed:
		c.Runs.WithLabelValues("failed").Inc()
		c.observeDuration(event)
	}
	return nil
}

func (c *Collector) observeDuration(event progress.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := runKey(event)
	start, ok := c.starts[key]
	if !ok {
		return
	}
	delete(c.starts, key)
	c.RunDuration.Observe(event.Timestamp.Sub(start).Seconds())
}

func runKey(event progress.Event) string {
	if id, ok := event.Metadata["run_id"].(string); ok {
		return id
	}
	return ""
}
