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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nlpodyssey/deepresearch/durable"
	"github.com/nlpodyssey/deepresearch/metrics"
	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run a Temporal worker for research workflows",
		Long: `Run a Temporal worker that executes financial deep research workflows
and their activities. Prometheus metrics are served on metrics.addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			defer shutdownTracing(ctx)

			c, err := a.dialTemporal()
			if err != nil {
				return err
			}
			defer c.Close()

			var publishers []progress.Publisher
			if a.cfg.Metrics.Addr != "" {
				collector := metrics.NewCollector()
				publishers = append(publishers, collector)
				srv := a.serveMetrics(collector)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			// Agent calls inside activities publish nothing themselves; the
			// workflow emits progress through the emit activity.
			activities := durable.NewActivities(a.newManager(nil), a.publishers(publishers...))
			w := durable.NewWorker(c, a.cfg.Temporal.TaskQueue, activities, worker.Options{})

			a.logger.Info("worker started", "task_queue", a.cfg.Temporal.TaskQueue)
			if err := w.Run(worker.InterruptCh()); err != nil {
				return fmt.Errorf("worker stopped: %w", err)
			}
			return nil
		},
	}
}

func (a *app) dialTemporal() (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  a.cfg.Temporal.HostPort,
		Namespace: a.cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(a.logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal at %s: %w", a.cfg.Temporal.HostPort, err)
	}
	return c, nil
}

func (a *app) serveMetrics(collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
