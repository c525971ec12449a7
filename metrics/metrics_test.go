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

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nlpodyssey/deepresearch/progress"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t progress.EventType, ts time.Time, runID string, payload map[string]any) progress.Event {
	e := progress.NewEvent(t, payload).Stamped(ts)
	if runID != "" {
		e.Metadata = map[string]any{"run_id": runID}
	}
	return e
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, e := range []progress.Event{
		event(progress.ResearchStarted, start, "run-a", nil),
		event(progress.ResearchStarted, start.Add(time.Minute), "run-b", nil),
		event(progress.SubTopicCompleted, start, "run-a", map[string]any{"search_results": 3}),
		event(progress.SubTopicCompleted, start, "run-a", map[string]any{"search_results": 2}),
		event(progress.SearchFailed, start, "run-a", nil),
		event(progress.IterationCompleted, start, "run-a", nil),
		event(progress.ResearchCompleted, start.Add(2*time.Minute), "run-a", nil),
		event(progress.ResearchFailed, start.Add(2*time.Minute), "run-b", nil),
	} {
		require.NoError(t, c.Publish(t.Context(), e))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("failed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.Searches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Searches.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.SubTopics))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Iterations))

	expected := `
# HELP deepresearch_run_duration_seconds Wall time of completed research runs.
# TYPE deepresearch_run_duration_seconds histogram
deepresearch_run_duration_seconds_bucket{le="30"} 0
deepresearch_run_duration_seconds_bucket{le="60"} 1
deepresearch_run_duration_seconds_bucket{le="120"} 2
deepresearch_run_duration_seconds_bucket{le="240"} 2
deepresearch_run_duration_seconds_bucket{le="480"} 2
deepresearch_run_duration_seconds_bucket{le="960"} 2
deepresearch_run_duration_seconds_bucket{le="1920"} 2
deepresearch_run_duration_seconds_bucket{le="3840"} 2
deepresearch_run_duration_seconds_bucket{le="+Inf"} 2
deepresearch_run_duration_seconds_sum 180
deepresearch_run_duration_seconds_count 2
`
	require.NoError(t, testutil.CollectAndCompare(c.RunDuration, strings.NewReader(expected)))
	assert.Empty(t, c.starts)
}

func TestCollector_CompletionWithoutStart(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Publish(t.Context(), event(progress.ResearchCompleted, time.Now(), "", nil)))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues("completed")))
	assert.Empty(t, c.starts)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Publish(t.Context(), event(progress.IterationCompleted, time.Now(), "", nil)))

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "deepresearch_iterations_total 1")
}
