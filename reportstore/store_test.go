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

package reportstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nlpodyssey/deepresearch/research"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, createdAt time.Time) Record {
	return Record{
		ID:        id,
		Query:     "How is " + id + " doing?",
		CreatedAt: createdAt,
		Result: research.Result{
			Query:         "How is " + id + " doing?",
			Summaries:     []string{"Iteration 1 Results:\n- Revenue: 1 search results"},
			SearchResults: []string{"revenue grew"},
			Report: research.ReportData{
				ShortSummary:      "Fine.",
				MarkdownReport:    "# " + id,
				FollowUpQuestions: []string{"And next quarter?"},
			},
			Verification: research.VerificationResult{Verified: true},
		},
	}
}

func TestOpen(t *testing.T) {
	ctx := t.Context()

	t.Run("none", func(t *testing.T) {
		s, err := Open(ctx, "none", "")
		require.NoError(t, err)
		assert.IsType(t, NopStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "reports.db"))
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, s.Close()) })
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := Open(ctx, "postgres", "")
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, "mongodb", "x")
		assert.ErrorContains(t, err, `unsupported store driver "mongodb"`)
	})
}

func TestNopStore(t *testing.T) {
	ctx := t.Context()
	var s NopStore

	require.NoError(t, s.Save(ctx, testRecord("a", time.Now())))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
