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

// Package reportstore persists completed research runs.
package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nlpodyssey/deepresearch/research"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("report not found")

// Record is a stored research run.
type Record struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	CreatedAt time.Time       `json:"created_at"`
	Result    research.Result `json:"result"`
}

// Store saves and retrieves research records.
type Store interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns the most recent records first. A non-positive limit
	// returns every record.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open picks a store implementation by driver name: "sqlite", "postgres"
// or "none".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return NewSQLiteStore(ctx, SQLiteStoreParams{DBDataSourceName: dsn})
	case "postgres", "postgresql", "pgx":
		return NewPgStoreFromDSN(ctx, PgStoreParams{ConnectionString: dsn})
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Save(context.Context, Record) error { return nil }

func (NopStore) Get(context.Context, string) (*Record, error) { return nil, ErrNotFound }

func (NopStore) List(context.Context, int) ([]Record, error) { return nil, nil }

func (NopStore) Close() error { return nil }

func marshalResult(r research.Result) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal research result: %w", err)
	}
	return string(b), nil
}

func unmarshalResult(data string) (research.Result, error) {
	var r research.Result
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return r, fmt.Errorf("failed to unmarshal research result: %w", err)
	}
	return r, nil
}
