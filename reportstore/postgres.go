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
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIface is the subset of *pgxpool.Pool used by PgStore.
// It allows swapping in a mock pool in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PgStore keeps research records in a PostgreSQL database.
type PgStore struct {
	db    PgxIface
	table string
}

type PgStoreParams struct {
	// PostgreSQL connection string, used by NewPgStoreFromDSN.
	ConnectionString string

	// Optional name of the table to store records.
	// Defaults to "research_reports".
	Table string
}

// NewPgStoreFromDSN connects a pool and initializes the schema.
func NewPgStoreFromDSN(ctx context.Context, params PgStoreParams) (*PgStore, error) {
	if params.ConnectionString == "" {
		return nil, errors.New("postgres store requires a connection string")
	}
	pool, err := pgxpool.New(ctx, params.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s, err := NewPgStore(ctx, pool, params)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPgStore initializes the schema on an existing connection pool.
func NewPgStore(ctx context.Context, db PgxIface, params PgStoreParams) (*PgStore, error) {
	s := &PgStore{
		db:    db,
		table: cmp.Or(params.Table, "research_reports"),
	}
	_, err := s.db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			result_data JSONB NOT NULL
		)
	`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}
	return s, nil
}

func (s *PgStore) Save(ctx context.Context, record Record) error {
	data, err := marshalResult(record.Result)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO "%s" (id, query, created_at, result_data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET query = EXCLUDED.query, created_at = EXCLUDED.created_at, result_data = EXCLUDED.result_data
	`, s.table), record.ID, record.Query, record.CreatedAt.UTC(), data)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (s *PgStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, query, created_at, result_data::text FROM "%s" WHERE id = $1
	`, s.table), id)

	record, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PgStore) List(ctx context.Context, limit int) ([]Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit <= 0 {
		rows, err = s.db.Query(ctx, fmt.Sprintf(`
			SELECT id, query, created_at, result_data::text FROM "%s"
			ORDER BY created_at DESC
		`, s.table))
	} else {
		rows, err = s.db.Query(ctx, fmt.Sprintf(`
			SELECT id, query, created_at, result_data::text FROM "%s"
			ORDER BY created_at DESC
			LIMIT $1
		`, s.table), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

func (s *PgStore) Close() error {
	s.db.Close()
	return nil
}

func scanPgRecord(row pgx.Row) (*Record, error) {
	var (
		record Record
		data   string
	)
	if err := row.Scan(&record.ID, &record.Query, &record.CreatedAt, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("row scan error: %w", err)
	}
	result, err := unmarshalResult(data)
	if err != nil {
		return nil, err
	}
	record.Result = result
	return &record, nil
}
