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
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps research records in a SQLite database.
//
// By default, uses an in-memory database that is lost when the process ends.
// For persistent storage, provide a file path.
type SQLiteStore struct {
	dbDSN string
	table string
	db    *sql.DB
	mu    sync.Mutex
}

type SQLiteStoreParams struct {
	// Optional database data source name.
	// Defaults to "file::memory:?cache=shared".
	DBDataSourceName string

	// Optional name of the table to store records.
	// Defaults to "research_reports".
	Table string
}

func NewSQLiteStore(ctx context.Context, params SQLiteStoreParams) (_ *SQLiteStore, err error) {
	s := &SQLiteStore{
		dbDSN: cmp.Or(params.DBDataSourceName, "file::memory:?cache=shared"),
		table: cmp.Or(params.Table, "research_reports"),
	}

	defer func() {
		if err != nil {
			if e := s.Close(); e != nil {
				err = errors.Join(err, e)
			}
		}
	}()

	s.db, err = sql.Open("sqlite3", s.dbDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite3 database: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			result_data TEXT NOT NULL
		)
	`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS "idx_%s_created_at" ON "%s" (created_at)
	`, s.table, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to create reports index: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Save(ctx context.Context, record Record) error {
	data, err := marshalResult(record.Result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO "%s" (id, query, created_at, result_data) VALUES (?, ?, ?, ?)
	`, s.table), record.ID, record.Query, record.CreatedAt.UTC(), data)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, query, created_at, result_data FROM "%s" WHERE id = ?
	`, s.table), id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) (_ []Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	if limit <= 0 {
		rows, err = s.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT id, query, created_at, result_data FROM "%s"
			ORDER BY created_at DESC
		`, s.table))
	} else {
		rows, err = s.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT id, query, created_at, result_data FROM "%s"
			ORDER BY created_at DESC
			LIMIT ?
		`, s.table), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer func() {
		if e := rows.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("error closing sql.Rows: %w", e))
		}
	}()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("sql rows error: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		record Record
		data   string
	)
	if err := row.Scan(&record.ID, &record.Query, &record.CreatedAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sql rows scan error: %w", err)
	}
	result, err := unmarshalResult(data)
	if err != nil {
		return nil, err
	}
	record.Result = result
	return &record, nil
}
