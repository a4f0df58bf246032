// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/warren-foundation/warren/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS set_members (
	set_name TEXT NOT NULL,
	member   TEXT NOT NULL,
	PRIMARY KEY (set_name, member)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
) WITHOUT ROWID;
`

// SQLite is the production Store, a WAL-mode database file behind
// lib/sqlitepool. Single-statement operations rely on SQLite's
// statement atomicity; IncrementBelow wraps its ensure-then-guard
// pair in an immediate transaction.
type SQLite struct {
	pool *sqlitepool.Pool
}

// OpenSQLite opens (and if necessary creates) the state database at
// path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("statestore: %w", err)
	}
	return &SQLite{pool: pool}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, `SELECT value FROM kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("statestore: get %s: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("statestore: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `DELETE FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{Args: []any{key}})
	if err != nil {
		return fmt.Errorf("statestore: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) AddMember(ctx context.Context, set, member string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO set_members (set_name, member) VALUES (?, ?)
		 ON CONFLICT (set_name, member) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{set, member}})
	if err != nil {
		return fmt.Errorf("statestore: add member %s to %s: %w", member, set, err)
	}
	return nil
}

func (s *SQLite) RemoveMember(ctx context.Context, set, member string) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM set_members WHERE set_name = ? AND member = ?`,
		&sqlitex.ExecOptions{Args: []any{set, member}})
	if err != nil {
		return false, fmt.Errorf("statestore: remove member %s from %s: %w", member, set, err)
	}
	return conn.Changes() > 0, nil
}

func (s *SQLite) Members(ctx context.Context, set string) ([]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var members []string
	err = sqlitex.Execute(conn,
		`SELECT member FROM set_members WHERE set_name = ?`,
		&sqlitex.ExecOptions{
			Args: []any{set},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				members = append(members, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("statestore: members of %s: %w", set, err)
	}
	return members, nil
}

func (s *SQLite) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	query := fmt.Sprintf(`SELECT key, value FROM kv WHERE key IN (%s)`, placeholders)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value := make([]byte, stmt.ColumnLen(1))
			stmt.ColumnBytes(1, value)
			result[stmt.ColumnText(0)] = value
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("statestore: get multi: %w", err)
	}
	return result, nil
}

func (s *SQLite) IncrementBelow(ctx context.Context, counter string, max int64) (granted bool, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, err
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, fmt.Errorf("statestore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn,
		`INSERT INTO counters (name, value) VALUES (?, 0)
		 ON CONFLICT (name) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{counter}})
	if err != nil {
		return false, fmt.Errorf("statestore: ensure counter %s: %w", counter, err)
	}

	// The guard and the increment are one statement: concurrent
	// callers serialize on the write lock and observe each other's
	// increments.
	err = sqlitex.Execute(conn,
		`UPDATE counters SET value = value + 1 WHERE name = ? AND value < ?`,
		&sqlitex.ExecOptions{Args: []any{counter, max}})
	if err != nil {
		return false, fmt.Errorf("statestore: increment %s: %w", counter, err)
	}
	return conn.Changes() > 0, nil
}

func (s *SQLite) DecrementFloor(ctx context.Context, counter string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE counters SET value = max(value - 1, 0) WHERE name = ?`,
		&sqlitex.ExecOptions{Args: []any{counter}})
	if err != nil {
		return fmt.Errorf("statestore: decrement %s: %w", counter, err)
	}
	return nil
}

func (s *SQLite) Counter(ctx context.Context, counter string) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	var value int64
	err = sqlitex.Execute(conn,
		`SELECT value FROM counters WHERE name = ?`,
		&sqlitex.ExecOptions{
			Args: []any{counter},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("statestore: read counter %s: %w", counter, err)
	}
	return value, nil
}

func (s *SQLite) Close() error {
	return s.pool.Close()
}
