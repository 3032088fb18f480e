// bmcd is a BMC-resident Redfish service.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package store persists the two pieces of state spec.md §6 calls out as
// the core's only persisted items: the session table and the
// subscription table. It is modeled on internal/database's migration-list
// and Get/Create/Update/Delete naming, reduced to what this core actually
// needs. Records are kept as opaque JSON blobs rather than fully
// normalized columns, since spec.md §6 only requires "corruption
// tolerant" persistence (an unparseable record is discarded with a
// warning, not fatal) — JSON-per-row makes that discard granular,
// per-record rather than per-table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection backing session and subscription
// persistence.
type DB struct {
	conn *sql.DB
}

// Open connects to the SQLite database at path, creating it if absent.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate creates the sessions and subscriptions tables if they do not
// already exist.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("store: run migration: %w", err)
		}
	}
	return tx.Commit()
}

// SessionRecord is the persisted shape of an internal/session.Session,
// kept independent of that package's type so store has no import-cycle
// dependency on session (and so a schema change there doesn't force a
// migration here).
type SessionRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	RoleName     string `json:"roleName"`
	ClientOrigin string `json:"clientOrigin"`
	CreatedAt    int64  `json:"createdAt"`
	LastAccess   int64  `json:"lastAccess"`
}

// SaveSession upserts rec.
func (db *DB) SaveSession(ctx context.Context, rec SessionRecord) error {
	return db.upsert(ctx, "sessions", rec.ID, rec)
}

// DeleteSession removes a session record by id.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	return db.delete(ctx, "sessions", id)
}

// LoadSessions returns every parseable session record. A row whose JSON
// fails to decode is skipped with a logged warning rather than aborting
// the whole load, per spec.md §6's corruption-tolerance requirement.
func (db *DB) LoadSessions(ctx context.Context) ([]SessionRecord, error) {
	var out []SessionRecord
	err := db.loadAll(ctx, "sessions", func(raw []byte) error {
		var rec SessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("store: discarding unparseable session record", "error", err)
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// SubscriptionRecord is the persisted shape of an
// internal/eventbus.Subscription, independent for the same reason as
// SessionRecord.
type SubscriptionRecord struct {
	ID              string            `json:"id"`
	Destination     string            `json:"destination"`
	Protocol        string            `json:"protocol"`
	Context         string            `json:"context"`
	RegistryPrefixes []string         `json:"registryPrefixes"`
	MessageKeys     []string          `json:"messageKeys"`
	Headers         map[string]string `json:"headers"`
}

// SaveSubscription upserts rec.
func (db *DB) SaveSubscription(ctx context.Context, rec SubscriptionRecord) error {
	return db.upsert(ctx, "subscriptions", rec.ID, rec)
}

// DeleteSubscription removes a subscription record by id.
func (db *DB) DeleteSubscription(ctx context.Context, id string) error {
	return db.delete(ctx, "subscriptions", id)
}

// LoadSubscriptions returns every parseable subscription record,
// discarding corrupt rows the same way LoadSessions does.
func (db *DB) LoadSubscriptions(ctx context.Context) ([]SubscriptionRecord, error) {
	var out []SubscriptionRecord
	err := db.loadAll(ctx, "subscriptions", func(raw []byte) error {
		var rec SubscriptionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("store: discarding unparseable subscription record", "error", err)
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (db *DB) upsert(ctx context.Context, table, id string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal %s record: %w", table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, record, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET record=excluded.record, updated_at=CURRENT_TIMESTAMP`, table)
	if _, err := db.conn.ExecContext(ctx, query, id, string(raw)); err != nil {
		return fmt.Errorf("store: upsert %s record: %w", table, err)
	}
	return nil
}

func (db *DB) delete(ctx context.Context, table, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)
	if _, err := db.conn.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("store: delete %s record: %w", table, err)
	}
	return nil
}

func (db *DB) loadAll(ctx context.Context, table string, handle func([]byte) error) error {
	query := fmt.Sprintf(`SELECT record FROM %s`, table)
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("store: query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("store: scan %s row: %w", table, err)
		}
		if err := handle([]byte(raw)); err != nil {
			return err
		}
	}
	return rows.Err()
}
