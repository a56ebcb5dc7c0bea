// Package postgres provides a PostgreSQL implementation of the hub's cursor
// store and task queue, for deployments where several hub processes share
// one database.
//
// Polls of the same event are serialised across processes with session
// advisory locks, so the store also implements driven.CursorLocker.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/logger"
)

const operationTimeout = 5 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS hub_cursors (
		connector_id TEXT NOT NULL,
		event_path   TEXT NOT NULL,
		cursor       TEXT NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (connector_id, event_path)
	)`,
	`CREATE TABLE IF NOT EXISTS hub_notifications (
		seq          BIGSERIAL PRIMARY KEY,
		id           TEXT NOT NULL UNIQUE,
		connector_id TEXT NOT NULL,
		path         TEXT NOT NULL,
		payload      JSONB NOT NULL,
		received_at  TIMESTAMPTZ NOT NULL
	)`,
}

// Store is a PostgreSQL-backed cursor store and task queue.
type Store struct {
	db *sql.DB
}

var (
	_ driven.CursorStore  = (*Store)(nil)
	_ driven.CursorLocker = (*Store)(nil)
	_ driven.TaskQueue    = (*Store)(nil)
)

// NewStore connects to dsn and creates the hub tables if needed.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cursor for key, or "" if the event was never polled.
func (s *Store) Get(ctx context.Context, key domain.CursorKey) (domain.EventCursor, error) {
	var cursor string
	err := s.db.QueryRowContext(ctx,
		"SELECT cursor FROM hub_cursors WHERE connector_id = $1 AND event_path = $2",
		key.ConnectorID, key.EventPath,
	).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting cursor: %w", err)
	}
	return domain.EventCursor(cursor), nil
}

// Set stores the cursor for key.
func (s *Store) Set(ctx context.Context, key domain.CursorKey, cursor domain.EventCursor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hub_cursors (connector_id, event_path, cursor, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (connector_id, event_path)
		DO UPDATE SET cursor = EXCLUDED.cursor, updated_at = NOW()`,
		key.ConnectorID, key.EventPath, string(cursor))
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// Delete removes the cursor for key.
func (s *Store) Delete(ctx context.Context, key domain.CursorKey) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM hub_cursors WHERE connector_id = $1 AND event_path = $2",
		key.ConnectorID, key.EventPath)
	if err != nil {
		return fmt.Errorf("deleting cursor: %w", err)
	}
	return nil
}

// Lock takes a session advisory lock on key. Session locks belong to a
// connection, so the lock pins one connection until released.
func (s *Store) Lock(ctx context.Context, key domain.CursorKey) (func(), error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	lockKey := advisoryKey(key)
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		conn.Close()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()
		if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey); err != nil {
			logger.Warn("advisory unlock %s: %v", key, err)
		}
		conn.Close()
	}, nil
}

// Enqueue stores msg. Enqueueing an id twice is a no-op.
func (s *Store) Enqueue(ctx context.Context, msg domain.NotifyMessage) error {
	payload := msg.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hub_notifications (id, connector_id, path, payload, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		msg.ID, msg.ConnectorID, msg.Path, string(payload), msg.ReceivedAt.UTC())
	if err != nil {
		return fmt.Errorf("enqueueing notification: %w", err)
	}
	return nil
}

// Dequeue returns up to limit unacknowledged notifications, oldest first.
func (s *Store) Dequeue(ctx context.Context, limit int) ([]domain.NotifyMessage, error) {
	messages := []domain.NotifyMessage{}
	if limit <= 0 {
		return messages, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, connector_id, path, payload, received_at
		FROM hub_notifications
		ORDER BY seq
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.NotifyMessage
		var payload string
		if err := rows.Scan(&msg.ID, &msg.ConnectorID, &msg.Path, &payload, &msg.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		msg.Payload = json.RawMessage(payload)
		msg.ReceivedAt = msg.ReceivedAt.UTC()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Ack removes a delivered notification.
func (s *Store) Ack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM hub_notifications WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("acknowledging notification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func advisoryKey(key domain.CursorKey) int64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(key.ConnectorID))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(key.EventPath))
	return int64(hasher.Sum64())
}
