package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/hub/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the hub's store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.hub/data/hub.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hub", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "hub.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CursorStore returns a CursorStore interface backed by this store.
func (s *Store) CursorStore() driven.CursorStore {
	return &cursorStore{store: s}
}

// TaskQueue returns a TaskQueue interface backed by this store.
func (s *Store) TaskQueue() driven.TaskQueue {
	return &taskQueue{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Cursor Store ====================

// cursorStore implements driven.CursorStore.
type cursorStore struct {
	store *Store
}

var _ driven.CursorStore = (*cursorStore)(nil)

// Get returns the stored cursor, or "" when the event was never polled.
func (s *cursorStore) Get(ctx context.Context, key domain.CursorKey) (domain.EventCursor, error) {
	var cursor string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT cursor FROM cursors WHERE connector_id = ? AND event_path = ?",
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

// Set stores or replaces the cursor.
func (s *cursorStore) Set(ctx context.Context, key domain.CursorKey, cursor domain.EventCursor) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cursors (connector_id, event_path, cursor, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(connector_id, event_path) DO UPDATE SET
			cursor = excluded.cursor,
			updated_at = excluded.updated_at
	`, key.ConnectorID, key.EventPath, string(cursor), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// Delete removes the cursor.
func (s *cursorStore) Delete(ctx context.Context, key domain.CursorKey) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cursors WHERE connector_id = ? AND event_path = ?",
		key.ConnectorID, key.EventPath,
	)
	if err != nil {
		return fmt.Errorf("deleting cursor: %w", err)
	}
	return nil
}

// ==================== Task Queue ====================

// taskQueue implements driven.TaskQueue.
type taskQueue struct {
	store *Store
}

var _ driven.TaskQueue = (*taskQueue)(nil)

// Enqueue stores a notification. Enqueueing an id twice is a no-op.
func (q *taskQueue) Enqueue(ctx context.Context, msg domain.NotifyMessage) error {
	payload := string(msg.Payload)
	if payload == "" {
		payload = "{}"
	}
	_, err := q.store.db.ExecContext(ctx, `
		INSERT INTO notifications (id, connector_id, path, payload, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, msg.ID, msg.ConnectorID, msg.Path, payload, msg.ReceivedAt.UTC())
	if err != nil {
		return fmt.Errorf("enqueueing notification: %w", err)
	}
	return nil
}

// Dequeue returns up to limit unacknowledged notifications, oldest first.
func (q *taskQueue) Dequeue(ctx context.Context, limit int) ([]domain.NotifyMessage, error) {
	if limit <= 0 {
		return []domain.NotifyMessage{}, nil
	}
	rows, err := q.store.db.QueryContext(ctx, `
		SELECT id, connector_id, path, payload, received_at
		FROM notifications
		ORDER BY seq
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	messages := []domain.NotifyMessage{}
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
func (q *taskQueue) Ack(ctx context.Context, id string) error {
	res, err := q.store.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("acknowledging notification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
