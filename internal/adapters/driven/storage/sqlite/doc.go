// Package sqlite provides a SQLite-based implementation of the hub's
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - CursorStore: event cursors keyed by connector and event path
//   - TaskQueue: inbound notifications awaiting dispatch
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.hub/data/hub.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Cursor locking across processes is not provided; use
// the postgres store when several hub processes poll the same events.
package sqlite
