// Package migrations holds the versioned SQLite schema for cursors and
// queued notifications. Files are named NNN_name.up.sql / .down.sql and
// applied in version order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
