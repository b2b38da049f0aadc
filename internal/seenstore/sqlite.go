// Package seenstore persists which source items a crawl has already
// processed. Each source keeps an insertion-ordered set of item identifiers
// in a local SQLite database, so unordered archives can be deduplicated
// across runs without unbounded growth.
package seenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// DefaultBusyTimeout is how long SQLite waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second
	// DefaultSchemaTimeout is the timeout for schema initialization.
	DefaultSchemaTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (source_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_seen_items_source ON seen_items (source_id, id);
`

// NewConnection opens the seen-item database, creating the file and its
// schema if needed.
func NewConnection(path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, DefaultBusyTimeout.Milliseconds())

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open seen database: %w", err)
	}

	// SQLite permits a single writer at a time.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultSchemaTimeout)
	defer cancel()

	if _, execErr := db.ExecContext(ctx, schema); execErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize seen schema: %w", execErr)
	}

	return db, nil
}
