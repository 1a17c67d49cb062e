// Package db provides the client's local SQLite storage. It currently holds
// only the conflict journal; item state lives in memory and never persists.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens the client database under dir, creating the directory and the
// schema as needed.
func Open(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dir, "taskflow.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite allows one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func migrate(conn *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS conflict_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id          INTEGER NOT NULL,
	board_id         INTEGER NOT NULL,
	remote_actor     TEXT NOT NULL DEFAULT '',
	remote_timestamp INTEGER NOT NULL DEFAULT 0,
	resolution       TEXT NOT NULL DEFAULT 'pending',
	detected_at      INTEGER NOT NULL,
	resolved_at      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_conflict_log_item ON conflict_log(item_id);
`
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
