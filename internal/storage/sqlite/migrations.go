package sqlite

import "database/sql"

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS provisions (
    id               TEXT PRIMARY KEY,
    server           TEXT NOT NULL,
    version          TEXT NOT NULL DEFAULT '',
    path             TEXT NOT NULL DEFAULT '',
    reused           INTEGER NOT NULL DEFAULT 0,
    cleanup_failures INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provisions_server ON provisions(server);
CREATE INDEX IF NOT EXISTS idx_provisions_created ON provisions(created_at DESC);

CREATE TABLE IF NOT EXISTS launches (
    id         TEXT PRIMARY KEY,
    server     TEXT NOT NULL,
    path       TEXT NOT NULL DEFAULT '',
    args       TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_launches_server ON launches(server);
CREATE INDEX IF NOT EXISTS idx_launches_created ON launches(created_at DESC);
`

func runMigrations(db *sql.DB) error {
	// Check current version
	var current int
	row := db.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&current); err != nil {
		// Table doesn't exist or is empty; run initial schema
		current = 0
	}

	if current >= schemaVersion {
		return nil
	}

	if _, err := db.Exec(schemaV1); err != nil {
		return err
	}

	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}
