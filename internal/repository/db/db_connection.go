package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// pragmas are applied to every journal connection before migrating.
var pragmas = []string{
	"journal_mode = WAL",
	"busy_timeout = 5000",
}

// migrations are applied in order; PRAGMA user_version records how many ran.
// Append only: never edit a released step.
var migrations = []string{
	// 1: journal table, range scans by time
	`CREATE TABLE IF NOT EXISTS bridge_events (
		id          TEXT PRIMARY KEY,
		occurred_at TIMESTAMP NOT NULL,
		type        TEXT NOT NULL,
		message     TEXT NOT NULL,
		meta        TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_bridge_events_occurred_at ON bridge_events (occurred_at);`,
	// 2: type-filtered listing (?type=COMMAND_FAILED)
	`CREATE INDEX IF NOT EXISTS idx_bridge_events_type_time ON bridge_events (type, occurred_at);`,
}

// InitDB opens (or creates) the journal database and brings its schema up
// to the latest version.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// single writer: commands from many sessions funnel through one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set PRAGMA %s: %w", p, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SchemaVersion reports the applied migration count.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func migrate(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("journal schema version %d is newer than this build (%d)", current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		if err := applyMigration(db, v+1, migrations[v]); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("apply migration %d: %w", version, err)
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
