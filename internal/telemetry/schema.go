package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/picoctl/internal/errors"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS schema_versions (
	    version     INTEGER PRIMARY KEY,
	    applied_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
	    timestamp       INTEGER NOT NULL,
	    chip            TEXT    NOT NULL,
	    profile         TEXT    NOT NULL,
	    frequency_khz   INTEGER NOT NULL,
	    load_avg        REAL    NOT NULL,
	    load_instant    REAL    NOT NULL,
	    temperature     REAL    NOT NULL,
	    throttled       INTEGER NOT NULL CHECK (throttled IN (0, 1)),
	    turbo_active    INTEGER NOT NULL CHECK (turbo_active IN (0, 1)),
	    boost_active    INTEGER NOT NULL CHECK (boost_active IN (0, 1)),
	    override_active INTEGER NOT NULL CHECK (override_active IN (0, 1))
	);`

	insertSnapshotSQL = `
	INSERT INTO snapshots (
	    timestamp, chip, profile, frequency_khz,
	    load_avg, load_instant, temperature,
	    throttled, turbo_active, boost_active, override_active
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the telemetry schema and records its version.
func InitSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				_ = err
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(`
	    INSERT OR IGNORE INTO schema_versions (version, applied_at)
	    VALUES (?, datetime('now'))
	`, SchemaVersion); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	return nil
}
