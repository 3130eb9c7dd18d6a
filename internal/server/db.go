package server

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDB opens the sqlite backend. The default DSN is ":memory:", which
// keeps the store volatile like the memory backend; a file DSN is only
// for local inspection and carries no durability promise.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single conn keeps an in-memory database from vanishing between
	// pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			temperature_c REAL NOT NULL,
			temperature_f REAL NOT NULL,
			humidity_pct REAL NOT NULL,
			pressure_hpa REAL NOT NULL,
			altitude_m REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_readings_device ON readings(device_id, timestamp_ms);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
