// Package store persists planning documents and revenue rows in SQLite.
//
// Planning, validation, selection and note data are namespaced documents
// keyed (shop_id, week_key, kind) with an explicit schema version, replacing
// the ad-hoc string-template keys of earlier tooling. Revenue rows get a
// typed table of their own.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written into every document row.
const SchemaVersion = 1

// Document kinds.
const (
	KindPlanning          = "planning"
	KindSelectedEmployees = "selected_employees"
	KindValidation        = "validation"
	KindValidatedSlots    = "validated_slots"
	KindNotes             = "notes"
)

// Store wraps sql.DB for planning and revenue persistence.
type Store struct {
	*sql.DB
	path string
}

// Open opens the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Store{DB: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			shop_id TEXT NOT NULL,
			week_key TEXT NOT NULL,
			kind TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			payload TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (shop_id, week_key, kind)
		)`,

		`CREATE TABLE IF NOT EXISTS revenue_days (
			shop_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			ca REAL NOT NULL DEFAULT 0,
			ca_ht REAL NOT NULL DEFAULT 0,
			tva_totale REAL NOT NULL DEFAULT 0,
			encaissement REAL NOT NULL DEFAULT 0,
			bc REAL NOT NULL DEFAULT 0,
			payments TEXT NOT NULL DEFAULT '{}',
			batch_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (shop_id, date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_documents_week ON documents(shop_id, week_key)`,
		`CREATE INDEX IF NOT EXISTS idx_revenue_days_date ON revenue_days(shop_id, date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
