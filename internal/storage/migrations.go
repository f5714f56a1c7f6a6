package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// migration is one named schema change. Migrations run in slice order and
// are recorded in a tracking table so each applies exactly once.
type migration struct {
	Name string
	SQL  string
}

var migrations = []migration{
	{
		Name: "001_sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				user_id    INTEGER PRIMARY KEY,
				payload    TEXT NOT NULL,
				token      TEXT NOT NULL,
				expires_at TIMESTAMP,
				saved_at   TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
		`,
	},
	{
		Name: "002_view_snapshots",
		SQL: `
			CREATE TABLE IF NOT EXISTS view_snapshots (
				user_id    INTEGER PRIMARY KEY,
				payload    TEXT NOT NULL,
				fetched_at TIMESTAMP NOT NULL
			);
		`,
	},
}

// RunMigrations applies all pending schema migrations.
func RunMigrations(db *DB) error {
	if err := createMigrationsTable(db.DB); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db.DB)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Name] {
			continue
		}

		log.Printf("Applying migration: %s", m.Name)
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func getAppliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *DB, m migration) error {
	return db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.SQL); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO _migrations (name) VALUES (?)`, m.Name)
		return err
	})
}
