package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		// Create schema_version table first
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}

		// Create all application tables
		if err := createElementsTable(tx); err != nil {
			return err
		}
		if err := createElementSearchTables(tx); err != nil {
			return err
		}
		if err := createSnapshotsTable(tx); err != nil {
			return err
		}
		if err := createTokensTable(tx); err != nil {
			return err
		}

		// Set initial schema version
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Run migrations sequentially as the schema evolves:
	// if version < 2 {
	//     if err := db.migrateToV2(); err != nil {
	//         return err
	//     }
	// }

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		// Table doesn't exist, this is a new database
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createElementsTable creates the elements table holding one row per model
// element (class, enum, slot, type, variable) for listing and search
func createElementsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS elements (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('class', 'enum', 'slot', 'type', 'variable')),
			name TEXT NOT NULL,
			parent TEXT,
			range_ref TEXT,
			description TEXT,
			flags_json TEXT,
			doc TEXT,
			indexed_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create elements table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_elements_kind ON elements(kind)",
		"CREATE INDEX IF NOT EXISTS idx_elements_name ON elements(name)",
		"CREATE INDEX IF NOT EXISTS idx_elements_parent ON elements(parent)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createSnapshotsTable creates the snapshots table holding zstd-compressed
// processed documents keyed by content digest
func createSnapshotsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			schema_name TEXT NOT NULL,
			schema_version TEXT,
			content_sha256 TEXT NOT NULL,
			source_fingerprint TEXT,
			byte_size INTEGER NOT NULL,
			raw_size INTEGER NOT NULL,
			document BLOB NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_content_sha256 ON snapshots(content_sha256)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createTokensTable creates the api_tokens table for bearer token auth
func createTokensTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS api_tokens (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			token_prefix TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_used_at TEXT,
			revoked INTEGER NOT NULL DEFAULT 0,
			revoked_at TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create api_tokens table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_api_tokens_prefix ON api_tokens(token_prefix)",
		"CREATE INDEX IF NOT EXISTS idx_api_tokens_revoked ON api_tokens(revoked)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
