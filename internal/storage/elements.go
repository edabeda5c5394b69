package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ElementRecord is a flattened model element row suitable for indexing and
// full-text search. Flags carries boolean markers such as required, multivalued
// or abstract; it is stored as JSON and may be nil.
type ElementRecord struct {
	ID          string
	Kind        string
	Name        string
	Parent      string
	RangeRef    string
	Description string
	Flags       map[string]bool
	Doc         string
}

// ElementStore provides access to the elements table.
type ElementStore struct {
	db *DB
}

// NewElementStore creates an element store backed by the given database.
func NewElementStore(db *DB) *ElementStore {
	return &ElementStore{db: db}
}

// ReplaceAll atomically replaces the entire element index with the given
// records. The FTS sync triggers are dropped for the duration of the bulk
// insert and the search index is rebuilt from the content table afterwards,
// which is much faster than maintaining it row by row.
func (s *ElementStore) ReplaceAll(ctx context.Context, records []ElementRecord) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, trigger := range []string{"elements_fts_ai", "elements_fts_au", "elements_fts_ad"} {
		if _, err := tx.ExecContext(ctx, "DROP TRIGGER IF EXISTS "+trigger); err != nil {
			return fmt.Errorf("failed to drop trigger %s: %w", trigger, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM elements"); err != nil {
		return fmt.Errorf("failed to clear elements: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (id, kind, name, parent, range_ref, description, flags_json, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var flagsJSON interface{}
		if len(rec.Flags) > 0 {
			data, err := json.Marshal(rec.Flags)
			if err != nil {
				return fmt.Errorf("failed to marshal flags for %s: %w", rec.ID, err)
			}
			flagsJSON = string(data)
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Kind, rec.Name,
			nullable(rec.Parent), nullable(rec.RangeRef), nullable(rec.Description),
			flagsJSON, nullable(rec.Doc),
		)
		if err != nil {
			return fmt.Errorf("failed to insert element %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO elements_fts(elements_fts) VALUES('rebuild')"); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}

	for _, trigger := range []string{ftsInsertTrigger, ftsUpdateTrigger, ftsDeleteTrigger} {
		if _, err := tx.ExecContext(ctx, trigger); err != nil {
			return fmt.Errorf("failed to recreate trigger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit element replace: %w", err)
	}
	return nil
}

// GetByID returns a single element, or nil if no element has that id.
func (s *ElementStore) GetByID(ctx context.Context, id string) (*ElementRecord, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, kind, name, parent, range_ref, description, flags_json, doc
		FROM elements WHERE id = ?
	`, id)

	rec, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element %s: %w", id, err)
	}
	return rec, nil
}

// ListByKind returns elements of the given kind ordered by name. An empty kind
// returns all elements ordered by kind then name. A non-positive limit returns
// everything.
func (s *ElementStore) ListByKind(ctx context.Context, kind string, limit int) ([]ElementRecord, error) {
	query := `
		SELECT id, kind, name, parent, range_ref, description, flags_json, doc
		FROM elements
	`
	args := []interface{}{}
	if kind != "" {
		query += " WHERE kind = ? ORDER BY name"
		args = append(args, kind)
	} else {
		query += " ORDER BY kind, name"
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}
	defer rows.Close()

	var records []ElementRecord
	for rows.Next() {
		rec, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountByKind returns the number of indexed elements per kind.
func (s *ElementStore) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.conn.QueryContext(ctx, "SELECT kind, COUNT(*) FROM elements GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count elements: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanElement(row rowScanner) (*ElementRecord, error) {
	var rec ElementRecord
	var parent, rangeRef, description, flagsJSON, doc sql.NullString

	err := row.Scan(&rec.ID, &rec.Kind, &rec.Name, &parent, &rangeRef, &description, &flagsJSON, &doc)
	if err != nil {
		return nil, err
	}

	rec.Parent = parent.String
	rec.RangeRef = rangeRef.String
	rec.Description = description.String
	rec.Doc = doc.String
	if flagsJSON.Valid && flagsJSON.String != "" {
		if err := json.Unmarshal([]byte(flagsJSON.String), &rec.Flags); err != nil {
			return nil, fmt.Errorf("corrupt flags for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
