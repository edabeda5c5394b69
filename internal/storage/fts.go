// Package storage persists the documentation model: an elements table with
// FTS5 full-text search, compressed document snapshots, and API tokens.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Trigger DDL is shared between schema init and bulk replace, which drops and
// recreates the triggers around a full reload.
const (
	ftsInsertTrigger = `CREATE TRIGGER IF NOT EXISTS elements_fts_ai AFTER INSERT ON elements BEGIN
		INSERT INTO elements_fts(rowid, name, description, doc)
		VALUES (new.rowid, new.name, new.description, new.doc);
	END`

	ftsUpdateTrigger = `CREATE TRIGGER IF NOT EXISTS elements_fts_au AFTER UPDATE ON elements BEGIN
		INSERT INTO elements_fts(elements_fts, rowid, name, description, doc)
		VALUES ('delete', old.rowid, old.name, old.description, old.doc);
		INSERT INTO elements_fts(rowid, name, description, doc)
		VALUES (new.rowid, new.name, new.description, new.doc);
	END`

	ftsDeleteTrigger = `CREATE TRIGGER IF NOT EXISTS elements_fts_ad AFTER DELETE ON elements BEGIN
		INSERT INTO elements_fts(elements_fts, rowid, name, description, doc)
		VALUES ('delete', old.rowid, old.name, old.description, old.doc);
	END`
)

// createElementSearchTables creates the FTS5 virtual table over elements and
// the triggers that keep it in sync
func createElementSearchTables(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS elements_fts USING fts5(
			name,
			description,
			doc,
			content='elements',
			content_rowid='rowid'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create elements_fts table: %w", err)
	}

	for _, trigger := range []string{ftsInsertTrigger, ftsUpdateTrigger, ftsDeleteTrigger} {
		if _, err := tx.Exec(trigger); err != nil {
			return fmt.Errorf("failed to create trigger: %w", err)
		}
	}

	return nil
}

// SearchResult represents a full-text search hit
type SearchResult struct {
	ID          string
	Kind        string
	Name        string
	Description string
	Rank        float64 // BM25-derived ranking score
	MatchType   string  // "exact", "prefix", "substring"
}

// SearchIndex performs tiered full-text search over the elements table
type SearchIndex struct {
	db *DB
}

// NewSearchIndex creates a search index over an open database
func NewSearchIndex(db *DB) *SearchIndex {
	return &SearchIndex{db: db}
}

// Search runs exact, then prefix, then substring matching until limit results
// are collected. Kinds, when non-empty, restricts hits to those element kinds.
func (x *SearchIndex) Search(ctx context.Context, query string, kinds []string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var results []SearchResult

	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	exactResults, err := x.searchExact(ctx, query, kinds, limit)
	if err == nil && len(exactResults) > 0 {
		results = append(results, exactResults...)
	}

	if len(results) < limit {
		remaining := limit - len(results)
		prefixResults, err := x.searchPrefix(ctx, query, kinds, remaining)
		if err == nil {
			results = mergeResults(results, prefixResults)
		}
	}

	if len(results) < limit {
		remaining := limit - len(results)
		likeResults, err := x.searchLike(ctx, query, kinds, remaining)
		if err == nil {
			results = mergeResults(results, likeResults)
		}
	}

	return results, nil
}

// mergeResults appends hits not already present by ID
func mergeResults(results, more []SearchResult) []SearchResult {
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.ID] = true
	}
	for _, r := range more {
		if !seen[r.ID] {
			results = append(results, r)
		}
	}
	return results
}

// searchExact performs an exact phrase match
func (x *SearchIndex) searchExact(ctx context.Context, query string, kinds []string, limit int) ([]SearchResult, error) {
	ftsQuery := fmt.Sprintf(`"%s"`, escapeFTSQuery(query))
	return x.searchMatch(ctx, ftsQuery, kinds, limit, "exact", 1.0)
}

// searchPrefix performs a prefix match
func (x *SearchIndex) searchPrefix(ctx context.Context, query string, kinds []string, limit int) ([]SearchResult, error) {
	ftsQuery := fmt.Sprintf(`"%s"*`, escapeFTSQuery(query))
	return x.searchMatch(ctx, ftsQuery, kinds, limit, "prefix", 0.8)
}

// searchMatch runs an FTS5 MATCH query joined back to the elements table
func (x *SearchIndex) searchMatch(ctx context.Context, ftsQuery string, kinds []string, limit int, matchType string, rank float64) ([]SearchResult, error) {
	sqlQuery := `
		SELECT c.id, c.kind, c.name, c.description,
			bm25(elements_fts, 1.0, 0.5, 0.3) AS rank
		FROM elements_fts f
		JOIN elements c ON f.rowid = c.rowid
		WHERE elements_fts MATCH ?`
	args := []interface{}{ftsQuery}

	clause, filterArgs := kindFilter("c.kind", kinds)
	sqlQuery += clause
	args = append(args, filterArgs...)

	sqlQuery += " ORDER BY rank, c.name LIMIT ?"
	args = append(args, limit)

	rows, err := x.db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var desc sql.NullString
		var bm25Rank float64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &desc, &bm25Rank); err != nil {
			return nil, err
		}
		r.Description = desc.String
		r.MatchType = matchType
		r.Rank = rank
		results = append(results, r)
	}

	return results, rows.Err()
}

// searchLike performs a fallback LIKE search for substring matches
func (x *SearchIndex) searchLike(ctx context.Context, query string, kinds []string, limit int) ([]SearchResult, error) {
	pattern := "%" + query + "%"

	sqlQuery := `
		SELECT id, kind, name, description
		FROM elements
		WHERE (name LIKE ? OR description LIKE ? OR doc LIKE ?)`
	args := []interface{}{pattern, pattern, pattern}

	clause, filterArgs := kindFilter("kind", kinds)
	sqlQuery += clause
	args = append(args, filterArgs...)

	sqlQuery += " ORDER BY name LIMIT ?"
	args = append(args, limit)

	rows, err := x.db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var desc sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &desc); err != nil {
			return nil, err
		}
		r.Description = desc.String
		r.MatchType = "substring"
		r.Rank = 0.5
		results = append(results, r)
	}

	return results, rows.Err()
}

// Rebuild forces a complete rebuild of the FTS index from the elements table
func (x *SearchIndex) Rebuild(ctx context.Context) error {
	_, err := x.db.conn.ExecContext(ctx, "INSERT INTO elements_fts(elements_fts) VALUES('rebuild')")
	return err
}

// IndexedCount returns the number of rows visible to the search index
func (x *SearchIndex) IndexedCount(ctx context.Context) (int, error) {
	var count int
	err := x.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM elements").Scan(&count)
	return count, err
}

// kindFilter builds an AND ... IN (...) clause for the given column, or
// nothing when kinds is empty
func kindFilter(column string, kinds []string) (string, []interface{}) {
	if len(kinds) == 0 {
		return "", nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(kinds)), ", ")
	args := make([]interface{}, 0, len(kinds))
	for _, k := range kinds {
		args = append(args, k)
	}
	return fmt.Sprintf(" AND %s IN (%s)", column, placeholders), args
}

// escapeFTSQuery escapes quotes so user input reads as a plain phrase
func escapeFTSQuery(query string) string {
	return strings.ReplaceAll(query, `"`, `""`)
}
