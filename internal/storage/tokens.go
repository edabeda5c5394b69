package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrTokenNotFound is returned when a token id or prefix does not exist.
var ErrTokenNotFound = errors.New("token not found")

// TokenRecord is a stored API token. Only the bcrypt hash is persisted; the
// plaintext token is shown once at creation time.
type TokenRecord struct {
	ID          string
	Name        string
	TokenHash   string
	TokenPrefix string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
	Revoked     bool
	RevokedAt   *time.Time
}

// TokenStore provides access to the api_tokens table.
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a token store backed by the given database.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// Save inserts a new token record.
func (s *TokenStore) Save(ctx context.Context, rec *TokenRecord) error {
	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, token_hash, token_prefix, created_at, last_used_at, revoked, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.TokenHash, rec.TokenPrefix,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		nullableTime(rec.LastUsedAt), boolToInt(rec.Revoked), nullableTime(rec.RevokedAt))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// GetByPrefix returns the active token with the given prefix. Returns
// ErrTokenNotFound if no active token matches.
func (s *TokenStore) GetByPrefix(ctx context.Context, prefix string) (*TokenRecord, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, name, token_hash, token_prefix, created_at, last_used_at, revoked, revoked_at
		FROM api_tokens WHERE token_prefix = ? AND revoked = 0
	`, prefix)

	rec, err := scanToken(row)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return rec, nil
}

// List returns token records ordered by creation time, newest first. Revoked
// tokens are omitted unless includeRevoked is set.
func (s *TokenStore) List(ctx context.Context, includeRevoked bool) ([]TokenRecord, error) {
	query := `
		SELECT id, name, token_hash, token_prefix, created_at, last_used_at, revoked, revoked_at
		FROM api_tokens
	`
	if !includeRevoked {
		query += " WHERE revoked = 0"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var records []TokenRecord
	for rows.Next() {
		rec, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Revoke marks a token as revoked. Returns ErrTokenNotFound if the id does
// not exist.
func (s *TokenStore) Revoke(ctx context.Context, id string) error {
	result, err := s.db.conn.ExecContext(ctx, `
		UPDATE api_tokens SET revoked = 1, revoked_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoke result: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// UpdateLastUsed records that a token was just used for authentication.
func (s *TokenStore) UpdateLastUsed(ctx context.Context, id string) error {
	_, err := s.db.conn.ExecContext(ctx, `
		UPDATE api_tokens SET last_used_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}
	return nil
}

// Delete permanently removes a token. Returns ErrTokenNotFound if the id does
// not exist.
func (s *TokenStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.conn.ExecContext(ctx, "DELETE FROM api_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// HasActiveTokens reports whether any non-revoked token exists. Mutating
// endpoints refuse authentication entirely when no token has been issued.
func (s *TokenStore) HasActiveTokens(ctx context.Context) (bool, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_tokens WHERE revoked = 0").Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count tokens: %w", err)
	}
	return n > 0, nil
}

func scanToken(row rowScanner) (*TokenRecord, error) {
	var rec TokenRecord
	var createdAt string
	var lastUsedAt, revokedAt sql.NullString
	var revoked int

	err := row.Scan(&rec.ID, &rec.Name, &rec.TokenHash, &rec.TokenPrefix,
		&createdAt, &lastUsedAt, &revoked, &revokedAt)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = parseStoredTime(createdAt)
	rec.Revoked = revoked != 0
	if lastUsedAt.Valid {
		t := parseStoredTime(lastUsedAt.String)
		rec.LastUsedAt = &t
	}
	if revokedAt.Valid {
		t := parseStoredTime(revokedAt.String)
		rec.RevokedAt = &t
	}
	return &rec, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
