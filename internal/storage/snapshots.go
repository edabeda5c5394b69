package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ErrSnapshotNotFound is returned when a snapshot id does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes a stored processed document without its payload.
type Snapshot struct {
	ID                string
	SchemaName        string
	SchemaVersion     string
	ContentSHA256     string
	SourceFingerprint string
	ByteSize          int64
	RawSize           int64
	CreatedAt         time.Time
}

// SnapshotStore persists processed documents as zstd-compressed blobs.
// Snapshot ids are derived from the document content, so saving the same
// document twice yields the same id instead of a duplicate row.
type SnapshotStore struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewSnapshotStore creates a snapshot store backed by the given database.
func NewSnapshotStore(db *DB) (*SnapshotStore, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &SnapshotStore{db: db, enc: enc, dec: dec}, nil
}

// Close releases the compression codecs.
func (s *SnapshotStore) Close() {
	s.enc.Close()
	s.dec.Close()
}

// Save compresses and stores a processed document. Saving a document whose
// content already exists refreshes its fingerprint and timestamp in place.
func (s *SnapshotStore) Save(ctx context.Context, schemaName, schemaVersion string, document []byte, sourceFingerprint string) (*Snapshot, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("cannot save empty document")
	}

	digest := sha256.Sum256(document)
	contentHash := hex.EncodeToString(digest[:])
	id := "snap_" + contentHash[:12]

	compressed := s.enc.EncodeAll(document, nil)
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO snapshots (id, schema_name, schema_version, content_sha256, source_fingerprint, byte_size, raw_size, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_fingerprint = excluded.source_fingerprint,
			created_at = excluded.created_at
	`, id, schemaName, nullable(schemaVersion), contentHash, nullable(sourceFingerprint),
		len(compressed), len(document), compressed, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return s.getMeta(ctx, id)
}

// Get returns a snapshot and its decompressed document, or nils if the id
// does not exist.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*Snapshot, []byte, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, schema_name, schema_version, content_sha256, source_fingerprint, byte_size, raw_size, document, created_at
		FROM snapshots WHERE id = ?
	`, id)
	return s.scanWithDocument(row)
}

// Latest returns the most recently created snapshot and its document, or nils
// if no snapshot exists.
func (s *SnapshotStore) Latest(ctx context.Context) (*Snapshot, []byte, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, schema_name, schema_version, content_sha256, source_fingerprint, byte_size, raw_size, document, created_at
		FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1
	`)
	return s.scanWithDocument(row)
}

// List returns snapshot metadata ordered newest first. A non-positive limit
// returns everything.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, schema_name, schema_version, content_sha256, source_fingerprint, byte_size, raw_size, created_at
		FROM snapshots ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snap, err := scanSnapshotMeta(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, rows.Err()
}

// Delete removes a snapshot. Returns ErrSnapshotNotFound if the id does not
// exist.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.conn.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (s *SnapshotStore) getMeta(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, schema_name, schema_version, content_sha256, source_fingerprint, byte_size, raw_size, created_at
		FROM snapshots WHERE id = ?
	`, id)
	snap, err := scanSnapshotMeta(row)
	if err == sql.ErrNoRows {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SnapshotStore) scanWithDocument(row *sql.Row) (*Snapshot, []byte, error) {
	var snap Snapshot
	var schemaVersion, fingerprint sql.NullString
	var compressed []byte
	var createdAt string

	err := row.Scan(&snap.ID, &snap.SchemaName, &schemaVersion, &snap.ContentSHA256,
		&fingerprint, &snap.ByteSize, &snap.RawSize, &compressed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snap.SchemaVersion = schemaVersion.String
	snap.SourceFingerprint = fingerprint.String
	snap.CreatedAt = parseStoredTime(createdAt)

	document, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress snapshot %s: %w", snap.ID, err)
	}
	return &snap, document, nil
}

func scanSnapshotMeta(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var schemaVersion, fingerprint sql.NullString
	var createdAt string

	err := row.Scan(&snap.ID, &snap.SchemaName, &schemaVersion, &snap.ContentSHA256,
		&fingerprint, &snap.ByteSize, &snap.RawSize, &createdAt)
	if err != nil {
		return nil, err
	}

	snap.SchemaVersion = schemaVersion.String
	snap.SourceFingerprint = fingerprint.String
	snap.CreatedAt = parseStoredTime(createdAt)
	return &snap, nil
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
