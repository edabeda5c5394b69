package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// ManifestFile is the manifest name inside the source_data directory.
const ManifestFile = "manifest.json"

// Manifest records what was fetched, keyed by "{dependency}/{file}". It
// feeds response provenance and staleness checks.
type Manifest struct {
	FetchedAt time.Time                `json:"fetchedAt"`
	Files     map[string]ManifestEntry `json:"files"`
}

// ManifestEntry describes one fetched file.
type ManifestEntry struct {
	URL       string    `json:"url"`
	SHA256    string    `json:"sha256"`
	Bytes     int64     `json:"bytes"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Files: map[string]ManifestEntry{}}
}

// ReadManifest loads a manifest from path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Files == nil {
		m.Files = map[string]ManifestEntry{}
	}
	return &m, nil
}

// WriteManifest writes a manifest to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Fingerprint derives a stable digest over the manifest contents. Two
// manifests with the same files and hashes fingerprint identically
// regardless of fetch time.
func (m *Manifest) Fingerprint() string {
	keys := make([]string, 0, len(m.Files))
	for k := range m.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s:%s\n", k, m.Files[k].SHA256)
	}
	return hex.EncodeToString(h.Sum(nil))
}
