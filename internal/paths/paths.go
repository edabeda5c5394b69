package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDirName is the per-workspace data directory created next to sources.toml.
	DataDirName = ".modeldocs"

	// SourcesFile marks a workspace root.
	SourcesFile = "sources.toml"

	// SourceDataDirName holds fetched schema and variable files, one subdirectory
	// per dependency.
	SourceDataDirName = "source_data"

	// DatabaseFile is the SQLite database file name inside the data directory.
	DatabaseFile = "model.db"

	// ManifestFile records digests for fetched source files.
	ManifestFile = "manifest.json"

	// ConfigFile is the optional per-workspace configuration file.
	ConfigFile = "config.json"
)

// FindWorkspaceRoot walks up from start looking for a directory that contains
// sources.toml or an existing .modeldocs directory. When no marker is found
// anywhere above start, the absolute form of start is returned so commands
// still have a usable root to create data in.
func FindWorkspaceRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	dir := abs
	for {
		if fileExists(filepath.Join(dir, SourcesFile)) || dirExists(filepath.Join(dir, DataDirName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// DataDir returns the data directory for a workspace root. The
// MODELDOCS_DATA_DIR environment variable overrides the default location.
func DataDir(workspaceRoot string) string {
	if dir := os.Getenv("MODELDOCS_DATA_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(workspaceRoot, DataDirName)
}

// EnsureDataDir creates the data directory if it does not exist yet.
func EnsureDataDir(workspaceRoot string) (string, error) {
	dir := DataDir(workspaceRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return dir, nil
}

// SourceDataDir holds fetched source files (schema YAML, generated JSON,
// variable TSV), one subdirectory per dependency.
func SourceDataDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, SourceDataDirName)
}

// EnsureSourceDataDir creates the source data directory if it does not exist yet.
func EnsureSourceDataDir(workspaceRoot string) (string, error) {
	dir := SourceDataDir(workspaceRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create source data directory %s: %w", dir, err)
	}
	return dir, nil
}

// ProcessedDir holds transformed model documents ready for loading.
func ProcessedDir(workspaceRoot string) string {
	return filepath.Join(DataDir(workspaceRoot), "processed")
}

// EnsureProcessedDir creates the processed document directory if it does not
// exist yet.
func EnsureProcessedDir(workspaceRoot string) (string, error) {
	dir := ProcessedDir(workspaceRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create processed directory %s: %w", dir, err)
	}
	return dir, nil
}

// DatabasePath returns the SQLite database path for a workspace.
func DatabasePath(workspaceRoot string) string {
	return filepath.Join(DataDir(workspaceRoot), DatabaseFile)
}

// ManifestPath returns the fetch manifest path for a workspace.
func ManifestPath(workspaceRoot string) string {
	return filepath.Join(SourceDataDir(workspaceRoot), ManifestFile)
}

// ConfigPath returns the per-workspace config file path.
func ConfigPath(workspaceRoot string) string {
	return filepath.Join(DataDir(workspaceRoot), ConfigFile)
}

// ResolveInputPath resolves a configured file path against the workspace root.
// Absolute paths are used as-is, relative paths are joined to the root, and an
// empty configured path falls back to fallback (itself resolved the same way).
func ResolveInputPath(workspaceRoot, configured, fallback string) string {
	path := configured
	if path == "" {
		path = fallback
	}
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspaceRoot, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
