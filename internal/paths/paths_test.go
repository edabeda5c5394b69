package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindWorkspaceRootSourcesFile(t *testing.T) {
	tempDir := t.TempDir()

	// Create workspace root marked by sources.toml with a nested subdirectory
	root := filepath.Join(tempDir, "workspace")
	nested := filepath.Join(root, "docs", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, SourcesFile), []byte("[schema]\n"), 0644); err != nil {
		t.Fatalf("Failed to write sources file: %v", err)
	}

	found, err := FindWorkspaceRoot(nested)
	if err != nil {
		t.Fatalf("FindWorkspaceRoot failed: %v", err)
	}

	// Resolve symlinks for comparison (macOS /var vs /private/var)
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(found)
	if gotRoot != wantRoot {
		t.Errorf("FindWorkspaceRoot = %s, want %s", gotRoot, wantRoot)
	}
}

func TestFindWorkspaceRootDataDir(t *testing.T) {
	tempDir := t.TempDir()

	root := filepath.Join(tempDir, "workspace")
	nested := filepath.Join(root, "sub")
	if err := os.MkdirAll(filepath.Join(root, DataDirName), 0755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	found, err := FindWorkspaceRoot(nested)
	if err != nil {
		t.Fatalf("FindWorkspaceRoot failed: %v", err)
	}

	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(found)
	if gotRoot != wantRoot {
		t.Errorf("FindWorkspaceRoot = %s, want %s", gotRoot, wantRoot)
	}
}

func TestFindWorkspaceRootFallback(t *testing.T) {
	// No marker anywhere above the temp dir: should fall back to the start dir
	tempDir := t.TempDir()
	unmarked := filepath.Join(tempDir, "plain")
	if err := os.MkdirAll(unmarked, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	found, err := FindWorkspaceRoot(unmarked)
	if err != nil {
		t.Fatalf("FindWorkspaceRoot failed: %v", err)
	}

	want, _ := filepath.Abs(unmarked)
	if found != want {
		t.Errorf("FindWorkspaceRoot = %s, want %s", found, want)
	}
}

func TestDataDirLayout(t *testing.T) {
	root := "/my/workspace"

	if got, want := DataDir(root), filepath.Join(root, DataDirName); got != want {
		t.Errorf("DataDir = %s, want %s", got, want)
	}
	if got := DatabasePath(root); !strings.HasSuffix(got, DatabaseFile) {
		t.Errorf("DatabasePath = %s, should end with %s", got, DatabaseFile)
	}
	if got, want := SourceDataDir(root), filepath.Join(root, SourceDataDirName); got != want {
		t.Errorf("SourceDataDir = %s, want %s", got, want)
	}
	if got, want := ProcessedDir(root), filepath.Join(root, DataDirName, "processed"); got != want {
		t.Errorf("ProcessedDir = %s, want %s", got, want)
	}
	if got := ManifestPath(root); !strings.HasSuffix(got, ManifestFile) {
		t.Errorf("ManifestPath = %s, should end with %s", got, ManifestFile)
	}
	if got := ConfigPath(root); !strings.HasSuffix(got, ConfigFile) {
		t.Errorf("ConfigPath = %s, should end with %s", got, ConfigFile)
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("MODELDOCS_DATA_DIR", "/elsewhere/data")

	if got := DataDir("/my/workspace"); got != "/elsewhere/data" {
		t.Errorf("DataDir = %s, want /elsewhere/data", got)
	}
	// Derived paths follow the override
	if got, want := DatabasePath("/my/workspace"), filepath.Join("/elsewhere/data", DatabaseFile); got != want {
		t.Errorf("DatabasePath = %s, want %s", got, want)
	}
}

func TestEnsureDataDir(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureDataDir(root)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}

	// Idempotent
	if _, err := EnsureDataDir(root); err != nil {
		t.Errorf("Second EnsureDataDir failed: %v", err)
	}
}

func TestEnsureSourceAndProcessedDirs(t *testing.T) {
	root := t.TempDir()

	sourceDir, err := EnsureSourceDataDir(root)
	if err != nil {
		t.Fatalf("EnsureSourceDataDir failed: %v", err)
	}
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		t.Errorf("Source data directory was not created: %v", err)
	}

	processedDir, err := EnsureProcessedDir(root)
	if err != nil {
		t.Fatalf("EnsureProcessedDir failed: %v", err)
	}
	if info, err := os.Stat(processedDir); err != nil || !info.IsDir() {
		t.Errorf("Processed directory was not created: %v", err)
	}
}

func TestResolveInputPath(t *testing.T) {
	root := "/my/workspace"

	// Default path
	path := ResolveInputPath(root, "", "bdchm-processed.json")
	expected := filepath.Join(root, "bdchm-processed.json")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}

	// Relative configured path
	path = ResolveInputPath(root, "custom/model.json", "bdchm-processed.json")
	expected = filepath.Join(root, "custom/model.json")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}

	// Absolute configured path
	path = ResolveInputPath(root, "/absolute/model.json", "bdchm-processed.json")
	if path != "/absolute/model.json" {
		t.Errorf("Expected /absolute/model.json, got %s", path)
	}

	// Nothing configured at all
	if path := ResolveInputPath(root, "", ""); path != "" {
		t.Errorf("Expected empty path, got %s", path)
	}
}
