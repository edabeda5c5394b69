// Package fetch downloads the declared schema and variable sources into
// the workspace source_data directory: pinned files from GitHub repos and
// TSV exports of Google Sheets, recorded in a manifest for provenance.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

const (
	githubRawBase = "https://raw.githubusercontent.com"

	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	defaultRetries     = 2
	defaultBackoff     = 500 * time.Millisecond
)

// Fetcher downloads registry sources with bounded concurrency and retry
// on transient failures.
type Fetcher struct {
	client      *http.Client
	logger      *logging.Logger
	concurrency int
	retries     int
	backoff     time.Duration
	rawBase     string
}

// Options configures a Fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Retries     int
	Backoff     time.Duration
	Logger      *logging.Logger
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Fetcher{
		client:      &http.Client{Timeout: opts.Timeout},
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
		retries:     opts.Retries,
		backoff:     opts.Backoff,
		rawBase:     githubRawBase,
	}
}

// job is one file to download.
type job struct {
	dependency string
	name       string
	url        string
	err        error
}

// jobs expands a registry into the flat download list: dependencies in
// sorted order, repo files in declared order.
func (f *Fetcher) jobs(reg *Registry) []job {
	var jobs []job
	for _, dep := range sortedSourceNames(reg.Sources) {
		src := reg.Sources[dep]
		if src.Repo != "" {
			for _, fp := range src.FilePaths {
				jobs = append(jobs, job{
					dependency: dep,
					name:       path.Base(fp),
					url:        fmt.Sprintf("%s/%s/%s/%s", f.rawBase, src.Repo, src.Commit, fp),
				})
			}
			continue
		}
		exportURL, err := sheetExportURL(src.SheetURL)
		if err != nil {
			// Validate catches this for loaded registries; hand-built ones
			// surface it as a per-file failure
			jobs = append(jobs, job{dependency: dep, name: src.FileName, err: err})
			continue
		}
		jobs = append(jobs, job{dependency: dep, name: src.FileName, url: exportURL})
	}
	return jobs
}

// FileResult reports the outcome for one file.
type FileResult struct {
	Dependency string `json:"dependency"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	SHA256     string `json:"sha256,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Result summarizes one fetch run. Individual file failures are collected
// here; only setup failures abort the run.
type Result struct {
	Files      []FileResult `json:"files"`
	Fetched    int          `json:"fetched"`
	Failed     int          `json:"failed"`
	DurationMs int64        `json:"durationMs"`
}

// Fetch downloads every file the registry declares into destDir, laid out
// as {dependency}/{file}, and updates the manifest alongside them.
func (f *Fetcher) Fetch(ctx context.Context, reg *Registry, destDir string) (*Result, error) {
	start := time.Now()
	jobs := f.jobs(reg)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create source dir: %w", err)
	}

	var mu sync.Mutex
	results := make([]FileResult, 0, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			res := f.fetchOne(gctx, j, destDir)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, k int) bool {
		if results[i].Dependency != results[k].Dependency {
			return results[i].Dependency < results[k].Dependency
		}
		return results[i].Name < results[k].Name
	})

	result := &Result{Files: results, DurationMs: time.Since(start).Milliseconds()}
	for _, r := range results {
		if r.Error != "" {
			result.Failed++
		} else {
			result.Fetched++
		}
	}

	if err := f.updateManifest(destDir, results); err != nil {
		return result, err
	}
	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, j job, destDir string) FileResult {
	res := FileResult{Dependency: j.dependency, Name: j.name, URL: j.url}
	if j.err != nil {
		res.Error = j.err.Error()
		return res
	}

	f.logger.Info("fetching source file", map[string]interface{}{
		"dependency": j.dependency,
		"file":       j.name,
		"url":        j.url,
	})

	data, err := f.download(ctx, j.url)
	if err != nil {
		f.logger.Warn("fetch failed", map[string]interface{}{
			"dependency": j.dependency,
			"file":       j.name,
			"error":      err.Error(),
		})
		res.Error = err.Error()
		return res
	}

	depDir := filepath.Join(destDir, j.dependency)
	if err := os.MkdirAll(depDir, 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(filepath.Join(depDir, j.name), data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	sum := sha256.Sum256(data)
	res.SHA256 = hex.EncodeToString(sum[:])
	res.Bytes = int64(len(data))
	return res
}

// download performs the request with retry on 5xx and transport errors.
// 404 and other client errors fail immediately.
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			wait := f.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		data, retryable, err := f.attempt(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", "modeldocs/"+version.Version)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return data, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server returned %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("server returned %s", resp.Status)
	}
}

func (f *Fetcher) updateManifest(destDir string, results []FileResult) error {
	manifestPath := filepath.Join(destDir, ManifestFile)
	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		manifest = NewManifest()
	}

	now := time.Now().UTC()
	manifest.FetchedAt = now
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		manifest.Files[r.Dependency+"/"+r.Name] = ManifestEntry{
			URL:       r.URL,
			SHA256:    r.SHA256,
			Bytes:     r.Bytes,
			FetchedAt: now,
		}
	}
	return WriteManifest(manifestPath, manifest)
}
