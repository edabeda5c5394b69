package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/config"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/metrics"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

// Shared state for commands that need an engine. Built once per process so
// that a command never opens the database or parses the config twice.
var (
	engineOnce    sync.Once
	sharedEngine  *query.Engine
	sharedConfig  *config.Config
	sharedDB      *storage.DB
	sharedMetrics *metrics.Registry
)

// getWorkspaceRoot resolves the workspace root from the --workspace flag or by
// walking up from the current directory.
func getWorkspaceRoot() (string, error) {
	if workspaceFlag != "" {
		return paths.FindWorkspaceRoot(workspaceFlag)
	}
	return paths.FindWorkspaceRoot(".")
}

// mustGetWorkspaceRoot resolves the workspace root or exits.
func mustGetWorkspaceRoot() string {
	root, err := getWorkspaceRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving workspace root: %v\n", err)
		os.Exit(1)
	}
	return root
}

// getConfig loads the workspace config, falling back to defaults with a
// warning when the file is unreadable.
func getConfig(root string, logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("Config load failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// getEngine returns the shared query engine, constructing it on first use.
// Config load or database open failures degrade with a warning rather than
// aborting: the engine still answers from memory without persistence.
func getEngine(root string, logger *logging.Logger) *query.Engine {
	engineOnce.Do(func() {
		cfg := getConfig(root, logger)
		sharedConfig = cfg

		db, err := storage.Open(root, logger)
		if err != nil {
			logger.Warn("Database unavailable, continuing without persistence", map[string]interface{}{
				"error": err.Error(),
			})
			db = nil
		}
		sharedDB = db

		sharedMetrics = metrics.NewRegistry()

		sharedEngine = query.NewEngine(query.Options{
			WorkspaceRoot: root,
			Config:        cfg,
			Logger:        logger,
			DB:            db,
			Metrics:       sharedMetrics,
		})
	})
	return sharedEngine
}

// newContext returns a context with the standard command timeout.
func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// newLogger builds a CLI logger matching the requested output format so that
// diagnostics stay machine-readable when the caller asked for JSON. Logs go to
// stderr either way.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}
