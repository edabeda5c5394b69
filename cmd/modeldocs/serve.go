package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/api"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/auth"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/watch"
)

var (
	serveHost  string
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the model documentation API over HTTP",
	Long: `Serve starts the HTTP API on the configured address. The model is
loaded before the listener opens so the first request is answered warm.

With --watch, changes under source_data/ trigger a debounced reload;
the previous model keeps serving until the new one is ready.`,
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := logging.NewLogger(logging.Config{
			Format: logging.JSONFormat,
			Level:  logging.InfoLevel,
		})
		engine := getEngine(root, logger)
		cfg := sharedConfig

		host := cfg.Server.Host
		if serveHost != "" {
			host = serveHost
		}
		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		addr := fmt.Sprintf("%s:%d", host, port)

		// Warm start: load before listening so the first request does not pay
		// the transform cost. An empty workspace is fine; the API reports it.
		loadCtx, cancelLoad := context.WithTimeout(context.Background(), 60*time.Second)
		if err := engine.Load(loadCtx); err != nil {
			logger.Warn("Model not loaded at startup", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancelLoad()

		var authManager *auth.Manager
		if sharedDB != nil {
			authManager = auth.NewManager(storage.NewTokenStore(sharedDB), logger)
		}

		server := api.NewServer(api.Options{
			Addr:    addr,
			Engine:  engine,
			Logger:  logger,
			Auth:    authManager,
			Metrics: sharedMetrics,
			Config:  cfg,
			DB:      sharedDB,
		})

		var watcher *watch.Watcher
		if serveWatch {
			w, err := watch.New(watch.Options{
				Dir:        paths.SourceDataDir(root),
				DebounceMs: cfg.Server.WatchDebounceMs,
				Logger:     logger,
				Metrics:    sharedMetrics,
				Reload:     engine.Reload,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error starting source watcher: %v\n", err)
				os.Exit(1)
			}
			if err := w.Start(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Error starting source watcher: %v\n", err)
				os.Exit(1)
			}
			watcher = w
			defer watcher.Stop()
		}

		serverErr := make(chan error, 1)
		go func() {
			serverErr <- server.Start()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("modeldocs API listening on http://%s\n", addr)
		if serveWatch {
			fmt.Printf("Watching %s for source changes\n", paths.SourceDataDir(root))
		}
		fmt.Println("Press Ctrl+C to stop")

		select {
		case err := <-serverErr:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
				os.Exit(1)
			}
		case sig := <-shutdown:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if watcher != nil {
				watcher.Stop()
			}
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind address (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the model when source files change")
}
