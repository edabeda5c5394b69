package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

var statusFormat string

// StorageCLI summarizes the workspace database for status output.
type StorageCLI struct {
	DatabasePath      string `json:"databasePath"`
	DatabaseSizeBytes int64  `json:"databaseSizeBytes"`
	IndexedElements   int    `json:"indexedElements"`
}

// StatusResponseCLI is the status command payload. A workspace without
// sources still reports, with Status "empty".
type StatusResponseCLI struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	Workspace     string        `json:"workspace"`
	Loaded        bool          `json:"loaded"`
	LoadedAt      string        `json:"loadedAt,omitempty"`
	Source        string        `json:"source,omitempty"`
	SearchBackend string        `json:"searchBackend"`
	Stats         *schema.Stats `json:"stats,omitempty"`
	Storage       *StorageCLI   `json:"storage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model and workspace status",
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(statusFormat)
		root := mustGetWorkspaceRoot()
		logger := newLogger(statusFormat)
		engine := getEngine(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		data := &StatusResponseCLI{
			Status:    "operational",
			Version:   version.Version,
			Workspace: root,
		}
		data.SearchBackend = "memory"
		if sharedDB != nil && sharedConfig.Search.Enabled {
			data.SearchBackend = "fts"
		}

		stats, prov, err := engine.Stats(ctx)
		if err != nil {
			data.Status = "empty"
			data.Storage = storageStatus()
			printResult(envelope.New().Data(data).Warning(err.Error()).Build(), format)
			return
		}

		data.Loaded = true
		data.LoadedAt = prov.LoadedAt
		data.Source = prov.Source
		data.Stats = stats
		data.Storage = storageStatus()

		printResult(envelope.New().Data(data).FromProvenance(prov).Build(), format)
	},
}

// storageStatus inspects the shared database, returning nil when storage is
// degraded or absent.
func storageStatus() *StorageCLI {
	if sharedDB == nil {
		return nil
	}
	info := &StorageCLI{DatabasePath: sharedDB.Path()}
	if stat, err := os.Stat(sharedDB.Path()); err == nil {
		info.DatabaseSizeBytes = stat.Size()
	}
	ctx, cancel := newContext()
	defer cancel()
	if counts, err := storage.NewElementStore(sharedDB).CountByKind(ctx); err == nil {
		for _, n := range counts {
			info.IndexedElements += n
		}
	}
	return info
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format: json or human")
}
