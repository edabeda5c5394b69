package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

var (
	loadFormat  string
	loadRebuild bool
)

// LoadResponseCLI reports one load run for CLI output.
type LoadResponseCLI struct {
	Reloaded   bool         `json:"reloaded"`
	Source     string       `json:"source"`
	Stats      schema.Stats `json:"stats"`
	DurationMs int64        `json:"durationMs"`
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the model into memory and persist a snapshot",
	Long: `Load builds the in-memory model from the best available source: a
verified snapshot, a processed document, or the expanded schema under
source_data/. The result is snapshotted and indexed in the workspace
database so later commands start warm.

With --rebuild the snapshot store is bypassed and the model is rebuilt
from source files.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(loadFormat)
		root := mustGetWorkspaceRoot()
		logger := newLogger(loadFormat)
		engine := getEngine(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		start := time.Now()
		var err error
		if loadRebuild {
			err = engine.Reload(ctx)
		} else {
			err = engine.Load(ctx)
		}
		if err != nil {
			fail(format, err)
		}

		stats, prov, err := engine.Stats(ctx)
		if err != nil {
			fail(format, err)
		}

		result := &LoadResponseCLI{
			Reloaded:   loadRebuild,
			Source:     prov.Source,
			Stats:      *stats,
			DurationMs: time.Since(start).Milliseconds(),
		}
		printResult(envelope.New().Data(result).FromProvenance(prov).Build(), format)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadFormat, "format", "human", "Output format: json or human")
	loadCmd.Flags().BoolVar(&loadRebuild, "rebuild", false, "Bypass snapshots and rebuild from source files")
}
