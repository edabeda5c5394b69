package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/fetch"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
)

var fetchFormat string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download schema and variable sources into the workspace",
	Long: `Fetch downloads every file declared in sources.toml into source_data/,
one subdirectory per dependency, and records digests in the manifest.
Without a sources.toml the built-in BDCHM source set is used.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(fetchFormat)
		root := mustGetWorkspaceRoot()
		logger := newLogger(fetchFormat)
		cfg := getConfig(root, logger)

		registryPath := paths.ResolveInputPath(root, cfg.Sources.RegistryPath, paths.SourcesFile)
		reg, err := fetch.LoadRegistry(registryPath)
		if err != nil {
			fail(format, err)
		}

		destDir, err := paths.EnsureSourceDataDir(root)
		if err != nil {
			fail(format, err)
		}

		fetcher := fetch.New(fetch.Options{
			Timeout:     time.Duration(cfg.Sources.TimeoutMs) * time.Millisecond,
			Concurrency: cfg.Sources.Concurrency,
			Retries:     cfg.Sources.Retries,
			Logger:      logger,
		})

		ctx, cancel := newContext()
		defer cancel()

		result, err := fetcher.Fetch(ctx, reg, destDir)
		if err != nil {
			fail(format, err)
		}

		env := envelope.Operational(result)
		if result.Failed > 0 {
			env = envelope.New().
				Data(result).
				Warning(fmt.Sprintf("%d of %d files failed to download", result.Failed, result.Fetched+result.Failed)).
				Build()
		}
		printResult(env, format)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "human", "Output format: json or human")
}
