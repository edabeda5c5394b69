package main

import (
	"os"

	"github.com/spf13/cobra"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the model's data-quality report",
	Long: `Report lists the structural findings recorded while the model was
built: missing parents, unknown attribute ranges, hierarchy cycles,
unmapped variables. Exits non-zero when error-severity findings exist.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(reportFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(reportFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		result, prov, err := engine.Report(ctx)
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(result, prov, result.Truncation), format)

		if result.Counts.Errors > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: json or human")
}
