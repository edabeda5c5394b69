package main

import (
	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
)

var transformFormat string

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform the fetched schema into a processed document",
	Long: `Transform reads the expanded schema under source_data/, resolves
inheritance and variable mappings, and writes a single processed document
under .modeldocs/processed/. Run 'modeldocs load' afterwards to serve it.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(transformFormat)
		root := mustGetWorkspaceRoot()
		logger := newLogger(transformFormat)
		engine := getEngine(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		result, err := engine.Transform(ctx)
		if err != nil {
			fail(format, err)
		}

		printResult(envelope.Operational(result), format)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringVar(&transformFormat, "format", "human", "Output format: json or human")
}
