package main

import (
	"github.com/spf13/cobra"
)

var usageFormat string

var usageCmd = &cobra.Command{
	Use:   "usage <element>",
	Short: "Show everything that references an element",
	Long: `Usage lists every inbound reference to an element: subclasses, classes
using it as an attribute range, slot overrides, and variable mappings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(usageFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(usageFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		result, prov, err := engine.Usage(ctx, args[0])
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(result, prov, result.Truncation), format)
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().StringVar(&usageFormat, "format", "human", "Output format: json or human")
}
