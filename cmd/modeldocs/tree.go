package main

import (
	"github.com/spf13/cobra"
)

var (
	treeFormat string
	treeFlat   bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Show the class inheritance hierarchy",
	Long: `Tree prints the class inheritance forest, or the subtree under the
named root class. Depth is capped by the configured budget; use --flat
for an indented list instead of nested JSON.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(treeFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(treeFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		var rootClass string
		if len(args) > 0 {
			rootClass = args[0]
		}

		if treeFlat {
			result, prov, err := engine.Flat(ctx, rootClass)
			if err != nil {
				fail(format, err)
			}
			printResult(queryEnvelope(result, prov, result.Truncation), format)
			return
		}

		result, prov, err := engine.Tree(ctx, rootClass)
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(result, prov, result.Truncation), format)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVar(&treeFormat, "format", "human", "Output format: json or human")
	treeCmd.Flags().BoolVar(&treeFlat, "flat", false, "Flatten the hierarchy to an indented list")
}
