package main

import (
	"github.com/spf13/cobra"
)

var (
	variablesFormat string
	variablesClass  string
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "List harmonized variables",
	Long: `Variables lists the harmonized study variables, each with its label,
data type, unit, and the model class it maps onto. Use --class to limit
the list to variables mapped to one class.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(variablesFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(variablesFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		result, prov, err := engine.Variables(ctx, variablesClass)
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(result, prov, result.Truncation), format)
	},
}

func init() {
	rootCmd.AddCommand(variablesCmd)
	variablesCmd.Flags().StringVar(&variablesFormat, "format", "human", "Output format: json or human")
	variablesCmd.Flags().StringVar(&variablesClass, "class", "", "Only variables mapped to this class")
}
