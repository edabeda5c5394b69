package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchFormat string
	searchKinds  string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search model elements by name and description",
	Long: `Search runs a ranked full-text query over element names, descriptions,
and variable labels. The SQLite FTS index is used when available, with an
in-memory scan as fallback; the response names which backend answered.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(searchFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(searchFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		var kinds []string
		if searchKinds != "" {
			for _, k := range strings.Split(searchKinds, ",") {
				if k = strings.TrimSpace(k); k != "" {
					kinds = append(kinds, k)
				}
			}
		}

		result, prov, err := engine.Search(ctx, args[0], kinds, searchLimit)
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(result, prov, nil), format)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format: json or human")
	searchCmd.Flags().StringVar(&searchKinds, "kinds", "", "Comma-separated element kinds to search (class,slot,enum,type,variable)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum hits to return (default from config)")
}
