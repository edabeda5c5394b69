package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/export"
)

var (
	exportSiteFormat string
	exportOutDir     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the model as a static documentation site",
	Long: `Export writes the loaded model as static documentation: one page per
element plus index pages, in the chosen site format.

Formats: ` + strings.Join(export.Formats, ", "),
	Run: func(cmd *cobra.Command, args []string) {
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger("human")
		engine := getEngine(workspaceRoot, logger)

		format, err := export.ParseFormat(exportSiteFormat)
		if err != nil {
			fail(FormatHuman, err)
		}

		ctx, cancel := newContext()
		defer cancel()

		if err := engine.EnsureLoaded(ctx); err != nil {
			fail(FormatHuman, err)
		}

		exporter := export.New(engine.Model(), logger)
		result, err := exporter.Export(ctx, export.Options{
			Format: format,
			OutDir: exportOutDir,
		})
		if err != nil {
			fail(FormatHuman, err)
		}

		printResult(envelope.Operational(result), FormatHuman)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportSiteFormat, "format", export.FormatRawMarkdown, "Site format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVar(&exportOutDir, "out", "", "Output directory for the generated site")
	exportCmd.MarkFlagRequired("out")
}
