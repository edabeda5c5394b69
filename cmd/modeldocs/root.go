package main

import (
	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

var workspaceFlag string

var rootCmd = &cobra.Command{
	Use:   "modeldocs",
	Short: "Model variable documentation server",
	Long: `modeldocs serves structured documentation for a harmonized data model:
its classes, slots, enumerations, types, and the study variables mapped
onto them.

Schema sources are fetched into the workspace, transformed into a single
processed document, and answered from memory with provenance attached to
every response. Results are available over the CLI, an HTTP API, and
static site exports.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("modeldocs version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "Workspace root (default: walk up from the current directory)")
}
