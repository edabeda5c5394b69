package main

import (
	"github.com/spf13/cobra"
)

var describeFormat string

var describeCmd = &cobra.Command{
	Use:   "describe <element>",
	Short: "Show the full detail view of one element",
	Long: `Describe resolves an element reference (class:Specimen, slot:id,
enum:SpecimenTypeEnum, or a bare name) and prints its detail view:
description, attributes, permissible values, and mapped variables.

Human output is rendered as markdown in the terminal.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(describeFormat)
		workspaceRoot := mustGetWorkspaceRoot()
		logger := newLogger(describeFormat)
		engine := getEngine(workspaceRoot, logger)

		ctx, cancel := newContext()
		defer cancel()

		detail, prov, err := engine.Describe(ctx, args[0])
		if err != nil {
			fail(format, err)
		}
		printResult(queryEnvelope(detail, prov, nil), format)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&describeFormat, "format", "human", "Output format: json or human")
}
