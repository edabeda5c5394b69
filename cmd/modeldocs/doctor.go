package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/config"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/fetch"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

var doctorFormat string

// Doctor check statuses.
const (
	doctorOK   = "ok"
	doctorWarn = "warn"
	doctorFail = "fail"
)

// DoctorCheckCLI is one environment or data check.
type DoctorCheckCLI struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Fixes   []string `json:"suggestedFixes,omitempty"`
}

// DoctorResponseCLI is the doctor command payload.
type DoctorResponseCLI struct {
	Healthy bool             `json:"healthy"`
	Checks  []DoctorCheckCLI `json:"checks"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose workspace and data problems",
	Long: `Doctor runs environment and data checks: workspace layout, config,
fetched sources, the loadable model, the database, the search index, and
API tokens. Failures come with the command that fixes them. Exits
non-zero when any check fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		format := OutputFormat(doctorFormat)
		root := mustGetWorkspaceRoot()
		logger := newLogger(doctorFormat)

		result := runDoctor(root, logger)

		printResult(envelope.Operational(result), format)
		if !result.Healthy {
			os.Exit(1)
		}
	},
}

func runDoctor(root string, logger *logging.Logger) *DoctorResponseCLI {
	cfg := getConfig(root, logger)
	var checks []DoctorCheckCLI

	// Workspace layout
	if _, err := os.Stat(filepath.Join(root, paths.SourcesFile)); err == nil {
		checks = append(checks, DoctorCheckCLI{Name: "workspace", Status: doctorOK,
			Message: fmt.Sprintf("sources.toml found at %s", root)})
	} else {
		checks = append(checks, DoctorCheckCLI{Name: "workspace", Status: doctorWarn,
			Message: fmt.Sprintf("no sources.toml at %s; the built-in source set applies", root)})
	}

	// Config
	if _, err := os.Stat(paths.ConfigPath(root)); os.IsNotExist(err) {
		checks = append(checks, DoctorCheckCLI{Name: "config", Status: doctorOK,
			Message: "defaults in use (no config.json)"})
	} else if _, err := config.LoadConfig(root); err != nil {
		checks = append(checks, DoctorCheckCLI{Name: "config", Status: doctorFail,
			Message: fmt.Sprintf("config.json unreadable: %v", err)})
	} else {
		checks = append(checks, DoctorCheckCLI{Name: "config", Status: doctorOK,
			Message: "config.json loads"})
	}

	checks = append(checks, checkSourceData(root, cfg))
	checks = append(checks, checkManifest(root))
	checks = append(checks, checkModelAndIndex(root, logger)...)

	resp := &DoctorResponseCLI{Healthy: true, Checks: checks}
	for _, c := range checks {
		if c.Status == doctorFail {
			resp.Healthy = false
			break
		}
	}
	return resp
}

// checkSourceData compares the files the registry declares against what is
// present under source_data/.
func checkSourceData(root string, cfg *config.Config) DoctorCheckCLI {
	registryPath := paths.ResolveInputPath(root, cfg.Sources.RegistryPath, paths.SourcesFile)
	reg, err := fetch.LoadRegistry(registryPath)
	if err != nil {
		return DoctorCheckCLI{Name: "source data", Status: doctorFail,
			Message: fmt.Sprintf("source registry unreadable: %v", err)}
	}

	var expected, present int
	for dep, src := range reg.Sources {
		var names []string
		if src.Repo != "" {
			for _, fp := range src.FilePaths {
				names = append(names, path.Base(fp))
			}
		} else {
			names = append(names, src.FileName)
		}
		for _, name := range names {
			expected++
			if _, err := os.Stat(filepath.Join(paths.SourceDataDir(root), dep, name)); err == nil {
				present++
			}
		}
	}

	switch {
	case expected == 0:
		return DoctorCheckCLI{Name: "source data", Status: doctorFail,
			Message: "registry declares no sources"}
	case present == 0:
		return DoctorCheckCLI{Name: "source data", Status: doctorFail,
			Message: fmt.Sprintf("0 of %d declared files present", expected),
			Fixes:   fixCommands(errors.SourceMissing)}
	case present < expected:
		return DoctorCheckCLI{Name: "source data", Status: doctorWarn,
			Message: fmt.Sprintf("%d of %d declared files present", present, expected),
			Fixes:   fixCommands(errors.SourceMissing)}
	default:
		return DoctorCheckCLI{Name: "source data", Status: doctorOK,
			Message: fmt.Sprintf("%d declared files present", present)}
	}
}

func checkManifest(root string) DoctorCheckCLI {
	manifestPath := paths.ManifestPath(root)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return DoctorCheckCLI{Name: "manifest", Status: doctorWarn,
			Message: "no fetch manifest; provenance digests unavailable",
			Fixes:   fixCommands(errors.SourceMissing)}
	}
	if _, err := fetch.ReadManifest(manifestPath); err != nil {
		return DoctorCheckCLI{Name: "manifest", Status: doctorFail,
			Message: fmt.Sprintf("manifest unreadable: %v", err),
			Fixes:   fixCommands(errors.SourceMissing)}
	}
	return DoctorCheckCLI{Name: "manifest", Status: doctorOK,
		Message: "fetch manifest loads"}
}

func checkModelAndIndex(root string, logger *logging.Logger) []DoctorCheckCLI {
	var checks []DoctorCheckCLI

	ctx, cancel := newContext()
	defer cancel()

	engine := getEngine(root, logger)

	// Model
	if err := engine.EnsureLoaded(ctx); err != nil {
		check := DoctorCheckCLI{Name: "model", Status: doctorFail,
			Message: fmt.Sprintf("model does not load: %v", err)}
		if modelErr, ok := err.(*errors.ModelError); ok {
			check.Fixes = fixCommands(modelErr.Code)
		}
		checks = append(checks, check)
	} else {
		stats := engine.Model().Stats()
		checks = append(checks, DoctorCheckCLI{Name: "model", Status: doctorOK,
			Message: fmt.Sprintf("%s %s loads: %d classes, %d variables",
				stats.SchemaName, stats.SchemaVersion, stats.Classes, stats.Variables)})
		if stats.Findings.Errors > 0 {
			checks = append(checks, DoctorCheckCLI{Name: "data quality", Status: doctorWarn,
				Message: fmt.Sprintf("%d error findings in the model report; see 'modeldocs report'", stats.Findings.Errors)})
		}
	}

	// Database
	if sharedDB == nil {
		checks = append(checks, DoctorCheckCLI{Name: "database", Status: doctorWarn,
			Message: "database unavailable; snapshots, search index, and tokens disabled"})
		return checks
	}
	checks = append(checks, DoctorCheckCLI{Name: "database", Status: doctorOK,
		Message: sharedDB.Path()})

	// Search index vs model
	counts, err := storage.NewElementStore(sharedDB).CountByKind(ctx)
	if err != nil {
		checks = append(checks, DoctorCheckCLI{Name: "search index", Status: doctorWarn,
			Message: fmt.Sprintf("element index unreadable: %v", err)})
	} else {
		var indexed int
		for _, n := range counts {
			indexed += n
		}
		if engine.Loaded() {
			stats := engine.Model().Stats()
			modelTotal := stats.Classes + stats.Slots + stats.SlotOverrides +
				stats.Enums + stats.Types + stats.Variables
			if indexed == modelTotal {
				checks = append(checks, DoctorCheckCLI{Name: "search index", Status: doctorOK,
					Message: fmt.Sprintf("%d elements indexed", indexed)})
			} else {
				checks = append(checks, DoctorCheckCLI{Name: "search index", Status: doctorWarn,
					Message: fmt.Sprintf("index holds %d elements, model has %d", indexed, modelTotal),
					Fixes:   []string{"modeldocs load --rebuild"}})
			}
		} else {
			checks = append(checks, DoctorCheckCLI{Name: "search index", Status: doctorOK,
				Message: fmt.Sprintf("%d elements indexed", indexed)})
		}
	}

	// Tokens
	hasTokens, err := storage.NewTokenStore(sharedDB).HasActiveTokens(ctx)
	switch {
	case err != nil:
		checks = append(checks, DoctorCheckCLI{Name: "tokens", Status: doctorWarn,
			Message: fmt.Sprintf("token store unreadable: %v", err)})
	case hasTokens:
		checks = append(checks, DoctorCheckCLI{Name: "tokens", Status: doctorOK,
			Message: "active API tokens issued"})
	default:
		checks = append(checks, DoctorCheckCLI{Name: "tokens", Status: doctorOK,
			Message: "no tokens issued; mutating endpoints stay closed"})
	}

	return checks
}

// fixCommands flattens suggested fixes to runnable commands for CLI display.
func fixCommands(code errors.ErrorCode) []string {
	var cmds []string
	for _, fix := range errors.GetSuggestedFixes(code) {
		if fix.Command != "" {
			cmds = append(cmds, fix.Command)
		}
	}
	return cmds
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format: json or human")
}
