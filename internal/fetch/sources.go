package fetch

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
)

// Source declares one upstream dependency. Repo sources name a GitHub
// repository pinned to a commit plus the files to pull; sheet sources name
// a Google Sheets document exported as TSV.
type Source struct {
	Repo      string   `toml:"repo"`
	Commit    string   `toml:"commit"`
	FilePaths []string `toml:"file_paths"`

	SheetURL string `toml:"sheet_url"`
	FileName string `toml:"file_name"`
}

// Registry is the decoded sources.toml.
type Registry struct {
	Sources map[string]Source `toml:"sources"`
}

// DefaultRegistry returns the built-in source set: the BDCHM harmonized
// model repo and the variable specification sheet.
func DefaultRegistry() *Registry {
	return &Registry{
		Sources: map[string]Source{
			"HM": {
				Repo:   "RTIInternational/NHLBI-BDC-DMC-HM",
				Commit: "0e7a22c",
				FilePaths: []string{
					"src/bdchm/schema/bdchm.yaml",
					"generated/bdchm.schema.json",
				},
			},
			"HV": {
				SheetURL: "https://docs.google.com/spreadsheets/d/1PDaX266_H0haa0aabMYQ6UNtEKT5-ClMarP0FvNntN8/edit?gid=0#gid=0",
				FileName: "variable-specs-S1.tsv",
			},
		},
	}
}

// LoadRegistry reads sources.toml from path. A missing file yields the
// built-in defaults so fetch works without configuration.
func LoadRegistry(path string) (*Registry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultRegistry(), nil
	}

	var reg Registry
	if _, err := toml.DecodeFile(path, &reg); err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("parse source registry %s", path), err, nil, nil)
	}
	if err := reg.Validate(); err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("invalid source registry %s", path), err, nil, nil)
	}
	return &reg, nil
}

// Validate checks that every source is exactly one of the two shapes.
func (r *Registry) Validate() error {
	if len(r.Sources) == 0 {
		return fmt.Errorf("no sources declared")
	}
	for name, src := range r.Sources {
		isRepo := src.Repo != ""
		isSheet := src.SheetURL != ""
		switch {
		case isRepo && isSheet:
			return fmt.Errorf("source %q declares both repo and sheet_url", name)
		case isRepo:
			if src.Commit == "" {
				return fmt.Errorf("source %q has no commit pin", name)
			}
			if len(src.FilePaths) == 0 {
				return fmt.Errorf("source %q has no file_paths", name)
			}
		case isSheet:
			if src.FileName == "" {
				return fmt.Errorf("source %q has no file_name", name)
			}
			if _, err := sheetExportURL(src.SheetURL); err != nil {
				return fmt.Errorf("source %q: %w", name, err)
			}
		default:
			return fmt.Errorf("source %q declares neither repo nor sheet_url", name)
		}
	}
	return nil
}

// sheetExportURL derives the TSV export URL from a Google Sheets edit URL.
// The gid is taken from the query or the fragment, defaulting to 0.
func sheetExportURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse sheet url: %w", err)
	}

	parts := strings.Split(u.Path, "/")
	id := ""
	for i, part := range parts {
		if part == "d" && i+1 < len(parts) {
			id = parts[i+1]
			break
		}
	}
	if id == "" {
		return "", fmt.Errorf("sheet url %q has no document id", raw)
	}

	gid := u.Query().Get("gid")
	if gid == "" && strings.HasPrefix(u.Fragment, "gid=") {
		gid = strings.TrimPrefix(u.Fragment, "gid=")
	}
	if gid == "" {
		gid = "0"
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=tsv&gid=%s", id, gid), nil
}

func sortedSourceNames(sources map[string]Source) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
