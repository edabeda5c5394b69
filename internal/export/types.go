// Package export renders the schema model as a static documentation site,
// a deterministic processed-document dump, or an RDF Turtle graph.
package export

import "fmt"

// Output format names accepted by Export.
const (
	FormatRawMarkdown = "raw-md"
	FormatHugo        = "hugo"
	FormatDocusaurus  = "docusaurus"
	FormatJSON        = "json"
	FormatTurtle      = "ttl"
)

// Formats lists the supported output formats.
var Formats = []string{FormatRawMarkdown, FormatHugo, FormatDocusaurus, FormatJSON, FormatTurtle}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (string, error) {
	for _, f := range Formats {
		if name == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (valid: raw-md, hugo, docusaurus, json, ttl)", name)
}

// Options configures an export run.
type Options struct {
	// Format selects the output format. Empty means raw-md.
	Format string

	// OutDir is the directory the export is written into. It is created if
	// missing; existing files with the same names are overwritten.
	OutDir string
}

// Result summarizes what an export run wrote.
type Result struct {
	Format    string   `json:"format"`
	OutDir    string   `json:"outDir"`
	Files     []string `json:"files"`
	Bytes     int64    `json:"bytes"`
	Generated string   `json:"generated"` // ISO 8601 timestamp
}
