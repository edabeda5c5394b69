package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// Metadata is the schema header read from the LinkML source YAML. The
// processed document usually carries these already; the YAML fills gaps.
type Metadata struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Prefixes map[string]string `yaml:"prefixes"`
}

// LoadSchemaYAML reads name, version and prefixes from the LinkML source
// schema. Class and slot definitions in the YAML are ignored; the expanded
// JSON is the authority for those.
func LoadSchemaYAML(path string) (*Metadata, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("parse schema yaml %s", path), err, nil, nil)
	}
	return &meta, nil
}

// MergeMetadata fills document header fields from the YAML metadata.
// Values already present in the processed document win.
func MergeMetadata(doc *schema.Document, meta *Metadata) {
	if doc == nil || meta == nil {
		return
	}
	if doc.Name == "" {
		doc.Name = meta.Name
	}
	if doc.Version == "" {
		doc.Version = meta.Version
	}
	if len(meta.Prefixes) > 0 {
		if doc.Prefixes == nil {
			doc.Prefixes = map[string]string{}
		}
		for pfx, uri := range meta.Prefixes {
			if _, ok := doc.Prefixes[pfx]; !ok {
				doc.Prefixes[pfx] = uri
			}
		}
	}
}
