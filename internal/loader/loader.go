// Package loader reads the schema and variable source files: processed
// schema JSON, expanded gen-linkml JSON for the transform stage, the LinkML
// source YAML for header metadata, and the variable specification TSV.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/transform"
)

// LoadProcessed reads a processed schema document from disk.
func LoadProcessed(path string) (*schema.Document, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseProcessed(data)
	if err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("parse processed schema %s", path), err, nil, nil)
	}
	return doc, nil
}

// ParseProcessed decodes a processed schema document.
func ParseProcessed(data []byte) (*schema.Document, error) {
	var doc schema.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadExpanded reads an expanded gen-linkml schema document for the
// transform stage.
func LoadExpanded(path string) (*transform.Expanded, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	var exp transform.Expanded
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("parse expanded schema %s", path), err, nil, nil)
	}
	return &exp, nil
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewModelError(errors.SourceMissing,
				fmt.Sprintf("source file not found: %s", path), err,
				errors.GetSuggestedFixes(errors.SourceMissing), nil)
		}
		return nil, errors.NewModelError(errors.SourceMissing,
			fmt.Sprintf("read source file %s", path), err, nil, nil)
	}
	return data, nil
}
