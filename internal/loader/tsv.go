package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// headerAliases maps normalized sheet column names onto variable fields.
// Sheet exports have drifted over time; every historical name is accepted.
var headerAliases = map[string]string{
	"variable_name":        "name",
	"name":                 "name",
	"variable_label":       "label",
	"label":                "label",
	"mapped_class":         "class",
	"bdchm_class":          "class",
	"class":                "class",
	"entity":               "class",
	"data_type":            "dataType",
	"type":                 "dataType",
	"unit":                 "unit",
	"unit_of_measure":      "unit",
	"units":                "unit",
	"curie":                "curie",
	"code":                 "curie",
	"description":          "description",
	"variable_description": "description",
}

// LoadVariablesTSV reads a variable specification sheet export.
func LoadVariablesTSV(path string) ([]*schema.Variable, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	vars, err := ParseVariablesTSV(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewModelError(errors.ParseFailed,
			fmt.Sprintf("parse variables tsv %s", path), err, nil, nil)
	}
	return vars, nil
}

// ParseVariablesTSV decodes tab-separated variable rows. The first row is
// the header; column names are normalized and matched against the known
// aliases. Unknown columns are ignored, blank rows skipped. A UTF-8 BOM
// and CRLF line endings are tolerated.
func ParseVariablesTSV(r io.Reader) ([]*schema.Variable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	fields := make([]string, len(header))
	known := 0
	for i, col := range header {
		if field, ok := headerAliases[normalizeHeader(col)]; ok {
			fields[i] = field
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("no recognized columns in header %v", header)
	}

	var vars []*schema.Variable
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		v := &schema.Variable{}
		for i, cell := range record {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			switch fields[i] {
			case "name":
				v.Name = value
			case "label":
				v.Label = value
			case "class":
				v.Class = value
			case "dataType":
				v.DataType = value
			case "unit":
				v.Unit = value
			case "curie":
				v.CURIE = value
			case "description":
				v.Description = value
			}
		}
		if v.Name == "" && v.Label == "" {
			continue
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func normalizeHeader(col string) string {
	col = strings.TrimSpace(strings.ToLower(col))
	col = strings.ReplaceAll(col, " ", "_")
	col = strings.ReplaceAll(col, "-", "_")
	return col
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
