package schema

import (
	"fmt"
	"strings"
)

// ElementKind identifies which namespace a schema element lives in.
type ElementKind string

const (
	KindClass    ElementKind = "class"
	KindEnum     ElementKind = "enum"
	KindSlot     ElementKind = "slot"
	KindType     ElementKind = "type"
	KindVariable ElementKind = "variable"
)

// AllKinds lists the element kinds in cross-kind resolution order.
// Bare names are resolved class first, variable last.
var AllKinds = []ElementKind{KindClass, KindEnum, KindSlot, KindType, KindVariable}

// ParseKind converts a user-supplied kind name to an ElementKind.
// Accepts singular and plural forms, case-insensitive.
func ParseKind(name string) (ElementKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "class", "classes":
		return KindClass, nil
	case "enum", "enums", "enumeration", "enumerations":
		return KindEnum, nil
	case "slot", "slots", "attribute", "attributes":
		return KindSlot, nil
	case "type", "types":
		return KindType, nil
	case "variable", "variables":
		return KindVariable, nil
	}
	return "", fmt.Errorf("unknown element kind %q (valid: class, enum, slot, type, variable)", name)
}

// ElementIDFor builds the canonical element ID for a kind and a bare
// in-namespace identifier, e.g. ("class", "Specimen") -> "class:Specimen".
func ElementIDFor(kind ElementKind, id string) string {
	return string(kind) + ":" + id
}

// ParseElementID splits a canonical element ID into kind and bare identifier.
// Returns ok=false for bare names without a kind prefix.
func ParseElementID(ref string) (ElementKind, string, bool) {
	idx := strings.Index(ref, ":")
	if idx < 0 {
		return "", ref, false
	}
	kind, err := ParseKind(ref[:idx])
	if err != nil {
		return "", ref, false
	}
	return kind, ref[idx+1:], true
}

// linkmlPrimitives are the LinkML builtin types that resolve as slot ranges
// without a schema entry.
var linkmlPrimitives = map[string]bool{
	"string":     true,
	"integer":    true,
	"boolean":    true,
	"float":      true,
	"double":     true,
	"decimal":    true,
	"date":       true,
	"datetime":   true,
	"time":       true,
	"uri":        true,
	"uriorcurie": true,
	"curie":      true,
	"ncname":     true,
}

// IsPrimitive reports whether name is a LinkML builtin type.
func IsPrimitive(name string) bool {
	return linkmlPrimitives[name]
}
