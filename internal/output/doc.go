// Package output provides deterministic sorting and encoding for modeldocs responses.
//
// Identical queries against the same model must produce byte-identical JSON.
// This enables:
//   - Reliable caching with content-based keys
//   - Snapshot testing without false positives
//   - Reproducible exports for diffing generated documentation
//
// # Ordering Contract
//
// All arrays are deterministically sorted:
//
//   - elements: kind priority (class, enum, slot, type, variable) → name ASC
//   - usages: role priority (parent, attribute, range, override, mapping) → sourceId ASC → detail ASC
//   - search hits: score DESC → id ASC
//   - variables: mappedClass ASC → label ASC → name ASC
//   - findings: severity priority (error, warning, info) → code ASC → elementId ASC
//   - warnings: severity priority → text ASC
//
// # JSON Encoding Rules
//
// The DeterministicEncode function produces byte-identical outputs by:
//
//  1. Stable key ordering: Object keys are sorted alphabetically
//  2. Float formatting: Rounded to max 6 decimal places, no trailing zeros
//  3. Null handling: Nil/undefined fields are omitted entirely
//  4. Timestamps: Only in meta blocks, excluded from snapshot tests
//
// # Snapshot Testing
//
// The package provides tools for comparing responses in tests while excluding
// time-varying fields:
//
//   - meta.provenance.loadedAt
//   - meta.freshness.snapshotAge
//   - meta.cache.age
//
// # Usage Example
//
//	rows := []output.ElementRow{
//	    {ID: "enum:SpecimenTypeEnum", Kind: "enum", Name: "SpecimenTypeEnum"},
//	    {ID: "class:Specimen", Kind: "class", Name: "Specimen"},
//	}
//
//	// Sort deterministically
//	output.SortElements(rows)
//
//	// Encode deterministically
//	jsonBytes, err := output.DeterministicEncode(rows)
//
//	// Same input will always produce identical bytes
//	jsonBytes2, _ := output.DeterministicEncode(rows)
//	// bytes.Equal(jsonBytes, jsonBytes2) == true
package output
