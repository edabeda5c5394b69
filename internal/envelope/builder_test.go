package envelope

import (
	"testing"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
)

func TestGenerateConfidenceFactors(t *testing.T) {
	tests := []struct {
		name    string
		prov    *query.Provenance
		wantLen int
		checkFn func(t *testing.T, factors []ConfidenceFactor)
	}{
		{
			name: "snapshot source",
			prov: &query.Provenance{
				Source: query.SourceSnapshot,
			},
			wantLen: 1, // source only, no findings recorded
			checkFn: func(t *testing.T, factors []ConfidenceFactor) {
				if factors[0].Factor != "source" {
					t.Errorf("factor = %s, want source", factors[0].Factor)
				}
				if factors[0].Status != "snapshot" {
					t.Errorf("source status = %s, want snapshot", factors[0].Status)
				}
				if factors[0].Impact != 0.3 {
					t.Errorf("source impact = %f, want 0.3", factors[0].Impact)
				}
			},
		},
		{
			name: "processed source with clean report",
			prov: &query.Provenance{
				Source:   query.SourceProcessed,
				Findings: &query.FindingCounts{},
			},
			wantLen: 2, // source + findings
			checkFn: func(t *testing.T, factors []ConfidenceFactor) {
				for _, f := range factors {
					if f.Factor == "source" {
						if f.Impact != 0.2 {
							t.Errorf("source impact = %f, want 0.2", f.Impact)
						}
					}
					if f.Factor == "findings" {
						if f.Status != "clean" {
							t.Errorf("findings status = %s, want clean", f.Status)
						}
						if f.Impact != 0.0 {
							t.Errorf("findings impact = %f, want 0.0", f.Impact)
						}
					}
				}
			},
		},
		{
			name: "expanded source with errors",
			prov: &query.Provenance{
				Source:   query.SourceExpanded,
				Findings: &query.FindingCounts{Errors: 3, Warnings: 1},
			},
			wantLen: 2,
			checkFn: func(t *testing.T, factors []ConfidenceFactor) {
				for _, f := range factors {
					if f.Factor == "source" {
						if f.Impact != 0.1 {
							t.Errorf("source impact = %f, want 0.1", f.Impact)
						}
					}
					if f.Factor == "findings" {
						if f.Status != "errors" {
							t.Errorf("findings status = %s, want errors", f.Status)
						}
						if f.Impact != -0.2 {
							t.Errorf("findings impact = %f, want -0.2", f.Impact)
						}
					}
				}
			},
		},
		{
			name: "warnings without errors",
			prov: &query.Provenance{
				Source:   query.SourceSnapshot,
				Findings: &query.FindingCounts{Warnings: 4},
			},
			wantLen: 2,
			checkFn: func(t *testing.T, factors []ConfidenceFactor) {
				for _, f := range factors {
					if f.Factor == "findings" {
						if f.Status != "warnings" {
							t.Errorf("findings status = %s, want warnings", f.Status)
						}
						if f.Impact != -0.1 {
							t.Errorf("findings impact = %f, want -0.1", f.Impact)
						}
					}
				}
			},
		},
		{
			name: "unrecognized source",
			prov: &query.Provenance{
				Source: "scratch",
			},
			wantLen: 1,
			checkFn: func(t *testing.T, factors []ConfidenceFactor) {
				if factors[0].Impact != -0.1 {
					t.Errorf("source impact = %f, want -0.1", factors[0].Impact)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factors := generateConfidenceFactors(tt.prov)
			if len(factors) != tt.wantLen {
				t.Errorf("got %d factors, want %d", len(factors), tt.wantLen)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, factors)
			}
		})
	}
}

func TestFromProvenanceWithCacheInfo(t *testing.T) {
	prov := &query.Provenance{
		Source:     query.SourceSnapshot,
		SnapshotID: "snap-7",
		Completeness: query.CompletenessInfo{
			Score:  0.95,
			Reason: "snapshot load",
		},
		CachedAt: "2m30s",
	}

	resp := New().FromProvenance(prov).Build()

	// Check cache info was populated
	if resp.Meta == nil {
		t.Fatal("expected meta to be populated")
	}
	if resp.Meta.Cache == nil {
		t.Fatal("expected cache info to be populated")
	}
	if !resp.Meta.Cache.Hit {
		t.Error("expected cache hit = true")
	}
	if resp.Meta.Cache.Age != "2m30s" {
		t.Errorf("cache age = %s, want 2m30s", resp.Meta.Cache.Age)
	}
}

func TestFromProvenanceWithConfidenceFactors(t *testing.T) {
	prov := &query.Provenance{
		Source: query.SourceSnapshot,
		Completeness: query.CompletenessInfo{
			Score:  0.95,
			Reason: "snapshot load, report clean",
		},
		Findings: &query.FindingCounts{},
	}

	resp := New().FromProvenance(prov).Build()

	// Check confidence factors were populated
	if resp.Meta == nil || resp.Meta.Confidence == nil {
		t.Fatal("expected confidence to be populated")
	}
	if len(resp.Meta.Confidence.Factors) == 0 {
		t.Fatal("expected confidence factors to be populated")
	}

	// Should have 2 factors: source, findings
	if len(resp.Meta.Confidence.Factors) != 2 {
		t.Errorf("got %d factors, want 2", len(resp.Meta.Confidence.Factors))
	}

	// Verify factor names
	factorNames := make(map[string]bool)
	for _, f := range resp.Meta.Confidence.Factors {
		factorNames[f.Factor] = true
	}
	expectedFactors := []string{"source", "findings"}
	for _, name := range expectedFactors {
		if !factorNames[name] {
			t.Errorf("missing factor: %s", name)
		}
	}
}

func TestFromProvenanceNoCacheWhenNotCached(t *testing.T) {
	prov := &query.Provenance{
		Source:     query.SourceProcessed,
		SnapshotID: "",
		Completeness: query.CompletenessInfo{
			Score: 0.95,
		},
		CachedAt: "", // Not cached
	}

	resp := New().FromProvenance(prov).Build()

	// Cache info should not be populated
	if resp.Meta != nil && resp.Meta.Cache != nil {
		t.Error("expected cache info to be nil when not cached")
	}
}
