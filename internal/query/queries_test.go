package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/config"
	mderrors "github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// newLoadedEngine loads the fixture with a real database behind it.
func newLoadedEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	writeProcessedFile(t, root, testDocument())
	e := newTestEngine(t, root)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return e
}

// newMemoryEngine loads the fixture without storage.
func newMemoryEngine(t *testing.T, mutate func(*config.Config)) *Engine {
	t.Helper()
	root := t.TempDir()
	writeProcessedFile(t, root, testDocument())
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e := NewEngine(Options{WorkspaceRoot: root, Config: cfg, Logger: logging.Discard()})
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return e
}

func TestDescribeResolution(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		id   string
		kind schema.ElementKind
	}{
		{"bare class name", "Specimen", "class:Specimen", schema.KindClass},
		{"canonical enum ref", "enum:SpecimenTypeEnum", "enum:SpecimenTypeEnum", schema.KindEnum},
		{"bare slot name", "specimen_type", "slot:specimen_type", schema.KindSlot},
		{"bare type name", "crdc_id", "type:crdc_id", schema.KindType},
		{"raw variable name", "SPECIMEN_TYPE", "variable:specimen_type", schema.KindVariable},
		{"unnormalized canonical variable", "variable:AGE_AT_ENROLLMENT", "variable:age_at_enrollment", schema.KindVariable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, prov, err := e.Describe(ctx, tt.ref)
			if err != nil {
				t.Fatalf("Describe(%q) error: %v", tt.ref, err)
			}
			if detail.ID != tt.id {
				t.Errorf("ID = %q, want %q", detail.ID, tt.id)
			}
			if detail.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", detail.Kind, tt.kind)
			}
			if prov == nil || prov.Source == "" {
				t.Error("provenance missing")
			}
		})
	}
}

func TestDescribeNotFound(t *testing.T) {
	e := newMemoryEngine(t, nil)

	_, _, err := e.Describe(context.Background(), "Specime")
	if err == nil {
		t.Fatal("Describe(unknown) succeeded")
	}
	var me *mderrors.ModelError
	if !errors.As(err, &me) {
		t.Fatalf("error type = %T", err)
	}
	if me.Code != mderrors.ElementNotFound {
		t.Errorf("Code = %s, want %s", me.Code, mderrors.ElementNotFound)
	}
	if len(me.Drilldowns) == 0 {
		t.Fatal("no drilldowns on not-found error")
	}
	if max := config.DefaultConfig().Budget.MaxDrilldowns; len(me.Drilldowns) > max {
		t.Errorf("drilldowns = %d, over budget %d", len(me.Drilldowns), max)
	}
	last := me.Drilldowns[len(me.Drilldowns)-1]
	if last.Query != "search Specime" {
		t.Errorf("fallback drilldown query = %q", last.Query)
	}
	// Near-matches by prefix should be suggested ahead of the search escape.
	if !strings.HasPrefix(me.Drilldowns[0].Query, "describe ") {
		t.Errorf("first drilldown = %+v, want a describe suggestion", me.Drilldowns[0])
	}
}

func TestUsage(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	res, _, err := e.Usage(ctx, "Entity")
	if err != nil {
		t.Fatalf("Usage() error: %v", err)
	}
	if res.ID != "class:Entity" || res.Kind != "class" {
		t.Errorf("identity = %s/%s", res.ID, res.Kind)
	}
	var parents []string
	for _, u := range res.Usages {
		if u.Role == schema.RoleParent {
			parents = append(parents, u.Name)
		}
	}
	if len(parents) != 2 || parents[0] != "Participant" || parents[1] != "Specimen" {
		t.Errorf("parent usages = %v, want [Participant Specimen]", parents)
	}

	enumRes, _, err := e.Usage(ctx, "SpecimenTypeEnum")
	if err != nil {
		t.Fatalf("Usage(enum) error: %v", err)
	}
	foundRange := false
	for _, u := range enumRes.Usages {
		if u.Role == schema.RoleRange {
			foundRange = true
		}
	}
	if !foundRange {
		t.Errorf("enum usages = %+v, want a range role", enumRes.Usages)
	}
}

func TestUsageTruncation(t *testing.T) {
	e := newMemoryEngine(t, func(cfg *config.Config) {
		cfg.Budget.MaxResults = 1
	})

	res, _, err := e.Usage(context.Background(), "Entity")
	if err != nil {
		t.Fatalf("Usage() error: %v", err)
	}
	if len(res.Usages) != 1 {
		t.Fatalf("usages shown = %d, want 1", len(res.Usages))
	}
	if res.Truncation == nil || res.Truncation.Shown != 1 || res.Truncation.Total < 2 {
		t.Errorf("truncation = %+v", res.Truncation)
	}
}

func TestTree(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	res, _, err := e.Tree(ctx, "")
	if err != nil {
		t.Fatalf("Tree() error: %v", err)
	}
	if len(res.Roots) != 1 || res.Roots[0].Class.Name != "Entity" {
		t.Fatalf("roots = %+v", res.Roots)
	}
	if res.Truncation != nil {
		t.Errorf("unexpected truncation: %+v", res.Truncation)
	}

	sub, _, err := e.Tree(ctx, "Participant")
	if err != nil {
		t.Fatalf("Tree(Participant) error: %v", err)
	}
	if len(sub.Roots) != 1 || sub.Roots[0].Class.Name != "Participant" {
		t.Fatalf("subtree roots = %+v", sub.Roots)
	}
	if len(sub.Roots[0].Children) != 1 || sub.Roots[0].Children[0].Class.Name != "Demography" {
		t.Errorf("subtree children = %+v", sub.Roots[0].Children)
	}

	_, _, err = e.Tree(ctx, "Ghost")
	var me *mderrors.ModelError
	if !errors.As(err, &me) || me.Code != mderrors.ElementNotFound {
		t.Errorf("Tree(Ghost) error = %v, want ELEMENT_NOT_FOUND", err)
	}
}

func TestTreeDepthBudget(t *testing.T) {
	e := newMemoryEngine(t, func(cfg *config.Config) {
		cfg.Budget.MaxTreeDepth = 2
	})

	res, _, err := e.Tree(context.Background(), "")
	if err != nil {
		t.Fatalf("Tree() error: %v", err)
	}
	if res.Truncation == nil {
		t.Fatal("expected depth truncation")
	}
	// Demography sits at depth 2 and must be cut.
	if res.Truncation.Shown != 3 || res.Truncation.Total != 4 {
		t.Errorf("truncation = %+v, want shown 3 of 4", res.Truncation)
	}
	for _, child := range res.Roots[0].Children {
		if len(child.Children) != 0 {
			t.Errorf("depth-2 nodes survived pruning: %+v", child)
		}
	}
}

func TestFlat(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	res, _, err := e.Flat(ctx, "")
	if err != nil {
		t.Fatalf("Flat() error: %v", err)
	}
	if len(res.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(res.Nodes))
	}
	if res.Nodes[0].Name != "Entity" || res.Nodes[0].Depth != 0 {
		t.Errorf("first node = %+v", res.Nodes[0])
	}
	// Pre-order: Participant is visited before its child Demography.
	names := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	if names[1] != "Participant" || names[2] != "Demography" || names[3] != "Specimen" {
		t.Errorf("order = %v", names)
	}

	sub, _, err := e.Flat(ctx, "Participant")
	if err != nil {
		t.Fatalf("Flat(Participant) error: %v", err)
	}
	if len(sub.Nodes) != 2 || sub.Nodes[0].Depth != 0 {
		t.Errorf("subtree nodes = %+v", sub.Nodes)
	}
}

func TestFlatBudgets(t *testing.T) {
	t.Run("row cap", func(t *testing.T) {
		e := newMemoryEngine(t, func(cfg *config.Config) {
			cfg.Budget.MaxResults = 2
		})
		res, _, err := e.Flat(context.Background(), "")
		if err != nil {
			t.Fatalf("Flat() error: %v", err)
		}
		if len(res.Nodes) != 2 || res.Truncation == nil || res.Truncation.Total != 4 {
			t.Errorf("nodes = %d truncation = %+v", len(res.Nodes), res.Truncation)
		}
	})

	t.Run("depth cap", func(t *testing.T) {
		e := newMemoryEngine(t, func(cfg *config.Config) {
			cfg.Budget.MaxTreeDepth = 1
		})
		res, _, err := e.Flat(context.Background(), "")
		if err != nil {
			t.Fatalf("Flat() error: %v", err)
		}
		if len(res.Nodes) != 1 || res.Nodes[0].Name != "Entity" {
			t.Errorf("nodes = %+v", res.Nodes)
		}
		if res.Truncation == nil || !strings.Contains(res.Truncation.Reason, "depth") {
			t.Errorf("truncation = %+v", res.Truncation)
		}
	})
}

func TestSearchFTS(t *testing.T) {
	e := newLoadedEngine(t)
	ctx := context.Background()

	res, prov, err := e.Search(ctx, "specimen", nil, 0)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Backend != "fts" {
		t.Fatalf("Backend = %q, want fts", res.Backend)
	}
	if len(prov.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", prov.Warnings)
	}
	found := false
	for _, h := range res.Hits {
		if h.ID == "class:Specimen" {
			found = true
			if h.Score != 1.0 {
				t.Errorf("exact hit score = %v", h.Score)
			}
		}
	}
	if !found {
		t.Errorf("class:Specimen not in hits: %+v", res.Hits)
	}

	filtered, _, err := e.Search(ctx, "specimen", []string{"enums"}, 0)
	if err != nil {
		t.Fatalf("Search(kinds) error: %v", err)
	}
	for _, h := range filtered.Hits {
		if h.Kind != "enum" {
			t.Errorf("kind filter leaked %s", h.ID)
		}
	}
}

func TestSearchMemoryBackend(t *testing.T) {
	e := newMemoryEngine(t, nil)

	res, _, err := e.Search(context.Background(), "specimen", nil, 0)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Backend != "memory" {
		t.Fatalf("Backend = %q, want memory", res.Backend)
	}
	if len(res.Hits) == 0 || res.Hits[0].ID != "class:Specimen" || res.Hits[0].Score != 1.0 {
		t.Errorf("hits = %+v, want exact class:Specimen first", res.Hits)
	}

	// Override instances are searchable even though flat listings hide them.
	found := false
	for _, h := range res.Hits {
		if h.ID == "slot:specimen_type-Specimen" {
			found = true
		}
	}
	if !found {
		t.Errorf("override instance absent from hits: %+v", res.Hits)
	}
}

func TestSearchFallsBackWhenIndexFails(t *testing.T) {
	e := newLoadedEngine(t)
	// Kill the database under the index: the engine must degrade, not fail.
	e.db.Close()

	res, prov, err := e.Search(context.Background(), "specimen", nil, 0)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Backend != "memory" {
		t.Errorf("Backend = %q, want memory fallback", res.Backend)
	}
	if len(prov.Warnings) == 0 {
		t.Error("no warning recorded for index failure")
	}
	if len(res.Hits) == 0 {
		t.Error("fallback returned no hits")
	}
}

func TestSearchInvalidKind(t *testing.T) {
	e := newMemoryEngine(t, nil)
	_, _, err := e.Search(context.Background(), "x", []string{"widget"}, 0)
	var me *mderrors.ModelError
	if !errors.As(err, &me) || me.Code != mderrors.KindInvalid {
		t.Errorf("error = %v, want KIND_INVALID", err)
	}
}

func TestSearchLimitCap(t *testing.T) {
	e := newMemoryEngine(t, func(cfg *config.Config) {
		cfg.Search.MaxLimit = 2
	})
	res, _, err := e.Search(context.Background(), "e", nil, 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(res.Hits) > 2 {
		t.Errorf("hits = %d, want at most MaxLimit 2", len(res.Hits))
	}
}

func TestVariables(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	all, _, err := e.Variables(ctx, "")
	if err != nil {
		t.Fatalf("Variables() error: %v", err)
	}
	if len(all.Variables) != 2 {
		t.Fatalf("variables = %d, want 2", len(all.Variables))
	}

	spec, _, err := e.Variables(ctx, "Specimen")
	if err != nil {
		t.Fatalf("Variables(Specimen) error: %v", err)
	}
	if len(spec.Variables) != 1 || spec.Variables[0].Name != "SPECIMEN_TYPE" {
		t.Errorf("variables for Specimen = %+v", spec.Variables)
	}
	if spec.Variables[0].MappedClass != "Specimen" || spec.Variables[0].Label != "Specimen type" {
		t.Errorf("row fields = %+v", spec.Variables[0])
	}

	_, _, err = e.Variables(ctx, "Ghost")
	var me *mderrors.ModelError
	if !errors.As(err, &me) || me.Code != mderrors.ElementNotFound {
		t.Errorf("Variables(Ghost) error = %v, want ELEMENT_NOT_FOUND", err)
	}
}

func TestElements(t *testing.T) {
	e := newMemoryEngine(t, nil)
	ctx := context.Background()

	all, _, err := e.Elements(ctx, "", 0)
	if err != nil {
		t.Fatalf("Elements() error: %v", err)
	}
	// 4 classes + 1 enum + 2 slots + 1 type + 2 variables. Override
	// instances stay out of flat listings.
	if len(all.Elements) != 10 {
		t.Fatalf("elements = %d, want 10", len(all.Elements))
	}
	byID := map[string]int{}
	for i, row := range all.Elements {
		byID[row.ID] = i
	}
	if idx, ok := byID["class:Specimen"]; !ok {
		t.Error("class:Specimen missing")
	} else if all.Elements[idx].Parent != "class:Entity" {
		t.Errorf("Specimen parent = %q", all.Elements[idx].Parent)
	}
	if _, ok := byID["slot:specimen_type-Specimen"]; ok {
		t.Error("override instance leaked into the flat listing")
	}
	if _, ok := byID["slot:specimen_type"]; !ok {
		t.Error("base slot missing")
	}

	enums, _, err := e.Elements(ctx, "enums", 0)
	if err != nil {
		t.Fatalf("Elements(enums) error: %v", err)
	}
	if enums.Kind != "enum" || len(enums.Elements) != 1 {
		t.Errorf("enums = %+v", enums)
	}

	capped, _, err := e.Elements(ctx, "", 3)
	if err != nil {
		t.Fatalf("Elements(limit) error: %v", err)
	}
	if len(capped.Elements) != 3 || capped.Truncation == nil || capped.Truncation.Total != 10 {
		t.Errorf("capped = %d truncation = %+v", len(capped.Elements), capped.Truncation)
	}

	_, _, err = e.Elements(ctx, "widget", 0)
	var me *mderrors.ModelError
	if !errors.As(err, &me) || me.Code != mderrors.KindInvalid {
		t.Errorf("Elements(widget) error = %v, want KIND_INVALID", err)
	}
}

func TestReport(t *testing.T) {
	t.Run("clean model", func(t *testing.T) {
		e := newMemoryEngine(t, nil)
		res, _, err := e.Report(context.Background())
		if err != nil {
			t.Fatalf("Report() error: %v", err)
		}
		if !res.Clean || len(res.Findings) != 0 {
			t.Errorf("report = %+v, want clean", res)
		}
	})

	t.Run("orphan class warning", func(t *testing.T) {
		root := t.TempDir()
		doc := testDocument()
		doc.Classes["Orphan"] = &schema.Class{ID: "Orphan", Name: "Orphan", Parent: "Ghost"}
		writeProcessedFile(t, root, doc)
		e := NewEngine(Options{WorkspaceRoot: root, Logger: logging.Discard()})

		res, _, err := e.Report(context.Background())
		if err != nil {
			t.Fatalf("Report() error: %v", err)
		}
		if res.Clean {
			t.Error("report clean despite orphan class")
		}
		if res.Counts.Warnings != 1 || len(res.Findings) != 1 {
			t.Errorf("counts = %+v findings = %+v", res.Counts, res.Findings)
		}
		if res.Findings[0].Code != schema.FindingMissingParent {
			t.Errorf("finding code = %q", res.Findings[0].Code)
		}
	})
}

func TestStats(t *testing.T) {
	e := newMemoryEngine(t, nil)
	stats, prov, err := e.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Classes != 4 || stats.Slots != 2 || stats.SlotOverrides != 1 ||
		stats.Enums != 1 || stats.Types != 1 || stats.Variables != 2 || stats.Roots != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if prov.QueryDurationMs < 0 {
		t.Errorf("QueryDurationMs = %d", prov.QueryDurationMs)
	}
}
