package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/output"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// UsageResult lists every inbound reference to one element.
type UsageResult struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Usages     []schema.Usage `json:"usages"`
	Truncation *Truncation    `json:"truncation,omitempty"`
}

// TreeResult is the class inheritance forest, possibly depth-capped.
type TreeResult struct {
	Roots      []*schema.ClassNode `json:"roots"`
	Truncation *Truncation         `json:"truncation,omitempty"`
}

// FlatResult is the pre-order flattened hierarchy.
type FlatResult struct {
	Nodes      []schema.FlatNode `json:"nodes"`
	Truncation *Truncation       `json:"truncation,omitempty"`
}

// SearchResponse carries ranked hits plus which backend produced them.
type SearchResponse struct {
	Query   string             `json:"query"`
	Backend string             `json:"backend"`
	Hits    []output.SearchHit `json:"hits"`
}

// VariablesResult lists harmonized variables, optionally for one class.
type VariablesResult struct {
	Class      string               `json:"class,omitempty"`
	Variables  []output.VariableRow `json:"variables"`
	Truncation *Truncation          `json:"truncation,omitempty"`
}

// ElementsResult lists elements of one kind, or all kinds.
type ElementsResult struct {
	Kind       string              `json:"kind,omitempty"`
	Elements   []output.ElementRow `json:"elements"`
	Truncation *Truncation         `json:"truncation,omitempty"`
}

// ReportResult is the data-quality report.
type ReportResult struct {
	Clean      bool                `json:"clean"`
	Counts     schema.ReportCounts `json:"counts"`
	Findings   []output.Finding    `json:"findings"`
	Truncation *Truncation         `json:"truncation,omitempty"`
}

// Describe resolves an element reference and returns its detail view.
// Bare names resolve across kinds (class first, variable last).
func (e *Engine) Describe(ctx context.Context, ref string) (*schema.Detail, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	el, ok := resolveElement(m, ref)
	if !ok {
		return nil, nil, e.notFound(m, ref)
	}

	return el.Detail(m), stampProvenance(base, start), nil
}

// Usage answers "what uses this element".
func (e *Engine) Usage(ctx context.Context, ref string) (*UsageResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	el, ok := resolveElement(m, ref)
	if !ok {
		return nil, nil, e.notFound(m, ref)
	}

	usages := m.UsageOf(el.ElementID())
	res := &UsageResult{
		ID:     el.ElementID(),
		Name:   el.ElementName(),
		Kind:   string(el.ElementKind()),
		Usages: usages,
	}
	if max := e.config.Budget.MaxResults; max > 0 && len(usages) > max {
		res.Usages = usages[:max]
		res.Truncation = &Truncation{
			Shown:  max,
			Total:  len(usages),
			Reason: fmt.Sprintf("usage list capped at %d", max),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Tree returns the inheritance forest, or the subtree under root when given.
// Subtrees deeper than the configured budget are cut and reported.
func (e *Engine) Tree(ctx context.Context, root string) (*TreeResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	var roots []*schema.ClassNode
	if root == "" {
		roots = m.Tree()
	} else {
		node := m.Subtree(root)
		if node == nil {
			return nil, nil, e.notFound(m, root)
		}
		roots = []*schema.ClassNode{node}
	}

	res := &TreeResult{Roots: roots}
	if maxDepth := e.config.Budget.MaxTreeDepth; maxDepth > 0 && forestExceedsDepth(roots, maxDepth) {
		total := 0
		for _, n := range roots {
			total += countNodes(n)
		}
		pruned := make([]*schema.ClassNode, 0, len(roots))
		shown := 0
		for _, n := range roots {
			p := pruneNode(n, maxDepth)
			shown += countNodes(p)
			pruned = append(pruned, p)
		}
		res.Roots = pruned
		res.Truncation = &Truncation{
			Shown:  shown,
			Total:  total,
			Reason: fmt.Sprintf("tree depth capped at %d", maxDepth),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Flat returns the pre-order flattened hierarchy, budget-capped by depth and
// row count.
func (e *Engine) Flat(ctx context.Context, root string) (*FlatResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	var nodes []schema.FlatNode
	if root == "" {
		nodes = m.Flatten()
	} else {
		if _, ok := m.Class(root); !ok {
			return nil, nil, e.notFound(m, root)
		}
		nodes = m.FlattenFrom(root)
	}

	total := len(nodes)
	var reasons []string

	if maxDepth := e.config.Budget.MaxTreeDepth; maxDepth > 0 {
		kept := nodes[:0]
		for _, n := range nodes {
			if n.Depth < maxDepth {
				kept = append(kept, n)
			}
		}
		if len(kept) < len(nodes) {
			reasons = append(reasons, fmt.Sprintf("tree depth capped at %d", maxDepth))
		}
		nodes = kept
	}
	if max := e.config.Budget.MaxResults; max > 0 && len(nodes) > max {
		nodes = nodes[:max]
		reasons = append(reasons, fmt.Sprintf("rows capped at %d", max))
	}

	res := &FlatResult{Nodes: nodes}
	if len(reasons) > 0 {
		res.Truncation = &Truncation{
			Shown:  len(nodes),
			Total:  total,
			Reason: strings.Join(reasons, "; "),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Search runs full-text search over the element index, falling back to an
// in-memory scan when the index is unavailable.
func (e *Engine) Search(ctx context.Context, q string, kinds []string, limit int) (*SearchResponse, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	normKinds, err := normalizeKinds(kinds)
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 {
		limit = e.config.Search.DefaultLimit
	}
	if max := e.config.Search.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	q = strings.TrimSpace(q)
	backend := "memory"
	var hits []output.SearchHit
	var warnings []string

	if e.search != nil && e.config.Search.Enabled {
		results, err := e.search.Search(ctx, q, normKinds, limit)
		if err != nil {
			e.logger.Warn("Search index query failed", map[string]interface{}{
				"query": q,
				"error": err.Error(),
			})
			warnings = append(warnings, "search index unavailable; results from in-memory scan")
		} else {
			backend = "fts"
			hits = make([]output.SearchHit, 0, len(results))
			for _, r := range results {
				hits = append(hits, output.SearchHit{
					ID:      r.ID,
					Kind:    r.Kind,
					Name:    r.Name,
					Score:   r.Rank,
					Snippet: snippet(r.Description),
				})
			}
		}
	}
	if backend != "fts" {
		hits = memorySearch(m, q, normKinds, limit)
	}

	if e.metrics != nil {
		e.metrics.Metrics.SearchQueriesTotal.WithLabelValues(backend).Inc()
	}

	res := &SearchResponse{Query: q, Backend: backend, Hits: hits}
	return res, stampProvenance(base, start, warnings...), nil
}

// Variables lists harmonized variables, filtered to one class when given.
func (e *Engine) Variables(ctx context.Context, class string) (*VariablesResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	var vars []*schema.Variable
	if class == "" {
		vars = m.Variables()
	} else {
		if _, ok := m.Class(class); !ok {
			return nil, nil, e.notFound(m, class)
		}
		vars = m.VariablesFor(class)
	}

	rows := make([]output.VariableRow, 0, len(vars))
	for _, v := range vars {
		rows = append(rows, output.VariableRow{
			Name:        v.Name,
			Label:       v.Label,
			MappedClass: v.Class,
			DataType:    v.DataType,
			Unit:        v.Unit,
			Curie:       v.CURIE,
		})
	}

	res := &VariablesResult{Class: class, Variables: rows}
	if max := e.config.Budget.MaxResults; max > 0 && len(rows) > max {
		res.Variables = rows[:max]
		res.Truncation = &Truncation{
			Shown:  max,
			Total:  len(rows),
			Reason: fmt.Sprintf("variable list capped at %d", max),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Elements lists elements of one kind, or every kind in resolution order.
func (e *Engine) Elements(ctx context.Context, kind string, limit int) (*ElementsResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	kinds := schema.AllKinds
	normalized := ""
	if kind != "" {
		k, err := schema.ParseKind(kind)
		if err != nil {
			return nil, nil, errors.NewModelError(errors.KindInvalid, err.Error(), nil, nil, nil)
		}
		kinds = []schema.ElementKind{k}
		normalized = string(k)
	}

	var rows []output.ElementRow
	for _, k := range kinds {
		for _, el := range m.ElementsOfKind(k) {
			rows = append(rows, elementRow(el))
		}
	}

	total := len(rows)
	maxRows := e.config.Budget.MaxResults
	if limit > 0 && (maxRows <= 0 || limit < maxRows) {
		maxRows = limit
	}

	res := &ElementsResult{Kind: normalized, Elements: rows}
	if maxRows > 0 && len(rows) > maxRows {
		res.Elements = rows[:maxRows]
		res.Truncation = &Truncation{
			Shown:  maxRows,
			Total:  total,
			Reason: fmt.Sprintf("element list capped at %d", maxRows),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Report returns the data-quality report collected at model build.
func (e *Engine) Report(ctx context.Context) (*ReportResult, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	report := m.Validate()
	findings := make([]output.Finding, 0, len(report.Findings))
	for _, f := range report.Findings {
		findings = append(findings, output.Finding{
			Severity:  string(f.Severity),
			Code:      f.Code,
			ElementID: f.ElementID,
			Message:   f.Message,
		})
	}

	res := &ReportResult{
		Clean:    report.Clean(),
		Counts:   report.Counts,
		Findings: findings,
	}
	if max := e.config.Budget.MaxResults; max > 0 && len(findings) > max {
		res.Findings = findings[:max]
		res.Truncation = &Truncation{
			Shown:  max,
			Total:  len(findings),
			Reason: fmt.Sprintf("findings capped at %d", max),
		}
	}

	return res, stampProvenance(base, start), nil
}

// Stats returns model element counts and finding tallies.
func (e *Engine) Stats(ctx context.Context) (*schema.Stats, *Provenance, error) {
	start := time.Now()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	m, base := e.current()

	stats := m.Stats()
	return &stats, stampProvenance(base, start), nil
}

// resolveElement resolves canonical references and bare names, with a
// normalization fallback so raw variable names from the source sheet match.
func resolveElement(m *schema.Model, ref string) (schema.Element, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if el, ok := m.Element(ref); ok {
		return el, true
	}
	kind, id, hasKind := schema.ParseElementID(ref)
	if hasKind && kind != schema.KindVariable {
		return nil, false
	}
	if v, ok := m.Variable(schema.NormalizeVariableID(id)); ok {
		return v, true
	}
	return nil, false
}

// notFound builds an element-not-found error with near-match suggestions.
func (e *Engine) notFound(m *schema.Model, ref string) error {
	max := e.config.Budget.MaxDrilldowns
	if max <= 0 {
		max = 5
	}

	var drilldowns []errors.Drilldown
	for _, hit := range memorySearch(m, ref, nil, max-1) {
		drilldowns = append(drilldowns, errors.Drilldown{
			Label: fmt.Sprintf("Describe %s", hit.Name),
			Query: "describe " + hit.ID,
		})
	}
	drilldowns = append(drilldowns, errors.Drilldown{
		Label: "Search the model",
		Query: "search " + ref,
	})

	return errors.NewModelError(
		errors.ElementNotFound,
		fmt.Sprintf("no element matches %q", ref),
		nil,
		nil,
		drilldowns,
	)
}

// normalizeKinds validates user-supplied kind filters into canonical names.
func normalizeKinds(kinds []string) ([]string, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(kinds))
	seen := map[string]bool{}
	for _, k := range kinds {
		parsed, err := schema.ParseKind(k)
		if err != nil {
			return nil, errors.NewModelError(errors.KindInvalid, err.Error(), nil, nil, nil)
		}
		if !seen[string(parsed)] {
			seen[string(parsed)] = true
			out = append(out, string(parsed))
		}
	}
	return out, nil
}

// memorySearch is the index-free fallback: a ranked scan of element names
// and descriptions mirroring the tiered index ranking.
func memorySearch(m *schema.Model, q string, kinds []string, limit int) []output.SearchHit {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 20
	}

	kindSet := map[string]bool{}
	for _, k := range kinds {
		kindSet[k] = true
	}

	lower := strings.ToLower(q)
	var hits []output.SearchHit
	for _, kind := range schema.AllKinds {
		if len(kindSet) > 0 && !kindSet[string(kind)] {
			continue
		}
		for _, el := range searchCorpus(m, kind) {
			name := el.ElementName()
			lowerName := strings.ToLower(name)
			var score float64
			switch {
			case lowerName == lower:
				score = 1.0
			case strings.HasPrefix(lowerName, lower):
				score = 0.8
			case strings.Contains(lowerName, lower),
				strings.Contains(strings.ToLower(el.ElementDescription()), lower):
				score = 0.5
			default:
				continue
			}
			hits = append(hits, output.SearchHit{
				ID:      el.ElementID(),
				Kind:    string(kind),
				Name:    name,
				Score:   score,
				Snippet: snippet(el.ElementDescription()),
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Name < hits[j].Name
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// searchCorpus returns the searchable elements of one kind. Slot override
// instances are searchable even though flat listings hide them, matching
// what the persisted index stores.
func searchCorpus(m *schema.Model, kind schema.ElementKind) []schema.Element {
	if kind != schema.KindSlot {
		return m.ElementsOfKind(kind)
	}
	slots := m.Slots(true)
	out := make([]schema.Element, 0, len(slots))
	for _, s := range slots {
		out = append(out, s)
	}
	return out
}

// snippet trims a description for list display.
func snippet(desc string) string {
	const maxLen = 160
	if len(desc) <= maxLen {
		return desc
	}
	cut := desc[:maxLen]
	if idx := strings.LastIndexByte(cut, ' '); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func elementRow(el schema.Element) output.ElementRow {
	row := output.ElementRow{
		ID:          el.ElementID(),
		Kind:        string(el.ElementKind()),
		Name:        el.ElementName(),
		Description: el.ElementDescription(),
	}
	if c, ok := el.(*schema.Class); ok && c.Parent != "" {
		row.Parent = schema.ElementIDFor(schema.KindClass, c.Parent)
	}
	return row
}

// countNodes counts a subtree including its root.
func countNodes(n *schema.ClassNode) int {
	count := 1
	for _, child := range n.Children {
		count += countNodes(child)
	}
	return count
}

func forestExceedsDepth(nodes []*schema.ClassNode, maxDepth int) bool {
	for _, n := range nodes {
		if n.Depth >= maxDepth {
			return true
		}
		if forestExceedsDepth(n.Children, maxDepth) {
			return true
		}
	}
	return false
}

// pruneNode copies a subtree, dropping descendants at or below the depth cap.
func pruneNode(n *schema.ClassNode, maxDepth int) *schema.ClassNode {
	out := &schema.ClassNode{Class: n.Class, Depth: n.Depth}
	if n.Depth+1 >= maxDepth {
		return out
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, pruneNode(child, maxDepth))
	}
	return out
}
