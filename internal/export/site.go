package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/output"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// siteVariant selects the markdown site flavor.
type siteVariant int

const (
	siteRaw siteVariant = iota
	siteHugo
	siteDocusaurus
)

type hugoFrontMatter struct {
	Title  string `toml:"title"`
	Weight int    `toml:"weight"`
}

type hugoSiteConfig struct {
	BaseURL      string         `toml:"baseURL"`
	LanguageCode string         `toml:"languageCode"`
	Title        string         `toml:"title"`
	Params       hugoSiteParams `toml:"params"`
}

type hugoSiteParams struct {
	Description string `toml:"description"`
}

type docusaurusFrontMatter struct {
	Title           string `yaml:"title"`
	SidebarPosition int    `yaml:"sidebar_position"`
}

// categoryFile is the docusaurus sidebar descriptor for a page directory.
type categoryFile struct {
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// exportSite writes the markdown documentation site: an index page, one page
// per class, enum and base slot, and the variables table.
func (e *Exporter) exportSite(ctx context.Context, w *fileWriter, variant siteVariant) error {
	prefix := ""
	if variant == siteHugo {
		prefix = "content/"
		if err := e.writeHugoConfig(w); err != nil {
			return err
		}
	}

	indexName := "index.md"
	if variant == siteHugo {
		indexName = "_index.md"
	}
	page, err := pageBytes(variant, e.siteTitle(), 1, e.indexBody())
	if err != nil {
		return err
	}
	if err := w.write(prefix+indexName, page); err != nil {
		return err
	}

	sections := []struct {
		dir    string
		label  string
		weight int
		kind   schema.ElementKind
	}{
		{"classes", "Classes", 2, schema.KindClass},
		{"enums", "Enums", 3, schema.KindEnum},
		{"slots", "Slots", 4, schema.KindSlot},
	}

	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		elements := e.model.ElementsOfKind(sec.kind)
		if len(elements) == 0 {
			continue
		}
		if err := e.writeSectionIndex(w, variant, prefix, sec.dir, sec.label, sec.weight); err != nil {
			return err
		}
		for i, el := range elements {
			d := el.Detail(e.model)
			if d == nil {
				continue
			}
			var body strings.Builder
			renderDetail(&body, d, e.pageLink)
			page, err := pageBytes(variant, d.Title, i+1, body.String())
			if err != nil {
				return err
			}
			file := sec.dir + "/" + slugFile(bareID(el)) + ".md"
			if err := w.write(prefix+file, page); err != nil {
				return err
			}
		}
	}

	if len(e.model.Variables()) > 0 {
		page, err := pageBytes(variant, "Variables", 5, e.variablesBody())
		if err != nil {
			return err
		}
		if err := w.write(prefix+"variables.md", page); err != nil {
			return err
		}
	}

	return nil
}

// pageBytes wraps a page body in the variant's front matter. The raw variant
// gets a plain heading instead.
func pageBytes(variant siteVariant, title string, weight int, body string) ([]byte, error) {
	switch variant {
	case siteHugo:
		fm, err := toml.Marshal(hugoFrontMatter{Title: title, Weight: weight})
		if err != nil {
			return nil, fmt.Errorf("marshal front matter for %s: %w", title, err)
		}
		return []byte("+++\n" + string(fm) + "+++\n\n" + body), nil
	case siteDocusaurus:
		fm, err := yaml.Marshal(docusaurusFrontMatter{Title: title, SidebarPosition: weight})
		if err != nil {
			return nil, fmt.Errorf("marshal front matter for %s: %w", title, err)
		}
		return []byte("---\n" + string(fm) + "---\n\n" + body), nil
	default:
		return []byte("# " + title + "\n\n" + body), nil
	}
}

// writeSectionIndex emits the per-directory descriptor a site generator
// expects: a hugo section page or a docusaurus category file.
func (e *Exporter) writeSectionIndex(w *fileWriter, variant siteVariant, prefix, dir, label string, weight int) error {
	switch variant {
	case siteHugo:
		page, err := pageBytes(variant, label, weight, "")
		if err != nil {
			return err
		}
		return w.write(prefix+dir+"/_index.md", page)
	case siteDocusaurus:
		data, err := output.DeterministicEncodeIndented(categoryFile{Label: label, Position: weight}, "  ")
		if err != nil {
			return fmt.Errorf("encode category file for %s: %w", dir, err)
		}
		return w.write(dir+"/_category_.json", append(data, '\n'))
	}
	return nil
}

func (e *Exporter) writeHugoConfig(w *fileWriter) error {
	desc := "Generated schema documentation"
	if name := e.model.SchemaName(); name != "" {
		desc = "Generated documentation for the " + name + " schema"
		if v := e.model.SchemaVersion(); v != "" {
			desc += ", version " + v
		}
	}
	cfg := hugoSiteConfig{
		BaseURL:      "/",
		LanguageCode: "en-us",
		Title:        e.siteTitle(),
		Params:       hugoSiteParams{Description: desc},
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal hugo config: %w", err)
	}
	return w.write("config.toml", data)
}

func (e *Exporter) siteTitle() string {
	if name := e.model.SchemaName(); name != "" {
		return name + " schema"
	}
	return "Schema documentation"
}

// indexBody builds the overview page: counts, the class hierarchy, and
// per-kind listings. Types have no pages of their own and are listed inline.
func (e *Exporter) indexBody() string {
	var sb strings.Builder
	stats := e.model.Stats()

	if v := e.model.SchemaVersion(); v != "" {
		fmt.Fprintf(&sb, "Schema version %s.\n\n", v)
	}

	sb.WriteString("## Overview\n\n")
	fmt.Fprintf(&sb, "- Classes: %d\n", stats.Classes)
	slots := fmt.Sprintf("- Slots: %d", stats.Slots)
	if stats.SlotOverrides > 0 {
		slots += fmt.Sprintf(" (+%d overrides)", stats.SlotOverrides)
	}
	sb.WriteString(slots + "\n")
	fmt.Fprintf(&sb, "- Enums: %d\n", stats.Enums)
	fmt.Fprintf(&sb, "- Types: %d\n", stats.Types)
	fmt.Fprintf(&sb, "- Variables: %d\n\n", stats.Variables)

	if roots := e.model.Tree(); len(roots) > 0 {
		sb.WriteString("## Class Hierarchy\n\n")
		var walk func(node *schema.ClassNode)
		walk = func(node *schema.ClassNode) {
			indent := strings.Repeat("  ", node.Depth)
			entry := fmt.Sprintf("%s- [%s](classes/%s.md)", indent, node.Class.Name, slugFile(node.Class.ID))
			if node.Class.Abstract {
				entry += " *(abstract)*"
			}
			sb.WriteString(entry + "\n")
			for _, child := range node.Children {
				walk(child)
			}
		}
		for _, root := range roots {
			walk(root)
		}
		sb.WriteString("\n")
	}

	if enums := e.model.ElementsOfKind(schema.KindEnum); len(enums) > 0 {
		sb.WriteString("## Enums\n\n")
		for _, el := range enums {
			sb.WriteString(listEntry(el, "enums"))
		}
		sb.WriteString("\n")
	}

	if slots := e.model.ElementsOfKind(schema.KindSlot); len(slots) > 0 {
		sb.WriteString("## Slots\n\n")
		for _, el := range slots {
			sb.WriteString(listEntry(el, "slots"))
		}
		sb.WriteString("\n")
	}

	if types := e.model.ElementsOfKind(schema.KindType); len(types) > 0 {
		sb.WriteString("## Types\n\n")
		for _, el := range types {
			entry := "- **" + el.ElementName() + "**"
			if desc := firstLine(el.ElementDescription()); desc != "" {
				entry += ": " + desc
			}
			sb.WriteString(entry + "\n")
		}
		sb.WriteString("\n")
	}

	if stats.Variables > 0 {
		fmt.Fprintf(&sb, "## Variables\n\n%d variables are documented in [variables.md](variables.md).\n", stats.Variables)
	}

	return sb.String()
}

// listEntry is one index line linking to an element page.
func listEntry(el schema.Element, dir string) string {
	entry := fmt.Sprintf("- [%s](%s/%s.md)", el.ElementName(), dir, slugFile(bareID(el)))
	if desc := firstLine(el.ElementDescription()); desc != "" {
		entry += ": " + desc
	}
	return entry + "\n"
}

// variablesBody builds the variables table in sheet order. Mapped classes
// link to their pages; CURIEs with a declared prefix link to the expansion.
func (e *Exporter) variablesBody() string {
	var sb strings.Builder
	sb.WriteString("| Variable | Label | Class | Data Type | Unit | CURIE |\n")
	sb.WriteString("|----------|-------|-------|-----------|------|-------|\n")
	for _, v := range e.model.Variables() {
		class := escapeCell(v.Class)
		if c, ok := e.model.Class(v.Class); ok {
			class = fmt.Sprintf("[%s](classes/%s.md)", escapeCell(c.Name), slugFile(c.ID))
		}
		curie := escapeCell(v.CURIE)
		if v.CURIE != "" {
			if uri := e.model.ExpandCURIE(v.CURIE); uri != v.CURIE {
				curie = fmt.Sprintf("[%s](%s)", escapeCell(v.CURIE), uri)
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(v.Name), escapeCell(v.Label), class, escapeCell(v.DataType), escapeCell(v.Unit), curie)
	}
	return sb.String()
}

// DetailMarkdown renders an element detail as a standalone markdown
// document, without links. Used for terminal rendering.
func DetailMarkdown(d *schema.Detail) []byte {
	var sb strings.Builder
	sb.WriteString("# " + d.Title + "\n\n")
	renderDetail(&sb, d, nil)
	return []byte(sb.String())
}

// linkFunc resolves a row reference to a markdown link target. Empty means
// render the name as plain text.
type linkFunc func(*schema.RangeRef) string

// renderDetail writes badges and sections. Sections whose rows carry values
// render as tables, name-only sections as lists.
func renderDetail(sb *strings.Builder, d *schema.Detail, link linkFunc) {
	if len(d.Badges) > 0 {
		sb.WriteString("*" + strings.Join(d.Badges, ", ") + "*\n\n")
	}
	for _, sec := range d.Sections {
		sb.WriteString("## " + sec.Label + "\n\n")
		if listSection(sec) {
			for _, row := range sec.Rows {
				sb.WriteString("- " + rowName(row, link) + "\n")
			}
		} else {
			sb.WriteString("| Name | Value |\n")
			sb.WriteString("|------|-------|\n")
			for _, row := range sec.Rows {
				sb.WriteString("| " + rowName(row, link) + " | " + escapeCell(row.Value) + " |\n")
			}
		}
		sb.WriteString("\n")
	}
}

func listSection(sec schema.DetailSection) bool {
	for _, row := range sec.Rows {
		if row.Value != "" {
			return false
		}
	}
	return true
}

func rowName(row schema.DetailRow, link linkFunc) string {
	name := escapeCell(row.Name)
	if link == nil || row.Ref == nil {
		return name
	}
	if target := link(row.Ref); target != "" {
		return "[" + name + "](" + target + ")"
	}
	return name
}

// pageLink resolves references for pages one directory below the site root.
func (e *Exporter) pageLink(ref *schema.RangeRef) string {
	return e.linkTarget(ref, "../")
}

// linkTarget maps an element reference to its page. Override slots link to
// their base slot's page; types and primitives have no pages.
func (e *Exporter) linkTarget(ref *schema.RangeRef, prefix string) string {
	if ref == nil || ref.ID == "" {
		return ""
	}
	kind, id, ok := schema.ParseElementID(ref.ID)
	if !ok {
		return ""
	}
	switch kind {
	case schema.KindClass:
		return prefix + "classes/" + slugFile(id) + ".md"
	case schema.KindEnum:
		return prefix + "enums/" + slugFile(id) + ".md"
	case schema.KindSlot:
		if s, ok := e.model.Slot(id); ok && s.IsOverride() {
			id = s.Overrides
		}
		return prefix + "slots/" + slugFile(id) + ".md"
	case schema.KindVariable:
		return prefix + "variables.md"
	}
	return ""
}

// bareID strips the kind prefix from an element's canonical ID.
func bareID(el schema.Element) string {
	_, id, _ := schema.ParseElementID(el.ElementID())
	return id
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
