package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// turtleBasePrefixes are the vocabulary prefixes added to the header when
// the schema does not declare them itself.
var turtleBasePrefixes = map[string]string{
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
	"owl":  "http://www.w3.org/2002/07/owl#",
	"skos": "http://www.w3.org/2004/02/skos/core#",
	"xsd":  "http://www.w3.org/2001/XMLSchema#",
}

// xsdForPrimitive maps LinkML builtin ranges onto XSD datatypes.
var xsdForPrimitive = map[string]string{
	"string":     "xsd:string",
	"integer":    "xsd:integer",
	"boolean":    "xsd:boolean",
	"float":      "xsd:float",
	"double":     "xsd:double",
	"decimal":    "xsd:decimal",
	"date":       "xsd:date",
	"datetime":   "xsd:dateTime",
	"time":       "xsd:time",
	"uri":        "xsd:anyURI",
	"uriorcurie": "xsd:anyURI",
	"curie":      "xsd:string",
	"ncname":     "xsd:NCName",
}

// exportTurtle writes the schema as an RDF Turtle graph: classes as
// owl:Class, base slots as OWL properties, enums as SKOS concept schemes.
func (e *Exporter) exportTurtle(w *fileWriter) error {
	g := newTurtleGraph(e.model)
	return w.write(schemaSlug(e.model)+".ttl", g.render())
}

// turtleGraph renders one model as Turtle. Element URIs use the schema's own
// prefix when it declares one matching its name, otherwise a default prefix
// is generated.
type turtleGraph struct {
	model    *schema.Model
	nsPrefix string
	prefixes map[string]string
}

func newTurtleGraph(m *schema.Model) *turtleGraph {
	prefixes := map[string]string{}
	for k, v := range m.Prefixes() {
		prefixes[k] = v
	}
	for k, v := range turtleBasePrefixes {
		if _, ok := prefixes[k]; !ok {
			prefixes[k] = v
		}
	}

	ns := strings.ToLower(strings.TrimSpace(m.SchemaName()))
	if ns == "" {
		ns = "schema"
	}
	nsPrefix := ""
	if _, ok := prefixes[ns]; ok {
		nsPrefix = ns
	} else {
		prefixes[""] = "https://example.org/" + slugFile(ns) + "/"
	}

	return &turtleGraph{model: m, nsPrefix: nsPrefix, prefixes: prefixes}
}

func (g *turtleGraph) render() []byte {
	var sb strings.Builder

	names := make([]string, 0, len(g.prefixes))
	for name := range g.prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", name, g.prefixes[name])
	}
	sb.WriteString("\n")

	g.writeClasses(&sb)
	g.writeSlots(&sb)
	g.writeEnums(&sb)

	return []byte(sb.String())
}

func (g *turtleGraph) writeClasses(sb *strings.Builder) {
	for _, el := range g.model.ElementsOfKind(schema.KindClass) {
		c := el.(*schema.Class)
		props := []string{
			"a owl:Class",
			"rdfs:label " + turtleLiteral(c.Name),
		}
		if c.Description != "" {
			props = append(props, "skos:definition "+turtleLiteral(c.Description))
		}
		if c.Parent != "" {
			if _, ok := g.model.Class(c.Parent); ok {
				props = append(props, "rdfs:subClassOf "+g.term(c.Parent))
			}
		}
		writeSubject(sb, g.term(c.ID), props)
	}
}

// writeSlots emits base slots as OWL properties. The domain is the set of
// classes declaring the attribute themselves; inherited copies are implied
// by the subclass axioms.
func (g *turtleGraph) writeSlots(sb *strings.Builder) {
	domains := map[string]map[string]bool{}
	for _, el := range g.model.ElementsOfKind(schema.KindClass) {
		c := el.(*schema.Class)
		for _, attr := range c.Attributes {
			if attr.InheritedFrom != "" {
				continue
			}
			id := attr.SlotID
			if s, ok := g.model.Slot(id); ok && s.IsOverride() {
				id = s.Overrides
			}
			if domains[id] == nil {
				domains[id] = map[string]bool{}
			}
			domains[id][c.ID] = true
		}
	}

	for _, el := range g.model.ElementsOfKind(schema.KindSlot) {
		s := el.(*schema.Slot)
		rr := g.model.ResolveRange(s.Range)

		propType := "owl:DatatypeProperty"
		if rr.Kind == schema.RangeClass || rr.Kind == schema.RangeEnum {
			propType = "owl:ObjectProperty"
		}
		props := []string{
			"a " + propType,
			"rdfs:label " + turtleLiteral(s.Name),
		}
		if s.Description != "" {
			props = append(props, "skos:definition "+turtleLiteral(s.Description))
		}
		if doms := domains[s.ID]; len(doms) > 0 {
			classNames := sortedNames(doms)
			terms := make([]string, len(classNames))
			for i, name := range classNames {
				terms[i] = g.term(name)
			}
			props = append(props, "rdfs:domain "+strings.Join(terms, ", "))
		}
		if rangeTerm := g.rangeTerm(rr); rangeTerm != "" {
			props = append(props, "rdfs:range "+rangeTerm)
		}
		writeSubject(sb, g.term(s.ID), props)
	}
}

func (g *turtleGraph) writeEnums(sb *strings.Builder) {
	for _, el := range g.model.ElementsOfKind(schema.KindEnum) {
		en := el.(*schema.Enum)
		props := []string{
			"a skos:ConceptScheme",
			"rdfs:label " + turtleLiteral(en.Name),
		}
		if en.Description != "" {
			props = append(props, "skos:definition "+turtleLiteral(en.Description))
		}
		writeSubject(sb, g.term(en.ID), props)

		texts := make([]string, 0, len(en.PermissibleValues))
		for text := range en.PermissibleValues {
			texts = append(texts, text)
		}
		sort.Strings(texts)
		for _, text := range texts {
			pv := en.PermissibleValues[text]
			props := []string{
				"a skos:Concept",
				"skos:prefLabel " + turtleLiteral(text),
				"skos:inScheme " + g.term(en.ID),
			}
			if pv != nil {
				if pv.Description != "" {
					props = append(props, "skos:definition "+turtleLiteral(pv.Description))
				}
				if pv.Meaning != "" {
					if ref := g.curieOrIRI(pv.Meaning); ref != "" {
						props = append(props, "skos:exactMatch "+ref)
					}
				}
			}
			writeSubject(sb, g.term(en.ID+"."+text), props)
		}
	}
}

// rangeTerm resolves a slot range to a Turtle object: an element term, a
// type's declared URI, or an XSD datatype.
func (g *turtleGraph) rangeTerm(rr schema.RangeRef) string {
	switch rr.Kind {
	case schema.RangeClass, schema.RangeEnum:
		return g.term(rr.Name)
	case schema.RangeType:
		if t, ok := g.model.Type(rr.Name); ok {
			if t.URI != "" {
				if ref := g.curieOrIRI(t.URI); ref != "" {
					return ref
				}
			}
			if xsd, ok := xsdForPrimitive[t.Base]; ok {
				return xsd
			}
		}
		return "xsd:string"
	case schema.RangePrimitive:
		if xsd, ok := xsdForPrimitive[rr.Name]; ok {
			return xsd
		}
		return "xsd:string"
	}
	return ""
}

// term builds the CURIE for an element in the schema namespace.
func (g *turtleGraph) term(local string) string {
	return g.nsPrefix + ":" + slugFile(local)
}

// curieOrIRI renders a compact or absolute identifier, or empty when the
// prefix is undeclared and the value is not an absolute IRI.
func (g *turtleGraph) curieOrIRI(value string) string {
	if idx := strings.Index(value, ":"); idx > 0 {
		if _, ok := g.prefixes[value[:idx]]; ok {
			return value
		}
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return "<" + value + ">"
	}
	return ""
}

func writeSubject(sb *strings.Builder, subject string, props []string) {
	sb.WriteString(subject + " " + props[0])
	for _, p := range props[1:] {
		sb.WriteString(" ;\n    " + p)
	}
	sb.WriteString(" .\n\n")
}

func sortedNames(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func turtleLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
