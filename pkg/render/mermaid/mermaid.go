// Package mermaid renders flow graphs as Mermaid flowcharts, for embedding
// navigation maps in Markdown documentation.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/storyflow/pkg/flow"
)

// Options configures flowchart generation.
type Options struct {
	// Title labels the start node that points at the initial controller.
	Title string

	// Highlight names a node to emphasise, e.g. the screen under review.
	Highlight string
}

var linkColors = map[flow.TransitionKind]string{
	flow.Presentation: "blue",
	flow.Unwind:       "red",
}

// Generate produces a top-down Mermaid flowchart of g.
//
// Shapes follow the controller kind: navigation containers are drawn as
// subroutines, screens as rectangles. Relationship edges are thick, unwind
// edges dotted and the rest plain arrows; presentation and unwind links are
// coloured like their DOT counterparts.
func Generate(g *flow.Graph, opts Options) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := newIDs()
	title := opts.Title
	if title == "" {
		title = "start"
	}
	fmt.Fprintf(&sb, "    _start((%s))\n", quote(title))

	for _, n := range g.Nodes() {
		opener, closer := "[", "]"
		if n.Kind == flow.KindNavigationContainer {
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s%s%s\n", ids.of(n.DisplayName), opener, quote(n.DisplayName), closer)
	}

	link := 0
	var styles []string
	if _, ok := g.Node(g.InitialNodeName()); ok {
		fmt.Fprintf(&sb, "    _start --> %s\n", ids.of(g.InitialNodeName()))
		link++
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, "    %s %s %s\n", ids.of(e.Source), arrow(e), ids.of(e.Destination))
		if c, ok := linkColors[e.Kind]; ok {
			styles = append(styles, fmt.Sprintf("    linkStyle %d stroke:%s,color:%s;\n", link, c, c))
		}
		link++
	}

	if len(styles) > 0 {
		sb.WriteString("\n")
		for _, s := range styles {
			sb.WriteString(s)
		}
	}

	if opts.Highlight != "" {
		if _, ok := g.Node(opts.Highlight); ok {
			sb.WriteString("\n    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
			fmt.Fprintf(&sb, "    class %s current;\n", ids.of(opts.Highlight))
		}
	}

	return sb.String()
}

func arrow(e flow.TransitionEdge) string {
	label := quote(e.Label)
	switch {
	case e.Kind == flow.Relationship && e.Label == "":
		return "==>"
	case e.Kind == flow.Relationship:
		return "== " + label + " ==>"
	case e.Kind == flow.Unwind && e.Label == "":
		return "-.->"
	case e.Kind == flow.Unwind:
		return "-. " + label + " .->"
	case e.Label == "":
		return "-->"
	default:
		return "-- " + label + " -->"
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "#quot;") + `"`
}

// ids assigns every display name a Mermaid-safe identifier, suffixing
// names that collide after sanitizing.
type ids struct {
	byName map[string]string
	taken  map[string]bool
}

func newIDs() *ids {
	return &ids{byName: map[string]string{}, taken: map[string]bool{"_start": true}}
}

func (m *ids) of(name string) string {
	if id, ok := m.byName[name]; ok {
		return id
	}
	base := sanitize(name)
	id := base
	for i := 2; m.taken[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	m.byName[name] = id
	m.taken[id] = true
	return id
}

func sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
