package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
)

// Defaults for [Options].
const (
	DefaultFontName  = "courier"
	DefaultGraphName = "storyboard"
)

// DefaultColors is the edge colour of each transition kind.
var DefaultColors = map[flow.TransitionKind]string{
	flow.Relationship: "black",
	flow.Push:         "black",
	flow.Presentation: "blue",
	flow.Unwind:       "red",
}

// Options configures DOT generation.
type Options struct {
	// Title labels the start node, usually the document's file name. The
	// start node has no outline and points at the initial controller.
	Title string

	// FontName is used for node and edge labels.
	FontName string

	// Colors overrides the edge colour of individual kinds; kinds not listed
	// keep their [DefaultColors] entry.
	Colors map[flow.TransitionKind]string
}

func (o Options) color(k flow.TransitionKind) string {
	if c, ok := o.Colors[k]; ok && c != "" {
		return c
	}
	if c, ok := DefaultColors[k]; ok {
		return c
	}
	return "black"
}

// ToDOT converts a flow graph to Graphviz DOT source.
//
// Nodes are emitted in graph order after the start node, then every edge
// labelled with its transition label and coloured by kind.
func ToDOT(g *flow.Graph, opts Options) string {
	font := opts.FontName
	if font == "" {
		font = DefaultFontName
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", DefaultGraphName)
	fmt.Fprintf(&buf, "\tnode [fontname=%s fontsize=12 shape=rect]\n", ID(font))
	fmt.Fprintf(&buf, "\tedge [fontname=%s fontsize=10]\n", ID(font))
	fmt.Fprintf(&buf, "\t\"\" [label=%s shape=none]\n", ID(opts.Title))
	fmt.Fprintf(&buf, "\t\"\" -> %s\n", ID(g.InitialNodeName()))

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "\t%s\n", ID(n.DisplayName))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "\t%s -> %s [label=%s color=%s]\n",
			ID(e.Source), ID(e.Destination), ID(e.Label), ID(opts.color(e.Kind)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	bareID    = regexp.MustCompile(`^[A-Za-z_\x80-\x{10FFFF}][A-Za-z0-9_\x80-\x{10FFFF}]*$`)
	numeralID = regexp.MustCompile(`^-?(\.[0-9]+|[0-9]+(\.[0-9]*)?)$`)
	keywords  = map[string]bool{"node": true, "edge": true, "graph": true, "digraph": true, "subgraph": true, "strict": true}
)

// ID formats s as a DOT identifier, quoting it unless it is a plain
// identifier or numeral.
func ID(s string) string {
	if (bareID.MatchString(s) || numeralID.MatchString(s)) && !keywords[strings.ToLower(s)] {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// Image formats supported by [Render].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Render lays out DOT source with the embedded Graphviz engine and encodes
// it as format ("svg" or "png").
func Render(ctx context.Context, dot string, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "graphviz cannot render %q", format).WithSubject(format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
