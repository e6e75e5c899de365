// Package render groups the diagram renderers for flow graphs.
//
// The [dot] subpackage produces Graphviz DOT source and renders it to SVG or
// PNG with an embedded Graphviz engine. The [mermaid] subpackage produces
// Mermaid flowcharts for Markdown documentation.
//
//	src := dot.ToDOT(g, dot.Options{Title: "Main.storyboard"})
//	svg, err := dot.Render(ctx, src, dot.FormatSVG)
//	chart := mermaid.Generate(g, mermaid.Options{Title: "Main.storyboard"})
//
// [dot]: github.com/matzehuels/storyflow/pkg/render/dot
// [mermaid]: github.com/matzehuels/storyflow/pkg/render/mermaid
package render
