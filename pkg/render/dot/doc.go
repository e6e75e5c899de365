// Package dot renders flow graphs as Graphviz diagrams.
//
// [ToDOT] produces DOT source in a fixed, diff-friendly shape: rectangular
// nodes set in a monospace font, an outline-free start node titled with the
// document name pointing at the initial controller, and one edge per
// transition labelled with its identifier and coloured by kind
// (relationship and push black, presentation blue, unwind red).
//
//	src := dot.ToDOT(g, dot.Options{Title: "Main.storyboard"})
//	svg, err := dot.Render(ctx, src, dot.FormatSVG)
//
// [Render] uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system Graphviz installation is needed.
package dot
