// Package pkg provides the libraries behind storyflow.
//
// # Overview
//
// Storyflow reads an iOS storyboard document and turns it into a directed
// graph of screens and the transitions between them. The pkg directory is
// organized into three areas:
//
//  1. Core: [tree] (read-only element tree), [flow] (catalog, transition
//     extraction, graph assembly) and [levenshtein] (unwind resolution)
//  2. Output: [render/dot], [render/mermaid] and [io] (JSON/YAML)
//  3. Plumbing: [pipeline], [cache], [config], [errors], [observability]
//     and [buildinfo]
//
// # Architecture
//
//	storyboard file
//	       ↓
//	  [tree] package (parse XML into elements)
//	       ↓
//	  [flow] package (catalog → transitions → graph)
//	       ↓
//	  [render/dot], [render/mermaid], [io]
//	       ↓
//	  DOT/SVG/PNG/Mermaid/JSON/YAML output
//
// [pipeline] runs these stages with timing, logging and an artifact cache.
//
// # Quick Start
//
//	doc, err := tree.ParseFile("Main.storyboard")
//	if err != nil {
//	    return err
//	}
//	g, err := flow.Build(doc.Root, flow.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(dot.ToDOT(g, dot.Options{Title: "Main.storyboard"}))
package pkg
