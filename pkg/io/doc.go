// Package io serializes flow graphs to JSON and YAML and reads them back.
//
// # Format
//
// Both encodings share one document shape:
//
//	{
//	  "initial": "navigationController-rS3-R9-Ivy",
//	  "nodes": [
//	    {"id": "rS3-R9-Ivy", "name": "navigationController-rS3-R9-Ivy", "kind": "navigation-container", "tag": "navigationController"},
//	    {"id": "pGg-6v-bdr", "name": "JBWMasterViewController", "kind": "screen", "tag": "tableViewController"}
//	  ],
//	  "edges": [
//	    {"id": "RxB-wf-QIq", "from": "navigationController-rS3-R9-Ivy", "to": "JBWMasterViewController", "kind": "relationship", "label": "navigation"}
//	  ]
//	}
//
// Edges reference nodes by name, the graph's node identity. Unwind edges
// also carry "distance", the edit distance of their resolved destination.
//
// # Round trip
//
// [ReadJSON] rebuilds the graph through [flow.NewGraph], so an imported
// document is checked for the same invariants as a freshly built one:
// non-empty unique node names, edges whose endpoints exist, and an initial
// node that is a graph node or UNKNOWN. Writing a graph and
// reading it back yields a graph that is [flow.Graph.Equal] to the original.
//
// [ExportJSON], [ImportJSON] and [ExportYAML] are file-path conveniences
// around the reader and writer functions.
package io
