package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/storyflow/pkg/flow"
)

type document struct {
	Initial string `json:"initial" yaml:"initial"`
	Nodes   []node `json:"nodes" yaml:"nodes"`
	Edges   []edge `json:"edges" yaml:"edges"`
}

type node struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Tag  string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

type edge struct {
	ID       string `json:"id" yaml:"id"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Kind     string `json:"kind" yaml:"kind"`
	Label    string `json:"label" yaml:"label"`
	Distance int    `json:"distance,omitempty" yaml:"distance,omitempty"`
}

func toDocument(g *flow.Graph) document {
	nodes := g.Nodes()
	edges := g.Edges()
	out := document{
		Initial: g.InitialNodeName(),
		Nodes:   make([]node, len(nodes)),
		Edges:   make([]edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Name: n.DisplayName, Kind: n.Kind.String(), Tag: n.Tag}
	}
	for i, e := range edges {
		out.Edges[i] = edge{
			ID:       e.ID,
			From:     e.Source,
			To:       e.Destination,
			Kind:     e.Kind.String(),
			Label:    e.Label,
			Distance: e.Distance,
		}
	}
	return out
}

// WriteJSON encodes g as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *flow.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes g as YAML and writes it to w.
func WriteYAML(g *flow.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// MarshalJSON returns the JSON encoding of g. The pipeline uses it both as
// the cached form of a graph and as the input of the graph hash.
func MarshalJSON(g *flow.Graph) ([]byte, error) {
	data, err := json.Marshal(toDocument(g))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *flow.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// ExportYAML writes g to a YAML file at path.
func ExportYAML(g *flow.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteYAML(g, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
