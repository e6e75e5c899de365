package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
)

var controllerKinds = map[string]flow.ControllerKind{
	flow.KindScreen.String():              flow.KindScreen,
	flow.KindNavigationContainer.String(): flow.KindNavigationContainer,
}

// ReadJSON decodes a graph written by [WriteJSON].
//
// ReadJSON returns an INVALID_FORMAT error when the input is not valid JSON
// or names an unknown node kind, UNKNOWN_TRANSITION_KIND for an unknown edge
// kind, and the MALFORMED_DOCUMENT errors of [flow.NewGraph] when a node name
// is empty or repeats, an edge endpoint is missing, or the initial node is
// neither a node nor UNKNOWN. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*flow.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph JSON")
	}
	return fromDocument(doc)
}

// ReadYAML decodes a graph written by [WriteYAML].
func ReadYAML(r io.Reader) (*flow.Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph YAML")
	}
	return fromDocument(doc)
}

// UnmarshalJSON is the inverse of [MarshalJSON].
func UnmarshalJSON(data []byte) (*flow.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*flow.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open graph").WithSubject(path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func fromDocument(doc document) (*flow.Graph, error) {
	nodes := make([]flow.ControllerNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		kind, ok := controllerKinds[n.Kind]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %q has unknown kind %q", n.Name, n.Kind).WithSubject(n.Kind)
		}
		nodes[i] = flow.ControllerNode{ID: n.ID, DisplayName: n.Name, Kind: kind, Tag: n.Tag}
	}

	edges := make([]flow.TransitionEdge, len(doc.Edges))
	for i, e := range doc.Edges {
		kind, ok := flow.ParseTransitionKind(e.Kind)
		if !ok {
			return nil, errors.UnknownKind(e.Kind, e.ID)
		}
		edges[i] = flow.TransitionEdge{
			ID:          e.ID,
			Source:      e.From,
			Destination: e.To,
			Kind:        kind,
			Label:       e.Label,
			Distance:    e.Distance,
		}
	}

	g, err := flow.NewGraph(nodes, edges, doc.Initial)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	return g, nil
}
