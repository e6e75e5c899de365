package flow

import (
	"slices"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/tree"
)

// Graph is the immutable result of a build: controllers and transitions in
// document order plus the display name of the initial controller.
//
// Display names are unique and every edge endpoint names a node. Cycles are
// expected; unwind edges lead back to earlier screens.
type Graph struct {
	nodes   []ControllerNode
	edges   []TransitionEdge
	initial string
	index   map[string]int
}

// AssembleGraph combines the catalog stage and extraction stage outputs.
//
// Controllers sharing a display name collapse into one node, the first in
// document order. initialID is resolved through cat; an empty or unknown id
// yields [Unknown] rather than an error.
func AssembleGraph(nodes []ControllerNode, edges []TransitionEdge, initialID string, cat *Catalog) (*Graph, error) {
	g := &Graph{index: make(map[string]int, len(nodes))}
	for _, n := range nodes {
		if _, dup := g.index[n.DisplayName]; dup {
			continue
		}
		g.index[n.DisplayName] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	if err := g.setEdges(edges); err != nil {
		return nil, err
	}

	g.initial = Unknown
	if initialID != "" {
		if name, ok := cat.Lookup(initialID); ok {
			g.initial = name
		}
	}
	return g, nil
}

func (g *Graph) setEdges(edges []TransitionEdge) error {
	for _, e := range edges {
		if _, ok := g.index[e.Source]; !ok {
			return errors.Malformed(e.ID, "transition %q starts at unknown controller %q", e.ID, e.Source)
		}
		if _, ok := g.index[e.Destination]; !ok {
			return errors.Malformed(e.ID, "transition %q ends at unknown controller %q", e.ID, e.Destination)
		}
	}
	g.edges = slices.Clone(edges)
	return nil
}

// Build runs catalog, extraction and assembly over a document root. The
// initial controller is read from the root's initialViewController attribute.
func Build(root tree.Element, opts Options) (*Graph, error) {
	nodes, cat, err := BuildCatalog(root, opts)
	if err != nil {
		return nil, err
	}
	edges, err := ExtractTransitions(root, cat, opts)
	if err != nil {
		return nil, err
	}
	initialID, _ := root.Attr(AttrInitialViewController)
	return AssembleGraph(nodes, edges, initialID, cat)
}

// Nodes returns a copy of the controllers in document order.
func (g *Graph) Nodes() []ControllerNode { return slices.Clone(g.nodes) }

// Edges returns a copy of the transitions in document order.
func (g *Graph) Edges() []TransitionEdge { return slices.Clone(g.edges) }

// InitialNodeName returns the initial controller's display name or [Unknown].
func (g *Graph) InitialNodeName() string { return g.initial }

// NodeCount returns the number of controllers.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of transitions.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the controller with the given display name.
func (g *Graph) Node(name string) (ControllerNode, bool) {
	i, ok := g.index[name]
	if !ok {
		return ControllerNode{}, false
	}
	return g.nodes[i], true
}

// Outgoing returns the transitions leaving name, in document order.
func (g *Graph) Outgoing(name string) []TransitionEdge {
	var out []TransitionEdge
	for _, e := range g.edges {
		if e.Source == name {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the transitions arriving at name, in document order.
func (g *Graph) Incoming(name string) []TransitionEdge {
	var in []TransitionEdge
	for _, e := range g.edges {
		if e.Destination == name {
			in = append(in, e)
		}
	}
	return in
}

// KindCounts returns the number of edges of each kind.
func (g *Graph) KindCounts() map[TransitionKind]int {
	counts := make(map[TransitionKind]int, len(TransitionKinds))
	for _, e := range g.edges {
		counts[e.Kind]++
	}
	return counts
}

// Equal reports whether g and other hold the same nodes, edges and initial
// controller in the same order.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.initial == other.initial &&
		slices.Equal(g.nodes, other.nodes) &&
		slices.Equal(g.edges, other.edges)
}

// NewGraph rebuilds a graph from previously exported parts, checking the same
// invariants as [AssembleGraph]: non-empty unique display names, known
// endpoints, and an initial node that is either [Unknown] or a graph node.
// An empty initial means [Unknown].
func NewGraph(nodes []ControllerNode, edges []TransitionEdge, initial string) (*Graph, error) {
	g := &Graph{index: make(map[string]int, len(nodes)), initial: initial}
	for _, n := range nodes {
		if n.DisplayName == "" {
			return nil, errors.Malformed(n.ID, "controller %q has an empty display name", n.ID)
		}
		if _, dup := g.index[n.DisplayName]; dup {
			return nil, errors.Malformed(n.DisplayName, "duplicate controller %q", n.DisplayName)
		}
		g.index[n.DisplayName] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	if err := g.setEdges(edges); err != nil {
		return nil, err
	}
	if g.initial == "" {
		g.initial = Unknown
	}
	if _, ok := g.index[g.initial]; !ok && g.initial != Unknown {
		return nil, errors.Malformed(g.initial, "initial controller %q is not in the graph", g.initial)
	}
	return g, nil
}
