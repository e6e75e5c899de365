// Package tree provides a read-only element tree and an XML loader for it.
//
// The graph builder only needs three things from a document: an element's tag,
// its attributes, and its children in document order. [Element] captures that
// contract; [Node] is the concrete implementation produced by [Parse] and by
// the [E] constructor used in tests.
package tree

import "errors"

// Element is a read-only view of one element in a parsed document.
type Element interface {
	// Tag returns the element's local name (namespace prefixes are dropped).
	Tag() string
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// Children returns the element's child elements in document order.
	Children() []Element
}

// Attrs holds attribute values keyed by local name.
type Attrs map[string]string

// Node is an immutable [Element]. The zero value is an element with no tag.
type Node struct {
	tag      string
	attrs    Attrs
	children []*Node
}

// E builds a Node. It is the programmatic counterpart of [Parse].
func E(tag string, attrs Attrs, children ...*Node) *Node {
	cp := make(Attrs, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return &Node{tag: tag, attrs: cp, children: children}
}

func (n *Node) Tag() string { return n.tag }

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *Node) Children() []Element {
	out := make([]Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// SkipChildren is returned by a [WalkFunc] to skip the current element's
// subtree. It is never returned by [Walk].
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each element visited by [Walk]. Depth is 0 for the
// root.
type WalkFunc func(e Element, depth int) error

// Walk visits root and its descendants depth-first in document order.
// Returning [SkipChildren] prunes the subtree; any other error stops the walk
// and is returned.
func Walk(root Element, fn WalkFunc) error {
	err := walk(root, 0, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(e Element, depth int, fn WalkFunc) error {
	if err := fn(e, depth); err != nil {
		return err
	}
	for _, c := range e.Children() {
		if err := walk(c, depth+1, fn); err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
	}
	return nil
}

// FindAll returns every element under root (root included) whose tag is one
// of tags, in document order.
func FindAll(root Element, tags ...string) []Element {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var found []Element
	_ = Walk(root, func(e Element, _ int) error {
		if want[e.Tag()] {
			found = append(found, e)
		}
		return nil
	})
	return found
}
