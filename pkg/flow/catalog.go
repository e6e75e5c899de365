package flow

import (
	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/tree"
)

// Catalog maps controller element ids to display names in the order the
// controllers appear in the document. It is built once per run by
// [BuildCatalog] and read-only afterwards.
type Catalog struct {
	ids   []string
	names map[string]string
}

func newCatalog() *Catalog {
	return &Catalog{names: make(map[string]string)}
}

func (c *Catalog) add(id, name string) error {
	if _, dup := c.names[id]; dup {
		return errors.Malformed(id, "duplicate controller id %q", id)
	}
	c.ids = append(c.ids, id)
	c.names[id] = name
	return nil
}

// Lookup returns the display name registered for id.
func (c *Catalog) Lookup(id string) (string, bool) {
	name, ok := c.names[id]
	return name, ok
}

// Len returns the number of catalogued controllers.
func (c *Catalog) Len() int { return len(c.ids) }

// IDs returns the catalogued ids in document order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Names returns the distinct display names in document order of their first
// appearance.
func (c *Catalog) Names() []string {
	seen := make(map[string]bool, len(c.ids))
	out := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		name := c.names[id]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Map returns a copy of the id → display name mapping.
func (c *Catalog) Map() map[string]string {
	out := make(map[string]string, len(c.names))
	for id, name := range c.names {
		out[id] = name
	}
	return out
}

// BuildCatalog collects every controller element under root in depth-first
// document order. It also enforces the traversal bounds in opts, so later
// stages can walk the same tree without re-checking them.
func BuildCatalog(root tree.Element, opts Options) ([]ControllerNode, *Catalog, error) {
	opts = opts.withDefaults()

	var nodes []ControllerNode
	cat := newCatalog()

	err := tree.Walk(root, func(e tree.Element, depth int) error {
		if depth > opts.MaxDepth {
			return errors.Malformed(e.Tag(), "document nests deeper than %d levels", opts.MaxDepth)
		}
		if n := len(e.Children()); n > opts.MaxChildren {
			return errors.Malformed(e.Tag(), "element %s has %d children (limit %d)", e.Tag(), n, opts.MaxChildren)
		}

		kind, ok := controllerTags[e.Tag()]
		if !ok {
			return nil
		}
		id, ok := e.Attr(AttrID)
		if !ok || id == "" {
			return errors.Malformed(e.Tag(), "%s element has no %s attribute", e.Tag(), AttrID)
		}

		node := ControllerNode{ID: id, DisplayName: displayName(e, kind, id), Kind: kind, Tag: e.Tag()}
		if err := cat.add(id, node.DisplayName); err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return nodes, cat, nil
}

func displayName(e tree.Element, kind ControllerKind, id string) string {
	if kind == KindNavigationContainer {
		return NavigationPrefix + id
	}
	if class, ok := e.Attr(AttrCustomClass); ok && class != "" {
		return class
	}
	return Unknown
}
