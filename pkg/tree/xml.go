package tree

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/matzehuels/storyflow/pkg/errors"
)

// Document is a parsed file: its root element and where it came from.
type Document struct {
	Root *Node
	Path string // empty when parsed from a reader
}

// Default parse limits.
const (
	DefaultMaxDepth    = 256
	DefaultMaxChildren = 10000
)

// Limits bounds the element tree built by the parser. Zero fields use the
// defaults.
type Limits struct {
	MaxDepth    int // deepest element, the root being depth 0
	MaxChildren int // children of any single element
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxChildren <= 0 {
		l.MaxChildren = DefaultMaxChildren
	}
	return l
}

// Parse reads an XML document from r with the default [Limits].
func Parse(r io.Reader) (*Document, error) {
	return ParseWithLimits(r, Limits{})
}

// ParseWithLimits reads an XML document from r and returns its element tree.
// Character data, comments and processing instructions are discarded. A
// document exceeding limits fails with MALFORMED_DOCUMENT as soon as the
// offending element is read. ParseWithLimits does not close r.
func ParseWithLimits(r io.Reader, limits Limits) (*Document, error) {
	limits = limits.withDefaults()
	dec := xml.NewDecoder(r)
	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{tag: t.Name.Local, attrs: make(Attrs, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New(errors.ErrCodeMalformedDocument, "multiple root elements").WithSubject(n.tag)
				}
				root = n
			} else {
				if depth := len(stack); depth > limits.MaxDepth {
					return nil, errors.Malformed(n.tag, "document nests deeper than %d levels", limits.MaxDepth)
				}
				parent := stack[len(stack)-1]
				if len(parent.children) == limits.MaxChildren {
					return nil, errors.Malformed(parent.tag, "element %s has more than %d children", parent.tag, limits.MaxChildren)
				}
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document has no root element")
	}
	return &Document{Root: root}, nil
}

// ParseFile opens path and parses it with the default [Limits].
func ParseFile(path string) (*Document, error) {
	return ParseFileWithLimits(path, Limits{})
}

// ParseFileWithLimits opens path and parses it with [ParseWithLimits].
func ParseFileWithLimits(path string, limits Limits) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open document").WithSubject(path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open document").WithSubject(path)
	}
	defer f.Close()

	doc, err := ParseWithLimits(f, limits)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}
