package flow

import "github.com/matzehuels/storyflow/pkg/tree"

// Default option values.
const (
	DefaultAbbreviation = "VC"
	DefaultLongForm     = "ViewController"
	DefaultMaxDepth     = tree.DefaultMaxDepth
	DefaultMaxChildren  = tree.DefaultMaxChildren
)

// Options tunes a build. The zero value uses the defaults above, strict kind
// matching and sequential extraction.
type Options struct {
	// Abbreviation is the short controller suffix authors use in unwind
	// identifiers; it is replaced by LongForm before matching.
	Abbreviation string
	LongForm     string

	// KindAliases maps extra document kind values (e.g. "show") onto the
	// recognized kinds. Unlisted values are rejected.
	KindAliases map[string]TransitionKind

	// Workers > 1 extracts transitions for that many controllers
	// concurrently. Output order is unaffected.
	Workers int

	// MaxDepth and MaxChildren bound the document traversal. Documents
	// loaded with [Options.Limits] are already held to the same bounds.
	MaxDepth    int
	MaxChildren int
}

func (o Options) withDefaults() Options {
	if o.Abbreviation == "" {
		o.Abbreviation = DefaultAbbreviation
	}
	if o.LongForm == "" {
		o.LongForm = DefaultLongForm
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxChildren <= 0 {
		o.MaxChildren = DefaultMaxChildren
	}
	return o
}

// Limits returns the parse limits matching the traversal bounds.
func (o Options) Limits() tree.Limits {
	o = o.withDefaults()
	return tree.Limits{MaxDepth: o.MaxDepth, MaxChildren: o.MaxChildren}
}

// kind resolves a document kind value, consulting aliases after the
// canonical names.
func (o Options) kind(s string) (TransitionKind, bool) {
	if k, ok := ParseTransitionKind(s); ok {
		return k, true
	}
	k, ok := o.KindAliases[s]
	return k, ok
}
