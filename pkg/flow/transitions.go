package flow

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/levenshtein"
	"github.com/matzehuels/storyflow/pkg/tree"
)

// ExtractTransitions turns the segues of every controller under root into
// edges, in document order. The first malformed segue aborts extraction.
//
// Segues are attributed to their nearest enclosing controller; a controller
// nested inside another is visited on its own and not re-entered from its
// parent.
func ExtractTransitions(root tree.Element, cat *Catalog, opts Options) ([]TransitionEdge, error) {
	opts = opts.withDefaults()
	x := extractor{cat: cat, candidates: cat.Names(), opts: opts}
	controllers := tree.FindAll(root, TagViewController, TagTableViewController, TagNavigationController)

	perController := make([][]TransitionEdge, len(controllers))
	if opts.Workers > 1 {
		errs := make([]error, len(controllers))
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i, c := range controllers {
			g.Go(func() error {
				perController[i], errs[i] = x.controller(c)
				return nil
			})
		}
		_ = g.Wait()
		// Report the earliest failure in document order, as a sequential
		// pass would.
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	} else {
		for i, c := range controllers {
			edges, err := x.controller(c)
			if err != nil {
				return nil, err
			}
			perController[i] = edges
		}
	}

	var edges []TransitionEdge
	for _, es := range perController {
		edges = append(edges, es...)
	}
	return edges, nil
}

type extractor struct {
	cat        *Catalog
	candidates []string
	opts       Options
}

func (x extractor) controller(c tree.Element) ([]TransitionEdge, error) {
	id, _ := c.Attr(AttrID)
	source, ok := x.cat.Lookup(id)
	if !ok {
		return nil, errors.Malformed(id, "%s %q is not in the catalog", c.Tag(), id)
	}

	var edges []TransitionEdge
	err := tree.Walk(c, func(e tree.Element, depth int) error {
		if depth > 0 && IsControllerTag(e.Tag()) {
			return tree.SkipChildren
		}
		if e.Tag() != TagSegue {
			return nil
		}
		edge, err := x.segue(e, source, id)
		if err != nil {
			return err
		}
		edges = append(edges, edge)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func (x extractor) segue(s tree.Element, source, controllerID string) (TransitionEdge, error) {
	id, ok := s.Attr(AttrID)
	if !ok || id == "" {
		return TransitionEdge{}, errors.Malformed(controllerID, "segue in controller %q has no %s", controllerID, AttrID)
	}
	kindValue, ok := s.Attr(AttrKind)
	if !ok || kindValue == "" {
		return TransitionEdge{}, errors.Malformed(id, "segue %q has no %s", id, AttrKind)
	}
	kind, ok := x.opts.kind(kindValue)
	if !ok {
		return TransitionEdge{}, errors.UnknownKind(kindValue, id)
	}

	edge := TransitionEdge{ID: id, Source: source, Kind: kind}
	identifier, _ := s.Attr(AttrIdentifier)

	switch kind {
	case Relationship:
		dest, err := x.destination(s, id)
		if err != nil {
			return TransitionEdge{}, err
		}
		edge.Destination = dest
		edge.Label = NavigationLabel
	case Push, Presentation:
		dest, err := x.destination(s, id)
		if err != nil {
			return TransitionEdge{}, err
		}
		edge.Destination = dest
		edge.Label = identifier
	case Unwind:
		if identifier == "" {
			return TransitionEdge{}, errors.Malformed(id, "unwind segue %q has no %s to resolve", id, AttrIdentifier)
		}
		m, err := levenshtein.Nearest(x.normalize(identifier), x.candidates)
		if err != nil {
			return TransitionEdge{}, err
		}
		edge.Destination = m.Candidate
		edge.Distance = m.Distance
		edge.Label = identifier
	default:
		return TransitionEdge{}, errors.New(errors.ErrCodeInternal, "unhandled transition kind %v", kind).WithSubject(id)
	}
	return edge, nil
}

func (x extractor) destination(s tree.Element, segueID string) (string, error) {
	destID, ok := s.Attr(AttrDestination)
	if !ok || destID == "" {
		return "", errors.Malformed(segueID, "segue %q has no %s", segueID, AttrDestination)
	}
	name, ok := x.cat.Lookup(destID)
	if !ok {
		return "", errors.Malformed(destID, "segue %q points at unknown controller %q", segueID, destID)
	}
	return name, nil
}

// normalize expands the abbreviated controller suffix so an unwind identifier
// is comparable to display names.
func (x extractor) normalize(identifier string) string {
	return strings.ReplaceAll(identifier, x.opts.Abbreviation, x.opts.LongForm)
}

// NormalizeIdentifier applies the unwind identifier normalization of opts.
func NormalizeIdentifier(identifier string, opts Options) string {
	return extractor{opts: opts.withDefaults()}.normalize(identifier)
}
