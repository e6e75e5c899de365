package flow

import "fmt"

// Document vocabulary.
const (
	TagViewController         = "viewController"
	TagTableViewController    = "tableViewController"
	TagNavigationController   = "navigationController"
	TagSegue                  = "segue"
	AttrID                    = "id"
	AttrCustomClass           = "customClass"
	AttrKind                  = "kind"
	AttrDestination           = "destination"
	AttrIdentifier            = "identifier"
	AttrInitialViewController = "initialViewController"
)

const (
	// Unknown names a screen without a custom type and an unresolved
	// initial controller.
	Unknown = "UNKNOWN"

	// NavigationLabel is the label of every relationship edge.
	NavigationLabel = "navigation"

	// NavigationPrefix prefixes the id of a navigation container to form its
	// display name.
	NavigationPrefix = "navigationController-"
)

// ControllerKind distinguishes content screens from navigation containers.
type ControllerKind int

const (
	KindScreen ControllerKind = iota
	KindNavigationContainer
)

func (k ControllerKind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindNavigationContainer:
		return "navigation-container"
	default:
		return fmt.Sprintf("ControllerKind(%d)", int(k))
	}
}

// controllerTags maps recognized controller tags to their kind.
var controllerTags = map[string]ControllerKind{
	TagViewController:       KindScreen,
	TagTableViewController:  KindScreen,
	TagNavigationController: KindNavigationContainer,
}

// IsControllerTag reports whether tag names a controller element.
func IsControllerTag(tag string) bool {
	_, ok := controllerTags[tag]
	return ok
}

// TransitionKind is the closed set of transition kinds.
type TransitionKind int

const (
	// Relationship is structural containment, e.g. a navigation container
	// to its root screen.
	Relationship TransitionKind = iota
	// Push is a forward transition onto a navigation stack.
	Push
	// Presentation is a forward modal transition.
	Presentation
	// Unwind is a backward transition whose destination is inferred from
	// its identifier.
	Unwind
)

// TransitionKinds lists every kind in declaration order.
var TransitionKinds = []TransitionKind{Relationship, Push, Presentation, Unwind}

func (k TransitionKind) String() string {
	switch k {
	case Relationship:
		return "relationship"
	case Push:
		return "push"
	case Presentation:
		return "presentation"
	case Unwind:
		return "unwind"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// ParseTransitionKind converts a document kind value to a TransitionKind.
func ParseTransitionKind(s string) (TransitionKind, bool) {
	for _, k := range TransitionKinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ControllerNode is one screen or navigation container.
type ControllerNode struct {
	ID          string         // element id from the document
	DisplayName string         // graph node identity
	Kind        ControllerKind // screen or navigation container
	Tag         string         // source element tag
}

// TransitionEdge is one directed transition between two controllers,
// referenced by display name.
type TransitionEdge struct {
	ID          string
	Source      string
	Destination string
	Kind        TransitionKind
	Label       string

	// Distance is the edit distance of the unwind resolution that chose
	// Destination. Always 0 for other kinds.
	Distance int
}
