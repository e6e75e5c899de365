// Package flow builds a screen-transition graph from a navigation-flow
// document.
//
// # Pipeline
//
// A build runs four strictly linear stages, each a pure function of the
// previous stage's output:
//
//  1. Load: the caller parses the document into a [tree.Element]
//  2. [BuildCatalog]: collect controller elements and name them
//  3. [ExtractTransitions]: turn each controller's segues into edges
//  4. [AssembleGraph]: combine nodes, edges and the initial controller
//
// [Build] runs stages 2–4. Any error aborts the run; nothing is retried and no
// partial graph is returned.
//
// # Controllers
//
// Recognized controller tags are viewController and tableViewController
// (screens, named by their customClass attribute or "UNKNOWN") and
// navigationController (named "navigationController-" + id). The [Catalog]
// maps element ids to these display names for the duration of one build.
//
// # Transitions
//
// Every segue under a controller becomes a [TransitionEdge] of one of four
// kinds. Relationship, push and presentation segues point at their
// destination by id. Unwind segues do not: their destination is guessed from
// the author's identifier (e.g. "unwindToMasterVC") by expanding the "VC"
// abbreviation and picking the display name with the smallest edit distance.
// This is best-effort. A badly named identifier resolves to whichever screen
// happens to be lexically closest, and equidistant candidates resolve to the
// earliest controller in document order.
//
// # Determinism
//
// Nodes and edges are kept in document order, never in map order, so building
// the same document twice yields equal graphs ([Graph.Equal]).
package flow
