package flow

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/tree"
)

func screen(id, class string, children ...*tree.Node) *tree.Node {
	return tree.E(TagViewController, tree.Attrs{AttrID: id, AttrCustomClass: class}, children...)
}

func segue(attrs tree.Attrs) *tree.Node {
	return tree.E(TagSegue, attrs)
}

func extract(t *testing.T, root *tree.Node, opts Options) ([]TransitionEdge, error) {
	t.Helper()
	_, cat, err := BuildCatalog(root, opts)
	if err != nil {
		t.Fatalf("BuildCatalog() error: %v", err)
	}
	return ExtractTransitions(root, cat, opts)
}

func TestExtractTransitionsLabels(t *testing.T) {
	root := tree.E("document", nil,
		tree.E(TagNavigationController, tree.Attrs{AttrID: "nav"},
			tree.E("connections", nil,
				segue(tree.Attrs{AttrID: "r1", AttrKind: "relationship", AttrDestination: "a", AttrIdentifier: "ignored"}),
			),
		),
		screen("a", "HomeViewController",
			tree.E("connections", nil,
				segue(tree.Attrs{AttrID: "p1", AttrKind: "push", AttrDestination: "b", AttrIdentifier: "showDetail"}),
				segue(tree.Attrs{AttrID: "m1", AttrKind: "presentation", AttrDestination: "b"}),
			),
		),
		screen("b", "DetailViewController"),
	)

	got, err := extract(t, root, Options{})
	if err != nil {
		t.Fatalf("ExtractTransitions() error: %v", err)
	}
	want := []TransitionEdge{
		{ID: "r1", Source: "navigationController-nav", Destination: "HomeViewController", Kind: Relationship, Label: NavigationLabel},
		{ID: "p1", Source: "HomeViewController", Destination: "DetailViewController", Kind: Push, Label: "showDetail"},
		{ID: "m1", Source: "HomeViewController", Destination: "DetailViewController", Kind: Presentation, Label: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTransitionsUnwind(t *testing.T) {
	tests := []struct {
		name         string
		identifier   string
		wantDest     string
		wantDistance int
	}{
		{"abbreviated", "unwindToHomeVC", "HomeViewController", 8},
		{"already long form", "unwindToDetailViewController", "DetailViewController", 8},
		{"exact name", "HomeViewController", "HomeViewController", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree.E("document", nil,
				screen("a", "HomeViewController"),
				screen("b", "DetailViewController",
					segue(tree.Attrs{AttrID: "u", AttrKind: "unwind", AttrIdentifier: tt.identifier}),
				),
			)
			got, err := extract(t, root, Options{})
			if err != nil {
				t.Fatalf("ExtractTransitions() error: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d edges, want 1", len(got))
			}
			if got[0].Destination != tt.wantDest {
				t.Errorf("Destination = %q, want %q", got[0].Destination, tt.wantDest)
			}
			if got[0].Distance != tt.wantDistance {
				t.Errorf("Distance = %d, want %d", got[0].Distance, tt.wantDistance)
			}
			if got[0].Label != tt.identifier {
				t.Errorf("Label = %q, want raw identifier %q", got[0].Label, tt.identifier)
			}
		})
	}
}

func TestExtractTransitionsUnwindTieGoesToFirst(t *testing.T) {
	root := tree.E("document", nil,
		screen("a", "Alpha"),
		screen("b", "Omega",
			segue(tree.Attrs{AttrID: "u", AttrKind: "unwind", AttrIdentifier: "zzzzz"}),
		),
	)
	got, err := extract(t, root, Options{})
	if err != nil {
		t.Fatalf("ExtractTransitions() error: %v", err)
	}
	if got[0].Destination != "Alpha" || got[0].Distance != 5 {
		t.Errorf("resolved to %q (distance %d), want Alpha (5)", got[0].Destination, got[0].Distance)
	}
}

func TestExtractTransitionsUnwindIgnoresDestination(t *testing.T) {
	root := tree.E("document", nil,
		screen("a", "HomeViewController"),
		screen("b", "DetailViewController",
			segue(tree.Attrs{AttrID: "u", AttrKind: "unwind", AttrIdentifier: "unwindToHomeVC", AttrDestination: "missing"}),
		),
	)
	got, err := extract(t, root, Options{})
	if err != nil {
		t.Fatalf("ExtractTransitions() error: %v", err)
	}
	if got[0].Destination != "HomeViewController" {
		t.Errorf("Destination = %q, want HomeViewController", got[0].Destination)
	}
}

func TestExtractTransitionsCustomAbbreviation(t *testing.T) {
	root := tree.E("document", nil,
		screen("a", "HomeScreen"),
		screen("b", "SettingsScreen",
			segue(tree.Attrs{AttrID: "u", AttrKind: "unwind", AttrIdentifier: "backToHomeScr"}),
		),
	)
	got, err := extract(t, root, Options{Abbreviation: "Scr", LongForm: "Screen"})
	if err != nil {
		t.Fatalf("ExtractTransitions() error: %v", err)
	}
	if got[0].Destination != "HomeScreen" {
		t.Errorf("Destination = %q, want HomeScreen", got[0].Destination)
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		opts Options
		want string
	}{
		{"unwindToStickerGridVC", Options{}, "unwindToStickerGridViewController"},
		{"VCtoVC", Options{}, "ViewControllertoViewController"},
		{"unwindToMain", Options{}, "unwindToMain"},
		{"", Options{}, ""},
		{"backToHomeScr", Options{Abbreviation: "Scr", LongForm: "Screen"}, "backToHomeScreen"},
	}

	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.in, tt.opts); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTransitionsNestedControllers(t *testing.T) {
	root := tree.E("document", nil,
		screen("outer", "ContainerViewController",
			tree.E("view", nil,
				tree.E("containerView", nil,
					screen("inner", "EmbeddedViewController",
						segue(tree.Attrs{AttrID: "in", AttrKind: "push", AttrDestination: "outer"}),
					),
				),
			),
			segue(tree.Attrs{AttrID: "out", AttrKind: "presentation", AttrDestination: "inner"}),
		),
	)
	got, err := extract(t, root, Options{})
	if err != nil {
		t.Fatalf("ExtractTransitions() error: %v", err)
	}
	want := []TransitionEdge{
		{ID: "out", Source: "ContainerViewController", Destination: "EmbeddedViewController", Kind: Presentation},
		{ID: "in", Source: "EmbeddedViewController", Destination: "ContainerViewController", Kind: Push},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTransitionsKindAliases(t *testing.T) {
	root := tree.E("document", nil,
		screen("a", "A", segue(tree.Attrs{AttrID: "s", AttrKind: "show", AttrDestination: "b"})),
		screen("b", "B"),
	)

	if _, err := extract(t, root, Options{}); !errors.Is(err, errors.ErrCodeUnknownTransitionKind) {
		t.Fatalf("strict error = %v, want %s", err, errors.ErrCodeUnknownTransitionKind)
	}

	got, err := extract(t, root, Options{KindAliases: map[string]TransitionKind{"show": Push}})
	if err != nil {
		t.Fatalf("aliased ExtractTransitions() error: %v", err)
	}
	if got[0].Kind != Push {
		t.Errorf("Kind = %v, want push", got[0].Kind)
	}
}

func TestExtractTransitionsErrors(t *testing.T) {
	tests := []struct {
		name        string
		segue       tree.Attrs
		wantCode    errors.Code
		wantSubject string
	}{
		{
			name:        "missing id",
			segue:       tree.Attrs{AttrKind: "push", AttrDestination: "b"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "a",
		},
		{
			name:        "missing kind",
			segue:       tree.Attrs{AttrID: "s", AttrDestination: "b"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
		{
			name:        "unknown kind",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "teleport", AttrDestination: "b"},
			wantCode:    errors.ErrCodeUnknownTransitionKind,
			wantSubject: "teleport",
		},
		{
			name:        "kind is case sensitive",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "Push", AttrDestination: "b"},
			wantCode:    errors.ErrCodeUnknownTransitionKind,
			wantSubject: "Push",
		},
		{
			name:        "push without destination",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "push"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
		{
			name:        "presentation without destination",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "presentation"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
		{
			name:        "presentation with empty destination",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "presentation", AttrDestination: ""},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
		{
			name:        "relationship without destination",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "relationship"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
		{
			name:        "relationship to unknown controller",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "relationship", AttrDestination: "ghost"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "ghost",
		},
		{
			name:        "unwind without identifier",
			segue:       tree.Attrs{AttrID: "s", AttrKind: "unwind"},
			wantCode:    errors.ErrCodeMalformedDocument,
			wantSubject: "s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree.E("document", nil,
				screen("a", "A",
					segue(tree.Attrs{AttrID: "ok", AttrKind: "push", AttrDestination: "b"}),
					segue(tt.segue),
				),
				screen("b", "B"),
			)
			edges, err := extract(t, root, Options{})
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("ExtractTransitions() error = %v, want %s", err, tt.wantCode)
			}
			if edges != nil {
				t.Errorf("partial edges returned on error: %v", edges)
			}
			if got := errors.SubjectOf(err); got != tt.wantSubject {
				t.Errorf("SubjectOf() = %q, want %q", got, tt.wantSubject)
			}
			if _, err := Build(root, Options{}); !errors.Is(err, tt.wantCode) {
				t.Errorf("Build() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestParseTransitionKind(t *testing.T) {
	for _, k := range TransitionKinds {
		got, ok := ParseTransitionKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseTransitionKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseTransitionKind("modal"); ok {
		t.Error("ParseTransitionKind(modal) accepted")
	}
}
