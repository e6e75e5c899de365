package flow

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/tree"
)

func loadFixture(t *testing.T, name string) tree.Element {
	t.Helper()
	doc, err := tree.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return doc.Root
}

func TestBuildSample(t *testing.T) {
	root := loadFixture(t, "sample.storyboard")

	nodes, cat, err := BuildCatalog(root, Options{})
	if err != nil {
		t.Fatalf("BuildCatalog() error: %v", err)
	}

	wantCatalog := map[string]string{
		"Ah7-4n-0Wa": "JBWDetailViewController",
		"rS3-R9-Ivy": "navigationController-rS3-R9-Ivy",
		"pGg-6v-bdr": "JBWMasterViewController",
	}
	if diff := cmp.Diff(wantCatalog, cat.Map()); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ah7-4n-0Wa", "rS3-R9-Ivy", "pGg-6v-bdr"}, cat.IDs()); diff != "" {
		t.Errorf("catalog order mismatch (-want +got):\n%s", diff)
	}

	wantNodes := []ControllerNode{
		{ID: "Ah7-4n-0Wa", DisplayName: "JBWDetailViewController", Kind: KindScreen, Tag: TagViewController},
		{ID: "rS3-R9-Ivy", DisplayName: "navigationController-rS3-R9-Ivy", Kind: KindNavigationContainer, Tag: TagNavigationController},
		{ID: "pGg-6v-bdr", DisplayName: "JBWMasterViewController", Kind: KindScreen, Tag: TagTableViewController},
	}
	if diff := cmp.Diff(wantNodes, nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	g, err := Build(root, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	wantEdges := []TransitionEdge{
		{ID: "RxB-wf-QIq", Source: "navigationController-rS3-R9-Ivy", Destination: "JBWMasterViewController", Kind: Relationship, Label: "navigation"},
		{ID: "jUr-3t-vfg", Source: "JBWMasterViewController", Destination: "JBWDetailViewController", Kind: Push, Label: "showDetailIdentifier"},
	}
	if diff := cmp.Diff(wantEdges, g.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if got := g.InitialNodeName(); got != "navigationController-rS3-R9-Ivy" {
		t.Errorf("InitialNodeName() = %q, want navigationController-rS3-R9-Ivy", got)
	}
}

func TestBuildUnwind(t *testing.T) {
	g, err := Build(loadFixture(t, "stickers.storyboard"), Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	const (
		nav   = "navigationController-Nav-01-aaa"
		grid  = "StickerGridViewController"
		shop  = "StickerShopViewController"
		legal = "LegalViewController"
		qr    = "ShowQRCodeViewController"
	)
	want := []TransitionEdge{
		{ID: "Seg-01-rel", Source: nav, Destination: grid, Kind: Relationship, Label: NavigationLabel},
		{ID: "Seg-02-pre", Source: grid, Destination: shop, Kind: Presentation, Label: "toStickerShopVC"},
		{ID: "Seg-03-pre", Source: grid, Destination: legal, Kind: Presentation, Label: "toLegalVC"},
		{ID: "Seg-04-psh", Source: grid, Destination: qr, Kind: Push, Label: ""},
		{ID: "Seg-05-unw", Source: shop, Destination: grid, Kind: Unwind, Label: "unwindToStickerGridVC", Distance: 8},
		{ID: "Seg-06-unw", Source: legal, Destination: grid, Kind: Unwind, Label: "unwindToStickerGridVC", Distance: 8},
		{ID: "Seg-07-unw", Source: qr, Destination: legal, Kind: Unwind, Label: "unwindToLegalVC", Distance: 8},
	}
	if diff := cmp.Diff(want, g.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	counts := g.KindCounts()
	if counts[Unwind] != 3 || counts[Presentation] != 2 || counts[Push] != 1 || counts[Relationship] != 1 {
		t.Errorf("KindCounts() = %v", counts)
	}
	if got := len(g.Outgoing(grid)); got != 3 {
		t.Errorf("Outgoing(%s) = %d edges, want 3", grid, got)
	}
	if got := len(g.Incoming(grid)); got != 3 {
		t.Errorf("Incoming(%s) = %d edges, want 3", grid, got)
	}
}

func TestBuildIdempotent(t *testing.T) {
	for _, name := range []string{"sample.storyboard", "stickers.storyboard"} {
		t.Run(name, func(t *testing.T) {
			root := loadFixture(t, name)
			first, err := Build(root, Options{})
			if err != nil {
				t.Fatalf("first Build() error: %v", err)
			}
			second, err := Build(loadFixture(t, name), Options{})
			if err != nil {
				t.Fatalf("second Build() error: %v", err)
			}
			if !first.Equal(second) {
				t.Error("two builds of the same document differ")
			}
		})
	}
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	root := loadFixture(t, "stickers.storyboard")
	seq, err := Build(root, Options{})
	if err != nil {
		t.Fatalf("sequential Build() error: %v", err)
	}
	for _, workers := range []int{2, 4, 16} {
		par, err := Build(root, Options{Workers: workers})
		if err != nil {
			t.Fatalf("Build(workers=%d) error: %v", workers, err)
		}
		if diff := cmp.Diff(seq.Edges(), par.Edges()); diff != "" {
			t.Errorf("workers=%d edges differ (-seq +par):\n%s", workers, diff)
		}
	}
}

func TestBuildParallelReportsEarliestError(t *testing.T) {
	root := tree.E("document", nil,
		tree.E(TagViewController, tree.Attrs{AttrID: "a", AttrCustomClass: "A"},
			tree.E(TagSegue, tree.Attrs{AttrID: "s1", AttrKind: "bogus"}),
		),
		tree.E(TagViewController, tree.Attrs{AttrID: "b", AttrCustomClass: "B"},
			tree.E(TagSegue, tree.Attrs{AttrID: "s2"}),
		),
	)
	for _, workers := range []int{0, 4} {
		_, err := Build(root, Options{Workers: workers})
		if !errors.Is(err, errors.ErrCodeUnknownTransitionKind) {
			t.Errorf("Build(workers=%d) error = %v, want %s", workers, err, errors.ErrCodeUnknownTransitionKind)
		}
	}
}

func TestAssembleGraphInitialUnknown(t *testing.T) {
	tests := []struct {
		name  string
		attrs tree.Attrs
	}{
		{"no attribute", tree.Attrs{}},
		{"empty attribute", tree.Attrs{AttrInitialViewController: ""}},
		{"dangling id", tree.Attrs{AttrInitialViewController: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree.E("document", tt.attrs,
				tree.E(TagViewController, tree.Attrs{AttrID: "a", AttrCustomClass: "A"}),
			)
			g, err := Build(root, Options{})
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if g.InitialNodeName() != Unknown {
				t.Errorf("InitialNodeName() = %q, want %q", g.InitialNodeName(), Unknown)
			}
		})
	}
}

func TestAssembleGraphCollapsesDuplicateNames(t *testing.T) {
	root := tree.E("document", tree.Attrs{AttrInitialViewController: "b"},
		tree.E(TagViewController, tree.Attrs{AttrID: "a"}),
		tree.E(TagViewController, tree.Attrs{AttrID: "b"},
			tree.E(TagSegue, tree.Attrs{AttrID: "s", AttrKind: "push", AttrDestination: "a"}),
		),
	)
	g, err := Build(root, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", g.NodeCount())
	}
	if n, _ := g.Node(Unknown); n.ID != "a" {
		t.Errorf("collapsed node id = %q, want first occurrence a", n.ID)
	}
	if g.InitialNodeName() != Unknown {
		t.Errorf("InitialNodeName() = %q", g.InitialNodeName())
	}
	if e := g.Edges()[0]; e.Source != Unknown || e.Destination != Unknown {
		t.Errorf("self edge = %+v", e)
	}
}

func TestAssembleGraphRejectsDanglingEdge(t *testing.T) {
	cat := newCatalog()
	_ = cat.add("a", "A")
	nodes := []ControllerNode{{ID: "a", DisplayName: "A"}}
	edges := []TransitionEdge{{ID: "s", Source: "A", Destination: "Ghost", Kind: Push}}

	_, err := AssembleGraph(nodes, edges, "a", cat)
	if !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Errorf("AssembleGraph() error = %v, want %s", err, errors.ErrCodeMalformedDocument)
	}
	if got := errors.SubjectOf(err); got != "s" {
		t.Errorf("SubjectOf() = %q, want s", got)
	}
}

func TestGraphAccessorsReturnCopies(t *testing.T) {
	g, err := Build(loadFixture(t, "sample.storyboard"), Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	nodes := g.Nodes()
	nodes[0].DisplayName = "mutated"
	edges := g.Edges()
	edges[0].Label = "mutated"

	if g.Nodes()[0].DisplayName == "mutated" {
		t.Error("Nodes() exposed internal storage")
	}
	if g.Edges()[0].Label == "mutated" {
		t.Error("Edges() exposed internal storage")
	}
}

func TestNewGraph(t *testing.T) {
	nodes := []ControllerNode{{ID: "a", DisplayName: "A"}, {ID: "b", DisplayName: "B"}}
	edges := []TransitionEdge{{ID: "s", Source: "A", Destination: "B", Kind: Unwind, Label: "unwindToB"}}

	g, err := NewGraph(nodes, edges, "")
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}
	if g.InitialNodeName() != Unknown {
		t.Errorf("InitialNodeName() = %q, want %q", g.InitialNodeName(), Unknown)
	}

	if _, err := NewGraph(append(nodes, ControllerNode{ID: "c", DisplayName: "A"}), nil, "A"); !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Errorf("NewGraph(duplicate) error = %v", err)
	}
	if _, err := NewGraph(nodes, []TransitionEdge{{ID: "x", Source: "A", Destination: "Z"}}, "A"); !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Errorf("NewGraph(dangling) error = %v", err)
	}

	tests := []struct {
		name    string
		nodes   []ControllerNode
		initial string
		subject string
	}{
		{"missing initial", nodes, "Ghost", "Ghost"},
		{"empty display name", append(nodes, ControllerNode{ID: "c"}), "A", "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes, nil, tt.initial)
			if !errors.Is(err, errors.ErrCodeMalformedDocument) {
				t.Fatalf("NewGraph() error = %v, want MALFORMED_DOCUMENT", err)
			}
			if got := errors.SubjectOf(err); got != tt.subject {
				t.Errorf("subject = %q, want %q", got, tt.subject)
			}
		})
	}
}

func TestGraphEqual(t *testing.T) {
	a, _ := NewGraph([]ControllerNode{{ID: "a", DisplayName: "A"}}, nil, "A")
	b, _ := NewGraph([]ControllerNode{{ID: "a", DisplayName: "A"}}, nil, "A")
	c, _ := NewGraph([]ControllerNode{{ID: "a", DisplayName: "A"}}, nil, Unknown)

	if !a.Equal(b) {
		t.Error("equal graphs reported different")
	}
	if a.Equal(c) {
		t.Error("graphs with different initial node reported equal")
	}
	if a.Equal(nil) {
		t.Error("graph equal to nil")
	}
}
