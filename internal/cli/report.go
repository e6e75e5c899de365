package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/levenshtein"
	"github.com/matzehuels/storyflow/pkg/pipeline"
)

// rootAttrs are the document root attributes shown in the report header.
var rootAttrs = []string{
	"type", "version", "toolsVersion", "targetRuntime", "useAutolayout", flow.AttrInitialViewController,
}

// writeReport prints the root info, controllers, catalog and transitions of
// a pipeline result.
func writeReport(w io.Writer, res *pipeline.Result, opts flow.Options) {
	printSection(w, "Document")
	if res.Document != nil && res.Document.Path != "" {
		printKeyValue(w, "path", res.Document.Path)
	}
	if res.Document != nil && res.Document.Root != nil {
		for _, name := range rootAttrs {
			if v, ok := res.Document.Root.Attr(name); ok {
				printKeyValue(w, name, v)
			}
		}
	}
	printKeyValue(w, "initial", res.Graph.InitialNodeName())
	printStats(w, res.Graph.NodeCount(), res.Graph.EdgeCount(), res.CacheInfo.RenderHit)

	printSection(w, "Controllers")
	fmt.Fprintln(w, controllerTable(res.Nodes))

	printSection(w, "Catalog")
	if res.Catalog != nil {
		for _, id := range res.Catalog.IDs() {
			name, _ := res.Catalog.Lookup(id)
			printKeyValue(w, id, name)
		}
	}

	printSection(w, "Transitions")
	if res.Graph.EdgeCount() == 0 {
		printDetail(w, "none")
		return
	}
	fmt.Fprintln(w, transitionTable(res.Graph.Edges(), opts))

	counts := res.Graph.KindCounts()
	parts := make([]string, 0, len(flow.TransitionKinds))
	for _, k := range flow.TransitionKinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	printDetail(w, "%s", strings.Join(parts, ", "))
}

func controllerTable(nodes []flow.ControllerNode) string {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.ID, n.DisplayName, n.Kind.String(), n.Tag})
	}
	return newTable("ID", "Name", "Kind", "Tag").Rows(rows...).Render()
}

func transitionTable(edges []flow.TransitionEdge, opts flow.Options) string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{
			e.ID, e.Source, iconArrow, e.Destination, styleKind(e.Kind), e.Label, unwindConfidence(e, opts),
		})
	}
	return newTable("ID", "From", "", "To", "Kind", "Label", "Match").Rows(rows...).Render()
}

// unwindConfidence reports how closely an unwind identifier matched the
// screen it was resolved to, as a percentage. Other kinds show nothing.
func unwindConfidence(e flow.TransitionEdge, opts flow.Options) string {
	if e.Kind != flow.Unwind {
		return ""
	}
	target := flow.NormalizeIdentifier(e.Label, opts)
	return fmt.Sprintf("%.0f%% (d=%d)", levenshtein.Similarity(target, e.Destination), e.Distance)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
