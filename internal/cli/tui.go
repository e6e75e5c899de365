package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/storyflow/pkg/flow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	paneActiveStyle   = paneStyle.BorderForeground(colorCyan)
)

// pane identifies which list has keyboard focus.
type pane int

const (
	paneScreens pane = iota
	paneTransitions
)

// =============================================================================
// ExploreModel - interactive graph browser
// =============================================================================

// ExploreModel is the bubbletea model for browsing screens and following
// their outgoing transitions.
type ExploreModel struct {
	Graph   *flow.Graph
	Screens []flow.ControllerNode

	Cursor int // selected screen
	Edge   int // selected outgoing transition
	Focus  pane

	// History holds the screens left by following transitions, most recent
	// last, so backspace can retrace the path.
	History []int

	Height int
	Offset int
}

// NewExploreModel creates a browser over g with the initial screen selected.
func NewExploreModel(g *flow.Graph) ExploreModel {
	m := ExploreModel{Graph: g, Screens: g.Nodes(), Height: 15}
	if i := m.indexOf(g.InitialNodeName()); i >= 0 {
		m.Cursor = i
		m.scroll()
	}
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

// Current returns the selected screen.
func (m ExploreModel) Current() flow.ControllerNode {
	if len(m.Screens) == 0 {
		return flow.ControllerNode{}
	}
	return m.Screens[m.Cursor]
}

func (m ExploreModel) outgoing() []flow.TransitionEdge {
	return m.Graph.Outgoing(m.Current().DisplayName)
}

func (m ExploreModel) indexOf(name string) int {
	for i, n := range m.Screens {
		if n.DisplayName == name {
			return i
		}
	}
	return -1
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.Focus == paneScreens && len(m.outgoing()) > 0 {
				m.Focus = paneTransitions
			} else {
				m.Focus = paneScreens
			}
		case "esc":
			m.Focus = paneScreens
		case "up", "k":
			if m.Focus == paneTransitions {
				if m.Edge > 0 {
					m.Edge--
				}
			} else if m.Cursor > 0 {
				m.Cursor--
				m.Edge = 0
			}
		case "down", "j":
			if m.Focus == paneTransitions {
				if m.Edge < len(m.outgoing())-1 {
					m.Edge++
				}
			} else if m.Cursor < len(m.Screens)-1 {
				m.Cursor++
				m.Edge = 0
			}
		case "enter", "right", "l":
			out := m.outgoing()
			if len(out) == 0 {
				return m, nil
			}
			if m.Focus == paneScreens {
				m.Focus = paneTransitions
				return m, nil
			}
			if i := m.indexOf(out[m.Edge].Destination); i >= 0 {
				m.History = append(m.History, m.Cursor)
				m.Cursor, m.Edge = i, 0
			}
		case "backspace", "left", "h":
			if n := len(m.History); n > 0 {
				m.Cursor, m.History, m.Edge = m.History[n-1], m.History[:n-1], 0
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Storyboard Explorer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab switch pane  ⏎ follow  ⌫ back  q quit"))
	b.WriteString("\n\n")

	screens, transitions := paneStyle, paneStyle
	if m.Focus == paneScreens {
		screens = paneActiveStyle
	} else {
		transitions = paneActiveStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		screens.Render(m.screensView()),
		transitions.Render(m.transitionsView()),
	))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Screens))))
	if len(m.History) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  depth %d", len(m.History))))
	}
	return b.String()
}

func (m ExploreModel) screensView() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Screens"))
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.Screens))
	initial := m.Graph.InitialNodeName()
	for i := m.Offset; i < end; i++ {
		n := m.Screens[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		if n.DisplayName == initial {
			marker = "*"
		}
		line := fmt.Sprintf("%s%s %s", cursor, marker, n.DisplayName)
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.Kind == flow.KindNavigationContainer:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m ExploreModel) transitionsView() string {
	var b strings.Builder
	cur := m.Current()

	b.WriteString(styleHeader.Render("Outgoing"))
	b.WriteString("\n")
	out := m.outgoing()
	if len(out) == 0 {
		b.WriteString(listDimStyle.Render("  none"))
		b.WriteString("\n")
	}
	for i, e := range out {
		cursor := "  "
		if m.Focus == paneTransitions && i == m.Edge {
			cursor = "▸ "
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s", cursor, styleKind(e.Kind), iconArrow, e.Destination))
		if e.Label != "" && e.Kind != flow.Relationship {
			b.WriteString(listDimStyle.Render("  " + e.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHeader.Render("Incoming"))
	b.WriteString("\n")
	in := m.Graph.Incoming(cur.DisplayName)
	if len(in) == 0 {
		b.WriteString(listDimStyle.Render("  none"))
	}
	for i, e := range in {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s", e.Source, iconArrow, styleKind(e.Kind)))
	}
	return b.String()
}
