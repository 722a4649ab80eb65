package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newBrowseCmd creates the browse command: an interactive terminal
// browser over the nodes of a decoded recording.
func newBrowseCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "browse <file.graphml>",
		Short: "Browse a recording interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}
			model := newGraphBrowserModel(g, args[0])
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	return cmd
}

// =============================================================================
// GraphBrowserModel - Interactive node browsing
// =============================================================================

// GraphBrowserModel is the bubbletea model for browsing a decoded graph.
// It shows a scrollable node table; selecting a node opens a detail pane
// with the node's incident edges.
type GraphBrowserModel struct {
	graph  *pagegraph.Graph
	title  string
	nodes  []*pagegraph.Node
	cursor int
	height int
	offset int
	detail *pagegraph.Node // non-nil when the detail pane is open
}

// newGraphBrowserModel creates a browser over all nodes of g.
func newGraphBrowserModel(g *pagegraph.Graph, title string) GraphBrowserModel {
	return GraphBrowserModel{
		graph:  g,
		title:  title,
		nodes:  g.Nodes(),
		height: 15,
	}
}

func (m GraphBrowserModel) Init() tea.Cmd {
	return nil
}

func (m GraphBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.detail == nil && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.detail == nil && m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.detail == nil && len(m.nodes) > 0 {
				m.detail = m.nodes[m.cursor]
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m GraphBrowserModel) View() string {
	if m.detail != nil {
		return m.detailView()
	}
	return m.listView()
}

func (m GraphBrowserModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		in, out := m.degrees(n.ID)
		rows = append(rows, []string{
			cursor,
			string(n.ID),
			pagegraph.NodeKind(n.Type),
			clip(nodeDetail(n.Type), 40),
			fmt.Sprintf("%d/%d", in, out),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Kind", "Detail", "In/Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))

	return b.String()
}

func (m GraphBrowserModel) detailView() string {
	n := m.detail
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Node %s", n.ID)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  kind:   %s\n", pagegraph.NodeKind(n.Type)))
	if d := nodeDetail(n.Type); d != "" {
		b.WriteString(fmt.Sprintf("  detail: %s\n", clip(d, 70)))
	}
	if n.Timestamp != nil {
		b.WriteString(fmt.Sprintf("  ts:     %d\n", *n.Timestamp))
	}
	b.WriteString("\n")

	incoming, _ := m.graph.IncidentEdges(n.ID, pagegraph.Incoming)
	outgoing, _ := m.graph.IncidentEdges(n.ID, pagegraph.Outgoing)

	b.WriteString(StyleValue.Render(fmt.Sprintf("  Incoming (%d)", len(incoming))))
	b.WriteString("\n")
	for _, e := range limitEdges(incoming) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("    %s %s %s  %s\n",
			e.Source, iconArrow, e.Target, pagegraph.EdgeKind(e.Type))))
	}

	b.WriteString(StyleValue.Render(fmt.Sprintf("  Outgoing (%d)", len(outgoing))))
	b.WriteString("\n")
	for _, e := range limitEdges(outgoing) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("    %s %s %s  %s\n",
			e.Source, iconArrow, e.Target, pagegraph.EdgeKind(e.Type))))
	}

	return b.String()
}

// degrees returns the in and out degree of a node.
func (m GraphBrowserModel) degrees(id pagegraph.NodeID) (int, int) {
	incoming, _ := m.graph.IncidentEdges(id, pagegraph.Incoming)
	outgoing, _ := m.graph.IncidentEdges(id, pagegraph.Outgoing)
	return len(incoming), len(outgoing)
}

// maxDetailEdges caps the edge listing in the detail pane.
const maxDetailEdges = 20

func limitEdges(edges []*pagegraph.Edge) []*pagegraph.Edge {
	if len(edges) > maxDetailEdges {
		return edges[:maxDetailEdges]
	}
	return edges
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
