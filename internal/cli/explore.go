package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/viewport"
)

// Explorer key steps.
const (
	panStep    = 50.0
	zoomInStep = 1.25
	maxRows    = 20
)

var (
	exploreKeyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	exploreHeadStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var noCache bool
	var sf styleFlags

	cmd := &cobra.Command{
		Use:   "explore [source]",
		Short: "Pan and zoom a graph in the terminal",
		Long: `Pan and zoom a graph in the terminal.

The viewport starts centered on the drawing, like the HTML page. Arrow keys
(or h/j/k/l) pan, + and - zoom around the center, f fits the drawing, 0
returns to the initial view. The table lists the groups and nodes in view
with their viewport coordinates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx, firstArg(args), runnerOpts{noCache: noCache})
			if err != nil {
				return err
			}
			defer sess.Close(context.WithoutCancel(ctx))

			opts := sess.opts
			sf.apply(cmd, &opts)
			res, err := sess.runner.Run(ctx, opts)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewExploreModel(res), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	sf.register(cmd)

	return cmd
}

// =============================================================================
// ExploreModel - Interactive viewport
// =============================================================================

// ExploreModel is the bubbletea model of the explorer. Key presses become
// viewport deltas; the pipeline is never re-run.
type ExploreModel struct {
	Title    string
	Viewport *viewport.Controller
	Layout   *layout.PositionedGraph
	Bounds   layout.Rect

	initial viewport.Transform
}

// NewExploreModel creates an explorer over a finished pipeline run.
func NewExploreModel(res *pipeline.Result) ExploreModel {
	title := res.Title
	if title == "" {
		title = appName
	}
	return ExploreModel{
		Title:    title,
		Viewport: res.Viewport,
		Layout:   res.Layout,
		Bounds:   res.Bounds,
		initial:  res.Viewport.Transform(),
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	w, h := m.Viewport.Size()
	zoom := func(factor float64) {
		m.Viewport.OnTransformChange(viewport.Delta{Scale: factor, PX: w / 2, PY: h / 2})
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.Viewport.OnTransformChange(viewport.Delta{DX: panStep})
	case "right", "l":
		m.Viewport.OnTransformChange(viewport.Delta{DX: -panStep})
	case "up", "k":
		m.Viewport.OnTransformChange(viewport.Delta{DY: panStep})
	case "down", "j":
		m.Viewport.OnTransformChange(viewport.Delta{DY: -panStep})
	case "+", "=":
		zoom(zoomInStep)
	case "-", "_":
		zoom(1 / zoomInStep)
	case "f":
		k := m.Viewport.FitScale(m.Bounds)
		m.Viewport.Set(viewport.Transform{
			X: (w-m.Bounds.Width*k)/2 - m.Bounds.X*k,
			Y: (h-m.Bounds.Height*k)/2 - m.Bounds.Y*k,
			K: k,
		})
	case "0":
		m.Viewport.Set(m.initial)
	}
	return m, nil
}

// visibleItem is a group or node inside the viewport.
type visibleItem struct {
	kind  string
	id    string
	label string
	at    layout.Point
}

// visible lists the groups, then the nodes, whose boxes intersect the
// viewport, with their centers in viewport coordinates.
func (m ExploreModel) visible() []visibleItem {
	t := m.Viewport.Transform()
	view := t.Visible(m.Viewport.Size())

	var items []visibleItem
	add := func(kind string, boxes []layout.Box) {
		for _, b := range boxes {
			if intersects(b.Bounds(), view) {
				items = append(items, visibleItem{
					kind:  kind,
					id:    b.ID,
					label: b.Label,
					at:    t.Apply(layout.Point{X: b.X, Y: b.Y}),
				})
			}
		}
	}
	add("group", m.Layout.Groups)
	add("node", m.Layout.Nodes)
	return items
}

func intersects(a, b layout.Rect) bool {
	return a.X < b.MaxX() && b.X < a.MaxX() && a.Y < b.MaxY() && b.Y < a.MaxY()
}

func (m ExploreModel) View() string {
	var b strings.Builder

	t := m.Viewport.Transform()
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%.0f%%", t.K*100)))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(t.String()))
	b.WriteString("\n")
	b.WriteString(exploreKeyStyle.Render("←↑↓→ pan  +/- zoom  f fit  0 reset  q quit"))
	b.WriteString("\n\n")

	items := m.visible()
	rows := make([][]string, 0, min(len(items), maxRows))
	for i, it := range items {
		if i == maxRows {
			break
		}
		rows = append(rows, []string{
			it.kind,
			it.id,
			it.label,
			fmt.Sprintf("%.0f, %.0f", it.at.X, it.at.Y),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "ID", "Label", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return exploreHeadStyle
			}
			if col == 1 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(tbl.Render())
	b.WriteString("\n")

	summary := fmt.Sprintf("  %d of %d nodes in view", countKind(items, "node"), len(m.Layout.Nodes))
	if len(items) > maxRows {
		summary += fmt.Sprintf(", %d more not listed", len(items)-maxRows)
	}
	b.WriteString(StyleDim.Render(summary))
	return b.String()
}

func countKind(items []visibleItem, kind string) int {
	n := 0
	for _, it := range items {
		if it.kind == kind {
			n++
		}
	}
	return n
}
