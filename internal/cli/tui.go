package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relief/pkg/heightmap"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/recipe"
	"github.com/matzehuels/relief/pkg/render"
	"github.com/matzehuels/relief/pkg/stats"
)

var (
	shadeStyle      = lipgloss.NewStyle().Foreground(colorCyan)
	previewDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	previewTabStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewCurStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// shadeGrid renders g as styled ASCII shading, at most cols by rows.
func shadeGrid(g *heightmap.Grid, cols, rows int) []string {
	lines := render.Shade(g, cols, rows)
	for i, l := range lines {
		lines[i] = shadeStyle.Render(l)
	}
	return lines
}

// =============================================================================
// PreviewModel - Interactive stage browser
// =============================================================================

// StageView is one grid shown by the preview.
type StageView struct {
	Title   string
	Grid    *heightmap.Grid
	Summary stats.Summary
}

// PreviewModel is the bubbletea model for browsing a recipe's stages.
type PreviewModel struct {
	Stages []StageView
	Cursor int
	Width  int
	Height int
}

// NewPreviewModel creates a preview positioned on the final stage.
func NewPreviewModel(stages []StageView) PreviewModel {
	return PreviewModel{
		Stages: stages,
		Cursor: max(len(stages)-1, 0),
		Width:  80,
		Height: 24,
	}
}

// stageViews lists the recipe's first input followed by every step output.
func stageViews(rec *recipe.Recipe, result *pipeline.Result) []StageView {
	views := make([]StageView, 0, len(result.Stages)+1)
	if len(rec.Inputs) > 0 {
		if g := result.Named[rec.Inputs[0]]; g != nil {
			views = append(views, StageView{
				Title:   "input " + rec.Inputs[0],
				Grid:    g,
				Summary: stats.Summarize(g, 0),
			})
		}
	}
	for _, st := range result.Stages {
		title := fmt.Sprintf("step %d %s", st.Index, st.Op)
		if st.Name != "" {
			title += " → " + st.Name
		}
		if st.Cached {
			title += " (" + iconCached + ")"
		}
		views = append(views, StageView{
			Title:   title,
			Grid:    st.Grid,
			Summary: stats.Summarize(st.Grid, 0),
		})
	}
	return views
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "up", "k", "shift+tab":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "right", "l", "down", "j", "tab":
			if m.Cursor < len(m.Stages)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Stages)-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m PreviewModel) View() string {
	if len(m.Stages) == 0 {
		return previewDimStyle.Render("no stages") + "\n"
	}
	st := m.Stages[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("[%d/%d] %s", m.Cursor+1, len(m.Stages), st.Title)))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	// title, tabs, blank, blank, stats, help
	cols, rows := max(m.Width-2, 8), max(m.Height-6, 4)
	for _, line := range shadeGrid(st.Grid, cols, rows) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render(summaryLine(st.Summary)))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("←/→ stage  g/G first/last  q quit"))
	return b.String()
}

// tabs renders one marker per stage with the current one highlighted.
func (m PreviewModel) tabs() string {
	marks := make([]string, len(m.Stages))
	for i := range m.Stages {
		if i == m.Cursor {
			marks[i] = previewCurStyle.Render("●")
		} else {
			marks[i] = previewTabStyle.Render("○")
		}
	}
	return strings.Join(marks, " ")
}

func summaryLine(s stats.Summary) string {
	line := fmt.Sprintf("%d×%d", s.Height, s.Width)
	if s.Finite() > 0 {
		line += fmt.Sprintf("  min %.4g  max %.4g  mean %.4g", s.Min, s.Max, s.Mean)
	}
	if s.NonFinite > 0 {
		line += fmt.Sprintf("  %d non-finite", s.NonFinite)
	}
	return line
}

// =============================================================================
// preview command
// =============================================================================

// previewCommand creates the preview command for browsing recipe stages.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		inputs  []string
		noCache bool
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "preview <recipe>",
		Short: "Browse a recipe's intermediate grids in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := c.runStages(cmd.Context(), args[0], inputs, noCache)
			if err != nil {
				return err
			}
			if plain {
				printStages(views)
				return nil
			}
			p := tea.NewProgram(NewPreviewModel(views), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input grid as name=path (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&plain, "plain", false, "print every stage instead of starting the interactive view")

	return cmd
}

// runStages executes the recipe keeping every intermediate grid.
func (c *CLI) runStages(ctx context.Context, path string, inputFlags []string, noCache bool) ([]StageView, error) {
	logger := loggerFromContext(ctx)

	rec, err := recipe.Load(path)
	if err != nil {
		return nil, err
	}
	paths, err := parseInputs(inputFlags, rec.Inputs)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{Stages: true, Logger: logger}
	grids, err := pipeline.LoadInputs(ctx, paths, opts)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, rec, grids, opts)
	if err != nil {
		return nil, err
	}
	return stageViews(rec, result), nil
}

func printStages(views []StageView) {
	for i, v := range views {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(StyleTitle.Render(v.Title))
		for _, line := range shadeGrid(v.Grid, 64, 16) {
			fmt.Println(line)
		}
		printDetail("%s", summaryLine(v.Summary))
	}
}
