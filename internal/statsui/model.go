// Package statsui provides the Bubble Tea attempt-history interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tracer/internal/model"
	"github.com/verte-zerg/tracer/internal/stats"
	"github.com/verte-zerg/tracer/internal/store"
)

const (
	tabOverview = iota
	tabHistory
	tabTrend
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	history   table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "History", "Trend"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.history = buildHistoryTable(nil, 0, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabHistory {
				m.history.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.history.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.history, cmd = m.history.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs()
	var body string
	if m.activeTab == tabHistory {
		body = m.history.View()
	} else {
		body = m.viewports[m.activeTab].View()
	}
	footer := footerStyle.Render("←/→ tabs · g/G top/bottom · q quit")
	if m.errMsg != "" {
		footer = errorStyle.Render(m.errMsg) + "\n" + footer
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		return
	}
	m.errMsg = ""
	m.report = report
	m.renderTabContents()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.height - 5
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.history = buildHistoryTable(m.report.Attempts, m.width, bodyHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.history.Focus()
	} else {
		m.history.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderTabContents() {
	m.viewports[tabOverview].SetContent(m.renderOverview())
	m.viewports[tabTrend].SetContent(m.renderTrend())
	m.history = buildHistoryTable(m.report.Attempts, m.width, maxInt(1, m.height-5))
}

func (m *Model) renderOverview() string {
	s := m.report.Summary
	cards := []string{
		renderCard("Attempts", fmt.Sprintf("%d", s.Attempts)),
		renderCard("Completed", fmt.Sprintf("%d (%.0f%%)", s.Completed, s.CompletionRate*100)),
		renderCard("Mean coverage", fmt.Sprintf("%.0f%%", s.MeanCoverage*100)),
		renderCard("Mean duration", formatDuration(s.MeanDurationMs)),
		renderCard("Mean strays", fmt.Sprintf("%.1f", s.MeanStrays)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	weak := stats.SelectWeakRegions(m.report.WeakRegions, 2)
	var b strings.Builder
	b.WriteString(row)
	b.WriteString("\n")
	if len(weak) > 0 {
		b.WriteString(cardTitleStyle.Render("Weak regions: "))
		b.WriteString(strings.Join(weak, ", "))
		b.WriteString("\n")
	}
	if spark := stats.Sparkline(stats.CoverageSeries(m.report.Attempts)); spark != "" {
		b.WriteString(cardTitleStyle.Render("Coverage: "))
		b.WriteString(spark)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTrend() string {
	series := stats.CoverageSeries(m.report.Attempts)
	if len(series) == 0 {
		return "No attempts yet."
	}
	smoothed := stats.MovingAverage(series, m.cfg.CurveWindow)
	var buf bytes.Buffer
	width := stats.PlotWidthFor(m.width)
	if err := stats.PlotCoverage(&buf, "Coverage per attempt", smoothed, width, plotHeight); err != nil {
		return fmt.Sprintf("failed to render plot: %v", err)
	}
	return buf.String()
}

func renderCard(title, value string) string {
	content := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(content)
}

func buildHistoryTable(attempts []model.AttemptAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "When", Width: 19},
		{Title: "Shape", Width: 7},
		{Title: "Coverage", Width: 9},
		{Title: "Done", Width: 5},
		{Title: "Strays", Width: 6},
		{Title: "Duration", Width: 9},
	}
	rows := make([]table.Row, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		done := ""
		if a.Quality {
			done = "yes"
		}
		rows = append(rows, table.Row{
			a.EndedAt.Format("2006-01-02 15:04:05"),
			a.Shape,
			fmt.Sprintf("%.0f%%", a.Coverage*100),
			done,
			fmt.Sprintf("%d", a.Strays),
			formatDuration(float64(a.DurationMs)),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-2)),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}

func formatDuration(ms float64) string {
	return time.Duration(ms * float64(time.Millisecond)).Round(100 * time.Millisecond).String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
