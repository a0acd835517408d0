// Package tui provides the Bubble Tea tracing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tracer/internal/feedback"
	"github.com/verte-zerg/tracer/internal/geometry"
	"github.com/verte-zerg/tracer/internal/model"
	"github.com/verte-zerg/tracer/internal/session"
	"github.com/verte-zerg/tracer/internal/store"
)

// Terminal grid dimensions for the trace canvas.
const (
	gridCols = 60
	gridRows = 30
)

const tickInterval = 100 * time.Millisecond

var (
	outlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	onPathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#67C23A")).Bold(true)
	offPathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	cornerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	announceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	indicatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	completeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#67C23A")).Bold(true)
)

type tickMsg time.Time

// Model implements the Bubble Tea tracing UI.
type Model struct {
	cfg     model.Config
	store   *store.Store
	session *session.Session
	sink    *statusSink
	canvas  geometry.Rect

	width  int
	height int

	touching     bool
	attemptSaved bool
	saveFailed   bool
}

// NewModel constructs a tracing TUI model.
func NewModel(cfg model.Config, st *store.Store, sess *session.Session) *Model {
	canvas := geometry.R(0, 0, cfg.CanvasWidth, cfg.CanvasHeight)
	shape := geometry.Square
	if parsed, ok := geometry.ParseShape(cfg.Shape); ok {
		shape = parsed
	}
	sess.SetNarrator(cfg.Narrator)
	sess.SetShape(shape, canvas)
	return &Model{
		cfg:     cfg,
		store:   st,
		session: sess,
		sink:    newStatusSink(time.Now),
		canvas:  canvas,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tickMsg:
		m.dispatch(m.session.Tick())
		m.saveCompletedAttempt()
		return m, tick()
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s":
		m.setShape(geometry.Square)
	case "c":
		m.setShape(geometry.Circle)
	case "r":
		m.session.Reset()
		m.sink.StopAll()
		m.sink.Speak("Trace cleared")
		m.attemptSaved = false
	}
	return m, nil
}

func (m *Model) setShape(shape geometry.Shape) {
	m.session.SetShape(shape, m.canvas)
	m.attemptSaved = false
	m.sink.Speak(fmt.Sprintf("Selected %s", shape))
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		if msg.Action == tea.MouseActionPress {
			m.touching = true
		}
		if !m.touching {
			return
		}
		p, _ := m.grid().screenToCanvas(msg.X, msg.Y)
		m.dispatch(m.session.TouchMoved(p))
		m.saveCompletedAttempt()
	case tea.MouseActionRelease:
		if !m.touching {
			return
		}
		m.touching = false
		m.dispatch(m.session.TouchEnded())
	}
}

func (m *Model) dispatch(reqs []feedback.Request) {
	if len(reqs) == 0 {
		return
	}
	// Playback is best-effort and never feeds back into the session.
	feedback.Dispatch(m.sink, reqs)
}

// saveCompletedAttempt records the attempt summary the first time the
// session reaches Complete; the flag rearms once the session resets.
func (m *Model) saveCompletedAttempt() {
	if m.session.State() != session.Complete {
		m.attemptSaved = false
		return
	}
	if m.attemptSaved || m.store == nil {
		return
	}
	m.attemptSaved = true

	shape, _ := m.session.Shape()
	endedAt := time.Now()
	stats := model.AttemptStats{
		StartedAt:       m.session.StartedAt(),
		EndedAt:         endedAt,
		Shape:           shape.String(),
		CanvasWidth:     m.canvas.Width,
		CanvasHeight:    m.canvas.Height,
		Coverage:        m.session.Progress(),
		Quality:         true,
		SegmentsVisited: m.session.SegmentsVisited(),
		TotalSegments:   m.session.TotalSegments(),
		Strays:          m.session.Strays(),
		DurationMs:      endedAt.Sub(m.session.StartedAt()).Milliseconds(),
	}
	var regions []model.RegionStats
	for _, r := range m.session.Regions() {
		regions = append(regions, model.RegionStats{Region: r.Region, Visited: r.Visited, Total: r.Total})
	}
	if _, err := m.store.InsertAttempt(context.Background(), stats, regions); err != nil {
		logErrf("failed to save attempt: %v\n", err)
		m.saveFailed = true
		return
	}
	m.saveFailed = false
}

func (m *Model) grid() canvasGrid {
	originX, originY := m.canvasOrigin()
	return newCanvasGrid(m.canvas, gridCols, gridRows, originX, originY)
}

func (m *Model) canvasOrigin() (int, int) {
	x := (m.width - gridCols) / 2
	if x < 0 {
		x = 0
	}
	y := (m.height - gridRows - 3) / 2
	if y < 0 {
		y = 0
	}
	return x, y
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	grid := m.grid()
	canvasBlock := m.renderCanvas(grid)

	var lines []string
	originX, originY := m.canvasOrigin()
	for i := 0; i < originY; i++ {
		lines = append(lines, "")
	}
	pad := strings.Repeat(" ", originX)
	for _, row := range canvasBlock {
		lines = append(lines, pad+row)
	}
	body := strings.Join(lines, "\n")

	status := m.renderStatus()
	footer := m.renderFooter()
	return body + "\n" + status + "\n" + footer
}

func (m *Model) renderCanvas(grid canvasGrid) []string {
	shape, hasShape := m.session.Shape()
	cw, ch := grid.cellSize()
	// A cell counts as outline when the shape boundary passes within
	// half a cell of its center.
	outlineBand := geometry.Bands{
		PathTolerance:   maxFloat(cw, ch) / 2,
		ProximityRadius: maxFloat(cw, ch) / 2,
		CornerRadius:    geometry.DefaultCornerRadius,
	}

	touch, hasTouch := m.session.Touch()
	touchCol, touchRow := -1, -1
	if hasTouch {
		touchCol = int((touch.X - m.canvas.MinX) / cw)
		touchRow = int((touch.Y - m.canvas.MinY) / ch)
	}

	rows := make([]string, 0, grid.rows)
	for row := 0; row < grid.rows; row++ {
		var b strings.Builder
		for col := 0; col < grid.cols; col++ {
			if col == touchCol && row == touchRow {
				if m.session.OnPath() {
					b.WriteString(onPathStyle.Render("@"))
				} else {
					b.WriteString(offPathStyle.Render("@"))
				}
				continue
			}
			if !hasShape {
				b.WriteString(" ")
				continue
			}
			center := grid.cellCenter(col, row)
			c := geometry.Classify(center, shape, m.canvas, outlineBand)
			switch {
			case c.OnPath && c.NearCorner:
				b.WriteString(cornerStyle.Render("+"))
			case c.OnPath:
				b.WriteString(outlineStyle.Render("."))
			default:
				b.WriteString(" ")
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}

func (m *Model) renderStatus() string {
	var indicators []string
	if m.session.State() == session.Complete {
		indicators = append(indicators, completeStyle.Render("✓ complete"))
	}
	if m.saveFailed {
		indicators = append(indicators, offPathStyle.Render("[history not saved]"))
	}
	if m.sink.toneActive() {
		indicators = append(indicators, indicatorStyle.Render("["+m.sink.toneLabel+"]"))
	}
	if m.sink.hapticActive() {
		indicators = append(indicators, indicatorStyle.Render(fmt.Sprintf("[buzz %.0f%%]", m.sink.hapticLevel*100)))
	}
	line := strings.Join(indicators, " ")
	if m.sink.announcement != "" {
		announcement := clipLine(m.sink.announcement, m.width-12)
		if line != "" {
			line += "  "
		}
		line += announceStyle.Render(announcement)
	}
	return line
}

func (m *Model) renderFooter() string {
	shape, hasShape := m.session.Shape()
	name := "none"
	if hasShape {
		name = shape.String()
	}
	segments := []string{
		fmt.Sprintf("Shape %s", name),
		fmt.Sprintf("Progress %d%%", int(m.session.Progress()*100)),
	}
	segments = append(segments, m.session.State().String())
	segments = append(segments, "s square · c circle · r reset · q quit")
	return footerStyle.Render(clipLine(strings.Join(segments, "  "), m.width))
}

// clipLine truncates a line to the given width, ellipsis included,
// accounting for wide runes. Styling happens after clipping so escape
// sequences never get cut.
func clipLine(line string, width int) string {
	if width <= 0 {
		return line
	}
	if runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
