// Package terminal is the interactive bubbletea front end for a system.State.
// It renders the log stream, the entropy gauge and the command console, and
// reports viewport scrolling to the scroll feed.
package terminal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"neuralterm/cmd/neuralterm/ui"
	"neuralterm/internal/scroll"
	"neuralterm/internal/system"
)

// DefaultLineHeight is the number of scroll units per log row.
const DefaultLineHeight = 20

// Rows taken by header, gauge, prompt and the frame border.
const chromeRows = 5

// Columns kept free for the horizontal perturbation shift.
const shiftReserve = 5

const footerHint = "ctrl+t console • ctrl+b blueprint • ctrl+r reset entropy • ctrl+c quit"

// stateChangedMsg tells Update to take a fresh snapshot.
type stateChangedMsg struct{}

// Options wires a Model.
type Options struct {
	State      *system.State
	Feed       *scroll.Feed // nil disables scroll reporting
	LineHeight int
}

// Model is the bubbletea model for the terminal.
type Model struct {
	state      *system.State
	feed       *scroll.Feed
	lineHeight int

	styles   ui.Styles
	input    textinput.Model
	viewport viewport.Model
	gauge    progress.Model

	snap       system.Snapshot
	width      int
	height     int
	ready      bool
	lastOffset int
	quitting   bool

	// Log pane content is rebuilt only when these differ from the snapshot.
	renderedSeq   uint64
	renderedTheme string
	rendered      bool

	changed      chan struct{}
	done         chan struct{}
	stopObserve  func()
	shutdownOnce *sync.Once
}

// New creates the model and registers it as a state observer. It may be
// called before State.Init; the first snapshot is taken once the program
// starts.
func New(opts Options) Model {
	in := textinput.New()
	in.Prompt = "$ "
	in.Placeholder = "type 'help'"
	in.CharLimit = 256

	lineHeight := opts.LineHeight
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}

	m := Model{
		state:        opts.State,
		feed:         opts.Feed,
		lineHeight:   lineHeight,
		styles:       ui.DefaultStyles(),
		input:        in,
		gauge:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		changed:      make(chan struct{}, 1),
		done:         make(chan struct{}),
		shutdownOnce: &sync.Once{},
	}
	m.input.PromptStyle = m.styles.Prompt

	changed := m.changed
	m.stopObserve = opts.State.Observe(func() {
		select {
		case changed <- struct{}{}:
		default:
			// A refresh is already pending.
		}
	})
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnableMouseCellMotion,
		m.waitForChange(),
	)
}

// Shutdown detaches the model from the state. Safe to call more than once.
func (m *Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		if m.stopObserve != nil {
			m.stopObserve()
		}
		close(m.done)
	})
}

// waitForChange blocks until the state reports a change or the model shuts down.
func (m Model) waitForChange() tea.Cmd {
	changed, done := m.changed, m.done
	return func() tea.Msg {
		select {
		case <-changed:
			return stateChangedMsg{}
		case <-done:
			return nil
		}
	}
}

// refresh takes a new snapshot. The log viewport is re-rendered only when the
// log sequence or theme moved, following the tail when it was already at the
// bottom.
func (m *Model) refresh() {
	if m.quitting {
		return
	}
	m.snap = m.state.Snapshot()

	if m.snap.Theme != m.styles.Theme.Name {
		m.styles = ui.NewStyles(ui.ThemeByName(m.snap.Theme))
		m.input.PromptStyle = m.styles.Prompt
	}
	if m.snap.ConsoleOpen && !m.input.Focused() {
		m.input.Focus()
	} else if !m.snap.ConsoleOpen && m.input.Focused() {
		m.input.Blur()
	}

	if !m.ready {
		return
	}
	if m.rendered && m.snap.LogSeq == m.renderedSeq && m.styles.Theme.Name == m.renderedTheme {
		return
	}
	follow := !m.rendered || m.viewport.AtBottom()
	m.viewport.SetContent(m.renderLogs())
	m.renderedSeq = m.snap.LogSeq
	m.renderedTheme = m.styles.Theme.Name
	m.rendered = true
	if follow {
		m.viewport.GotoBottom()
		m.lastOffset = m.viewport.YOffset
	}
}

func (m *Model) resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width, m.height = width, height

	vpWidth := max(width-2-shiftReserve, 1)
	vpHeight := max(height-chromeRows, 1)
	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
		m.rendered = false
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.gauge.Width = max(width/3, 10)
	m.input.Width = max(width-4, 1)
}

// publishScroll reports a user-driven viewport move to the scroll feed.
func (m *Model) publishScroll() {
	if m.feed == nil || m.viewport.YOffset == m.lastOffset {
		return
	}
	m.lastOffset = m.viewport.YOffset
	m.feed.Publish(m.lastOffset * m.lineHeight)
}

func (m Model) renderLogs() string {
	lines := make([]string, len(m.snap.Logs))
	for i, e := range m.snap.Logs {
		msgStyle := m.styles.Log
		if strings.HasPrefix(e.Message, "Entropy Critical") {
			msgStyle = m.styles.Critical
		}
		lines[i] = m.styles.Prompt.Render(">") + " " +
			m.styles.Timestamp.Render("["+e.Clock()+"]") + " " +
			msgStyle.Render(e.Message)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader() string {
	style := m.styles.Header
	if m.snap.Blueprint {
		style = m.styles.HeaderBlueprint
	}
	return style.Render(m.snap.Header()) + m.styles.Footer.Render("theme:"+m.snap.Theme)
}

func (m Model) renderGauge() string {
	p := m.snap.Perturbation
	label := fmt.Sprintf("ENTROPY %3d%%", m.snap.Entropy)
	detail := fmt.Sprintf("rot %+.1f° dy %+d blur %.2f", p.RotationDeg, ui.OffsetCells(p.OffsetY)*sign(p.OffsetY), p.BlurPx)
	return lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Gauge.Render(label),
		m.gauge.ViewAs(float64(m.snap.Entropy)/100),
		m.styles.Gauge.Render(detail),
	)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	frame := m.styles.Frame
	if m.snap.Blueprint {
		frame = m.styles.FrameBlueprint
	}
	body := ui.Perturb(lipgloss.NewStyle(), m.snap.Perturbation).Render(frame.Render(m.viewport.View()))

	footer := m.styles.Footer.Render(footerHint)
	if m.snap.ConsoleOpen {
		footer = m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderGauge(),
		body,
		footer,
	)
}
