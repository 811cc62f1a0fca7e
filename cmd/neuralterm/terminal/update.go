package terminal

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"neuralterm/internal/console"
	"neuralterm/internal/logging"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.publishScroll()
		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.gauge.Update(msg)
		if g, ok := updated.(progress.Model); ok {
			m.gauge = g
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	log := logging.Get(logging.CategoryUI)

	switch msg.Type {
	case tea.KeyCtrlC:
		log.Debug("quit requested")
		m.Shutdown()
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlT:
		open := m.state.ToggleConsole()
		log.Debugw("console toggled", "open", open)
		m.refresh()
		if open {
			return m, textinput.Blink
		}
		return m, nil

	case tea.KeyEsc:
		if m.input.Focused() {
			m.state.CloseConsole()
			m.refresh()
		}
		return m, nil

	case tea.KeyCtrlR:
		m.state.ResetEntropy()
		return m, nil

	case tea.KeyCtrlB:
		m.state.ToggleBlueprint()
		return m, nil

	case tea.KeyEnter:
		if !m.input.Focused() {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		kind := m.state.Submit(line)
		if kind != console.KindNone {
			log.Debugw("console command", "kind", kind.String())
		}
		m.refresh()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown, tea.KeyHome, tea.KeyEnd:
		if !m.ready {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyHome:
			m.viewport.GotoTop()
		case tea.KeyEnd:
			m.viewport.GotoBottom()
		default:
			m.viewport, _ = m.viewport.Update(msg)
		}
		m.publishScroll()
		return m, nil
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}
