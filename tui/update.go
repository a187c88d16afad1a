package tui

import (
	"cofoundr/types"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case StoreChangedMsg:
		m.snapshot = m.store.Snapshot()
		return m, m.bridge.next()
	case ToastMsg:
		return m.handleToast(msg)
	case toastExpiredMsg:
		return m.handleToastExpired(msg)
	case StepFinishedMsg:
		return m.handleStepFinished(msg)
	case pollerStoppedMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.updateInputs(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		if !m.editing {
			return m.switchPage(m.page + 1)
		}
	case "shift+tab":
		if !m.editing {
			return m.switchPage(m.page - 1)
		}
	}

	if m.editing {
		if msg.Type == tea.KeyEsc {
			m.runner.EditPost(m.post.Value())
			m.editing = false
			m.post.Blur()
			return m, nil
		}
		return m.updateInputs(msg)
	}

	step := m.Page()
	switch msg.String() {
	case "ctrl+r":
		if step == types.StepAnalyze {
			return m, submitIdea(m.ctx, m.runner, m.idea.Value())
		}
		return m, runStep(m.ctx, m.runner, step)
	}

	if step == types.StepAnalyze {
		return m.updateInputs(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "e":
		if step == types.StepLinkedIn {
			m.editing = true
			m.post.SetValue(m.store.LinkedInPost())
			return m, m.post.Focus()
		}
	}
	return m, nil
}

// switchPage moves to page i, wrapping around, and manages page side
// effects: the simulation auto-runs on entry and the metrics poller runs
// only while its page is shown
func (m Model) switchPage(i int) (tea.Model, tea.Cmd) {
	n := len(pages)
	next := ((i % n) + n) % n
	if next == m.page {
		return m, nil
	}

	var cmds []tea.Cmd
	if m.Page() == types.StepMetrics && m.pollHandle != nil {
		cmds = append(cmds, stopPoller(m.pollHandle))
		m.pollHandle = nil
	}

	m.page = next
	switch m.Page() {
	case types.StepAnalyze:
		cmds = append(cmds, m.idea.Focus())
	case types.StepSimulate:
		m.idea.Blur()
		cmds = append(cmds, simulateIfNeeded(m.ctx, m.runner))
	case types.StepMetrics:
		m.idea.Blur()
		m.pollHandle = m.poller.Start(m.ctx)
	default:
		m.idea.Blur()
	}
	return m, tea.Batch(cmds...)
}

// handleResize fits the text inputs to the terminal
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	w := min(msg.Width-4, wordWrap)
	if w > 20 {
		m.idea.SetWidth(w)
		m.post.SetWidth(w)
	}
	return m, nil
}

// handleToast shows a notification and schedules its removal
func (m Model) handleToast(msg ToastMsg) (tea.Model, tea.Cmd) {
	m.nextID++
	m.toasts = append(m.toasts, toast{
		id:   m.nextID,
		kind: msg.Kind,
		text: msg.Text,
	})
	return m, tea.Batch(expireToast(m.nextID), m.bridge.next())
}

// handleToastExpired removes an expired notification
func (m Model) handleToastExpired(msg toastExpiredMsg) (tea.Model, tea.Cmd) {
	kept := m.toasts[:0:0]
	for _, t := range m.toasts {
		if t.id != msg.ID {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return m, nil
}

// handleStepFinished refreshes the view once a step command returns
func (m Model) handleStepFinished(msg StepFinishedMsg) (tea.Model, tea.Cmd) {
	m.snapshot = m.store.Snapshot()
	if msg.Step == types.StepLinkedIn && msg.Err == nil && !m.editing {
		m.post.SetValue(m.snapshot.LinkedInPost)
	}
	return m, nil
}

// updateInputs forwards msg to the focused text input
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.editing:
		m.post, cmd = m.post.Update(msg)
	case m.Page() == types.StepAnalyze:
		m.idea, cmd = m.idea.Update(msg)
	}
	return m, cmd
}

var _ tea.Model = Model{}
