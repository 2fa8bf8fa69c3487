package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/faeln1/alerta-roja/internal/app/session"
)

type stateChangedMsg struct{}

type rosterLoadedMsg struct{ err error }

type submitDoneMsg struct{ err error }

// Model is the bubbletea program for one alert session.
type Model struct {
	ctrl  *session.Controller
	state *FormState
	ctx   context.Context

	area      textarea.Model
	lastValue string
	quitting  bool
}

// New wires the form to an already bootstrapped controller. state must be the
// same FormState the controller was created with.
func New(ctx context.Context, ctrl *session.Controller, state *FormState) Model {
	area := textarea.New()
	area.Placeholder = "Describe la emergencia (4 a 300 caracteres)"
	area.CharLimit = 1000
	area.ShowLineNumbers = false
	area.SetWidth(60)
	area.SetHeight(5)
	area.Focus()

	return Model{ctrl: ctrl, state: state, ctx: ctx, area: area}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadRoster(), m.waitForChange())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+t":
			m.ctrl.SetRealTime(!m.ctrl.RealTime())
			return m, nil
		case "ctrl+s":
			if !m.ctrl.CanSubmit() {
				return m, nil
			}
			return m, m.submit()
		}

	case tea.WindowSizeMsg:
		if w := msg.Width - 8; w > 20 {
			m.area.SetWidth(w)
		}

	case stateChangedMsg:
		if m.state.takeClear() {
			m.area.Reset()
			m.lastValue = ""
			// keystrokes typed before the clear reached the controller
			m.ctrl.EditDescription(m.area.Value())
		}
		return m, m.waitForChange()

	case rosterLoadedMsg, submitDoneMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if v := m.area.Value(); v != m.lastValue {
		m.lastValue = v
		m.ctrl.EditDescription(v)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.state.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("🚨 Alerta Roja · "+strings.ToUpper(m.ctrl.Community())) + "\n\n")

	status := statusStyle
	if strings.HasPrefix(snap.Status, "❌") {
		status = errorStyle
	}
	b.WriteString(status.Render(snap.Status) + "\n\n")
	b.WriteString(m.area.View() + "\n\n")

	if m.ctrl.RealTime() {
		b.WriteString(toggleOnStyle.Render("[x] Usar ubicación en tiempo real") + "\n\n")
	} else {
		b.WriteString(toggleOffStyle.Render("[ ] Usar ubicación en tiempo real") + "\n\n")
	}

	label := snap.Label
	if label == "" {
		label = session.LabelIdle
	}
	if snap.Enabled {
		b.WriteString(buttonEnabledStyle.Render(label) + "\n")
	} else {
		b.WriteString(buttonDisabledStyle.Render(label) + "\n")
	}

	if len(snap.Notices) > 0 {
		b.WriteString("\n")
		for _, n := range snap.Notices {
			b.WriteString(noticeStyle.Render(n) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("ctrl+s enviar • ctrl+t ubicación en tiempo real • esc salir"))
	return frameStyle.Render(b.String())
}

func (m Model) loadRoster() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return rosterLoadedMsg{err: ctrl.LoadRoster(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.state.Changed()
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}
