package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faeln1/alerta-roja/internal/app/session"
	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoster struct{ members []community.Member }

func (s stubRoster) FetchRoster(context.Context, string) ([]community.Member, error) {
	return s.members, nil
}

type stubSender struct{ sent []alert.Payload }

func (s *stubSender) SendAlert(_ context.Context, p alert.Payload) (*alert.Response, error) {
	s.sent = append(s.sent, p)
	return &alert.Response{Status: "Alerta enviada a la comunidad norte"}, nil
}

func newTestModel(t *testing.T) (Model, *FormState, *stubSender) {
	t.Helper()
	state := NewFormState()
	sender := &stubSender{}
	ctrl, err := session.New(session.Page{Community: "norte"}, session.Deps{
		Roster: stubRoster{},
		Sender: sender,
		View:   state,
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.LoadRoster(context.Background()))
	return New(context.Background(), ctrl, state), state, sender
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func TestTypingEnablesSubmit(t *testing.T) {
	m, state, _ := newTestModel(t)
	m = typeText(m, "abc")
	assert.False(t, state.Snapshot().Enabled)
	assert.Equal(t, session.StatusWaiting, state.Snapshot().Status)

	m = typeText(m, "d")
	assert.True(t, state.Snapshot().Enabled)
	assert.Equal(t, session.StatusLocationUnavailable, state.Snapshot().Status)
	assert.Contains(t, m.View(), "NORTE")
}

func TestToggleRealTime(t *testing.T) {
	m, state, _ := newTestModel(t)
	m = typeText(m, "incendio")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)
	assert.Equal(t, session.StatusRealTime, state.Snapshot().Status)
	assert.Contains(t, m.View(), "[x]")
}

func TestSubmitClearsForm(t *testing.T) {
	m, state, sender := newTestModel(t)
	m = typeText(m, "incendio")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)
	done, ok := cmd().(submitDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "incendio", sender.sent[0].Descripcion)

	next, _ = m.Update(stateChangedMsg{})
	m = next.(Model)
	assert.Equal(t, "", m.area.Value())
	snap := state.Snapshot()
	assert.False(t, snap.Enabled)
	assert.Equal(t, session.LabelIdle, snap.Label)
	assert.Equal(t, []string{"Alerta enviada a la comunidad norte"}, snap.Notices)
}

func TestSubmitIgnoredWhileDisabled(t *testing.T) {
	m, _, sender := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Empty(t, sender.sent)
}

func TestFormStateKeepsLastNotices(t *testing.T) {
	s := NewFormState()
	for i := 0; i < maxNotices+3; i++ {
		s.Notify(string(rune('a' + i)))
	}
	notices := s.Snapshot().Notices
	require.Len(t, notices, maxNotices)
	assert.Equal(t, "h", notices[len(notices)-1])
	select {
	case <-s.Changed():
	default:
		t.Fatal("expected change signal")
	}
}

func TestKeystrokeBeforeClearDoesNotResendOldText(t *testing.T) {
	m, state, sender := newTestModel(t)
	m = typeText(m, "incendio")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	require.NotNil(t, cmd)
	_, ok := cmd().(submitDoneMsg)
	require.True(t, ok)

	// the textarea still holds the submitted text until the clear arrives
	m = typeText(m, "x")
	next, _ = m.Update(stateChangedMsg{})
	m = next.(Model)

	assert.Equal(t, "", m.area.Value())
	assert.False(t, state.Snapshot().Enabled)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "incendio", sender.sent[0].Descripcion)
}
