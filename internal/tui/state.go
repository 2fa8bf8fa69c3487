package tui

import "sync"

const maxNotices = 5

// FormState is the session.View behind the terminal form. The controller
// writes to it from any goroutine; the bubbletea model reads a snapshot on
// every render and is woken through Changed.
type FormState struct {
	mu           sync.Mutex
	enabled      bool
	label        string
	status       string
	notices      []string
	clearPending bool

	changed chan struct{}
}

func NewFormState() *FormState {
	return &FormState{changed: make(chan struct{}, 1)}
}

func (s *FormState) SetSubmitEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	s.signal()
}

func (s *FormState) SetSubmitLabel(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
	s.signal()
}

func (s *FormState) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
	s.signal()
}

func (s *FormState) ClearDescription() {
	s.mu.Lock()
	s.clearPending = true
	s.mu.Unlock()
	s.signal()
}

func (s *FormState) Notify(text string) {
	s.mu.Lock()
	s.notices = append(s.notices, text)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
	s.mu.Unlock()
	s.signal()
}

// Changed fires (coalesced) after any update.
func (s *FormState) Changed() <-chan struct{} {
	return s.changed
}

func (s *FormState) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Snapshot is a copy of the form state taken for rendering.
type Snapshot struct {
	Enabled bool
	Label   string
	Status  string
	Notices []string
}

func (s *FormState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := make([]string, len(s.notices))
	copy(notices, s.notices)
	return Snapshot{Enabled: s.enabled, Label: s.label, Status: s.status, Notices: notices}
}

// takeClear reports and resets a pending description clear.
func (s *FormState) takeClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.clearPending
	s.clearPending = false
	return pending
}
