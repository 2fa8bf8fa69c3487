package session

import (
	"context"

	"github.com/looplab/fsm"
)

const (
	stateIdle       = "idle"
	stateSubmitting = "submitting"
	stateResolved   = "resolved"
	stateFailed     = "failed"

	eventSubmit  = "submit"
	eventResolve = "resolve"
	eventFail    = "fail"
	eventReset   = "reset"
)

// newMachine builds the submission lifecycle: idle -> submitting ->
// resolved|failed -> idle.
func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventSubmit, Src: []string{stateIdle}, Dst: stateSubmitting},
			{Name: eventResolve, Src: []string{stateSubmitting}, Dst: stateResolved},
			{Name: eventFail, Src: []string{stateSubmitting}, Dst: stateFailed},
			{Name: eventReset, Src: []string{stateResolved, stateFailed}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)
}

// fire runs a transition detached from the caller's context.
func fire(m *fsm.FSM, event string) error {
	return m.Event(context.Background(), event)
}
