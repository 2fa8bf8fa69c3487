package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingView struct {
	mu       sync.Mutex
	enabled  bool
	label    string
	status   string
	cleared  int
	notices  []string
	statuses []string
}

func (v *recordingView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
}

func (v *recordingView) SetSubmitLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
}

func (v *recordingView) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = text
	v.statuses = append(v.statuses, text)
}

func (v *recordingView) ClearDescription() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cleared++
}

func (v *recordingView) Notify(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, text)
}

type fakeRoster struct {
	members []community.Member
	err     error
	calls   int
}

func (f *fakeRoster) FetchRoster(_ context.Context, _ string) ([]community.Member, error) {
	f.calls++
	return f.members, f.err
}

type fakeSender struct {
	mu       sync.Mutex
	resp     *alert.Response
	err      error
	payloads []alert.Payload
	block    chan struct{}
}

func (f *fakeSender) SendAlert(_ context.Context, p alert.Payload) (*alert.Response, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return f.resp, f.err
}

type fakeLocator struct {
	pos Position
	err error
}

func (f fakeLocator) CurrentPosition(context.Context) (Position, error) {
	return f.pos, f.err
}

func ptr(v float64) *float64 { return &v }

func newTestController(t *testing.T, identity *alert.Identity, roster *fakeRoster, sender *fakeSender, loc Locator) (*Controller, *recordingView) {
	t.Helper()
	view := &recordingView{}
	c, err := New(Page{Community: "vecinos", Identity: identity}, Deps{
		Roster:  roster,
		Sender:  sender,
		Locator: loc,
		View:    view,
	})
	require.NoError(t, err)
	return c, view
}

func TestNewRejectsMissingCommunity(t *testing.T) {
	view := &recordingView{}
	_, err := New(Page{}, Deps{Roster: &fakeRoster{}, Sender: &fakeSender{}, View: view})
	require.ErrorIs(t, err, ErrMissingCommunity)
	assert.Equal(t, []string{NoticeMissingCommunity}, view.notices)
}

func TestNewShowsGreeting(t *testing.T) {
	_, view := newTestController(t, &alert.Identity{ID: "1", FirstName: "Ana"}, &fakeRoster{}, &fakeSender{}, nil)
	assert.Equal(t, "👋 Hola Ana en VECINOS", view.status)
	assert.False(t, view.enabled)
	assert.Equal(t, LabelIdle, view.label)

	_, view = newTestController(t, nil, &fakeRoster{}, &fakeSender{}, nil)
	assert.Equal(t, "👥 Comunidad detectada: VECINOS", view.status)
}

func TestDescriptionValidity(t *testing.T) {
	members := []community.Member{{TelegramID: "7", Direccion: "Calle 1"}}
	cases := []struct {
		name    string
		text    string
		enabled bool
	}{
		{"empty", "", false},
		{"three chars", "abc", false},
		{"padded three chars", "   abc   ", false},
		{"four chars", "abcd", true},
		{"three hundred", strings.Repeat("a", 300), true},
		{"three hundred one", strings.Repeat("a", 301), false},
		{"multibyte four runes", "ñáéí", true},
	}
	for _, tc := range cases {
		for _, realTime := range []bool{false, true} {
			for _, identity := range []*alert.Identity{nil, {ID: "7"}} {
				t.Run(tc.name, func(t *testing.T) {
					c, view := newTestController(t, identity, &fakeRoster{members: members}, &fakeSender{}, nil)
					require.NoError(t, c.LoadRoster(context.Background()))
					c.SetRealTime(realTime)
					c.EditDescription(tc.text)
					assert.Equal(t, tc.enabled, view.enabled)
					assert.Equal(t, tc.enabled, c.CanSubmit())
					if !tc.enabled {
						assert.Equal(t, StatusWaiting, view.status)
					}
				})
			}
		}
	}
}

func TestStatusFollowsLocationSource(t *testing.T) {
	members := []community.Member{{TelegramID: "7", Direccion: "Calle 1"}, {TelegramID: "8"}}

	c, view := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{members: members}, &fakeSender{}, nil)
	require.NoError(t, c.LoadRoster(context.Background()))
	c.EditDescription("incendio")
	assert.Equal(t, "📍 Tu dirección registrada: Calle 1", view.status)
	c.SetRealTime(true)
	assert.Equal(t, StatusRealTime, view.status)

	c, view = newTestController(t, &alert.Identity{ID: "8"}, &fakeRoster{members: members}, &fakeSender{}, nil)
	require.NoError(t, c.LoadRoster(context.Background()))
	c.EditDescription("incendio")
	assert.True(t, view.enabled)
	assert.Equal(t, StatusLocationUnavailable, view.status)
}

func TestSubmitLiveLocation(t *testing.T) {
	cases := []struct {
		name    string
		members []community.Member
		address string
	}{
		{"member address", []community.Member{{TelegramID: "7", Direccion: "Calle 1"}}, "Calle 1"},
		{"no member", nil, alert.AddressUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{resp: &alert.Response{}}
			c, _ := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{members: tc.members}, sender, fakeLocator{pos: Position{Lat: 10, Lon: 20}})
			require.NoError(t, c.LoadRoster(context.Background()))
			c.SetRealTime(true)
			c.EditDescription("hay humo")
			require.NoError(t, c.Submit(context.Background()))

			require.Len(t, sender.payloads, 1)
			p := sender.payloads[0]
			require.True(t, p.Ubicacion.Known())
			assert.Equal(t, 10.0, *p.Ubicacion.Lat)
			assert.Equal(t, 20.0, *p.Ubicacion.Lon)
			assert.Equal(t, tc.address, p.Direccion)
			assert.Equal(t, alert.TypeRedAlert, p.Tipo)
			assert.Equal(t, "vecinos", p.Comunidad)
		})
	}
}

func TestSubmitLiveLocationFailureFallsBackToRegistered(t *testing.T) {
	members := []community.Member{{
		TelegramID:      "7",
		Direccion:       "Calle 1",
		Geolocalizacion: &community.Geolocation{Lat: 5, Lon: 6, Direccion: "X"},
	}}
	sender := &fakeSender{resp: &alert.Response{Status: "ok"}}
	c, view := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{members: members}, sender, fakeLocator{err: errors.New("denied")})
	require.NoError(t, c.LoadRoster(context.Background()))
	c.SetRealTime(true)
	c.EditDescription("robo en curso")
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Equal(t, 5.0, *p.Ubicacion.Lat)
	assert.Equal(t, 6.0, *p.Ubicacion.Lon)
	assert.Equal(t, "X", p.Direccion)
	assert.Equal(t, []string{NoticeLiveLocationFailed, "ok"}, view.notices)
}

func TestSubmitLiveLocationFailureFallsBackToRegisteredAddress(t *testing.T) {
	members := []community.Member{{TelegramID: "7", Direccion: "Calle 1"}}
	sender := &fakeSender{}
	c, view := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{members: members}, sender, fakeLocator{err: errors.New("timeout")})
	require.NoError(t, c.LoadRoster(context.Background()))
	c.SetRealTime(true)
	c.EditDescription("incendio en la casa")
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Nil(t, p.Ubicacion.Lat)
	assert.Nil(t, p.Ubicacion.Lon)
	assert.Equal(t, "Calle 1", p.Direccion)
	assert.Equal(t, []string{NoticeLiveLocationFailed, NoticeSubmitOK}, view.notices)
}

func TestSubmitRegisteredGeolocationWithoutAddress(t *testing.T) {
	members := []community.Member{{
		TelegramID:      "7",
		Direccion:       "Calle 1",
		Geolocalizacion: &community.Geolocation{Lat: 5, Lon: 6},
	}}
	sender := &fakeSender{}
	c, _ := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{members: members}, sender, nil)
	require.NoError(t, c.LoadRoster(context.Background()))
	c.SetRealTime(true)
	c.EditDescription("robo en curso")
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, sender.payloads, 1)
	assert.Equal(t, "Calle 1", sender.payloads[0].Direccion)
	assert.Equal(t, 5.0, *sender.payloads[0].Ubicacion.Lat)
}

func TestSubmitWithoutAnyLocation(t *testing.T) {
	sender := &fakeSender{}
	c, view := newTestController(t, nil, &fakeRoster{members: []community.Member{{TelegramID: "9"}}}, sender, nil)
	require.NoError(t, c.LoadRoster(context.Background()))
	c.EditDescription("ayuda por favor")
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Nil(t, p.Ubicacion.Lat)
	assert.Nil(t, p.Ubicacion.Lon)
	assert.Equal(t, alert.AddressUnavailable, p.Direccion)
	assert.Equal(t, alert.Anonymous(), p.UserTelegram)
	assert.Equal(t, []string{NoticeSubmitOK}, view.notices)
}

func TestRosterFailureDisablesSession(t *testing.T) {
	sender := &fakeSender{}
	c, view := newTestController(t, nil, &fakeRoster{err: errors.New("status 500")}, sender, nil)
	err := c.LoadRoster(context.Background())
	require.ErrorIs(t, err, ErrRosterUnavailable)
	assert.Equal(t, StatusRosterFailed, view.status)

	c.EditDescription("texto valido")
	c.SetRealTime(true)
	assert.False(t, view.enabled)
	assert.False(t, c.CanSubmit())
	assert.Equal(t, StatusRosterFailed, view.status)
	require.ErrorIs(t, c.Submit(context.Background()), ErrRosterUnavailable)
	assert.Empty(t, sender.payloads)
}

func TestResetAfterOutcome(t *testing.T) {
	for _, sendErr := range []error{nil, errors.New("boom")} {
		sender := &fakeSender{err: sendErr}
		c, view := newTestController(t, &alert.Identity{ID: "7"}, &fakeRoster{}, sender, nil)
		require.NoError(t, c.LoadRoster(context.Background()))
		c.EditDescription("alerta real")
		err := c.Submit(context.Background())
		if sendErr != nil {
			require.Error(t, err)
			assert.Equal(t, []string{NoticeSubmitFailed}, view.notices)
		} else {
			require.NoError(t, err)
		}
		assert.False(t, view.enabled)
		assert.Equal(t, LabelIdle, view.label)
		assert.Equal(t, 1, view.cleared)
		assert.Equal(t, StatusWaiting, view.status)
		assert.Equal(t, stateIdle, c.State())

		c.EditDescription("segunda alerta")
		assert.True(t, view.enabled)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	c, view := newTestController(t, nil, &fakeRoster{}, sender, nil)
	require.NoError(t, c.LoadRoster(context.Background()))
	c.EditDescription("primera alerta")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return c.State() == stateSubmitting }, timeout, tick)
	assert.Equal(t, LabelSending, view.label)

	c.EditDescription("otra alerta")
	assert.False(t, c.CanSubmit())
	require.ErrorIs(t, c.Submit(context.Background()), ErrSubmissionInFlight)

	close(sender.block)
	require.NoError(t, <-done)
	assert.Len(t, sender.payloads, 1)
}

func TestSubmitEmptyDescriptionNotifies(t *testing.T) {
	sender := &fakeSender{}
	c, view := newTestController(t, nil, &fakeRoster{}, sender, nil)
	require.ErrorIs(t, c.Submit(context.Background()), ErrInvalidDescription)
	assert.Equal(t, []string{NoticeMissingData}, view.notices)
	assert.Empty(t, sender.payloads)
}

type gatedRoster struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedRoster) FetchRoster(context.Context, string) ([]community.Member, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	<-g.release
	return []community.Member{{TelegramID: "1"}}, nil
}

func TestLoadRosterFetchesOnceWhileInFlight(t *testing.T) {
	roster := &gatedRoster{started: make(chan struct{}), release: make(chan struct{})}
	c, err := New(Page{Community: "vecinos"}, Deps{Roster: roster, Sender: &fakeSender{}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.LoadRoster(context.Background()) }()
	<-roster.started

	require.NoError(t, c.LoadRoster(context.Background()))
	close(roster.release)
	require.NoError(t, <-done)
	require.NoError(t, c.LoadRoster(context.Background()))
	assert.Equal(t, int32(1), roster.calls.Load())
}
