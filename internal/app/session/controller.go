package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/looplab/fsm"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrRosterUnavailable  = errors.New("community roster unavailable")
	ErrInvalidDescription = errors.New("description must be between 4 and 300 characters")
)

// View is the form surface the controller drives. Methods are invoked with
// the controller lock held and must not call back into the Controller.
type View interface {
	SetSubmitEnabled(enabled bool)
	SetSubmitLabel(label string)
	SetStatus(text string)
	ClearDescription()
	Notify(text string)
}

// RosterSource loads the member list of a community.
type RosterSource interface {
	FetchRoster(ctx context.Context, community string) ([]community.Member, error)
}

// AlertSender delivers an alert payload.
type AlertSender interface {
	SendAlert(ctx context.Context, payload alert.Payload) (*alert.Response, error)
}

// Position is one live location sample.
type Position struct {
	Lat float64
	Lon float64
}

// Locator samples the device position once.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Deps groups the collaborators of a Controller. Locator may be nil when the
// device has no live location capability.
type Deps struct {
	Roster  RosterSource
	Sender  AlertSender
	Locator Locator
	View    View
	Log     waLog.Logger
}

// Controller owns one alert composition session.
type Controller struct {
	mu sync.Mutex

	page    Page
	roster  RosterSource
	sender  AlertSender
	locator Locator
	view    View
	log     waLog.Logger
	machine *fsm.FSM

	members      []community.Member
	current      *community.Member
	rosterLoaded  bool
	rosterFailed  bool
	rosterLoading bool

	useRealTime bool
	description string
	enabled     bool
}

// New bootstraps a session for the given page and shows the greeting. A page
// without community is rejected with a visible notice.
func New(page Page, deps Deps) (*Controller, error) {
	if deps.View == nil {
		deps.View = nopView{}
	}
	if deps.Log == nil {
		deps.Log = waLog.Noop
	}
	if strings.TrimSpace(page.Community) == "" {
		deps.View.Notify(NoticeMissingCommunity)
		return nil, ErrMissingCommunity
	}
	if deps.Roster == nil || deps.Sender == nil {
		return nil, errors.New("session: roster source and alert sender are required")
	}

	c := &Controller{
		page:    page,
		roster:  deps.Roster,
		sender:  deps.Sender,
		locator: deps.Locator,
		view:    deps.View,
		log:     deps.Log,
		machine: newMachine(),
	}

	c.view.SetSubmitLabel(LabelIdle)
	c.view.SetSubmitEnabled(false)
	c.view.SetStatus(page.Greeting())
	if page.Identity == nil {
		c.log.Warnf("no user identity for community %s", page.Community)
	}
	return c, nil
}

// Community returns the community the session was opened for.
func (c *Controller) Community() string {
	return c.page.Community
}

// LoadRoster fetches the community roster once. Any failure disables
// submission for the rest of the session. Calls made while a fetch is in
// flight return immediately without fetching again.
func (c *Controller) LoadRoster(ctx context.Context) error {
	c.mu.Lock()
	if c.rosterLoaded || c.rosterFailed || c.rosterLoading {
		c.mu.Unlock()
		return nil
	}
	c.rosterLoading = true
	c.mu.Unlock()

	members, err := c.roster.FetchRoster(ctx, c.page.Community)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rosterLoading = false
	if err != nil {
		c.log.Errorf("load roster for %s: %v", c.page.Community, err)
		c.rosterFailed = true
		c.setEnabledLocked(false)
		c.view.SetStatus(StatusRosterFailed)
		return fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}

	c.members = members
	c.rosterLoaded = true
	if c.page.Identity != nil {
		if m, ok := community.FindMember(members, c.page.Identity.ID); ok {
			c.current = m
			c.log.Debugf("current member %s found in %s", m.TelegramID, c.page.Community)
		} else {
			c.log.Warnf("user %s not in roster of %s", c.page.Identity.ID, c.page.Community)
		}
	}
	c.log.Infof("roster of %s loaded with %d member(s)", c.page.Community, len(members))

	if c.idleLocked() {
		c.setEnabledLocked(validDescription(c.description))
		c.view.SetStatus(c.locationStatusLocked())
	}
	return nil
}

// EditDescription records a new description and recomputes the form state.
func (c *Controller) EditDescription(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.description = text
	c.refreshLocked()
}

// SetRealTime flips the live location toggle.
func (c *Controller) SetRealTime(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useRealTime = on
	c.refreshLocked()
}

// RealTime reports the toggle state.
func (c *Controller) RealTime() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useRealTime
}

// CanSubmit mirrors the submit control affordance.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// State returns the submission lifecycle state.
func (c *Controller) State() string {
	return c.machine.Current()
}

// Submit resolves a location, posts the alert and resets the form. It blocks
// for the whole chain; the returned error is the delivery failure, if any.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.rosterFailed {
		c.mu.Unlock()
		return ErrRosterUnavailable
	}
	desc := strings.TrimSpace(c.description)
	if desc == "" {
		c.mu.Unlock()
		c.view.Notify(NoticeMissingData)
		return ErrInvalidDescription
	}
	if !validDescription(desc) {
		c.mu.Unlock()
		return ErrInvalidDescription
	}
	if err := fire(c.machine, eventSubmit); err != nil {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.setEnabledLocked(false)
	c.view.SetSubmitLabel(LabelSending)
	c.view.SetStatus(StatusSending)
	snap := resolution{
		realTime:  c.useRealTime,
		member:    c.current,
		identity:  c.page.Identity,
		community: c.page.Community,
	}
	c.mu.Unlock()

	payload := c.resolve(ctx, desc, snap)
	resp, err := c.sender.SendAlert(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Errorf("send alert for %s: %v", c.page.Community, err)
		_ = fire(c.machine, eventFail)
		c.view.Notify(NoticeSubmitFailed)
	} else {
		_ = fire(c.machine, eventResolve)
		msg := NoticeSubmitOK
		if resp != nil && strings.TrimSpace(resp.Status) != "" {
			msg = resp.Status
		}
		c.log.Infof("alert sent for %s", c.page.Community)
		c.view.Notify(msg)
	}
	c.resetLocked()
	return err
}

type resolution struct {
	realTime  bool
	member    *community.Member
	identity  *alert.Identity
	community string
}

// resolve applies the location fallback chain: live sample, then the
// member's registered geolocation, then no coordinates at all.
func (c *Controller) resolve(ctx context.Context, desc string, r resolution) alert.Payload {
	payload := alert.Payload{
		Tipo:         alert.TypeRedAlert,
		Descripcion:  desc,
		Direccion:    alert.AddressUnavailable,
		Comunidad:    r.community,
		UserTelegram: alert.OrAnonymous(r.identity),
	}
	if r.member != nil && r.member.HasAddress() {
		payload.Direccion = r.member.Direccion
	}

	if r.realTime && c.locator != nil {
		pos, err := c.locator.CurrentPosition(ctx)
		if err == nil {
			payload.Ubicacion = alert.NewLocation(pos.Lat, pos.Lon)
			return payload
		}
		c.log.Warnf("live location failed: %v", err)
		c.mu.Lock()
		c.view.Notify(NoticeLiveLocationFailed)
		c.mu.Unlock()
	}

	if r.member != nil && r.member.Geolocalizacion != nil {
		geo := r.member.Geolocalizacion
		payload.Ubicacion = alert.NewLocation(geo.Lat, geo.Lon)
		if strings.TrimSpace(geo.Direccion) != "" {
			payload.Direccion = geo.Direccion
		}
		return payload
	}

	c.log.Warnf("no location available for alert in %s, sending without coordinates", r.community)
	return payload
}

func (c *Controller) resetLocked() {
	_ = fire(c.machine, eventReset)
	c.description = ""
	c.view.ClearDescription()
	c.view.SetSubmitLabel(LabelIdle)
	c.setEnabledLocked(false)
	c.refreshLocked()
}

// refreshLocked recomputes the submit affordance and the status line.
func (c *Controller) refreshLocked() {
	if c.rosterFailed || !c.idleLocked() {
		return
	}
	if !validDescription(c.description) {
		c.setEnabledLocked(false)
		c.view.SetStatus(StatusWaiting)
		return
	}
	c.setEnabledLocked(true)
	c.view.SetStatus(c.locationStatusLocked())
}

func (c *Controller) locationStatusLocked() string {
	switch {
	case c.useRealTime:
		return StatusRealTime
	case c.current != nil && c.current.HasAddress():
		return fmt.Sprintf(StatusRegisteredAddressF, c.current.Direccion)
	default:
		return StatusLocationUnavailable
	}
}

func (c *Controller) setEnabledLocked(enabled bool) {
	c.enabled = enabled
	c.view.SetSubmitEnabled(enabled)
}

func (c *Controller) idleLocked() bool {
	return c.machine.Is(stateIdle)
}

func validDescription(text string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	return n >= minDescription && n <= maxDescription
}

type nopView struct{}

func (nopView) SetSubmitEnabled(bool) {}
func (nopView) SetSubmitLabel(string) {}
func (nopView) SetStatus(string)      {}
func (nopView) ClearDescription()     {}
func (nopView) Notify(string)         {}
