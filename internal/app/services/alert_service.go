package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faeln1/alerta-roja/internal/app/repositories"
	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/faeln1/alerta-roja/internal/platform/metrics"
	"github.com/google/uuid"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/sync/errgroup"
)

// Notification channels, also used as metric labels.
const (
	ChannelTelegram      = "telegram"
	ChannelTelegramGroup = "telegram_group"
	ChannelCall          = "call"
	ChannelWhatsApp      = "whatsapp"
)

const defaultNotifyConcurrency = 8

// AlertService accepts alerts from the mini-app and fans them out to the community.
type AlertService interface {
	Raise(ctx context.Context, p alert.Payload) (*alert.Dispatch, error)
	History(ctx context.Context, communityName string, limit int) ([]*alert.Dispatch, error)
}

// EventRecorder writes a JSON copy of an event to local storage.
type EventRecorder interface {
	Write(scope, id string, evt any) (string, error)
}

// AlertDeps groups the collaborators of the alert service. Only Communities is
// required; every other channel or sink is skipped when nil.
type AlertDeps struct {
	Communities repositories.CommunityRepository
	Alerts      repositories.AlertRepository
	Telegram    TelegramSender
	Calls       VoiceCaller
	WhatsApp    TextMessenger
	Archive     AlertArchiver
	Events      AlertEventsDispatcher
	EventLog    EventRecorder
	Metrics     *metrics.Collector
	Concurrency int
	Log         waLog.Logger
}

type alertService struct {
	AlertDeps
	now func() time.Time
}

func NewAlertService(deps AlertDeps) AlertService {
	if deps.Alerts == nil {
		deps.Alerts = repositories.NewInMemoryAlertRepo()
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = defaultNotifyConcurrency
	}
	if deps.Log == nil {
		deps.Log = waLog.Noop
	}
	return &alertService{AlertDeps: deps, now: time.Now}
}

func (s *alertService) Raise(ctx context.Context, p alert.Payload) (*alert.Dispatch, error) {
	p.Normalize()
	if p.Comunidad == "" {
		s.Metrics.Alert("", "invalid")
		return nil, ErrCommunityRequired
	}

	c, err := s.Communities.Get(ctx, p.Comunidad)
	switch {
	case errors.Is(err, repositories.ErrCommunityNotFound), errors.Is(err, repositories.ErrInvalidCommunityName):
		s.Metrics.Roster("miss")
		s.Metrics.Alert("", "unknown_community")
		s.Log.Warnf("alert for unknown community %q", p.Comunidad)
		return nil, ErrCommunityNotFound
	case err != nil:
		s.Metrics.Roster("error")
		return nil, fmt.Errorf("load community %s: %w", p.Comunidad, err)
	}
	s.Metrics.Roster("hit")

	key := community.NormalizeName(p.Comunidad)
	if c.ChatID == "" {
		s.Metrics.Alert(key, "no_chat")
		s.Log.Errorf("community %s has no chat_id", key)
		return nil, ErrChatNotConfigured
	}

	recipients := c.Recipients(p.UserTelegram.ID)
	d := &alert.Dispatch{
		ID:         uuid.NewString(),
		ReceivedAt: s.now().UTC(),
		Payload:    p,
		MapLink:    p.Ubicacion.MapLink(),
		Recipients: len(recipients),
	}
	s.Log.Infof("alert %s raised in %s by %s, notifying %d member(s)", d.ID, key, p.UserTelegram.ID, len(recipients))

	s.notifyMembers(ctx, d, recipients)
	s.notifyGroup(ctx, d, c.ChatID)
	s.record(ctx, d)

	s.Metrics.Alert(key, "sent")
	return d, nil
}

func (s *alertService) History(ctx context.Context, communityName string, limit int) ([]*alert.Dispatch, error) {
	if community.NormalizeName(communityName) == "" {
		return nil, ErrCommunityRequired
	}
	if _, err := s.Communities.Get(ctx, communityName); err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) || errors.Is(err, repositories.ErrInvalidCommunityName) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return s.Alerts.ListByCommunity(ctx, communityName, limit)
}

// notifyMembers delivers every channel to every recipient. Failures are logged
// and counted; they never abort the fan-out.
func (s *alertService) notifyMembers(ctx context.Context, d *alert.Dispatch, recipients []community.Member) {
	var g errgroup.Group
	g.SetLimit(s.Concurrency)

	for _, m := range recipients {
		if s.Telegram != nil && m.TelegramID != "" {
			g.Go(func() error {
				err := s.Telegram.SendMessage(ctx, m.TelegramID, MemberAlertHTML(d, m))
				s.observe(ChannelTelegram, m.TelegramID.String(), err)
				return nil
			})
		}
		if m.Telefono == "" {
			continue
		}
		if s.Calls != nil {
			g.Go(func() error {
				sid, err := s.Calls.Call(ctx, m.Telefono)
				s.observe(ChannelCall, m.Telefono, err)
				if err == nil {
					s.Log.Debugf("call %s placed to %s", sid, m.Telefono)
				}
				return nil
			})
		}
		if s.WhatsApp != nil {
			g.Go(func() error {
				err := s.WhatsApp.SendText(ctx, m.Telefono, MemberAlertText(d, m))
				s.observe(ChannelWhatsApp, m.Telefono, err)
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (s *alertService) notifyGroup(ctx context.Context, d *alert.Dispatch, chatID community.TelegramID) {
	if s.Telegram == nil {
		return
	}
	err := s.Telegram.SendMessage(ctx, chatID, GroupAlertHTML(d))
	s.observe(ChannelTelegramGroup, chatID.String(), err)
}

func (s *alertService) observe(channel, target string, err error) {
	s.Metrics.Notification(channel, err)
	if err != nil {
		s.Log.Warnf("%s notification to %s failed: %v", channel, target, err)
	}
}

// record stores the dispatch in every configured sink. A failing sink does not
// undo a delivered alert.
func (s *alertService) record(ctx context.Context, d *alert.Dispatch) {
	if err := s.Alerts.Record(ctx, d); err != nil {
		s.Log.Errorf("failed to record alert %s: %v", d.ID, err)
	}
	if s.EventLog != nil {
		if _, err := s.EventLog.Write(community.NormalizeName(d.Payload.Comunidad), d.ID, d); err != nil {
			s.Log.Warnf("failed to write event log for %s: %v", d.ID, err)
		}
	}
	if s.Archive != nil {
		if url, err := s.Archive.Archive(ctx, d); err != nil {
			s.Log.Warnf("failed to archive alert %s: %v", d.ID, err)
		} else {
			s.Log.Debugf("alert %s archived at %s", d.ID, url)
		}
	}
	if s.Events != nil {
		if err := s.Events.Dispatch(ctx, []community.AlertEvent{toAlertEvent(d)}); err != nil {
			s.Log.Warnf("failed to dispatch alert event %s: %v", d.ID, err)
		}
	}
}

func toAlertEvent(d *alert.Dispatch) community.AlertEvent {
	p := d.Payload
	return community.AlertEvent{
		Timestamp:   d.ReceivedAt,
		AlertID:     d.ID,
		CommunityID: community.NormalizeName(p.Comunidad),
		Action:      community.ActionAlertRaised,
		Recipients:  d.Recipients,
		Payload: community.AlertPayload{
			UserID:      p.UserTelegram.ID,
			UserName:    p.UserTelegram.FirstName,
			Tipo:        p.Tipo,
			Descripcion: p.Descripcion,
			Direccion:   p.Direccion,
			Lat:         p.Ubicacion.Lat,
			Lon:         p.Ubicacion.Lon,
			MapLink:     d.MapLink,
		},
	}
}
