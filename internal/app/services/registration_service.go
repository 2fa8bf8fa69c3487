package services

import (
	"context"
	"strings"

	"github.com/faeln1/alerta-roja/internal/domain/telegram"
	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	registerPrompt      = "Presiona el botón para obtener tu ID de Telegram."
	registerButtonLabel = "Obtener mi ID"
)

// RegistrationService backs the bot flow that lets members discover their Telegram id.
type RegistrationService interface {
	Register(ctx context.Context, in telegram.RegisterInput) error
	HandleUpdate(ctx context.Context, upd telegram.Update) error
}

type registrationService struct {
	telegram  TelegramSender
	webAppURL string
	log       waLog.Logger
}

func NewRegistrationService(tg TelegramSender, webAppURL string, log waLog.Logger) RegistrationService {
	if log == nil {
		log = waLog.Noop
	}
	return &registrationService{telegram: tg, webAppURL: strings.TrimSpace(webAppURL), log: log}
}

// Register acknowledges an id reported by the mini-app. Nothing is stored: the
// operator copies the id into the community roster.
func (s *registrationService) Register(ctx context.Context, in telegram.RegisterInput) error {
	if strings.TrimSpace(in.TelegramID.String()) == "" {
		return ErrMissingTelegramID
	}
	s.log.Infof("telegram id registered: %s (user_info=%v)", in.TelegramID, in.UserInfo)
	return nil
}

// HandleUpdate answers the registration command with a button that opens the
// mini-app. Other updates are ignored.
func (s *registrationService) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	if upd.Message == nil {
		s.log.Debugf("update %d has no message", upd.UpdateID)
		return nil
	}
	if upd.Message.Text != telegram.RegisterCommand {
		return nil
	}
	if s.telegram == nil {
		return ErrTelegramDisabled
	}
	s.log.Infof("registration requested from chat %s", upd.Message.Chat.ID)
	return s.telegram.SendWebAppButton(ctx, upd.Message.Chat.ID, registerPrompt, registerButtonLabel, s.webAppURL)
}
