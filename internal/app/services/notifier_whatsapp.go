package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/faeln1/alerta-roja/internal/platform/whatsapp"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// TextMessenger relays plain text to a phone number.
type TextMessenger interface {
	SendText(ctx context.Context, phone, text string) error
}

type whatsAppMessenger struct {
	mgr     *whatsapp.Manager
	channel string
}

// NewWhatsAppMessenger sends through the named channel of mgr. The channel must
// be paired and connected at send time; otherwise SendText fails fast.
func NewWhatsAppMessenger(mgr *whatsapp.Manager, channel string) TextMessenger {
	return &whatsAppMessenger{mgr: mgr, channel: channel}
}

func (w *whatsAppMessenger) SendText(ctx context.Context, phone, text string) error {
	ch, err := w.mgr.Ready(w.channel)
	if err != nil {
		return err
	}
	jid, err := parseDestinationJID(phone)
	if err != nil {
		return err
	}
	_, err = ch.Client.SendMessage(ctx, jid, &waProto.Message{Conversation: proto.String(text)})
	return err
}

func parseDestinationJID(raw string) (types.JID, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return types.JID{}, ErrInvalidRecipient
	}
	if strings.Contains(cleaned, "@") {
		return types.ParseJID(cleaned)
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cleaned)
	if digits == "" {
		return types.JID{}, ErrInvalidRecipient
	}
	return types.NewJID(digits, types.DefaultUserServer), nil
}
