package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
)

const defaultMemberName = "miembro"

// userMention links the sender's Telegram profile inside an HTML message.
func userMention(id alert.Identity) string {
	return fmt.Sprintf("<a href='tg://user?id=%s'>%s</a>", html.EscapeString(id.ID), html.EscapeString(id.FirstName))
}

func mapAnchor(link string) string {
	if link == alert.LocationUnavailable {
		return link
	}
	return fmt.Sprintf("<a href='%s'>Ver en Google Maps</a>", html.EscapeString(link))
}

// MemberAlertHTML is the private message sent to every recipient.
func MemberAlertHTML(d *alert.Dispatch, m community.Member) string {
	p := d.Payload
	name := strings.TrimSpace(m.Nombre)
	if name == "" {
		name = defaultMemberName
	}
	var b strings.Builder
	b.WriteString("<b>🚨 ALERTA DE EMERGENCIA 🚨</b>\n")
	fmt.Fprintf(&b, "<b>Tipo:</b> %s\n", html.EscapeString(p.Tipo))
	fmt.Fprintf(&b, "<b>Comunidad:</b> %s\n", html.EscapeString(strings.ToUpper(p.Comunidad)))
	fmt.Fprintf(&b, "<b>Usuario que activó la alarma:</b> %s\n", userMention(p.UserTelegram))
	fmt.Fprintf(&b, "<b>Descripción:</b> %s\n", html.EscapeString(p.Descripcion))
	fmt.Fprintf(&b, "<b>Ubicación:</b> %s\n", mapAnchor(d.MapLink))
	fmt.Fprintf(&b, "<b>Dirección:</b> %s\n\n", html.EscapeString(p.Direccion))
	fmt.Fprintf(&b, "¡%s, por favor, revisa el grupo para más detalles!", html.EscapeString(name))
	return b.String()
}

// GroupAlertHTML is the confirmation posted to the community chat.
func GroupAlertHTML(d *alert.Dispatch) string {
	p := d.Payload
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🚨 ALERTA ROJA ACTIVADA EN LA COMUNIDAD %s</b>\n", html.EscapeString(strings.ToUpper(p.Comunidad)))
	fmt.Fprintf(&b, "<b>Activada por:</b> %s\n", userMention(p.UserTelegram))
	fmt.Fprintf(&b, "<b>Descripción:</b> %s\n", html.EscapeString(p.Descripcion))
	fmt.Fprintf(&b, "<b>Ubicación:</b> %s\n", mapAnchor(d.MapLink))
	fmt.Fprintf(&b, "<b>Dirección:</b> %s\n\n", html.EscapeString(p.Direccion))
	b.WriteString("ℹ️ Se han enviado notificaciones a los miembros registrados y se ha iniciado el protocolo de llamadas.")
	return b.String()
}

// MemberAlertText is the plain-text variant relayed over WhatsApp.
func MemberAlertText(d *alert.Dispatch, m community.Member) string {
	p := d.Payload
	name := strings.TrimSpace(m.Nombre)
	if name == "" {
		name = defaultMemberName
	}
	lines := []string{
		"🚨 *ALERTA DE EMERGENCIA* 🚨",
		"*Tipo:* " + p.Tipo,
		"*Comunidad:* " + strings.ToUpper(p.Comunidad),
		"*Activada por:* " + p.UserTelegram.FirstName,
		"*Descripción:* " + p.Descripcion,
		"*Ubicación:* " + d.MapLink,
		"*Dirección:* " + p.Direccion,
		"",
		fmt.Sprintf("¡%s, por favor, revisa el grupo para más detalles!", name),
	}
	return strings.Join(lines, "\n")
}
