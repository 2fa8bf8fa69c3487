package community

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Community is the roster document served at /api/comunidad/{name}.
type Community struct {
	Name     string     `json:"-"`
	ChatID   TelegramID `json:"chat_id,omitempty"`
	Miembros []Member   `json:"miembros"`
}

// Geolocation is a member's pre-registered position.
type Geolocation struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Direccion string  `json:"direccion,omitempty"`
}

// Member represents one entry of a community roster.
type Member struct {
	TelegramID       TelegramID   `json:"telegram_id"`
	Nombre           string       `json:"nombre,omitempty"`
	Telefono         string       `json:"telefono,omitempty"`
	AlertasActivadas bool         `json:"alertas_activadas,omitempty"`
	Direccion        string       `json:"direccion,omitempty"`
	Geolocalizacion  *Geolocation `json:"geolocalizacion,omitempty"`
}

// HasAddress reports whether the member registered a street address.
func (m Member) HasAddress() bool {
	return strings.TrimSpace(m.Direccion) != ""
}

// TelegramID holds a Telegram user or chat id. Roster files carry it either as a JSON
// number or as a string, so it is kept in its textual form.
type TelegramID string

func (id TelegramID) String() string { return string(id) }

// MarshalJSON emits numeric ids as numbers and everything else as strings.
func (id TelegramID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return []byte(s), nil
		}
	}
	return json.Marshal(s)
}

func (id *TelegramID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TelegramID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("telegram_id: %w", err)
	}
	*id = TelegramID(n.String())
	return nil
}

// FindMember returns the first member whose telegram id string-equals id.
func FindMember(members []Member, id string) (*Member, bool) {
	if id == "" {
		return nil, false
	}
	for i := range members {
		if members[i].TelegramID.String() == id {
			m := members[i]
			return &m, true
		}
	}
	return nil, false
}

// Recipients returns the members that opted into alerts, excluding the sender.
func (c *Community) Recipients(senderID string) []Member {
	out := make([]Member, 0, len(c.Miembros))
	for _, m := range c.Miembros {
		if !m.AlertasActivadas {
			continue
		}
		if m.TelegramID.String() == senderID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// NormalizeName maps a community name to its storage key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
