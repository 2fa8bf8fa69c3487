package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// TypeRedAlert is the only alert type the button emits.
	TypeRedAlert = "Alerta Roja Activada"
	// TypeUnspecified is used by the backend when a payload omits tipo.
	TypeUnspecified = "Alerta no especificada"
	// NoDescription is used by the backend when a payload omits descripcion.
	NoDescription = "Sin descripción"
	// AddressUnavailable is the address sentinel sent when no address is known.
	AddressUnavailable = "Dirección no disponible"
	// LocationUnavailable replaces the map link when no coordinates were sent.
	LocationUnavailable = "Ubicación no disponible"

	AnonymousID        = "Desconocido"
	AnonymousFirstName = "Anónimo"
)

// Identity is the acting user as reported by the page or the host platform.
type Identity struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// UnmarshalJSON accepts the id either as a JSON string or as a number, which is
// how the host platform reports it.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		FirstName *string         `json:"first_name"`
		LastName  *string         `json:"last_name"`
		Username  *string         `json:"username"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*i = Identity{ID: id, FirstName: deref(raw.FirstName), LastName: deref(raw.LastName), Username: deref(raw.Username)}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("identity id: %w", err)
	}
	return n.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Anonymous returns the identity submitted when nothing identifies the user.
func Anonymous() Identity {
	return Identity{ID: AnonymousID, FirstName: AnonymousFirstName}
}

// OrAnonymous returns a copy of id, or the anonymous sentinel when id is nil.
func OrAnonymous(id *Identity) Identity {
	if id == nil {
		return Anonymous()
	}
	return *id
}

// Location carries nullable coordinates; nil means "not known".
type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NewLocation builds a location with both coordinates set.
func NewLocation(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// Known reports whether both coordinates are present.
func (l Location) Known() bool {
	return l.Lat != nil && l.Lon != nil
}

// Payload is the JSON body posted to /api/alert.
type Payload struct {
	Tipo         string   `json:"tipo"`
	Descripcion  string   `json:"descripcion"`
	Ubicacion    Location `json:"ubicacion"`
	Direccion    string   `json:"direccion"`
	Comunidad    string   `json:"comunidad"`
	UserTelegram Identity `json:"user_telegram"`
}

// Response is the JSON body returned by /api/alert. Fields other than status are ignored.
type Response struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Dispatch is an accepted alert on its way to the community.
type Dispatch struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    Payload   `json:"payload"`
	MapLink    string    `json:"map_link"`
	Recipients int       `json:"recipients"`
}

// Normalize fills the backend defaults for fields the client left empty.
func (p *Payload) Normalize() {
	p.Comunidad = strings.TrimSpace(p.Comunidad)
	if strings.TrimSpace(p.Tipo) == "" {
		p.Tipo = TypeUnspecified
	}
	if strings.TrimSpace(p.Descripcion) == "" {
		p.Descripcion = NoDescription
	}
	if strings.TrimSpace(p.Direccion) == "" {
		p.Direccion = AddressUnavailable
	}
	if p.UserTelegram.FirstName == "" {
		p.UserTelegram.FirstName = AnonymousFirstName
	}
	if p.UserTelegram.ID == "" {
		p.UserTelegram.ID = "N/A"
	}
}

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// MapLink returns a maps search link for the location, or LocationUnavailable
// when a coordinate is missing or zero.
func (l Location) MapLink() string {
	if !l.Known() || *l.Lat == 0 || *l.Lon == 0 {
		return LocationUnavailable
	}
	return mapsSearchURL + strconv.FormatFloat(*l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(*l.Lon, 'f', -1, 64)
}
