package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/faeln1/alerta-roja/internal/app/session"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var ErrUnavailable = errors.New("live location unavailable")

// Static always reports the same position.
type Static struct {
	Pos session.Position
}

func (s Static) CurrentPosition(ctx context.Context) (session.Position, error) {
	if err := ctx.Err(); err != nil {
		return session.Position{}, err
	}
	return s.Pos, nil
}

// Lookup asks an HTTP endpoint for the current position. The endpoint
// answers {"lat": <float>, "lon": <float>}.
type Lookup struct {
	url    string
	client *http.Client
	log    waLog.Logger
}

func NewLookup(url string, client *http.Client, log waLog.Logger) *Lookup {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = waLog.Noop
	}
	return &Lookup{url: strings.TrimSpace(url), client: client, log: log}
}

func (l *Lookup) CurrentPosition(ctx context.Context) (session.Position, error) {
	if l == nil || l.url == "" {
		return session.Position{}, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return session.Position{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return session.Position{}, fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return session.Position{}, fmt.Errorf("geo lookup: status %d", resp.StatusCode)
	}

	var body struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return session.Position{}, fmt.Errorf("geo lookup: decode: %w", err)
	}
	if body.Lat == nil || body.Lon == nil {
		return session.Position{}, ErrUnavailable
	}
	l.log.Debugf("live position %f,%f", *body.Lat, *body.Lon)
	return session.Position{Lat: *body.Lat, Lon: *body.Lon}, nil
}
