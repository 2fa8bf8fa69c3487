package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/faeln1/alerta-roja/internal/domain/community"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// AlertEventsDispatcher forwards accepted alerts to an external webhook.
type AlertEventsDispatcher interface {
	Dispatch(ctx context.Context, events []community.AlertEvent) error
}

type alertEventsDispatcher struct {
	client *http.Client
	url    string
	log    waLog.Logger
	token  string
}

// NewAlertEventsDispatcher posts to a fixed URL taken from the environment.
func NewAlertEventsDispatcher(url, token string, client *http.Client, log waLog.Logger) AlertEventsDispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &alertEventsDispatcher{client: client, url: strings.TrimSpace(url), log: log, token: strings.TrimSpace(token)}
}

func (d *alertEventsDispatcher) Dispatch(ctx context.Context, events []community.AlertEvent) error {
	if len(events) == 0 {
		return nil
	}
	if d == nil {
		return errors.New("dispatcher not configured")
	}
	if d.url == "" {
		if d.log != nil {
			d.log.Debugf("alert events webhook skipped: empty URL")
		}
		return nil
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	if d.log != nil {
		d.log.Debugf("sending %d alert event(s) to %s", len(events), d.url)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if d.log != nil {
			d.log.Warnf("failed to deliver alert events: %v", err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if d.log != nil {
			d.log.Warnf("alert events webhook returned status %d", resp.StatusCode)
		}
		return errors.New("alert events webhook returned non-2xx status")
	}
	return nil
}
