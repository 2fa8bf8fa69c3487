package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
}

// Client talks to the alert backend. It applies no timeout of its own.
type Client struct {
	baseURL string
	http    *http.Client
	log     waLog.Logger
}

func New(baseURL string, httpClient *http.Client, log waLog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = waLog.Noop
	}
	return &Client{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), http: httpClient, log: log}
}

// FetchRoster performs GET /api/comunidad/{name} and returns its members.
func (c *Client) FetchRoster(ctx context.Context, name string) ([]community.Member, error) {
	target := c.baseURL + "/api/comunidad/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("GET %s", target)

	var doc community.Community
	if err := c.do(req, "fetch roster", &doc); err != nil {
		return nil, err
	}
	if doc.Miembros == nil {
		doc.Miembros = []community.Member{}
	}
	return doc.Miembros, nil
}

// SendAlert performs POST /api/alert with the JSON payload.
func (c *Client) SendAlert(ctx context.Context, payload alert.Payload) (*alert.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	target := c.baseURL + "/api/alert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.log.Debugf("POST %s (%d bytes)", target, len(body))

	var out alert.Response
	if err := c.do(req, "send alert", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warnf("%s: status %d", op, resp.StatusCode)
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
