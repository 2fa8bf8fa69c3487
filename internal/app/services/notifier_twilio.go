package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// AlertTwiML is what a called member hears.
const AlertTwiML = `<Response><Say voice="woman" language="es-ES">Emergencia, revisa tu celular.</Say></Response>`

// VoiceCaller places the emergency voice call.
type VoiceCaller interface {
	Call(ctx context.Context, to string) (string, error)
}

// TwilioError is returned when the Calls API rejects a call.
type TwilioError struct {
	Status  int
	Code    int
	Message string
}

func (e *TwilioError) Error() string {
	return fmt.Sprintf("twilio call: status %d (code %d): %s", e.Status, e.Code, e.Message)
}

type twilioCaller struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	log        waLog.Logger
}

func NewTwilioCaller(apiURL, accountSID, authToken, from string, client *http.Client, log waLog.Logger) VoiceCaller {
	if client == nil {
		client = http.DefaultClient
	}
	return &twilioCaller{
		client:     client,
		baseURL:    strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		log:        log,
	}
}

// Call starts one call and returns its SID.
func (t *twilioCaller) Call(ctx context.Context, to string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", ErrInvalidPhone
	}
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Twiml", AlertTwiML)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", t.baseURL, url.PathEscape(t.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio call: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &TwilioError{Status: resp.StatusCode}
		var body struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code, apiErr.Message = body.Code, body.Message
		}
		return "", apiErr
	}

	var created struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("twilio call: decode response: %w", err)
	}
	if t.log != nil {
		t.log.Debugf("call started with SID %s", created.SID)
	}
	return created.SID, nil
}
