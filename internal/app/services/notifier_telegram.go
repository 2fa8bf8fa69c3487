package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/faeln1/alerta-roja/internal/domain/telegram"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// TelegramSender talks to the Bot API on behalf of the alert bot.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID community.TelegramID, html string) error
	SendWebAppButton(ctx context.Context, chatID community.TelegramID, text, label, url string) error
}

// TelegramError is returned when the Bot API rejects a call.
type TelegramError struct {
	Method      string
	Status      int
	Description string
}

func (e *TelegramError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram %s: status %d", e.Method, e.Status)
	}
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.Status, e.Description)
}

type telegramClient struct {
	client  *http.Client
	baseURL string
	token   string
	log     waLog.Logger
}

func NewTelegramClient(apiURL, token string, client *http.Client, log waLog.Logger) TelegramSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &telegramClient{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		token:   strings.TrimSpace(token),
		log:     log,
	}
}

func (c *telegramClient) SendMessage(ctx context.Context, chatID community.TelegramID, html string) error {
	return c.call(ctx, "sendMessage", telegram.SendMessageRequest{
		ChatID:                chatID,
		Text:                  html,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
}

func (c *telegramClient) SendWebAppButton(ctx context.Context, chatID community.TelegramID, text, label, url string) error {
	return c.call(ctx, "sendMessage", telegram.SendMessageRequest{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &telegram.ReplyMarkup{InlineKeyboard: [][]telegram.InlineButton{{
			{Text: label, WebApp: &telegram.WebApp{URL: url}},
		}}},
	})
}

func (c *telegramClient) call(ctx context.Context, method string, body any) error {
	if c.token == "" {
		return ErrTelegramDisabled
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// transport errors embed the URL, which carries the bot token
		if c.log != nil {
			c.log.Warnf("telegram %s request failed", method)
		}
		return fmt.Errorf("telegram %s: request failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &TelegramError{Method: method, Status: resp.StatusCode}
		var envelope telegram.APIResponse
		if raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)); json.Unmarshal(raw, &envelope) == nil {
			apiErr.Description = envelope.Description
		}
		if c.log != nil {
			c.log.Warnf("telegram %s returned status %d: %s", method, resp.StatusCode, apiErr.Description)
		}
		return apiErr
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
