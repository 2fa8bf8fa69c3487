package services

import (
	"context"
	"sync"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
)

type sentMessage struct {
	chatID community.TelegramID
	text   string
	label  string
	url    string
}

type fakeTelegram struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID community.TelegramID, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: html})
	return f.err
}

func (f *fakeTelegram) SendWebAppButton(_ context.Context, chatID community.TelegramID, text, label, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, label: label, url: url})
	return f.err
}

func (f *fakeTelegram) byChat() map[community.TelegramID]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[community.TelegramID]string, len(f.sent))
	for _, m := range f.sent {
		out[m.chatID] = m.text
	}
	return out
}

type fakeCaller struct {
	mu     sync.Mutex
	called []string
	err    error
}

func (f *fakeCaller) Call(_ context.Context, to string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, to)
	if f.err != nil {
		return "", f.err
	}
	return "CA" + to, nil
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent map[string]string
}

func (f *fakeMessenger) SendText(_ context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[string]string)
	}
	f.sent[phone] = text
	return nil
}

type fakeArchiver struct {
	archived []*alert.Dispatch
}

func (f *fakeArchiver) Archive(_ context.Context, d *alert.Dispatch) (string, error) {
	f.archived = append(f.archived, d)
	return "mem://" + archiveKey(d), nil
}

type fakeEvents struct {
	events []community.AlertEvent
}

func (f *fakeEvents) Dispatch(_ context.Context, events []community.AlertEvent) error {
	f.events = append(f.events, events...)
	return nil
}

type fakeEventLog struct {
	scopes []string
}

func (f *fakeEventLog) Write(scope, id string, evt any) (string, error) {
	f.scopes = append(f.scopes, scope)
	return scope + "/" + id + ".json", nil
}
