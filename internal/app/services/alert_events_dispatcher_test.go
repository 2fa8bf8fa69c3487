package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func TestAlertEventsDispatcher(t *testing.T) {
	var received []community.AlertEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewAlertEventsDispatcher(srv.URL, " tok ", srv.Client(), waLog.Noop)
	evt := toAlertEvent(&alert.Dispatch{ID: "a1", ReceivedAt: time.Now(), Payload: samplePayload(), MapLink: "x", Recipients: 2})
	if err := d.Dispatch(context.Background(), []community.AlertEvent{evt}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(received) != 1 || received[0].AlertID != "a1" || received[0].Payload.UserID != "1" {
		t.Fatalf("received = %+v", received)
	}
}

func TestAlertEventsDispatcherFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	events := []community.AlertEvent{{AlertID: "a1"}}
	if err := NewAlertEventsDispatcher(srv.URL, "", srv.Client(), nil).Dispatch(context.Background(), events); err == nil {
		t.Fatal("expected error on 500")
	}
	if err := NewAlertEventsDispatcher("", "", nil, nil).Dispatch(context.Background(), events); err != nil {
		t.Fatalf("empty URL must be a no-op, got %v", err)
	}
	if err := NewAlertEventsDispatcher(srv.URL, "", srv.Client(), nil).Dispatch(context.Background(), nil); err != nil {
		t.Fatalf("no events must be a no-op, got %v", err)
	}
}

func TestArchiveKey(t *testing.T) {
	d := &alert.Dispatch{
		ID:         "a1",
		ReceivedAt: time.Date(2024, 3, 9, 23, 0, 0, 0, time.FixedZone("ART", -3*3600)),
		Payload:    alert.Payload{Comunidad: "Norte"},
	}
	if got, want := archiveKey(d), "alerts/norte/2024/03/a1.json"; got != want {
		t.Fatalf("archiveKey() = %q, want %q", got, want)
	}
}
