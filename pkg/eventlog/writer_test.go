package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"
)

type sampleEvent struct {
	Community string `json:"community"`
}

func TestNilWriterIsDisabled(t *testing.T) {
	w := NewWriter("  ", waLog.Noop)
	if w.Enabled() {
		t.Fatal("expected disabled writer")
	}
	path, err := w.Write("norte", "abc", sampleEvent{})
	if err != nil || path != "" {
		t.Fatalf("unexpected result %q %v", path, err)
	}
}

func TestWriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, waLog.Noop)
	w.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }

	path, err := w.Write("../Norte Alta", "a1", &sampleEvent{Community: "norte"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := filepath.Join(dir, "Norte_Alta", "20240501T103000Z-a1.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["event_type"] != "sampleEvent" {
		t.Fatalf("event_type = %v", record["event_type"])
	}
	payload, _ := record["payload"].(map[string]any)
	if payload["community"] != "norte" {
		t.Fatalf("payload = %v", record["payload"])
	}
}

func TestWriteGeneratesID(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)
	path, err := w.Write("", "", sampleEvent{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(path, string(filepath.Separator)+"unknown"+string(filepath.Separator)) {
		t.Fatalf("expected unknown scope in %q", path)
	}
}

func TestSanitizeSegment(t *testing.T) {
	cases := map[string]string{
		"":           "unknown",
		"norte":      "norte",
		"a/b":        "a_b",
		"..":         "unknown",
		" sur-este ": "sur-este",
	}
	for in, want := range cases {
		if got := sanitizeSegment(in); got != want {
			t.Errorf("sanitizeSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
