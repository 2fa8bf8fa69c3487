package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var invalidSegment = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Writer keeps one JSON file per accepted alert on disk.
type Writer struct {
	baseDir string
	log     waLog.Logger
	now     func() time.Time
}

// NewWriter returns nil when baseDir is empty; a nil Writer discards everything.
func NewWriter(baseDir string, log waLog.Logger) *Writer {
	base := strings.TrimSpace(baseDir)
	if base == "" {
		return nil
	}
	return &Writer{baseDir: filepath.Clean(base), log: log, now: time.Now}
}

func (w *Writer) Enabled() bool {
	return w != nil && w.baseDir != ""
}

// Write stores evt under baseDir/<scope>/<timestamp>-<id>.json and returns the
// file path. A blank id gets a fresh uuid.
func (w *Writer) Write(scope, id string, evt any) (string, error) {
	if !w.Enabled() || evt == nil {
		return "", nil
	}

	dir := filepath.Join(w.baseDir, sanitizeSegment(scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	ts := w.now().UTC()
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", ts.Format("20060102T150405Z"), sanitizeSegment(id)))

	record := map[string]any{
		"event_type":  detectEventType(evt),
		"scope":       scope,
		"id":          id,
		"received_at": ts.Format(time.RFC3339Nano),
		"payload":     evt,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		record["payload"] = nil
		record["marshal_error"] = err.Error()
		record["payload_text"] = fmt.Sprintf("%+v", evt)
		if data, err = json.MarshalIndent(record, "", "  "); err != nil {
			return "", fmt.Errorf("marshal fallback: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if w.log != nil {
		w.log.Debugf("event written to %s", path)
	}
	return path, nil
}

func detectEventType(evt any) string {
	t := strings.TrimPrefix(fmt.Sprintf("%T", evt), "*")
	if idx := strings.LastIndex(t, "."); idx >= 0 && idx < len(t)-1 {
		return t[idx+1:]
	}
	if t == "" {
		return "Unknown"
	}
	return t
}

func sanitizeSegment(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "unknown"
	}
	sanitized := invalidSegment.ReplaceAllString(candidate, "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}
