package logger

import (
	"os"
	"strings"

	waLog "go.mau.fi/whatsmeow/util/log"
)

type Logger struct {
	App  waLog.Logger
	HTTP waLog.Logger
}

func New(level string) *Logger {
	level = normalizeLevel(level)
	// https://no-color.org
	app := waLog.Stdout("Alerta", level, os.Getenv("NO_COLOR") == "")
	return &Logger{
		App:  app,
		HTTP: app.Sub("HTTP"),
	}
}

// Component returns the logger handed to a service or platform adapter.
func (l *Logger) Component(name string) waLog.Logger {
	if l == nil || l.App == nil {
		return waLog.Noop
	}
	return l.App.Sub(name)
}

func InitForTests() *Logger {
	return &Logger{App: waLog.Noop, HTTP: waLog.Noop}
}

func normalizeLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	switch level {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return level
	case "WARNING":
		return "WARN"
	default:
		return "INFO"
	}
}
