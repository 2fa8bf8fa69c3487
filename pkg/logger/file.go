package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zeroLogger adapts a zerolog.Logger to the waLog.Logger interface used
// across the code base.
type zeroLogger struct {
	root   zerolog.Logger
	z      zerolog.Logger
	module string
}

// NewZerolog wraps w in a waLog.Logger backed by zerolog JSON lines.
func NewZerolog(w io.Writer, module, level string) waLog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(normalizeLevel(level)))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	root := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return newZeroLogger(root, module)
}

func newZeroLogger(root zerolog.Logger, module string) *zeroLogger {
	return &zeroLogger{root: root, z: root.With().Str("module", module).Logger(), module: module}
}

// NewFile opens (or creates) path for appending and logs there. The terminal
// client owns stdout, so its logs go to a file instead.
func NewFile(path, level string) (waLog.Logger, io.Closer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return waLog.Noop, io.NopCloser(nil), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewZerolog(f, "Alerta", level), f, nil
}

func (l *zeroLogger) Debugf(msg string, args ...interface{}) { l.z.Debug().Msgf(msg, args...) }
func (l *zeroLogger) Infof(msg string, args ...interface{})  { l.z.Info().Msgf(msg, args...) }
func (l *zeroLogger) Warnf(msg string, args ...interface{})  { l.z.Warn().Msgf(msg, args...) }
func (l *zeroLogger) Errorf(msg string, args ...interface{}) { l.z.Error().Msgf(msg, args...) }

func (l *zeroLogger) Sub(module string) waLog.Logger {
	return newZeroLogger(l.root, l.module+"/"+module)
}
