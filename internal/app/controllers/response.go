package controllers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	waLog "go.mau.fi/whatsmeow/util/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends the message users see; internal details stay in the log.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodePathSegment(raw string, log waLog.Logger) string {
	value, err := url.PathUnescape(raw)
	if err != nil {
		log.Warnf("failed to decode path segment %s: %v", raw, err)
		return raw
	}
	return value
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func orNoop(log waLog.Logger) waLog.Logger {
	if log == nil {
		return waLog.Noop
	}
	return log
}
