package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/faeln1/alerta-roja/internal/app/services"
	"github.com/faeln1/alerta-roja/internal/domain/alert"
	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	msgInternal          = "Error interno del servidor"
	msgInvalidJSON       = "JSON inválido"
	msgCommunityRequired = "Nombre de comunidad no proporcionado"
	msgChatNotConfigured = "ID del chat de Telegram no configurado para esta comunidad"
	defaultHistoryLimit  = 20
)

type AlertController struct {
	service services.AlertService
	log     waLog.Logger
}

func NewAlertController(s services.AlertService, log waLog.Logger) *AlertController {
	return &AlertController{service: s, log: orNoop(log)}
}

// Create handles POST /api/alert.
func (c *AlertController) Create(w http.ResponseWriter, r *http.Request) {
	var in alert.Payload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		c.log.Warnf("invalid alert body: %v", err)
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	d, err := c.service.Raise(r.Context(), in)
	if err != nil {
		status, msg := mapAlertStatus(err, in.Comunidad)
		if status == http.StatusInternalServerError {
			c.log.Errorf("raise alert for %q: %v", in.Comunidad, err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, alert.Response{Status: "Alerta enviada a la comunidad " + d.Payload.Comunidad})
}

// History handles GET /api/comunidad/{name}/alertas?limit=N.
func (c *AlertController) History(w http.ResponseWriter, r *http.Request, name string) {
	name = decodePathSegment(name, c.log)
	items, err := c.service.History(r.Context(), name, queryInt(r, "limit", defaultHistoryLimit))
	if err != nil {
		status, msg := mapAlertStatus(err, name)
		if status == http.StatusInternalServerError {
			c.log.Errorf("alert history for %q: %v", name, err)
		}
		writeError(w, status, msg)
		return
	}
	if items == nil {
		items = []*alert.Dispatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comunidad": name, "alertas": items})
}

func mapAlertStatus(err error, name string) (int, string) {
	switch {
	case errors.Is(err, services.ErrCommunityRequired):
		return http.StatusBadRequest, msgCommunityRequired
	case errors.Is(err, services.ErrCommunityNotFound):
		return http.StatusNotFound, fmt.Sprintf("Comunidad '%s' no encontrada", name)
	case errors.Is(err, services.ErrChatNotConfigured):
		return http.StatusInternalServerError, msgChatNotConfigured
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
