package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faeln1/alerta-roja/internal/app/services"
	"github.com/faeln1/alerta-roja/internal/domain/telegram"
	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	msgRegistered  = "ID recibido y registrado."
	msgIDMissing   = "ID no proporcionado"
	webhookAckBody = "ok"
)

// TelegramController serves the bot webhook and the id registration endpoint.
type TelegramController struct {
	service services.RegistrationService
	log     waLog.Logger
}

func NewTelegramController(s services.RegistrationService, log waLog.Logger) *TelegramController {
	return &TelegramController{service: s, log: orNoop(log)}
}

// Register handles POST /api/register.
func (c *TelegramController) Register(w http.ResponseWriter, r *http.Request) {
	var in telegram.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		c.log.Warnf("invalid register body: %v", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if err := c.service.Register(r.Context(), in); err != nil {
		if errors.Is(err, services.ErrMissingTelegramID) {
			writeError(w, http.StatusBadRequest, msgIDMissing)
			return
		}
		c.log.Errorf("register telegram id: %v", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: msgRegistered})
}

// Webhook handles POST /webhook. Telegram retries anything but a 200, so the
// update is always acknowledged and failures are only logged.
func (c *TelegramController) Webhook(w http.ResponseWriter, r *http.Request) {
	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		c.log.Warnf("invalid telegram update: %v", err)
	} else if err := c.service.HandleUpdate(r.Context(), upd); err != nil {
		c.log.Errorf("handle telegram update %d: %v", upd.UpdateID, err)
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: webhookAckBody})
}
