package controllers

import (
	"errors"
	"net/http"

	"github.com/faeln1/alerta-roja/internal/app/services"
	waLog "go.mau.fi/whatsmeow/util/log"
)

type CommunityController struct {
	service services.CommunityService
	log     waLog.Logger
}

func NewCommunityController(s services.CommunityService, log waLog.Logger) *CommunityController {
	return &CommunityController{service: s, log: orNoop(log)}
}

// Get serves GET /api/comunidad/{name}. Unknown communities answer 404 with an
// empty object, which the mini-app treats as a roster failure.
func (c *CommunityController) Get(w http.ResponseWriter, r *http.Request, name string) {
	comm, err := c.service.Get(r.Context(), decodePathSegment(name, c.log))
	if errors.Is(err, services.ErrCommunityNotFound) {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	if err != nil {
		c.log.Errorf("load community %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, comm)
}

func (c *CommunityController) List(w http.ResponseWriter, r *http.Request) {
	names, err := c.service.List(r.Context())
	if err != nil {
		c.log.Errorf("list communities: %v", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"comunidades": names})
}
