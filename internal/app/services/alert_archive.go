package services

import (
	"context"
	"fmt"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/faeln1/alerta-roja/pkg/storage"
)

// AlertArchiver keeps a durable copy of every dispatched alert.
type AlertArchiver interface {
	Archive(ctx context.Context, d *alert.Dispatch) (string, error)
}

type objectArchiver struct {
	store storage.Service
}

func NewAlertArchiver(store storage.Service) AlertArchiver {
	return &objectArchiver{store: store}
}

func (a *objectArchiver) Archive(ctx context.Context, d *alert.Dispatch) (string, error) {
	return storage.PutJSON(ctx, a.store, archiveKey(d), d)
}

// archiveKey lays alerts out as alerts/<community>/<yyyy>/<mm>/<id>.json.
func archiveKey(d *alert.Dispatch) string {
	ts := d.ReceivedAt.UTC()
	name := community.NormalizeName(d.Payload.Comunidad)
	return fmt.Sprintf("alerts/%s/%04d/%02d/%s.json", name, ts.Year(), int(ts.Month()), d.ID)
}
