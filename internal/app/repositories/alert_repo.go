package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
)

// AlertRepository keeps the history of dispatched alerts.
type AlertRepository interface {
	Record(ctx context.Context, d *alert.Dispatch) error
	ListByCommunity(ctx context.Context, name string, limit int) ([]*alert.Dispatch, error)
}

const defaultAlertListLimit = 50

type inMemoryAlertRepo struct {
	mu    sync.RWMutex
	items map[string][]*alert.Dispatch
}

func NewInMemoryAlertRepo() AlertRepository {
	return &inMemoryAlertRepo{items: make(map[string][]*alert.Dispatch)}
}

func (r *inMemoryAlertRepo) Record(ctx context.Context, d *alert.Dispatch) error {
	key := community.NormalizeName(d.Payload.Comunidad)
	cp := *d
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = append(r.items[key], &cp)
	return nil
}

// ListByCommunity returns the newest alerts first.
func (r *inMemoryAlertRepo) ListByCommunity(ctx context.Context, name string, limit int) ([]*alert.Dispatch, error) {
	if limit <= 0 {
		limit = defaultAlertListLimit
	}
	r.mu.RLock()
	src := r.items[community.NormalizeName(name)]
	out := make([]*alert.Dispatch, len(src))
	copy(out, src)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
