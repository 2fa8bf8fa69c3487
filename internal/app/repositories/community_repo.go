package repositories

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"

	"github.com/faeln1/alerta-roja/internal/domain/community"
)

var (
	ErrCommunityNotFound    = errors.New("community not found")
	ErrInvalidCommunityName = errors.New("invalid community name")
	ErrCommunityConflict    = errors.New("community already exists")
)

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// CommunityRepository stores community rosters keyed by their normalized name.
type CommunityRepository interface {
	Get(ctx context.Context, name string) (*community.Community, error)
	Save(ctx context.Context, c *community.Community) error
	List(ctx context.Context) ([]string, error)
}

// normalizeKey lower-cases the name and rejects anything that is not a plain
// identifier.
func normalizeKey(name string) (string, error) {
	key := community.NormalizeName(name)
	if key == "" || !validName.MatchString(key) || key == "." || key == ".." {
		return "", ErrInvalidCommunityName
	}
	return key, nil
}

type inMemoryCommunityRepo struct {
	mu    sync.RWMutex
	items map[string]*community.Community
}

func NewInMemoryCommunityRepo() CommunityRepository {
	return &inMemoryCommunityRepo{items: make(map[string]*community.Community)}
}

func (r *inMemoryCommunityRepo) Get(ctx context.Context, name string) (*community.Community, error) {
	key, err := normalizeKey(name)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[key]
	if !ok {
		return nil, ErrCommunityNotFound
	}
	return cloneCommunity(c), nil
}

func (r *inMemoryCommunityRepo) Save(ctx context.Context, c *community.Community) error {
	key, err := normalizeKey(c.Name)
	if err != nil {
		return err
	}
	cp := cloneCommunity(c)
	cp.Name = key
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = cp
	return nil
}

func (r *inMemoryCommunityRepo) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for k := range r.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func cloneCommunity(c *community.Community) *community.Community {
	cp := *c
	cp.Miembros = make([]community.Member, len(c.Miembros))
	for i, m := range c.Miembros {
		if m.Geolocalizacion != nil {
			g := *m.Geolocalizacion
			m.Geolocalizacion = &g
		}
		cp.Miembros[i] = m
	}
	return &cp
}
