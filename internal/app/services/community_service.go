package services

import (
	"context"
	"errors"

	"github.com/faeln1/alerta-roja/internal/app/repositories"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/faeln1/alerta-roja/internal/platform/metrics"
)

// CommunityService serves community rosters to the mini-app.
type CommunityService interface {
	Get(ctx context.Context, name string) (*community.Community, error)
	List(ctx context.Context) ([]string, error)
}

type communityService struct {
	repo    repositories.CommunityRepository
	metrics *metrics.Collector
}

func NewCommunityService(repo repositories.CommunityRepository, m *metrics.Collector) CommunityService {
	return &communityService{repo: repo, metrics: m}
}

func (s *communityService) Get(ctx context.Context, name string) (*community.Community, error) {
	c, err := s.repo.Get(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrCommunityNotFound), errors.Is(err, repositories.ErrInvalidCommunityName):
		s.metrics.Roster("miss")
		return nil, ErrCommunityNotFound
	case err != nil:
		s.metrics.Roster("error")
		return nil, err
	}
	s.metrics.Roster("hit")
	if c.Miembros == nil {
		c.Miembros = []community.Member{}
	}
	return c, nil
}

func (s *communityService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}
