package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotlinehub/backend/internal/cache"
	"github.com/hotlinehub/backend/internal/models"
)

const (
	cachePrefix = "catalog:list:"
	cacheTTL    = 30 * time.Second
)

// CatalogRepo is the repository surface the service needs.
type CatalogRepo interface {
	ListActive(ctx context.Context, category, search string) ([]*models.Service, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p CreateParams) (*models.Service, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) error
}

// ListCache is the slice of the cache the service needs. Satisfied by
// *cache.Redis, including its nil no-op form.
type ListCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type Service struct {
	repo  CatalogRepo
	cache ListCache
	log   *slog.Logger
}

func NewService(repo CatalogRepo, c ListCache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if c == nil {
		c = (*cache.Redis)(nil)
	}
	return &Service{repo: repo, cache: c, log: log}
}

// List returns active services, cached briefly per (category, search)
// pair. Cache failures degrade to the database, never to an error. An
// unknown category matches nothing; the filter is exact, not advisory.
func (s *Service) List(ctx context.Context, category, search string) ([]*models.Service, error) {
	category, known := normalizeCategory(category)
	if !known {
		return []*models.Service{}, nil
	}
	search = strings.TrimSpace(search)

	key := fmt.Sprintf("%s%s:%s", cachePrefix, category, strings.ToLower(search))
	var cached []*models.Service
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.Warn("catalog cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	list, err := s.repo.ListActive(ctx, category, search)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, list, cacheTTL); err != nil {
		s.log.Warn("catalog cache write failed", "error", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return s.repo.GetActive(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Service, error) {
	svc, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return svc, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	if err := s.repo.Update(ctx, id, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, cachePrefix); err != nil {
		s.log.Warn("catalog cache invalidation failed", "error", err)
	}
}

// normalizeCategory maps the client's "all" pseudo-category to no
// filter. Unknown values report !known so the caller can short-circuit
// to an empty result.
func normalizeCategory(category string) (string, bool) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return "", true
	}
	if !models.ValidCategories[category] {
		return "", false
	}
	return category, true
}
