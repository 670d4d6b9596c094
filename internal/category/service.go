package category

import (
	"context"
	"time"

	"ramyeon-storefront/internal/cache"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"

	"go.uber.org/zap"
)

// Service reads the category hierarchy through a TTL cache.
type Service interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetSubcategories(ctx context.Context, categoryID string) ([]*Subcategory, error)
	Hierarchy(ctx context.Context) ([]*Category, error)
	ClearCache()
}

// service implements the Service interface
type service struct {
	repo    Repository
	metrics *metrics.Metrics

	categories    *cache.Cache[string, []*Category]
	category      *cache.Cache[string, *Category]
	subcategories *cache.Cache[string, []*Subcategory]
}

// NewService creates a new category service
func NewService(repo Repository, ttl time.Duration, maxEntries int, m *metrics.Metrics) Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:          repo,
		metrics:       m,
		categories:    cache.Must[string, []*Category](1, ttl),
		category:      cache.Must[string, *Category](maxEntries, ttl),
		subcategories: cache.Must[string, []*Subcategory](maxEntries, ttl),
	}
}

// GetCategories retrieves all categories
func (s *service) GetCategories(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetCategories"),
	)

	if cached, ok := s.categories.Get("all"); ok {
		s.metrics.CacheHit("categories")
		return cached, nil
	}
	s.metrics.CacheMiss("categories")

	log.Info("GetCategories started")
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, err
	}
	if categories == nil {
		categories = []*Category{}
	}

	s.categories.Set("all", categories)
	log.Info("GetCategories success", zap.Int("count", len(categories)))
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id string) (*Category, error) {
	if cached, ok := s.category.Get(id); ok {
		s.metrics.CacheHit("category")
		return cached, nil
	}
	s.metrics.CacheMiss("category")

	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get category", zap.String("category_id", id), zap.Error(err))
		return nil, err
	}
	s.category.Set(id, c)
	return c, nil
}

// GetSubcategories retrieves the subcategories of one category
func (s *service) GetSubcategories(ctx context.Context, categoryID string) ([]*Subcategory, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetSubcategories"),
		zap.String("category_id", categoryID),
	)

	if cached, ok := s.subcategories.Get(categoryID); ok {
		s.metrics.CacheHit("subcategories")
		return cached, nil
	}
	s.metrics.CacheMiss("subcategories")

	subcategories, err := s.repo.GetSubcategories(ctx, categoryID)
	if err != nil {
		log.Error("failed to get subcategories", zap.Error(err))
		return nil, err
	}

	s.subcategories.Set(categoryID, subcategories)
	log.Info("GetSubcategories success", zap.Int("count", len(subcategories)))
	return subcategories, nil
}

// Hierarchy returns every category with its subcategories attached. A
// category whose subcategories fail to load is returned without them.
func (s *service) Hierarchy(ctx context.Context) ([]*Category, error) {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*Category, 0, len(categories))
	for _, c := range categories {
		cp := *c
		if len(cp.Subcategories) == 0 {
			subs, err := s.GetSubcategories(ctx, c.ID)
			if err != nil {
				logger.FromCtx(ctx).Warn("subcategories unavailable", zap.String("category_id", c.ID), zap.Error(err))
			} else {
				cp.Subcategories = subs
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s *service) ClearCache() {
	s.categories.Purge()
	s.category.Purge()
	s.subcategories.Purge()
}
