package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/cache"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/entity"
	repo "github.com/velure-commerce/velure/internal/repository/product"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/velure-commerce/velure/service/catalog")

const listCacheKey = "catalog:list"

// Service exposes the product catalog, consulting cache when available.
type Service struct {
	repo     *repo.Repository
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// List returns the full catalog, cache first.
func (s *Service) List(ctx context.Context) ([]*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	if products, err := s.listFromCache(ctx); err == nil {
		return products, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load catalog", errorbank.WithCause(err))
	}

	if err := s.storeListInCache(ctx, products); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return products, nil
}

// GetBySlug returns one product by slug, cache first.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetBySlug", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	key := "catalog:product:" + slug
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var product entity.Product
			if err := json.Unmarshal(raw, &product); err == nil {
				return &product, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if s.cache != nil {
		if raw, err := json.Marshal(product); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.logger.Warn("catalog cache write failed", zap.String("slug", slug), zap.Error(err))
			}
		}
	}
	return product, nil
}

func (s *Service) listFromCache(ctx context.Context) ([]*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, listCacheKey)
	if err != nil {
		return nil, err
	}
	var products []*entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) storeListInCache(ctx context.Context, products []*entity.Product) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listCacheKey, raw, s.cacheTTL)
}
