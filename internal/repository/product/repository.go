package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/velure-commerce/velure/internal/database"
	"github.com/velure-commerce/velure/internal/entity"
)

var repoTracer = otel.Tracer("github.com/velure-commerce/velure/repository/product")

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// Repository encapsulates read access for the product catalog.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// List returns all catalog products ordered by name.
func (r *Repository) List(ctx context.Context) ([]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	var products []*entity.Product
	if err := r.reader.NewSelect().Model(&products).Order("name ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetBySlug fetches a single product by its URL slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetBySlug", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("slug = ?", slug).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// GetByIDs fetches products by primary key, keyed by id for lookup.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByIDs")
	defer span.End()

	var products []*entity.Product
	if err := r.reader.NewSelect().Model(&products).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	byID := make(map[int64]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID, nil
}
