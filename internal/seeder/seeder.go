package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/database"
	"github.com/velure-commerce/velure/internal/entity"
)

// Module provides the seeder.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Products seeds the starter catalog if the rows are missing.
func (s *Seeder) Products(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{
			Slug:        "hydra-barrier-serum",
			Name:        "Hydra Barrier Serum",
			Description: "Ceramide and hyaluronic acid serum for compromised skin barriers.",
			Price:       89.00,
			Weight:      0.12, Length: 4, Width: 4, Height: 12,
			InStock: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			Slug:        "gentle-oat-cleanser",
			Name:        "Gentle Oat Cleanser",
			Description: "Low-pH colloidal oat cleanser, fragrance free.",
			Price:       49.00,
			Weight:      0.25, Length: 5, Width: 5, Height: 16,
			InStock: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			Slug:        "daily-mineral-spf50",
			Name:        "Daily Mineral SPF50",
			Description: "Zinc oxide sunscreen with no white cast.",
			Price:       65.00,
			Weight:      0.08, Length: 3, Width: 3, Height: 14,
			InStock: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			Slug:        "overnight-repair-cream",
			Name:        "Overnight Repair Cream",
			Description: "Peptide rich night cream in a 50ml jar.",
			Price:       119.00,
			Weight:      0.3, Length: 7, Width: 7, Height: 7,
			InStock: false, CreatedAt: now, UpdatedAt: now,
		},
	}

	for _, sample := range samples {
		product := sample
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (slug) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded products", zap.Int("count", len(samples)))
	}
	return nil
}
