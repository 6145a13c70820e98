package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Product is a catalog row for a skincare SKU.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          int64  `bun:",pk,autoincrement"`
	Slug        string `bun:"slug"`
	Name        string `bun:"name"`
	Description string `bun:"description"`

	Price float64 `bun:"price"`

	// Shipping attributes, cm/kg.
	Weight float64 `bun:"weight"`
	Length float64 `bun:"length"`
	Width  float64 `bun:"width"`
	Height float64 `bun:"height"`

	InStock bool `bun:"in_stock"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
