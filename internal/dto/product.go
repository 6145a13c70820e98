package dto

import "github.com/velure-commerce/velure/internal/entity"

// ProductResponse represents a catalog product as exposed over HTTP.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
}

// FromProduct maps a catalog row onto its transport representation.
func FromProduct(product *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Slug:        product.Slug,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		InStock:     product.InStock,
	}
}
