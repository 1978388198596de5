package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ========================================
// CATALOG PRODUCT (DB)
// ========================================

// Product is one row of the products table owned by a supplier.
// Slug is generated once on insert and never regenerated.
type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	SupplierID   uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	Name         string          `json:"name" db:"name"`
	Slug         string          `json:"slug" db:"slug"`
	Category     string          `json:"category" db:"category"`
	CategoryName string          `json:"category_name" db:"category_name"`
	BasePrice    decimal.Decimal `json:"base_price" db:"base_price"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Unit         string          `json:"unit" db:"unit"`
	Stock        int             `json:"stock" db:"stock"`
	Origin       string          `json:"origin" db:"origin"`
	Quality      string          `json:"quality" db:"quality"`
	Availability string          `json:"availability" db:"availability"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Images       pq.StringArray  `json:"images" db:"images"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows supplier product listings (export, cache views)
type ProductFilter string

const (
	FilterAll      ProductFilter = "all"
	FilterActive   ProductFilter = "active"
	FilterInactive ProductFilter = "inactive"
)

// ========================================
// IMPORT ROWS
// ========================================

// RawRow is what the parser extracts from one spreadsheet line.
// Numeric fields are nil when the cell was empty.
type RawRow struct {
	Row          int              `json:"row"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Unit         string           `json:"unit"`
	BasePrice    *decimal.Decimal `json:"basePrice"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	Origin       string           `json:"origin"`
	Quality      string           `json:"quality"`
	Availability string           `json:"availability"`
	Description  string           `json:"description"`
	Images       []string         `json:"images"`
	Variations   []VariationGroup `json:"variations"`
}

// ProductRow is a validated, normalized record ready for reconciliation.
type ProductRow struct {
	Row          int              `json:"row"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	CategoryName string           `json:"category_name"`
	Unit         string           `json:"unit"`
	BasePrice    decimal.Decimal  `json:"base_price"`
	Price        decimal.Decimal  `json:"price"`
	Stock        int              `json:"stock"`
	Origin       string           `json:"origin"`
	Quality      string           `json:"quality"`
	Availability string           `json:"availability"`
	Description  *string          `json:"description,omitempty"`
	Images       []string         `json:"images"`
	Variations   []VariationGroup `json:"variations,omitempty"`
}

// HasVariations reports whether the row carries at least one variation value
func (r *ProductRow) HasVariations() bool {
	for _, g := range r.Variations {
		if len(g.Values) > 0 {
			return true
		}
	}
	return false
}

// NewProduct builds the insert payload for a row that has no catalog match
func (r *ProductRow) NewProduct(supplierID uuid.UUID, slug string) *Product {
	return &Product{
		ID:           uuid.New(),
		SupplierID:   supplierID,
		Name:         r.Name,
		Slug:         slug,
		Category:     r.Category,
		CategoryName: r.CategoryName,
		BasePrice:    r.BasePrice,
		Price:        r.Price,
		Unit:         r.Unit,
		Stock:        r.Stock,
		Origin:       r.Origin,
		Quality:      r.Quality,
		Availability: r.Availability,
		Description:  r.Description,
		Images:       pq.StringArray(r.Images),
		IsActive:     true,
	}
}

// ApplyTo copies the updatable columns onto an existing product.
// Slug, ID and SupplierID are left as they are.
func (r *ProductRow) ApplyTo(p *Product) {
	p.Name = r.Name
	p.Category = r.Category
	p.CategoryName = r.CategoryName
	p.BasePrice = r.BasePrice
	p.Price = r.Price
	p.Unit = r.Unit
	p.Stock = r.Stock
	p.Origin = r.Origin
	p.Quality = r.Quality
	p.Availability = r.Availability
	p.Description = r.Description
	p.Images = pq.StringArray(r.Images)
}
