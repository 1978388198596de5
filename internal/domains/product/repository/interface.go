package repository

import (
	"context"

	"github.com/google/uuid"

	"agromarket-backend/internal/domains/product/model"
)

// ProductRepository is the catalog store the importer reconciles against
type ProductRepository interface {
	// FindByName returns the supplier's product with exactly this name, skipping
	// excludeIDs. Returns model.ErrProductNotFound when there is none.
	FindByName(ctx context.Context, supplierID uuid.UUID, name string, excludeIDs []uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	// Update writes every column except slug, id and supplier_id
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter model.ProductFilter) ([]*model.Product, error)
	// ListWithExternalImages returns active products with at least one image
	// URL that does not start with mirroredPrefix
	ListWithExternalImages(ctx context.Context, mirroredPrefix string, limit int) ([]*model.Product, error)
	UpdateImages(ctx context.Context, id uuid.UUID, images []string) error
}

// VariationRepository stores product_variations rows
type VariationRepository interface {
	// Find returns model.ErrVariationNotFound when the (product, type, value) row is absent
	Find(ctx context.Context, productID uuid.UUID, variationType, value string) (*model.Variation, error)
	Create(ctx context.Context, v *model.Variation) error
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Variation, error)
}

// ImportRepository is the product_imports ledger
type ImportRepository interface {
	Create(ctx context.Context, run *model.ImportRun) error
	// Finalize writes counts, errors, status, file_key and completed_at
	// in one statement; a run is never updated before it ends
	Finalize(ctx context.Context, run *model.ImportRun) error
	MarkRolledBack(ctx context.Context, id uuid.UUID, errs []model.ImportError) error
	GetByID(ctx context.Context, supplierID, id uuid.UUID) (*model.ImportRun, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]*model.ImportRun, error)
}
