package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/pkg/cache"
)

const (
	historyCacheTTL  = 5 * time.Minute
	productsCacheTTL = 5 * time.Minute
)

// HistoryCacheKey holds the first page of a supplier's import history
func HistoryCacheKey(supplierID uuid.UUID) string {
	return fmt.Sprintf("import_history:%s", supplierID)
}

// SupplierProductsCacheKey holds a supplier's product listing for one filter
func SupplierProductsCacheKey(supplierID uuid.UUID, filter model.ProductFilter) string {
	return fmt.Sprintf("supplier_products:%s:%s", supplierID, filter)
}

type productCacheInvalidator struct {
	cache cache.Cache
}

// NewProductCacheInvalidator drops the supplier's product listings and import history
func NewProductCacheInvalidator(c cache.Cache) CacheInvalidator {
	return &productCacheInvalidator{cache: c}
}

func (i *productCacheInvalidator) InvalidateSupplierProducts(ctx context.Context, supplierID uuid.UUID) error {
	patternErr := i.cache.DeletePattern(ctx, fmt.Sprintf("supplier_products:%s:*", supplierID))
	deleteErr := i.cache.Delete(ctx, HistoryCacheKey(supplierID))
	return errors.Join(patternErr, deleteErr)
}
