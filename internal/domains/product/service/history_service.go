package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/repository"
	"agromarket-backend/pkg/cache"
)

// History page bounds
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

type historyService struct {
	imports repository.ImportRepository
	cache   cache.Cache
}

// NewHistoryService creates the ledger reader. cache may be nil.
func NewHistoryService(imports repository.ImportRepository, c cache.Cache) HistoryServiceInterface {
	return &historyService{
		imports: imports,
		cache:   c,
	}
}

// ListImports returns runs newest first. Only the default first page is cached.
func (s *historyService) ListImports(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]model.ImportRunView, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	cacheable := s.cache != nil && offset == 0 && limit == DefaultHistoryLimit
	cacheKey := HistoryCacheKey(supplierID)

	if cacheable {
		var cached []model.ImportRunView
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Import history cache read failed")
		}
		if found {
			return cached, nil
		}
	}

	runs, err := s.imports.ListBySupplier(ctx, supplierID, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]model.ImportRunView, len(runs))
	for i, run := range runs {
		views[i] = model.NewImportRunView(run)
	}

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, views, historyCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Import history cache write failed")
		}
	}
	return views, nil
}

func (s *historyService) GetImport(ctx context.Context, supplierID, importID uuid.UUID) (*model.ImportRunView, error) {
	run, err := s.imports.GetByID(ctx, supplierID, importID)
	if err != nil {
		return nil, err
	}
	view := model.NewImportRunView(run)
	return &view, nil
}
