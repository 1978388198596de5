package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/repository"
)

// VariationWriter persists a row's variations. Its failures never fail the row;
// they are appended to the run's error list with field "variation".
type VariationWriter struct {
	repo repository.VariationRepository
}

func NewVariationWriter(repo repository.VariationRepository) *VariationWriter {
	return &VariationWriter{repo: repo}
}

// Insert adds the entries of a freshly created product.
// An entry that already exists for (product, type, value) is skipped.
func (w *VariationWriter) Insert(ctx context.Context, errs *ErrorList, row int, productID uuid.UUID, entries []model.VariationEntry) {
	for _, entry := range entries {
		_, err := w.repo.Find(ctx, productID, entry.Type, entry.Value)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrVariationNotFound) {
			w.fail(errs, row, productID, entry, err)
			continue
		}

		if err := w.repo.Create(ctx, entry.NewVariation(productID)); err != nil {
			w.fail(errs, row, productID, entry, err)
		}
	}
}

// Replace swaps the variation set of an updated product for entries.
// When the delete fails the inserts are still attempted.
func (w *VariationWriter) Replace(ctx context.Context, errs *ErrorList, row int, productID uuid.UUID, entries []model.VariationEntry) {
	if err := w.repo.DeleteByProduct(ctx, productID); err != nil {
		log.Warn().Err(err).
			Str("product_id", productID.String()).
			Int("row", row).
			Msg("Failed to clear variations before replace")
		errs.Add(model.ImportError{
			Row:   row,
			Field: model.FieldVariation,
			Error: fmt.Sprintf("failed to clear existing variations: %v", err),
		})
	}

	for _, entry := range entries {
		if err := w.repo.Create(ctx, entry.NewVariation(productID)); err != nil {
			w.fail(errs, row, productID, entry, err)
		}
	}
}

func (w *VariationWriter) fail(errs *ErrorList, row int, productID uuid.UUID, entry model.VariationEntry, err error) {
	log.Warn().Err(err).
		Str("product_id", productID.String()).
		Str("type", entry.Type).
		Str("value", entry.Value).
		Int("row", row).
		Msg("Variation write failed")

	errs.Add(model.ImportError{
		Row:   row,
		Field: model.FieldVariation,
		Error: err.Error(),
		Value: entry.Type + "=" + entry.Value,
	})
}
