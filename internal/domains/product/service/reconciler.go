package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/repository"
	"agromarket-backend/internal/shared/utils"
)

// DefaultBatchSize is how many rows are processed between progress logs
const DefaultBatchSize = 50

// slugAttempts bounds retries when another run took the same slug in the same millisecond
const slugAttempts = 3

// CacheInvalidator drops cached views of a supplier's catalog after a run
type CacheInvalidator interface {
	InvalidateSupplierProducts(ctx context.Context, supplierID uuid.UUID) error
}

// CompletionHook is notified after a run has been finalized as completed
type CompletionHook interface {
	ImportCompleted(ctx context.Context, run *model.ImportRun, created []*model.Product)
}

// ImportRequest is one reconciliation job
type ImportRequest struct {
	SupplierID uuid.UUID
	Source     model.ImportSource

	// TotalRows counts every data row of the file, valid or not
	TotalRows        int
	Rows             []model.ProductRow
	ValidationErrors []model.ImportError
	Warnings         []model.ImportError

	// Archive stores the source file once the run exists and returns its object key
	Archive func(ctx context.Context, importID uuid.UUID) (string, error)
}

// Reconciler applies validated rows to the catalog: it creates products it
// cannot find by name, updates the ones it can, and deletes what it created
// when the run aborts.
type Reconciler struct {
	products    repository.ProductRepository
	imports     repository.ImportRepository
	variations  *VariationWriter
	invalidator CacheInvalidator
	hook        CompletionHook
	batchSize   int
	now         func() time.Time
}

// NewReconciler wires the engine. invalidator and hook may be nil.
func NewReconciler(
	products repository.ProductRepository,
	variations repository.VariationRepository,
	imports repository.ImportRepository,
	invalidator CacheInvalidator,
	hook CompletionHook,
	batchSize int,
) *Reconciler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reconciler{
		products:    products,
		imports:     imports,
		variations:  NewVariationWriter(variations),
		invalidator: invalidator,
		hook:        hook,
		batchSize:   batchSize,
		now:         time.Now,
	}
}

// Execute runs the validation gate and, when it passes, the reconciliation.
// Row failures are reported in the result. A returned error is always a
// *model.RunError, or a ledger creation failure before anything was written.
func (e *Reconciler) Execute(ctx context.Context, req ImportRequest) (result *model.ImportResult, err error) {
	if len(req.ValidationErrors) > 0 {
		log.Info().
			Str("supplier_id", req.SupplierID.String()).
			Int("errors", len(req.ValidationErrors)).
			Msg("Import rejected by validation")
		return rejectedResult(req.TotalRows, req.ValidationErrors, req.Warnings), nil
	}

	run := &model.ImportRun{
		SupplierID: req.SupplierID,
		FileName:   req.Source.FileName,
		FileSize:   req.Source.FileSize,
		FileKey:    req.Source.FileKey,
		TotalRows:  len(req.Rows),
	}
	if err := e.imports.Create(ctx, run); err != nil {
		return nil, err
	}

	rc := newRunContext(req.SupplierID, run.ID)
	log.Info().
		Str("import_id", run.ID.String()).
		Str("supplier_id", req.SupplierID.String()).
		Int("rows", len(req.Rows)).
		Msg("Import started")

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = e.rollback(ctx, rc, run, fmt.Errorf("panic during import: %v", r))
		}
	}()

	if req.Archive != nil {
		e.archive(ctx, run, req.Archive)
	}

	if err := e.processRows(ctx, rc, req.Rows); err != nil {
		return nil, e.rollback(ctx, rc, run, err)
	}

	result = buildResult(run.ID, len(req.Rows), rc, req.Warnings)
	run.SuccessfulRows = result.SuccessfulRows
	run.FailedRows = result.FailedRows
	run.Errors = result.Errors
	run.Status = model.ImportStatusCompleted

	if err := e.imports.Finalize(ctx, run); err != nil {
		return nil, e.rollback(ctx, rc, run, err)
	}

	e.invalidate(ctx, req.SupplierID)

	log.Info().
		Str("import_id", run.ID.String()).
		Int("created", rc.created).
		Int("updated", rc.updated).
		Int("failed", result.FailedRows).
		Int("variation_errors", result.VariationErrors).
		Msg("Import completed")

	if e.hook != nil {
		e.hook.ImportCompleted(ctx, run, rc.createdProducts)
	}
	return result, nil
}

func (e *Reconciler) archive(ctx context.Context, run *model.ImportRun, archive func(context.Context, uuid.UUID) (string, error)) {
	key, err := archive(ctx, run.ID)
	if err != nil {
		log.Warn().Err(err).Str("import_id", run.ID.String()).Msg("Failed to archive import file")
		return
	}
	run.FileKey = &key
}

func (e *Reconciler) processRows(ctx context.Context, rc *runContext, rows []model.ProductRow) error {
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))

		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("import interrupted before row %d: %w", rows[i].Row, err)
			}
			e.processRow(ctx, rc, &rows[i])
		}

		log.Debug().
			Str("import_id", rc.importID.String()).
			Int("processed", end).
			Int("total", len(rows)).
			Msg("Import batch processed")
	}
	return nil
}

// processRow never panics and never returns an error. Every failure is
// recorded against the row and the run moves on.
func (e *Reconciler) processRow(ctx context.Context, rc *runContext, row *model.ProductRow) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int("row", row.Row).Msg("Recovered panic while importing row")
			rc.rowError(row.Row, model.FieldProcess, fmt.Sprintf("unexpected error: %v", r), row.Name)
		}
	}()

	slug := utils.GenerateUniqueSlug(row.Name, rc.nextSlugTime(e.now))

	existing, err := e.products.FindByName(ctx, rc.supplierID, row.Name, rc.createdIDs)
	switch {
	case err == nil:
		e.updateProduct(ctx, rc, existing, row)
	case errors.Is(err, model.ErrProductNotFound):
		e.createProduct(ctx, rc, row, slug)
	default:
		rc.rowError(row.Row, model.FieldProcess, err.Error(), row.Name)
	}
}

func (e *Reconciler) createProduct(ctx context.Context, rc *runContext, row *model.ProductRow, slug string) {
	product := row.NewProduct(rc.supplierID, slug)

	var err error
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		err = e.products.Create(ctx, product)
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			break
		}
		product.Slug = utils.GenerateUniqueSlug(row.Name, rc.nextSlugTime(e.now))
	}
	if err != nil {
		rc.rowError(row.Row, model.FieldInsert, err.Error(), row.Name)
		return
	}

	rc.recordCreated(product)

	if row.HasVariations() {
		e.variations.Insert(ctx, &rc.errors, row.Row, product.ID, model.FlattenVariations(row.Variations))
	}
}

func (e *Reconciler) updateProduct(ctx context.Context, rc *runContext, product *model.Product, row *model.ProductRow) {
	row.ApplyTo(product)

	if err := e.products.Update(ctx, product); err != nil {
		rc.rowError(row.Row, model.FieldUpdate, err.Error(), row.Name)
		return
	}
	rc.updated++

	if row.HasVariations() {
		e.variations.Replace(ctx, &rc.errors, row.Row, product.ID, model.FlattenVariations(row.Variations))
	}
}

// rollback deletes every product this run created, newest first, then marks
// the ledger rolled_back. It keeps going past individual failures.
func (e *Reconciler) rollback(ctx context.Context, rc *runContext, run *model.ImportRun, cause error) error {
	cleanupCtx := context.WithoutCancel(ctx)

	log.Error().Err(cause).
		Str("import_id", run.ID.String()).
		Int("created", len(rc.createdIDs)).
		Msg("Import failed, rolling back created products")

	var compensation []error
	deleted := 0
	for i := len(rc.createdIDs) - 1; i >= 0; i-- {
		id := rc.createdIDs[i]
		err := e.products.Delete(cleanupCtx, id)
		if err != nil && !errors.Is(err, model.ErrProductNotFound) {
			log.Error().Err(err).Str("product_id", id.String()).Msg("Rollback delete failed")
			compensation = append(compensation, fmt.Errorf("delete product %s: %w", id, err))
			continue
		}
		deleted++
	}

	ledgerErrors := append(rc.errors.Items(), model.ImportError{
		Row:   0,
		Field: model.FieldProcess,
		Error: cause.Error(),
	})
	if err := e.imports.MarkRolledBack(cleanupCtx, run.ID, ledgerErrors); err != nil {
		log.Error().Err(err).Str("import_id", run.ID.String()).Msg("Failed to mark import rolled back")
		compensation = append(compensation, err)
	}

	e.invalidate(cleanupCtx, rc.supplierID)

	return &model.RunError{
		ImportID:        run.ID,
		Err:             cause,
		RolledBack:      true,
		Deleted:         deleted,
		CompensationErr: errors.Join(compensation...),
	}
}

func (e *Reconciler) invalidate(ctx context.Context, supplierID uuid.UUID) {
	if e.invalidator == nil {
		return
	}
	if err := e.invalidator.InvalidateSupplierProducts(ctx, supplierID); err != nil {
		log.Warn().Err(err).Str("supplier_id", supplierID.String()).Msg("Failed to invalidate product cache")
	}
}
