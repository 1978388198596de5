package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agromarket-backend/internal/domains/product/model"
)

const importColumns = `
        id, supplier_id, file_name, file_size, file_key,
        total_rows, successful_rows, failed_rows, status, errors,
        started_at, completed_at, created_at`

type importRepository struct {
	pool *pgxpool.Pool
}

// NewImportRepository creates the product_imports ledger repository
func NewImportRepository(pool *pgxpool.Pool) ImportRepository {
	return &importRepository{pool: pool}
}

// Create inserts the run with status processing
func (r *importRepository) Create(ctx context.Context, run *model.ImportRun) error {
	query := `
        INSERT INTO product_imports (
            id, supplier_id, file_name, file_size, file_key,
            total_rows, status, errors, started_at, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb, $8, $8)
    `

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now()
	run.Status = model.ImportStatusProcessing
	run.StartedAt = now
	run.CreatedAt = now

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.SupplierID,
		run.FileName,
		run.FileSize,
		run.FileKey,
		run.TotalRows,
		run.Status,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	return nil
}

// Finalize is the single end-of-run write
func (r *importRepository) Finalize(ctx context.Context, run *model.ImportRun) error {
	errorsJSON, err := json.Marshal(nonNilErrors(run.Errors))
	if err != nil {
		return fmt.Errorf("failed to marshal import errors: %w", err)
	}

	query := `
        UPDATE product_imports
        SET successful_rows = $1,
            failed_rows = $2,
            errors = $3,
            status = $4,
            file_key = $5,
            completed_at = $6
        WHERE id = $7
    `

	completedAt := time.Now()
	tag, err := r.pool.Exec(ctx, query,
		run.SuccessfulRows,
		run.FailedRows,
		errorsJSON,
		run.Status,
		run.FileKey,
		completedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize import run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImportNotFound
	}

	run.CompletedAt = &completedAt
	return nil
}

func (r *importRepository) MarkRolledBack(ctx context.Context, id uuid.UUID, errs []model.ImportError) error {
	errorsJSON, err := json.Marshal(nonNilErrors(errs))
	if err != nil {
		return fmt.Errorf("failed to marshal import errors: %w", err)
	}

	query := `
        UPDATE product_imports
        SET status = $1,
            errors = $2,
            failed_rows = $3,
            completed_at = NOW()
        WHERE id = $4
    `

	if _, err := r.pool.Exec(ctx, query, model.ImportStatusRolledBack, errorsJSON, len(errs), id); err != nil {
		return fmt.Errorf("failed to mark import rolled back: %w", err)
	}
	return nil
}

func scanImportRun(row pgx.Row) (*model.ImportRun, error) {
	var (
		run        model.ImportRun
		errorsJSON []byte
	)
	err := row.Scan(
		&run.ID,
		&run.SupplierID,
		&run.FileName,
		&run.FileSize,
		&run.FileKey,
		&run.TotalRows,
		&run.SuccessfulRows,
		&run.FailedRows,
		&run.Status,
		&errorsJSON,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Errors = []model.ImportError{}
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal import errors: %w", err)
		}
	}
	return &run, nil
}

func (r *importRepository) GetByID(ctx context.Context, supplierID, id uuid.UUID) (*model.ImportRun, error) {
	query := `SELECT` + importColumns + `
        FROM product_imports
        WHERE id = $1 AND supplier_id = $2
    `

	run, err := scanImportRun(r.pool.QueryRow(ctx, query, id, supplierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrImportNotFound
		}
		return nil, fmt.Errorf("failed to get import run: %w", err)
	}
	return run, nil
}

// ListBySupplier returns runs newest first
func (r *importRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]*model.ImportRun, error) {
	query := `SELECT` + importColumns + `
        FROM product_imports
        WHERE supplier_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.pool.Query(ctx, query, supplierID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.ImportRun, 0, limit)
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import runs: %w", err)
	}

	return runs, nil
}

func nonNilErrors(errs []model.ImportError) []model.ImportError {
	if errs == nil {
		return []model.ImportError{}
	}
	return errs
}
