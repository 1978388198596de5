package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agromarket-backend/internal/domains/product/model"
)

type variationRepository struct {
	pool *pgxpool.Pool
}

// NewVariationRepository creates the pgx-backed variation repository
func NewVariationRepository(pool *pgxpool.Pool) VariationRepository {
	return &variationRepository{pool: pool}
}

func (r *variationRepository) Find(ctx context.Context, productID uuid.UUID, variationType, value string) (*model.Variation, error) {
	query := `
        SELECT id, product_id, variation_type, variation_value, display_order, metadata, created_at
        FROM product_variations
        WHERE product_id = $1 AND variation_type = $2 AND variation_value = $3
        LIMIT 1
    `

	var v model.Variation
	err := r.pool.QueryRow(ctx, query, productID, variationType, value).Scan(
		&v.ID,
		&v.ProductID,
		&v.VariationType,
		&v.VariationValue,
		&v.DisplayOrder,
		&v.Metadata,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVariationNotFound
		}
		return nil, fmt.Errorf("failed to find variation: %w", err)
	}

	return &v, nil
}

func (r *variationRepository) Create(ctx context.Context, v *model.Variation) error {
	query := `
        INSERT INTO product_variations (id, product_id, variation_type, variation_value, display_order, metadata)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Metadata == nil {
		v.Metadata = map[string]any{}
	}

	err := r.pool.QueryRow(ctx, query,
		v.ID,
		v.ProductID,
		v.VariationType,
		v.VariationValue,
		v.DisplayOrder,
		v.Metadata,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create variation: %w", err)
	}

	return nil
}

func (r *variationRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM product_variations WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to delete variations: %w", err)
	}
	return nil
}

func (r *variationRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Variation, error) {
	query := `
        SELECT id, product_id, variation_type, variation_value, display_order, metadata, created_at
        FROM product_variations
        WHERE product_id = $1
        ORDER BY display_order, variation_value
    `

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variations: %w", err)
	}
	defer rows.Close()

	var variations []*model.Variation
	for rows.Next() {
		var v model.Variation
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.VariationType,
			&v.VariationValue,
			&v.DisplayOrder,
			&v.Metadata,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		variations = append(variations, &v)
	}

	return variations, rows.Err()
}
