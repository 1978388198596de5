package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"agromarket-backend/internal/domains/product/model"
)

// ErrDuplicateSlug is returned when the products_slug_key constraint fires
var ErrDuplicateSlug = errors.New("product slug already exists")

const productColumns = `
        id, supplier_id, name, slug, category, category_name,
        base_price, price, unit, stock, origin, quality, availability,
        description, images, is_active, created_at, updated_at`

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates the pgx-backed catalog repository
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.SupplierID,
		&p.Name,
		&p.Slug,
		&p.Category,
		&p.CategoryName,
		&p.BasePrice,
		&p.Price,
		&p.Unit,
		&p.Stock,
		&p.Origin,
		&p.Quality,
		&p.Availability,
		&p.Description,
		&p.Images,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*model.Product, error) {
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// FindByName does an exact, case-sensitive match scoped to the supplier
func (r *productRepository) FindByName(ctx context.Context, supplierID uuid.UUID, name string, excludeIDs []uuid.UUID) (*model.Product, error) {
	query := `SELECT` + productColumns + `
        FROM products
        WHERE supplier_id = $1
          AND name = $2
          AND NOT (id = ANY($3::uuid[]))
        ORDER BY created_at
        LIMIT 1
    `

	// A nil array would make the ANY() predicate NULL and hide every row
	excluded := make([]string, 0, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded = append(excluded, id.String())
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, query, supplierID, name, excluded))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return p, nil
}

// Create inserts a new product; slug must already be set
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, supplier_id, name, slug, category, category_name,
            base_price, price, unit, stock, origin, quality, availability,
            description, images, is_active
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING created_at, updated_at
    `

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.SupplierID,
		p.Name,
		p.Slug,
		p.Category,
		p.CategoryName,
		p.BasePrice,
		p.Price,
		p.Unit,
		p.Stock,
		p.Origin,
		p.Quality,
		p.Availability,
		p.Description,
		p.Images,
		p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "products_slug_key" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update never touches slug
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = $1,
            category = $2,
            category_name = $3,
            base_price = $4,
            price = $5,
            unit = $6,
            stock = $7,
            origin = $8,
            quality = $9,
            availability = $10,
            description = $11,
            images = $12,
            is_active = $13,
            updated_at = $14
        WHERE id = $15
    `

	p.UpdatedAt = time.Now()

	tag, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Category,
		p.CategoryName,
		p.BasePrice,
		p.Price,
		p.Unit,
		p.Stock,
		p.Origin,
		p.Quality,
		p.Availability,
		p.Description,
		p.Images,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete hard-deletes a product; variations go with it via ON DELETE CASCADE
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT` + productColumns + `
        FROM products
        WHERE id = $1
    `

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return p, nil
}

// ListBySupplier returns the supplier's products ordered by name
func (r *productRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter model.ProductFilter) ([]*model.Product, error) {
	query := `SELECT` + productColumns + `
        FROM products
        WHERE supplier_id = $1
    `
	switch filter {
	case model.FilterActive:
		query += ` AND is_active = TRUE`
	case model.FilterInactive:
		query += ` AND is_active = FALSE`
	}
	query += ` ORDER BY name, created_at`

	rows, err := r.pool.Query(ctx, query, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier products: %w", err)
	}
	return collectProducts(rows)
}

func (r *productRepository) ListWithExternalImages(ctx context.Context, mirroredPrefix string, limit int) ([]*model.Product, error) {
	query := `SELECT` + productColumns + `
        FROM products
        WHERE is_active = TRUE
          AND EXISTS (
              SELECT 1 FROM unnest(images) AS img
              WHERE NOT starts_with(img, $1)
          )
        ORDER BY updated_at
        LIMIT $2
    `

	rows, err := r.pool.Query(ctx, query, mirroredPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products with external images: %w", err)
	}
	return collectProducts(rows)
}

func (r *productRepository) UpdateImages(ctx context.Context, id uuid.UUID, images []string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET images = $1, updated_at = NOW() WHERE id = $2`,
		pq.StringArray(images), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
