package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"launchpad/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// EnvironmentCounts holds per-environment product counts for a creator.
type EnvironmentCounts struct {
	Test int
	Live int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Deactivate(ctx context.Context, id, creatorID uuid.UUID) error
	FindByID(ctx context.Context, id, creatorID uuid.UUID) (*domain.Product, error)
	ListActive(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error)
	SetLiveIdentifiers(ctx context.Context, id uuid.UUID, liveProductID, livePriceID string, promotedAt time.Time) error
	CountByEnvironment(ctx context.Context, creatorID uuid.UUID) (EnvironmentCounts, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, creator_id, name, description, price, currency, kind,
	test_product_id, test_price_id, live_product_id, live_price_id,
	active, created_at, updated_at, promoted_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.CreatorID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Currency,
		&product.Kind,
		&product.TestProductID,
		&product.TestPriceID,
		&product.LiveProductID,
		&product.LivePriceID,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.PromotedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, creator_id, name, description, price, currency, kind,
			test_product_id, test_price_id, live_product_id, live_price_id,
			active, created_at, updated_at, promoted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.CreatorID,
		product.Name,
		product.Description,
		product.Price,
		product.Currency,
		product.Kind,
		product.TestProductID,
		product.TestPriceID,
		product.LiveProductID,
		product.LivePriceID,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
		product.PromotedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates the editable fields of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, price = $5, currency = $6, kind = $7,
		    test_product_id = $8, test_price_id = $9, updated_at = $10
		WHERE id = $1 AND creator_id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.CreatorID,
		product.Name,
		product.Description,
		product.Price,
		product.Currency,
		product.Kind,
		product.TestProductID,
		product.TestPriceID,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Deactivate flags a product inactive. Products are never hard-deleted.
func (r *productRepository) Deactivate(ctx context.Context, id, creatorID uuid.UUID) error {
	query := `UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1 AND creator_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product scoped to its owning creator
func (r *productRepository) FindByID(ctx context.Context, id, creatorID uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1 AND creator_id = $2
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, creatorID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListActive retrieves all active products for a creator, newest first
func (r *productRepository) ListActive(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE creator_id = $1 AND active = TRUE
		ORDER BY created_at DESC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// SetLiveIdentifiers stamps both production identifiers and the promotion
// timestamp in a single statement so the both-or-neither invariant holds.
func (r *productRepository) SetLiveIdentifiers(ctx context.Context, id uuid.UUID, liveProductID, livePriceID string, promotedAt time.Time) error {
	query := `
		UPDATE products
		SET live_product_id = $2, live_price_id = $3, promoted_at = $4, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, liveProductID, livePriceID, promotedAt)
	if err != nil {
		return fmt.Errorf("failed to set live identifiers: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// CountByEnvironment counts a creator's active products that are linked to
// each provider environment
func (r *productRepository) CountByEnvironment(ctx context.Context, creatorID uuid.UUID) (EnvironmentCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE test_product_id IS NOT NULL),
			COUNT(*) FILTER (WHERE live_product_id IS NOT NULL)
		FROM products
		WHERE creator_id = $1 AND active = TRUE
	`

	var counts EnvironmentCounts
	err := r.db.QueryRowContext(ctx, query, creatorID).Scan(&counts.Test, &counts.Live)
	if err != nil {
		return EnvironmentCounts{}, fmt.Errorf("failed to count products by environment: %w", err)
	}

	return counts, nil
}
