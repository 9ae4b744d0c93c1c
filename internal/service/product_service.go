package service

import (
	"context"
	"fmt"
	"time"

	"launchpad/internal/domain"
	"launchpad/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput holds the creator-editable fields of a product.
type ProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	Currency      string
	Kind          domain.ProductKind
	TestProductID *string
	TestPriceID   *string
}

// ProductService manages the test-environment product catalog. Promotion is
// handled separately by the DeploymentService.
type ProductService interface {
	Create(ctx context.Context, creatorID uuid.UUID, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, creatorID, productID uuid.UUID, input ProductInput) (*domain.Product, error)
	Deactivate(ctx context.Context, creatorID, productID uuid.UUID) error
	Get(ctx context.Context, creatorID, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

// Create adds a product to the creator's test-environment catalog
func (s *productService) Create(ctx context.Context, creatorID uuid.UUID, input ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		CreatorID:     creatorID,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		Currency:      input.Currency,
		Kind:          input.Kind,
		TestProductID: input.TestProductID,
		TestPriceID:   input.TestPriceID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update replaces the editable fields of an existing product. Production
// identifiers are owned by the promotion pipeline and are not touched here.
func (s *productService) Update(ctx context.Context, creatorID, productID uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID, creatorID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Currency = input.Currency
	product.Kind = input.Kind
	product.TestProductID = input.TestProductID
	product.TestPriceID = input.TestPriceID
	product.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Deactivate flags a product inactive; the pipeline never hard-deletes.
func (s *productService) Deactivate(ctx context.Context, creatorID, productID uuid.UUID) error {
	return s.products.Deactivate(ctx, productID, creatorID)
}

// Get retrieves one product scoped to its owning creator
func (s *productService) Get(ctx context.Context, creatorID, productID uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, productID, creatorID)
}

// List retrieves the creator's active products
func (s *productService) List(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	return s.products.ListActive(ctx, creatorID)
}
