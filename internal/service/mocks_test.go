package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"launchpad/internal/domain"
	"launchpad/internal/payments"
	"launchpad/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories and a fake provider used across the service tests.

type mockProductRepository struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*domain.Product
	setLiveErr error
	listErr    error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Deactivate(ctx context.Context, id, creatorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.CreatorID != creatorID {
		return repository.ErrProductNotFound
	}
	product.Active = false
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id, creatorID uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.CreatorID != creatorID {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *mockProductRepository) ListActive(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	products := []*domain.Product{}
	for _, product := range m.products {
		if product.CreatorID == creatorID && product.Active {
			clone := *product
			products = append(products, &clone)
		}
	}
	return products, nil
}

func (m *mockProductRepository) SetLiveIdentifiers(ctx context.Context, id uuid.UUID, liveProductID, livePriceID string, promotedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setLiveErr != nil {
		return m.setLiveErr
	}
	product, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.LiveProductID = &liveProductID
	product.LivePriceID = &livePriceID
	product.PromotedAt = &promotedAt
	return nil
}

func (m *mockProductRepository) CountByEnvironment(ctx context.Context, creatorID uuid.UUID) (repository.EnvironmentCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := repository.EnvironmentCounts{}
	for _, product := range m.products {
		if product.CreatorID != creatorID || !product.Active {
			continue
		}
		if product.TestProductID != nil {
			counts.Test++
		}
		if product.LiveProductID != nil {
			counts.Live++
		}
	}
	return counts, nil
}

type mockDeploymentRepository struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*domain.DeploymentRecord
	createErr error
}

func newMockDeploymentRepository() *mockDeploymentRepository {
	return &mockDeploymentRepository{records: make(map[uuid.UUID]*domain.DeploymentRecord)}
}

func (m *mockDeploymentRepository) Create(ctx context.Context, record *domain.DeploymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.records {
		if existing.ProductID == record.ProductID && existing.Status == domain.DeploymentStatusDeploying {
			return repository.ErrDeploymentInFlight
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	return nil
}

func (m *mockDeploymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, repository.ErrDeploymentNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockDeploymentRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.Status != domain.DeploymentStatusDeploying {
		return repository.ErrDeploymentNotFound
	}
	record.Progress = progress
	record.Message = message
	return nil
}

func (m *mockDeploymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.Status != domain.DeploymentStatusDeploying {
		return repository.ErrDeploymentNotFound
	}
	record.Status = domain.DeploymentStatusCompleted
	record.Progress = 100
	record.Message = "Deployment completed"
	record.CompletedAt = &completedAt
	return nil
}

func (m *mockDeploymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorDetail string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.Status != domain.DeploymentStatusDeploying {
		return repository.ErrDeploymentNotFound
	}
	record.Status = domain.DeploymentStatusFailed
	record.ErrorDetail = &errorDetail
	record.CompletedAt = &completedAt
	return nil
}

func (m *mockDeploymentRepository) List(ctx context.Context, creatorID uuid.UUID, status *domain.DeploymentStatus) ([]*domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := []*domain.DeploymentRecord{}
	for _, record := range m.records {
		if record.CreatorID != creatorID {
			continue
		}
		if status != nil && record.Status != *status {
			continue
		}
		clone := *record
		records = append(records, &clone)
	}
	return records, nil
}

func (m *mockDeploymentRepository) MostRecent(ctx context.Context, creatorID uuid.UUID) (*domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.DeploymentRecord
	for _, record := range m.records {
		if record.CreatorID != creatorID {
			continue
		}
		if latest == nil || record.StartedAt.After(latest.StartedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, repository.ErrDeploymentNotFound
	}
	clone := *latest
	return &clone, nil
}

func (m *mockDeploymentRepository) CountInFlight(ctx context.Context, creatorID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, record := range m.records {
		if record.CreatorID == creatorID && record.Status == domain.DeploymentStatusDeploying {
			count++
		}
	}
	return count, nil
}

func (m *mockDeploymentRepository) all() []*domain.DeploymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := []*domain.DeploymentRecord{}
	for _, record := range m.records {
		clone := *record
		records = append(records, &clone)
	}
	return records
}

type mockCredentialsRepository struct {
	creds map[uuid.UUID]*domain.CreatorCredentials
}

func newMockCredentialsRepository() *mockCredentialsRepository {
	return &mockCredentialsRepository{creds: make(map[uuid.UUID]*domain.CreatorCredentials)}
}

func (m *mockCredentialsRepository) Get(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorCredentials, error) {
	creds, ok := m.creds[creatorID]
	if !ok {
		return nil, repository.ErrCredentialsNotFound
	}
	return creds, nil
}

func (m *mockCredentialsRepository) Upsert(ctx context.Context, creds *domain.CreatorCredentials) error {
	m.creds[creds.CreatorID] = creds
	return nil
}

// fakeProvider records calls and lets tests override either operation.
type fakeProvider struct {
	mu              sync.Mutex
	productCalls    []payments.ProductParams
	priceCalls      []payments.PriceParams
	createProductFn func(params payments.ProductParams) (*payments.ProductResult, error)
	createPriceFn   func(params payments.PriceParams) (*payments.PriceResult, error)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{}
}

func (f *fakeProvider) CreateProduct(ctx context.Context, env payments.Environment, accountID string, params payments.ProductParams) (*payments.ProductResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls = append(f.productCalls, params)
	if f.createProductFn != nil {
		return f.createProductFn(params)
	}
	return &payments.ProductResult{ID: "prod_live_" + uuid.New().String()[:8]}, nil
}

func (f *fakeProvider) CreatePrice(ctx context.Context, env payments.Environment, accountID string, params payments.PriceParams) (*payments.PriceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls = append(f.priceCalls, params)
	if f.createPriceFn != nil {
		return f.createPriceFn(params)
	}
	return &payments.PriceResult{ID: "price_live_" + uuid.New().String()[:8]}, nil
}

// recordingPacer counts pacing calls without sleeping.
type recordingPacer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *recordingPacer) Pace(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

var errBoom = errors.New("boom")
