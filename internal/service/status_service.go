package service

import (
	"context"
	"errors"
	"fmt"

	"launchpad/internal/domain"
	"launchpad/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// estimatedMinutesPerProduct is the rough per-product promotion time used
// for the summary estimate.
const estimatedMinutesPerProduct = 2

// LastDeployment is the most recent promotion attempt, if any. ProductName
// is empty when the product was deleted after the attempt.
type LastDeployment struct {
	DeploymentID uuid.UUID               `json:"deployment_id"`
	ProductName  string                  `json:"product_name,omitempty"`
	Status       domain.DeploymentStatus `json:"status"`
	StartedAt    string                  `json:"started_at"`
}

// EnvironmentStatus is a per-creator snapshot of both environments.
type EnvironmentStatus struct {
	TestConnected bool            `json:"test_connected"`
	LiveConnected bool            `json:"live_connected"`
	TestProducts  int             `json:"test_products"`
	LiveProducts  int             `json:"live_products"`
	InFlight      int             `json:"in_flight"`
	Last          *LastDeployment `json:"last_deployment,omitempty"`
}

// DeploymentSummary classifies every active product into exactly one bucket.
type DeploymentSummary struct {
	Total            int `json:"total"`
	Ready            int `json:"ready"`
	NeedsAttention   int `json:"needs_attention"`
	AlreadyDeployed  int `json:"already_deployed"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// ProductPreview pairs a product with its validation outcome for UI preview.
type ProductPreview struct {
	Product    *domain.Product          `json:"product"`
	Checks     []domain.ValidationCheck `json:"checks"`
	Deployable bool                     `json:"deployable"`
	IsDeployed bool                     `json:"is_deployed"`
}

// StatusService provides read-only views over a creator's configuration
// state. It never mutates anything and tolerates partial data.
type StatusService interface {
	Status(ctx context.Context, creatorID uuid.UUID) (*EnvironmentStatus, error)
	Summarize(ctx context.Context, creatorID uuid.UUID) (*DeploymentSummary, error)
	PreviewAll(ctx context.Context, creatorID uuid.UUID) ([]ProductPreview, error)
	ListDeployments(ctx context.Context, creatorID uuid.UUID, status *domain.DeploymentStatus) ([]*domain.DeploymentRecord, error)
}

type statusService struct {
	products    repository.ProductRepository
	deployments repository.DeploymentRepository
	credentials repository.CredentialsRepository
	logger      *zap.Logger
}

// NewStatusService creates a new instance of StatusService
func NewStatusService(
	products repository.ProductRepository,
	deployments repository.DeploymentRepository,
	credentials repository.CredentialsRepository,
	logger *zap.Logger,
) StatusService {
	return &statusService{
		products:    products,
		deployments: deployments,
		credentials: credentials,
		logger:      logger,
	}
}

// Status composes the credential flags, per-environment product counts, and
// the most recent deployment into one snapshot.
func (s *statusService) Status(ctx context.Context, creatorID uuid.UUID) (*EnvironmentStatus, error) {
	status := &EnvironmentStatus{}

	creds, err := s.credentials.Get(ctx, creatorID)
	if err != nil && !errors.Is(err, repository.ErrCredentialsNotFound) {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds != nil {
		status.TestConnected = creds.HasTest()
		status.LiveConnected = creds.HasLive()
	}

	counts, err := s.products.CountByEnvironment(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	status.TestProducts = counts.Test
	status.LiveProducts = counts.Live

	inFlight, err := s.deployments.CountInFlight(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count in-flight deployments: %w", err)
	}
	status.InFlight = inFlight

	last, err := s.deployments.MostRecent(ctx, creatorID)
	if err != nil && !errors.Is(err, repository.ErrDeploymentNotFound) {
		return nil, fmt.Errorf("failed to load most recent deployment: %w", err)
	}
	if last != nil {
		entry := &LastDeployment{
			DeploymentID: last.ID,
			Status:       last.Status,
			StartedAt:    last.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		// The product may have been deleted since the attempt; omit the
		// name rather than failing the whole snapshot.
		product, err := s.products.FindByID(ctx, last.ProductID, creatorID)
		if err == nil {
			entry.ProductName = product.Name
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Warn("Failed to resolve product for last deployment",
				zap.String("deployment_id", last.ID.String()),
				zap.Error(err),
			)
		}
		status.Last = entry
	}

	return status, nil
}

// Summarize runs the validation engine over every active product and counts
// the ready / needs-attention / already-deployed buckets. The buckets are
// mutually exclusive and cover every product.
func (s *statusService) Summarize(ctx context.Context, creatorID uuid.UUID) (*DeploymentSummary, error) {
	products, err := s.products.ListActive(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	summary := &DeploymentSummary{Total: len(products)}
	for _, product := range products {
		switch {
		case product.IsLive():
			summary.AlreadyDeployed++
		case !IsDeployable(Validate(product)):
			summary.NeedsAttention++
		default:
			summary.Ready++
		}
	}
	summary.EstimatedMinutes = summary.Ready * estimatedMinutesPerProduct

	return summary, nil
}

// ListDeployments returns the creator's deployment records, optionally
// filtered by status.
func (s *statusService) ListDeployments(ctx context.Context, creatorID uuid.UUID, status *domain.DeploymentStatus) ([]*domain.DeploymentRecord, error) {
	return s.deployments.List(ctx, creatorID, status)
}

// PreviewAll returns every active product with its validation outcome.
func (s *statusService) PreviewAll(ctx context.Context, creatorID uuid.UUID) ([]ProductPreview, error) {
	products, err := s.products.ListActive(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	previews := make([]ProductPreview, 0, len(products))
	for _, product := range products {
		checks := Validate(product)
		previews = append(previews, ProductPreview{
			Product:    product,
			Checks:     checks,
			Deployable: IsDeployable(checks),
			IsDeployed: product.IsLive(),
		})
	}

	return previews, nil
}
