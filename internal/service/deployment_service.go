package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"launchpad/internal/domain"
	"launchpad/internal/payments"
	"launchpad/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPromotionTimeout bounds one promotion attempt end to end.
	DefaultPromotionTimeout = 2 * time.Minute

	// subscriptionInterval is the recurring interval sent for subscription
	// products.
	subscriptionInterval = "month"
)

// PromotionResult is the structured outcome of one promotion attempt.
type PromotionResult struct {
	Success       bool       `json:"success"`
	DeploymentID  *uuid.UUID `json:"deployment_id,omitempty"`
	LiveProductID *string    `json:"live_product_id,omitempty"`
	LivePriceID   *string    `json:"live_price_id,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// DeploymentService promotes products from the test environment to
// production against the external payment provider.
type DeploymentService interface {
	Promote(ctx context.Context, creatorID, productID uuid.UUID) *PromotionResult
	BatchPromote(ctx context.Context, creatorID uuid.UUID, productIDs []uuid.UUID) *BatchResult
}

type deploymentService struct {
	products         repository.ProductRepository
	deployments      repository.DeploymentRepository
	credentials      repository.CredentialsRepository
	provider         payments.Provider
	pacer            Pacer
	promotionTimeout time.Duration
	logger           *zap.Logger
}

// NewDeploymentService creates a new instance of DeploymentService
func NewDeploymentService(
	products repository.ProductRepository,
	deployments repository.DeploymentRepository,
	credentials repository.CredentialsRepository,
	provider payments.Provider,
	pacer Pacer,
	promotionTimeout time.Duration,
	logger *zap.Logger,
) DeploymentService {
	if promotionTimeout <= 0 {
		promotionTimeout = DefaultPromotionTimeout
	}
	return &deploymentService{
		products:         products,
		deployments:      deployments,
		credentials:      credentials,
		provider:         provider,
		pacer:            pacer,
		promotionTimeout: promotionTimeout,
		logger:           logger,
	}
}

// Promote copies one product's sellable configuration to production.
//
// Failures before the deployment record is created (missing credentials,
// unknown product, critical validation failure) are side-effect free and safe
// to retry immediately. Once the record exists, every later failure marks it
// failed with the underlying error so the attempt is never silently lost.
func (s *deploymentService) Promote(ctx context.Context, creatorID, productID uuid.UUID) *PromotionResult {
	ctx, cancel := context.WithTimeout(ctx, s.promotionTimeout)
	defer cancel()

	// Step 1: credentials. Nothing external has happened yet, so a missing
	// sandbox connection needs no cleanup.
	creds, err := s.credentials.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialsNotFound) {
			return failure(ErrNoTestCredentials)
		}
		return failure(fmt.Errorf("failed to load creator credentials: %w", err))
	}
	if !creds.HasTest() {
		return failure(ErrNoTestCredentials)
	}

	// Step 2: load the product, scoped to the owning creator.
	product, err := s.products.FindByID(ctx, productID, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return failure(repository.ErrProductNotFound)
		}
		return failure(fmt.Errorf("failed to load product: %w", err))
	}

	// Step 3: gate on the validation engine.
	checks := Validate(product)
	if failed := FailedCriticalChecks(checks); len(failed) > 0 {
		return failure(&ValidationError{Checks: failed})
	}

	// Step 4: durable record. The unique in-flight index serializes
	// concurrent attempts for the same product.
	record := &domain.DeploymentRecord{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		ProductID:   product.ID,
		SourceEnv:   domain.EnvironmentTest,
		TargetEnv:   domain.EnvironmentProduction,
		Status:      domain.DeploymentStatusDeploying,
		Progress:    10,
		Message:     "Starting deployment",
		InitiatedBy: creatorID,
		StartedAt:   time.Now(),
	}
	if err := s.deployments.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDeploymentInFlight) {
			return failure(repository.ErrDeploymentInFlight)
		}
		return failure(fmt.Errorf("failed to create deployment record: %w", err))
	}

	s.logger.Info("Deployment started",
		zap.String("deployment_id", record.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("creator_id", creatorID.String()),
	)

	metadata := map[string]string{
		"creator_id":        creatorID.String(),
		"source_product_id": product.ID.String(),
		"deployment_id":     record.ID.String(),
	}
	accountID := s.liveAccount(creds)

	// Step 5: production product on the provider.
	s.progress(ctx, record.ID, 30, "Creating production product")
	providerProduct, err := s.provider.CreateProduct(ctx, payments.EnvironmentLive, accountID, payments.ProductParams{
		Name:        product.Name,
		Description: descriptionOrEmpty(product),
		Active:      true,
		Metadata:    metadata,
	})
	if err != nil {
		return s.fail(ctx, record.ID, &ExternalServiceError{Stage: "product creation", Err: err})
	}

	// Step 6: production price attached to the new product.
	s.progress(ctx, record.ID, 60, "Creating production price")
	priceParams := payments.PriceParams{
		ProductID:  providerProduct.ID,
		UnitAmount: product.MinorUnits(),
		Currency:   product.Currency,
		Metadata:   metadata,
	}
	if product.Kind == domain.ProductKindSubscription {
		priceParams.Recurring = &payments.Recurring{Interval: subscriptionInterval}
	}
	providerPrice, err := s.provider.CreatePrice(ctx, payments.EnvironmentLive, accountID, priceParams)
	if err != nil {
		return s.fail(ctx, record.ID, &ExternalServiceError{Stage: "price creation", Err: err})
	}

	// Step 7: link the external identifiers locally. A failure here leaves
	// live provider resources unlinked; the record and provider metadata
	// carry enough to reconcile.
	s.progress(ctx, record.ID, 85, "Linking production identifiers")
	now := time.Now()
	if err := s.products.SetLiveIdentifiers(ctx, product.ID, providerProduct.ID, providerPrice.ID, now); err != nil {
		return s.fail(ctx, record.ID, &PersistenceError{Err: err})
	}

	// Step 8: finalize the record.
	if err := s.deployments.MarkCompleted(ctx, record.ID, time.Now()); err != nil {
		return s.fail(ctx, record.ID, &PersistenceError{Err: err})
	}

	s.logger.Info("Deployment completed",
		zap.String("deployment_id", record.ID.String()),
		zap.String("live_product_id", providerProduct.ID),
		zap.String("live_price_id", providerPrice.ID),
	)

	return &PromotionResult{
		Success:       true,
		DeploymentID:  &record.ID,
		LiveProductID: &providerProduct.ID,
		LivePriceID:   &providerPrice.ID,
	}
}

// fail marks the record failed and converts the error into a result.
func (s *deploymentService) fail(ctx context.Context, deploymentID uuid.UUID, cause error) *PromotionResult {
	s.logger.Error("Deployment failed",
		zap.String("deployment_id", deploymentID.String()),
		zap.Error(cause),
	)

	// The record must reach a terminal state even when the promotion
	// context has already expired.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.deployments.MarkFailed(markCtx, deploymentID, cause.Error(), time.Now()); err != nil {
		s.logger.Error("Failed to mark deployment record failed",
			zap.String("deployment_id", deploymentID.String()),
			zap.Error(err),
		)
	}

	result := failure(cause)
	result.DeploymentID = &deploymentID
	return result
}

// progress advances the record's progress; failures are logged and ignored
// because progress is advisory.
func (s *deploymentService) progress(ctx context.Context, deploymentID uuid.UUID, progress int, message string) {
	if err := s.deployments.UpdateProgress(ctx, deploymentID, progress, message); err != nil {
		s.logger.Warn("Failed to update deployment progress",
			zap.String("deployment_id", deploymentID.String()),
			zap.Int("progress", progress),
			zap.Error(err),
		)
	}
}

// liveAccount picks the connected account used for production calls, falling
// back to the sandbox account when no live account is connected yet.
func (s *deploymentService) liveAccount(creds *domain.CreatorCredentials) string {
	if creds.HasLive() {
		return *creds.LiveAccountID
	}
	return *creds.TestAccountID
}

func descriptionOrEmpty(product *domain.Product) string {
	if product.Description == nil {
		return ""
	}
	return *product.Description
}

func failure(err error) *PromotionResult {
	return &PromotionResult{Success: false, Error: err.Error()}
}
