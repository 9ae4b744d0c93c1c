package transport

import (
	"net/http"

	"launchpad/internal/domain"
	"launchpad/internal/middleware"
	"launchpad/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromoteRequest asks for one product to be promoted to production
type PromoteRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// BatchPromoteRequest asks for several products to be promoted sequentially
type BatchPromoteRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,max=50,dive,uuid"`
}

// DeploymentHandler handles HTTP requests for the promotion pipeline
type DeploymentHandler struct {
	deployments service.DeploymentService
	status      service.StatusService
	logger      *zap.Logger
}

// NewDeploymentHandler creates a new DeploymentHandler
func NewDeploymentHandler(
	deployments service.DeploymentService,
	status service.StatusService,
	logger *zap.Logger,
) *DeploymentHandler {
	return &DeploymentHandler{
		deployments: deployments,
		status:      status,
		logger:      logger,
	}
}

// RegisterRoutes registers all deployment routes
func (h *DeploymentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/deployments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/promote", h.Promote)
		r.Post("/batch", h.BatchPromote)
		r.Get("/status", h.Status)
		r.Get("/summary", h.Summary)
		r.Get("/preview", h.Preview)
		r.Get("/", h.List)
	})
}

// Promote handles a single promotion request. The pipeline reports failure
// through the structured result body, not an error status, so UIs can render
// partial outcomes uniformly.
func (h *DeploymentHandler) Promote(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req PromoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Promote validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	result := h.deployments.Promote(r.Context(), creatorID, productID)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// BatchPromote handles a sequential batch promotion request
func (h *DeploymentHandler) BatchPromote(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req BatchPromoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Batch promote validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID: "+raw)
			return
		}
		productIDs = append(productIDs, id)
	}

	result := h.deployments.BatchPromote(r.Context(), creatorID, productIDs)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Status returns the creator's environment snapshot
func (h *DeploymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.status.Status(r.Context(), creatorID)
	if err != nil {
		h.logger.Error("Failed to build environment status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load environment status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, status)
}

// Summary returns the deployment readiness summary
func (h *DeploymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.status.Summarize(r.Context(), creatorID)
	if err != nil {
		h.logger.Error("Failed to build deployment summary", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load deployment summary")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// Preview returns every active product with its validation outcome
func (h *DeploymentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	previews, err := h.status.PreviewAll(r.Context(), creatorID)
	if err != nil {
		h.logger.Error("Failed to build validation preview", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load validation preview")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, previews)
}

// List returns the creator's deployment records, optionally filtered by
// ?status=deploying|completed|failed|pending
func (h *DeploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var statusFilter *domain.DeploymentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.DeploymentStatus(raw)
		switch status {
		case domain.DeploymentStatusPending, domain.DeploymentStatusDeploying,
			domain.DeploymentStatusCompleted, domain.DeploymentStatusFailed:
			statusFilter = &status
		default:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	records, err := h.status.ListDeployments(r.Context(), creatorID, statusFilter)
	if err != nil {
		h.logger.Error("Failed to list deployments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list deployments")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

// creatorFromContext resolves the authenticated creator or writes a 401.
func creatorFromContext(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	creatorIDStr, ok := middleware.GetCreatorID(r.Context())
	if !ok {
		logger.Error("Creator ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	creatorID, err := uuid.Parse(creatorIDStr)
	if err != nil {
		logger.Error("Invalid creator ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid creator ID")
		return uuid.Nil, false
	}

	return creatorID, true
}
