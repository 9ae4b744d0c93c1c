package transport

import (
	"errors"
	"net/http"

	"launchpad/internal/domain"
	"launchpad/internal/middleware"
	"launchpad/internal/repository"
	"launchpad/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the payload for creating or updating a product. Prices
// may be zero or missing here; the validation engine gates promotion, not
// catalog edits.
type ProductRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Description   *string `json:"description,omitempty"`
	Price         string  `json:"price" validate:"required"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Kind          string  `json:"kind" validate:"required,oneof=one_time subscription usage_based"`
	TestProductID *string `json:"test_product_id,omitempty"`
	TestPriceID   *string `json:"test_price_id,omitempty"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.products.Create(r.Context(), creatorID, *input)
	if err != nil {
		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles product edits
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.products.Update(r.Context(), creatorID, productID, *input)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Get handles retrieving one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), creatorID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// List handles listing the creator's active products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.products.List(r.Context(), creatorID)
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Deactivate handles soft-deleting a product
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := creatorFromContext(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.products.Deactivate(r.Context(), creatorID, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product deactivation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to deactivate product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deactivated"})
}

// decodeInput decodes, validates, and converts the request payload.
func (h *ProductHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return nil, false
	}
	if price.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must not be negative")
		return nil, false
	}

	return &service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		Currency:      req.Currency,
		Kind:          domain.ProductKind(req.Kind),
		TestProductID: req.TestProductID,
		TestPriceID:   req.TestPriceID,
	}, true
}

func productIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return productID, true
}
