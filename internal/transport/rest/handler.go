// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/internal/service"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	msgCreated   = "Product created successfully!"
	msgUpdated   = "Product updated successfully!"
	msgDeleted   = "Product deleted successfully!"
	msgReturned  = "Product returned successfully!"
	msgPurchased = "Products purchased successfully!"

	defaultPageSize = 10
	maxBodyBytes    = 1 << 20
	healthTimeout   = 2 * time.Second
)

// Pinger reports whether the product store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProductResponse wraps a product with a confirmation message.
type ProductResponse struct {
	Message string              `json:"message"`
	Product *service.ProductDto `json:"product,omitempty"`
}

type Handler struct {
	service  service.ProductService
	health   Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, health Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		health:   health,
		validate: newValidator(time.Now),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/product", func(r chi.Router) {
		r.Post("/create", h.Create)
		r.Put("/update", h.Update)
		r.Put("/purchase", h.Purchase)
		r.Get("/list", h.List)
		r.Delete("/{barcode}/delete", h.Delete)
		r.Get("/{barcode}/informations", h.Get)
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the registration of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dto, ok := decodeAndValidate[service.ProductCreateDto](h, w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "barCode", dto.BarCode)

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error creating product", "barCode", dto.BarCode)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "barCode", created.BarCode)
	web.RespondJSON(w, mLogger, http.StatusCreated, ProductResponse{Message: msgCreated, Product: created})
}

// Update replaces the product identified by the barcode in the body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dto, ok := decodeAndValidate[service.ProductUpdateDto](h, w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "barCode", dto.BarCode)

	updated, err := h.service.Update(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error updating product", "barCode", dto.BarCode)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "barCode", updated.BarCode)
	web.RespondJSON(w, mLogger, http.StatusOK, ProductResponse{Message: msgUpdated, Product: updated})
}

// Delete removes the product with the barcode given in the path.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	barCode, ok := web.ParseInt64PathValue(w, r, mLogger, "barcode")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "barCode", barCode)

	if err := h.service.Delete(r.Context(), barCode); err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error deleting product", "barCode", barCode)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "barCode", barCode)
	web.RespondJSON(w, mLogger, http.StatusOK, ProductResponse{Message: msgDeleted})
}

// Get retrieves the product with the barcode given in the path.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	barCode, ok := web.ParseInt64PathValue(w, r, mLogger, "barcode")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find product", "barCode", barCode)

	found, err := h.service.Get(r.Context(), barCode)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error retrieving product", "barCode", barCode)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ProductResponse{Message: msgReturned, Product: found})
}

// List retrieves a page of products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.QueryIntGte(r, w, mLogger, "page", 0, 0)
	if !ok {
		return
	}
	size, ok := web.QueryIntGt(r, w, mLogger, "size", defaultPageSize, 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list products", "page", page, "size", size)

	result, err := h.service.List(r.Context(), page, size)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error retrieving product list")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", result.NumberOfElements)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// Purchase removes the purchased units from the product stock.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dto, ok := decodeAndValidate[service.PurchaseProductDto](h, w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received purchase request", "barCode", dto.BarCode, "quantity", dto.QuantityPurchased)

	updated, err := h.service.Purchase(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error purchasing product", "barCode", dto.BarCode)
		return
	}
	mLogger.InfoContext(r.Context(), "Products purchased successfully", "barCode", updated.BarCode, "remaining", updated.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, ProductResponse{Message: msgPurchased, Product: updated})
}

// HealthCheck reports 503 while the store cannot be reached.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.health.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check failed", logger.ErrAttr(err))
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "UP"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string, args ...any) {
	status, message := mapError(err)
	args = append(args, logger.ErrAttr(err))
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), msg, args...)
	} else {
		log.WarnContext(r.Context(), msg, args...)
	}
	web.RespondError(w, log, status, message)
}

// decodeAndValidate writes the 400 response itself and reports false when the body is unusable.
func decodeAndValidate[T any](h *Handler, w http.ResponseWriter, r *http.Request, log *slog.Logger) (T, bool) {
	var dto T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&dto); err != nil {
		log.WarnContext(r.Context(), "Error decoding request body", logger.ErrAttr(err))
		web.RespondError(w, log, http.StatusBadRequest, "Invalid request body")
		return dto, false
	}
	if err := h.validate.Struct(dto); err != nil {
		fields, ok := toFieldErrors(err)
		if !ok {
			log.ErrorContext(r.Context(), "Error validating request body", logger.ErrAttr(err))
			web.RespondError(w, log, http.StatusBadRequest, "Invalid request body")
			return dto, false
		}
		log.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
		web.RespondJSON(w, log, http.StatusBadRequest, ValidationErrorResponse{Error: validationFailed, Errors: fields})
		return dto, false
	}
	return dto, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
