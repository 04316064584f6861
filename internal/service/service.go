// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"github.com/JobsonDeveloper/Product-Microservice/internal/events"
	"github.com/JobsonDeveloper/Product-Microservice/internal/store"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create registers a new product.
	// Returns ErrProductAlreadyExists if the barcode is already registered.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces the product with the same barcode, keeping its identifier and creation time.
	// Returns ErrProductNotFound if no product exists with the given barcode.
	Update(ctx context.Context, product ProductUpdateDto) (*ProductDto, error)

	// Delete removes the product with the given barcode.
	// Returns ErrProductNotFound if no product exists with the given barcode.
	Delete(ctx context.Context, barCode int64) error

	// Get retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product exists with the given barcode.
	Get(ctx context.Context, barCode int64) (*ProductDto, error)

	// List returns a zero-based page of products.
	// Returns ErrInvalidPageRequest if page is negative or size is not positive.
	List(ctx context.Context, page, size int) (*PageDto, error)

	// Purchase removes the purchased units from the product stock.
	// Returns ErrInsufficientStock if the stock does not cover the purchase.
	Purchase(ctx context.Context, purchase PurchaseProductDto) (*ProductDto, error)
}

var _ ProductService = (*Service)(nil)

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
	metrics    *serviceMetrics
	meters     metric.MeterProvider
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used to stamp createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		s.meters = mp
	}
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger, opts ...Option) (*Service, error) {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	s := &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
		meters:     otel.GetMeterProvider(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics, err := newServiceMetrics(s.meters)
	if err != nil {
		return nil, fmt.Errorf("failed to create service metrics: %w", err)
	}
	s.metrics = metrics
	return s, nil
}

// Create checks the barcode is free, persists the product and announces it.
func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	_, err := s.repository.FindByBarCode(ctx, dto.BarCode)
	if err == nil {
		return nil, perrors.ErrProductAlreadyExists
	}
	if !errors.Is(err, perrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to look up product %d: %w", dto.BarCode, err)
	}

	product := dto.toProduct()
	product.CreatedAt = s.stamp()
	product.UpdatedAt = product.CreatedAt

	created, err := s.repository.Create(ctx, product)
	if err != nil {
		if errors.Is(err, perrors.ErrProductAlreadyExists) || errors.Is(err, perrors.ErrStorage) {
			return nil, fmt.Errorf("failed to create product %d: %w", dto.BarCode, err)
		}
		return nil, fmt.Errorf("%w: %w", perrors.ErrProductCreation, err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return nil, perrors.ErrProductCreation
	}

	s.metrics.created.Add(ctx, 1)
	s.publish(ctx, events.ProductCreated(created.ID, created.BarCode, created.Quantity, created.CreatedAt))
	return toDto(created), nil
}

// Update replaces the product with the same barcode.
func (s *Service) Update(ctx context.Context, dto ProductUpdateDto) (*ProductDto, error) {
	existing, err := s.repository.FindByBarCode(ctx, dto.BarCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %d: %w", dto.BarCode, err)
	}

	product := dto.toProduct()
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.stamp()
	if dto.Quantity == nil {
		product.Quantity = existing.Quantity
	}

	updated, err := s.repository.Update(ctx, product)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) || errors.Is(err, perrors.ErrStorage) {
			return nil, fmt.Errorf("failed to update product %d: %w", dto.BarCode, err)
		}
		return nil, fmt.Errorf("%w: %w", perrors.ErrProductUpdate, err)
	}

	s.publish(ctx, events.ProductUpdated(updated.ID, updated.BarCode, updated.Quantity, updated.UpdatedAt))
	return toDto(updated), nil
}

// Delete removes the product and confirms it is gone.
func (s *Service) Delete(ctx context.Context, barCode int64) error {
	existing, err := s.repository.FindByBarCode(ctx, barCode)
	if err != nil {
		return fmt.Errorf("failed to look up product %d: %w", barCode, err)
	}
	if err := s.repository.DeleteByID(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", barCode, err)
	}

	_, err = s.repository.FindByBarCode(ctx, barCode)
	switch {
	case err == nil:
		return perrors.ErrProductDeletion
	case !errors.Is(err, perrors.ErrProductNotFound):
		return fmt.Errorf("%w: failed to confirm deletion of product %d: %w", perrors.ErrProductDeletion, barCode, err)
	}

	s.publish(ctx, events.ProductDeleted(existing.ID, barCode, s.stamp()))
	return nil
}

// Get retrieves a product by its barcode.
func (s *Service) Get(ctx context.Context, barCode int64) (*ProductDto, error) {
	product, err := s.repository.FindByBarCode(ctx, barCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", barCode, err)
	}
	return toDto(product), nil
}

// List retrieves a page of products in store order.
func (s *Service) List(ctx context.Context, page, size int) (*PageDto, error) {
	if page < 0 || size < 1 {
		return nil, perrors.ErrInvalidPageRequest
	}

	products, total, err := s.repository.FindAll(ctx, int64(page)*int64(size), int64(size))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	content := make([]ProductDto, len(products))
	for i := range products {
		content[i] = *toDto(&products[i])
	}
	return newPage(content, page, size, total), nil
}

// Purchase checks the stock and applies a conditional decrement.
func (s *Service) Purchase(ctx context.Context, dto PurchaseProductDto) (*ProductDto, error) {
	product, err := s.repository.FindByBarCode(ctx, dto.BarCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", dto.BarCode, err)
	}
	if product.Quantity-dto.QuantityPurchased < 0 {
		s.rejectPurchase(ctx, dto.BarCode)
		return nil, perrors.ErrInsufficientStock
	}

	updated, err := s.repository.DecrementQuantity(ctx, dto.BarCode, dto.QuantityPurchased, s.stamp())
	if err != nil {
		if errors.Is(err, perrors.ErrInsufficientStock) {
			s.rejectPurchase(ctx, dto.BarCode)
		}
		return nil, fmt.Errorf("failed to purchase product %d: %w", dto.BarCode, err)
	}

	s.metrics.purchasedUnits.Add(ctx, dto.QuantityPurchased)
	s.publish(ctx, events.ProductPurchased(updated.ID, updated.BarCode, updated.Quantity, dto.QuantityPurchased, updated.UpdatedAt))
	return toDto(updated), nil
}

// stamp reads the clock at the millisecond precision every store keeps.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) rejectPurchase(ctx context.Context, barCode int64) {
	s.metrics.purchasesRejected.Add(ctx, 1)
	s.logger.InfoContext(ctx, "Purchase rejected for insufficient stock", "barCode", barCode)
}

// publish never fails the calling operation.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event",
			"subject", event.Subject(), logger.ErrAttr(err))
	}
}
