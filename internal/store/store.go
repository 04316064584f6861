// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
)

// Product is the persisted representation of a catalog item.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	BarCode           int64     `json:"barCode"`
	Brand             string    `json:"brand"`
	Weight            float64   `json:"weight"`
	Quantity          int64     `json:"quantity"`
	Value             float64   `json:"value"`
	Classification    string    `json:"classification"`
	Description       string    `json:"description"`
	ManufacturingDate time.Time `json:"manufacturingDate"`
	ExpirationDate    time.Time `json:"expirationDate"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByBarCode retrieves a single product by its barcode.
	// Returns ErrProductNotFound if no product exists with the given barcode.
	FindByBarCode(ctx context.Context, barCode int64) (*Product, error)

	// FindAll returns a page of products in store order together with the total number of products.
	// Returns an empty slice if the page holds no products.
	FindAll(ctx context.Context, offset, limit int64) ([]Product, int64, error)

	// Create persists a new product and assigns its identifier.
	// CreatedAt is taken from the product; a zero value is stamped by the store.
	// Returns ErrProductAlreadyExists if the barcode is already taken.
	Create(ctx context.Context, product *Product) (*Product, error)

	// Update replaces the product identified by product.ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product *Product) (*Product, error)

	// DecrementQuantity atomically subtracts qty from the product stock if enough units remain.
	// Returns ErrInsufficientStock or ErrProductNotFound when the decrement cannot be applied.
	DecrementQuantity(ctx context.Context, barCode, qty int64, updatedAt time.Time) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	// Ping reports whether the underlying store is reachable.
	Ping(ctx context.Context) error
}

// timePrecision is the finest timestamp resolution every store preserves (BSON datetimes are milliseconds).
const timePrecision = time.Millisecond

func truncate(t time.Time) time.Time {
	return t.UTC().Truncate(timePrecision)
}

// creationTime keeps a caller supplied stamp and falls back to now.
func creationTime(stamped time.Time, now func() time.Time) time.Time {
	if stamped.IsZero() {
		return truncate(now())
	}
	return truncate(stamped)
}

func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, perrors.ErrStorage, err)
}

// decrementMiss explains why a conditional decrement matched nothing.
func decrementMiss(ctx context.Context, s ProductStore, barCode int64) error {
	_, err := s.FindByBarCode(ctx, barCode)
	if err == nil {
		return perrors.ErrInsufficientStock
	}
	if errors.Is(err, perrors.ErrProductNotFound) {
		return perrors.ErrProductNotFound
	}
	return err
}
