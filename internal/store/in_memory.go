package store

import (
	"context"
	"sync"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"github.com/google/uuid"
)

var _ ProductStore = (*InMemoryStore)(nil)

// InMemoryStore keeps products in memory in insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]*Product
	order    []string
	now      func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]*Product),
		now:      time.Now,
	}
}

func (s *InMemoryStore) FindByBarCode(ctx context.Context, barCode int64) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("find product by barcode", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findByBarCode(barCode)
	if p == nil {
		return nil, perrors.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (s *InMemoryStore) FindAll(ctx context.Context, offset, limit int64) ([]Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, storageError("find all products", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(len(s.order))
	products := make([]Product, 0)
	for i := offset; i < total && i < offset+limit; i++ {
		products = append(products, *s.products[s.order[i]])
	}
	return products, total, nil
}

func (s *InMemoryStore) Create(ctx context.Context, product *Product) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("create product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByBarCode(product.BarCode) != nil {
		return nil, perrors.ErrProductAlreadyExists
	}
	created := *product
	created.ID = uuid.NewString()
	created.CreatedAt = creationTime(product.CreatedAt, s.now)
	created.UpdatedAt = created.CreatedAt

	s.products[created.ID] = &created
	s.order = append(s.order, created.ID)

	result := created
	return &result, nil
}

func (s *InMemoryStore) Update(ctx context.Context, product *Product) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("update product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	if other := s.findByBarCode(product.BarCode); other != nil && other.ID != product.ID {
		return nil, perrors.ErrProductAlreadyExists
	}
	updated := *product
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = truncate(product.UpdatedAt)
	s.products[product.ID] = &updated

	result := updated
	return &result, nil
}

func (s *InMemoryStore) DecrementQuantity(ctx context.Context, barCode, qty int64, updatedAt time.Time) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("decrement product quantity", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findByBarCode(barCode)
	if p == nil {
		return nil, perrors.ErrProductNotFound
	}
	if p.Quantity < qty {
		return nil, perrors.ErrInsufficientStock
	}
	p.Quantity -= qty
	p.UpdatedAt = truncate(updatedAt)

	result := *p
	return &result, nil
}

func (s *InMemoryStore) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return storageError("delete product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// findByBarCode expects the caller to hold the lock.
func (s *InMemoryStore) findByBarCode(barCode int64) *Product {
	for _, id := range s.order {
		if p := s.products[id]; p.BarCode == barCode {
			return p
		}
	}
	return nil
}
