package store

import (
	"context"
	"sync"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"github.com/stretchr/testify/suite"
)

// storeContractSuite holds the behaviour every ProductStore implementation must share.
// Concrete suites embed it and assign store in SetupTest.
type storeContractSuite struct {
	suite.Suite
	ctx       context.Context
	store     ProductStore
	missingID string
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestProduct(barCode, quantity int64) *Product {
	return &Product{
		Name:              "Coffee beans",
		BarCode:           barCode,
		Brand:             "Acme",
		Weight:            0.5,
		Quantity:          quantity,
		Value:             12.9,
		Classification:    "Food",
		Description:       "Roasted arabica",
		ManufacturingDate: date(2024, time.January, 10),
		ExpirationDate:    date(2030, time.January, 10),
	}
}

func (s *storeContractSuite) createProduct(barCode, quantity int64) *Product {
	s.T().Helper()
	created, err := s.store.Create(s.ctx, newTestProduct(barCode, quantity))
	s.Require().NoError(err, "createProduct helper failed")
	return created
}

func (s *storeContractSuite) TestCreate_AssignsIDAndTimestamps() {
	// when
	created, err := s.store.Create(s.ctx, newTestProduct(100, 5))

	// then
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.False(created.CreatedAt.IsZero())
	s.Equal(created.CreatedAt, created.UpdatedAt)
	s.Equal(int64(100), created.BarCode)
	s.Equal(int64(5), created.Quantity)
	s.True(created.ManufacturingDate.Equal(date(2024, time.January, 10)))
}

func (s *storeContractSuite) TestCreate_KeepsCallerTimestampAtStorePrecision() {
	// given
	product := newTestProduct(103, 1)
	product.CreatedAt = time.Date(2025, time.June, 1, 15, 0, 0, 123456789, time.UTC)
	product.UpdatedAt = product.CreatedAt

	// when
	created, err := s.store.Create(s.ctx, product)
	s.Require().NoError(err)
	found, err := s.store.FindByBarCode(s.ctx, 103)
	s.Require().NoError(err)

	// then
	expected := time.Date(2025, time.June, 1, 15, 0, 0, 123000000, time.UTC)
	s.Equal(expected, created.CreatedAt)
	s.Equal(created.CreatedAt, found.CreatedAt)
	s.Equal(created.UpdatedAt, found.UpdatedAt)
}

func (s *storeContractSuite) TestCreate_DuplicateBarCode() {
	// given
	s.createProduct(101, 1)

	// when
	_, err := s.store.Create(s.ctx, newTestProduct(101, 2))

	// then
	s.ErrorIs(err, perrors.ErrProductAlreadyExists)
}

func (s *storeContractSuite) TestFindByBarCode() {
	// given
	created := s.createProduct(102, 3)

	// when
	found, err := s.store.FindByBarCode(s.ctx, 102)

	// then
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal("Coffee beans", found.Name)
	s.Equal(0.5, found.Weight)
	s.Equal(12.9, found.Value)
}

func (s *storeContractSuite) TestFindByBarCode_NotFound() {
	_, err := s.store.FindByBarCode(s.ctx, 999)
	s.ErrorIs(err, perrors.ErrProductNotFound)
}

func (s *storeContractSuite) TestFindAll_Pagination() {
	// given
	for i := int64(1); i <= 5; i++ {
		s.createProduct(200+i, i)
	}

	// when
	firstPage, total, err := s.store.FindAll(s.ctx, 0, 2)
	s.Require().NoError(err)
	lastPage, _, err := s.store.FindAll(s.ctx, 4, 2)
	s.Require().NoError(err)
	beyond, _, err := s.store.FindAll(s.ctx, 10, 2)
	s.Require().NoError(err)

	// then
	s.Equal(int64(5), total)
	s.Len(firstPage, 2)
	s.Len(lastPage, 1)
	s.Empty(beyond)
}

func (s *storeContractSuite) TestFindAll_Empty() {
	products, total, err := s.store.FindAll(s.ctx, 0, 10)

	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(products)
}

func (s *storeContractSuite) TestUpdate() {
	// given
	created := s.createProduct(300, 4)
	changed := *created
	changed.Name = "Decaf beans"
	changed.Quantity = 9
	changed.UpdatedAt = created.UpdatedAt.Add(time.Minute + 987654*time.Nanosecond)

	// when
	updated, err := s.store.Update(s.ctx, &changed)

	// then
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal("Decaf beans", updated.Name)
	s.Equal(int64(9), updated.Quantity)

	found, err := s.store.FindByBarCode(s.ctx, 300)
	s.Require().NoError(err)
	s.Equal("Decaf beans", found.Name)
	s.Equal(created.CreatedAt, found.CreatedAt)
	s.Equal(updated.UpdatedAt, found.UpdatedAt)
	s.Equal(created.UpdatedAt.Add(time.Minute), found.UpdatedAt)
	s.True(found.UpdatedAt.After(found.CreatedAt))
}

func (s *storeContractSuite) TestUpdate_NotFound() {
	product := newTestProduct(301, 1)
	product.ID = s.missingID

	_, err := s.store.Update(s.ctx, product)

	s.ErrorIs(err, perrors.ErrProductNotFound)
}

func (s *storeContractSuite) TestDecrementQuantity() {
	// given
	s.createProduct(400, 10)
	at := time.Now().UTC().Add(time.Hour)

	// when
	updated, err := s.store.DecrementQuantity(s.ctx, 400, 4, at)

	// then
	s.Require().NoError(err)
	s.Equal(int64(6), updated.Quantity)
	s.Equal(at.Truncate(time.Millisecond), updated.UpdatedAt)
	found, err := s.store.FindByBarCode(s.ctx, 400)
	s.Require().NoError(err)
	s.Equal(updated.UpdatedAt, found.UpdatedAt)
}

func (s *storeContractSuite) TestDecrementQuantity_Insufficient() {
	// given
	s.createProduct(401, 3)

	// when
	_, err := s.store.DecrementQuantity(s.ctx, 401, 4, time.Now())

	// then
	s.ErrorIs(err, perrors.ErrInsufficientStock)
	found, findErr := s.store.FindByBarCode(s.ctx, 401)
	s.Require().NoError(findErr)
	s.Equal(int64(3), found.Quantity)
}

func (s *storeContractSuite) TestDecrementQuantity_NotFound() {
	_, err := s.store.DecrementQuantity(s.ctx, 402, 1, time.Now())
	s.ErrorIs(err, perrors.ErrProductNotFound)
}

func (s *storeContractSuite) TestDecrementQuantity_ConcurrentNoOversell() {
	// given
	s.createProduct(403, 10)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	// when
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.DecrementQuantity(s.ctx, 403, 1, time.Now()); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// then
	s.Equal(10, accepted)
	found, err := s.store.FindByBarCode(s.ctx, 403)
	s.Require().NoError(err)
	s.Zero(found.Quantity)
}

func (s *storeContractSuite) TestDeleteByID() {
	// given
	created := s.createProduct(500, 1)

	// when
	err := s.store.DeleteByID(s.ctx, created.ID)

	// then
	s.Require().NoError(err)
	_, err = s.store.FindByBarCode(s.ctx, 500)
	s.ErrorIs(err, perrors.ErrProductNotFound)
	s.ErrorIs(s.store.DeleteByID(s.ctx, created.ID), perrors.ErrProductNotFound)
}

func (s *storeContractSuite) TestDeleteByID_NotFound() {
	s.ErrorIs(s.store.DeleteByID(s.ctx, s.missingID), perrors.ErrProductNotFound)
}

func (s *storeContractSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
