package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"github.com/JobsonDeveloper/Product-Microservice/internal/service"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, dto service.ProductCreateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, dto)
	return productArg(args)
}

func (m *mockProductService) Update(ctx context.Context, dto service.ProductUpdateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, dto)
	return productArg(args)
}

func (m *mockProductService) Delete(ctx context.Context, barCode int64) error {
	return m.Called(ctx, barCode).Error(0)
}

func (m *mockProductService) Get(ctx context.Context, barCode int64) (*service.ProductDto, error) {
	args := m.Called(ctx, barCode)
	return productArg(args)
}

func (m *mockProductService) List(ctx context.Context, page, size int) (*service.PageDto, error) {
	args := m.Called(ctx, page, size)
	if p, ok := args.Get(0).(*service.PageDto); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) Purchase(ctx context.Context, dto service.PurchaseProductDto) (*service.ProductDto, error) {
	args := m.Called(ctx, dto)
	return productArg(args)
}

func productArg(args mock.Arguments) (*service.ProductDto, error) {
	if p, ok := args.Get(0).(*service.ProductDto); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

var today = time.Date(2025, time.June, 1, 15, 0, 0, 0, time.UTC)

func newTestRouter(svc service.ProductService, health Pinger) *chi.Mux {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewHandler(svc, health, logger)
	h.validate = newValidator(func() time.Time { return today })
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func serve(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func sampleProduct() *service.ProductDto {
	return &service.ProductDto{
		ID:                "665f1c2e9b1e8a3d4c5b6a70",
		Name:              "Green tea",
		BarCode:           123,
		Brand:             "Leafy",
		Weight:            0.2,
		Quantity:          10,
		Value:             7.5,
		Classification:    "Beverage",
		Description:       "Loose leaf green tea",
		ManufacturingDate: service.NewDate(time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)),
		ExpirationDate:    service.NewDate(time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC)),
		CreatedAt:         time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC),
	}
}

const validCreateBody = `{"name":"Green tea","barCode":123,"brand":"Leafy","weight":0.2,"quantity":10,"value":7.5,
	"classification":"Beverage","description":"Loose leaf green tea","manufacturing":"2025-01-02","expiration":"2027-01-02"}`

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		serviceErr   error
		callService  bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			body:         validCreateBody,
			callService:  true,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, ProductResponse{Message: msgCreated, Product: sampleProduct()}),
		},
		{
			name:         "Error - already registered",
			body:         validCreateBody,
			serviceErr:   perrors.ErrProductAlreadyExists,
			callService:  true,
			expectedCode: http.StatusConflict,
			expectedBody: `{"status":"CONFLICT","message":"The product already registered!"}`,
		},
		{
			name:         "Error - creation failed",
			body:         validCreateBody,
			serviceErr:   perrors.ErrProductCreation,
			callService:  true,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"status":"INTERNAL_SERVER_ERROR","message":"It was not possible to create the product!"}`,
		},
		{
			name:         "Error - storage failure",
			body:         validCreateBody,
			serviceErr:   fmt.Errorf("insert: %w", perrors.ErrStorage),
			callService:  true,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"status":"INTERNAL_SERVER_ERROR","message":"Internal server error!"}`,
		},
		{
			name:         "Error - malformed json",
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"status":"BAD_REQUEST","message":"Invalid request body"}`,
		},
		{
			name:         "Error - malformed date",
			body:         strings.Replace(validCreateBody, "2025-01-02", "02/01/2025", 1),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"status":"BAD_REQUEST","message":"Invalid request body"}`,
		},
		{
			name:         "Error - missing fields",
			body:         `{"barCode":123,"weight":0.2,"quantity":10,"value":7.5,"classification":"Beverage","description":"Loose leaf","manufacturing":"2025-01-02","expiration":"2027-01-02"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{Error: validationFailed, Errors: []FieldError{
				{Field: "name", Message: "The name is required!"},
				{Field: "brand", Message: "The brand is required!"},
			}}),
		},
		{
			name:         "Error - invalid values",
			body:         `{"name":"G","barCode":0,"brand":"Leafy","weight":0.001,"quantity":-1,"value":-2,"classification":"Beverage","description":"Loose leaf","manufacturing":"2025-06-02","expiration":"2025-06-01"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{Error: validationFailed, Errors: []FieldError{
				{Field: "name", Message: "The name must be valid!"},
				{Field: "barCode", Message: "The bar code is required!"},
				{Field: "weight", Message: "The weight must be valid!"},
				{Field: "quantity", Message: "The quantity must be valid!"},
				{Field: "value", Message: "The product value must be valid!"},
				{Field: "manufacturing", Message: "The manufacturing date must be valid!"},
				{Field: "expiration", Message: "The expiration date must be valid!"},
			}}),
		},
		{
			name:         "Error - missing quantity and value",
			body:         `{"name":"Green tea","barCode":123,"brand":"Leafy","weight":0.2,"classification":"Beverage","description":"Loose leaf","manufacturing":"2025-01-02","expiration":"2027-01-02"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{Error: validationFailed, Errors: []FieldError{
				{Field: "quantity", Message: "The quantity is required!"},
				{Field: "value", Message: "The product value is required!"},
			}}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.callService {
				var product *service.ProductDto
				if tc.serviceErr == nil {
					product = sampleProduct()
				}
				svc.On("Create", mock.Anything, mock.MatchedBy(func(dto service.ProductCreateDto) bool {
					return dto.BarCode == 123 && *dto.Quantity == 10 && dto.ExpirationDate.Year() == 2027
				})).Return(product, tc.serviceErr).Once()
			}
			router := newTestRouter(svc, nil)

			// when
			rr := serve(t, router, http.MethodPost, "/api/product/create", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	body := `{"name":"Matcha","barCode":123,"brand":"Leafy","weight":0.3,"value":19.9,"classification":"Beverage",
		"description":"Ceremonial grade","manufacturing":"2025-06-01","expiration":"2025-06-02"}`

	testCases := []struct {
		name         string
		serviceErr   error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, ProductResponse{Message: msgUpdated, Product: sampleProduct()}),
		},
		{
			name:         "Error - product not found",
			serviceErr:   fmt.Errorf("lookup: %w", perrors.ErrProductNotFound),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"status":"NOT_FOUND","message":"Product not found!"}`,
		},
		{
			name:         "Error - update failed",
			serviceErr:   perrors.ErrProductUpdate,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"status":"INTERNAL_SERVER_ERROR","message":"It was not possible to update the product!"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			var product *service.ProductDto
			if tc.serviceErr == nil {
				product = sampleProduct()
			}
			svc.On("Update", mock.Anything, mock.MatchedBy(func(dto service.ProductUpdateDto) bool {
				return dto.BarCode == 123 && dto.Quantity == nil
			})).Return(product, tc.serviceErr).Once()
			router := newTestRouter(svc, nil)

			// when
			rr := serve(t, router, http.MethodPut, "/api/product/update", body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Delete(t *testing.T) {
	testCases := []struct {
		name         string
		barCode      string
		serviceErr   error
		callService  bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			barCode:      "123",
			callService:  true,
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Product deleted successfully!"}`,
		},
		{
			name:         "Error - product not found",
			barCode:      "123",
			serviceErr:   perrors.ErrProductNotFound,
			callService:  true,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"status":"NOT_FOUND","message":"Product not found!"}`,
		},
		{
			name:         "Error - deletion failed",
			barCode:      "123",
			serviceErr:   perrors.ErrProductDeletion,
			callService:  true,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"status":"INTERNAL_SERVER_ERROR","message":"It was not possible to delete the product!"}`,
		},
		{
			name:         "Error - invalid barcode",
			barCode:      "abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"status":"BAD_REQUEST","message":"Invalid barcode: abc"}`,
		},
		{
			name:         "Error - zero barcode",
			barCode:      "0",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"status":"BAD_REQUEST","message":"Invalid barcode: 0"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.callService {
				svc.On("Delete", mock.Anything, int64(123)).Return(tc.serviceErr).Once()
			}
			router := newTestRouter(svc, nil)

			// when
			rr := serve(t, router, http.MethodDelete, "/api/product/"+tc.barCode+"/delete", "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Get(t *testing.T) {
	t.Run("Success - product returned", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("Get", mock.Anything, int64(123)).Return(sampleProduct(), nil).Once()

		rr := serve(t, newTestRouter(svc, nil), http.MethodGet, "/api/product/123/informations", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, toJSON(t, ProductResponse{Message: msgReturned, Product: sampleProduct()}), rr.Body.String())
		assert.Contains(t, rr.Body.String(), `"manufacturingDate":"2025-01-02"`)
		svc.AssertExpectations(t)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("Get", mock.Anything, int64(9)).Return(nil, perrors.ErrProductNotFound).Once()

		rr := serve(t, newTestRouter(svc, nil), http.MethodGet, "/api/product/9/informations", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"status":"NOT_FOUND","message":"Product not found!"}`, rr.Body.String())
	})
}

func Test_Handler_List(t *testing.T) {
	page := &service.PageDto{Content: []service.ProductDto{}, TotalPages: 0, Size: 10, Last: true, First: true, Empty: true}

	testCases := []struct {
		name         string
		query        string
		wantPage     int
		wantSize     int
		callService  bool
		serviceErr   error
		expectedCode int
	}{
		{name: "Success - defaults", query: "", wantPage: 0, wantSize: 10, callService: true, expectedCode: http.StatusOK},
		{name: "Success - explicit paging", query: "?page=2&size=5", wantPage: 2, wantSize: 5, callService: true, expectedCode: http.StatusOK},
		{name: "Error - negative page", query: "?page=-1", expectedCode: http.StatusBadRequest},
		{name: "Error - zero size", query: "?size=0", expectedCode: http.StatusBadRequest},
		{name: "Error - not a number", query: "?page=x", expectedCode: http.StatusBadRequest},
		{name: "Error - storage failure", query: "", wantPage: 0, wantSize: 10, callService: true, serviceErr: perrors.ErrStorage, expectedCode: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.callService {
				var result *service.PageDto
				if tc.serviceErr == nil {
					result = page
				}
				svc.On("List", mock.Anything, tc.wantPage, tc.wantSize).Return(result, tc.serviceErr).Once()
			}

			// when
			rr := serve(t, newTestRouter(svc, nil), http.MethodGet, "/api/product/list"+tc.query, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				assert.JSONEq(t, toJSON(t, page), rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Purchase(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		serviceErr   error
		callService  bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - products purchased",
			body:         `{"barCode":123,"quantityPurchased":4}`,
			callService:  true,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, ProductResponse{Message: msgPurchased, Product: sampleProduct()}),
		},
		{
			name:         "Error - insufficient stock",
			body:         `{"barCode":123,"quantityPurchased":4}`,
			serviceErr:   perrors.ErrInsufficientStock,
			callService:  true,
			expectedCode: http.StatusConflict,
			expectedBody: `{"status":"CONFLICT","message":"Insufficient products in stock!"}`,
		},
		{
			name:         "Error - product not found",
			body:         `{"barCode":123,"quantityPurchased":4}`,
			serviceErr:   perrors.ErrProductNotFound,
			callService:  true,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"status":"NOT_FOUND","message":"Product not found!"}`,
		},
		{
			name:         "Error - validation",
			body:         `{"barCode":123,"quantityPurchased":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{Error: validationFailed, Errors: []FieldError{
				{Field: "quantityPurchased", Message: "The quantity purchased is required!"},
			}}),
		},
		{
			name:         "Error - negative quantity",
			body:         `{"barCode":123,"quantityPurchased":-3}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{Error: validationFailed, Errors: []FieldError{
				{Field: "quantityPurchased", Message: "The quantity purchased must be valid!"},
			}}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.callService {
				var product *service.ProductDto
				if tc.serviceErr == nil {
					product = sampleProduct()
				}
				svc.On("Purchase", mock.Anything, service.PurchaseProductDto{BarCode: 123, QuantityPurchased: 4}).
					Return(product, tc.serviceErr).Once()
			}

			// when
			rr := serve(t, newTestRouter(svc, nil), http.MethodPut, "/api/product/purchase", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	t.Run("Success - store reachable", func(t *testing.T) {
		router := newTestRouter(new(mockProductService), pingerFunc(func(context.Context) error { return nil }))

		rr := serve(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"UP"}`, rr.Body.String())
	})

	t.Run("Error - store unreachable", func(t *testing.T) {
		router := newTestRouter(new(mockProductService), pingerFunc(func(context.Context) error {
			return errors.New("connection refused")
		}))

		rr := serve(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var body web.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Status)
	})
}
