package service

import (
	"strconv"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/internal/store"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(DateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name              string   `json:"name"           validate:"required,min=2"`
	BarCode           int64    `json:"barCode"        validate:"required,min=1"`
	Brand             string   `json:"brand"          validate:"required,min=2"`
	Weight            float64  `json:"weight"         validate:"required,gte=0.01"`
	Quantity          *int64   `json:"quantity"       validate:"required,gte=0"`
	Value             *float64 `json:"value"          validate:"required,gte=0"`
	Classification    string   `json:"classification" validate:"required,min=2"`
	Description       string   `json:"description"    validate:"required,min=2"`
	ManufacturingDate Date     `json:"manufacturing"  validate:"required,notfuture"`
	ExpirationDate    Date     `json:"expiration"     validate:"required,future"`
}

// ProductUpdateDto replaces every field of the product with the same barcode.
// Quantity may be omitted to keep the stored stock.
type ProductUpdateDto struct {
	Name              string   `json:"name"           validate:"required,min=2"`
	BarCode           int64    `json:"barCode"        validate:"required,min=1"`
	Brand             string   `json:"brand"          validate:"required,min=2"`
	Weight            float64  `json:"weight"         validate:"required,gte=0.01"`
	Quantity          *int64   `json:"quantity"       validate:"omitempty,gte=0"`
	Value             *float64 `json:"value"          validate:"required,gte=0"`
	Classification    string   `json:"classification" validate:"required,min=2"`
	Description       string   `json:"description"    validate:"required,min=2"`
	ManufacturingDate Date     `json:"manufacturing"  validate:"required,notfuture"`
	ExpirationDate    Date     `json:"expiration"     validate:"required,future"`
}

// PurchaseProductDto removes QuantityPurchased units from the product stock.
type PurchaseProductDto struct {
	BarCode           int64 `json:"barCode"           validate:"required,min=1"`
	QuantityPurchased int64 `json:"quantityPurchased" validate:"required,min=1"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	BarCode           int64     `json:"barCode"`
	Brand             string    `json:"brand"`
	Weight            float64   `json:"weight"`
	Quantity          int64     `json:"quantity"`
	Value             float64   `json:"value"`
	Classification    string    `json:"classification"`
	Description       string    `json:"description"`
	ManufacturingDate Date      `json:"manufacturingDate"`
	ExpirationDate    Date      `json:"expirationDate"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (d ProductCreateDto) toProduct() *store.Product {
	return &store.Product{
		Name:              d.Name,
		BarCode:           d.BarCode,
		Brand:             d.Brand,
		Weight:            d.Weight,
		Quantity:          deref(d.Quantity),
		Value:             deref(d.Value),
		Classification:    d.Classification,
		Description:       d.Description,
		ManufacturingDate: d.ManufacturingDate.Time,
		ExpirationDate:    d.ExpirationDate.Time,
	}
}

func (d ProductUpdateDto) toProduct() *store.Product {
	return &store.Product{
		Name:              d.Name,
		BarCode:           d.BarCode,
		Brand:             d.Brand,
		Weight:            d.Weight,
		Quantity:          deref(d.Quantity),
		Value:             deref(d.Value),
		Classification:    d.Classification,
		Description:       d.Description,
		ManufacturingDate: d.ManufacturingDate.Time,
		ExpirationDate:    d.ExpirationDate.Time,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:                product.ID,
		Name:              product.Name,
		BarCode:           product.BarCode,
		Brand:             product.Brand,
		Weight:            product.Weight,
		Quantity:          product.Quantity,
		Value:             product.Value,
		Classification:    product.Classification,
		Description:       product.Description,
		ManufacturingDate: NewDate(product.ManufacturingDate),
		ExpirationDate:    NewDate(product.ExpirationDate),
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
