package store

import (
	"context"
	"errors"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ ProductStore = (*PgStore)(nil)

const uniqueViolation = "23505"

const productColumns = `id::text, name, bar_code, brand, weight, quantity, value, classification, description,
	manufacturing_date, expiration_date, created_at, updated_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db           *pgxpool.Pool
	queryTimeout time.Duration
	now          func() time.Time
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
// Every call is bounded by queryTimeout; zero leaves the caller's deadline untouched.
func NewPgStore(dbp *pgxpool.Pool, queryTimeout time.Duration) *PgStore {
	return &PgStore{
		db:           dbp,
		queryTimeout: queryTimeout,
		now:          time.Now,
	}
}

func (p *PgStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.queryTimeout)
}

// FindByBarCode retrieves a product by its barcode.
// Returns ErrProductNotFound if no product exists with the given barcode.
func (p *PgStore) FindByBarCode(ctx context.Context, barCode int64) (*Product, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE bar_code = $1`, barCode)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, storageError("find product by barcode", err)
	}
	return product, nil
}

// FindAll retrieves a page of products along with the total count.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int64) ([]Product, int64, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, storageError("count products", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, storageError("find all products", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		product, err := scanProduct(row)
		if err != nil {
			return Product{}, err
		}
		return *product, nil
	})
	if err != nil {
		return nil, 0, storageError("scan products", err)
	}
	return products, total, nil
}

// Create inserts a new product.
// Returns ErrProductAlreadyExists if the barcode is already taken.
func (p *PgStore) Create(ctx context.Context, product *Product) (*Product, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	now := creationTime(product.CreatedAt, p.now)
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, bar_code, brand, weight, quantity, value, classification, description,
			manufacturing_date, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+productColumns,
		product.Name, product.BarCode, product.Brand, product.Weight, product.Quantity, product.Value,
		product.Classification, product.Description, product.ManufacturingDate, product.ExpirationDate, now)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, perrors.ErrProductAlreadyExists
		}
		return nil, storageError("create product", err)
	}
	return created, nil
}

// Update replaces every mutable column of the product with the same identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product *Product) (*Product, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	id, err := uuid.Parse(product.ID)
	if err != nil {
		return nil, perrors.ErrProductNotFound
	}
	row := p.db.QueryRow(ctx,
		`UPDATE products SET name = $2, bar_code = $3, brand = $4, weight = $5, quantity = $6, value = $7,
			classification = $8, description = $9, manufacturing_date = $10, expiration_date = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+productColumns,
		id, product.Name, product.BarCode, product.Brand, product.Weight, product.Quantity, product.Value,
		product.Classification, product.Description, product.ManufacturingDate, product.ExpirationDate,
		truncate(product.UpdatedAt))
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return nil, perrors.ErrProductAlreadyExists
		}
		return nil, storageError("update product", err)
	}
	return updated, nil
}

// DecrementQuantity subtracts qty only while the stock covers it.
func (p *PgStore) DecrementQuantity(ctx context.Context, barCode, qty int64, updatedAt time.Time) (*Product, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	row := p.db.QueryRow(ctx,
		`UPDATE products SET quantity = quantity - $2, updated_at = $3
		WHERE bar_code = $1 AND quantity >= $2
		RETURNING `+productColumns,
		barCode, qty, truncate(updatedAt))
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decrementMiss(ctx, p, barCode)
		}
		return nil, storageError("decrement product quantity", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	uid, err := uuid.Parse(id)
	if err != nil {
		return perrors.ErrProductNotFound
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, uid)
	if err != nil {
		return storageError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	if err := p.db.Ping(ctx); err != nil {
		return storageError("ping postgres", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.BarCode,
		&product.Brand,
		&product.Weight,
		&product.Quantity,
		&product.Value,
		&product.Classification,
		&product.Description,
		&product.ManufacturingDate,
		&product.ExpirationDate,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()
	return &product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
