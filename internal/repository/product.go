package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/storage/db"
)

// ErrNoRows is returned when a targeted read matches nothing. Services map it
// to their own not-found errors.
var ErrNoRows = pgx.ErrNoRows

// uniqueViolationCode is the Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository

	Create(ctx context.Context, product model.Product) error
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)

	ExistsByName(ctx context.Context, name string) (bool, error)
	SearchByName(ctx context.Context, name string) ([]model.Product, error)
	ListByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error)
	ListInStock(ctx context.Context) ([]model.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
	ListOutOfStock(ctx context.Context) ([]model.Product, error)
	CountInStock(ctx context.Context) (int64, error)

	// AdjustStock applies a signed delta to the product's stock, refusing any
	// change that would take it below zero. Returns ErrNoRows when the product
	// does not exist or the guard rejected the change.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, now time.Time) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, price, stock, created_at, updated_at`

func (r productRepository) Create(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, created_at, updated_at)
		VALUES (@id, @name, @price, @stock, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"stock":      product.Stock,
		"created_at": product.CreatedAt,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) Update(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = @name, price = @price, stock = @stock, updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"stock":      product.Stock,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	return nil
}

func (r productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	return nil
}

func (r productRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products`)
}

func (r productRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product exists by name: %w", err)
	}

	return exists, nil
}

func (r productRepository) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%'`, name)
}

func (r productRepository) ListByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE price BETWEEN $1 AND $2`, minPrice, maxPrice)
}

func (r productRepository) ListInStock(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE stock > 0`)
}

func (r productRepository) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	// Strict comparison: a product sitting exactly at the threshold is not low.
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE stock < $1`, threshold)
}

func (r productRepository) ListOutOfStock(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE stock = 0`)
}

func (r productRepository) CountInStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE stock > 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count in-stock products: %w", err)
	}

	return count, nil
}

func (r productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int, now time.Time) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + @delta, updated_at = @updated_at
		WHERE id = @id AND stock + @delta >= 0
		RETURNING `+productColumns+`
	`, pgx.NamedArgs{
		"id":         id,
		"delta":      delta,
		"updated_at": now,
	})

	return scanProduct(row)
}

func (r productRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNoRows
		}
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}

	return p, nil
}
