package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores products in the relational database.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting a mock database for tests.
func NewRepositoryWithQuerier(db querier) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, description, is_active, duration_minutes, quota_per_day,
		price_sen, deposit_percentage, created_at, updated_at`

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	id := uuid.New()
	query := `
		INSERT INTO products (id, name, description, is_active, duration_minutes,
			quota_per_day, price_sen, deposit_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns
	row := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Description,
		req.IsActive,
		req.DurationMinutes,
		req.QuotaPerDay,
		req.PriceSen,
		req.DepositPercentage,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert product: %w", err)
	}
	return product, nil
}

// GetByID fetches a product by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: load product: %w", err)
	}
	return product, nil
}

// ListActive returns bookable products ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY name`
	return r.list(ctx, query)
}

// ListAll returns every product, active or not, ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	return r.list(ctx, query)
}

func (r *Repository) list(ctx context.Context, query string) ([]*Product, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Update applies the non-nil fields of req to a product.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			is_active = COALESCE($4, is_active),
			duration_minutes = COALESCE($5, duration_minutes),
			quota_per_day = COALESCE($6, quota_per_day),
			price_sen = COALESCE($7, price_sen),
			deposit_percentage = COALESCE($8, deposit_percentage),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns
	row := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Description,
		req.IsActive,
		req.DurationMinutes,
		req.QuotaPerDay,
		req.PriceSen,
		req.DepositPercentage,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: update product: %w", err)
	}
	return product, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.IsActive,
		&p.DurationMinutes,
		&p.QuotaPerDay,
		&p.PriceSen,
		&p.DepositPercentage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
