package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pelloch/marketplace/internal/entity"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type productRepository struct {
	db *sqlx.DB
}

func (r *productRepository) Create(ctx context.Context, name string) (*entity.Product, error) {
	p := &entity.Product{Name: name}
	err := r.db.QueryRowxContext(ctx,
		"INSERT INTO products (name) VALUES ($1) RETURNING id", name,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return nil, entity.Validationf("product name %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := r.db.GetContext(ctx, &p, "SELECT id, name FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NotFoundf("product %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.SelectContext(ctx, &products, "SELECT id, name FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func (r *productRepository) UpdateName(ctx context.Context, id int64, name string) (*entity.Product, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET name = $1 WHERE id = $2", name, id)
	if isUniqueViolation(err) {
		return nil, entity.Validationf("product name %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, entity.NotFoundf("product %d", id)
	}
	return &entity.Product{ID: id, Name: name}, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	// Listings referencing the product go with it (ON DELETE CASCADE).
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return entity.NotFoundf("product %d", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
