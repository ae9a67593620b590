package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pelloch/marketplace/internal/entity"
)

type listingRepository struct {
	db *sqlx.DB
}

func (r *listingRepository) Create(ctx context.Context, l *entity.Listing) (*entity.Listing, error) {
	// Listings are created without a product; AttachProduct binds one later.
	err := r.db.QueryRowxContext(ctx,
		"INSERT INTO listings (title, description, price, quantity) VALUES ($1, $2, $3, $4) RETURNING id",
		l.Title, l.Description, l.Price, l.Quantity,
	).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	l.ProductID = nil
	return l, nil
}

func (r *listingRepository) FindByID(ctx context.Context, id int64) (*entity.Listing, error) {
	var l entity.Listing
	err := r.db.GetContext(ctx, &l,
		"SELECT id, product_id, title, description, price, quantity FROM listings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NotFoundf("listing %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}
	return &l, nil
}

func (r *listingRepository) FindAll(ctx context.Context) ([]entity.Listing, error) {
	var listings []entity.Listing
	err := r.db.SelectContext(ctx, &listings,
		"SELECT id, product_id, title, description, price, quantity FROM listings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) Update(ctx context.Context, l *entity.Listing) (*entity.Listing, error) {
	// product_id is deliberately absent: the general update path never
	// touches the product reference.
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET title = $1, description = $2, price = $3, quantity = $4 WHERE id = $5",
		l.Title, l.Description, l.Price, l.Quantity, l.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, entity.NotFoundf("listing %d", l.ID)
	}
	return r.FindByID(ctx, l.ID)
}

func (r *listingRepository) AttachProduct(ctx context.Context, listingID, productID int64) (*entity.Listing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current sql.NullInt64
	err = tx.QueryRowxContext(ctx,
		"SELECT product_id FROM listings WHERE id = $1 FOR UPDATE", listingID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NotFoundf("listing %d", listingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	if current.Valid {
		return nil, entity.ErrProductAttached
	}

	var exists bool
	err = tx.QueryRowxContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", productID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, entity.Validationf("product %d does not exist", productID)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE listings SET product_id = $1 WHERE id = $2", productID, listingID,
	); err != nil {
		return nil, fmt.Errorf("failed to attach product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.FindByID(ctx, listingID)
}
