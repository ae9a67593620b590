package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pelloch/marketplace/internal/entity"
)

// inventoryGuard enforces the stock invariants inside an order placement
// transaction. The lock taken by checkAvailability is held until the
// surrounding transaction commits or rolls back, so concurrent placements
// against the same listing observe check and decrement as one unit.
type inventoryGuard struct{}

// checkAvailability locks the listing row and verifies the requested
// quantity can be fulfilled.
func (inventoryGuard) checkAvailability(ctx context.Context, tx *sqlx.Tx, listingID int64, requested int) (*entity.Listing, error) {
	var l entity.Listing
	err := tx.GetContext(ctx, &l,
		"SELECT id, product_id, title, description, price, quantity FROM listings WHERE id = $1 FOR UPDATE",
		listingID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NotFoundf("listing %d", listingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %d: %w", listingID, err)
	}
	if requested > l.Quantity {
		return nil, fmt.Errorf("%w: listing %d has %d, requested %d",
			entity.ErrInsufficientStock, listingID, l.Quantity, requested)
	}
	return &l, nil
}

// decrement applies the stock deduction. The quantity >= guard in the WHERE
// clause keeps the column non-negative even if a caller skipped the check.
func (inventoryGuard) decrement(ctx context.Context, tx *sqlx.Tx, listingID int64, requested int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE listings SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1",
		requested, listingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: listing %d", entity.ErrInsufficientStock, listingID)
	}
	return nil
}
