package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pelloch/marketplace/internal/entity"
)

type orderRepository struct {
	db    *sqlx.DB
	guard inventoryGuard
}

func (r *orderRepository) Place(ctx context.Context, merchantID int64, lines []entity.LineRequest, creationDate time.Time) (*entity.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order := &entity.Order{
		MerchantID:   merchantID,
		CreationDate: creationDate,
	}
	err = tx.QueryRowxContext(ctx,
		"INSERT INTO orders (merchant_id, creation_date) VALUES ($1, $2) RETURNING id",
		merchantID, creationDate,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	// Lines go in request order: whichever line hits missing stock first
	// fails the whole placement, and the rollback undoes the order row and
	// every decrement made so far.
	for _, line := range lines {
		if _, err := r.guard.checkAvailability(ctx, tx, line.ListingID, line.Quantity); err != nil {
			return nil, err
		}

		ol := entity.OrderLine{
			OrderID:   order.ID,
			ListingID: line.ListingID,
			Quantity:  line.Quantity,
		}
		err = tx.QueryRowxContext(ctx,
			"INSERT INTO order_lines (order_id, listing_id, quantity) VALUES ($1, $2, $3) RETURNING id",
			ol.OrderID, ol.ListingID, ol.Quantity,
		).Scan(&ol.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}

		if err := r.guard.decrement(ctx, tx, line.ListingID, line.Quantity); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, ol)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

func (r *orderRepository) FindByMerchant(ctx context.Context, merchantID int64) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.SelectContext(ctx, &orders,
		"SELECT id, merchant_id, creation_date FROM orders WHERE merchant_id = $1 ORDER BY creation_date DESC, id DESC",
		merchantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	for i := range orders {
		err := r.db.SelectContext(ctx, &orders[i].Lines,
			"SELECT id, order_id, listing_id, quantity FROM order_lines WHERE order_id = $1 ORDER BY id",
			orders[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query order lines: %w", err)
		}
	}
	return orders, nil
}
