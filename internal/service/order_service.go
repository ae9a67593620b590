package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pelloch/marketplace/internal/entity"
	"github.com/pelloch/marketplace/internal/messaging"
	"github.com/pelloch/marketplace/internal/repository"
)

// OrderService orchestrates batch order placement for one merchant.
type OrderService struct {
	orders    repository.OrderRepository
	publisher messaging.Publisher
	topic     string
	now       func() time.Time
}

func NewOrderService(orders repository.OrderRepository, publisher messaging.Publisher, topic string) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

// Place validates the batch request and runs the placement as one atomic
// unit. The merchant comes from the authenticated caller, never from the
// request body.
func (s *OrderService) Place(ctx context.Context, merchant *entity.Merchant, req *entity.OrderRequest) (*entity.Order, error) {
	if merchant == nil {
		return nil, entity.ErrUnauthorized
	}

	lines, err := req.Lines()
	if err != nil {
		return nil, err
	}

	creationDate := s.now()
	if req.CreationDate != nil {
		creationDate = *req.CreationDate
	}

	order, err := s.orders.Place(ctx, merchant.ID, lines, creationDate)
	if err != nil {
		return nil, err
	}

	slog.Info("Order placed", "order_id", order.ID, "merchant_id", merchant.ID, "lines", len(order.Lines))

	if s.publisher != nil {
		event := &entity.OrderPlaced{
			OrderID:    order.ID,
			MerchantID: merchant.ID,
			Lines:      order.Lines,
			PlacedAt:   time.Now(),
		}
		key := strconv.FormatInt(order.ID, 10)
		if err := s.publisher.PublishEvent(ctx, s.topic, key, event); err != nil {
			// The order is committed; a publish failure must not undo it.
			slog.Error("Failed to publish OrderPlaced event", "order_id", order.ID, "err", err)
		}
	}

	return order, nil
}

// ListForMerchant returns the calling merchant's own orders only.
func (s *OrderService) ListForMerchant(ctx context.Context, merchant *entity.Merchant) ([]entity.Order, error) {
	if merchant == nil {
		return nil, entity.ErrUnauthorized
	}
	orders, err := s.orders.FindByMerchant(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
