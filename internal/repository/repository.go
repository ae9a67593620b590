package repository

import (
	"context"
	"time"

	"github.com/pelloch/marketplace/internal/entity"
)

// MerchantRepository handles persistence for Merchants.
type MerchantRepository interface {
	Create(ctx context.Context, username string) (*entity.Merchant, error)
	FindByToken(ctx context.Context, token string) (*entity.Merchant, error)
	// Count reports how many merchants exist; used by seeding.
	Count(ctx context.Context) (int, error)
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	Create(ctx context.Context, name string) (*entity.Product, error)
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	FindAll(ctx context.Context) ([]entity.Product, error)
	UpdateName(ctx context.Context, id int64, name string) (*entity.Product, error)
	// Delete removes the product and cascades to every listing that
	// references it.
	Delete(ctx context.Context, id int64) error
}

// ListingRepository handles persistence for Listings.
type ListingRepository interface {
	Create(ctx context.Context, l *entity.Listing) (*entity.Listing, error)
	FindByID(ctx context.Context, id int64) (*entity.Listing, error)
	FindAll(ctx context.Context) ([]entity.Listing, error)
	// Update persists title, description, price and quantity. The product
	// reference is out of this path's reach; use AttachProduct.
	Update(ctx context.Context, l *entity.Listing) (*entity.Listing, error)
	// AttachProduct binds a product to a listing that has none yet.
	// Fails with entity.ErrProductAttached when one is already bound and
	// entity.ErrNotFound when either id is unknown.
	AttachProduct(ctx context.Context, listingID, productID int64) (*entity.Listing, error)
}

// OrderRepository handles persistence for Orders and their lines.
type OrderRepository interface {
	// Place atomically creates the order with one line per request pair and
	// decrements each listing's quantity. All-or-nothing: any missing
	// listing (entity.ErrNotFound) or short stock
	// (entity.ErrInsufficientStock) rolls the whole placement back.
	// Lines are processed in the given order.
	Place(ctx context.Context, merchantID int64, lines []entity.LineRequest, creationDate time.Time) (*entity.Order, error)
	// FindByMerchant returns the merchant's own orders, lines included,
	// most recent first.
	FindByMerchant(ctx context.Context, merchantID int64) ([]entity.Order, error)
}

// Store bundles the per-entity repositories one backend provides.
type Store interface {
	Merchants() MerchantRepository
	Products() ProductRepository
	Listings() ListingRepository
	Orders() OrderRepository
}
