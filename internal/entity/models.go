package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant represents a seller. The token is the merchant's API credential;
// requests carrying it act on behalf of this merchant.
type Merchant struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Token    string `db:"token" json:"-"`
}

// Product is a catalog entry. Listings may reference it.
type Product struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Listing is a sellable offer, optionally tied to a Product.
type Listing struct {
	ID          int64           `db:"id" json:"id"`
	ProductID   *int64          `db:"product_id" json:"product"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
}

// Order is a purchase event for one merchant. Immutable after creation.
type Order struct {
	ID           int64       `db:"id" json:"id"`
	MerchantID   int64       `db:"merchant_id" json:"merchant"`
	CreationDate time.Time   `db:"creation_date" json:"creation_date"`
	Lines        []OrderLine `db:"-" json:"lines,omitempty"`
}

// OrderLine is one (listing, quantity) commitment within an order.
// Lines exist only as part of their order.
type OrderLine struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order"`
	ListingID int64 `db:"listing_id" json:"listing"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// LineRequest is one requested (listing, quantity) pair of a batch order.
type LineRequest struct {
	ListingID int64
	Quantity  int
}

// OrderPlaced is emitted after an order commits, for downstream consumers.
type OrderPlaced struct {
	OrderID    int64       `json:"order_id"`
	MerchantID int64       `json:"merchant_id"`
	Lines      []OrderLine `json:"lines"`
	PlacedAt   time.Time   `json:"placed_at"`
}
