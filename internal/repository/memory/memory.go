// Package memory implements repository.Store with in-process maps. It backs
// local development when no database is configured, and the test suites.
// The single mutex gives the same atomicity the Postgres store gets from
// row locks: an order placement holds it across check, line creation and
// decrement.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pelloch/marketplace/internal/entity"
	"github.com/pelloch/marketplace/internal/repository"
)

type Store struct {
	mu sync.Mutex

	merchants map[int64]*entity.Merchant
	products  map[int64]*entity.Product
	listings  map[int64]*entity.Listing
	orders    map[int64]*entity.Order

	nextMerchantID int64
	nextProductID  int64
	nextListingID  int64
	nextOrderID    int64
	nextLineID     int64
}

func NewStore() *Store {
	return &Store{
		merchants: make(map[int64]*entity.Merchant),
		products:  make(map[int64]*entity.Product),
		listings:  make(map[int64]*entity.Listing),
		orders:    make(map[int64]*entity.Order),
	}
}

func (s *Store) Merchants() repository.MerchantRepository { return (*merchantRepo)(s) }
func (s *Store) Products() repository.ProductRepository   { return (*productRepo)(s) }
func (s *Store) Listings() repository.ListingRepository   { return (*listingRepo)(s) }
func (s *Store) Orders() repository.OrderRepository       { return (*orderRepo)(s) }

// --- merchants ---

type merchantRepo Store

func (r *merchantRepo) Create(_ context.Context, username string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.merchants {
		if m.Username == username {
			return nil, entity.Validationf("merchant username %q already exists", username)
		}
	}
	r.nextMerchantID++
	m := &entity.Merchant{
		ID:       r.nextMerchantID,
		Username: username,
		Token:    uuid.New().String(),
	}
	r.merchants[m.ID] = m
	cp := *m
	return &cp, nil
}

func (r *merchantRepo) FindByToken(_ context.Context, token string) (*entity.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.merchants {
		if m.Token == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, entity.ErrUnauthorized
}

func (r *merchantRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.merchants), nil
}

// --- products ---

type productRepo Store

func (r *productRepo) Create(_ context.Context, name string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Name == name {
			return nil, entity.Validationf("product name %q already exists", name)
		}
	}
	r.nextProductID++
	p := &entity.Product{ID: r.nextProductID, Name: name}
	r.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *productRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, entity.NotFoundf("product %d", id)
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) FindAll(_ context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *productRepo) UpdateName(_ context.Context, id int64, name string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, entity.NotFoundf("product %d", id)
	}
	for _, other := range r.products {
		if other.ID != id && other.Name == name {
			return nil, entity.Validationf("product name %q already exists", name)
		}
	}
	p.Name = name
	cp := *p
	return &cp, nil
}

func (r *productRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return entity.NotFoundf("product %d", id)
	}
	delete(r.products, id)

	// Cascade: listings referencing the product go with it.
	for lid, l := range r.listings {
		if l.ProductID != nil && *l.ProductID == id {
			delete(r.listings, lid)
		}
	}
	return nil
}

// --- listings ---

type listingRepo Store

func (r *listingRepo) Create(_ context.Context, l *entity.Listing) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextListingID++
	stored := *l
	stored.ID = r.nextListingID
	stored.ProductID = nil
	r.listings[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *listingRepo) FindByID(_ context.Context, id int64) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, entity.NotFoundf("listing %d", id)
	}
	cp := *l
	return &cp, nil
}

func (r *listingRepo) FindAll(_ context.Context) ([]entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *listingRepo) Update(_ context.Context, l *entity.Listing) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[l.ID]
	if !ok {
		return nil, entity.NotFoundf("listing %d", l.ID)
	}
	stored.Title = l.Title
	stored.Description = l.Description
	stored.Price = l.Price
	stored.Quantity = l.Quantity
	cp := *stored
	return &cp, nil
}

func (r *listingRepo) AttachProduct(_ context.Context, listingID, productID int64) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[listingID]
	if !ok {
		return nil, entity.NotFoundf("listing %d", listingID)
	}
	if l.ProductID != nil {
		return nil, entity.ErrProductAttached
	}
	if _, ok := r.products[productID]; !ok {
		return nil, entity.Validationf("product %d does not exist", productID)
	}
	pid := productID
	l.ProductID = &pid
	cp := *l
	return &cp, nil
}

// --- orders ---

type orderRepo Store

func (r *orderRepo) Place(_ context.Context, merchantID int64, lines []entity.LineRequest, creationDate time.Time) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate every line before mutating anything, in request order, so a
	// failed placement leaves all listings untouched.
	remaining := make(map[int64]int)
	for _, line := range lines {
		l, ok := r.listings[line.ListingID]
		if !ok {
			return nil, entity.NotFoundf("listing %d", line.ListingID)
		}
		if _, seen := remaining[line.ListingID]; !seen {
			remaining[line.ListingID] = l.Quantity
		}
		if line.Quantity > remaining[line.ListingID] {
			return nil, entity.ErrInsufficientStock
		}
		remaining[line.ListingID] -= line.Quantity
	}

	r.nextOrderID++
	order := &entity.Order{
		ID:           r.nextOrderID,
		MerchantID:   merchantID,
		CreationDate: creationDate,
	}
	for _, line := range lines {
		r.nextLineID++
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:        r.nextLineID,
			OrderID:   order.ID,
			ListingID: line.ListingID,
			Quantity:  line.Quantity,
		})
		r.listings[line.ListingID].Quantity -= line.Quantity
	}
	r.orders[order.ID] = order

	cp := *order
	cp.Lines = append([]entity.OrderLine(nil), order.Lines...)
	return &cp, nil
}

func (r *orderRepo) FindByMerchant(_ context.Context, merchantID int64) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Order
	for _, o := range r.orders {
		if o.MerchantID != merchantID {
			continue
		}
		cp := *o
		cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreationDate.Equal(out[j].CreationDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreationDate.After(out[j].CreationDate)
	})
	return out, nil
}
