package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelloch/marketplace/internal/entity"
)

func newListing(t *testing.T, s *Store, title string, qty int) *entity.Listing {
	t.Helper()
	l, err := s.Listings().Create(context.Background(), &entity.Listing{
		Title:    title,
		Price:    decimal.RequireFromString("10.00"),
		Quantity: qty,
	})
	require.NoError(t, err)
	return l
}

func TestPlaceDecrementsEachListing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l1 := newListing(t, s, "listing one", 120)
	l2 := newListing(t, s, "listing two", 2)

	order, err := s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: l1.ID, Quantity: 15},
		{ListingID: l2.ID, Quantity: 1},
	}, time.Now())

	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 15, order.Lines[0].Quantity)
	assert.Equal(t, 1, order.Lines[1].Quantity)
	for _, line := range order.Lines {
		assert.Equal(t, order.ID, line.OrderID)
	}

	got1, err := s.Listings().FindByID(ctx, l1.ID)
	require.NoError(t, err)
	assert.Equal(t, 105, got1.Quantity)

	got2, err := s.Listings().FindByID(ctx, l2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got2.Quantity)
}

func TestPlaceInsufficientStockLeavesListingUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "scarce", 2)

	_, err := s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: l.ID, Quantity: 3},
	}, time.Now())

	assert.ErrorIs(t, err, entity.ErrInsufficientStock)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestPlaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	plenty := newListing(t, s, "plenty", 100)
	scarce := newListing(t, s, "scarce", 1)

	// Second line fails, so the first line's decrement must not stick and
	// no order may survive.
	_, err := s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: plenty.ID, Quantity: 10},
		{ListingID: scarce.ID, Quantity: 5},
	}, time.Now())

	assert.ErrorIs(t, err, entity.ErrInsufficientStock)

	got, err := s.Listings().FindByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Quantity)

	orders, err := s.Orders().FindByMerchant(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceUnknownListingFailsWhole(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "known", 10)

	_, err := s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: l.ID, Quantity: 1},
		{ListingID: 999, Quantity: 1},
	}, time.Now())

	assert.ErrorIs(t, err, entity.ErrNotFound)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
}

func TestPlaceLinesSharingAListing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "shared", 10)

	// 6 + 5 exceeds 10 even though each line alone fits.
	_, err := s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: l.ID, Quantity: 6},
		{ListingID: l.ID, Quantity: 5},
	}, time.Now())

	assert.ErrorIs(t, err, entity.ErrInsufficientStock)

	// 6 + 4 fits exactly.
	_, err = s.Orders().Place(ctx, 1, []entity.LineRequest{
		{ListingID: l.ID, Quantity: 6},
		{ListingID: l.ID, Quantity: 4},
	}, time.Now())
	require.NoError(t, err)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestConcurrentPlacementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "contended", 10)

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Orders().Place(ctx, 1, []entity.LineRequest{
				{ListingID: l.ID, Quantity: 1},
			}, time.Now())
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
		} else {
			assert.ErrorIs(t, err, entity.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, placed)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestDeleteProductCascadesToListings(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p, err := s.Products().Create(ctx, "iPhone X")
	require.NoError(t, err)

	attached := newListing(t, s, "attached", 5)
	_, err = s.Listings().AttachProduct(ctx, attached.ID, p.ID)
	require.NoError(t, err)

	standalone := newListing(t, s, "standalone", 5)

	require.NoError(t, s.Products().Delete(ctx, p.ID))

	_, err = s.Listings().FindByID(ctx, attached.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = s.Listings().FindByID(ctx, standalone.ID)
	assert.NoError(t, err)
}

func TestAttachProductRejectsSecondAttach(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p1, err := s.Products().Create(ctx, "first")
	require.NoError(t, err)
	p2, err := s.Products().Create(ctx, "second")
	require.NoError(t, err)

	l := newListing(t, s, "offer", 1)

	_, err = s.Listings().AttachProduct(ctx, l.ID, p1.ID)
	require.NoError(t, err)

	_, err = s.Listings().AttachProduct(ctx, l.ID, p2.ID)
	assert.ErrorIs(t, err, entity.ErrProductAttached)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProductID)
	assert.Equal(t, p1.ID, *got.ProductID)
}

func TestAttachProductUnknownProduct(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "offer", 1)

	_, err := s.Listings().AttachProduct(ctx, l.ID, 42)

	assert.ErrorIs(t, err, entity.ErrValidation)

	got, err := s.Listings().FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProductID)
}

func TestProductNameUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Products().Create(ctx, "iPhone X")
	require.NoError(t, err)

	_, err = s.Products().Create(ctx, "iPhone X")
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestUpdateListingDoesNotTouchProduct(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p, err := s.Products().Create(ctx, "cased")
	require.NoError(t, err)

	l := newListing(t, s, "offer", 3)
	_, err = s.Listings().AttachProduct(ctx, l.ID, p.ID)
	require.NoError(t, err)

	updated, err := s.Listings().Update(ctx, &entity.Listing{
		ID:       l.ID,
		Title:    "renamed offer",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed offer", updated.Title)
	require.NotNil(t, updated.ProductID)
	assert.Equal(t, p.ID, *updated.ProductID)
}

func TestFindByMerchantScopesOrders(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	l := newListing(t, s, "offer", 100)

	_, err := s.Orders().Place(ctx, 1, []entity.LineRequest{{ListingID: l.ID, Quantity: 1}}, time.Now())
	require.NoError(t, err)
	_, err = s.Orders().Place(ctx, 2, []entity.LineRequest{{ListingID: l.ID, Quantity: 2}}, time.Now())
	require.NoError(t, err)

	mine, err := s.Orders().FindByMerchant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].MerchantID)
}
