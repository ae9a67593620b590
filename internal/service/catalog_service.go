package service

import (
	"context"

	"github.com/pelloch/marketplace/internal/entity"
	"github.com/pelloch/marketplace/internal/repository"
)

// CatalogService covers product and listing management.
type CatalogService struct {
	products repository.ProductRepository
	listings repository.ListingRepository
}

func NewCatalogService(products repository.ProductRepository, listings repository.ListingRepository) *CatalogService {
	return &CatalogService{products: products, listings: listings}
}

func (s *CatalogService) CreateProduct(ctx context.Context, name string) (*entity.Product, error) {
	if err := entity.ValidateProductName(name); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, name)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, name string) (*entity.Product, error) {
	if err := entity.ValidateProductName(name); err != nil {
		return nil, err
	}
	return s.products.UpdateName(ctx, id, name)
}

// DeleteProduct removes the product; the store cascades the delete to every
// listing referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// CreateListing creates a listing without a product. AttachProduct binds
// one later.
func (s *CatalogService) CreateListing(ctx context.Context, l *entity.Listing) (*entity.Listing, error) {
	if err := entity.ValidateListing(l); err != nil {
		return nil, err
	}
	return s.listings.Create(ctx, l)
}

func (s *CatalogService) GetListing(ctx context.Context, id int64) (*entity.Listing, error) {
	return s.listings.FindByID(ctx, id)
}

func (s *CatalogService) ListListings(ctx context.Context) ([]entity.Listing, error) {
	return s.listings.FindAll(ctx)
}

// UpdateListing updates every field except the product reference.
func (s *CatalogService) UpdateListing(ctx context.Context, l *entity.Listing) (*entity.Listing, error) {
	if err := entity.ValidateListing(l); err != nil {
		return nil, err
	}
	return s.listings.Update(ctx, l)
}

// AttachProduct binds a product to a currently-unattached listing.
func (s *CatalogService) AttachProduct(ctx context.Context, listingID, productID int64) (*entity.Listing, error) {
	return s.listings.AttachProduct(ctx, listingID, productID)
}
