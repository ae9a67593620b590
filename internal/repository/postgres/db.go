package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pelloch/marketplace/internal/repository"
)

// Store is the Postgres-backed repository.Store.
type Store struct {
	db *sqlx.DB

	merchants *merchantRepository
	products  *productRepository
	listings  *listingRepository
	orders    *orderRepository
}

// InitStore connects to Postgres, runs the schema migration and returns the
// assembled store.
func InitStore(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return &Store{
		db:        db,
		merchants: &merchantRepository{db: db},
		products:  &productRepository{db: db},
		listings:  &listingRepository{db: db},
		orders:    &orderRepository{db: db},
	}, nil
}

func (s *Store) Merchants() repository.MerchantRepository { return s.merchants }
func (s *Store) Products() repository.ProductRepository   { return s.products }
func (s *Store) Listings() repository.ListingRepository   { return s.listings }
func (s *Store) Orders() repository.OrderRepository       { return s.orders }

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

func migrateDB(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS merchants (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			token TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS listings (
			id SERIAL PRIMARY KEY,
			product_id INT REFERENCES products(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(8, 2) NOT NULL CHECK (price >= 0),
			quantity INT NOT NULL DEFAULT 0 CHECK (quantity >= 0)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			merchant_id INT NOT NULL REFERENCES merchants(id) ON DELETE CASCADE,
			creation_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			id SERIAL PRIMARY KEY,
			order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			listing_id INT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			quantity INT NOT NULL CHECK (quantity > 0)
		);
	`)
	return err
}
