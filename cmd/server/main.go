package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pelloch/marketplace/internal/config"
	delivery "github.com/pelloch/marketplace/internal/delivery/http"
	"github.com/pelloch/marketplace/internal/messaging"
	"github.com/pelloch/marketplace/internal/messaging/kafka"
	"github.com/pelloch/marketplace/internal/repository"
	"github.com/pelloch/marketplace/internal/repository/memory"
	"github.com/pelloch/marketplace/internal/repository/postgres"
	"github.com/pelloch/marketplace/internal/service"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.SlogLevel())

	// --- Store ---
	var store repository.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := postgres.InitStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to init database", "err", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.NewStore()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.SeedDemoData {
		if err := seedDemoMerchant(ctx, store); err != nil {
			slog.Error("Failed to seed demo data", "err", err)
			os.Exit(1)
		}
	}

	// --- Messaging ---
	var publisher messaging.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = kafka.NewPublisher(brokers)
		slog.Info("Kafka publisher enabled", "brokers", brokers, "topic", cfg.OrderTopic)
	}

	// --- Services ---
	catalogSvc := service.NewCatalogService(store.Products(), store.Listings())
	orderSvc := service.NewOrderService(store.Orders(), publisher, cfg.OrderTopic)

	// --- HTTP API ---
	handler := delivery.NewHandler(catalogSvc, orderSvc, store.Merchants())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: delivery.EnableCORS(handler.Routes()),
	}

	go func() {
		slog.Info("🚀 HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")
	httpServer.Shutdown(context.Background())
}

// seedDemoMerchant creates one merchant on an empty store so the API is
// usable out of the box. The token is logged once at startup.
func seedDemoMerchant(ctx context.Context, store repository.Store) error {
	count, err := store.Merchants().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	m, err := store.Merchants().Create(ctx, "demo")
	if err != nil {
		return err
	}
	slog.Info("Seeded demo merchant", "username", m.Username, "token", m.Token)
	return nil
}
