package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/cart"
	"github.com/wichananm65/catalog-cart-backend/internal/config"
	"github.com/wichananm65/catalog-cart-backend/internal/database"
	"github.com/wichananm65/catalog-cart-backend/internal/logger"
	"github.com/wichananm65/catalog-cart-backend/internal/product"
	"github.com/wichananm65/catalog-cart-backend/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warnf("Error loading .env file (but continuing): %v", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeStorage := mustBuildServices(ctx, cfg, log)
	defer closeStorage()

	app := server.New(cfg, log, svc)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Warn("Shutdown signal received...")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
		log.Info("Server shut down gracefully.")
	}
}

func mustBuildServices(ctx context.Context, cfg config.Config, log *logrus.Logger) (server.Services, func()) {
	var (
		products product.Repository
		carts    cart.Repository
		closeFn  = func() {}
	)

	if cfg.UsePostgres() {
		db := mustOpenDB(ctx, cfg.DatabaseURL, log)
		closeFn = func() { _ = db.Close() }
		products = product.NewPostgresRepository(db, log)
		carts = cart.NewPostgresRepository(db, log)
		log.Info("Using postgres storage")
	} else {
		memProducts := product.NewInMemoryRepository(nil)
		products = memProducts
		carts = cart.NewInMemoryRepository(memProducts)
		log.Info("Using in-memory storage")
	}

	return server.Services{
		Products: product.NewService(products, cfg.PerPage, log),
		Carts:    cart.NewService(carts, cart.NewItemFactory(carts, products), log),
	}, closeFn
}

func mustOpenDB(ctx context.Context, url string, log *logrus.Logger) *sql.DB {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(openCtx, url)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(openCtx, db); err != nil {
		_ = db.Close()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database connection established.")
	return db
}
