package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/cart"
	"github.com/velstore/storefront/internal/catalog"
	"github.com/velstore/storefront/internal/checkout"
	"github.com/velstore/storefront/internal/config"
	"github.com/velstore/storefront/internal/httpapi"
	"github.com/velstore/storefront/internal/inventory"
	"github.com/velstore/storefront/internal/orders"
	"github.com/velstore/storefront/internal/outbox"
	"github.com/velstore/storefront/internal/payment"
	"github.com/velstore/storefront/internal/shipping"
	"github.com/velstore/storefront/internal/wishlist"
)

const defaultStockLevel = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Catalog (sqlite)
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog database ready at %s", cfg.CatalogDBPath)

	// Carts and wishlists (mongo)
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	cartRepo := cart.NewMongoRepository(mongoDB)
	wishRepo := wishlist.NewMongoRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	cartService := cart.NewService(cartRepo, cart.NewRedisCache(redisClient), catalogRepo)
	wishService := wishlist.NewService(wishRepo, cartService)

	// Orders (postgres)
	ordersCreds := &orders.Credentials{
		Host:              cfg.OrdersDBHost,
		Port:              cfg.OrdersDBPort,
		User:              cfg.OrdersDBUser,
		Password:          cfg.OrdersDBPassword,
		DBName:            cfg.OrdersDBName,
		MigrationsDirPath: cfg.OrdersMigrationsPath,
	}
	ordersRepo, err := orders.NewPostgresRepository(ordersCreds)
	if err != nil {
		log.Fatalf("Failed to connect to orders database: %v", err)
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(ordersCreds); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}
	log.Println("Connected to postgres!")

	// Inventory, seeded from the catalog
	invStore := inventory.NewStore()
	defer invStore.Close()
	products, err := catalogRepo.GetAllProducts(ctx)
	if err != nil {
		log.Fatalf("Failed to load products for inventory seed: %v", err)
	}
	for _, p := range products {
		invStore.SetStock(p.ID, defaultStockLevel)
	}
	log.Printf("Seeded inventory for %d products", len(products))

	zones := shipping.DefaultTable()
	processor := payment.NewSimulator(payment.RandomOutcome{})

	checkoutService := checkout.NewService(
		cartService,
		catalogRepo,
		invStore,
		processor,
		ordersRepo,
		zones,
		decimal.NewFromFloat(cfg.FreeShippingThreshold),
		cfg.Currency,
	)

	// Outbox relay
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	poller := outbox.NewPoller(ordersRepo, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	handlers := httpapi.Handlers{
		Products: httpapi.NewProductHandler(catalogRepo, zones, cfg.RequestTimeout),
		Cart:     httpapi.NewCartHandler(cartService, cfg.RequestTimeout),
		Wishlist: httpapi.NewWishlistHandler(wishService, cfg.RequestTimeout),
		Checkout: httpapi.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Orders:   httpapi.NewOrdersHandler(ordersRepo, cfg.RequestTimeout),
		Admin:    httpapi.NewAdminHandler(catalogRepo, cfg.RequestTimeout),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpapi.NewRouter(handlers, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
