package main

import (
	"log"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-api/cache"
	"github.com/shopverse/storefront-api/config"
	"github.com/shopverse/storefront-api/middleware"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/routes"
	cartService "github.com/shopverse/storefront-api/services/cart"
	"github.com/shopverse/storefront-api/services/checkout"
	"github.com/shopverse/storefront-api/services/payment"
	"github.com/shopverse/storefront-api/store/gormstore"
	"github.com/shopverse/storefront-api/telemetry"
)

func main() {
	_ = godotenv.Load()
	telemetry.InitLogger()

	cfg := config.Load()
	db := initDatabase(cfg)

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentEvent{},
	); err != nil {
		log.Fatalf("automigrate failed: %v", err)
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, "storefront-api")
	} else {
		slog.Warn("REDIS_ADDR not set, using in-process payment event cache")
		c = cache.NewMemoryCache("storefront-api")
	}

	stores := gormstore.New(db)
	provider := payment.NewHTTPProvider(cfg.ProviderEndpoint, cfg.ProviderSecretKey, cfg.ProviderTimeout)

	carts := cartService.NewService(stores)
	orders := checkout.NewService(stores)
	payments := payment.NewService(stores, provider, c, payment.Config{
		WebhookSecret:      cfg.WebhookSecret,
		Currency:           cfg.Currency,
		SignatureTolerance: 5 * time.Minute,
	})

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Products:    stores.Products(),
		Cart:        carts,
		Checkout:    orders,
		Payments:    payments,
		JWTSecret:   cfg.JWTSecret,
		AdminAPIKey: cfg.AdminAPIKey,
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// initDatabase opens the GORM connection. TranslateError is required so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// payment event dedupe relies on.
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}
