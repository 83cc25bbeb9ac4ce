package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/config"
	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/inventory"
	"github.com/mserebryaakov/aggregator-storefront/internal/order"
	"github.com/mserebryaakov/aggregator-storefront/internal/review"
	"github.com/mserebryaakov/aggregator-storefront/internal/schema"
	"github.com/mserebryaakov/aggregator-storefront/internal/user"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/mserebryaakov/aggregator-storefront/internal/wishlist"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/mserebryaakov/aggregator-storefront/pkg/logger"
	"github.com/mserebryaakov/aggregator-storefront/pkg/middleware"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.NewLogger("debug", &logger.MainLogHook{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configs: %v", err)
	}

	env, err := config.GetEnvironment()
	if err != nil {
		log.Fatal(err.Error())
	}

	decimal.MarshalJSONWithoutQuotes = true

	catalogLog := logger.NewLogger(env.LogLvl, &catalog.CatalogLogHook{})
	cartLog := logger.NewLogger(env.LogLvl, &cart.CartLogHook{})
	voucherLog := logger.NewLogger(env.LogLvl, &voucher.VoucherLogHook{})
	orderLog := logger.NewLogger(env.LogLvl, &order.OrderLogHook{})
	inventoryLog := logger.NewLogger(env.LogLvl, &inventory.InventoryLogHook{})
	reviewLog := logger.NewLogger(env.LogLvl, &review.ReviewLogHook{})
	userLog := logger.NewLogger(env.LogLvl, &user.UserLogHook{})
	wishlistLog := logger.NewLogger(env.LogLvl, &wishlist.WishlistLogHook{})

	postgresConfig := postgres.Config{
		Host:            env.PgHost,
		Port:            env.PgPort,
		Username:        env.PgUser,
		Password:        env.PgPassword,
		DBName:          env.PgDbName,
		SSLMode:         env.SSLMode,
		TimeZone:        env.TimeZone,
		MaxOpenConns:    cfg.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Pool.MaxIdleConns,
		ConnMaxIdleTime: cfg.Pool.ConnMaxIdleTime,
		HealthInterval:  cfg.Pool.HealthInterval,

		StatementTimeout: cfg.Pool.StatementTimeout,
	}

	pool, err := postgres.NewPool(postgresConfig, log)
	if err != nil {
		log.Fatalf("failed connection to db: %v", err)
	}

	if err := schema.RunSchemaMigration(pool.DB(context.Background())); err != nil {
		log.Fatalf("failed schema migration: %v", err)
	}

	issuer := auth.NewIssuer(env.JWTSecret, cfg.Auth.TokenTTL)

	catalogService := catalog.NewService(catalog.NewStorage(pool), catalogLog)
	cartService := cart.NewService(cart.NewStorage(pool), cartLog)

	voucherStorage := voucher.NewStorage(pool)
	voucherService := voucher.NewService(voucherStorage, cartService, voucher.Settings{
		PercentageCap: decimal.NewFromFloat(cfg.Vouchers.PercentageCap),
		WelcomeCode:   cfg.Vouchers.WelcomeCode,
		WelcomeAmount: decimal.NewFromFloat(cfg.Vouchers.WelcomeAmount),
		WelcomeMin:    decimal.NewFromFloat(cfg.Vouchers.WelcomeMin),
		WelcomeMonths: cfg.Vouchers.WelcomeMonths,
	}, voucherLog)

	orderService := order.NewService(order.NewStorage(pool), cartService, voucherStorage,
		decimal.NewFromFloat(cfg.Vouchers.PercentageCap), orderLog)
	inventoryService := inventory.NewService(inventory.NewStorage(pool), inventoryLog)
	reviewService := review.NewService(review.NewStorage(pool), reviewLog)
	wishlistService := wishlist.NewService(wishlist.NewStorage(pool), wishlistLog)
	userService := user.NewService(user.NewStorage(pool), issuer, user.Settings{
		WelcomeCode:  cfg.Vouchers.WelcomeCode,
		MaxRetries:   cfg.Login.MaxRetries,
		RetryBackoff: cfg.Login.RetryBackoff,
	}, userLog)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	err = schema.Seed(seedCtx, voucherService, userService, schema.AdminAccount{
		Name:     "Administrator",
		Email:    env.AdminEmail,
		Password: env.AdminPassword,
	}, log)
	cancelSeed()
	if err != nil {
		log.Fatalf("failed seeding: %v", err)
	}

	rateLimit, err := middleware.RateLimit(cfg.Limiter.Rate)
	if err != nil {
		log.Fatalf("failed to configure rate limiter: %v", err)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.Server.AllowedOrigins),
		rateLimit,
		middleware.Detach(),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/")
	users := router.Group("/", issuer.Middleware(log, auth.RoleUser, auth.RoleAdmin))
	admin := router.Group("/admin", issuer.Middleware(log, auth.RoleAdmin))

	catalog.NewHandler(catalogService, catalogLog).Register(public, admin)
	cart.NewHandler(cartService, cartLog).Register(users)
	voucher.NewHandler(voucherService, voucherLog).Register(users, admin)
	order.NewHandler(orderService, orderLog).Register(users, admin)
	inventory.NewHandler(inventoryService, inventoryLog).Register(admin)
	review.NewHandler(reviewService, reviewLog).Register(public, users, admin)
	wishlist.NewHandler(wishlistService, wishlistLog).Register(users)
	user.NewHandler(userService, userLog).Register(public, users, admin)

	server := httpserver.New(cfg.Server.Port, router)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Failed running server %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	oscall := <-interrupt
	log.Infof("Shutdown server, %s", oscall)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Error occured on server shutting down: %v", err)
	}

	if err := pool.Close(); err != nil {
		log.Errorf("Error occured on closing db pool: %v", err)
	}
}
