package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storefront-cache/internal/adapter"
	"storefront-cache/internal/cache"
	"storefront-cache/internal/config"
	"storefront-cache/internal/database"
	"storefront-cache/internal/handler"
	"storefront-cache/internal/logger"
	"storefront-cache/internal/middleware"
	"storefront-cache/internal/repository"
	"storefront-cache/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Connect to database
	db, err := database.NewSQLXOracleDB(startCtx, cfg.GetDSN(), database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize sources of truth
	productSource := repository.NewProductDatabaseAdapter(db)
	categorySource := repository.NewCategoryDatabaseAdapter(db)
	searchSource := repository.NewSearchDatabaseAdapter(db)
	dealSource := repository.NewDealDatabaseAdapter(db)
	userSource := repository.NewUserDatabaseAdapter(db)

	// Initialize Redis Client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))

	kv := cache.NewKVClient(adapter.NewRedisCacheAdapter(redisClient), cache.KVOptions{
		OpTimeout:       cfg.Redis.OpTimeout,
		BreakerFailures: cfg.Cache.BreakerFailures,
		BreakerTimeout:  cfg.Cache.BreakerTimeout,
		Logger:          appLogger.Named("kv"),
	})
	if err := kv.Connect(startCtx); err != nil {
		appLogger.Fatal("Cache store is not reachable", zap.Error(err))
	}

	local, err := cache.NewLocalCache(cache.LocalOptions{
		Capacity:     cfg.Cache.LocalCapacity,
		SingleFlight: cfg.Cache.SingleFlight,
		Logger:       appLogger.Named("local"),
	})
	if err != nil {
		appLogger.Fatal("Failed to create local cache", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stats, err := cache.NewTracker(registry)
	if err != nil {
		appLogger.Fatal("Failed to register cache metrics", zap.Error(err))
	}

	hybrid := cache.NewHybrid(kv, local, stats, appLogger.Named("cache"))
	tiers := cache.TiersFromConfig(cfg.Cache)
	appLogger.Info("Cache initialized",
		zap.Int("localCapacity", cfg.Cache.LocalCapacity),
		zap.Bool("singleFlight", cfg.Cache.SingleFlight),
		zap.Duration("shortTTL", tiers.Short),
		zap.Duration("veryLongTTL", tiers.VeryLong))

	// Initialize services
	productService := service.NewProductCacheService(hybrid, productSource, tiers)
	categoryService := service.NewCategoryCacheService(hybrid, categorySource, tiers)
	searchService := service.NewSearchCacheService(hybrid, searchSource, tiers)
	dealsService := service.NewHomeDealsCacheService(hybrid, dealSource, tiers, nil)
	userService := service.NewUserCacheService(hybrid, userSource, tiers)
	invalidationService := service.NewInvalidationService(
		productService, categoryService, searchService, dealsService, userService,
		appLogger.Named("invalidation"),
	)
	monitor := cache.NewMonitor(hybrid, appLogger.Named("monitor"))

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	handler.RegisterRoutes(app, handler.Handlers{
		Storefront: handler.NewStorefrontHandler(productService, categoryService, searchService, dealsService),
		Admin:      handler.NewCacheAdminHandler(monitor, hybrid, invalidationService),
		Health:     handler.NewHealthHandler(kv),
	}, cfg.Admin.JWTSecret)

	if cfg.Admin.JWTSecret == "" {
		appLogger.Warn("ADMIN_JWT_SECRET is not set; admin cache API is disabled")
	}

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := kv.Close(); err != nil {
		appLogger.Warn("Failed to close cache store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		appLogger.Warn("Failed to close database", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
