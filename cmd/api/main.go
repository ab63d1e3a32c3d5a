package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalog-proxy-api/internal/cache"
	"catalog-proxy-api/internal/config"
	"catalog-proxy-api/internal/handler"
	"catalog-proxy-api/internal/middleware"
	"catalog-proxy-api/internal/repository"
	"catalog-proxy-api/internal/roblox"
	"catalog-proxy-api/internal/rolimons"
	"catalog-proxy-api/internal/router"
	"catalog-proxy-api/internal/service"
	"catalog-proxy-api/internal/session"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting catalog-proxy-api...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize call-log repository (optional)
	var callLogs repository.CallLogRepository
	if cfg.CallLog.Enabled {
		sqliteRepo, err := repository.NewSQLiteCallLogRepository(cfg.CallLog.Path)
		if err != nil {
			log.Printf("Warning: call-log initialization failed: %v", err)
		} else {
			defer sqliteRepo.Close()
			callLogs = sqliteRepo
			log.Println("SQLite call-log repository initialized")
		}
	}

	// Initialize session store
	sessionStore := session.NewStore(cfg.Session.CookieFile, cfg.Session.Token)
	if cfg.Session.LoginEnabled {
		if cfg.Session.BotUsername == "" || cfg.Session.BotPassword == "" {
			log.Println("Warning: SESSION_LOGIN_ENABLED set without BOT_USERNAME/BOT_PASSWORD; login flow disabled")
		} else {
			sessionStore.SetLogin(session.NewLoginFunc(
				cfg.Session.BotUsername, cfg.Session.BotPassword, cfg.Upstream.Timeout))
			log.Println("Legacy login flow enabled")
		}
	}

	// Initialize upstream clients
	robloxClient := roblox.NewClient(sessionStore, callLogs, roblox.Options{
		BaseURL:       cfg.Upstream.CatalogBaseURL,
		Timeout:       cfg.Upstream.Timeout,
		RetryEnabled:  cfg.Upstream.RetryEnabled,
		RetryAttempts: cfg.Upstream.RetryAttempts,
		RetryBaseWait: cfg.Upstream.RetryBaseWait,
	})
	if cfg.Upstream.RetryEnabled {
		log.Printf("Transport retry enabled (%d attempts); auth retry disabled", cfg.Upstream.RetryAttempts)
	}

	priceClient := rolimons.NewClient(cfg.PriceIndex.URL, cfg.Upstream.Timeout, callLogs)
	priceCache := rolimons.NewCache(priceClient, cfg.PriceIndex.TTL)

	// Initialize bundle-resolution cache
	var bundleCache cache.Cache
	cacheType := cfg.Cache.Type
	switch cacheType {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			bundleCache = cache.NewMemoryCache()
			cacheType = "memory"
		} else {
			bundleCache = cache.NewRedisCache(redisClient, "catalog-proxy:")
			log.Println("Redis bundle cache initialized")
		}
	case "none":
		log.Println("Bundle cache disabled")
	default:
		bundleCache = cache.NewMemoryCache()
		cacheType = "memory"
	}

	// Initialize services
	catalogService := service.NewCatalogService(robloxClient, priceCache, bundleCache, cfg.Cache.TTL)

	var cleanup *service.CleanupScheduler
	if callLogs != nil {
		cleanup = service.NewCleanupScheduler(callLogs, service.CleanupConfig{
			Retention:       cfg.CallLog.Retention,
			CleanupInterval: cfg.CallLog.CleanupInterval,
		})
		cleanup.Start()
	}

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	adminHandler := handler.NewAdminHandler(callLogs, priceCache, cacheType)
	logHandler := handler.NewLogHandler(callLogs)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		CatalogHandler: catalogHandler,
		AdminHandler:   adminHandler,
		LogHandler:     logHandler,
		AdminAuth:      middleware.NewAdminAuth(cfg.App.AdminKey),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if cleanup != nil {
		cleanup.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if closer, ok := bundleCache.(interface{ Close() error }); ok && closer != nil {
		_ = closer.Close()
	}

	log.Println("Server stopped")
}
