// File: basketly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basketly/config"
	"basketly/database"
	slotRepo "basketly/database/repository/slot"
	"basketly/handlers"
	"basketly/middleware"
	"basketly/routes"
	"basketly/services/delivery"
	"basketly/services/storage"
	"basketly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	utils.StartHealthMonitor(ctx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetSelectionClient()},
		database.MongoClient,
	)

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	if err := slots.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to ensure slot indexes: %v", err)
	}
	catalog := slotRepo.NewCachedCatalog(slots, utils.GetCacheClient(), config.AppConfig.SlotCatalogCacheTTL, logger)

	// services.
	loc := config.Location()
	selectionClient := utils.GetSelectionClient()
	stores := func(sessionID string) delivery.SelectionStore {
		return storage.NewRedisSelectionStore(selectionClient, sessionID, config.AppConfig.SelectionTTL)
	}
	registry := delivery.NewRegistry(ctx, catalog, stores, delivery.RegistryConfig{
		Engine: delivery.EngineConfig{
			ReevaluationInterval: config.AppConfig.SlotReevaluationInterval,
			FetchTimeout:         config.AppConfig.CatalogFetchTimeout,
			InvoiceFee:           config.AppConfig.InvoiceFee,
			Clock:                func() time.Time { return time.Now().In(loc) },
		},
		IdleTimeout: config.AppConfig.SessionIdleTimeout,
	}, logger)
	if err := registry.Start(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlers.NewHandlerBundle(handlers.NewCartHandler(registry)))

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}
	// cancelling the base context ends every engine, which closes open slot streams
	srv.RegisterOnShutdown(stop)

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	registry.Stop()
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
