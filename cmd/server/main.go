// Package main is the entry point for the stockalloc API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"stockalloc/internal/domain/allocation"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/domain/catalogs/item"
	"stockalloc/internal/domain/catalogs/warehouse"
	"stockalloc/internal/infrastructure/auth"
	v1 "stockalloc/internal/infrastructure/http/v1"
	"stockalloc/internal/infrastructure/rules"
	"stockalloc/internal/infrastructure/storage/postgres"
	"stockalloc/internal/infrastructure/storage/postgres/catalog_repo"
	"stockalloc/internal/infrastructure/storage/postgres/pricing_repo"
	"stockalloc/internal/infrastructure/storage/postgres/register_repo"
	"stockalloc/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockalloc server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	ledgerRepo := register_repo.NewLedgerRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	rulesRepo := pricing_repo.NewRulesRepo(txManager)

	// --- Services ---
	batchCatalog := batches.NewService(ledgerRepo)
	itemService := item.NewService(itemRepo)
	warehouseService := warehouse.NewService(warehouseRepo)

	ruleEngine, err := rules.NewEngine(rulesRepo)
	if err != nil {
		log.Fatalw("failed to initialize rule engine", "error", err)
	}

	allocationService := allocation.NewService(
		batchCatalog,
		rulesRepo,
		ruleEngine,
		rulesRepo,
		itemService,
	)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool,
		Logger:            log,
		JWTValidator:      jwtService,
		AllocationService: allocationService,
		BatchCatalog:      batchCatalog,
		WarehouseCatalog:  warehouseService,
		AuditService:      auditService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s is not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
