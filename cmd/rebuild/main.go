// Package main is a CLI for rebuilding the materialized daily aggregates
// from the movement ledger. Safe to re-run: the rebuild is idempotent.
//
// Usage:
//
//	rebuild [-from 2026-01-01] [-to 2026-06-30]
//
// Without flags the whole ledger history is rebuilt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"stocklot/internal/domain/dailyagg"
	"stocklot/internal/domain/ledger"
	"stocklot/internal/infrastructure/storage/postgres"
	"stocklot/internal/infrastructure/storage/postgres/catalog_repo"
	"stocklot/internal/infrastructure/storage/postgres/dailyagg_repo"
	"stocklot/internal/infrastructure/storage/postgres/ledger_repo"
	"stocklot/pkg/logger"
)

func main() {
	fromFlag := flag.String("from", "", "rebuild from this date (YYYY-MM-DD), inclusive")
	toFlag := flag.String("to", "", "rebuild up to this date (YYYY-MM-DD), inclusive")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	from, err := parseDateFlag(*fromFlag)
	if err != nil {
		log.Fatalw("invalid -from value", "error", err)
	}
	to, err := parseDateFlag(*toFlag)
	if err != nil {
		log.Fatalw("invalid -to value", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// Repos resolve the TxManager from the context
	ctx = postgres.WithTxManager(ctx, txManager)

	ledgerService := ledger.NewService(ledger_repo.NewRepo(), catalog_repo.NewProductRepo())
	aggService := dailyagg.NewService(ledgerService, dailyagg_repo.NewRepo(), txManager)

	started := time.Now()
	rows, err := aggService.Rebuild(ctx, from, to)
	if err != nil {
		log.Fatalw("rebuild failed", "error", err)
	}

	log.Infow("rebuild complete",
		"rows", rows,
		"duration", time.Since(started).String(),
	)
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
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
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
