// Package main implements the entry point for the storefront API server,
// which serves the product catalogue, shopping baskets and orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/storefront-api/internal/config"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a database migration command: up|down|status|version")
	verbose := flag.Bool("verbose", false, "Enable verbose migration output")
	flag.Parse()

	if err := run(*migrateCmd, *verbose); err != nil {
		log.Fatalf("storefront-api: %v", err)
	}
}

// run loads configuration and either executes a migration command or
// starts the HTTP server until SIGINT or SIGTERM.
func run(migrateCmd string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd, verbose)
	}

	db, err := openDatabase(cfg.Database, l)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, db, l)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
