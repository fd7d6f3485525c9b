// Package main applies the embedded schema migrations.
// Usage: migrate up
//        migrate down
//        migrate status
//        migrate version
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"stockroom/internal/config"
	"stockroom/internal/infrastructure/storage/sqlstore"
	"stockroom/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	db, err := sqlstore.Open(ctx, cfg.Database.Store())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	provider, err := sqlstore.NewMigrator(db)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}

	switch os.Args[1] {
	case "up":
		results, err := provider.Up(ctx)
		printResults(results)
		if err != nil {
			log.Fatalw("migrate up failed", "error", err)
		}
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			printResults([]*goose.MigrationResult{result})
		}
		if err != nil {
			log.Fatalw("migrate down failed", "error", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalw("migrate status failed", "error", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = "applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%5d  %-30s %s\n", s.Source.Version, s.Source.Path, applied)
		}
	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			log.Fatalw("read schema version failed", "error", err)
		}
		fmt.Println(v)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printResults(results []*goose.MigrationResult) {
	for _, r := range results {
		status := "ok"
		if r.Error != nil {
			status = r.Error.Error()
		}
		fmt.Printf("%-6s %5d  %-30s %8s  %s\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration.Round(time.Millisecond), status)
	}
}

func printUsage() {
	fmt.Println(`Stockroom schema migrations

Usage:
  migrate <command>

Commands:
  up        Apply all pending migrations
  down      Roll back the most recent migration
  status    List migrations and whether they are applied
  version   Print the current schema version
  help      Show this help

Environment Variables:
  STOCKROOM_DATABASE_DRIVER   pgx (default) or sqlite3
  STOCKROOM_DATABASE_DSN      Connection string (required)`)
}
