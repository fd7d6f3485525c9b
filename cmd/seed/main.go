// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"stockroom/internal/config"
	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/autoorder"
	"stockroom/internal/domain/capture"
	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/storage/sqlstore"
	"stockroom/internal/infrastructure/storage/sqlstore/capture_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/product_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/settings_repo"
	"stockroom/pkg/logger"
)

type demoProduct struct {
	sku, barcode, name     string
	qty, point, reorderQty int
	cost                   string
}

var demoProducts = []demoProduct{
	{"PAL-WRAP-500", "4600000000017", "Stretch film 500mm", 3, 10, 40, "7.90"},
	{"TAPE-48-BRN", "4600000000024", "Packing tape 48mm brown", 120, 50, 200, "1.15"},
	{"BOX-600-400", "4600000000031", "Carton box 600x400x400", 8, 25, 100, "2.40"},
	{"LBL-100-150", "4600000000048", "Thermal labels 100x150", 0, 5, 20, "12.00"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithActor(ctx, appctx.SystemActor("seed"))

	db, err := sqlstore.Open(ctx, cfg.Database.Store())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := sqlstore.Migrate(ctx, db); err != nil {
		log.Fatalw("failed to migrate", "error", err)
	}

	txm := sqlstore.NewTxManager(db)

	if v := os.Getenv("SEED_MIN_INTERVAL_MINUTES"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			log.Fatalw("SEED_MIN_INTERVAL_MINUTES must be an integer", "value", v)
		}
		if err := settings_repo.New(txm).Set(ctx, autoorder.SettingsKey, v); err != nil {
			log.Fatalw("failed to store interval setting", "error", err)
		}
		log.Infow("auto-order interval stored", "minutes", v)
	}

	products, err := seedProducts(ctx, product_repo.New(txm), log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if os.Getenv("SEED_CAPTURE_TASKS") == "true" {
		policy, err := cfg.Capture.Policy()
		if err != nil {
			log.Fatalw("invalid scan policy", "error", err)
		}
		svc := capture.NewService(capture_repo.New(txm), capture.WithPolicy(policy))
		for i, p := range products {
			taskID, err := svc.CreateTask(ctx, p.ID, fmt.Sprintf("A-%02d-01", i+1), p.Quantity, "seed")
			if err != nil {
				log.Fatalw("failed to create capture task", "sku", p.SKU, "error", err)
			}
			log.Infow("capture task created", "sku", p.SKU, "task_id", taskID)
		}
	}

	log.Info("seeding completed successfully")
}

func seedProducts(ctx context.Context, repo *product_repo.Repo, log *logger.Logger) ([]*product.Product, error) {
	seeded := make([]*product.Product, 0, len(demoProducts))
	for _, d := range demoProducts {
		if existing, err := repo.GetByBarcode(ctx, d.barcode); err == nil {
			log.Infow("product already exists", "sku", d.sku, "product_id", existing.ID)
			seeded = append(seeded, existing)
			continue
		} else if !apperror.IsNotFound(err) {
			return nil, err
		}

		p := product.NewProduct(d.sku, d.name)
		barcode := d.barcode
		p.Barcode = &barcode
		p.Quantity = d.qty
		p.ReorderPoint = d.point
		p.ReorderQuantity = d.reorderQty
		p.UnitCost = types.MustMoney(d.cost)

		if err := repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create %s: %w", d.sku, err)
		}
		log.Infow("product created", "sku", d.sku, "product_id", p.ID, "needs_reorder", p.NeedsReorder())
		seeded = append(seeded, p)
	}
	return seeded, nil
}
