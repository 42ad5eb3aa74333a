// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

// Command seed loads the two-level demo catalog into a running database.
//
// It creates a set of sample products, one root collection per product
// category with an empty product list, and "Day 1" / "Day 2" children per
// root, distributing the sample products across the children with
// sequential display orders. Running it twice replaces the catalog.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yousseefah/prostore/internal/catalog/collection"
	"github.com/yousseefah/prostore/internal/catalog/product"
	"github.com/yousseefah/prostore/internal/platform/config"
	"github.com/yousseefah/prostore/internal/platform/constants"
	"github.com/yousseefah/prostore/internal/platform/migration"
	pgstore "github.com/yousseefah/prostore/internal/platform/postgres"
	"github.com/yousseefah/prostore/internal/platform/sec"
	"github.com/yousseefah/prostore/pkg/slug"
	"github.com/yousseefah/prostore/pkg/uuidv7"
)

// seedOwnerID stands in for the admin principal that owns the demo catalog.
var seedOwnerID = uuidv7.New()

type rootSpec struct {
	Name        string
	Description string
	Image       string
}

var rootSpecs = []rootSpec{
	{"Phones", "Latest smartphones and accessories", "/images/phones.jpg"},
	{"Laptops", "High-performance laptops for work and play", "/images/laptops.jpg"},
	{"Headphones", "Premium headphones for immersive audio experience", "/images/camera.jpg"},
	{"Earphones", "Comfortable earphones for everyday use", "/images/airpods.jpg"},
}

var childNames = []string{"Day 1", "Day 2"}

var sampleProducts = []product.Summary{
	{Name: "Airpods Wireless Bluetooth Headphones", Image: "/images/airpods.jpg", Price: 89.99, Rating: 4.5, NumReviews: 12},
	{Name: "iPhone 13 Pro 256GB Memory", Image: "/images/phone.jpg", Price: 599.99, Rating: 4.0, NumReviews: 8},
	{Name: "Cannon EOS 80D DSLR Camera", Image: "/images/camera.jpg", Price: 929.99, Rating: 3.0, NumReviews: 12},
	{Name: "Sony Playstation 5", Image: "/images/playstation.jpg", Price: 399.99, Rating: 5.0, NumReviews: 12},
	{Name: "Logitech G-Series Gaming Mouse", Image: "/images/mouse.jpg", Price: 49.99, Rating: 3.5, NumReviews: 10},
	{Name: "Amazon Echo Dot 3rd Generation", Image: "/images/alexa.jpg", Price: 29.99, Rating: 4.0, NumReviews: 12},
	{Name: "MacBook Pro 14 M3", Image: "/images/laptops.jpg", Price: 1599.99, Rating: 4.5, NumReviews: 6},
	{Name: "Bose QuietComfort Ultra", Image: "/images/camera.jpg", Price: 349.99, Rating: 4.5, NumReviews: 9},
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName+"-seed"))

	cfg, err := config.Load()
	must(log, err, "load configuration")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	must(log, run(ctx, pool, log), "seed catalog")

	log.Info("catalog_seeded",
		slog.Int("roots", len(rootSpecs)),
		slog.Int("products", len(sampleProducts)),
	)
}

func run(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	products := product.NewPostgresRepository(pool)
	collections := collection.NewPostgresRepository(pool)

	// Fresh start: drop the previous demo catalog. Memberships go via FK.
	if err := clearCatalog(ctx, pool); err != nil {
		return err
	}

	productIDs := make([]string, 0, len(sampleProducts))
	for _, sample := range sampleProducts {
		sample.ID = uuidv7.New()
		if err := products.InsertSample(ctx, &sample); err != nil {
			return fmt.Errorf("insert product %q: %w", sample.Name, err)
		}
		productIDs = append(productIDs, sample.ID)
	}

	// Gate one demo child per run so the access-code path is exercisable
	// out of the box.
	gatedHash, err := sec.HashAccessCode("VIP2026")
	if err != nil {
		return err
	}

	perChild := (len(productIDs) + len(rootSpecs)*len(childNames) - 1) / (len(rootSpecs) * len(childNames))
	next := 0

	for rootIndex, spec := range rootSpecs {
		root := &collection.Collection{
			ID:          uuidv7.New(),
			Name:        spec.Name,
			Slug:        slug.From(spec.Name),
			Description: spec.Description,
			Image:       spec.Image,
			OwnerRef:    seedOwnerID,
			IsActive:    true,
			Products:    []collection.ProductEntry{},
		}
		if err := collections.Create(ctx, root); err != nil {
			return fmt.Errorf("create root %q: %w", spec.Name, err)
		}
		log.Info("root_collection_created", slog.String("name", root.Name))

		for childIndex, childName := range childNames {
			child := &collection.Collection{
				ID:          uuidv7.New(),
				Name:        childName,
				Slug:        slug.From(spec.Name + " " + childName),
				Description: fmt.Sprintf("Special %s deals for %s", spec.Name, childName),
				Image:       spec.Image,
				OwnerRef:    seedOwnerID,
				ParentID:    &root.ID,
				IsActive:    true,
				Products:    []collection.ProductEntry{},
			}

			// First root's second child demonstrates gating.
			if rootIndex == 0 && childIndex == 1 {
				child.RequiresCode = true
				child.AccessCodeHash = gatedHash
			}

			if err := collections.Create(ctx, child); err != nil {
				return fmt.Errorf("create child %q: %w", child.Slug, err)
			}

			for order := 0; order < perChild && next < len(productIDs); order++ {
				if err := collections.UpsertProduct(ctx, child.ID, productIDs[next], order); err != nil {
					return fmt.Errorf("add product to %q: %w", child.Slug, err)
				}
				next++
			}

			log.Info("sub_collection_created",
				slog.String("name", child.Name),
				slog.String("parent", root.Name),
				slog.Bool("gated", child.RequiresCode),
			)
		}
	}

	return nil
}

// clearCatalog removes all catalog rows. Children must go before parents
// because of the self-referencing FK.
func clearCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`DELETE FROM catalog.collection WHERE parentid IS NOT NULL`,
		`DELETE FROM catalog.collection`,
		`DELETE FROM catalog.product`,
	}
	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}
	return nil
}

func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("seed failure", slog.String("context", context), slog.Any("error", err))
		os.Exit(1)
	}
}
