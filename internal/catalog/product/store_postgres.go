// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yousseefah/prostore/internal/platform/apperr"
	"github.com/yousseefah/prostore/internal/platform/database/schema"
	"github.com/yousseefah/prostore/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed product store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Product.Table, schema.Product.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "product_exists")
	}

	return exists, nil
}

func (repository *PostgresRepository) FindSummary(context context.Context, id string) (*Summary, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Product.ID, schema.Product.Name, schema.Product.Image,
		schema.Product.Price, schema.Product.Rating, schema.Product.NumReviews,
		schema.Product.Table, schema.Product.ID)

	summary := &Summary{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&summary.ID, &summary.Name, &summary.Image,
		&summary.Price, &summary.Rating, &summary.NumReviews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Product")
		}
		return nil, dberr.Wrap(err, "find_product_summary")
	}

	return summary, nil
}

// InsertSample persists a product record directly. It is not part of the
// [Repository] contract; only the seed importer uses it.
func (repository *PostgresRepository) InsertSample(context context.Context, summary *Summary) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (%s) DO NOTHING
	`,
		schema.Product.Table,
		schema.Product.ID, schema.Product.Name, schema.Product.Image,
		schema.Product.Price, schema.Product.Rating, schema.Product.NumReviews,
		schema.Product.CreatedAt, schema.Product.UpdatedAt,
		schema.Product.ID,
	)

	_, err := repository.db.Exec(context, query,
		summary.ID, summary.Name, summary.Image,
		summary.Price, summary.Rating, summary.NumReviews,
	)
	return dberr.Wrap(err, "insert_sample_product")
}
