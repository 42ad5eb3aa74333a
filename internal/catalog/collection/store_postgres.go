// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yousseefah/prostore/internal/catalog/product"
	"github.com/yousseefah/prostore/internal/platform/apperr"
	"github.com/yousseefah/prostore/internal/platform/database/schema"
	"github.com/yousseefah/prostore/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// Memberships live in catalog.collectionproduct keyed by
// (collectionid, productid); every multi-step mutation runs inside a
// transaction.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed collection store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// collectionColumns is the scan order shared by every full-row query.
var collectionColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.Collection.ID, schema.Collection.OwnerID, schema.Collection.Name,
	schema.Collection.Slug, schema.Collection.Description, schema.Collection.Image,
	schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.RequiresCode,
	schema.Collection.AccessCodeHash, schema.Collection.CreatedAt, schema.Collection.UpdatedAt)

func scanCollection(row interface{ Scan(...any) error }) (*Collection, error) {
	collection := &Collection{Products: []ProductEntry{}}
	err := row.Scan(
		&collection.ID, &collection.OwnerRef, &collection.Name,
		&collection.Slug, &collection.Description, &collection.Image,
		&collection.ParentID, &collection.IsActive, &collection.RequiresCode,
		&collection.AccessCodeHash, &collection.CreatedAt, &collection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// # Collection Retrieval

/*
FindByID retrieves a single collection record with its memberships.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Collection: Hydrated entity, memberships in insertion order
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		collectionColumns, schema.Collection.Table, schema.Collection.ID)

	collection, err := scanCollection(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_collection_by_id")
	}

	if err := repository.loadMemberships(context, collection); err != nil {
		return nil, err
	}

	return collection, nil
}

/*
FindBySlug retrieves a collection by its unique URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Collection: Hydrated entity, memberships in insertion order
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		collectionColumns, schema.Collection.Table, schema.Collection.Slug)

	collection, err := scanCollection(repository.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "get_collection_by_slug")
	}

	if err := repository.loadMemberships(context, collection); err != nil {
		return nil, err
	}

	return collection, nil
}

/*
FindSummary retrieves the listing projection of one collection.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Summary: Listing projection
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindSummary(context context.Context, id string) (*Summary, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Collection.ID, schema.Collection.Name, schema.Collection.Slug,
		schema.Collection.Image, schema.Collection.RequiresCode,
		schema.Collection.Table, schema.Collection.ID)

	summary := &Summary{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&summary.ID, &summary.Name, &summary.Slug, &summary.Image, &summary.RequiresCode,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_collection_summary")
	}

	return summary, nil
}

/*
ListRoots returns every active root collection with memberships populated
in a second batched query.

Parameters:
  - context: context.Context

Returns:
  - []*Collection: Active roots in creation order
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListRoots(context context.Context) ([]*Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s IS NULL AND %s = true
		ORDER BY %s ASC
	`, collectionColumns, schema.Collection.Table,
		schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.CreatedAt)

	return repository.listCollections(context, query, "list_root_collections")
}

/*
ListByParent returns the active direct children of a collection with
memberships populated.

Parameters:
  - context: context.Context
  - parentID: string

Returns:
  - []*Collection: Active children in creation order
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByParent(context context.Context, parentID string) ([]*Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = true
		ORDER BY %s ASC
	`, collectionColumns, schema.Collection.Table,
		schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.CreatedAt)

	return repository.listCollections(context, query, "list_child_collections", parentID)
}

// listCollections runs a full-row listing query and batch-loads memberships
// for the whole result set in one extra round trip.
func (repository *PostgresRepository) listCollections(context context.Context, query, action string, args ...any) ([]*Collection, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	collections := make([]*Collection, 0)
	byID := make(map[string]*Collection)

	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_collection")
		}
		collections = append(collections, collection)
		byID[collection.ID] = collection
	}
	rows.Close()

	if len(collections) == 0 {
		return collections, nil
	}

	ids := make([]string, 0, len(collections))
	for _, collection := range collections {
		ids = append(ids, collection.ID)
	}

	membershipQuery := fmt.Sprintf(`
		SELECT cp.%s, cp.%s, cp.%s, cp.%s,
		       p.%s, p.%s, p.%s, p.%s, p.%s, p.%s
		FROM %s cp
		JOIN %s p ON cp.%s = p.%s
		WHERE cp.%s = ANY($1)
		ORDER BY cp.%s ASC
	`,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID,
		schema.CollectionProduct.SortOrder, schema.CollectionProduct.AddedAt,
		schema.Product.ID, schema.Product.Name, schema.Product.Image,
		schema.Product.Price, schema.Product.Rating, schema.Product.NumReviews,
		schema.CollectionProduct.Table, schema.Product.Table,
		schema.CollectionProduct.ProductID, schema.Product.ID,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.AddedAt,
	)

	memberRows, err := repository.db.Query(context, membershipQuery, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "list_collection_products")
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var collectionID string
		entry, err := scanMembership(memberRows, &collectionID)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_collection_product")
		}
		if owner, ok := byID[collectionID]; ok {
			owner.Products = append(owner.Products, entry)
		}
	}

	return collections, nil
}

// loadMemberships hydrates the product entries of a single collection.
func (repository *PostgresRepository) loadMemberships(context context.Context, collection *Collection) error {
	query := fmt.Sprintf(`
		SELECT cp.%s, cp.%s, cp.%s, cp.%s,
		       p.%s, p.%s, p.%s, p.%s, p.%s, p.%s
		FROM %s cp
		JOIN %s p ON cp.%s = p.%s
		WHERE cp.%s = $1
		ORDER BY cp.%s ASC
	`,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID,
		schema.CollectionProduct.SortOrder, schema.CollectionProduct.AddedAt,
		schema.Product.ID, schema.Product.Name, schema.Product.Image,
		schema.Product.Price, schema.Product.Rating, schema.Product.NumReviews,
		schema.CollectionProduct.Table, schema.Product.Table,
		schema.CollectionProduct.ProductID, schema.Product.ID,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.AddedAt,
	)

	rows, err := repository.db.Query(context, query, collection.ID)
	if err != nil {
		return dberr.Wrap(err, "list_collection_products")
	}
	defer rows.Close()

	for rows.Next() {
		var collectionID string
		entry, err := scanMembership(rows, &collectionID)
		if err != nil {
			return dberr.Wrap(err, "scan_collection_product")
		}
		collection.Products = append(collection.Products, entry)
	}

	return nil
}

func scanMembership(row interface{ Scan(...any) error }, collectionID *string) (ProductEntry, error) {
	entry := ProductEntry{}
	summary := &product.Summary{}
	err := row.Scan(
		collectionID, &entry.ProductID, &entry.DisplayOrder, &entry.AddedAt,
		&summary.ID, &summary.Name, &summary.Image,
		&summary.Price, &summary.Rating, &summary.NumReviews,
	)
	if err != nil {
		return ProductEntry{}, err
	}
	entry.Product = summary
	return entry, nil
}

/*
ChildSummaries returns the listing projection of a collection's active
direct children.

Parameters:
  - context: context.Context
  - parentID: string

Returns:
  - []Summary: Children in creation order
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ChildSummaries(context context.Context, parentID string) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s
		WHERE %s = $1 AND %s = true
		ORDER BY %s ASC
	`,
		schema.Collection.ID, schema.Collection.Name, schema.Collection.Slug,
		schema.Collection.Image, schema.Collection.RequiresCode,
		schema.Collection.Table,
		schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.CreatedAt)

	rows, err := repository.db.Query(context, query, parentID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_child_summaries")
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		summary := Summary{}
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Slug, &summary.Image, &summary.RequiresCode); err != nil {
			return nil, dberr.Wrap(err, "scan_child_summary")
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

/*
CountByParent counts all direct children regardless of isactive.

Parameters:
  - context: context.Context
  - parentID: string

Returns:
  - int: Child count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) CountByParent(context context.Context, parentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Collection.Table, schema.Collection.ParentID)

	var count int
	if err := repository.db.QueryRow(context, query, parentID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_child_collections")
	}

	return count, nil
}

func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Collection.Table, schema.Collection.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "collection_exists")
	}

	return exists, nil
}

func (repository *PostgresRepository) SlugExists(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Collection.Table, schema.Collection.Slug)

	var exists bool
	if err := repository.db.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "collection_slug_exists")
	}

	return exists, nil
}

/*
AncestorChain walks the parent chain upward from the given collection using
a recursive CTE. The depth cap bounds the walk even if a cycle already
exists in stored data.

Parameters:
  - context: context.Context
  - id: string (Chain start)

Returns:
  - []string: Ids on the chain, nearest first
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) AncestorChain(context context.Context, id string) ([]string, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT %s, %s, 1 AS depth
			FROM %s
			WHERE %s = $1
			UNION ALL
			SELECT c.%s, c.%s, chain.depth + 1
			FROM %s c
			JOIN chain ON c.%s = chain.%s
			WHERE chain.depth < $2
		)
		SELECT %s FROM chain ORDER BY depth ASC
	`,
		schema.Collection.ID, schema.Collection.ParentID,
		schema.Collection.Table,
		schema.Collection.ID,
		schema.Collection.ID, schema.Collection.ParentID,
		schema.Collection.Table,
		schema.Collection.ID, schema.Collection.ParentID,
		schema.Collection.ID,
	)

	rows, err := repository.db.Query(context, query, id, MaxAncestorDepth)
	if err != nil {
		return nil, dberr.Wrap(err, "walk_ancestor_chain")
	}
	defer rows.Close()

	var chain []string
	for rows.Next() {
		var ancestorID string
		if err := rows.Scan(&ancestorID); err != nil {
			return nil, dberr.Wrap(err, "scan_ancestor")
		}
		chain = append(chain, ancestorID)
	}

	return chain, nil
}

// # Tree Mutation

/*
Create inserts a new collection record.

Parameters:
  - context: context.Context
  - collection: *Collection

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, collection *Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.Collection.Table,
		schema.Collection.ID, schema.Collection.OwnerID, schema.Collection.Name,
		schema.Collection.Slug, schema.Collection.Description, schema.Collection.Image,
		schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.RequiresCode,
		schema.Collection.AccessCodeHash, schema.Collection.CreatedAt, schema.Collection.UpdatedAt,
		schema.Collection.CreatedAt, schema.Collection.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		collection.ID, collection.OwnerRef, collection.Name,
		collection.Slug, collection.Description, collection.Image,
		collection.ParentID, collection.IsActive, collection.RequiresCode,
		collection.AccessCodeHash,
	).Scan(&collection.CreatedAt, &collection.UpdatedAt)

	return dberr.Wrap(err, "create_collection")
}

/*
Update replaces the mutable fields of a collection. The service resolves
partial updates before calling this, so a full-row write is safe.

Parameters:
  - context: context.Context
  - collection: *Collection

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, collection *Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Collection.Table,
		schema.Collection.Name, schema.Collection.Description, schema.Collection.Image,
		schema.Collection.ParentID, schema.Collection.IsActive, schema.Collection.RequiresCode,
		schema.Collection.AccessCodeHash, schema.Collection.UpdatedAt,
		schema.Collection.ID,
		schema.Collection.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		collection.ID, collection.Name, collection.Description, collection.Image,
		collection.ParentID, collection.IsActive, collection.RequiresCode,
		collection.AccessCodeHash,
	).Scan(&collection.UpdatedAt)

	return dberr.Wrap(err, "update_collection")
}

/*
Delete removes a collection inside a transaction.

Description: The child-count check and the delete commit atomically, so a
child created between the two statements forces a serialization conflict
instead of an orphan.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: InvalidOperation while children exist, ErrNotFound if missing
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Child Guard
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Collection.Table, schema.Collection.ParentID)

	var childCount int
	if err := transaction.QueryRow(context, countQuery, id).Scan(&childCount); err != nil {
		return dberr.Wrap(err, "count_children_for_delete")
	}
	if childCount > 0 {
		return apperr.InvalidOperation("Cannot delete a collection that still has sub-collections")
	}

	// Step 2: Remove Record
	// Memberships go with it via the FK on catalog.collectionproduct.
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Collection.Table, schema.Collection.ID)

	result, err := transaction.Exec(context, deleteQuery, id)
	if err != nil {
		return dberr.Wrap(err, "delete_collection")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}

// # Membership Mutation

/*
UpsertProduct adds or reorders one membership atomically.

Description: A single INSERT ... ON CONFLICT DO UPDATE makes the operation
idempotent: repeating the call leaves exactly one membership row carrying
the latest displayOrder. addedat is set once on first insert and preserved
on conflict, keeping insertion order stable for tie-breaking.

Parameters:
  - context: context.Context
  - collectionID: string
  - productID: string
  - displayOrder: int

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) UpsertProduct(context context.Context, collectionID, productID string, displayOrder int) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_upsert_product_tx")
	}
	defer transaction.Rollback(context)

	upsertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, clock_timestamp())
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s
	`,
		schema.CollectionProduct.Table,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID,
		schema.CollectionProduct.SortOrder, schema.CollectionProduct.AddedAt,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID,
		schema.CollectionProduct.SortOrder, schema.CollectionProduct.SortOrder,
	)

	if _, err := transaction.Exec(context, upsertQuery, collectionID, productID, displayOrder); err != nil {
		return dberr.Wrap(err, "upsert_collection_product")
	}

	if err := touchCollection(context, transaction, collectionID); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
RemoveProduct deletes one membership row and bumps the owning collection's
updatedat, both in one transaction.

Parameters:
  - context: context.Context
  - collectionID: string
  - productID: string

Returns:
  - error: ErrNotFound when no membership row matched
*/
func (repository *PostgresRepository) RemoveProduct(context context.Context, collectionID, productID string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_product_tx")
	}
	defer transaction.Rollback(context)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CollectionProduct.Table,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID)

	result, err := transaction.Exec(context, deleteQuery, collectionID, productID)
	if err != nil {
		return dberr.Wrap(err, "remove_collection_product")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	if err := touchCollection(context, transaction, collectionID); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
UpdateOrders applies a batch of reorder instructions atomically.

Description: Each instruction is a single-row UPDATE; instructions whose
productID is not a member match zero rows and are skipped without error.
Sequential application inside one transaction means the last instruction
wins when the input repeats a productID, and concurrent reorders cannot
interleave partial results.

Parameters:
  - context: context.Context
  - collectionID: string
  - orders: []ProductOrder

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) UpdateOrders(context context.Context, collectionID string, orders []ProductOrder) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_reorder_tx")
	}
	defer transaction.Rollback(context)

	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		schema.CollectionProduct.Table, schema.CollectionProduct.SortOrder,
		schema.CollectionProduct.CollectionID, schema.CollectionProduct.ProductID)

	for _, order := range orders {
		if _, err := transaction.Exec(context, updateQuery, collectionID, order.ProductID, order.DisplayOrder); err != nil {
			return dberr.Wrap(err, "reorder_collection_product")
		}
	}

	if err := touchCollection(context, transaction, collectionID); err != nil {
		return err
	}

	return transaction.Commit(context)
}

// touchCollection bumps updatedat so membership changes are visible on the
// parent record's modification instant.
func touchCollection(ctx context.Context, transaction pgx.Tx, collectionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.Collection.Table, schema.Collection.UpdatedAt, schema.Collection.ID)

	_, err := transaction.Exec(ctx, query, collectionID)
	return dberr.Wrap(err, "touch_collection")
}
