// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yousseefah/prostore/internal/catalog/product"
	"github.com/yousseefah/prostore/internal/platform/apperr"
	"github.com/yousseefah/prostore/internal/platform/dberr"
	"github.com/yousseefah/prostore/internal/platform/sec"
	"github.com/yousseefah/prostore/internal/platform/validate"
	"github.com/yousseefah/prostore/pkg/slug"
	"github.com/yousseefah/prostore/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates the hierarchy and ordering rules for collections.
//
// It owns cycle prevention, the child-blocks-delete guard, idempotent
// membership semantics, and server-side access-code verification. Storage
// is delegated to [Repository]; products are checked through the read-only
// product collaborator.
type Service struct {
	repo     Repository
	products product.Repository
	cache    ListingCache
	logger   *slog.Logger
}

// NewService constructs a new collection [Service]. cache may be nil, in
// which case every listing goes to storage.
func NewService(repo Repository, products product.Repository, cache ListingCache, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// # Tree Management

/*
Create persists a new, empty collection.

Description: Display strings fall back to the placeholder defaults. When a
parentID is supplied it must reference an existing collection. A collection
flagged requiresCode must carry a non-empty access code, which is stored
only as a bcrypt hash.

Parameters:
  - context: context.Context
  - ownerID: string (Creating principal, from JWT claims)
  - input: CreateInput

Returns:
  - *Collection: The persisted entity with generated id and timestamps
  - error: NotFound for a missing parent, ValidationError, persistence failures
*/
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*Collection, error) {
	collection := &Collection{
		ID:           uuidv7.New(),
		Name:         fallback(input.Name, DefaultName),
		Description:  fallback(input.Description, DefaultDescription),
		Image:        fallback(input.Image, DefaultImage),
		OwnerRef:     ownerID,
		ParentID:     input.ParentID,
		IsActive:     true,
		RequiresCode: input.RequiresCode,
		Products:     []ProductEntry{},
	}
	validator := &validate.Validator{}
	validator.MaxLen(FieldName, collection.Name, 200)
	validator.MaxLen(FieldDescription, collection.Description, 2000)
	if input.ParentID != nil {
		validator.UUID(FieldParentID, *input.ParentID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		exists, err := service.repo.Exists(context, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("Parent collection")
		}
	}

	if input.RequiresCode {
		if strings.TrimSpace(input.AccessCode) == "" {
			return nil, validate.RequiredError(FieldAccessCode, "Required when requiresCode is enabled")
		}
		hash, err := sec.HashAccessCode(input.AccessCode)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		collection.AccessCodeHash = hash
	}

	uniqueSlug, err := service.uniqueSlug(context, slug.From(collection.Name))
	if err != nil {
		return nil, err
	}
	collection.Slug = uniqueSlug

	if err := service.repo.Create(context, collection); err != nil {
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Info("collection_created",
		slog.String("collection_id", collection.ID),
		slog.String("owner_id", ownerID),
	)

	return collection, nil
}

/*
Get retrieves one collection with populated product summaries, a parent
summary, and its active sub-collections.

Description: Products are sorted by ascending displayOrder with ties broken
by insertion order. When the collection requires an access code, the
presented code must match the stored hash; administrators bypass the gate.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)
  - presentedCode: string (X-Access-Code header value, may be empty)
  - isAdmin: bool

Returns:
  - *Collection: Fully populated entity
  - error: NotFound if missing, Forbidden when gated and the code does not match
*/
func (service *Service) Get(context context.Context, id, presentedCode string, isAdmin bool) (*Collection, error) {
	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, remapNotFound(err, "Collection")
	}

	return service.finishGet(context, collection, presentedCode, isAdmin)
}

/*
GetBySlug retrieves a collection by its URL slug with the same population
and gating behavior as Get.

Parameters:
  - context: context.Context
  - slug: string
  - presentedCode: string
  - isAdmin: bool

Returns:
  - *Collection: Fully populated entity
  - error: NotFound if missing, Forbidden when gated and the code does not match
*/
func (service *Service) GetBySlug(context context.Context, slug, presentedCode string, isAdmin bool) (*Collection, error) {
	collection, err := service.repo.FindBySlug(context, slug)
	if err != nil {
		return nil, remapNotFound(err, "Collection")
	}

	return service.finishGet(context, collection, presentedCode, isAdmin)
}

// finishGet applies the access gate, ordering, and relation population
// shared by Get and GetBySlug.
func (service *Service) finishGet(context context.Context, collection *Collection, presentedCode string, isAdmin bool) (*Collection, error) {
	if err := service.authorize(collection, presentedCode, isAdmin); err != nil {
		return nil, err
	}

	SortProducts(collection.Products)

	if collection.ParentID != nil {
		parent, err := service.repo.FindSummary(context, *collection.ParentID)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return nil, err
		}
		collection.Parent = parent
	}

	children, err := service.repo.ChildSummaries(context, collection.ID)
	if err != nil {
		return nil, err
	}
	collection.SubCollections = children

	return collection, nil
}

/*
ListRoots returns all active root collections with populated product
summaries, reading through the Redis listing cache.

Description: The result is unpaginated. Collections that require an access
code appear in the listing but with their products redacted; contents are
only disclosed through Get after code verification.

Parameters:
  - context: context.Context

Returns:
  - []*Collection: Active roots
  - error: Retrieval failures
*/
func (service *Service) ListRoots(context context.Context) ([]*Collection, error) {
	if service.cache != nil {
		cached, err := service.cache.GetRoots(context)
		if err != nil {
			service.logger.Warn("root_listing_cache_read_failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	collections, err := service.repo.ListRoots(context)
	if err != nil {
		return nil, err
	}
	prepareListing(collections)

	if service.cache != nil {
		if err := service.cache.SetRoots(context, collections); err != nil {
			service.logger.Warn("root_listing_cache_write_failed", slog.String("error", err.Error()))
		}
	}

	return collections, nil
}

/*
ListChildren returns the active direct children of a collection with
populated product summaries, gated products redacted.

Parameters:
  - context: context.Context
  - parentID: string

Returns:
  - []*Collection: Active children
  - error: Retrieval failures
*/
func (service *Service) ListChildren(context context.Context, parentID string) ([]*Collection, error) {
	collections, err := service.repo.ListByParent(context, parentID)
	if err != nil {
		return nil, err
	}
	prepareListing(collections)

	return collections, nil
}

/*
Update applies a partial update to a collection.

Description: Only supplied fields change. Reparenting is guarded twice:
parentId == id fails immediately, and a deeper cycle (the target appearing
anywhere on the proposed parent's ancestor chain) is rejected before the
write. Setting parentId to the empty string moves the collection to the
root level. If the resulting record has requiresCode without a stored code,
the update fails validation. The slug is stable across renames.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *Collection: The updated entity, populated as from Get minus children
  - error: NotFound, InvalidOperation for self-parenting or cycles, ValidationError
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Collection, error) {
	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, remapNotFound(err, "Collection")
	}

	if input.ParentID != nil {
		switch proposed := *input.ParentID; {
		case proposed == id:
			return nil, apperr.InvalidOperation("A collection cannot be its own parent")

		case proposed == "":
			collection.ParentID = nil

		default:
			if !validate.IsUUID(proposed) {
				return nil, validate.RequiredError(FieldParentID, "Must be a valid UUID")
			}
			exists, err := service.repo.Exists(context, proposed)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, apperr.NotFound("Parent collection")
			}
			if err := service.ensureNoCycle(context, id, proposed); err != nil {
				return nil, err
			}
			collection.ParentID = &proposed
		}
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 200)
		collection.Name = *input.Name
	}
	if input.Description != nil {
		validator.Required(FieldDescription, *input.Description).MaxLen(FieldDescription, *input.Description, 2000)
		collection.Description = *input.Description
	}
	if input.Image != nil {
		validator.Required(FieldImage, *input.Image)
		collection.Image = *input.Image
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.IsActive != nil {
		collection.IsActive = *input.IsActive
	}
	if input.RequiresCode != nil {
		collection.RequiresCode = *input.RequiresCode
		if !collection.RequiresCode {
			collection.AccessCodeHash = ""
		}
	}
	if input.AccessCode != nil && strings.TrimSpace(*input.AccessCode) != "" {
		hash, err := sec.HashAccessCode(*input.AccessCode)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		collection.AccessCodeHash = hash
	}
	if collection.RequiresCode && collection.AccessCodeHash == "" {
		return nil, validate.RequiredError(FieldAccessCode, "Required when requiresCode is enabled")
	}

	if err := service.repo.Update(context, collection); err != nil {
		return nil, remapNotFound(err, "Collection")
	}

	service.invalidateListings(context)
	service.logger.Info("collection_updated", slog.String("collection_id", id))

	return service.fetchUpdated(context, id)
}

/*
Delete removes a child-free collection.

Description: A child count rejects the obvious case before any transaction
is opened; the authoritative guard re-counts inside the storage transaction
so a concurrent child insert cannot slip past. Memberships are removed with
the record; child collections block the operation until they are deleted or
reparented.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NotFound if missing, InvalidOperation while children exist
*/
func (service *Service) Delete(context context.Context, id string) error {
	childCount, err := service.repo.CountByParent(context, id)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return apperr.InvalidOperation("Cannot delete a collection that still has sub-collections")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return remapNotFound(err, "Collection")
	}

	service.invalidateListings(context)
	service.logger.Info("collection_deleted", slog.String("collection_id", id))

	return nil
}

// maxSlugAttempts bounds the numeric-suffix probe before falling back to a
// random suffix.
const maxSlugAttempts = 50

// uniqueSlug deduplicates a generated slug against existing collections.
// Duplicate names are legal, so collisions get a "-2", "-3", ... suffix.
func (service *Service) uniqueSlug(context context.Context, base string) (string, error) {
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		taken, err := service.repo.SlugExists(context, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	// Heavily reused name; a random suffix avoids probing forever.
	id := uuidv7.New()
	return fmt.Sprintf("%s-%s", base, id[len(id)-8:]), nil
}

// ensureNoCycle rejects a reparent that would make id its own ancestor.
func (service *Service) ensureNoCycle(context context.Context, id, proposedParentID string) error {
	chain, err := service.repo.AncestorChain(context, proposedParentID)
	if err != nil {
		return err
	}
	for _, ancestorID := range chain {
		if ancestorID == id {
			return apperr.InvalidOperation("Reparenting would create a cycle in the collection tree")
		}
	}
	return nil
}

// # Membership Management

/*
AddProduct adds a product to a collection's ordered membership.

Description: Idempotent upsert. If the product is already a member its
displayOrder is updated in place; no duplicate entry is ever created.

Parameters:
  - context: context.Context
  - collectionID: string
  - input: AddProductInput (displayOrder defaults to 0)

Returns:
  - *Collection: The updated entity, populated as from Get minus children
  - error: NotFound when the collection or product is missing
*/
func (service *Service) AddProduct(context context.Context, collectionID string, input AddProductInput) (*Collection, error) {
	exists, err := service.repo.Exists(context, collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Collection")
	}

	productExists, err := service.products.Exists(context, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !productExists {
		return nil, apperr.NotFound("Product")
	}

	if err := service.repo.UpsertProduct(context, collectionID, input.ProductID, input.DisplayOrder); err != nil {
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Info("collection_product_added",
		slog.String("collection_id", collectionID),
		slog.String("product_id", input.ProductID),
		slog.Int("display_order", input.DisplayOrder),
	)

	return service.fetchUpdated(context, collectionID)
}

/*
RemoveProduct removes exactly one product membership.

Parameters:
  - context: context.Context
  - collectionID: string
  - productID: string

Returns:
  - *Collection: The updated entity, populated as from Get minus children
  - error: NotFound when the collection is missing or the product is not a member
*/
func (service *Service) RemoveProduct(context context.Context, collectionID, productID string) (*Collection, error) {
	exists, err := service.repo.Exists(context, collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Collection")
	}

	if err := service.repo.RemoveProduct(context, collectionID, productID); err != nil {
		return nil, remapNotFound(err, "Product membership")
	}

	service.invalidateListings(context)
	service.logger.Info("collection_product_removed",
		slog.String("collection_id", collectionID),
		slog.String("product_id", productID),
	)

	return service.fetchUpdated(context, collectionID)
}

/*
Reorder applies a batch of displayOrder changes.

Description: Instructions referencing products that are not members are
silently ignored. When the input repeats a productID the last instruction
wins. All changes commit atomically.

Parameters:
  - context: context.Context
  - collectionID: string
  - orders: []ProductOrder

Returns:
  - *Collection: The updated entity, populated as from Get minus children
  - error: NotFound when the collection is missing
*/
func (service *Service) Reorder(context context.Context, collectionID string, orders []ProductOrder) (*Collection, error) {
	exists, err := service.repo.Exists(context, collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Collection")
	}

	if err := service.repo.UpdateOrders(context, collectionID, orders); err != nil {
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Info("collection_products_reordered",
		slog.String("collection_id", collectionID),
		slog.Int("order_count", len(orders)),
	)

	return service.fetchUpdated(context, collectionID)
}

// # Internals

// authorize enforces the access-code gate on detail reads.
func (service *Service) authorize(collection *Collection, presentedCode string, isAdmin bool) error {
	if !collection.RequiresCode || isAdmin {
		return nil
	}
	if presentedCode == "" || !sec.CheckAccessCode(presentedCode, collection.AccessCodeHash) {
		return apperr.Forbidden("A valid access code is required for this collection")
	}
	return nil
}

// fetchUpdated reloads a collection after a mutation. Mutation responses
// carry the populated record with its parent summary but without children.
func (service *Service) fetchUpdated(context context.Context, id string) (*Collection, error) {
	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, remapNotFound(err, "Collection")
	}
	SortProducts(collection.Products)

	if collection.ParentID != nil {
		parent, err := service.repo.FindSummary(context, *collection.ParentID)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return nil, err
		}
		collection.Parent = parent
	}

	return collection, nil
}

// invalidateListings drops the cached root listing. Cache failures are
// logged, never surfaced; the TTL bounds staleness either way.
func (service *Service) invalidateListings(context context.Context) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(context); err != nil {
		service.logger.Warn("root_listing_cache_invalidate_failed", slog.String("error", err.Error()))
	}
}

// prepareListing sorts memberships and redacts gated contents for public
// listing projections.
func prepareListing(collections []*Collection) {
	for _, collection := range collections {
		if collection.RequiresCode {
			collection.Products = []ProductEntry{}
			continue
		}
		SortProducts(collection.Products)
	}
}

// remapNotFound replaces the generic storage not-found with a
// resource-specific message.
func remapNotFound(err error, resource string) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
