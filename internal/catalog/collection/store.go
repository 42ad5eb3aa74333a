// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection

import "context"

// # Collection Data Access

// Repository defines the data access contract for the collection tree and
// its ordered product memberships.
//
// Implementations return memberships in insertion (addedAt) order; the
// service applies the stable displayOrder sort on top.
type Repository interface {

	/*
		FindByID retrieves a collection with its populated memberships.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Collection: Hydrated entity, memberships in insertion order
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Collection, error)

	/*
		FindBySlug retrieves a collection by its human-readable identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Collection: Hydrated entity, memberships in insertion order
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Collection, error)

	/*
		FindSummary retrieves the lightweight projection of one collection.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Summary: Listing projection
		  - error: ErrNotFound if missing
	*/
	FindSummary(context context.Context, id string) (*Summary, error)

	/*
		ListRoots returns all active root collections with populated
		memberships. The result set is unpaginated.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Collection: Active roots in creation order
		  - error: Database retrieval failures
	*/
	ListRoots(context context.Context) ([]*Collection, error)

	/*
		ListByParent returns all active direct children of a collection
		with populated memberships.

		Parameters:
		  - context: context.Context
		  - parentID: string

		Returns:
		  - []*Collection: Active children in creation order
		  - error: Database retrieval failures
	*/
	ListByParent(context context.Context, parentID string) ([]*Collection, error)

	/*
		ChildSummaries returns the listing projection of a collection's
		active direct children.

		Parameters:
		  - context: context.Context
		  - parentID: string

		Returns:
		  - []Summary: Children in creation order
		  - error: Database retrieval failures
	*/
	ChildSummaries(context context.Context, parentID string) ([]Summary, error)

	/*
		CountByParent counts direct children, active or not.

		Parameters:
		  - context: context.Context
		  - parentID: string

		Returns:
		  - int: Child count
		  - error: Database retrieval failures
	*/
	CountByParent(context context.Context, parentID string) (int, error)

	/*
		Exists reports whether a collection record is present.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - bool: Presence flag
		  - error: Database retrieval failures
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		SlugExists reports whether a slug is already taken by any collection.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - bool: Presence flag
		  - error: Database retrieval failures
	*/
	SlugExists(context context.Context, slug string) (bool, error)

	/*
		AncestorChain returns the ids on the parent chain starting from
		(and including) the given collection, walking upward to the root.
		The walk is depth-capped.

		Parameters:
		  - context: context.Context
		  - id: string (Chain start)

		Returns:
		  - []string: Ancestor ids, nearest first
		  - error: Database retrieval failures
	*/
	AncestorChain(context context.Context, id string) ([]string, error)

	// # Tree Mutation

	/*
		Create persists a new collection record.

		Parameters:
		  - context: context.Context
		  - collection: *Collection

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, collection *Collection) error

	/*
		Update replaces the mutable fields of an existing collection.
		The service resolves partial updates before calling this.

		Parameters:
		  - context: context.Context
		  - collection: *Collection

		Returns:
		  - error: ErrNotFound if missing, persistence failures
	*/
	Update(context context.Context, collection *Collection) error

	/*
		Delete removes a collection. The child-count guard and the delete
		run in one transaction, so a child created concurrently cannot be
		orphaned.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: InvalidOperation while children exist, ErrNotFound if
		    missing, persistence failures
	*/
	Delete(context context.Context, id string) error

	// # Membership Mutation

	/*
		UpsertProduct adds a product membership or, when one already
		exists, updates its displayOrder in place. Idempotent.

		Parameters:
		  - context: context.Context
		  - collectionID: string
		  - productID: string
		  - displayOrder: int

		Returns:
		  - error: Persistence failures
	*/
	UpsertProduct(context context.Context, collectionID, productID string, displayOrder int) error

	/*
		RemoveProduct deletes exactly one membership entry.

		Parameters:
		  - context: context.Context
		  - collectionID: string
		  - productID: string

		Returns:
		  - error: ErrNotFound when the product is not a member,
		    persistence failures
	*/
	RemoveProduct(context context.Context, collectionID, productID string) error

	/*
		UpdateOrders applies reorder instructions in one transaction.
		Instructions referencing non-members match zero rows and are
		silently ignored; duplicate productIDs apply sequentially, so the
		last instruction wins.

		Parameters:
		  - context: context.Context
		  - collectionID: string
		  - orders: []ProductOrder

		Returns:
		  - error: Persistence failures
	*/
	UpdateOrders(context context.Context, collectionID string, orders []ProductOrder) error
}

// # Listing Cache

// ListingCache is the read-through cache for the storefront root listing.
//
// A (nil, nil) GetRoots result is a cache miss. Implementations must treat
// cached data as disposable; every mutation path invalidates.
type ListingCache interface {
	GetRoots(context context.Context) ([]*Collection, error)
	SetRoots(context context.Context, collections []*Collection) error
	Invalidate(context context.Context) error
}
