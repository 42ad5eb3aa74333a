// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

/*
Package collection manages the storefront catalog hierarchy and its ordered
product memberships.

It handles the lifecycle of a self-referential collection tree, from creation
and reparenting to deletion, plus the explicitly ordered set of product
references each collection holds.

# Core Responsibility

  - Hierarchy: Defines the [Collection] entity and its parent/child relation,
    guarding against self-parenting and deeper ancestry cycles.
  - Membership: Manages [ProductEntry] associations with idempotent upsert
    semantics and stable displayOrder sorting.
  - Gating: Enforces access-code verification server-side for collections
    flagged with requiresCode.

This package provides the structural backbone of the catalog; products
themselves are an external read-only collaborator.
*/
package collection

import (
	"sort"
	"time"

	"github.com/yousseefah/prostore/internal/catalog/product"
)

// # Creation Defaults

// Placeholder values applied when a collection is created without the
// corresponding field, so every persisted record satisfies the non-empty
// display-string constraint.
const (
	DefaultName        = "Sample Collection"
	DefaultDescription = "Sample description"
	DefaultImage       = "/images/sample.jpg"
)

// MaxAncestorDepth caps the ancestor-chain walk used for cycle detection.
const MaxAncestorDepth = 64

// # Core Entities

// Collection represents one node of the catalog tree.
//
// ParentID is nil for root collections. AccessCodeHash is the bcrypt hash of
// the gating code and is never serialized.
type Collection struct {
	ID             string         `json:"id"` // UUIDv7
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	OwnerRef       string         `json:"ownerRef"`
	ParentID       *string        `json:"parentId"`
	IsActive       bool           `json:"isActive"`
	RequiresCode   bool           `json:"requiresCode"`
	AccessCodeHash string         `json:"-"`
	Products       []ProductEntry `json:"products"`
	Parent         *Summary       `json:"parent,omitempty"`
	SubCollections []Summary      `json:"subCollections,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ProductEntry represents one ordered product membership within a collection.
//
// Memberships are unique by ProductID within a collection. AddedAt records
// insertion order and breaks displayOrder ties.
type ProductEntry struct {
	ProductID    string           `json:"productId"`
	DisplayOrder int              `json:"displayOrder"`
	AddedAt      time.Time        `json:"addedAt"`
	Product      *product.Summary `json:"product,omitempty"` // Populated for detail views
}

// Summary is the lightweight projection used for parent references and
// sub-collection listings.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Image        string `json:"image"`
	RequiresCode bool   `json:"requiresCode"`
}

// ProductOrder carries one reorder instruction.
type ProductOrder struct {
	ProductID    string `json:"productId"`
	DisplayOrder int    `json:"displayOrder"`
}

// # Service Inputs

// CreateInput holds the caller-supplied fields for a new collection.
// Empty display strings fall back to the package defaults.
type CreateInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	ParentID     *string `json:"parentId"`
	RequiresCode bool    `json:"requiresCode"`
	AccessCode   string  `json:"accessCode"`
}

// UpdateInput holds a partial update; nil fields retain prior values.
//
// A non-nil ParentID pointing at the empty string reparents the collection
// to the root level.
type UpdateInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Image        *string `json:"image"`
	ParentID     *string `json:"parentId"`
	IsActive     *bool   `json:"isActive"`
	RequiresCode *bool   `json:"requiresCode"`
	AccessCode   *string `json:"accessCode"`
}

// AddProductInput holds the membership fields for addProduct.
// DisplayOrder defaults to zero.
type AddProductInput struct {
	ProductID    string `json:"productId"`
	DisplayOrder int    `json:"displayOrder"`
}

// # Ordering

// SortProducts sorts memberships by ascending displayOrder. The sort is
// stable, so entries with equal displayOrder keep their insertion order
// (stores return memberships in addedAt order).
func SortProducts(entries []ProductEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DisplayOrder < entries[j].DisplayOrder
	})
}

// ToSummary projects the collection into its listing form.
func (c *Collection) ToSummary() Summary {
	return Summary{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Image:        c.Image,
		RequiresCode: c.RequiresCode,
	}
}

// # Field Identifiers

const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldImage        = "image"
	FieldParentID     = "parentId"
	FieldAccessCode   = "accessCode"
	FieldProductID    = "productId"
	FieldDisplayOrder = "displayOrder"
	FieldOrders       = "orders"
)
