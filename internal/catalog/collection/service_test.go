// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousseefah/prostore/internal/catalog/collection"
	"github.com/yousseefah/prostore/internal/catalog/product"
	"github.com/yousseefah/prostore/internal/platform/apperr"
	"github.com/yousseefah/prostore/internal/platform/dberr"
	"github.com/yousseefah/prostore/pkg/pointer"
	"github.com/yousseefah/prostore/pkg/uuidv7"
)

// # In-Memory Fakes

// fakeRepository implements collection.Repository over maps, honoring the
// same contract as the postgres store: memberships come back in insertion
// order, Delete guards against children, RemoveProduct reports missing
// memberships as not-found.
type fakeRepository struct {
	collections map[string]*collection.Collection
	order       []string // creation order for listing determinism
	clock       time.Time
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		collections: make(map[string]*collection.Collection),
		clock:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Millisecond)
	return f.clock
}

func cloneCollection(c *collection.Collection) *collection.Collection {
	clone := *c
	clone.Products = make([]collection.ProductEntry, len(c.Products))
	copy(clone.Products, c.Products)
	clone.Parent = nil
	clone.SubCollections = nil
	return &clone
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*collection.Collection, error) {
	stored, ok := f.collections[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return cloneCollection(stored), nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*collection.Collection, error) {
	for _, stored := range f.collections {
		if stored.Slug == slug {
			return cloneCollection(stored), nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) FindSummary(_ context.Context, id string) (*collection.Summary, error) {
	stored, ok := f.collections[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	summary := stored.ToSummary()
	return &summary, nil
}

func (f *fakeRepository) ListRoots(_ context.Context) ([]*collection.Collection, error) {
	var result []*collection.Collection
	for _, id := range f.order {
		stored, ok := f.collections[id]
		if ok && stored.ParentID == nil && stored.IsActive {
			result = append(result, cloneCollection(stored))
		}
	}
	return result, nil
}

func (f *fakeRepository) ListByParent(_ context.Context, parentID string) ([]*collection.Collection, error) {
	var result []*collection.Collection
	for _, id := range f.order {
		stored, ok := f.collections[id]
		if ok && stored.ParentID != nil && *stored.ParentID == parentID && stored.IsActive {
			result = append(result, cloneCollection(stored))
		}
	}
	return result, nil
}

func (f *fakeRepository) ChildSummaries(_ context.Context, parentID string) ([]collection.Summary, error) {
	summaries := make([]collection.Summary, 0)
	for _, id := range f.order {
		stored, ok := f.collections[id]
		if ok && stored.ParentID != nil && *stored.ParentID == parentID && stored.IsActive {
			summaries = append(summaries, stored.ToSummary())
		}
	}
	return summaries, nil
}

func (f *fakeRepository) CountByParent(_ context.Context, parentID string) (int, error) {
	count := 0
	for _, stored := range f.collections {
		if stored.ParentID != nil && *stored.ParentID == parentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.collections[id]
	return ok, nil
}

func (f *fakeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, stored := range f.collections {
		if stored.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) AncestorChain(_ context.Context, id string) ([]string, error) {
	var chain []string
	current := id
	for depth := 0; depth < collection.MaxAncestorDepth; depth++ {
		stored, ok := f.collections[current]
		if !ok {
			break
		}
		chain = append(chain, current)
		if stored.ParentID == nil {
			break
		}
		current = *stored.ParentID
	}
	return chain, nil
}

func (f *fakeRepository) Create(_ context.Context, c *collection.Collection) error {
	now := f.tick()
	c.CreatedAt = now
	c.UpdatedAt = now
	f.collections[c.ID] = cloneCollection(c)
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeRepository) Update(_ context.Context, c *collection.Collection) error {
	stored, ok := f.collections[c.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	c.UpdatedAt = f.tick()
	updated := cloneCollection(c)
	updated.Products = stored.Products
	updated.CreatedAt = stored.CreatedAt
	f.collections[c.ID] = updated
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.collections[id]; !ok {
		return dberr.ErrNotFound
	}
	for _, stored := range f.collections {
		if stored.ParentID != nil && *stored.ParentID == id {
			return apperr.InvalidOperation("Cannot delete a collection that still has sub-collections")
		}
	}
	delete(f.collections, id)
	return nil
}

func (f *fakeRepository) UpsertProduct(_ context.Context, collectionID, productID string, displayOrder int) error {
	stored, ok := f.collections[collectionID]
	if !ok {
		return dberr.ErrNotFound
	}
	for i := range stored.Products {
		if stored.Products[i].ProductID == productID {
			stored.Products[i].DisplayOrder = displayOrder
			return nil
		}
	}
	stored.Products = append(stored.Products, collection.ProductEntry{
		ProductID:    productID,
		DisplayOrder: displayOrder,
		AddedAt:      f.tick(),
		Product:      &product.Summary{ID: productID},
	})
	return nil
}

func (f *fakeRepository) RemoveProduct(_ context.Context, collectionID, productID string) error {
	stored, ok := f.collections[collectionID]
	if !ok {
		return dberr.ErrNotFound
	}
	for i := range stored.Products {
		if stored.Products[i].ProductID == productID {
			stored.Products = append(stored.Products[:i], stored.Products[i+1:]...)
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (f *fakeRepository) UpdateOrders(_ context.Context, collectionID string, orders []collection.ProductOrder) error {
	stored, ok := f.collections[collectionID]
	if !ok {
		return dberr.ErrNotFound
	}
	for _, order := range orders {
		for i := range stored.Products {
			if stored.Products[i].ProductID == order.ProductID {
				stored.Products[i].DisplayOrder = order.DisplayOrder
			}
		}
	}
	return nil
}

// fakeProducts implements product.Repository over a set of known ids.
type fakeProducts struct {
	known map[string]bool
}

func (f *fakeProducts) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

func (f *fakeProducts) FindSummary(_ context.Context, id string) (*product.Summary, error) {
	if !f.known[id] {
		return nil, apperr.NotFound("Product")
	}
	return &product.Summary{ID: id}, nil
}

// fakeCache counts invalidations and serves one canned listing.
type fakeCache struct {
	roots       []*collection.Collection
	invalidated int
	sets        int
}

func (f *fakeCache) GetRoots(_ context.Context) ([]*collection.Collection, error) {
	return f.roots, nil
}

func (f *fakeCache) SetRoots(_ context.Context, collections []*collection.Collection) error {
	f.roots = collections
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context) error {
	f.roots = nil
	f.invalidated++
	return nil
}

// # Test Harness

type serviceFixture struct {
	service  *collection.Service
	repo     *fakeRepository
	products *fakeProducts
	cache    *fakeCache
	ownerID  string
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newFakeRepository()
	products := &fakeProducts{known: make(map[string]bool)}
	cache := &fakeCache{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serviceFixture{
		service:  collection.NewService(repo, products, cache, logger),
		repo:     repo,
		products: products,
		cache:    cache,
		ownerID:  uuidv7.New(),
	}
}

func (fx *serviceFixture) newProduct(t *testing.T) string {
	t.Helper()
	id := uuidv7.New()
	fx.products.known[id] = true
	return id
}

func (fx *serviceFixture) mustCreate(t *testing.T, input collection.CreateInput) *collection.Collection {
	t.Helper()
	created, err := fx.service.Create(context.Background(), fx.ownerID, input)
	require.NoError(t, err)
	return created
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	assert.Equal(t, code, ae.Code)
}

// # Creation

/*
TestService_Create_AppliesDefaults verifies the placeholder fallbacks and
the empty initial membership list.
*/
func TestService_Create_AppliesDefaults(t *testing.T) {
	fx := newFixture(t)

	created := fx.mustCreate(t, collection.CreateInput{})

	assert.Equal(t, collection.DefaultName, created.Name)
	assert.Equal(t, collection.DefaultDescription, created.Description)
	assert.Equal(t, collection.DefaultImage, created.Image)
	assert.Equal(t, "sample-collection", created.Slug)
	assert.Equal(t, fx.ownerID, created.OwnerRef)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.ParentID)
	assert.Empty(t, created.Products)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

/*
TestService_Create_DuplicateNamesGetDistinctSlugs verifies that repeated
creates with the same name (including the all-defaults flow) keep
succeeding with deduplicated slugs instead of tripping the unique index.
*/
func TestService_Create_DuplicateNamesGetDistinctSlugs(t *testing.T) {
	fx := newFixture(t)

	first := fx.mustCreate(t, collection.CreateInput{})
	second := fx.mustCreate(t, collection.CreateInput{})
	third := fx.mustCreate(t, collection.CreateInput{})

	assert.Equal(t, "sample-collection", first.Slug)
	assert.Equal(t, "sample-collection-2", second.Slug)
	assert.Equal(t, "sample-collection-3", third.Slug)

	fetched, err := fx.service.GetBySlug(context.Background(), "sample-collection-2", "", false)
	require.NoError(t, err)
	assert.Equal(t, second.ID, fetched.ID)
}

func TestService_Create_MissingParent(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), fx.ownerID, collection.CreateInput{
		Name:     "Orphan",
		ParentID: pointer.To(uuidv7.New()),
	})

	assertCode(t, err, "NOT_FOUND")
}

func TestService_Create_GatedWithoutCode(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), fx.ownerID, collection.CreateInput{
		Name:         "VIP Deals",
		RequiresCode: true,
	})

	assertCode(t, err, "VALIDATION_ERROR")
}

func TestService_Create_GatedStoresOnlyHash(t *testing.T) {
	fx := newFixture(t)

	created := fx.mustCreate(t, collection.CreateInput{
		Name:         "VIP Deals",
		RequiresCode: true,
		AccessCode:   "OPEN-SESAME",
	})

	assert.True(t, created.RequiresCode)
	assert.NotEmpty(t, created.AccessCodeHash)
	assert.NotContains(t, created.AccessCodeHash, "OPEN-SESAME")
}

// # Hierarchy Guards

/*
TestService_Update_SelfParent verifies that a collection can never become
its own parent, regardless of its current shape.
*/
func TestService_Update_SelfParent(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Root"})

	_, err := fx.service.Update(context.Background(), created.ID, collection.UpdateInput{
		ParentID: &created.ID,
	})

	assertCode(t, err, "INVALID_OPERATION")
}

/*
TestService_Update_DeepCycle verifies that reparenting is rejected when the
target appears anywhere on the proposed parent's ancestor chain, not just
at the immediate level.
*/
func TestService_Update_DeepCycle(t *testing.T) {
	fx := newFixture(t)
	a := fx.mustCreate(t, collection.CreateInput{Name: "A"})
	b := fx.mustCreate(t, collection.CreateInput{Name: "B", ParentID: &a.ID})
	c := fx.mustCreate(t, collection.CreateInput{Name: "C", ParentID: &b.ID})

	// A → C would close the loop A → C → B → A.
	_, err := fx.service.Update(context.Background(), a.ID, collection.UpdateInput{
		ParentID: &c.ID,
	})

	assertCode(t, err, "INVALID_OPERATION")
}

func TestService_Update_ReparentToRoot(t *testing.T) {
	fx := newFixture(t)
	root := fx.mustCreate(t, collection.CreateInput{Name: "Root"})
	child := fx.mustCreate(t, collection.CreateInput{Name: "Child", ParentID: &root.ID})

	updated, err := fx.service.Update(context.Background(), child.ID, collection.UpdateInput{
		ParentID: pointer.To(""),
	})

	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)
}

func TestService_Update_PartialKeepsOmittedFields(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Phones", Description: "All phones", Image: "/images/phones.jpg"})

	updated, err := fx.service.Update(context.Background(), created.ID, collection.UpdateInput{
		Name: pointer.To("Smartphones"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Smartphones", updated.Name)
	assert.Equal(t, "All phones", updated.Description)
	assert.Equal(t, "/images/phones.jpg", updated.Image)
	// Slug stays stable across renames so storefront URLs keep working.
	assert.Equal(t, "phones", updated.Slug)
}

func TestService_Update_EnableGatingWithoutCode(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})

	_, err := fx.service.Update(context.Background(), created.ID, collection.UpdateInput{
		RequiresCode: pointer.To(true),
	})

	assertCode(t, err, "VALIDATION_ERROR")
}

// # Deletion

/*
TestService_Delete_ChildBlocks verifies that a collection with surviving
children cannot be deleted until the children are gone.
*/
func TestService_Delete_ChildBlocks(t *testing.T) {
	fx := newFixture(t)
	root := fx.mustCreate(t, collection.CreateInput{Name: "Root"})
	child := fx.mustCreate(t, collection.CreateInput{Name: "Child", ParentID: &root.ID})

	err := fx.service.Delete(context.Background(), root.ID)
	assertCode(t, err, "INVALID_OPERATION")

	require.NoError(t, fx.service.Delete(context.Background(), child.ID))
	require.NoError(t, fx.service.Delete(context.Background(), root.ID))
}

func TestService_Delete_Missing(t *testing.T) {
	fx := newFixture(t)

	err := fx.service.Delete(context.Background(), uuidv7.New())
	assertCode(t, err, "NOT_FOUND")
}

// # Membership

/*
TestService_AddProduct_Idempotent verifies upsert semantics: repeating an
add leaves exactly one membership entry carrying the latest displayOrder.
*/
func TestService_AddProduct_Idempotent(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	productID := fx.newProduct(t)

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: productID, DisplayOrder: 5})
	require.NoError(t, err)

	updated, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: productID, DisplayOrder: 5})
	require.NoError(t, err)

	require.Len(t, updated.Products, 1)
	assert.Equal(t, productID, updated.Products[0].ProductID)
	assert.Equal(t, 5, updated.Products[0].DisplayOrder)
}

/*
TestService_AddProduct_PopulatesParentSummary verifies that mutation
responses carry the parent summary, matching what a subsequent Get would
return minus the children.
*/
func TestService_AddProduct_PopulatesParentSummary(t *testing.T) {
	fx := newFixture(t)
	root := fx.mustCreate(t, collection.CreateInput{Name: "Phones"})
	child := fx.mustCreate(t, collection.CreateInput{Name: "Day 1", ParentID: pointer.To(root.ID)})
	productID := fx.newProduct(t)

	updated, err := fx.service.AddProduct(context.Background(), child.ID, collection.AddProductInput{ProductID: productID})
	require.NoError(t, err)

	require.NotNil(t, updated.Parent)
	assert.Equal(t, root.ID, updated.Parent.ID)
	assert.Equal(t, "Phones", updated.Parent.Name)
	assert.Nil(t, updated.SubCollections)
}

func TestService_AddProduct_MissingProduct(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: uuidv7.New()})
	assertCode(t, err, "NOT_FOUND")
}

func TestService_AddProduct_MissingCollection(t *testing.T) {
	fx := newFixture(t)
	productID := fx.newProduct(t)

	_, err := fx.service.AddProduct(context.Background(), uuidv7.New(), collection.AddProductInput{ProductID: productID})
	assertCode(t, err, "NOT_FOUND")
}

/*
TestService_Get_OrderStability verifies that products added with orders
[3, 1, 2] come back sorted ascending, deterministically across repeated
reads with no intervening writes.
*/
func TestService_Get_OrderStability(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})

	first, second, third := fx.newProduct(t), fx.newProduct(t), fx.newProduct(t)
	for _, add := range []collection.AddProductInput{
		{ProductID: first, DisplayOrder: 3},
		{ProductID: second, DisplayOrder: 1},
		{ProductID: third, DisplayOrder: 2},
	} {
		_, err := fx.service.AddProduct(context.Background(), created.ID, add)
		require.NoError(t, err)
	}

	for range [3]int{} {
		fetched, err := fx.service.Get(context.Background(), created.ID, "", false)
		require.NoError(t, err)
		require.Len(t, fetched.Products, 3)
		assert.Equal(t, []string{second, third, first}, []string{
			fetched.Products[0].ProductID,
			fetched.Products[1].ProductID,
			fetched.Products[2].ProductID,
		})
	}
}

/*
TestService_Get_TiesKeepInsertionOrder verifies the stable sort: equal
displayOrder values preserve the order products were added in.
*/
func TestService_Get_TiesKeepInsertionOrder(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})

	first, second, third := fx.newProduct(t), fx.newProduct(t), fx.newProduct(t)
	for _, id := range []string{first, second, third} {
		_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: id, DisplayOrder: 0})
		require.NoError(t, err)
	}

	fetched, err := fx.service.Get(context.Background(), created.ID, "", false)
	require.NoError(t, err)
	require.Len(t, fetched.Products, 3)
	assert.Equal(t, first, fetched.Products[0].ProductID)
	assert.Equal(t, second, fetched.Products[1].ProductID)
	assert.Equal(t, third, fetched.Products[2].ProductID)
}

/*
TestService_RemoveProduct_ThenAbsent verifies that removing a membership
twice fails the second time.
*/
func TestService_RemoveProduct_ThenAbsent(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	productID := fx.newProduct(t)

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: productID})
	require.NoError(t, err)

	updated, err := fx.service.RemoveProduct(context.Background(), created.ID, productID)
	require.NoError(t, err)
	assert.Empty(t, updated.Products)

	_, err = fx.service.RemoveProduct(context.Background(), created.ID, productID)
	assertCode(t, err, "NOT_FOUND")
}

/*
TestService_Reorder_IgnoresNonMembers verifies that reorder instructions
for products outside the collection change nothing and do not error.
*/
func TestService_Reorder_IgnoresNonMembers(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	member := fx.newProduct(t)
	outsider := fx.newProduct(t)

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: member, DisplayOrder: 1})
	require.NoError(t, err)

	updated, err := fx.service.Reorder(context.Background(), created.ID, []collection.ProductOrder{
		{ProductID: outsider, DisplayOrder: 9},
	})

	require.NoError(t, err)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, member, updated.Products[0].ProductID)
	assert.Equal(t, 1, updated.Products[0].DisplayOrder)
}

func TestService_Reorder_LastDuplicateWins(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	productID := fx.newProduct(t)

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: productID, DisplayOrder: 0})
	require.NoError(t, err)

	updated, err := fx.service.Reorder(context.Background(), created.ID, []collection.ProductOrder{
		{ProductID: productID, DisplayOrder: 4},
		{ProductID: productID, DisplayOrder: 7},
	})

	require.NoError(t, err)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, 7, updated.Products[0].DisplayOrder)
}

// # Access Gating

func TestService_Get_AccessGate(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{
		Name:         "VIP Deals",
		RequiresCode: true,
		AccessCode:   "VIP2026",
	})

	tests := []struct {
		name          string
		presentedCode string
		isAdmin       bool
		wantCode      string
	}{
		{"no_code", "", false, "FORBIDDEN"},
		{"wrong_code", "GUESS", false, "FORBIDDEN"},
		{"correct_code", "VIP2026", false, ""},
		{"admin_bypass", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetched, err := fx.service.Get(context.Background(), created.ID, tt.presentedCode, tt.isAdmin)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, fetched.ID)
		})
	}
}

// # Listings

func TestService_ListRoots_RedactsGatedProducts(t *testing.T) {
	fx := newFixture(t)
	open := fx.mustCreate(t, collection.CreateInput{Name: "Open"})
	gated := fx.mustCreate(t, collection.CreateInput{Name: "Gated", RequiresCode: true, AccessCode: "VIP2026"})

	productID := fx.newProduct(t)
	for _, id := range []string{open.ID, gated.ID} {
		_, err := fx.service.AddProduct(context.Background(), id, collection.AddProductInput{ProductID: productID})
		require.NoError(t, err)
	}

	roots, err := fx.service.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 2)

	byName := map[string]*collection.Collection{}
	for _, root := range roots {
		byName[root.Name] = root
	}
	assert.Len(t, byName["Open"].Products, 1)
	assert.Empty(t, byName["Gated"].Products)
}

func TestService_ListRoots_ExcludesInactiveAndChildren(t *testing.T) {
	fx := newFixture(t)
	active := fx.mustCreate(t, collection.CreateInput{Name: "Active"})
	fx.mustCreate(t, collection.CreateInput{Name: "Child", ParentID: &active.ID})

	hidden := fx.mustCreate(t, collection.CreateInput{Name: "Hidden"})
	_, err := fx.service.Update(context.Background(), hidden.ID, collection.UpdateInput{
		IsActive: pointer.To(false),
	})
	require.NoError(t, err)

	roots, err := fx.service.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Active", roots[0].Name)
}

func TestService_ListRoots_ServesCachedListing(t *testing.T) {
	fx := newFixture(t)
	fx.mustCreate(t, collection.CreateInput{Name: "Root"})

	first, err := fx.service.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, fx.cache.sets)

	// A second listing must be served from the cache without a new Set.
	second, err := fx.service.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, fx.cache.sets)
}

func TestService_Mutations_InvalidateListingCache(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Root"})
	productID := fx.newProduct(t)

	before := fx.cache.invalidated

	_, err := fx.service.AddProduct(context.Background(), created.ID, collection.AddProductInput{ProductID: productID})
	require.NoError(t, err)
	_, err = fx.service.Update(context.Background(), created.ID, collection.UpdateInput{Name: pointer.To("Renamed")})
	require.NoError(t, err)

	assert.Equal(t, before+2, fx.cache.invalidated)
}

// # End To End

/*
TestService_EndToEnd runs the full lifecycle: a root, a child, two ordered
products, hierarchy navigation, and the delete guard.
*/
func TestService_EndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	root := fx.mustCreate(t, collection.CreateInput{Name: "Phones"})
	child := fx.mustCreate(t, collection.CreateInput{Name: "Day 1", ParentID: &root.ID})

	p1, p2 := fx.newProduct(t), fx.newProduct(t)
	_, err := fx.service.AddProduct(ctx, child.ID, collection.AddProductInput{ProductID: p1, DisplayOrder: 0})
	require.NoError(t, err)
	_, err = fx.service.AddProduct(ctx, child.ID, collection.AddProductInput{ProductID: p2, DisplayOrder: 1})
	require.NoError(t, err)

	fetchedRoot, err := fx.service.Get(ctx, root.ID, "", false)
	require.NoError(t, err)
	require.Len(t, fetchedRoot.SubCollections, 1)
	assert.Equal(t, child.ID, fetchedRoot.SubCollections[0].ID)

	fetchedChild, err := fx.service.Get(ctx, child.ID, "", false)
	require.NoError(t, err)
	require.Len(t, fetchedChild.Products, 2)
	assert.Equal(t, p1, fetchedChild.Products[0].ProductID)
	assert.Equal(t, p2, fetchedChild.Products[1].ProductID)
	require.NotNil(t, fetchedChild.Parent)
	assert.Equal(t, root.ID, fetchedChild.Parent.ID)

	err = fx.service.Delete(ctx, root.ID)
	assertCode(t, err, "INVALID_OPERATION")

	require.NoError(t, fx.service.Delete(ctx, child.ID))
	require.NoError(t, fx.service.Delete(ctx, root.ID))
}

// # Slug Lookup

func TestService_GetBySlug(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Summer Sale"})

	fetched, err := fx.service.GetBySlug(context.Background(), "summer-sale", "", false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	_, err = fx.service.GetBySlug(context.Background(), "no-such-slug", "", false)
	assertCode(t, err, "NOT_FOUND")
}
