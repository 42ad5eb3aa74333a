// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yousseefah/prostore/internal/platform/apperr"
	"github.com/yousseefah/prostore/internal/platform/constants"
	"github.com/yousseefah/prostore/internal/platform/middleware"
	requestutil "github.com/yousseefah/prostore/internal/platform/request"
	"github.com/yousseefah/prostore/internal/platform/respond"
	"github.com/yousseefah/prostore/internal/platform/sec"
	"github.com/yousseefah/prostore/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for collection operations.
//
// Reads are public (gated collections enforce their access code in the
// service); every mutation requires the admin role. All {id} and
// {productId} path segments are shape-checked before the service runs.
type Handler struct {
	service *Service
}

// NewHandler constructs a new collection [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with collection endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Catalog Reads
	router.Get("/", handler.listRootCollections)
	router.Get("/by-slug/{slug}", handler.getCollectionBySlug)
	router.Get("/{id}", handler.getCollection)
	router.Get("/{id}/subcollections", handler.listChildren)

	// ## Administrative Mutations
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.createCollection)
		admin.Put("/{id}", handler.updateCollection)
		admin.Delete("/{id}", handler.deleteCollection)
		admin.Post("/{id}/products", handler.addProduct)
		admin.Put("/{id}/products/reorder", handler.reorderProducts)
		admin.Delete("/{id}/products/{productId}", handler.removeProduct)
	})

	return router
}

// # Catalog Read Endpoints

/*
GET /api/v1/collections.

Description: Returns all active root collections with populated product
summaries. Gated collections appear with their products redacted.

Response:
  - 200: []Collection: Unpaginated listing
*/
func (handler *Handler) listRootCollections(writer http.ResponseWriter, request *http.Request) {
	collections, err := handler.service.ListRoots(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collections)
}

/*
GET /api/v1/collections/{id}.

Description: Returns one collection with sorted product summaries, a parent
summary, and its active sub-collections. A collection flagged requiresCode
demands a matching X-Access-Code header unless the caller is an admin.

Request:
  - id: string (UUID)
  - X-Access-Code: string (Header, optional)

Response:
  - 200: Collection: Success
  - 400: ErrInvalidID: Malformed identifier
  - 403: ErrForbidden: Missing or wrong access code
  - 404: ErrNotFound: Collection not found
*/
func (handler *Handler) getCollection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Get(request.Context(), id, accessCode(request), isAdmin(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collection)
}

/*
GET /api/v1/collections/by-slug/{slug}.

Description: Slug-based variant of the detail view for storefront URLs.
Same population and gating behavior as the id route.

Response:
  - 200: Collection: Success
  - 403: ErrForbidden: Missing or wrong access code
  - 404: ErrNotFound: Collection not found
*/
func (handler *Handler) getCollectionBySlug(writer http.ResponseWriter, request *http.Request) {
	slug := requestutil.Param(request, "slug")

	collection, err := handler.service.GetBySlug(request.Context(), slug, accessCode(request), isAdmin(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collection)
}

/*
GET /api/v1/collections/{id}/subcollections.

Description: Lists the active direct children of a collection with
populated product summaries; gated children have products redacted.

Response:
  - 200: []Collection: Success
  - 400: ErrInvalidID: Malformed identifier
*/
func (handler *Handler) listChildren(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collections, err := handler.service.ListChildren(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collections)
}

// # Administrative Endpoints

/*
POST /api/v1/collections.

Description: Creates a new, empty collection. Omitted display fields fall
back to placeholder defaults; parentId, when present, must reference an
existing collection.

Request (Body):
  - CreateInput JSON object

Response:
  - 201: Collection: Created entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Admin only
  - 404: ErrNotFound: Parent collection not found
*/
func (handler *Handler) createCollection(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Create(request.Context(), ownerID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, collection)
}

/*
PUT /api/v1/collections/{id}.

Description: Partial update; omitted fields retain prior values. Rejects
self-parenting and any reparent that would create a cycle.

Request:
  - id: string (UUID)
  - body: UpdateInput (JSON)

Response:
  - 200: Collection: Updated entity
  - 400: ErrInvalidID/InvalidOperation/Validation
  - 404: ErrNotFound: Collection or parent not found
*/
func (handler *Handler) updateCollection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collection)
}

/*
DELETE /api/v1/collections/{id}.

Description: Removes a child-free collection and its memberships.

Response:
  - 200: Message: Success
  - 400: ErrInvalidID/InvalidOperation: Children still exist
  - 404: ErrNotFound: Collection not found
*/
func (handler *Handler) deleteCollection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Collection removed"})
}

// # Membership Endpoints

/*
POST /api/v1/collections/{id}/products.

Description: Adds a product to the collection's ordered membership, or
updates its displayOrder in place when already a member.

Request (Body):
  - { "productId": "string", "displayOrder": int }

Response:
  - 201: Collection: Updated entity
  - 400: ErrInvalidID/ErrInvalidJSON
  - 404: ErrNotFound: Collection or product not found
*/
func (handler *Handler) addProduct(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input AddProductInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !validate.IsUUID(input.ProductID) {
		respond.Error(writer, request, apperr.InvalidID(FieldProductID))
		return
	}

	collection, err := handler.service.AddProduct(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, collection)
}

/*
DELETE /api/v1/collections/{id}/products/{productId}.

Description: Removes exactly one product membership.

Response:
  - 200: Collection: Updated entity
  - 400: ErrInvalidID: Malformed identifier
  - 404: ErrNotFound: Collection missing or product not a member
*/
func (handler *Handler) removeProduct(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	productID, err := requestutil.UUID(request, "productId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.RemoveProduct(request.Context(), id, productID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collection)
}

/*
PUT /api/v1/collections/{id}/products/reorder.

Description: Applies a batch of displayOrder changes atomically. Entries
referencing non-members are silently ignored; the last entry wins for
duplicate productIds.

Request (Body):
  - { "orders": [ { "productId": "string", "displayOrder": int } ] }

Response:
  - 200: Collection: Updated entity
  - 400: ErrInvalidID/ErrInvalidJSON
  - 404: ErrNotFound: Collection not found
*/
func (handler *Handler) reorderProducts(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Orders []ProductOrder `json:"orders"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Reorder(request.Context(), id, input.Orders)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, collection)
}

// # Request Helpers

// accessCode reads the caller-presented gating code.
func accessCode(request *http.Request) string {
	return request.Header.Get(constants.HeaderXAccessCode)
}

// isAdmin reports whether the request carries admin claims.
func isAdmin(request *http.Request) bool {
	return requestutil.Claims(request).IsAdmin()
}
