// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousseefah/prostore/internal/catalog/collection"
	"github.com/yousseefah/prostore/internal/platform/constants"
	"github.com/yousseefah/prostore/internal/platform/ctxutil"
	"github.com/yousseefah/prostore/internal/platform/sec"
	"github.com/yousseefah/prostore/pkg/uuidv7"
)

// newTestRouter mounts the collection routes the way internal/api does,
// minus the global middleware chain (claims are injected per request).
func newTestRouter(fx *serviceFixture) http.Handler {
	router := chi.NewRouter()
	router.Mount("/api/v1/collections", collection.NewHandler(fx.service).Routes())
	return router
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, claims *sec.AuthClaims) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(encoded)
	} else {
		payload = &bytes.Buffer{}
	}

	request := httptest.NewRequest(method, path, payload)
	if claims != nil {
		request = request.WithContext(ctxutil.WithAuthUser(context.Background(), claims))
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func adminClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: uuidv7.New(), Role: string(sec.RoleAdmin)}
}

func customerClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: uuidv7.New(), Role: string(sec.RoleCustomer)}
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

// # Identifier Validation

/*
TestHandler_MalformedID verifies the fast-fail shape check: malformed {id}
segments are rejected with 400 before the service runs.
*/
func TestHandler_MalformedID(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)

	tests := []struct {
		name   string
		method string
		path   string
		claims *sec.AuthClaims
	}{
		{"get", http.MethodGet, "/api/v1/collections/not-a-uuid", nil},
		{"subcollections", http.MethodGet, "/api/v1/collections/12345/subcollections", nil},
		{"update", http.MethodPut, "/api/v1/collections/not-a-uuid", adminClaims()},
		{"delete", http.MethodDelete, "/api/v1/collections/xxx", adminClaims()},
		{"remove_product", http.MethodDelete,
			fmt.Sprintf("/api/v1/collections/%s/products/not-a-uuid", uuidv7.New()), adminClaims()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, router, tt.method, tt.path, map[string]any{}, tt.claims)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			envelope := decodeEnvelope(t, recorder)
			assert.Equal(t, "INVALID_ID", envelope["code"])
		})
	}
}

// # Authorization

func TestHandler_MutationsRequireAdmin(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	body := map[string]any{"name": "Phones"}

	// Anonymous request is rejected with 401.
	recorder := doRequest(t, router, http.MethodPost, "/api/v1/collections", body, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// An authenticated customer is rejected with 403.
	recorder = doRequest(t, router, http.MethodPost, "/api/v1/collections", body, customerClaims())
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// An admin succeeds.
	recorder = doRequest(t, router, http.MethodPost, "/api/v1/collections", body, adminClaims())
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

// # Catalog Reads

func TestHandler_GetCollection(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Phones"})

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/collections/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	envelope := decodeEnvelope(t, recorder)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, created.ID, data["id"])
	assert.Equal(t, "Phones", data["name"])

	// The bcrypt hash must never appear in any response.
	assert.NotContains(t, recorder.Body.String(), "accessCodeHash")
}

func TestHandler_GetCollection_NotFound(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/collections/"+uuidv7.New(), nil, nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "NOT_FOUND", envelope["code"])
}

func TestHandler_GatedCollection_AccessCodeHeader(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{
		Name:         "VIP Deals",
		RequiresCode: true,
		AccessCode:   "VIP2026",
	})

	// Without the header the gate holds.
	recorder := doRequest(t, router, http.MethodGet, "/api/v1/collections/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// With the matching code the contents are disclosed.
	request := httptest.NewRequest(http.MethodGet, "/api/v1/collections/"+created.ID, nil)
	request.Header.Set(constants.HeaderXAccessCode, "VIP2026")
	verified := httptest.NewRecorder()
	router.ServeHTTP(verified, request)
	assert.Equal(t, http.StatusOK, verified.Code)

	// Admins bypass the gate entirely.
	recorder = doRequest(t, router, http.MethodGet, "/api/v1/collections/"+created.ID, nil, adminClaims())
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_GetBySlug(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Summer Sale"})

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/collections/by-slug/summer-sale", nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, created.ID, data["id"])
}

// # Mutations

func TestHandler_DeleteWithChildren(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	root := fx.mustCreate(t, collection.CreateInput{Name: "Root"})
	fx.mustCreate(t, collection.CreateInput{Name: "Child", ParentID: &root.ID})

	recorder := doRequest(t, router, http.MethodDelete, "/api/v1/collections/"+root.ID, nil, adminClaims())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "INVALID_OPERATION", envelope["code"])
}

func TestHandler_DeleteReturnsMessage(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Gone"})

	recorder := doRequest(t, router, http.MethodDelete, "/api/v1/collections/"+created.ID, nil, adminClaims())

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "Collection removed", data["message"])
}

func TestHandler_AddProduct(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	productID := fx.newProduct(t)

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/collections/"+created.ID+"/products",
		collection.AddProductInput{ProductID: productID, DisplayOrder: 2}, adminClaims())

	require.Equal(t, http.StatusCreated, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]any)
	products := data["products"].([]any)
	require.Len(t, products, 1)
	entry := products[0].(map[string]any)
	assert.Equal(t, productID, entry["productId"])
	assert.Equal(t, float64(2), entry["displayOrder"])
}

func TestHandler_AddProduct_MalformedProductID(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/collections/"+created.ID+"/products",
		map[string]any{"productId": "not-a-uuid"}, adminClaims())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "INVALID_ID", envelope["code"])
}

func TestHandler_Reorder(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)
	created := fx.mustCreate(t, collection.CreateInput{Name: "Deals"})
	first, second := fx.newProduct(t), fx.newProduct(t)

	for order, id := range map[int]string{0: first, 1: second} {
		_, err := fx.service.AddProduct(context.Background(), created.ID,
			collection.AddProductInput{ProductID: id, DisplayOrder: order})
		require.NoError(t, err)
	}

	recorder := doRequest(t, router, http.MethodPut, "/api/v1/collections/"+created.ID+"/products/reorder",
		map[string]any{"orders": []collection.ProductOrder{
			{ProductID: first, DisplayOrder: 5},
			{ProductID: second, DisplayOrder: 1},
		}}, adminClaims())

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]any)
	products := data["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, second, products[0].(map[string]any)["productId"])
	assert.Equal(t, first, products[1].(map[string]any)["productId"])
}

func TestHandler_InvalidJSONBody(t *testing.T) {
	fx := newFixture(t)
	router := newTestRouter(fx)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/collections", bytes.NewBufferString("{not json"))
	request = request.WithContext(ctxutil.WithAuthUser(context.Background(), adminClaims()))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
}
