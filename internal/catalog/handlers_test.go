package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/richardnixondev/smartcart/internal/catalog"
	"github.com/richardnixondev/smartcart/internal/compare"
)

type fakeQueries struct {
	products   []compare.Product
	stores     []compare.Store
	categories []catalog.Category

	lastParams catalog.ListParams
}

func (f *fakeQueries) ListProducts(_ context.Context, params catalog.ListParams) ([]compare.Product, error) {
	f.lastParams = params
	start := (params.Page - 1) * params.Limit
	if start >= len(f.products) {
		return nil, nil
	}
	end := start + params.Limit
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[start:end], nil
}

func (f *fakeQueries) CountProducts(context.Context, catalog.ListParams) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeQueries) GetProduct(_ context.Context, id int64) (compare.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return compare.Product{}, catalog.ErrProductNotFound
}

func (f *fakeQueries) ListStores(context.Context) ([]compare.Store, error) {
	return f.stores, nil
}

func (f *fakeQueries) ListCategories(context.Context) ([]catalog.Category, error) {
	return f.categories, nil
}

func newHandler(t *testing.T, q catalog.Querier) *catalog.Handler {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: q, DefaultLimit: 20, MaxLimit: 100})
	require.NoError(t, err)
	return &catalog.Handler{Svc: svc}
}

func TestProductsList(t *testing.T) {
	queries := &fakeQueries{
		products: []compare.Product{
			{ID: 1, Name: "Avonmore Milk 2L", Brand: "Avonmore"},
			{ID: 2, Name: "Barry's Tea 80pk", Brand: "Barry's"},
		},
	}
	handler := newHandler(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	var resp struct {
		Data       []compare.Product `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			PerPage    int   `json:"per_page"`
			TotalItems int64 `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Avonmore Milk 2L", resp.Data[0].Name)
	require.Equal(t, 1, resp.Pagination.PerPage)
	require.Equal(t, int64(2), resp.Pagination.TotalItems)
}

func TestProductsListRejectsBadFilters(t *testing.T) {
	handler := newHandler(t, &fakeQueries{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category_id=cheese", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductsListClampsLimit(t *testing.T) {
	queries := &fakeQueries{}
	handler := newHandler(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=9999", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 100, queries.lastParams.Limit)
}

func TestProductDetail(t *testing.T) {
	queries := &fakeQueries{products: []compare.Product{{ID: 7, Name: "Kerrygold Butter 454g"}}}
	handler := newHandler(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.ProductDetail(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data compare.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Kerrygold Butter 454g", resp.Data.Name)
}

func TestProductDetailNotFound(t *testing.T) {
	handler := newHandler(t, &fakeQueries{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/404", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "404")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.ProductDetail(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoresAndCategories(t *testing.T) {
	queries := &fakeQueries{
		stores:     []compare.Store{{ID: 1, Name: "Aldi", Slug: "aldi"}},
		categories: []catalog.Category{{ID: 1, Name: "Dairy", Slug: "dairy"}},
	}
	handler := newHandler(t, queries)

	rec := httptest.NewRecorder()
	handler.Stores(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var storesResp struct {
		Data []compare.Store `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &storesResp))
	require.Len(t, storesResp.Data, 1)
	require.Equal(t, "aldi", storesResp.Data[0].Slug)

	rec2 := httptest.NewRecorder()
	handler.Categories(rec2, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec2.Code)
	var catResp struct {
		Data []catalog.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &catResp))
	require.Len(t, catResp.Data, 1)
	require.Equal(t, "dairy", catResp.Data[0].Slug)
}
