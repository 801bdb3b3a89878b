package prices_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/richardnixondev/smartcart/internal/catalog"
	"github.com/richardnixondev/smartcart/internal/compare"
	"github.com/richardnixondev/smartcart/internal/prices"
)

type fakeQueries struct {
	product compare.Product
	history []prices.StoreHistory

	lastSince time.Time
}

func (f *fakeQueries) GetProduct(_ context.Context, id int64) (compare.Product, error) {
	if id != f.product.ID {
		return compare.Product{}, catalog.ErrProductNotFound
	}
	return f.product, nil
}

func (f *fakeQueries) PriceHistory(_ context.Context, _ int64, since time.Time) ([]prices.StoreHistory, error) {
	f.lastSince = since
	return f.history, nil
}

func historyRequest(productID, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID+"/prices"+query, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	queries := &fakeQueries{
		product: compare.Product{ID: 5, Name: "Brennans Bread 800g"},
		history: []prices.StoreHistory{
			{
				Store: compare.Store{ID: 1, Name: "Tesco", Slug: "tesco"},
				Points: []prices.PricePoint{
					{Price: decimal.RequireFromString("1.89"), InStock: true, ScrapedAt: now.AddDate(0, 0, -2)},
					{Price: decimal.RequireFromString("1.95"), InStock: true, ScrapedAt: now.AddDate(0, 0, -1)},
				},
			},
		},
	}
	svc, err := prices.NewService(prices.ServiceConfig{
		Queries:     queries,
		DefaultDays: 30,
		MaxDays:     90,
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	handler := &prices.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	handler.History(rec, historyRequest("5", "?days=7"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, now.AddDate(0, 0, -7), queries.lastSince)

	var resp struct {
		Data struct {
			Product compare.Product       `json:"product"`
			Days    int                   `json:"days"`
			Stores  []prices.StoreHistory `json:"stores"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(5), resp.Data.Product.ID)
	require.Equal(t, 7, resp.Data.Days)
	require.Len(t, resp.Data.Stores, 1)
	require.Len(t, resp.Data.Stores[0].Points, 2)
}

func TestHistoryClampsDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	queries := &fakeQueries{product: compare.Product{ID: 5}}
	svc, err := prices.NewService(prices.ServiceConfig{
		Queries: queries,
		MaxDays: 90,
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)
	handler := &prices.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	handler.History(rec, historyRequest("5", "?days=500"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, now.AddDate(0, 0, -90), queries.lastSince)

	var resp struct {
		Data struct {
			Days   int                   `json:"days"`
			Stores []prices.StoreHistory `json:"stores"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 90, resp.Data.Days)
	require.NotNil(t, resp.Data.Stores)
	require.Empty(t, resp.Data.Stores)
}

func TestHistoryDefaultsDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	queries := &fakeQueries{product: compare.Product{ID: 5}}
	svc, err := prices.NewService(prices.ServiceConfig{
		Queries:     queries,
		DefaultDays: 14,
		MaxDays:     90,
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	handler := &prices.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	handler.History(rec, historyRequest("5", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, now.AddDate(0, 0, -14), queries.lastSince)
}

func TestHistoryUnknownProduct(t *testing.T) {
	svc, err := prices.NewService(prices.ServiceConfig{Queries: &fakeQueries{product: compare.Product{ID: 1}}})
	require.NoError(t, err)
	handler := &prices.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	handler.History(rec, historyRequest("99", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRejectsBadDays(t *testing.T) {
	svc, err := prices.NewService(prices.ServiceConfig{Queries: &fakeQueries{product: compare.Product{ID: 1}}})
	require.NoError(t, err)
	handler := &prices.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	handler.History(rec, historyRequest("1", "?days=zero"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
