package basket_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/richardnixondev/smartcart/internal/basket"
	"github.com/richardnixondev/smartcart/internal/compare"
	"github.com/richardnixondev/smartcart/internal/obs"
)

func TestMain(m *testing.M) {
	obs.MustRegisterDomainMetrics("smartcart_test", prometheus.NewRegistry())
	m.Run()
}

type fakeQueries struct {
	offers map[int64]map[int64]compare.Offer
	stores map[int64]compare.Store
}

func (f *fakeQueries) OffersForBasket(context.Context, []int64) (map[int64]map[int64]compare.Offer, error) {
	return f.offers, nil
}

func (f *fakeQueries) StoreMap(context.Context) (map[int64]compare.Store, error) {
	return f.stores, nil
}

type memBaskets struct {
	saved map[uuid.UUID]basket.SavedBasket
}

func (m *memBaskets) SaveBasket(_ context.Context, b basket.SavedBasket) error {
	if m.saved == nil {
		m.saved = make(map[uuid.UUID]basket.SavedBasket)
	}
	m.saved[b.ID] = b
	return nil
}

func (m *memBaskets) GetBasket(_ context.Context, id uuid.UUID) (basket.SavedBasket, error) {
	b, ok := m.saved[id]
	if !ok {
		return basket.SavedBasket{}, basket.ErrBasketNotFound
	}
	return b, nil
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func offer(t *testing.T, storeID, productID int64, price string) compare.Offer {
	t.Helper()
	return compare.Offer{
		StoreID:   storeID,
		ProductID: productID,
		Price:     decPtr(t, price),
		InStock:   true,
		ScrapedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
	}
}

func irishStores() map[int64]compare.Store {
	return map[int64]compare.Store{
		1: {ID: 1, Name: "Tesco", Slug: "tesco"},
		2: {ID: 2, Name: "Aldi", Slug: "aldi"},
	}
}

func newHandler(t *testing.T, q basket.Querier, b basket.Baskets) *basket.Handler {
	t.Helper()
	svc, err := basket.NewService(basket.ServiceConfig{Queries: q, Baskets: b})
	require.NoError(t, err)
	return &basket.Handler{Svc: svc}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCompare(t *testing.T) {
	queries := &fakeQueries{
		offers: map[int64]map[int64]compare.Offer{
			1: {10: offer(t, 1, 10, "2.00"), 11: offer(t, 1, 11, "3.00")},
			2: {10: offer(t, 2, 10, "1.50")},
		},
		stores: irishStores(),
	}
	handler := newHandler(t, queries, &memBaskets{})

	rec := postJSON(t, handler.Compare, "/api/v1/baskets/compare", basket.CompareInput{
		Items: []compare.BasketItem{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data basket.CompareResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Stores, 2)

	// Rows come back in store name order.
	aldi, tesco := resp.Data.Stores[0], resp.Data.Stores[1]
	require.Equal(t, "Aldi", aldi.Store.Name)
	require.True(t, aldi.Total.Equal(decimal.RequireFromString("3.00")), "got %s", aldi.Total)
	require.Equal(t, 1, aldi.Matched)
	require.Equal(t, 1, aldi.Unmatched)
	require.False(t, aldi.FullCoverage)

	require.Equal(t, "Tesco", tesco.Store.Name)
	require.True(t, tesco.Total.Equal(decimal.RequireFromString("7.00")), "got %s", tesco.Total)
	require.Equal(t, 2, tesco.Matched)
	require.True(t, tesco.FullCoverage)

	// Aldi is cheaper even without full coverage.
	require.Equal(t, []int64{2}, resp.Data.CheapestStoreIDs)
}

func TestCompareRejectsEmptyBasket(t *testing.T) {
	handler := newHandler(t, &fakeQueries{stores: irishStores()}, &memBaskets{})

	rec := postJSON(t, handler.Compare, "/api/v1/baskets/compare", basket.CompareInput{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION", resp.Error.Code)
}

func TestCompareRejectsZeroQuantity(t *testing.T) {
	handler := newHandler(t, &fakeQueries{stores: irishStores()}, &memBaskets{})

	rec := postJSON(t, handler.Compare, "/api/v1/baskets/compare", basket.CompareInput{
		Items: []compare.BasketItem{{ProductID: 10, Quantity: 0}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareNoStores(t *testing.T) {
	handler := newHandler(t, &fakeQueries{stores: map[int64]compare.Store{}}, &memBaskets{})

	rec := postJSON(t, handler.Compare, "/api/v1/baskets/compare", basket.CompareInput{
		Items: []compare.BasketItem{{ProductID: 10, Quantity: 1}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndGet(t *testing.T) {
	baskets := &memBaskets{}
	fixed := uuid.MustParse("7b65d3a4-4f5e-4a2c-9a37-6a4a0c5be111")
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	svc, err := basket.NewService(basket.ServiceConfig{
		Queries: &fakeQueries{stores: irishStores()},
		Baskets: baskets,
		Now:     func() time.Time { return now },
		NewID:   func() uuid.UUID { return fixed },
	})
	require.NoError(t, err)
	handler := &basket.Handler{Svc: svc}

	rec := postJSON(t, handler.Create, "/api/v1/baskets", basket.SaveInput{
		Name:  "Weekly shop",
		Items: []compare.BasketItem{{ProductID: 10, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data basket.SavedBasket `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, fixed, created.Data.ID)
	require.Equal(t, "Weekly shop", created.Data.Name)
	require.Equal(t, now, created.Data.CreatedAt)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets/"+fixed.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", fixed.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec2 := httptest.NewRecorder()
	handler.Get(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var fetched struct {
		Data basket.SavedBasket `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &fetched))
	require.Equal(t, created.Data.Items, fetched.Data.Items)
}

func TestCreateRequiresName(t *testing.T) {
	handler := newHandler(t, &fakeQueries{stores: irishStores()}, &memBaskets{})

	rec := postJSON(t, handler.Create, "/api/v1/baskets", basket.SaveInput{
		Items: []compare.BasketItem{{ProductID: 10, Quantity: 1}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnknownBasket(t *testing.T) {
	handler := newHandler(t, &fakeQueries{stores: irishStores()}, &memBaskets{})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets/"+id, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.Get(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompareSaved(t *testing.T) {
	baskets := &memBaskets{}
	id := uuid.New()
	require.NoError(t, baskets.SaveBasket(context.Background(), basket.SavedBasket{
		ID:    id,
		Name:  "Weekend",
		Items: []compare.BasketItem{{ProductID: 10, Quantity: 1}},
	}))
	queries := &fakeQueries{
		offers: map[int64]map[int64]compare.Offer{
			1: {10: offer(t, 1, 10, "2.00")},
			2: {10: offer(t, 2, 10, "1.50")},
		},
		stores: irishStores(),
	}
	handler := newHandler(t, queries, baskets)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets/"+id.String()+"/compare", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.CompareSaved(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data basket.CompareResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []int64{2}, resp.Data.CheapestStoreIDs)
}
