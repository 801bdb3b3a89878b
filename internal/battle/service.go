// Package battle aggregates per-product comparisons into a store leaderboard.
package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/richardnixondev/smartcart/internal/catalog"
	"github.com/richardnixondev/smartcart/internal/common"
	"github.com/richardnixondev/smartcart/internal/compare"
	"github.com/richardnixondev/smartcart/internal/obs"
	"github.com/richardnixondev/smartcart/internal/prices"
)

// Querier defines the database access required for battle aggregation.
type Querier interface {
	GetCategory(ctx context.Context, id int64) (catalog.Category, error)
	CurrentOffers(ctx context.Context, categoryID *int64) ([]prices.ProductOffer, error)
	StoreMap(ctx context.Context) (map[int64]compare.Store, error)
}

// Result is the leaderboard payload for one aggregation run.
type Result struct {
	Category           *catalog.Category      `json:"category,omitempty"`
	ProductsConsidered int                    `json:"productsConsidered"`
	Standings          []compare.BattleResult `json:"standings"`
	GeneratedAt        time.Time              `json:"generatedAt"`
}

// Service provides cached access to store battle standings.
type Service struct {
	Q   Querier
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Aggregate computes the leaderboard over every product's latest offers,
// optionally restricted to one category. Stores that never price a product
// are omitted unless includeZero is set.
func (s *Service) Aggregate(ctx context.Context, categoryID *int64, includeZero bool) (Result, error) {
	if s == nil || s.Q == nil {
		return Result{}, fmt.Errorf("battle service not configured")
	}

	var category *catalog.Category
	catPart := "all"
	if categoryID != nil {
		c, err := s.Q.GetCategory(ctx, *categoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Result{}, common.NewAppError("NOT_FOUND", "category not found", http.StatusNotFound, err)
			}
			return Result{}, err
		}
		category = &c
		catPart = fmt.Sprint(*categoryID)
	}

	key := cacheKey("battle", catPart, includeZero)
	if cached, ok := s.fromCache(ctx, key); ok {
		countCache("hit")
		return cached, nil
	}
	countCache("miss")

	offers, err := s.Q.CurrentOffers(ctx, categoryID)
	if err != nil {
		return Result{}, err
	}
	stores, err := s.Q.StoreMap(ctx)
	if err != nil {
		return Result{}, err
	}

	comparisons := buildComparisons(offers, stores)
	considered := 0
	for _, c := range comparisons {
		if len(c.Entries) > 0 {
			considered++
		}
	}
	standings := compare.Battle(comparisons, compare.BattleOptions{
		IncludeZeroActivityStores: includeZero,
		Stores:                    stores,
	})

	result := Result{
		Category:           category,
		ProductsConsidered: considered,
		Standings:          standings,
		GeneratedAt:        s.now().UTC(),
	}
	s.store(ctx, key, result)
	return result, nil
}

// buildComparisons groups the flat offer rows by product and ranks each
// group, preserving first-seen product order.
func buildComparisons(offers []prices.ProductOffer, stores map[int64]compare.Store) []compare.Comparison {
	index := make(map[int64]int)
	var products []compare.Product
	var grouped [][]compare.Offer
	for _, po := range offers {
		i, ok := index[po.Product.ID]
		if !ok {
			i = len(products)
			index[po.Product.ID] = i
			products = append(products, po.Product)
			grouped = append(grouped, nil)
		}
		grouped[i] = append(grouped[i], po.Offer)
	}

	comparisons := make([]compare.Comparison, len(products))
	for i, p := range products {
		comparisons[i] = compare.Compare(p, grouped[i], stores)
	}
	return comparisons
}

func (s *Service) fromCache(ctx context.Context, key string) (Result, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Result{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (s *Service) store(ctx context.Context, key string, result Result) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}

func countCache(outcome string) {
	if obs.BattleCacheTotal != nil {
		obs.BattleCacheTotal.WithLabelValues(outcome).Inc()
	}
}
