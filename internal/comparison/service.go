// Package comparison serves per-product price comparisons across stores.
package comparison

import (
	"context"
	"errors"
	"net/http"

	"github.com/richardnixondev/smartcart/internal/catalog"
	"github.com/richardnixondev/smartcart/internal/common"
	"github.com/richardnixondev/smartcart/internal/compare"
	"github.com/richardnixondev/smartcart/internal/obs"
)

// Querier defines the reads the comparison service requires.
type Querier interface {
	GetProduct(ctx context.Context, id int64) (compare.Product, error)
	LatestOffers(ctx context.Context, productID int64) ([]compare.Offer, error)
	StoreMap(ctx context.Context) (map[int64]compare.Store, error)
}

// Service assembles comparison inputs and runs the engine.
type Service struct {
	queries Querier
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries Querier
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("comparison: queries provider is required")
	}
	return &Service{queries: cfg.Queries}, nil
}

// Compare ranks every store's latest usable offer for the product, cheapest
// first. A product carried by no store yields an empty ranking, not an error.
func (s *Service) Compare(ctx context.Context, productID int64) (compare.Comparison, error) {
	product, err := s.queries.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return compare.Comparison{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return compare.Comparison{}, err
	}
	offers, err := s.queries.LatestOffers(ctx, productID)
	if err != nil {
		return compare.Comparison{}, err
	}
	stores, err := s.queries.StoreMap(ctx)
	if err != nil {
		return compare.Comparison{}, err
	}
	result := compare.Compare(product, offers, stores)
	if obs.ComparisonsTotal != nil {
		obs.ComparisonsTotal.Inc()
	}
	return result, nil
}
