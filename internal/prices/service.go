package prices

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/richardnixondev/smartcart/internal/catalog"
	"github.com/richardnixondev/smartcart/internal/common"
	"github.com/richardnixondev/smartcart/internal/compare"
)

// Querier defines the reads the history service requires.
type Querier interface {
	GetProduct(ctx context.Context, id int64) (compare.Product, error)
	PriceHistory(ctx context.Context, productID int64, since time.Time) ([]StoreHistory, error)
}

// Service serves price history windows.
type Service struct {
	queries     Querier
	defaultDays int
	maxDays     int
	now         func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries     Querier
	DefaultDays int
	MaxDays     int
	Now         func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("prices: queries provider is required")
	}
	defaultDays := cfg.DefaultDays
	if defaultDays < 1 {
		defaultDays = 30
	}
	maxDays := cfg.MaxDays
	if maxDays < 1 {
		maxDays = 365
	}
	if defaultDays > maxDays {
		defaultDays = maxDays
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		queries:     cfg.Queries,
		defaultDays: defaultDays,
		maxDays:     maxDays,
		now:         now,
	}, nil
}

// HistoryResult is the history payload for one product.
type HistoryResult struct {
	Product compare.Product `json:"product"`
	Days    int             `json:"days"`
	Stores  []StoreHistory  `json:"stores"`
}

// History loads a product's per-store price history for the trailing window.
// A days value below one falls back to the default; values above the
// configured maximum are clamped.
func (s *Service) History(ctx context.Context, productID int64, days int) (HistoryResult, error) {
	if days < 1 {
		days = s.defaultDays
	}
	if days > s.maxDays {
		days = s.maxDays
	}

	product, err := s.queries.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return HistoryResult{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return HistoryResult{}, err
	}

	since := s.now().AddDate(0, 0, -days)
	stores, err := s.queries.PriceHistory(ctx, productID, since)
	if err != nil {
		return HistoryResult{}, err
	}
	if stores == nil {
		stores = []StoreHistory{}
	}
	return HistoryResult{Product: product, Days: days, Stores: stores}, nil
}
