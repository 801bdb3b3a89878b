// Package catalog serves product, store, and category reference data.
package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/richardnixondev/smartcart/internal/common"
	"github.com/richardnixondev/smartcart/internal/compare"
)

// Category is the public category payload.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query      string
	CategoryID *int64
	StoreID    *int64
	Page       int
	Limit      int
}

// Querier defines the reads the catalog service requires.
type Querier interface {
	ListProducts(ctx context.Context, params ListParams) ([]compare.Product, error)
	CountProducts(ctx context.Context, params ListParams) (int64, error)
	GetProduct(ctx context.Context, id int64) (compare.Product, error)
	ListStores(ctx context.Context) ([]compare.Store, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// ErrProductNotFound is returned when a product id resolves to nothing.
var ErrProductNotFound = errors.New("product not found")

// Service orchestrates catalog queries and parameter normalisation.
type Service struct {
	queries      Querier
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      Querier
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  1,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("search"))

	if v := strings.TrimSpace(values.Get("category_id")); v != "" {
		id, ok := common.ParseInt64(v)
		if !ok || id < 1 {
			return params, common.BadRequest("category_id must be a positive integer", nil)
		}
		params.CategoryID = &id
	}
	if v := strings.TrimSpace(values.Get("store_id")); v != "" {
		id, ok := common.ParseInt64(v)
		if !ok || id < 1 {
			return params, common.BadRequest("store_id must be a positive integer", nil)
		}
		params.StoreID = &id
	}
	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page := common.AtoiDefault(v, 0)
		if page < 1 {
			return params, common.BadRequest("page must be a positive integer", nil)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit := common.AtoiDefault(v, 0)
		if limit < 1 {
			return params, common.BadRequest("limit must be a positive integer", nil)
		}
		if limit > s.maxLimit {
			limit = s.maxLimit
		}
		params.Limit = limit
	}
	return params, nil
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []compare.Product
	Total int64
	Page  int
	Limit int
}

// ListProducts returns one page of filtered products plus the total count.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ListResult, error) {
	total, err := s.queries.CountProducts(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items, err := s.queries.ListProducts(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetProduct loads a single product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (compare.Product, error) {
	p, err := s.queries.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return compare.Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return compare.Product{}, err
	}
	return p, nil
}

// Stores lists all stores ordered by name.
func (s *Service) Stores(ctx context.Context) ([]compare.Store, error) {
	return s.queries.ListStores(ctx)
}

// Categories lists all categories ordered by name.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.queries.ListCategories(ctx)
}
