package basket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/richardnixondev/smartcart/internal/common"
	"github.com/richardnixondev/smartcart/internal/compare"
	"github.com/richardnixondev/smartcart/internal/obs"
)

// Querier defines the offer reads the basket service requires.
type Querier interface {
	OffersForBasket(ctx context.Context, productIDs []int64) (map[int64]map[int64]compare.Offer, error)
	StoreMap(ctx context.Context) (map[int64]compare.Store, error)
}

// Baskets defines the persistence the basket service requires.
type Baskets interface {
	SaveBasket(ctx context.Context, b SavedBasket) error
	GetBasket(ctx context.Context, id uuid.UUID) (SavedBasket, error)
}

// Service compares and persists baskets.
type Service struct {
	queries  Querier
	baskets  Baskets
	validate *validator.Validate
	now      func() time.Time
	newID    func() uuid.UUID
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries Querier
	Baskets Baskets
	Now     func() time.Time
	NewID   func() uuid.UUID
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("basket: queries provider is required")
	}
	if cfg.Baskets == nil {
		return nil, errors.New("basket: basket store is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.New
	}
	return &Service{
		queries:  cfg.Queries,
		baskets:  cfg.Baskets,
		validate: validator.New(),
		now:      now,
		newID:    newID,
	}, nil
}

// CompareInput is the payload for an ad hoc basket comparison.
type CompareInput struct {
	Items []compare.BasketItem `json:"items" validate:"required,min=1,dive"`
}

// SaveInput is the payload for persisting a named basket.
type SaveInput struct {
	Name  string               `json:"name" validate:"required,max=255"`
	Items []compare.BasketItem `json:"items" validate:"required,min=1,dive"`
}

// StoreRow is one store's standing in a basket comparison. FullCoverage is
// true when the store carries every item in the basket.
type StoreRow struct {
	compare.StoreTotal
	FullCoverage bool `json:"fullCoverage"`
}

// CompareResult is the full basket comparison payload.
type CompareResult struct {
	Items            []compare.BasketItem `json:"items"`
	Stores           []StoreRow           `json:"stores"`
	CheapestStoreIDs []int64              `json:"cheapestStoreIds,omitempty"`
}

// Compare totals the basket at every store and flags the cheapest ones.
func (s *Service) Compare(ctx context.Context, input CompareInput) (CompareResult, error) {
	if err := s.validate.Struct(input); err != nil {
		countBasketCompare("invalid")
		return CompareResult{}, validationError(err)
	}
	return s.compareItems(ctx, input.Items)
}

func (s *Service) compareItems(ctx context.Context, items []compare.BasketItem) (CompareResult, error) {
	productIDs := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	offers, err := s.queries.OffersForBasket(ctx, productIDs)
	if err != nil {
		countBasketCompare("error")
		return CompareResult{}, err
	}
	stores, err := s.queries.StoreMap(ctx)
	if err != nil {
		countBasketCompare("error")
		return CompareResult{}, err
	}

	totals, err := compare.CompareBasket(items, offers, stores)
	if err != nil {
		countBasketCompare("invalid")
		if errors.Is(err, compare.ErrNoStores) {
			return CompareResult{}, common.BadRequest("no stores available to compare against", err)
		}
		return CompareResult{}, common.BadRequest(err.Error(), err)
	}

	rows := make([]StoreRow, len(totals))
	for i, total := range totals {
		rows[i] = StoreRow{StoreTotal: total, FullCoverage: total.Unmatched == 0}
	}
	countBasketCompare("ok")
	return CompareResult{
		Items:            items,
		Stores:           rows,
		CheapestStoreIDs: compare.CheapestStores(totals),
	}, nil
}

// Save persists a named basket and returns it with its generated id.
func (s *Service) Save(ctx context.Context, input SaveInput) (SavedBasket, error) {
	if err := s.validate.Struct(input); err != nil {
		return SavedBasket{}, validationError(err)
	}
	b := SavedBasket{
		ID:        s.newID(),
		Name:      strings.TrimSpace(input.Name),
		Items:     input.Items,
		CreatedAt: s.now().UTC(),
	}
	if err := s.baskets.SaveBasket(ctx, b); err != nil {
		return SavedBasket{}, err
	}
	return b, nil
}

// Get loads a saved basket by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (SavedBasket, error) {
	b, err := s.baskets.GetBasket(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBasketNotFound) {
			return SavedBasket{}, common.NewAppError("NOT_FOUND", "basket not found", http.StatusNotFound, err)
		}
		return SavedBasket{}, err
	}
	return b, nil
}

// CompareSaved loads a saved basket and compares it like an ad hoc one.
func (s *Service) CompareSaved(ctx context.Context, id uuid.UUID) (CompareResult, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return CompareResult{}, err
	}
	return s.compareItems(ctx, b.Items)
}

func countBasketCompare(result string) {
	if obs.BasketComparesTotal != nil {
		obs.BasketComparesTotal.WithLabelValues(result).Inc()
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.BadRequest("invalid basket payload", err)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Namespace()] = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return &common.AppError{
		Code:       "VALIDATION",
		Message:    "invalid basket payload",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    details,
	}
}
