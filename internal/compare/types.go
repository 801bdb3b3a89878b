// Package compare implements the price comparison engine: effective price
// resolution, per-product store rankings, basket cost totals, and store
// battle statistics. Every entry point is a pure function over its inputs;
// callers own all I/O and may invoke the engine concurrently.
package compare

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is immutable reference data describing a retailer.
type Store struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	BaseURL string `json:"baseUrl,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// Product is immutable reference data describing a catalog product.
type Product struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Brand      string           `json:"brand,omitempty"`
	EAN        string           `json:"ean,omitempty"`
	CategoryID *int64           `json:"categoryId,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	UnitSize   *decimal.Decimal `json:"unitSize,omitempty"`
	ImageURL   string           `json:"imageUrl,omitempty"`
}

// Offer is one store's current price for a product. A nil Price means the
// upstream feed delivered no regular price; such offers are treated as
// unusable rather than rejected. The engine never mutates an Offer.
type Offer struct {
	StoreID    int64
	ProductID  int64
	Price      *decimal.Decimal
	PromoPrice *decimal.Decimal
	PromoLabel string
	InStock    bool
	ScrapedAt  time.Time
}

// BasketItem pairs a product with a purchase quantity.
type BasketItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// Entry is one row of a per-product ranking.
type Entry struct {
	Store      Store            `json:"store"`
	Effective  decimal.Decimal  `json:"effectivePrice"`
	Regular    *decimal.Decimal `json:"regularPrice,omitempty"`
	PromoLabel string           `json:"promoLabel,omitempty"`
}

// Comparison ranks all usable offers for a single product, cheapest first.
// Cheapest lists the IDs of every store tied at the lowest effective price.
type Comparison struct {
	Product  Product `json:"product"`
	Entries  []Entry `json:"entries"`
	Cheapest []int64 `json:"cheapestStoreIds,omitempty"`
}

// StoreTotal is the basket cost at one store. Matched plus Unmatched always
// equals the basket item count. Stores with Matched == 0 are reported so the
// caller can render "not carried", but never win the cheapest comparison.
type StoreTotal struct {
	Store     Store           `json:"store"`
	Total     decimal.Decimal `json:"total"`
	Matched   int             `json:"itemsMatched"`
	Unmatched int             `json:"itemsUnmatched"`
}

// BattleResult is one store's aggregate standing over a batch of comparisons.
type BattleResult struct {
	Store    Store           `json:"store"`
	Wins     int             `json:"wins"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	WinPct   float64         `json:"winPct"`
}
