// Package prices loads current offers and price history from postgres and
// serves the per-product history endpoint.
package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/richardnixondev/smartcart/internal/compare"
)

// ProductOffer pairs a product with one store's latest offer for it.
type ProductOffer struct {
	Product compare.Product
	Offer   compare.Offer
}

// PricePoint is one observation in a product's price history at a store.
type PricePoint struct {
	Price      decimal.Decimal  `json:"price"`
	PromoPrice *decimal.Decimal `json:"promoPrice,omitempty"`
	InStock    bool             `json:"inStock"`
	ScrapedAt  time.Time        `json:"scrapedAt"`
}

// StoreHistory groups a product's price points by store, oldest first.
type StoreHistory struct {
	Store  compare.Store `json:"store"`
	Points []PricePoint  `json:"points"`
}

// Repo reads offers and history from postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const offerColumns = `
    sp.store_id, sp.product_id,
    pr.price, pr.promo_price, COALESCE(pr.promo_label, ''),
    pr.in_stock, pr.scraped_at`

// LatestOffers returns the most recent offer per store for one product.
func (r *Repo) LatestOffers(ctx context.Context, productID int64) ([]compare.Offer, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT DISTINCT ON (sp.store_id)`+offerColumns+`
FROM store_products sp
JOIN price_records pr ON pr.store_product_id = sp.id
WHERE sp.product_id = $1 AND sp.is_active
ORDER BY sp.store_id, pr.scraped_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query latest offers: %w", err)
	}
	defer rows.Close()

	var offers []compare.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// OffersForBasket returns the latest offer per store per product, keyed
// first by store id and then by product id.
func (r *Repo) OffersForBasket(ctx context.Context, productIDs []int64) (map[int64]map[int64]compare.Offer, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT DISTINCT ON (sp.store_id, sp.product_id)`+offerColumns+`
FROM store_products sp
JOIN price_records pr ON pr.store_product_id = sp.id
WHERE sp.product_id = ANY($1) AND sp.is_active
ORDER BY sp.store_id, sp.product_id, pr.scraped_at DESC`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query basket offers: %w", err)
	}
	defer rows.Close()

	byStore := make(map[int64]map[int64]compare.Offer)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		if byStore[o.StoreID] == nil {
			byStore[o.StoreID] = make(map[int64]compare.Offer)
		}
		byStore[o.StoreID][o.ProductID] = o
	}
	return byStore, rows.Err()
}

// CurrentOffers returns the latest offer per store for every product,
// optionally restricted to one category.
func (r *Repo) CurrentOffers(ctx context.Context, categoryID *int64) ([]ProductOffer, error) {
	query := `
SELECT DISTINCT ON (sp.store_id, sp.product_id)
    p.id, p.name, COALESCE(p.brand, ''), COALESCE(p.ean, ''),
    p.category_id, COALESCE(p.unit, ''), p.unit_size, COALESCE(p.image_url, ''),` + offerColumns + `
FROM store_products sp
JOIN price_records pr ON pr.store_product_id = sp.id
JOIN products p ON p.id = sp.product_id
WHERE sp.is_active`
	args := []any{}
	if categoryID != nil {
		query += ` AND p.category_id = $1`
		args = append(args, *categoryID)
	}
	query += `
ORDER BY sp.store_id, sp.product_id, pr.scraped_at DESC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query current offers: %w", err)
	}
	defer rows.Close()

	var out []ProductOffer
	for rows.Next() {
		var (
			po       ProductOffer
			unitSize decimal.NullDecimal
			price    decimal.Decimal
			promo    decimal.NullDecimal
		)
		err := rows.Scan(
			&po.Product.ID, &po.Product.Name, &po.Product.Brand, &po.Product.EAN,
			&po.Product.CategoryID, &po.Product.Unit, &unitSize, &po.Product.ImageURL,
			&po.Offer.StoreID, &po.Offer.ProductID,
			&price, &promo, &po.Offer.PromoLabel,
			&po.Offer.InStock, &po.Offer.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan current offer: %w", err)
		}
		if unitSize.Valid {
			po.Product.UnitSize = &unitSize.Decimal
		}
		po.Offer.Price = &price
		if promo.Valid {
			po.Offer.PromoPrice = &promo.Decimal
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

// PriceHistory returns a product's observed prices per store since the given
// time, points ordered oldest first and stores ordered by name.
func (r *Repo) PriceHistory(ctx context.Context, productID int64, since time.Time) ([]StoreHistory, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT s.id, s.name, s.slug, s.base_url, COALESCE(s.logo_url, ''),
       pr.price, pr.promo_price, pr.in_stock, pr.scraped_at
FROM store_products sp
JOIN price_records pr ON pr.store_product_id = sp.id
JOIN stores s ON s.id = sp.store_id
WHERE sp.product_id = $1 AND pr.scraped_at >= $2
ORDER BY s.name, pr.scraped_at`, productID, since)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var out []StoreHistory
	for rows.Next() {
		var (
			store compare.Store
			pt    PricePoint
			promo decimal.NullDecimal
		)
		err := rows.Scan(
			&store.ID, &store.Name, &store.Slug, &store.BaseURL, &store.LogoURL,
			&pt.Price, &promo, &pt.InStock, &pt.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		if promo.Valid {
			pt.PromoPrice = &promo.Decimal
		}
		if len(out) == 0 || out[len(out)-1].Store.ID != store.ID {
			out = append(out, StoreHistory{Store: store})
		}
		out[len(out)-1].Points = append(out[len(out)-1].Points, pt)
	}
	return out, rows.Err()
}

// StoreMap loads all stores keyed by id.
func (r *Repo) StoreMap(ctx context.Context) (map[int64]compare.Store, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT id, name, slug, base_url, COALESCE(logo_url, '')
FROM stores`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	stores := make(map[int64]compare.Store)
	for rows.Next() {
		var s compare.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.BaseURL, &s.LogoURL); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores[s.ID] = s
	}
	return stores, rows.Err()
}

type offerScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row offerScanner) (compare.Offer, error) {
	var (
		o     compare.Offer
		price decimal.Decimal
		promo decimal.NullDecimal
	)
	err := row.Scan(
		&o.StoreID, &o.ProductID,
		&price, &promo, &o.PromoLabel,
		&o.InStock, &o.ScrapedAt,
	)
	if err != nil {
		return compare.Offer{}, fmt.Errorf("scan offer: %w", err)
	}
	o.Price = &price
	if promo.Valid {
		o.PromoPrice = &promo.Decimal
	}
	return o, nil
}
