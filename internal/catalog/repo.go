package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/richardnixondev/smartcart/internal/compare"
)

// Repo implements Querier against postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const productColumns = `p.id, p.name, COALESCE(p.brand, ''), COALESCE(p.ean, ''),
	p.category_id, COALESCE(p.unit, ''), p.unit_size, COALESCE(p.image_url, '')`

const productFilter = `($1 = '' OR p.name ILIKE '%' || $1 || '%')
	AND ($2::bigint IS NULL OR p.category_id = $2)
	AND ($3::bigint IS NULL OR EXISTS (
		SELECT 1 FROM store_products sp
		WHERE sp.product_id = p.id AND sp.store_id = $3 AND sp.is_active
	))`

// ListProducts returns one page of filtered products ordered by name.
func (r Repo) ListProducts(ctx context.Context, params ListParams) ([]compare.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE %s ORDER BY p.name LIMIT $4 OFFSET $5`,
		productColumns, productFilter)
	offset := (params.Page - 1) * params.Limit
	rows, err := r.Pool.Query(ctx, query, params.Query, params.CategoryID, params.StoreID, params.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]compare.Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the filtered product count ignoring pagination.
func (r Repo) CountProducts(ctx context.Context, params ListParams) (int64, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM products p WHERE %s`, productFilter)
	var total int64
	if err := r.Pool.QueryRow(ctx, query, params.Query, params.CategoryID, params.StoreID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// GetProduct loads a single product by id.
func (r Repo) GetProduct(ctx context.Context, id int64) (compare.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)
	row := r.Pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compare.Product{}, ErrProductNotFound
		}
		return compare.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListStores returns all stores ordered by name.
func (r Repo) ListStores(ctx context.Context) ([]compare.Store, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, name, slug, base_url, COALESCE(logo_url, '') FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []compare.Store
	for rows.Next() {
		var s compare.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.BaseURL, &s.LogoURL); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// ListCategories returns all categories ordered by name.
func (r Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory loads one category by id; pgx.ErrNoRows passes through so
// callers can map it to a 404.
func (r Repo) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.Pool.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	return c, err
}

func scanProduct(row pgx.Row) (compare.Product, error) {
	var (
		p        compare.Product
		unitSize decimal.NullDecimal
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.EAN, &p.CategoryID, &p.Unit, &unitSize, &p.ImageURL); err != nil {
		return compare.Product{}, err
	}
	if unitSize.Valid {
		p.UnitSize = &unitSize.Decimal
	}
	return p, nil
}
