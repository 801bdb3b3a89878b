// Package basket compares a shopping list across stores and persists named
// baskets for sharing.
package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richardnixondev/smartcart/internal/compare"
)

// SavedBasket is a persisted, shareable shopping list.
type SavedBasket struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Items     []compare.BasketItem `json:"items"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ErrBasketNotFound is returned when a basket id resolves to nothing.
var ErrBasketNotFound = errors.New("basket not found")

// Repo persists baskets in postgres, items as a JSONB document.
type Repo struct {
	Pool *pgxpool.Pool
}

// SaveBasket inserts a basket.
func (r *Repo) SaveBasket(ctx context.Context, b SavedBasket) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal basket items: %w", err)
	}
	_, err = r.Pool.Exec(ctx, `
INSERT INTO baskets (id, name, items, created_at)
VALUES ($1, $2, $3, $4)`, b.ID, b.Name, items, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert basket: %w", err)
	}
	return nil
}

// GetBasket loads a basket by id.
func (r *Repo) GetBasket(ctx context.Context, id uuid.UUID) (SavedBasket, error) {
	var (
		b     SavedBasket
		items []byte
	)
	err := r.Pool.QueryRow(ctx, `
SELECT id, name, items, created_at
FROM baskets
WHERE id = $1`, id).Scan(&b.ID, &b.Name, &items, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedBasket{}, ErrBasketNotFound
		}
		return SavedBasket{}, fmt.Errorf("select basket: %w", err)
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return SavedBasket{}, fmt.Errorf("unmarshal basket items: %w", err)
	}
	return b, nil
}
