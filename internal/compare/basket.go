package compare

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity signals a caller contract violation: basket
	// quantities must be positive integers.
	ErrInvalidQuantity = errors.New("basket item quantity must be at least 1")
	// ErrNoStores signals that a non-empty basket was compared against an
	// empty store set, so no total can be produced.
	ErrNoStores = errors.New("no stores available for basket comparison")
)

// CompareBasket totals the basket at every known store. For each item a
// store either carries a usable offer, contributing effective price times
// quantity to the total, or counts the item as unmatched. A basket item
// referencing a product no store carries degrades to unmatched everywhere.
// Totals use exact decimal arithmetic throughout.
//
// Output rows are ordered by store name for stable rendering; ranking by
// total is left to the caller (see CheapestStores).
func CompareBasket(items []BasketItem, offersByStore map[int64]map[int64]Offer, stores map[int64]Store) ([]StoreTotal, error) {
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	if len(stores) == 0 {
		if len(items) == 0 {
			return []StoreTotal{}, nil
		}
		return nil, ErrNoStores
	}

	totals := make([]StoreTotal, 0, len(stores))
	for _, st := range stores {
		row := StoreTotal{Store: st, Total: decimal.Zero}
		storeOffers := offersByStore[st.ID]
		for _, it := range items {
			offer, found := storeOffers[it.ProductID]
			if !found || !Usable(offer) {
				row.Unmatched++
				continue
			}
			eff, _ := EffectivePrice(offer)
			row.Total = row.Total.Add(eff.Mul(decimal.NewFromInt(int64(it.Quantity))))
			row.Matched++
		}
		totals = append(totals, row)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Store.Name < totals[j].Store.Name
	})
	return totals, nil
}

// CheapestStores returns every store tied at the minimum total among stores
// that matched at least one item. A store that stocks nothing in the basket
// cannot be meaningfully ranked and is never returned here, even though it
// still appears in the StoreTotal rows.
func CheapestStores(totals []StoreTotal) []int64 {
	var lowest *decimal.Decimal
	var ids []int64
	for _, t := range totals {
		if t.Matched == 0 {
			continue
		}
		switch {
		case lowest == nil || t.Total.LessThan(*lowest):
			v := t.Total
			lowest = &v
			ids = []int64{t.Store.ID}
		case t.Total.Equal(*lowest):
			ids = append(ids, t.Store.ID)
		}
	}
	return ids
}
