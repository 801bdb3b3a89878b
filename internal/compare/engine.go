package compare

import (
	"sort"

	"github.com/shopspring/decimal"
)

// EffectivePrice resolves the price an offer competes at: the promotional
// price when one is present, the regular price otherwise. The boolean is
// false when the resolved price is missing or negative, which callers must
// treat as "no usable offer" rather than an error.
func EffectivePrice(o Offer) (decimal.Decimal, bool) {
	picked := o.Price
	if o.PromoPrice != nil {
		picked = o.PromoPrice
	}
	if picked == nil || picked.IsNegative() {
		return decimal.Decimal{}, false
	}
	return *picked, true
}

// Usable reports whether an offer participates in comparisons: it must be in
// stock and resolve to a non-negative effective price.
func Usable(o Offer) bool {
	if !o.InStock {
		return false
	}
	_, ok := EffectivePrice(o)
	return ok
}

// Compare ranks a product's offers across stores by effective price
// ascending, breaking ties by store name so the ordering is deterministic.
// Offers that are unusable or reference an unknown store are skipped. Zero
// usable offers yield an empty Comparison, not an error.
func Compare(p Product, offers []Offer, stores map[int64]Store) Comparison {
	entries := make([]Entry, 0, len(offers))
	for _, o := range offers {
		if !o.InStock {
			continue
		}
		eff, ok := EffectivePrice(o)
		if !ok {
			continue
		}
		st, known := stores[o.StoreID]
		if !known {
			continue
		}
		label := ""
		if o.PromoPrice != nil {
			label = o.PromoLabel
		}
		entries = append(entries, Entry{
			Store:      st,
			Effective:  eff,
			Regular:    o.Price,
			PromoLabel: label,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Effective.Cmp(entries[j].Effective); c != 0 {
			return c < 0
		}
		return entries[i].Store.Name < entries[j].Store.Name
	})

	result := Comparison{Product: p, Entries: entries}
	if len(entries) > 0 {
		lowest := entries[0].Effective
		for _, e := range entries {
			if !e.Effective.Equal(lowest) {
				break
			}
			result.Cheapest = append(result.Cheapest, e.Store.ID)
		}
	}
	return result
}
