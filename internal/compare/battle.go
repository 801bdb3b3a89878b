package compare

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// BattleOptions tunes battle aggregation. Stores supplies reference data for
// zero-activity reporting and is only consulted when
// IncludeZeroActivityStores is set.
type BattleOptions struct {
	IncludeZeroActivityStores bool
	Stores                    map[int64]Store
}

type tally struct {
	store       Store
	wins        int
	priceSum    decimal.Decimal
	appearances int
}

// Battle aggregates a batch of per-product comparisons into per-store win
// statistics. Every store tied at a product's lowest effective price earns a
// full win; ties are not split. A comparison with zero usable entries does
// not count towards the totals. Accumulation is commutative, so the result
// is independent of input ordering; output is sorted by wins descending,
// then store name, for deterministic presentation.
func Battle(comparisons []Comparison, opts BattleOptions) []BattleResult {
	tallies := make(map[int64]*tally)
	considered := 0

	for _, c := range comparisons {
		if len(c.Entries) == 0 {
			continue
		}
		considered++

		// Track the minimum explicitly rather than trusting entry order,
		// so multi-way ties always surface.
		lowest := c.Entries[0].Effective
		for _, e := range c.Entries[1:] {
			if e.Effective.LessThan(lowest) {
				lowest = e.Effective
			}
		}

		for _, e := range c.Entries {
			t := tallies[e.Store.ID]
			if t == nil {
				t = &tally{store: e.Store, priceSum: decimal.Zero}
				tallies[e.Store.ID] = t
			}
			t.priceSum = t.priceSum.Add(e.Effective)
			t.appearances++
			if e.Effective.Equal(lowest) {
				t.wins++
			}
		}
	}

	if opts.IncludeZeroActivityStores {
		for id, st := range opts.Stores {
			if _, seen := tallies[id]; !seen {
				tallies[id] = &tally{store: st, priceSum: decimal.Zero}
			}
		}
	}

	results := make([]BattleResult, 0, len(tallies))
	for _, t := range tallies {
		avg := decimal.Zero
		if t.appearances > 0 {
			avg = t.priceSum.Div(decimal.NewFromInt(int64(t.appearances))).Round(2)
		}
		pct := 0.0
		if considered > 0 {
			pct = math.Round(float64(t.wins)/float64(considered)*1000) / 10
		}
		results = append(results, BattleResult{
			Store:    t.store,
			Wins:     t.wins,
			AvgPrice: avg,
			WinPct:   pct,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Wins != results[j].Wins {
			return results[i].Wins > results[j].Wins
		}
		return results[i].Store.Name < results[j].Store.Name
	})
	return results
}
