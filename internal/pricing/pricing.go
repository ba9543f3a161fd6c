package pricing

import (
	"sort"

	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/store"
)

// LowestPrice returns the cheapest platform an anime is available on.
// Entries without a platform price are ignored; free tiers (price 0)
// count. Returns nil when nothing is priced.
func LowestPrice(entries []store.AvailabilityWithPlatform) *store.AvailabilityWithPlatform {
	var best *store.AvailabilityWithPlatform
	for i := range entries {
		p := &entries[i]
		if p.Platform.MonthlyPrice < 0 {
			continue
		}
		if best == nil || p.Platform.MonthlyPrice < best.Platform.MonthlyPrice {
			best = p
		}
	}
	return best
}

// SortedByPrice returns the entries ordered by monthly price ascending.
// The sort is stable so same-priced platforms keep their input order.
func SortedByPrice(entries []store.AvailabilityWithPlatform) []store.AvailabilityWithPlatform {
	out := make([]store.AvailabilityWithPlatform, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Platform.MonthlyPrice < out[j].Platform.MonthlyPrice
	})
	return out
}

// FilterAvailable keeps entries on active platforms with at least
// minEpisodes available. minEpisodes <= 0 disables the episode filter;
// entries with unknown episode counts always pass it.
func FilterAvailable(entries []store.AvailabilityWithPlatform, minEpisodes int) []store.AvailabilityWithPlatform {
	out := make([]store.AvailabilityWithPlatform, 0, len(entries))
	for _, e := range entries {
		if !e.Platform.IsActive {
			continue
		}
		if minEpisodes > 0 && e.AvailableEpisodes != nil && *e.AvailableEpisodes < minEpisodes {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ClassifyChange maps a monthly price delta to a history change type.
func ClassifyChange(oldMonthly, newMonthly int) catalog.PriceChangeType {
	switch {
	case newMonthly > oldMonthly:
		return catalog.ChangeIncrease
	case newMonthly < oldMonthly:
		return catalog.ChangeDecrease
	default:
		return catalog.ChangeNone
	}
}
