// Package ranking derives the display order for comparison results and
// flags the best offers. Pure and deterministic: no I/O, identical
// input and mode always yield identical output.
package ranking

import (
	"fmt"
	"sort"

	"quickprice/pkg/models"
)

// Mode selects the display ordering.
type Mode string

const (
	// ModeAvailabilityFirst is the default: available items ascending
	// by price, unknown-price available items after them, unavailable
	// items last. Items are never dropped in this mode.
	ModeAvailabilityFirst Mode = "availability_first"
	// ModePriceAsc orders the whole collection ascending by price,
	// without partitioning by availability. Items with an unknown
	// price (<= 0) are dropped from the ranked view.
	ModePriceAsc Mode = "price_asc"
	// ModePriceDesc is ModePriceAsc in reverse.
	ModePriceDesc Mode = "price_desc"
)

// ParseMode maps a query parameter onto a Mode. Empty means default.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAvailabilityFirst:
		return ModeAvailabilityFirst, nil
	case ModePriceAsc:
		return ModePriceAsc, nil
	case ModePriceDesc:
		return ModePriceDesc, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (available: availability_first, price_asc, price_desc)", s)
}

// RankedItem is a grocery item plus its derived best-value flag.
type RankedItem struct {
	models.GroceryItem
	BestValue bool `json:"bestValue"`
}

// Rank orders items for display and marks best-value offers. The input
// slice is never mutated. All sorts are stable, so equal-priced items
// keep their received relative order.
func Rank(items []models.GroceryItem, mode Mode) []RankedItem {
	cheapest, hasCheapest := CheapestPrice(items)

	ranked := make([]RankedItem, 0, len(items))
	for _, item := range items {
		if mode != ModeAvailabilityFirst && item.Price <= 0 {
			continue
		}
		ranked = append(ranked, RankedItem{
			GroceryItem: item,
			BestValue:   hasCheapest && item.IsAvailable && item.Price == cheapest,
		})
	}

	switch mode {
	case ModePriceAsc:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Price < ranked[j].Price
		})
	case ModePriceDesc:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Price > ranked[j].Price
		})
	default:
		// ascending by price within the comparable band only;
		// unknown-price and unavailable items keep received order
		sort.SliceStable(ranked, func(i, j int) bool {
			ci, cj := rankClass(ranked[i].GroceryItem), rankClass(ranked[j].GroceryItem)
			if ci != cj {
				return ci < cj
			}
			return ci == 0 && ranked[i].Price < ranked[j].Price
		})
	}
	return ranked
}

// rankClass partitions items for the default mode: comparable available
// items first, unknown-price available items next, unavailable last.
func rankClass(item models.GroceryItem) int {
	switch {
	case item.IsAvailable && item.Price > 0:
		return 0
	case item.IsAvailable:
		return 1
	default:
		return 2
	}
}

// CheapestPrice is the minimum price among available items with a
// known price. The second return is false when no such item exists.
func CheapestPrice(items []models.GroceryItem) (float64, bool) {
	var min float64
	found := false
	for _, item := range items {
		if !item.IsAvailable || item.Price <= 0 {
			continue
		}
		if !found || item.Price < min {
			min = item.Price
			found = true
		}
	}
	return min, found
}
