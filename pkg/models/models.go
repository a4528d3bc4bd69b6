package models

import "strings"

// DefaultCurrency is assumed when the provider omits the currency field.
const DefaultCurrency = "INR"

// GroceryItem is one offer for the queried product on one platform.
// A Price of 0 means "unknown", never a free item. When IsAvailable is
// false the price is not comparable and must be excluded from cheapest
// computations.
type GroceryItem struct {
	Platform    string  `json:"platform"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	IsAvailable bool    `json:"isAvailable"`
	Link        string  `json:"link,omitempty"`
}

// Source is one web citation the provider used to ground its answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ComparisonResult is the full normalized response for one query.
type ComparisonResult struct {
	Items   []GroceryItem `json:"items"`
	Sources []Source      `json:"sources"`
	Summary string        `json:"summary"`
}

// Location is an optional geographic hint attached to a query.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Platform is one of the quick-commerce platforms prices are requested
// for. SearchURL is the platform's search-results URL template; [QUERY]
// is replaced with the URL-encoded product name.
type Platform struct {
	Name      string
	SearchURL string
}

// Platforms is the closed set of platforms the comparison targets.
var Platforms = []Platform{
	{Name: "Blinkit", SearchURL: "https://blinkit.com/s/?q=[QUERY]"},
	{Name: "Zepto", SearchURL: "https://www.zepto.com/search?query=[QUERY]"},
	{Name: "Swiggy Instamart", SearchURL: "https://www.swiggy.com/instamart/search?query=[QUERY]"},
	{Name: "JioMart", SearchURL: "https://www.jiomart.com/search?q=[QUERY]&sort=price_asc"},
	{Name: "Flipkart Minutes", SearchURL: "https://www.flipkart.com/search?q=[QUERY]&sort=price_asc"},
	{Name: "BigBasket", SearchURL: "https://www.bigbasket.com/ps/?q=[QUERY]&sort=price_asc"},
}

// KnownPlatform looks a platform up by name, case-insensitively. Item
// platforms are stored as received from the provider; this lookup
// backs the search-link fallback for items without a direct link.
func KnownPlatform(name string) (Platform, bool) {
	for _, p := range Platforms {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Platform{}, false
}
