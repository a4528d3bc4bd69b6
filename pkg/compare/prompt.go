package compare

import (
	"fmt"
	"strings"

	"quickprice/pkg/gemini"
	"quickprice/pkg/models"
)

// buildPrompt assembles the price-audit instruction for one query. The
// platform list and URL templates come from the closed platform set;
// the selling-price rule mandates post-discount prices, never the MRP.
func buildPrompt(productName string, loc *models.Location) string {
	locationContext := "USER LOCATION: India (General). Use national average selling prices."
	if loc != nil {
		locationContext = fmt.Sprintf("USER LOCATION: Lat %v, Lng %v. Fetch prices specific to this city/region.", loc.Lat, loc.Lng)
	}

	var urls strings.Builder
	for _, p := range models.Platforms {
		fmt.Fprintf(&urls, "     - %s: %s\n", p.Name, p.SearchURL)
	}

	return fmt.Sprintf(`ACT AS A SENIOR PRICE AUDITOR FOR INDIAN QUICK-COMMERCE APPS.

  CONTEXT:
  %s
  USER QUERY: %q

  STRICT PROTOCOLS:
  1. QUERY REFINEMENT: If input is vague (e.g., "butter"), compare the most popular specific variant (e.g., "Amul Butter 100g").

  2. SELLING PRICE ONLY:
     - Return the CURRENT SELLING PRICE (the price the user pays AFTER all discounts/coupons).
     - NEVER return the MRP if a lower price is available.

  3. EXACT URL GENERATION (CRITICAL):
     - Generate 'link' using these exact patterns. Replace [QUERY] with the URL-encoded search term.
%s
  4. DATA EXTRACTION:
     - Use Google Search Grounding to find the latest prices from today.

  OUTPUT JSON FORMAT:
  - items: Array of objects (platform, productName, price, isAvailable, link).
  - summary: A 1-sentence finding about which app has the best deal right now.`,
		locationContext, productName, urls.String())
}

// responseSchema declares the structured output the provider must emit,
// so the reply never needs heuristic JSON extraction.
func responseSchema() *gemini.Schema {
	return &gemini.Schema{
		Type: "OBJECT",
		Properties: map[string]*gemini.Schema{
			"items": {
				Type: "ARRAY",
				Items: &gemini.Schema{
					Type: "OBJECT",
					Properties: map[string]*gemini.Schema{
						"platform":    {Type: "STRING"},
						"productName": {Type: "STRING"},
						"price":       {Type: "NUMBER"},
						"isAvailable": {Type: "BOOLEAN"},
						"link":        {Type: "STRING"},
					},
					Required: []string{"platform", "productName", "price", "isAvailable", "link"},
				},
			},
			"summary": {Type: "STRING"},
		},
		Required: []string{"items", "summary"},
	}
}
